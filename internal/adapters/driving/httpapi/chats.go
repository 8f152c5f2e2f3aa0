package httpapi

import (
	"net/http"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

type messageJSON struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type chatJSON struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Messages  []messageJSON `json:"messages,omitempty"`
}

type chatNameRequest struct {
	Name string `json:"name"`
}

type sendRequest struct {
	Prompt     string `json:"prompt"`
	DocumentID string `json:"documentId"`
}

type sendResponse struct {
	Reply    messageJSON `json:"reply"`
	Grounded bool        `json:"grounded"`
}

func toMessageJSON(m domain.Message) messageJSON {
	return messageJSON{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
}

func toChatJSON(c *domain.Chat) chatJSON {
	out := chatJSON{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	if len(c.Messages) > 0 {
		out.Messages = make([]messageJSON, len(c.Messages))
		for i, m := range c.Messages {
			out.Messages[i] = toMessageJSON(m)
		}
	}
	return out
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req chatNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	chat, err := s.ports.Chats.Create(r.Context(), userFrom(r.Context()), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChatJSON(chat))
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.ports.Chats.List(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]chatJSON, len(chats))
	for i := range chats {
		out[i] = toChatJSON(&chats[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": out})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := s.ports.Chats.Get(r.Context(), r.PathValue("id"), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatJSON(chat))
}

func (s *Server) handleRenameChat(w http.ResponseWriter, r *http.Request) {
	var req chatNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	chat, err := s.ports.Chats.Rename(r.Context(), r.PathValue("id"), userFrom(r.Context()), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatJSON(chat))
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Chats.Delete(r.Context(), r.PathValue("id"), userFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Chats.Send(r.Context(), driving.SendRequest{
		ChatID:     r.PathValue("id"),
		OwnerID:    userFrom(r.Context()),
		Prompt:     req.Prompt,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{Reply: toMessageJSON(result.Reply), Grounded: result.Grounded})
}
