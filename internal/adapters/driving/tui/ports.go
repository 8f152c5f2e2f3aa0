// Package tui provides an interactive terminal chat over a document.
// It is a driving adapter on top of the chat service.
package tui

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Chats sends prompts and loads history.
	Chats driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Chats == nil {
		return ErrMissingChatService
	}
	return nil
}

// Session selects the conversation the TUI works on.
type Session struct {
	// ChatID is the chat to continue.
	ChatID string

	// OwnerID is the user the chat belongs to.
	OwnerID string

	// DocumentID grounds prompts in a document. Empty chats without context.
	DocumentID string

	// DocumentName is shown in the status bar.
	DocumentName string
}

// Validate ensures the session names a chat and its owner.
func (s Session) Validate() error {
	if s.ChatID == "" || s.OwnerID == "" {
		return ErrMissingSession
	}
	return nil
}
