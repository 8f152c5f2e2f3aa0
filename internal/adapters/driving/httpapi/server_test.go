package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
	"github.com/custodia-labs/docchat/internal/postprocessors"
)

const petsText = "Cats are small mammals that purr. Dogs are loyal mammals that bark. " +
	"Parrots are colourful birds that talk."

type stubLLM struct {
	messages []driven.ChatMessage
	err      error
}

func (s *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return "They purr.", nil
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

type panicDocuments struct {
	driving.DocumentService
}

func (panicDocuments) List(context.Context, string) ([]domain.Document, error) {
	panic("boom")
}

type apiFixture struct {
	handler http.Handler
	llm     *stubLLM
	users   *memory.UserStore
}

func newAPIFixture(t *testing.T, settings domain.ServerSettings) apiFixture {
	t.Helper()
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	docStore := memory.NewDocumentStore()
	users := memory.NewUserStore()
	llm := &stubLLM{}

	docs := services.NewDocumentService(docStore, normalisers.NewDefaultRegistry(), postprocessors.NewDefaultBuilder(),
		services.WithMaxUploadBytes(settings.MaxUploadBytes))
	retrieval := services.NewRetrievalService(docStore, domain.RetrievalSettings{
		TopK:           domain.DefaultTopK,
		Threshold:      domain.DefaultThreshold,
		FallbackChunks: domain.DefaultFallbackChunks,
		VocabularySize: domain.DefaultVocabularySize,
	})
	chats := services.NewChatService(memory.NewChatStore(), llm, retrieval)

	server, err := NewServer(Ports{
		Documents: docs,
		Retrieval: retrieval,
		Chats:     chats,
		Identity:  services.NewIdentityService(users),
	}, settings)
	require.NoError(t, err)

	return apiFixture{handler: server.Handler(), llm: llm, users: users}
}

func (f apiFixture) do(t *testing.T, method, path, user string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if user != "" {
		req.Header.Set(domain.DefaultUserHeader, user)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f apiFixture) doJSON(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, method, path, user, strings.NewReader(body), "application/json")
}

func multipartUpload(t *testing.T, filename, mimeType, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (f apiFixture) upload(t *testing.T, user, filename, content string) uploadResponse {
	t.Helper()
	body, ct := multipartUpload(t, filename, "text/plain", content)
	rec := f.do(t, http.MethodPost, "/api/documents", user, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[uploadResponse](t, rec)
}

func TestNewServer_RequiresServices(t *testing.T) {
	_, err := NewServer(Ports{}, domain.ServerSettings{})
	assert.ErrorIs(t, err, ErrMissingService)
}

func TestServer_RequiresUserHeader(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})

	rec := f.do(t, http.MethodGet, "/api/documents", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[errorBody](t, rec)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "X-User-ID")

	rec = f.do(t, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CustomUserHeader(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{UserHeader: "X-Auth-User"})

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("X-Auth-User", "user-1")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_UploadAndManageDocuments(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})

	resp := f.upload(t, "user-1", "pets.txt", petsText)
	assert.True(t, resp.Success)
	assert.Equal(t, "Document processed successfully", resp.Message)
	assert.NotEmpty(t, resp.Data.DocumentID)
	assert.Equal(t, "pets.txt", resp.Data.Filename)
	assert.Equal(t, 1, resp.Data.ChunksCount)
	assert.Equal(t, len(petsText), resp.Data.TextLength)
	id := resp.Data.DocumentID

	dup := f.upload(t, "user-1", "again.txt", petsText)
	assert.True(t, dup.Data.Duplicate)
	assert.Equal(t, id, dup.Data.DocumentID)
	assert.Equal(t, len(petsText), dup.Data.TextLength)

	rec := f.do(t, http.MethodGet, "/api/documents", "user-1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Documents []documentJSON `json:"documents"`
	}](t, rec)
	require.Len(t, list.Documents, 1)
	assert.Empty(t, list.Documents[0].Content)

	rec = f.do(t, http.MethodGet, "/api/documents/"+id, "user-1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[documentJSON](t, rec)
	assert.Equal(t, petsText, doc.Content)
	require.Len(t, doc.Chunks, 1)

	rec = f.do(t, http.MethodGet, "/api/documents/"+id, "user-2", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/documents/"+id, "user-1", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/documents/"+id, "user-1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UploadErrors(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{MaxUploadBytes: 128})

	body, ct := multipartUpload(t, "blank.txt", "text/plain", "   ")
	rec := f.do(t, http.MethodPost, "/api/documents", "user-1", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error, domain.ErrEmptyContent.Error())

	body, ct = multipartUpload(t, "sheet.xlsx", "application/vnd.ms-excel", "data")
	rec = f.do(t, http.MethodPost, "/api/documents", "user-1", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartUpload(t, "big.txt", "text/plain", strings.Repeat("x", 200))
	rec = f.do(t, http.MethodPost, "/api/documents", "user-1", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/documents", "user-1", strings.NewReader("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DocumentContext(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})
	id := f.upload(t, "user-1", "pets.txt", petsText).Data.DocumentID

	rec := f.doJSON(t, http.MethodPost, "/api/documents/"+id+"/context", "user-1", `{"query":"what do cats do?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[contextResponse](t, rec)
	assert.False(t, out.Fallback)
	assert.Equal(t, petsText, out.Context)
	require.Len(t, out.Chunks, 1)
	assert.Greater(t, out.Chunks[0].Score, 0.0)

	rec = f.doJSON(t, http.MethodPost, "/api/documents/"+id+"/context", "user-1", `{"query":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/documents/missing/context", "user-1", `{"query":"cats"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/documents/"+id+"/context", "user-1", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Chats(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})
	docID := f.upload(t, "user-1", "pets.txt", petsText).Data.DocumentID

	rec := f.doJSON(t, http.MethodPost, "/api/chats", "user-1", `{"name":"Pets"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	chat := decode[chatJSON](t, rec)
	assert.Equal(t, "Pets", chat.Name)

	rec = f.doJSON(t, http.MethodPost, "/api/chats/"+chat.ID+"/messages", "user-1",
		`{"prompt":"What do cats do?","documentId":"`+docID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := decode[sendResponse](t, rec)
	assert.True(t, sent.Grounded)
	assert.Equal(t, "They purr.", sent.Reply.Content)
	assert.Equal(t, domain.RoleAssistant, sent.Reply.Role)
	require.Len(t, f.llm.messages, 1)
	assert.Contains(t, f.llm.messages[0].Content, "DOCUMENT CONTEXT:\n"+petsText)

	rec = f.do(t, http.MethodGet, "/api/chats/"+chat.ID, "user-1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[chatJSON](t, rec).Messages, 2)

	rec = f.doJSON(t, http.MethodPatch, "/api/chats/"+chat.ID, "user-1", `{"name":"Animals"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Animals", decode[chatJSON](t, rec).Name)

	rec = f.do(t, http.MethodGet, "/api/chats", "user-1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Chats []chatJSON `json:"chats"`
	}](t, rec)
	require.Len(t, list.Chats, 1)
	assert.Empty(t, list.Chats[0].Messages)

	rec = f.do(t, http.MethodGet, "/api/chats/"+chat.ID, "user-2", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/chats/"+chat.ID, "user-1", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_SendMessageErrors(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})

	rec := f.doJSON(t, http.MethodPost, "/api/chats", "user-1", ``)
	require.Equal(t, http.StatusCreated, rec.Code)
	chat := decode[chatJSON](t, rec)
	assert.Equal(t, domain.DefaultChatName, chat.Name)

	rec = f.doJSON(t, http.MethodPost, "/api/chats/"+chat.ID+"/messages", "user-1", `{"prompt":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.llm.err = domain.ErrLLMUnavailable
	rec = f.doJSON(t, http.MethodPost, "/api/chats/"+chat.ID+"/messages", "user-1", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_RecoversFromPanics(t *testing.T) {
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	docStore := memory.NewDocumentStore()
	retrieval := services.NewRetrievalService(docStore, domain.DefaultRetrievalSettings())
	server, err := NewServer(Ports{
		Documents: panicDocuments{},
		Retrieval: retrieval,
		Chats:     services.NewChatService(memory.NewChatStore(), nil, retrieval),
	}, domain.ServerSettings{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set(domain.DefaultUserHeader, "user-1")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode[errorBody](t, rec).Error)
}

func TestServer_Health(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})
	id := f.upload(t, "user-1", "pets.txt", petsText).Data.DocumentID

	rec := f.doJSON(t, http.MethodPost, "/api/chats", "user-1", `{}`)
	chat := decode[chatJSON](t, rec)
	f.doJSON(t, http.MethodPost, "/api/chats/"+chat.ID+"/messages", "user-1",
		`{"prompt":"cats","documentId":"`+id+`"}`)

	rec = f.do(t, http.MethodGet, "/healthz", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[struct {
		Status    string `json:"status"`
		Retrieval struct {
			Served int64 `json:"served"`
		} `json:"retrieval"`
	}](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, int64(1), health.Retrieval.Served)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrUnsupportedType, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrInvalidSignature, http.StatusUnauthorized},
		{domain.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{domain.ErrEmbeddingGeneration, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
