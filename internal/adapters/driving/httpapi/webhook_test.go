package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var testWebhookKey = []byte("super-secret-signing-key")

func testWebhookSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString(testWebhookKey)
}

func signWebhook(id string, ts time.Time, body string) http.Header {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, testWebhookKey)
	mac.Write([]byte(id + "." + timestamp + "." + body))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	h := make(http.Header)
	h.Set(headerSvixID, id)
	h.Set(headerSvixTimestamp, timestamp)
	h.Set(headerSvixSignature, "v1,bm90LXRoaXMtb25l v1,"+sig)
	return h
}

func TestVerifyWebhook(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"type":"user.created"}`)

	t.Run("valid signature", func(t *testing.T) {
		h := signWebhook("msg_1", now, string(body))
		assert.NoError(t, VerifyWebhook(testWebhookSecret(), h, body, now))
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signWebhook("msg_1", now, string(body))
		err := VerifyWebhook(testWebhookSecret(), h, []byte(`{"type":"user.deleted"}`), now)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		h := signWebhook("msg_1", now, string(body))
		other := "whsec_" + base64.StdEncoding.EncodeToString([]byte("other"))
		assert.ErrorIs(t, VerifyWebhook(other, h, body, now), domain.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		h := signWebhook("msg_1", now.Add(-6*time.Minute), string(body))
		assert.ErrorIs(t, VerifyWebhook(testWebhookSecret(), h, body, now), domain.ErrInvalidSignature)
	})

	t.Run("future timestamp", func(t *testing.T) {
		h := signWebhook("msg_1", now.Add(6*time.Minute), string(body))
		assert.ErrorIs(t, VerifyWebhook(testWebhookSecret(), h, body, now), domain.ErrInvalidSignature)
	})

	t.Run("missing headers", func(t *testing.T) {
		h := signWebhook("msg_1", now, string(body))
		h.Del(headerSvixID)
		assert.ErrorIs(t, VerifyWebhook(testWebhookSecret(), h, body, now), domain.ErrInvalidSignature)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		h := signWebhook("msg_1", now, string(body))
		h.Set(headerSvixTimestamp, "yesterday")
		assert.ErrorIs(t, VerifyWebhook(testWebhookSecret(), h, body, now), domain.ErrInvalidSignature)
	})
}

func TestDecodeIdentityEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.IdentityEvent
	}{
		{
			name: "created with full profile",
			body: `{"type":"user.created","data":{"id":"user_1",
				"email_addresses":[{"email_address":"ada@example.com"}],
				"first_name":"Ada","last_name":"Lovelace",
				"image_url":"https://img/ada.png","created_at":1700000000000}}`,
			want: domain.UserUpserted{Created: true, User: domain.User{
				ID:        "user_1",
				Email:     "ada@example.com",
				Name:      "Ada Lovelace",
				ImageURL:  "https://img/ada.png",
				CreatedAt: time.UnixMilli(1700000000000).UTC(),
			}},
		},
		{
			name: "updated falls back to username and profile image",
			body: `{"type":"user.updated","data":{"id":"user_2","email_addresses":["grace@example.com"],
				"username":"grace","profile_image_url":"https://img/grace.png"}}`,
			want: domain.UserUpserted{User: domain.User{
				ID:       "user_2",
				Email:    "grace@example.com",
				Name:     "grace",
				ImageURL: "https://img/grace.png",
			}},
		},
		{
			name: "name falls back to email",
			body: `{"type":"user.updated","data":{"id":"user_3","email_addresses":[{"email_address":"x@example.com"}]}}`,
			want: domain.UserUpserted{User: domain.User{ID: "user_3", Email: "x@example.com", Name: "x@example.com"}},
		},
		{
			name: "deleted",
			body: `{"type":"user.deleted","data":{"id":"user_4","deleted":true}}`,
			want: domain.UserDeleted{ID: "user_4"},
		},
		{
			name: "other event types",
			body: `{"type":"session.created","data":{}}`,
			want: domain.UnrecognisedEvent{Type: "session.created"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIdentityEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeIdentityEvent([]byte(`{"type":`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServer_IdentityWebhook(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{WebhookSecret: testWebhookSecret()})

	post := func(body string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/identity", strings.NewReader(body))
		for k, v := range header {
			req.Header[k] = v
		}
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	created := `{"type":"user.created","data":{"id":"user_1","first_name":"Ada"}}`
	rec := post(created, signWebhook("msg_1", time.Now(), created))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user, err := f.users.GetUser(t.Context(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	rec = post(created, signWebhook("msg_2", time.Now(), `{"type":"other"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	deleted := `{"type":"user.deleted","data":{"id":"user_1"}}`
	rec = post(deleted, signWebhook("msg_3", time.Now(), deleted))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = f.users.GetUser(t.Context(), "user_1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_IdentityWebhookWithoutSecret(t *testing.T) {
	f := newAPIFixture(t, domain.ServerSettings{})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/identity", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
