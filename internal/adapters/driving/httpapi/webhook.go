package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Svix webhook headers.
const (
	headerSvixID        = "svix-id"
	headerSvixTimestamp = "svix-timestamp"
	headerSvixSignature = "svix-signature"
)

// webhookTolerance is how far a webhook timestamp may drift from now.
const webhookTolerance = 5 * time.Minute

// maxWebhookBody bounds webhook payloads.
const maxWebhookBody = 1 << 20

// Identity provider event types.
const (
	eventUserCreated = "user.created"
	eventUserUpdated = "user.updated"
	eventUserDeleted = "user.deleted"
)

func (s *Server) handleIdentityWebhook(w http.ResponseWriter, r *http.Request) {
	if s.settings.WebhookSecret == "" {
		writeError(w, errors.New("webhook secret is not configured"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err))
		return
	}

	if err := VerifyWebhook(s.settings.WebhookSecret, r.Header, body, s.now()); err != nil {
		logger.Warn("http: rejected identity webhook: %v", err)
		writeError(w, err)
		return
	}

	event, err := DecodeIdentityEvent(body)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ports.Identity.Handle(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// VerifyWebhook checks a Svix-signed payload. The secret is the base64 key
// after the "whsec_" prefix; the signature header carries space separated
// "v1,<base64 HMAC-SHA256>" entries over "id.timestamp.body".
func VerifyWebhook(secret string, header http.Header, body []byte, now time.Time) error {
	id := header.Get(headerSvixID)
	timestamp := header.Get(headerSvixTimestamp)
	signatures := header.Get(headerSvixSignature)
	if id == "" || timestamp == "" || signatures == "" {
		return fmt.Errorf("%w: missing svix headers", domain.ErrInvalidSignature)
	}

	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", domain.ErrInvalidSignature, timestamp)
	}
	sent := time.Unix(seconds, 0)
	if sent.Before(now.Add(-webhookTolerance)) || sent.After(now.Add(webhookTolerance)) {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrInvalidSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return fmt.Errorf("decode webhook secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, entry := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching signature", domain.ErrInvalidSignature)
}

type webhookEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type webhookUser struct {
	ID              string            `json:"id"`
	EmailAddresses  []json.RawMessage `json:"email_addresses"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	Username        string            `json:"username"`
	ImageURL        string            `json:"image_url"`
	ProfileImageURL string            `json:"profile_image_url"`
	CreatedAt       int64             `json:"created_at"`
}

// DecodeIdentityEvent turns an identity provider payload into a domain event.
// Event types other than user created, updated and deleted decode to
// domain.UnrecognisedEvent.
func DecodeIdentityEvent(body []byte) (domain.IdentityEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload: %v", domain.ErrInvalidInput, err)
	}

	switch env.Type {
	case eventUserCreated, eventUserUpdated:
		var u webhookUser
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return nil, fmt.Errorf("%w: malformed user data: %v", domain.ErrInvalidInput, err)
		}
		return domain.UserUpserted{User: u.toDomain(), Created: env.Type == eventUserCreated}, nil

	case eventUserDeleted:
		var d struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: malformed delete data: %v", domain.ErrInvalidInput, err)
		}
		return domain.UserDeleted{ID: d.ID}, nil

	default:
		return domain.UnrecognisedEvent{Type: env.Type}, nil
	}
}

func (u webhookUser) toDomain() domain.User {
	user := domain.User{
		ID:       u.ID,
		Email:    u.primaryEmail(),
		ImageURL: u.ImageURL,
	}
	if user.ImageURL == "" {
		user.ImageURL = u.ProfileImageURL
	}

	user.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	if user.Name == "" {
		user.Name = u.Username
	}
	if user.Name == "" {
		user.Name = user.Email
	}

	if u.CreatedAt > 0 {
		user.CreatedAt = time.UnixMilli(u.CreatedAt).UTC()
	}
	return user
}

// primaryEmail returns the first address, which may be an object or a bare string.
func (u webhookUser) primaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	first := u.EmailAddresses[0]

	var entry struct {
		EmailAddress string `json:"email_address"`
	}
	if err := json.Unmarshal(first, &entry); err == nil {
		return entry.EmailAddress
	}

	var plain string
	if err := json.Unmarshal(first, &plain); err == nil {
		return plain
	}
	return ""
}
