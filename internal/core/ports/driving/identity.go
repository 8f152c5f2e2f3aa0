package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// IdentityService mirrors identity provider changes into the user store.
type IdentityService interface {
	// Handle applies an identity event. Unrecognised events are ignored.
	Handle(ctx context.Context, event domain.IdentityEvent) error
}
