package domain

import "time"

// User is an identity mirrored from the external identity provider.
type User struct {
	// ID is the provider's user identifier.
	ID string

	// Email is the primary email address, if any.
	Email string

	// Name is the display name.
	Name string

	// ImageURL is the avatar location, if any.
	ImageURL string

	// CreatedAt is when the user was first seen.
	CreatedAt time.Time

	// UpdatedAt is when the user was last updated.
	UpdatedAt time.Time
}

// IdentityEvent is a change notification from the identity provider.
// The set of variants is closed: UserUpserted, UserDeleted and
// UnrecognisedEvent.
type IdentityEvent interface {
	identityEvent()
}

// UserUpserted reports a created or updated user.
type UserUpserted struct {
	User    User
	Created bool
}

// UserDeleted reports a removed user.
type UserDeleted struct {
	ID string
}

// UnrecognisedEvent carries event types the application does not handle.
type UnrecognisedEvent struct {
	Type string
}

func (UserUpserted) identityEvent()      {}
func (UserDeleted) identityEvent()       {}
func (UnrecognisedEvent) identityEvent() {}
