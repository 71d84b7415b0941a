// Package storage declares the full method set every persistence backend
// (document store, PostgreSQL, JSON file, memory) implements.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

// ContactKeeper is the CRUD surface of the contacts collection.
// Lookups report absence through the bool result, never through an error.
type ContactKeeper interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)

	GetContactByID(ctx context.Context, id string) (*models.Contact, bool, error)

	CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)

	UpdateContact(
		ctx context.Context,
		id string,
		fields models.ContactRequest,
	) (*models.Contact, bool, error)

	UpdateContactFavorite(
		ctx context.Context,
		id string,
		favorite bool,
	) (*models.Contact, bool, error)

	RemoveContact(ctx context.Context, id string) (bool, error)

	CountContacts(ctx context.Context) (int64, error)
}

// UserKeeper is the persistence surface of user accounts.
// CreateUser reports a taken email with models.ErrDuplicateEmail.
type UserKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByID(ctx context.Context, id string) (*user.User, bool, error)

	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	GetUserByVerificationToken(ctx context.Context, token string) (*user.User, bool, error)

	// SetUserToken stores the current bearer token; an empty token clears it.
	SetUserToken(ctx context.Context, id, token string) error

	SetUserAvatarURL(ctx context.Context, id, avatarURL string) error

	// MarkUserVerified sets verify and clears the verification token.
	MarkUserVerified(ctx context.Context, id string) error

	CountUsers(ctx context.Context) (int64, error)
}

type Storage interface {
	ContactKeeper
	UserKeeper

	Ping(ctx context.Context) error

	Close() error
}
