// Package models holds the request/response payloads, the contact entity
// and the error taxonomy shared by the service, storage and router layers.
package models

// Contact is an entry of the global phone book.
type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

// ContactRequest is the body of the create and update contact endpoints.
// Partial updates are rejected: every field is required on both.
type ContactRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email,tld=com net"`
	Phone string `json:"phone" validate:"required"`
}

// FavoriteRequest is the body of PATCH /api/contacts/{contactId}/favorite.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

// ContactEnvelope is the uniform success body of the contact endpoints.
type ContactEnvelope struct {
	Status  int            `json:"status"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// CredentialsRequest is the body of signup and login.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ResendVerificationRequest is the body of POST /api/users/verify.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SignupUser struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
	AvatarURL    string `json:"avatarURL"`
}

type SignupResponse struct {
	User SignupUser `json:"user"`
}

type CurrentUserResponse struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  CurrentUserResponse `json:"user"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// InternalStatsResponse is served to callers from the trusted subnet.
type InternalStatsResponse struct {
	Contacts int64 `json:"contacts"`
	Users    int64 `json:"users"`
}

const (
	StorageTypeUnknown = iota
	StorageTypeMongo
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
