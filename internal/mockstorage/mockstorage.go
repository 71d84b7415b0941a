// Package mockstorage provides a testify-based mock implementation
// of storage.Storage. Router and service tests use it to drive the
// failure paths a real backend rarely takes.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

// StorageMock is a testify mock that implements storage.Storage.
type StorageMock struct {
	mock.Mock

	// OnCountUsers, when set, answers CountUsers instead of the
	// generic mock handler.
	OnCountUsers func(ctx context.Context) (int64, error)

	// OnCountContacts, when set, answers CountContacts instead of the
	// generic mock handler.
	OnCountContacts func(ctx context.Context) (int64, error)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *StorageMock) ListContacts(ctx context.Context) ([]models.Contact, error) {
	args := m.Called(ctx)
	contacts, _ := args.Get(0).([]models.Contact)
	return contacts, args.Error(1)
}

func (m *StorageMock) GetContactByID(ctx context.Context, id string) (*models.Contact, bool, error) {
	args := m.Called(ctx, id)
	contact, _ := args.Get(0).(*models.Contact)
	return contact, args.Bool(1), args.Error(2)
}

func (m *StorageMock) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	args := m.Called(ctx, contact)
	created, _ := args.Get(0).(*models.Contact)
	return created, args.Error(1)
}

func (m *StorageMock) UpdateContact(
	ctx context.Context,
	id string,
	fields models.ContactRequest,
) (*models.Contact, bool, error) {
	args := m.Called(ctx, id, fields)
	contact, _ := args.Get(0).(*models.Contact)
	return contact, args.Bool(1), args.Error(2)
}

func (m *StorageMock) UpdateContactFavorite(
	ctx context.Context,
	id string,
	favorite bool,
) (*models.Contact, bool, error) {
	args := m.Called(ctx, id, favorite)
	contact, _ := args.Get(0).(*models.Contact)
	return contact, args.Bool(1), args.Error(2)
}

func (m *StorageMock) RemoveContact(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// CountContacts delegates to OnCountContacts when it is set.
func (m *StorageMock) CountContacts(ctx context.Context) (int64, error) {
	if m.OnCountContacts != nil {
		return m.OnCountContacts(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

func (m *StorageMock) GetUserByID(ctx context.Context, id string) (*user.User, bool, error) {
	args := m.Called(ctx, id)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetUserByVerificationToken(ctx context.Context, token string) (*user.User, bool, error) {
	args := m.Called(ctx, token)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

func (m *StorageMock) SetUserToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *StorageMock) SetUserAvatarURL(ctx context.Context, id, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

func (m *StorageMock) MarkUserVerified(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CountUsers delegates to OnCountUsers when it is set.
func (m *StorageMock) CountUsers(ctx context.Context) (int64, error) {
	if m.OnCountUsers != nil {
		return m.OnCountUsers(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
