// Package storagetest holds the behaviour every storage backend must share.
// Backends that need an external server call Run from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/contactsapi/internal/db/storage"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

// Run expects an empty storage and leaves data behind.
// unknownID must be well formed for the backend but match nothing.
func Run(t *testing.T, theStorage storage.Storage, unknownID string) {
	t.Run("contacts", func(t *testing.T) {
		testContacts(t, theStorage, unknownID)
	})
	t.Run("users", func(t *testing.T) {
		testUsers(t, theStorage, unknownID)
	})
}

func testContacts(t *testing.T, theStorage storage.Storage, unknownID string) {
	ctx := context.Background()

	first, err := theStorage.CreateContact(ctx, &models.Contact{Name: "Allen", Email: "allen@mail.com", Phone: "1"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Favorite)

	second, err := theStorage.CreateContact(ctx, &models.Contact{Name: "Kennedy", Email: "kennedy@mail.net", Phone: "2"})
	require.NoError(t, err)

	contacts, err := theStorage.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, first.ID, contacts[0].ID)

	updated, found, err := theStorage.UpdateContact(ctx, second.ID, models.ContactRequest{Name: "K", Email: "k@mail.net", Phone: "3"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "K", updated.Name)
	assert.Equal(t, second.ID, updated.ID)

	favorite, found, err := theStorage.UpdateContactFavorite(ctx, second.ID, true)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, favorite.Favorite)
	assert.Equal(t, "k@mail.net", favorite.Email)

	for _, id := range []string{unknownID, "not-an-id"} {
		_, found, err = theStorage.GetContactByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, found, id)

		_, found, err = theStorage.UpdateContact(ctx, id, models.ContactRequest{Name: "n", Email: "e@mail.com", Phone: "p"})
		require.NoError(t, err)
		assert.False(t, found, id)

		_, found, err = theStorage.UpdateContactFavorite(ctx, id, true)
		require.NoError(t, err)
		assert.False(t, found, id)

		removed, err := theStorage.RemoveContact(ctx, id)
		require.NoError(t, err)
		assert.False(t, removed, id)
	}

	removed, err := theStorage.RemoveContact(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, found, err = theStorage.GetContactByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, found)

	count, err := theStorage.CountContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testUsers(t *testing.T, theStorage storage.Storage, unknownID string) {
	ctx := context.Background()

	userID, err := theStorage.CreateUser(ctx, &user.User{
		Email:             "a@b.com",
		PasswordHash:      "hash",
		Subscription:      user.SubscriptionStarter,
		AvatarURL:         "https://www.gravatar.com/avatar/x",
		VerificationToken: "vt",
	})
	require.NoError(t, err)

	_, err = theStorage.CreateUser(ctx, &user.User{Email: "A@B.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	usr, found, err := theStorage.GetUserByEmail(ctx, "A@b.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, userID, usr.ID)
	assert.Equal(t, "hash", usr.PasswordHash)
	assert.Equal(t, user.SubscriptionStarter, usr.Subscription)
	assert.Empty(t, usr.Token)
	assert.False(t, usr.Verify)

	require.NoError(t, theStorage.SetUserToken(ctx, userID, "token-1"))
	require.NoError(t, theStorage.SetUserAvatarURL(ctx, userID, "/avatars/x.png"))

	usr, found, err = theStorage.GetUserByVerificationToken(ctx, "vt")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "token-1", usr.Token)
	assert.Equal(t, "/avatars/x.png", usr.AvatarURL)

	require.NoError(t, theStorage.SetUserToken(ctx, userID, ""))
	require.NoError(t, theStorage.MarkUserVerified(ctx, userID))

	_, found, err = theStorage.GetUserByVerificationToken(ctx, "vt")
	require.NoError(t, err)
	assert.False(t, found)

	usr, found, err = theStorage.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, usr.Verify)
	assert.Empty(t, usr.Token)
	assert.Empty(t, usr.VerificationToken)

	assert.ErrorIs(t, theStorage.SetUserToken(ctx, unknownID, "t"), models.ErrUserNotFound)

	_, found, err = theStorage.GetUserByID(ctx, "not-an-id")
	require.NoError(t, err)
	assert.False(t, found)

	count, err := theStorage.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, theStorage.Ping(ctx))
}
