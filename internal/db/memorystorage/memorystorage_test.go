package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patric-chuzhbe/contactsapi/internal/db/storage"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

var _ storage.Storage = (*MemoryStorage)(nil)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New()
		assert.NoError(t, err, "The memorystorage.New() should not return error")

		created, err := theStorage.CreateContact(context.Background(), &models.Contact{Name: "n", Email: "e@mail.com", Phone: "1"})
		assert.NoError(t, err, "The `theStorage.CreateContact()` should not return error")

		contact, found, err := theStorage.GetContactByID(context.Background(), created.ID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, *created, *contact)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}
