package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

func TestContactRequest(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		payload models.ContactRequest
		message string
	}{
		{
			name:    "valid .com",
			payload: models.ContactRequest{Name: "Allen Raymond", Email: "nulla.ante@vestibul.com", Phone: "(992) 914-3792"},
		},
		{
			name:    "valid .net",
			payload: models.ContactRequest{Name: "Chaim Lewis", Email: "dui.in@egetlacus.NET", Phone: "(294) 840-6685"},
		},
		{
			name:    "missing name",
			payload: models.ContactRequest{Email: "a@b.com", Phone: "1"},
			message: `"name" is required`,
		},
		{
			name:    "missing phone",
			payload: models.ContactRequest{Name: "n", Email: "a@b.com"},
			message: `"phone" is required`,
		},
		{
			name:    "malformed email",
			payload: models.ContactRequest{Name: "n", Email: "not-an-email", Phone: "1"},
			message: `"email" must be a valid email`,
		},
		{
			name:    "tld outside the allow-list",
			payload: models.ContactRequest{Name: "n", Email: "someone@example.org", Phone: "1"},
			message: `"email" must have one of the allowed top level domains: com, net`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.message, validationErr.Message)
		})
	}
}

func TestCredentialsRequest(t *testing.T) {
	v := MustNew()

	assert.NoError(t, v.Struct(models.CredentialsRequest{Email: "a@b.com", Password: "secret1"}))

	err := v.Struct(models.CredentialsRequest{Email: "a@b.com", Password: "12345"})
	require.Error(t, err)
	assert.Equal(t, `"password" length must be at least 6 characters long`, err.Error())

	err = v.Struct(models.CredentialsRequest{Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, `"email" is required`, err.Error())

	// credentials accept any TLD, only contacts are restricted
	assert.NoError(t, v.Struct(models.CredentialsRequest{Email: "a@b.io", Password: "secret1"}))
}

func TestFavoriteRequest(t *testing.T) {
	v := MustNew()
	favorite := false

	assert.NoError(t, v.Struct(models.FavoriteRequest{Favorite: &favorite}))
	assert.Error(t, v.Struct(models.FavoriteRequest{}))
}
