package diskstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/contactsapi/internal/filestore"
)

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "public", "avatars")

	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("first"), "image/png"))
	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("second"), "image/png"))

	onDisk, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(onDisk))

	file, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "second", string(content))

	_, err = store.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, filestore.ErrNotExist)

	_, err = store.Open(ctx, "../avatars/a.png")
	assert.ErrorIs(t, err, filestore.ErrNotExist)

	err = store.Save(ctx, "../escape.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, filestore.ErrInvalidName)
}
