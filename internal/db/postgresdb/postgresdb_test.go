package postgresdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/contactsapi/internal/db/storagetest"
)

// TEST_DATABASE_DSN must point to a disposable database: every table is dropped.
func TestPostgresDB(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	db, err := New(
		context.Background(),
		dsn,
		5*time.Second,
		"../../../cmd/contactsapi/migrations",
		WithDBPreReset(true),
	)
	require.NoError(t, err)
	defer db.Close()

	storagetest.Run(t, db, "00000000-0000-0000-0000-000000000000")
}
