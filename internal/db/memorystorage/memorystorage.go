// Package memorystorage is the default backend when no database is configured.
// Everything is lost on restart.
package memorystorage

import (
	"github.com/patric-chuzhbe/contactsapi/internal/db/jsondb"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	db, err := jsondb.New("")
	if err != nil {
		return nil, err
	}

	return &MemoryStorage{JSONDB: db}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
