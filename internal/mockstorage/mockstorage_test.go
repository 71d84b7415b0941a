package mockstorage

import (
	"github.com/patric-chuzhbe/contactsapi/internal/db/storage"
)

var _ storage.Storage = (*StorageMock)(nil)
