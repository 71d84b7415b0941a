// Package jsondb keeps contacts and users in memory and writes them to a
// JSON file on Close. With an empty file name nothing is ever written.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/user"
)

type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the on-disk document. ContactsOrder keeps the
// insertion order so listings are stable.
type CacheStruct struct {
	Contacts      map[string]*models.Contact
	ContactsOrder []string
	Users         map[string]*user.User
}

func newCache() CacheStruct {
	return CacheStruct{
		Contacts:      map[string]*models.Contact{},
		ContactsOrder: []string{},
		Users:         map[string]*user.User{},
	}
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New loads fileName when it exists. A missing file is created on Close.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    newCache(),
	}
	if fileName == "" {
		return db, nil
	}

	err := parseJSONFile(fileName, &db.Cache)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
	}
	if db.Cache.Contacts == nil {
		db.Cache.Contacts = map[string]*models.Contact{}
	}
	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*user.User{}
	}

	return db, nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	if db.fileName == "" {
		return nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}

func (db *JSONDB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]models.Contact, 0, len(db.Cache.ContactsOrder))
	for _, id := range db.Cache.ContactsOrder {
		result = append(result, *db.Cache.Contacts[id])
	}

	return result, nil
}

func (db *JSONDB) GetContactByID(ctx context.Context, id string) (*models.Contact, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	contact, found := db.Cache.Contacts[id]
	if !found {
		return nil, false, nil
	}
	result := *contact

	return &result, true, nil
}

func (db *JSONDB) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *contact
	stored.ID = uuid.New().String()
	db.Cache.Contacts[stored.ID] = &stored
	db.Cache.ContactsOrder = append(db.Cache.ContactsOrder, stored.ID)
	result := stored

	return &result, nil
}

func (db *JSONDB) UpdateContact(
	ctx context.Context,
	id string,
	fields models.ContactRequest,
) (*models.Contact, bool, error) {
	return db.mutateContact(id, func(contact *models.Contact) {
		contact.Name = fields.Name
		contact.Email = fields.Email
		contact.Phone = fields.Phone
	})
}

func (db *JSONDB) UpdateContactFavorite(
	ctx context.Context,
	id string,
	favorite bool,
) (*models.Contact, bool, error) {
	return db.mutateContact(id, func(contact *models.Contact) {
		contact.Favorite = favorite
	})
}

func (db *JSONDB) mutateContact(id string, mutate func(*models.Contact)) (*models.Contact, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	contact, found := db.Cache.Contacts[id]
	if !found {
		return nil, false, nil
	}
	mutate(contact)
	result := *contact

	return &result, true, nil
}

func (db *JSONDB) RemoveContact(ctx context.Context, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Contacts[id]; !found {
		return false, nil
	}
	delete(db.Cache.Contacts, id)
	db.Cache.ContactsOrder = slices.DeleteFunc(db.Cache.ContactsOrder, func(item string) bool {
		return item == id
	})

	return true, nil
}

func (db *JSONDB) CountContacts(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Contacts)), nil
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.Cache.Users {
		if strings.EqualFold(existing.Email, usr.Email) {
			return "", models.ErrDuplicateEmail
		}
	}

	stored := *usr
	stored.ID = uuid.New().String()
	db.Cache.Users[stored.ID] = &stored

	return stored.ID, nil
}

func (db *JSONDB) GetUserByID(ctx context.Context, id string) (*user.User, bool, error) {
	return db.findUser(func(usr *user.User) bool {
		return usr.ID == id
	})
}

func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return db.findUser(func(usr *user.User) bool {
		return strings.EqualFold(usr.Email, email)
	})
}

func (db *JSONDB) GetUserByVerificationToken(ctx context.Context, token string) (*user.User, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	return db.findUser(func(usr *user.User) bool {
		return usr.VerificationToken == token
	})
}

func (db *JSONDB) findUser(match func(*user.User) bool) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if match(usr) {
			result := *usr
			return &result, true, nil
		}
	}

	return nil, false, nil
}

func (db *JSONDB) SetUserToken(ctx context.Context, id, token string) error {
	return db.mutateUser(id, func(usr *user.User) {
		usr.Token = token
	})
}

func (db *JSONDB) SetUserAvatarURL(ctx context.Context, id, avatarURL string) error {
	return db.mutateUser(id, func(usr *user.User) {
		usr.AvatarURL = avatarURL
	})
}

func (db *JSONDB) MarkUserVerified(ctx context.Context, id string) error {
	return db.mutateUser(id, func(usr *user.User) {
		usr.Verify = true
		usr.VerificationToken = ""
	})
}

func (db *JSONDB) mutateUser(id string, mutate func(*user.User)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	usr, found := db.Cache.Users[id]
	if !found {
		return models.ErrUserNotFound
	}
	mutate(usr)

	return nil
}

func (db *JSONDB) CountUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}
