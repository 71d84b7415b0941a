package service

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

type contactKeeper interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)

	GetContactByID(ctx context.Context, id string) (*models.Contact, bool, error)

	CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)

	UpdateContact(
		ctx context.Context,
		id string,
		fields models.ContactRequest,
	) (*models.Contact, bool, error)

	UpdateContactFavorite(
		ctx context.Context,
		id string,
		favorite bool,
	) (*models.Contact, bool, error)

	RemoveContact(ctx context.Context, id string) (bool, error)
}

type ContactService struct {
	db        contactKeeper
	validator structValidator
}

func NewContactService(db contactKeeper, validator structValidator) *ContactService {
	return &ContactService{
		db:        db,
		validator: validator,
	}
}

func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.db.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/contacts.go/List(): error while `s.db.ListContacts()` calling: %w", err)
	}

	return contacts, nil
}

// GetByID returns models.ErrNotFound for unknown and malformed ids.
func (s *ContactService) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	contact, found, err := s.db.GetContactByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/contacts.go/GetByID(): error while `s.db.GetContactByID()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrNotFound
	}

	return contact, nil
}

// Create stores a new contact. New contacts are never favorites.
func (s *ContactService) Create(ctx context.Context, fields models.ContactRequest) (*models.Contact, error) {
	if err := s.validator.Struct(fields); err != nil {
		return nil, err
	}

	contact, err := s.db.CreateContact(ctx, &models.Contact{
		Name:     fields.Name,
		Email:    fields.Email,
		Phone:    fields.Phone,
		Favorite: false,
	})
	if err != nil {
		return nil, fmt.Errorf("in internal/service/contacts.go/Create(): error while `s.db.CreateContact()` calling: %w", err)
	}

	return contact, nil
}

// Update replaces name, email and phone. The favorite flag is kept.
func (s *ContactService) Update(ctx context.Context, id string, fields models.ContactRequest) (*models.Contact, error) {
	if err := s.validator.Struct(fields); err != nil {
		return nil, err
	}

	contact, found, err := s.db.UpdateContact(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/contacts.go/Update(): error while `s.db.UpdateContact()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrNotFound
	}

	return contact, nil
}

func (s *ContactService) UpdateFavorite(
	ctx context.Context,
	id string,
	fields models.FavoriteRequest,
) (*models.Contact, error) {
	if fields.Favorite == nil {
		return nil, models.ErrMissingFavorite
	}

	contact, found, err := s.db.UpdateContactFavorite(ctx, id, *fields.Favorite)
	if err != nil {
		return nil,
			fmt.Errorf("in internal/service/contacts.go/UpdateFavorite(): error while `s.db.UpdateContactFavorite()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrNotFound
	}

	return contact, nil
}

func (s *ContactService) Remove(ctx context.Context, id string) error {
	removed, err := s.db.RemoveContact(ctx, id)
	if err != nil {
		return fmt.Errorf("in internal/service/contacts.go/Remove(): error while `s.db.RemoveContact()` calling: %w", err)
	}
	if !removed {
		return models.ErrNotFound
	}

	return nil
}
