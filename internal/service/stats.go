package service

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

type statsCounter interface {
	CountContacts(ctx context.Context) (int64, error)

	CountUsers(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type statsStorage interface {
	statsCounter
	pinger
}

// HealthService backs /ping and /api/internal/stats.
type HealthService struct {
	db statsStorage
}

func NewHealthService(db statsStorage) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *HealthService) Stats(ctx context.Context) (*models.InternalStatsResponse, error) {
	contacts, err := s.db.CountContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/stats.go/Stats(): error while `s.db.CountContacts()` calling: %w", err)
	}

	users, err := s.db.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/stats.go/Stats(): error while `s.db.CountUsers()` calling: %w", err)
	}

	return &models.InternalStatsResponse{
		Contacts: contacts,
		Users:    users,
	}, nil
}
