package repositories

import (
	"context"

	"meetmatch/internal/models"
)

// CandidateFilter narrows the swipe candidate pool. Zero values disable a filter.
type CandidateFilter struct {
	RequesterID string
	EventID     string
	Gender      string
	MinAge      *int
	MaxAge      *int
	Interests   []string
	Limit       int
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	FindCandidates(ctx context.Context, filter CandidateFilter) ([]models.User, error)
}
