package repositories

import (
	"context"

	"meetmatch/internal/models"
)

// EventRepository defines the interface for event data access.
type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	AddParticipant(ctx context.Context, eventID, userID string) (bool, error)
	ListParticipants(ctx context.Context, eventID string) ([]models.User, error)
	ParticipationsOf(ctx context.Context, userIDs []string) (map[string][]string, error)
}
