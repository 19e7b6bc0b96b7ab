package repositories

import (
	"context"

	"meetmatch/internal/models"
)

// ChatRepository defines the interface for chat data access.
type ChatRepository interface {
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	FindByKey(ctx context.Context, user1ID, user2ID string, eventID *string) (*models.Chat, error)
	InsertIfAbsent(ctx context.Context, chat *models.Chat) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.Chat, error)
}
