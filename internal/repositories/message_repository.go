package repositories

import (
	"context"
	"time"

	"meetmatch/internal/models"
)

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListBefore(ctx context.Context, chatID string, before *time.Time, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, ids []string) (int64, error)
	Latest(ctx context.Context, chatID string) (*models.Message, error)
	CountUnread(ctx context.Context, chatID, readerID string) (int64, error)
}
