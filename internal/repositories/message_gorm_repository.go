package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meetmatch/internal/models"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create stores a new unread message.
func (r *GORMMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.Read = false
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return translate(err, "failed to create message in chat %s", msg.ChatID)
	}
	return nil
}

// ListBefore returns up to limit messages of chatID, newest first. When
// before is set only messages strictly older than it are considered.
func (r *GORMMessageRepository) ListBefore(ctx context.Context, chatID string, before *time.Time, limit int) ([]models.Message, error) {
	query := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if before != nil {
		query = query.Where("created_at < ?", before.UTC())
	}

	var messages []models.Message
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, translate(err, "failed to list messages of chat %s", chatID)
	}
	return messages, nil
}

// MarkRead flags the given messages as read. Already read rows are untouched.
func (r *GORMMessageRepository) MarkRead(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id IN ? AND read = ?", ids, false).
		Update("read", true)
	if res.Error != nil {
		return 0, translate(res.Error, "failed to mark messages read")
	}
	return res.RowsAffected, nil
}

// Latest returns the most recent message of chatID, or nil when the chat is empty.
func (r *GORMMessageRepository) Latest(ctx context.Context, chatID string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").Order("id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "failed to get latest message of chat %s", chatID)
	}
	return &msg, nil
}

// CountUnread counts unread messages in chatID written by anyone but readerID.
func (r *GORMMessageRepository) CountUnread(ctx context.Context, chatID, readerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read = ?", chatID, readerID, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "failed to count unread messages of chat %s", chatID)
	}
	return count, nil
}
