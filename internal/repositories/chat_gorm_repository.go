package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meetmatch/internal/models"
)

// GORMChatRepository is a GORM implementation of ChatRepository.
type GORMChatRepository struct {
	db *gorm.DB
}

// NewGORMChatRepository creates a new instance of GORMChatRepository.
func NewGORMChatRepository(db *gorm.DB) *GORMChatRepository {
	return &GORMChatRepository{
		db: db,
	}
}

// GetByID retrieves a chat with its event.
func (r *GORMChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).Preload("Event").First(&chat, "id = ?", id).Error; err != nil {
		return nil, translate(err, "chat with ID %s", id)
	}
	return &chat, nil
}

// FindByKey looks a chat up by canonical pair and event. A nil event only
// matches general chats.
func (r *GORMChatRepository) FindByKey(ctx context.Context, user1ID, user2ID string, eventID *string) (*models.Chat, error) {
	query := r.db.WithContext(ctx).Where("user1_id = ? AND user2_id = ?", user1ID, user2ID)
	if eventID == nil {
		query = query.Where("event_id IS NULL")
	} else {
		query = query.Where("event_id = ?", *eventID)
	}

	var chat models.Chat
	if err := query.First(&chat).Error; err != nil {
		return nil, translate(err, "chat for %s/%s", user1ID, user2ID)
	}
	return &chat, nil
}

// InsertIfAbsent inserts chat unless a chat with the same key exists. It
// reports whether a row was written; losing a creation race is not an error.
func (r *GORMChatRepository) InsertIfAbsent(ctx context.Context, chat *models.Chat) (bool, error) {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(chat)
	if res.Error != nil {
		return false, translate(res.Error, "failed to create chat for %s/%s", chat.User1ID, chat.User2ID)
	}
	return res.RowsAffected == 1, nil
}

// ListForUser returns every chat userID takes part in, newest first.
func (r *GORMChatRepository) ListForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, translate(err, "failed to list chats of %s", userID)
	}
	return chats, nil
}
