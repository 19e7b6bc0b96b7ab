package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meetmatch/internal/models"
)

// GORMEventRepository is a GORM implementation of EventRepository.
type GORMEventRepository struct {
	db *gorm.DB
}

// NewGORMEventRepository creates a new instance of GORMEventRepository.
func NewGORMEventRepository(db *gorm.DB) *GORMEventRepository {
	return &GORMEventRepository{
		db: db,
	}
}

// List retrieves all events with their authors, soonest first.
func (r *GORMEventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Joins("Author").
		Order("events.starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "failed to list events")
	}
	return events, nil
}

// GetByID retrieves a single event with its author.
func (r *GORMEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Joins("Author").First(&event, "events.id = ?", id).Error; err != nil {
		return nil, translate(err, "event with ID %s", id)
	}
	return &event, nil
}

// Create creates a new event in the database.
func (r *GORMEventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return translate(err, "failed to create event")
	}
	return nil
}

// AddParticipant registers userID for eventID. It reports false when the
// user was already registered.
func (r *GORMEventRepository) AddParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EventParticipant{EventID: eventID, UserID: userID})
	if res.Error != nil {
		return false, translate(res.Error, "failed to add participant %s to event %s", userID, eventID)
	}
	return res.RowsAffected == 1, nil
}

// ListParticipants returns the users registered for eventID.
func (r *GORMEventRepository) ListParticipants(ctx context.Context, eventID string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN event_participants ep ON ep.user_id = users.id").
		Where("ep.event_id = ?", eventID).
		Order("ep.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "failed to list participants of event %s", eventID)
	}
	return users, nil
}

// ParticipationsOf maps each user id to the events that user joined.
func (r *GORMEventRepository) ParticipationsOf(ctx context.Context, userIDs []string) (map[string][]string, error) {
	joined := make(map[string][]string, len(userIDs))
	if len(userIDs) == 0 {
		return joined, nil
	}

	var rows []models.EventParticipant
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "failed to load participations")
	}
	for _, row := range rows {
		joined[row.UserID] = append(joined[row.UserID], row.EventID)
	}
	return joined, nil
}
