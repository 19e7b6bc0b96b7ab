package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meetmatch/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, "failed to create user %s", user.Email)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, "user with email %s", email)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user with ID %s", id)
	}
	return &user, nil
}

// GetByIDs retrieves every existing user among ids. Missing ids are skipped.
func (r *GORMUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err, "failed to get users by IDs")
	}
	return users, nil
}

// Update saves the profile columns of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).
		Select("name", "avatar_url", "age", "gender", "bio", "interests", "password_hash", "updated_at").
		Updates(user)
	if res.Error != nil {
		return translate(res.Error, "failed to update user %s", user.ID)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user with ID %s", user.ID)
	}
	return nil
}

// FindCandidates returns event participants the requester has not swiped yet.
// Without an event the pool is every user registered for at least one event.
func (r *GORMUserRepository) FindCandidates(ctx context.Context, f CandidateFilter) ([]models.User, error) {
	db := r.db.WithContext(ctx)

	participants := db.Model(&models.EventParticipant{}).Select("user_id")
	if f.EventID != "" {
		participants = participants.Where("event_id = ?", f.EventID)
	}
	swiped := db.Model(&models.Swipe{}).Select("target_id").Where("swiper_id = ?", f.RequesterID)

	query := db.Model(&models.User{}).
		Where("id <> ?", f.RequesterID).
		Where("id IN (?)", participants).
		Where("id NOT IN (?)", swiped)

	if f.Gender != "" {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.MinAge != nil {
		query = query.Where("age >= ?", *f.MinAge)
	}
	if f.MaxAge != nil {
		query = query.Where("age <= ?", *f.MaxAge)
	}
	// Every token has to partially match the serialized interests list.
	for _, interest := range f.Interests {
		query = query.Where("LOWER(CAST(interests AS TEXT)) LIKE ?", "%"+strings.ToLower(interest)+"%")
	}

	var users []models.User
	if err := query.Order("created_at ASC").Limit(f.Limit).Find(&users).Error; err != nil {
		return nil, translate(err, "failed to find candidates for %s", f.RequesterID)
	}
	return users, nil
}
