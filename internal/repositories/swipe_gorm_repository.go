package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meetmatch/internal/models"
)

// GORMSwipeRepository is a GORM implementation of SwipeRepository.
type GORMSwipeRepository struct {
	db *gorm.DB
}

// NewGORMSwipeRepository creates a new instance of GORMSwipeRepository.
func NewGORMSwipeRepository(db *gorm.DB) *GORMSwipeRepository {
	return &GORMSwipeRepository{
		db: db,
	}
}

// Create appends a swipe. A second swipe for the same pair fails with ErrDuplicate.
func (r *GORMSwipeRepository) Create(ctx context.Context, swipe *models.Swipe) error {
	if swipe.ID == "" {
		swipe.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(swipe).Error; err != nil {
		return translate(err, "failed to record swipe %s -> %s", swipe.SwiperID, swipe.TargetID)
	}
	return nil
}

// Get returns the swipe from swiperID to targetID.
func (r *GORMSwipeRepository) Get(ctx context.Context, swiperID, targetID string) (*models.Swipe, error) {
	var swipe models.Swipe
	err := r.db.WithContext(ctx).
		Where("swiper_id = ? AND target_id = ?", swiperID, targetID).
		First(&swipe).Error
	if err != nil {
		return nil, translate(err, "swipe %s -> %s", swiperID, targetID)
	}
	return &swipe, nil
}

// HasRightSwipe reports whether swiperID liked targetID.
func (r *GORMSwipeRepository) HasRightSwipe(ctx context.Context, swiperID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Swipe{}).
		Where("swiper_id = ? AND target_id = ? AND direction = ?", swiperID, targetID, models.DirectionRight).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "failed to check swipe %s -> %s", swiperID, targetID)
	}
	return count > 0, nil
}
