package repositories

import (
	"context"

	"meetmatch/internal/models"
)

// SwipeRepository defines the interface for the append-only swipe ledger.
type SwipeRepository interface {
	Create(ctx context.Context, swipe *models.Swipe) error
	Get(ctx context.Context, swiperID, targetID string) (*models.Swipe, error)
	HasRightSwipe(ctx context.Context, swiperID, targetID string) (bool, error)
}
