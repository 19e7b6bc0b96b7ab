package models

import "time"

// Direction is the preference expressed by a swipe.
type Direction string

const (
	DirectionLeft  Direction = "left"  // pass
	DirectionRight Direction = "right" // like
)

// Valid reports whether d is left or right.
func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// Swipe is an immutable record of one user's preference about another.
// At most one swipe exists per (swiper, target) pair.
type Swipe struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SwiperID  string    `json:"swiper_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_swipes_pair,priority:1"`
	TargetID  string    `json:"target_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_swipes_pair,priority:2;index"`
	Direction Direction `json:"direction" gorm:"type:varchar(5);not null"`
	EventID   *string   `json:"event_id" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
}
