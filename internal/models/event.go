package models

import (
	"time"

	"gorm.io/datatypes"
)

// CoverVariant is one of the predefined event cover styles.
type CoverVariant string

const (
	CoverMint     CoverVariant = "mint"
	CoverLavender CoverVariant = "lavender"
	CoverPeach    CoverVariant = "peach"
	CoverSky      CoverVariant = "sky"
)

// Valid reports whether v is a known cover variant.
func (v CoverVariant) Valid() bool {
	switch v {
	case CoverMint, CoverLavender, CoverPeach, CoverSky:
		return true
	}
	return false
}

// Event is a scheduled meetup that members can join and swipe within.
type Event struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title        string                      `json:"title" gorm:"type:varchar(100);not null"`
	Categories   datatypes.JSONSlice[string] `json:"categories" gorm:"not null"`
	StartsAt     time.Time                   `json:"starts_at" gorm:"not null;index"`
	CoverVariant CoverVariant                `json:"cover_variant" gorm:"type:varchar(16);not null;default:'mint'"`
	CustomCover  string                      `json:"custom_cover,omitempty" gorm:"type:varchar(512)"`
	Description  string                      `json:"description" gorm:"type:text"`
	AuthorID     string                      `json:"author_id" gorm:"type:varchar(36);not null;index"`
	Author       *User                       `json:"-" gorm:"foreignKey:AuthorID"`
	CreatedAt    time.Time                   `json:"created_at"`
}

// EventParticipant registers a user as attending an event.
type EventParticipant struct {
	EventID   string    `json:"event_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
}
