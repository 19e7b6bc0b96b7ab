package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a registered member.
type User struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string                      `json:"name" gorm:"type:varchar(100);not null"`
	Email        string                      `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string                      `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	AvatarURL    string                      `json:"avatar_url,omitempty" gorm:"type:varchar(512)"`
	Age          *int                        `json:"age,omitempty" gorm:"index"`
	Gender       string                      `json:"gender,omitempty" gorm:"type:varchar(16);index"`
	Bio          string                      `json:"bio,omitempty" gorm:"type:text"`
	Interests    datatypes.JSONSlice[string] `json:"interests"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
