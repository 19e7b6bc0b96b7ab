package models

import "time"

// Chat is the conversation between a matched pair, optionally scoped to an
// event. User1ID is always the lexicographically smaller identifier.
type Chat struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	User1ID   string    `json:"user1_id" gorm:"type:varchar(36);not null;index"`
	User2ID   string    `json:"user2_id" gorm:"type:varchar(36);not null;index"`
	EventID   *string   `json:"event_id" gorm:"type:varchar(36)"`
	Event     *Event    `json:"-" gorm:"foreignKey:EventID"`
	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant reports whether userID is one of the two chat members.
func (c *Chat) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Counterpart returns the member that is not userID.
func (c *Chat) Counterpart(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// Message is a single chat line. Only the read flag ever changes, and only
// from false to true.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ChatID    string    `json:"chat_id" gorm:"type:varchar(36);not null;index:idx_messages_chat_created,priority:1"`
	SenderID  string    `json:"sender_id" gorm:"type:varchar(36);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_messages_chat_created,priority:2"`
}
