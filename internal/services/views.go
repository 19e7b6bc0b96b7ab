package services

import (
	"time"

	"meetmatch/internal/models"
)

// Profile is the public part of a user record.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Age          *int      `json:"age,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Interests    []string  `json:"interests"`
	JoinedEvents []string  `json:"joined_events,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewProfile strips private fields from u.
func NewProfile(u *models.User) *Profile {
	interests := []string(u.Interests)
	if interests == nil {
		interests = []string{}
	}
	return &Profile{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Interests: interests,
		CreatedAt: u.CreatedAt,
	}
}

// EventView is the API shape of an event. Author fields are only filled
// when the author was loaded.
type EventView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Categories   []string  `json:"categories"`
	StartsAt     time.Time `json:"startsAt"`
	CoverVariant string    `json:"coverVariant"`
	CustomCover  string    `json:"customCover,omitempty"`
	Description  string    `json:"description"`
	AuthorID     string    `json:"author_id"`
	Author       string    `json:"author,omitempty"`
	AuthorName   string    `json:"authorName,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEventView converts e for output.
func NewEventView(e *models.Event) *EventView {
	view := &EventView{
		ID:           e.ID,
		Title:        e.Title,
		Categories:   []string(e.Categories),
		StartsAt:     e.StartsAt,
		CoverVariant: string(e.CoverVariant),
		CustomCover:  e.CustomCover,
		Description:  e.Description,
		AuthorID:     e.AuthorID,
		CreatedAt:    e.CreatedAt,
	}
	if len(view.Categories) > 0 {
		view.Category = view.Categories[0]
	}
	if e.Author != nil {
		view.Author = e.Author.Email
		view.AuthorName = e.Author.Name
	}
	return view
}

// EventRef identifies the event a chat belongs to.
type EventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ChatView is a chat as seen by one of its participants.
type ChatView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Interlocutor *Profile  `json:"interlocutor"`
	Event        *EventRef `json:"event"`
	CreatedAt    time.Time `json:"created_at"`
}

// LastMessage summarizes the newest message of a chat.
type LastMessage struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	IsOwn      bool      `json:"is_own"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatSummary is one entry of a user's chat list.
type ChatSummary struct {
	ChatView
	LastMessage *LastMessage `json:"last_message"`
	UnreadCount int64        `json:"unread_count"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// MessageView is a message as seen by one of the chat participants.
type MessageView struct {
	ID           string    `json:"id"`
	TempID       string    `json:"temp_id,omitempty"`
	ChatID       string    `json:"chat_id"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar,omitempty"`
	Content      string    `json:"content"`
	Read         bool      `json:"read"`
	IsOwn        bool      `json:"is_own"`
	CreatedAt    time.Time `json:"created_at"`
}

// chatName renders "<counterpart> (<event title>)" or just the counterpart name.
func chatName(counterpart string, event *EventRef) string {
	if event != nil && event.Title != "" {
		return counterpart + " (" + event.Title + ")"
	}
	return counterpart
}

func eventRef(e *models.Event) *EventRef {
	if e == nil {
		return nil
	}
	return &EventRef{ID: e.ID, Title: e.Title}
}
