package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"meetmatch/internal/metrics"
	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	applog "meetmatch/pkg/log"
)

// SendMessageInput is a message posted by a chat participant. TempID is an
// opaque client correlation id echoed back in the response.
type SendMessageInput struct {
	ChatID   string
	SenderID string
	Content  string
	TempID   string
}

// SentMessage is the result of a successful send.
type SentMessage struct {
	Message    MessageView `json:"message"`
	Receiver   *Profile    `json:"receiver"`
	EventTitle *string     `json:"event_title"`
}

// ListMessagesInput selects a page of a chat's history.
type ListMessagesInput struct {
	ChatID string
	UserID string
	Limit  int        // 0 means the default page size
	Before *time.Time // only messages strictly older than this
}

// Pagination describes the returned page.
type Pagination struct {
	Limit         int        `json:"limit"`
	HasMore       bool       `json:"has_more"`
	OldestMessage *time.Time `json:"oldest_message"`
	TotalLoaded   int        `json:"total_loaded"`
}

// MessagePage is a chronological slice of chat history.
type MessagePage struct {
	Chat       ChatView      `json:"chat"`
	Messages   []MessageView `json:"messages"`
	Pagination Pagination    `json:"pagination"`
}

// PageLimits bounds the page size of ListMessages.
type PageLimits struct {
	Default int
	Max     int
}

// MessageService stores and pages chat messages.
type MessageService struct {
	store     *repositories.Store
	chats     *ChatService
	limits    PageLimits
	publisher ActivityPublisher
	log       zerolog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(store *repositories.Store, chats *ChatService, limits PageLimits, publisher ActivityPublisher) *MessageService {
	return &MessageService{
		store:     store,
		chats:     chats,
		limits:    limits,
		publisher: publisher,
		log:       applog.WithComponent("messages"),
	}
}

// SendMessage appends a message. The sender must take part in the chat and
// still have a mutual match with the other participant.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*SentMessage, error) {
	content := strings.TrimSpace(in.Content)
	if in.ChatID == "" || in.SenderID == "" {
		return nil, validationError("missing_fields", "chatId and senderId are required")
	}
	if content == "" {
		return nil, validationError("empty_content", "message content cannot be empty")
	}

	chat, err := loadChatFor(ctx, s.store, in.ChatID, in.SenderID)
	if err != nil {
		return nil, err
	}
	receiverID := chat.Counterpart(in.SenderID)

	matched, err := hasMutualMatch(ctx, s.store, in.SenderID, receiverID)
	if err != nil {
		return nil, internalError("failed to check match", err)
	}
	if !matched {
		return nil, forbiddenError("no_mutual_match", "no mutual match with this user")
	}

	msg := &models.Message{ChatID: chat.ID, SenderID: in.SenderID, Content: content}
	if err := s.store.Messages.Create(ctx, msg); err != nil {
		return nil, internalError("failed to store message", err)
	}

	profiles, err := s.chats.profilesByID(ctx, []string{in.SenderID, receiverID})
	if err != nil {
		return nil, err
	}
	sender, receiver := profiles[in.SenderID], profiles[receiverID]

	view := MessageView{
		ID:        msg.ID,
		TempID:    in.TempID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Read:      msg.Read,
		IsOwn:     true,
		CreatedAt: msg.CreatedAt,
	}
	if sender != nil {
		view.SenderName = sender.Name
		view.SenderAvatar = sender.AvatarURL
	}

	result := &SentMessage{Message: view, Receiver: receiver}
	if chat.Event != nil {
		title := chat.Event.Title
		result.EventTitle = &title
	}

	metrics.MessagesSentTotal.Inc()
	publishActivity(s.publisher, s.log, ActivityMessageSent, map[string]string{
		"chat_id":     chat.ID,
		"message_id":  msg.ID,
		"sender_id":   in.SenderID,
		"receiver_id": receiverID,
	})
	return result, nil
}

// ListMessages returns up to Limit messages older than Before in
// chronological order. Fetched messages written by the other participant are
// marked read, and the returned views reflect that.
func (s *MessageService) ListMessages(ctx context.Context, in ListMessagesInput) (*MessagePage, error) {
	limit := in.Limit
	if limit == 0 {
		limit = s.limits.Default
	}
	if limit < 0 || limit > s.limits.Max {
		return nil, validationError("invalid_limit", "limit is out of range")
	}

	chat, err := loadChatFor(ctx, s.store, in.ChatID, in.UserID)
	if err != nil {
		return nil, err
	}
	view, err := s.chats.describe(ctx, chat, in.UserID)
	if err != nil {
		return nil, err
	}

	// One extra row tells whether an older page exists.
	rows, err := s.store.Messages.ListBefore(ctx, chat.ID, in.Before, limit+1)
	if err != nil {
		return nil, internalError("failed to list messages", err)
	}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	var unread []string
	for i := range rows {
		if rows[i].SenderID != in.UserID && !rows[i].Read {
			unread = append(unread, rows[i].ID)
		}
	}
	if len(unread) > 0 {
		marked, err := s.store.Messages.MarkRead(ctx, unread)
		if err != nil {
			return nil, internalError("failed to mark messages read", err)
		}
		metrics.MessagesReadTotal.Add(float64(marked))
		for i := range rows {
			if rows[i].SenderID != in.UserID {
				rows[i].Read = true
			}
		}
	}

	counterpart := view.Interlocutor
	messages := make([]MessageView, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		m := rows[i]
		mv := MessageView{
			ID:         m.ID,
			ChatID:     m.ChatID,
			SenderID:   m.SenderID,
			SenderName: senderName(m.SenderID, in.UserID, counterpart),
			Content:    m.Content,
			Read:       m.Read,
			IsOwn:      m.SenderID == in.UserID,
			CreatedAt:  m.CreatedAt,
		}
		if !mv.IsOwn {
			mv.SenderAvatar = counterpart.AvatarURL
		}
		messages = append(messages, mv)
	}

	page := &MessagePage{
		Chat:     *view,
		Messages: messages,
		Pagination: Pagination{
			Limit:       limit,
			HasMore:     hasMore,
			TotalLoaded: len(messages),
		},
	}
	if len(messages) > 0 {
		oldest := messages[0].CreatedAt
		page.Pagination.OldestMessage = &oldest
	}
	return page, nil
}
