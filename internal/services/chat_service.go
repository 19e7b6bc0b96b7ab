package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"meetmatch/internal/metrics"
	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	applog "meetmatch/pkg/log"
)

// ChatService maps matched pairs to chats and renders chat lists.
type ChatService struct {
	store *repositories.Store
	log   zerolog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(store *repositories.Store) *ChatService {
	return &ChatService{
		store: store,
		log:   applog.WithComponent("chats"),
	}
}

// canonicalPair orders two user ids ascending. The result is the chat key.
func canonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// hasMutualMatch reports whether a and b liked each other.
func hasMutualMatch(ctx context.Context, st *repositories.Store, a, b string) (bool, error) {
	forward, err := st.Swipes.HasRightSwipe(ctx, a, b)
	if err != nil || !forward {
		return false, err
	}
	return st.Swipes.HasRightSwipe(ctx, b, a)
}

// getOrCreateChat returns the chat for the pair and event, creating it when
// missing. existed is true when the chat was already stored, including when
// a concurrent writer created it first.
func getOrCreateChat(ctx context.Context, st *repositories.Store, a, b string, eventID *string) (chat *models.Chat, existed bool, err error) {
	user1, user2 := canonicalPair(a, b)

	chat, err = st.Chats.FindByKey(ctx, user1, user2, eventID)
	if err == nil {
		return chat, true, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	chat = &models.Chat{User1ID: user1, User2ID: user2, EventID: eventID}
	inserted, err := st.Chats.InsertIfAbsent(ctx, chat)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		return chat, false, nil
	}

	chat, err = st.Chats.FindByKey(ctx, user1, user2, eventID)
	if err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

// CreateChat creates or fetches the chat between two matched users. The
// result is rendered from user1ID's point of view.
func (s *ChatService) CreateChat(ctx context.Context, user1ID, user2ID string, eventID *string) (*ChatView, bool, error) {
	if user1ID == "" || user2ID == "" {
		return nil, false, validationError("missing_fields", "user1Id and user2Id are required")
	}
	if user1ID == user2ID {
		return nil, false, validationError("same_user", "a chat needs two different users")
	}

	users, err := s.store.Users.GetByIDs(ctx, []string{user1ID, user2ID})
	if err != nil {
		return nil, false, internalError("failed to load users", err)
	}
	if len(users) != 2 {
		return nil, false, validationError("user_not_found", "one or both users were not found")
	}

	if eventID != nil {
		if _, err := s.store.Events.GetByID(ctx, *eventID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, false, notFoundError("event_not_found", "event not found")
			}
			return nil, false, internalError("failed to load event", err)
		}
	}

	matched, err := hasMutualMatch(ctx, s.store, user1ID, user2ID)
	if err != nil {
		return nil, false, internalError("failed to check match", err)
	}
	if !matched {
		return nil, false, forbiddenError("no_mutual_match", "no mutual match between these users")
	}

	chat, existed, err := getOrCreateChat(ctx, s.store, user1ID, user2ID, eventID)
	if err != nil {
		return nil, false, internalError("failed to create chat", err)
	}
	if !existed {
		metrics.ChatsCreatedTotal.WithLabelValues("explicit").Inc()
		s.log.Info().Str("chat_id", chat.ID).Msg("Chat created")
	}

	view, err := s.describe(ctx, chat, user1ID)
	if err != nil {
		return nil, false, err
	}
	return view, existed, nil
}

// ListChats returns the chats of userID with last message and unread count,
// newest chat first. Chats whose counterpart no longer exists are skipped.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]ChatSummary, error) {
	if userID == "" {
		return nil, validationError("missing_fields", "userId is required")
	}

	chats, err := s.store.Chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, internalError("failed to list chats", err)
	}

	ids := make([]string, 0, len(chats))
	for i := range chats {
		ids = append(ids, chats[i].Counterpart(userID))
	}
	profiles, err := s.profilesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for i := range chats {
		chat := &chats[i]
		counterpart, ok := profiles[chat.Counterpart(userID)]
		if !ok {
			continue
		}

		summary := ChatSummary{
			ChatView:  renderChat(chat, counterpart),
			UpdatedAt: chat.CreatedAt,
		}

		last, err := s.store.Messages.Latest(ctx, chat.ID)
		if err != nil {
			return nil, internalError("failed to load last message", err)
		}
		if last != nil {
			summary.LastMessage = &LastMessage{
				ID:         last.ID,
				Content:    last.Content,
				SenderID:   last.SenderID,
				SenderName: senderName(last.SenderID, userID, counterpart),
				IsOwn:      last.SenderID == userID,
				CreatedAt:  last.CreatedAt,
			}
			summary.UpdatedAt = last.CreatedAt
		}

		summary.UnreadCount, err = s.store.Messages.CountUnread(ctx, chat.ID, userID)
		if err != nil {
			return nil, internalError("failed to count unread messages", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// UnreadCount returns how many messages in chatID userID has not read yet.
func (s *ChatService) UnreadCount(ctx context.Context, chatID, userID string) (int64, error) {
	chat, err := loadChatFor(ctx, s.store, chatID, userID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.Messages.CountUnread(ctx, chat.ID, userID)
	if err != nil {
		return 0, internalError("failed to count unread messages", err)
	}
	return n, nil
}

// describe renders chat for viewerID, resolving the counterpart and event.
func (s *ChatService) describe(ctx context.Context, chat *models.Chat, viewerID string) (*ChatView, error) {
	counterpart, err := s.store.Users.GetByID(ctx, chat.Counterpart(viewerID))
	if err != nil {
		return nil, internalError("failed to load chat counterpart", err)
	}
	if chat.EventID != nil && chat.Event == nil {
		event, err := s.store.Events.GetByID(ctx, *chat.EventID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, internalError("failed to load chat event", err)
		}
		chat.Event = event
	}
	view := renderChat(chat, NewProfile(counterpart))
	return &view, nil
}

func (s *ChatService) profilesByID(ctx context.Context, ids []string) (map[string]*Profile, error) {
	users, err := s.store.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internalError("failed to load chat counterparts", err)
	}
	profiles := make(map[string]*Profile, len(users))
	for i := range users {
		profiles[users[i].ID] = NewProfile(&users[i])
	}
	return profiles, nil
}

func renderChat(chat *models.Chat, counterpart *Profile) ChatView {
	ref := eventRef(chat.Event)
	return ChatView{
		ID:           chat.ID,
		Name:         chatName(counterpart.Name, ref),
		Interlocutor: counterpart,
		Event:        ref,
		CreatedAt:    chat.CreatedAt,
	}
}

func senderName(senderID, viewerID string, counterpart *Profile) string {
	if senderID == viewerID {
		return "You"
	}
	return counterpart.Name
}

// loadChatFor returns chatID when userID participates in it. A missing chat
// and a foreign chat are both reported as forbidden.
func loadChatFor(ctx context.Context, st *repositories.Store, chatID, userID string) (*models.Chat, error) {
	if chatID == "" || userID == "" {
		return nil, validationError("missing_fields", "chatId and userId are required")
	}
	chat, err := st.Chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, forbiddenError("chat_forbidden", "chat not found or access denied")
		}
		return nil, internalError("failed to load chat", err)
	}
	if !chat.HasParticipant(userID) {
		return nil, forbiddenError("chat_forbidden", "chat not found or access denied")
	}
	return chat, nil
}
