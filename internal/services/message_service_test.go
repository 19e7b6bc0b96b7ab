package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	"meetmatch/internal/services"
	"meetmatch/internal/testutil"
)

type chatFixture struct {
	store    *repositories.Store
	messages *services.MessageService
	a, b, c  *models.User
	chatID   string
	pub      *recordingPublisher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db, store := newStore(t)

	f := &chatFixture{store: store, pub: &recordingPublisher{}}
	f.a = testutil.CreateUser(t, db, "Anna", "a@x.com", "pw")
	f.b = testutil.CreateUser(t, db, "Boris", "b@x.com", "pw")
	f.c = testutil.CreateUser(t, db, "Chen", "c@x.com", "pw")
	matchUsers(t, db, f.a.ID, f.b.ID)

	chats := services.NewChatService(store)
	view, _, err := chats.CreateChat(context.Background(), f.a.ID, f.b.ID, nil)
	require.NoError(t, err)
	f.chatID = view.ID

	f.messages = services.NewMessageService(store, chats, services.PageLimits{Default: 50, Max: 100}, f.pub)
	return f
}

func TestMessageService_SendMessage(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	sent, err := f.messages.SendMessage(ctx, services.SendMessageInput{
		ChatID: f.chatID, SenderID: f.a.ID, Content: "  hi there ", TempID: "tmp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", sent.Message.Content)
	assert.Equal(t, "tmp-1", sent.Message.TempID)
	assert.True(t, sent.Message.IsOwn)
	assert.False(t, sent.Message.Read)
	assert.Equal(t, "Anna", sent.Message.SenderName)
	require.NotNil(t, sent.Receiver)
	assert.Equal(t, f.b.ID, sent.Receiver.ID)
	assert.Nil(t, sent.EventTitle)
	assert.Equal(t, []string{services.ActivityMessageSent}, f.pub.Keys())

	_, err = f.messages.SendMessage(ctx, services.SendMessageInput{ChatID: f.chatID, SenderID: f.a.ID, Content: "   "})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.messages.SendMessage(ctx, services.SendMessageInput{ChatID: f.chatID, SenderID: f.c.ID, Content: "intruder"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.messages.SendMessage(ctx, services.SendMessageInput{ChatID: "missing", SenderID: f.a.ID, Content: "hi"})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestMessageService_SendRequiresMutualMatch(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	// A chat row without a mutual match, e.g. written before the swipe was undone.
	u1, u2 := f.a.ID, f.c.ID
	if u2 < u1 {
		u1, u2 = u2, u1
	}
	chat := &models.Chat{User1ID: u1, User2ID: u2}
	_, err := f.store.Chats.InsertIfAbsent(ctx, chat)
	require.NoError(t, err)

	_, err = f.messages.SendMessage(ctx, services.SendMessageInput{ChatID: chat.ID, SenderID: f.a.ID, Content: "hi"})
	require.ErrorIs(t, err, services.ErrForbidden)

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "no_mutual_match", se.Code)
}

func TestMessageService_ListMessagesMarksCounterpartRead(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.store.Messages.Create(ctx, &models.Message{ChatID: f.chatID, SenderID: f.a.ID, Content: "one", CreatedAt: base}))
	require.NoError(t, f.store.Messages.Create(ctx, &models.Message{ChatID: f.chatID, SenderID: f.b.ID, Content: "two", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, f.store.Messages.Create(ctx, &models.Message{ChatID: f.chatID, SenderID: f.a.ID, Content: "three", CreatedAt: base.Add(2 * time.Minute)}))

	page, err := f.messages.ListMessages(ctx, services.ListMessagesInput{ChatID: f.chatID, UserID: f.b.ID})
	require.NoError(t, err)
	require.Len(t, page.Messages, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{page.Messages[0].Content, page.Messages[1].Content, page.Messages[2].Content})
	assert.True(t, page.Messages[0].Read)
	assert.False(t, page.Messages[1].Read, "own messages are not marked by the reader")
	assert.True(t, page.Messages[1].IsOwn)
	assert.Equal(t, "You", page.Messages[1].SenderName)
	assert.Equal(t, "Anna", page.Messages[0].SenderName)
	assert.False(t, page.Pagination.HasMore)
	assert.Equal(t, 3, page.Pagination.TotalLoaded)
	assert.Equal(t, "Anna", page.Chat.Name)

	unread, err := f.store.Messages.CountUnread(ctx, f.chatID, f.b.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
	unread, err = f.store.Messages.CountUnread(ctx, f.chatID, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread, "reading as Boris leaves Anna's unread count alone")

	// Reading again keeps everything read.
	page, err = f.messages.ListMessages(ctx, services.ListMessagesInput{ChatID: f.chatID, UserID: f.b.ID})
	require.NoError(t, err)
	assert.True(t, page.Messages[0].Read)
	assert.True(t, page.Messages[2].Read)

	_, err = f.messages.ListMessages(ctx, services.ListMessagesInput{ChatID: f.chatID, UserID: f.c.ID})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestMessageService_ListMessagesPagination(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		msg := &models.Message{ChatID: f.chatID, SenderID: f.a.ID, Content: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.store.Messages.Create(ctx, msg))
	}

	page, err := f.messages.ListMessages(ctx, services.ListMessagesInput{ChatID: f.chatID, UserID: f.a.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "d", page.Messages[0].Content)
	assert.Equal(t, "e", page.Messages[1].Content)
	assert.True(t, page.Pagination.HasMore)
	require.NotNil(t, page.Pagination.OldestMessage)

	page, err = f.messages.ListMessages(ctx, services.ListMessagesInput{
		ChatID: f.chatID, UserID: f.a.ID, Limit: 3, Before: page.Pagination.OldestMessage,
	})
	require.NoError(t, err)
	require.Len(t, page.Messages, 3)
	assert.Equal(t, "a", page.Messages[0].Content)
	assert.False(t, page.Pagination.HasMore, "exactly the remaining messages fit")

	_, err = f.messages.ListMessages(ctx, services.ListMessagesInput{ChatID: f.chatID, UserID: f.a.ID, Limit: 500})
	assert.ErrorIs(t, err, services.ErrValidation)
}
