package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmatch/internal/models"
	"meetmatch/internal/repositories"
	"meetmatch/internal/testutil"
)

func TestSwipeRepository_DuplicatePairIsRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "Anna", "a@x.com", "pw1")
	b := testutil.CreateUser(t, db, "Boris", "b@x.com", "pw2")

	first := &models.Swipe{SwiperID: a.ID, TargetID: b.ID, Direction: models.DirectionLeft}
	require.NoError(t, store.Swipes.Create(ctx, first))

	err := store.Swipes.Create(ctx, &models.Swipe{SwiperID: a.ID, TargetID: b.ID, Direction: models.DirectionRight})
	assert.True(t, errors.Is(err, repositories.ErrDuplicate), "got %v", err)

	stored, err := store.Swipes.Get(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionLeft, stored.Direction)

	liked, err := store.Swipes.HasRightSwipe(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	// The reverse direction is a different pair.
	require.NoError(t, store.Swipes.Create(ctx, &models.Swipe{SwiperID: b.ID, TargetID: a.ID, Direction: models.DirectionRight}))
	liked, err = store.Swipes.HasRightSwipe(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestChatRepository_InsertIfAbsent(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "Anna", "a@x.com", "pw1")
	b := testutil.CreateUser(t, db, "Boris", "b@x.com", "pw2")
	event := testutil.CreateEvent(t, db, a.ID, "Picnic")
	u1, u2 := a.ID, b.ID
	if u2 < u1 {
		u1, u2 = u2, u1
	}

	general := &models.Chat{User1ID: u1, User2ID: u2}
	inserted, err := store.Chats.InsertIfAbsent(ctx, general)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Chats.InsertIfAbsent(ctx, &models.Chat{User1ID: u1, User2ID: u2})
	require.NoError(t, err)
	assert.False(t, inserted, "second general chat for the same pair must not be written")

	scoped := &models.Chat{User1ID: u1, User2ID: u2, EventID: &event.ID}
	inserted, err = store.Chats.InsertIfAbsent(ctx, scoped)
	require.NoError(t, err)
	assert.True(t, inserted, "event chat is keyed separately from the general chat")

	found, err := store.Chats.FindByKey(ctx, u1, u2, nil)
	require.NoError(t, err)
	assert.Equal(t, general.ID, found.ID)

	found, err = store.Chats.FindByKey(ctx, u1, u2, &event.ID)
	require.NoError(t, err)
	assert.Equal(t, scoped.ID, found.ID)

	chats, err := store.Chats.ListForUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 2)

	_, err = store.Chats.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestMessageRepository_PagingAndReadState(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "Anna", "a@x.com", "pw1")
	b := testutil.CreateUser(t, db, "Boris", "b@x.com", "pw2")
	chat := &models.Chat{User1ID: a.ID, User2ID: b.ID}
	_, err := store.Chats.InsertIfAbsent(ctx, chat)
	require.NoError(t, err)

	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		msg := &models.Message{ChatID: chat.ID, SenderID: a.ID, Content: "m", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, store.Messages.Create(ctx, msg))
		ids = append(ids, msg.ID)
	}

	page, err := store.Messages.ListBefore(ctx, chat.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	cursor := base.Add(3 * time.Minute)
	page, err = store.Messages.ListBefore(ctx, chat.ID, &cursor, 10)
	require.NoError(t, err)
	require.Len(t, page, 3, "cursor is exclusive")
	assert.Equal(t, ids[2], page[0].ID)

	unread, err := store.Messages.CountUnread(ctx, chat.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), unread)
	unread, err = store.Messages.CountUnread(ctx, chat.ID, a.ID)
	require.NoError(t, err)
	assert.Zero(t, unread, "own messages never count as unread")

	n, err := store.Messages.MarkRead(ctx, ids[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = store.Messages.MarkRead(ctx, ids[:2])
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err = store.Messages.CountUnread(ctx, chat.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	latest, err := store.Messages.Latest(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[4], latest.ID)

	latest, err = store.Messages.Latest(ctx, "empty-chat")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestUserRepository_FindCandidates(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db, nil)
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "Me", "me@x.com", "pw")
	event := testutil.CreateEvent(t, db, me.ID, "Concert")
	other := testutil.CreateEvent(t, db, me.ID, "Hike")

	hiker := testutil.CreateUser(t, db, "Hiker", "h@x.com", "pw", func(u *models.User) {
		u.Age = testutil.Ptr(25)
		u.Gender = "female"
		u.Interests = []string{"Hiking", "Jazz"}
	})
	reader := testutil.CreateUser(t, db, "Reader", "r@x.com", "pw", func(u *models.User) {
		u.Age = testutil.Ptr(40)
		u.Gender = "male"
		u.Interests = []string{"Books"}
	})
	swiped := testutil.CreateUser(t, db, "Swiped", "s@x.com", "pw")
	outsider := testutil.CreateUser(t, db, "Outsider", "o@x.com", "pw")

	testutil.Join(t, db, event.ID, me.ID)
	testutil.Join(t, db, event.ID, hiker.ID)
	testutil.Join(t, db, event.ID, reader.ID)
	testutil.Join(t, db, event.ID, swiped.ID)
	testutil.Join(t, db, other.ID, outsider.ID)
	testutil.Swipe(t, db, me.ID, swiped.ID, models.DirectionLeft)

	find := func(f repositories.CandidateFilter) []string {
		f.RequesterID = me.ID
		f.Limit = 50
		users, err := store.Users.FindCandidates(ctx, f)
		require.NoError(t, err)
		var ids []string
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return ids
	}

	assert.ElementsMatch(t, []string{hiker.ID, reader.ID}, find(repositories.CandidateFilter{EventID: event.ID}))
	assert.ElementsMatch(t, []string{hiker.ID, reader.ID, outsider.ID}, find(repositories.CandidateFilter{}))
	assert.Equal(t, []string{hiker.ID}, find(repositories.CandidateFilter{EventID: event.ID, Gender: "female"}))
	assert.Equal(t, []string{reader.ID}, find(repositories.CandidateFilter{EventID: event.ID, MinAge: testutil.Ptr(30)}))
	assert.Equal(t, []string{hiker.ID}, find(repositories.CandidateFilter{EventID: event.ID, MaxAge: testutil.Ptr(25)}))
	assert.Equal(t, []string{hiker.ID}, find(repositories.CandidateFilter{EventID: event.ID, Interests: []string{"hik", "JAZZ"}}))
	assert.Empty(t, find(repositories.CandidateFilter{EventID: event.ID, Interests: []string{"hik", "books"}}))
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "Anna", "a@x.com", "pw1")
	b := testutil.CreateUser(t, db, "Boris", "b@x.com", "pw2")

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *repositories.Store) error {
		require.NoError(t, tx.Swipes.Create(ctx, &models.Swipe{SwiperID: a.ID, TargetID: b.ID, Direction: models.DirectionRight}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Swipes.Get(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestEventRepository_Participants(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db, nil)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Author", "author@x.com", "pw")
	guest := testutil.CreateUser(t, db, "Guest", "guest@x.com", "pw")
	event := testutil.CreateEvent(t, db, author.ID, "Board games")

	added, err := store.Events.AddParticipant(ctx, event.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = store.Events.AddParticipant(ctx, event.ID, guest.ID)
	require.NoError(t, err)
	assert.False(t, added)

	users, err := store.Events.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, guest.ID, users[0].ID)

	joined, err := store.Events.ParticipationsOf(ctx, []string{guest.ID, author.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{event.ID}, joined[guest.ID])
	assert.Empty(t, joined[author.ID])

	events, err := store.Events.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Author)
	assert.Equal(t, "Author", events[0].Author.Name)
}
