package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmatch/internal/models"
	"meetmatch/internal/services"
	"meetmatch/internal/testutil"
)

func profileIDs(profiles []*services.Profile) []string {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestFeedService_EventScopedFeed(t *testing.T) {
	db, store := newStore(t)
	ctx := context.Background()
	svc := services.NewFeedService(store.Users, store.Events, 50)

	me := testutil.CreateUser(t, db, "Me", "me@x.com", "pw")
	event := testutil.CreateEvent(t, db, me.ID, "Salsa")
	liked := testutil.CreateUser(t, db, "Liked", "l@x.com", "pw")
	passed := testutil.CreateUser(t, db, "Passed", "p@x.com", "pw")
	fresh := testutil.CreateUser(t, db, "Fresh", "f@x.com", "pw", func(u *models.User) {
		u.Gender = "female"
		u.Interests = []string{"Dancing", "Wine"}
	})
	stranger := testutil.CreateUser(t, db, "Stranger", "s@x.com", "pw")

	for _, u := range []*models.User{me, liked, passed, fresh} {
		testutil.Join(t, db, event.ID, u.ID)
	}
	testutil.Swipe(t, db, me.ID, liked.ID, models.DirectionRight)
	testutil.Swipe(t, db, me.ID, passed.ID, models.DirectionLeft)
	// Being swiped by someone does not hide them from my feed.
	testutil.Swipe(t, db, fresh.ID, me.ID, models.DirectionRight)

	profiles, err := svc.GetProfiles(ctx, services.FeedQuery{CurrentUserID: me.ID, EventID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID}, profileIDs(profiles))
	assert.NotContains(t, profileIDs(profiles), stranger.ID)
	assert.Equal(t, []string{event.ID}, profiles[0].JoinedEvents)

	profiles, err = svc.GetProfiles(ctx, services.FeedQuery{CurrentUserID: me.ID, EventID: event.ID, Gender: "any", Interests: "danc, wine"})
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID}, profileIDs(profiles))

	profiles, err = svc.GetProfiles(ctx, services.FeedQuery{CurrentUserID: me.ID, EventID: event.ID, Gender: "male"})
	require.NoError(t, err)
	assert.Empty(t, profiles)

	_, err = svc.GetProfiles(ctx, services.FeedQuery{EventID: event.ID})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.GetProfiles(ctx, services.FeedQuery{CurrentUserID: me.ID, MinAge: testutil.Ptr(40), MaxAge: testutil.Ptr(20)})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestFeedService_RespectsLimit(t *testing.T) {
	db, store := newStore(t)
	ctx := context.Background()
	svc := services.NewFeedService(store.Users, store.Events, 2)

	me := testutil.CreateUser(t, db, "Me", "me@x.com", "pw")
	event := testutil.CreateEvent(t, db, me.ID, "Run")
	for _, email := range []string{"1@x.com", "2@x.com", "3@x.com"} {
		u := testutil.CreateUser(t, db, "U", email, "pw")
		testutil.Join(t, db, event.ID, u.ID)
	}

	profiles, err := svc.GetProfiles(ctx, services.FeedQuery{CurrentUserID: me.ID})
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}
