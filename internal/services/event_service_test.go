package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmatch/internal/services"
	"meetmatch/internal/testutil"
)

var testRules = services.EventRules{
	MinLead:     time.Hour,
	LatestStart: time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC),
}

func TestEventService_CreateEventStartWindow(t *testing.T) {
	db, store := newStore(t)
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := services.NewEventService(store, testRules, pub)

	author := testutil.CreateUser(t, db, "Author", "author@x.com", "pw")
	in := services.CreateEventInput{
		Title:    "Morning run",
		Category: "Sport",
		AuthorID: author.ID,
	}

	in.StartsAt = time.Now().Add(30 * time.Minute)
	_, err := svc.CreateEvent(ctx, in)
	assert.ErrorIs(t, err, services.ErrValidation, "30 minutes ahead is too soon")

	in.StartsAt = time.Date(2101, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.CreateEvent(ctx, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	in.StartsAt = time.Now().Add(2 * time.Hour)
	event, err := svc.CreateEvent(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Morning run", event.Title)
	assert.Equal(t, "Sport", event.Category)
	assert.Equal(t, "mint", event.CoverVariant)
	assert.Equal(t, []string{services.ActivityEventCreated}, pub.Keys())

	got, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Author", got.AuthorName)
	assert.Equal(t, "author@x.com", got.Author)
}

func TestEventService_CreateEventValidation(t *testing.T) {
	db, store := newStore(t)
	ctx := context.Background()
	svc := services.NewEventService(store, testRules, nil)
	author := testutil.CreateUser(t, db, "Author", "author@x.com", "pw")
	start := time.Now().Add(3 * time.Hour)

	tests := []struct {
		name string
		in   services.CreateEventInput
		want error
	}{
		{"missing title", services.CreateEventInput{Category: "Art", StartsAt: start, AuthorID: author.ID}, services.ErrValidation},
		{"missing category", services.CreateEventInput{Title: "T", StartsAt: start, AuthorID: author.ID}, services.ErrValidation},
		{"bad cover", services.CreateEventInput{Title: "T", Category: "Art", StartsAt: start, AuthorID: author.ID, CoverVariant: "neon"}, services.ErrValidation},
		{"unknown author", services.CreateEventInput{Title: "T", Category: "Art", StartsAt: start, AuthorID: "ghost"}, services.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEventService_JoinAndParticipants(t *testing.T) {
	db, store := newStore(t)
	ctx := context.Background()
	svc := services.NewEventService(store, testRules, nil)

	author := testutil.CreateUser(t, db, "Author", "author@x.com", "pw")
	guest := testutil.CreateUser(t, db, "Guest", "guest@x.com", "pw")
	event := testutil.CreateEvent(t, db, author.ID, "Quiz")

	joined, err := svc.JoinEvent(ctx, event.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, joined)
	joined, err = svc.JoinEvent(ctx, event.ID, guest.ID)
	require.NoError(t, err)
	assert.False(t, joined)

	_, err = svc.JoinEvent(ctx, "missing", guest.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = svc.JoinEvent(ctx, event.ID, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)

	people, err := svc.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Guest", people[0].Name)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Author", events[0].AuthorName)
}
