package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"meetmatch/internal/database"
	"meetmatch/internal/models"
)

// NewTestDB opens a private in-memory SQLite database with the schema
// applied. The pool is limited to one connection so every statement sees the
// same memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given email and password. Extra fields
// can be set through opts before the insert.
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string, opts ...func(*models.User)) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Interests:    []string{},
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateEvent inserts an event authored by authorID starting in two hours.
func CreateEvent(t *testing.T, db *gorm.DB, authorID, title string) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:           uuid.NewString(),
		Title:        title,
		Categories:   []string{"Sport"},
		StartsAt:     time.Now().UTC().Add(2 * time.Hour),
		CoverVariant: models.CoverMint,
		AuthorID:     authorID,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

// Join registers userID as a participant of eventID.
func Join(t *testing.T, db *gorm.DB, eventID, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.EventParticipant{EventID: eventID, UserID: userID}).Error)
}

// Swipe stores a swipe directly, bypassing match detection.
func Swipe(t *testing.T, db *gorm.DB, swiperID, targetID string, dir models.Direction) *models.Swipe {
	t.Helper()
	swipe := &models.Swipe{ID: uuid.NewString(), SwiperID: swiperID, TargetID: targetID, Direction: dir}
	require.NoError(t, db.Create(swipe).Error)
	return swipe
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
