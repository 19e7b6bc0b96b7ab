package services_test

import (
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"meetmatch/internal/repositories"
	"meetmatch/internal/testutil"
)

func newStore(t *testing.T) (*gorm.DB, *repositories.Store) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return db, repositories.NewStore(db, nil)
}

// failSwipeInserts makes the next n swipe inserts fail with the given
// PostgreSQL SQLSTATE code.
func failSwipeInserts(t *testing.T, db *gorm.DB, n int, code string) {
	t.Helper()
	remaining := n
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_swipes", func(tx *gorm.DB) {
		if tx.Statement.Table != "swipes" || remaining == 0 {
			return
		}
		remaining--
		tx.AddError(&pgconn.PgError{Code: code, Message: "could not serialize access"})
	})
	require.NoError(t, err)
}

// recordingPublisher keeps every published routing key.
type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}
