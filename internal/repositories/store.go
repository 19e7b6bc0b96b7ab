package repositories

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one connection or transaction.
type Store struct {
	db        *gorm.DB
	txOptions *sql.TxOptions

	Users    UserRepository
	Events   EventRepository
	Swipes   SwipeRepository
	Chats    ChatRepository
	Messages MessageRepository
}

// NewStore creates a Store over db. txOptions (may be nil) is applied to
// transactions started through Transaction.
func NewStore(db *gorm.DB, txOptions *sql.TxOptions) *Store {
	return &Store{
		db:        db,
		txOptions: txOptions,
		Users:     NewGORMUserRepository(db),
		Events:    NewGORMEventRepository(db),
		Swipes:    NewGORMSwipeRepository(db),
		Chats:     NewGORMChatRepository(db),
		Messages:  NewGORMMessageRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction. Calling
// Transaction on a transactional Store opens a savepoint, so a failing inner
// step can be rolled back without aborting the outer work. Conflicts with
// concurrent transactions are reported as ErrSerialization.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.txOptions))
	}, s.txOptions)
	return markRetryable(err)
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
