package database

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meetmatch/internal/models"
	applog "meetmatch/pkg/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// GormConfig returns the gorm settings shared by every connection: UTC
// timestamps and translated constraint errors (gorm.ErrDuplicatedKey).
func GormConfig() *gorm.Config {
	dbLog := applog.WithComponent("gorm")
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: logger.New(&dbLog, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Open connects to the configured store and verifies the connection.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// TxOptions returns the isolation used for the swipe/match/chat sequence.
// SQLite serializes writers on its own, so it gets the driver default.
func TxOptions(driver string) *sql.TxOptions {
	if driver == DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

// chatKeyIndexes enforce one chat per canonical pair and event. A NULL event
// is its own key, so the two cases need separate partial indexes.
var chatKeyIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_chats_pair_event ON chats (user1_id, user2_id, event_id) WHERE event_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_chats_pair_general ON chats (user1_id, user2_id) WHERE event_id IS NULL`,
}

// Migrate applies the schema. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Swipe{},
		&models.Chat{},
		&models.Message{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for _, stmt := range chatKeyIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create chat index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
