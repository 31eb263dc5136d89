package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/ids"
	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrStorageUnavailable wraps every failure to reach or write to the backend.
var ErrStorageUnavailable = errors.New("storage unavailable")

const defaultTimeout = 5 * time.Second

// Store persists trades and lists them newest first.
type Store interface {
	Append(ctx context.Context, trade *models.Trade) (string, error)
	ListAll(ctx context.Context) ([]models.Trade, error)
	Ping(ctx context.Context) error
	Close() error
}

// GormStore is the Store backed by a pooled gorm connection.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
	logger  *zap.Logger
}

// ensure GormStore implements the interface
var _ Store = (*GormStore)(nil)

// Open connects to the configured backend, tunes the pool and migrates the schema.
func Open(cfg config.Database, logger *zap.Logger) (*GormStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database.dsn: %w", config.ErrNotConfigured)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialector, err := dialectorFor(cfg.Driver, cfg.DSN, timeout)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w: %v", ErrStorageUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &GormStore{
		db:      db,
		timeout: timeout,
		logger:  logger.Named("store"),
	}, nil
}

func dialectorFor(driver, dsn string, timeout time.Duration) (gorm.Dialector, error) {
	switch driver {
	case "", "sqlite":
		return sqlite.Open(sqliteDSN(dsn, timeout)), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// sqliteDSN sets the driver's busy wait to the store timeout. SQLite waits on a locked
// file inside the driver, where the context deadline is not checked.
func sqliteDSN(dsn string, timeout time.Duration) string {
	if strings.Contains(dsn, "_timeout=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", dsn, sep, timeout.Milliseconds())
}

// AutoMigrate creates or updates the trades table. Existing rows are never touched.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Trade{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Append inserts one trade and returns its ID. An empty ID is filled with a fresh ULID.
// It never updates an existing row: a duplicate ID fails like any other write error.
func (s *GormStore) Append(ctx context.Context, trade *models.Trade) (string, error) {
	if trade.ID == "" {
		trade.ID = ids.New()
	}
	trade.CreatedAt = trade.CreatedAt.UTC()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.db.WithContext(ctx).Create(trade).Error
	metrics.ObserveStorage("append", start, err)
	if err != nil {
		s.logger.Error("Failed to save trade record", zap.String("trade_id", trade.ID), zap.Error(err))
		return "", fmt.Errorf("failed to save trade: %w: %v", ErrStorageUnavailable, err)
	}

	s.logger.Debug("Saved trade record", zap.String("trade_id", trade.ID))
	return trade.ID, nil
}

// ListAll returns every trade, most recent createdAt first. Equal timestamps fall back to
// ID order, so of two trades stamped alike the later insert comes first.
func (s *GormStore) ListAll(ctx context.Context) ([]models.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	trades := make([]models.Trade, 0)
	start := time.Now()
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&trades).Error
	metrics.ObserveStorage("list", start, err)
	if err != nil {
		s.logger.Error("Failed to get trades from database", zap.Error(err))
		return nil, fmt.Errorf("failed to list trades: %w: %v", ErrStorageUnavailable, err)
	}
	return trades, nil
}

// Ping checks that the backend is reachable.
func (s *GormStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
