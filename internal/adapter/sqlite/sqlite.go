// Package sqlite stores reviews in a local SQLite file through gorm. The table
// layout matches databases written by earlier releases, so an existing
// game_reviews.db keeps working.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
)

// driverName is go-sqlite3 with a Unicode-aware lowering function attached
// to every connection. SQLite's own LOWER and LIKE only fold ASCII.
const driverName = "sqlite3_gamereview"

// unicodeLower is the SQL name of lowerText on each connection.
const unicodeLower = "go_lower"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(unicodeLower, lowerText, true)
		},
	})
}

// lowerText folds TEXT and BLOB values; NULL and numbers become "".
func lowerText(v any) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return ""
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_name TEXT,
	review_text TEXT,
	sentiment TEXT,
	confidence REAL,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Open connects to the database file at path and creates the reviews table
// when it is missing. Operations are timed into m when it is non-nil.
func Open(ctx context.Context, path string, m *metrics.StoreMetrics) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)

	dialector := sqlite.New(sqlite.Config{DriverName: driverName, DSN: dsn})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// busy_timeout queues concurrent writers; WAL keeps readers unblocked.
	sqlDB.SetMaxOpenConns(4)

	if m != nil {
		if err := db.Use(newMetricsPlugin(m)); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to register sqlite metrics: %w", err)
		}
	}

	if err := EnsureSchema(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	slog.Info("SQLite database ready", "path", path)
	return db, nil
}

func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(schema).Error; err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
