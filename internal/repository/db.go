package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"reminders/internal/model"
)

const (
	DriverSQLite3 = "sqlite3"
	DriverModernc = "modernc"

	defaultDSN = "reminders.db"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// NewDB opens a SQLite database and runs migrations. driver selects the cgo
// driver ("sqlite3") or the pure Go one ("modernc").
func NewDB(driver, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	dbLogger := gormlogger.New(
		&log,
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite works best with a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(&model.Category{}, &model.Task{}, &model.Chat{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", DriverSQLite3:
		return sqlite.Open(dsn), nil
	case DriverModernc:
		conn, err := sql.Open("sqlite", moderncDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return sqlite.New(sqlite.Config{DriverName: "sqlite", Conn: conn}), nil
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}
}

// moderncDSN turns a plain path into a file: URI that creates the file on
// first use and waits on a locked database instead of failing.
func moderncDSN(path string) string {
	if strings.HasPrefix(path, "file:") || isMemoryDSN(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
