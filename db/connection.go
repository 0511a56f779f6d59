package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/talentbase/talentbase/errors"
)

// InMemoryPath opens a private in-memory database instead of a file.
const InMemoryPath = ":memory:"

// Open opens a SQLite database at the specified path with optimized settings.
// If logger is provided, logs database operations; otherwise operates silently.
//
// Failures to bind the durable medium are wrapped with ErrStorageUnavailable
// so callers can offer an in-memory fallback instead of aborting.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "path", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, unavailable(err, "open database")
	}

	// sql.Open defers the actual file access; force it so that a denied or
	// absent medium surfaces here, not on first query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable(err, "ping database")
	}

	// Enable WAL mode for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, unavailable(err, "enable WAL mode")
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, unavailable(err, "enable foreign keys")
	}

	// Set busy timeout to 5 seconds
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, unavailable(err, "set busy timeout")
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"path", path,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}

	return db, nil
}

// OpenWithMigrations opens the database and brings its schema up to date.
func OpenWithMigrations(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}

	return db, nil
}

// OpenFallback opens the durable database at path, falling back to a private
// in-memory instance when the medium is unavailable. The returned flag reports
// whether the fallback was taken. Migrations run in either case.
func OpenFallback(path string, logger *zap.SugaredLogger) (db *sql.DB, inMemory bool, err error) {
	db, err = OpenWithMigrations(path, logger)
	if err == nil {
		return db, false, nil
	}
	if !errors.Is(err, ErrStorageUnavailable) {
		return nil, false, err
	}

	if logger != nil {
		logger.Warnw("Durable storage unavailable, falling back to in-memory database",
			"path", path,
			"error", err.Error(),
		)
	}

	db, memErr := OpenWithMigrations(InMemoryPath, logger)
	if memErr != nil {
		return nil, false, errors.Wrap(memErr, "in-memory fallback")
	}
	return db, true, nil
}

func unavailable(err error, msg string) error {
	return errors.Wrap(errors.Mark(err, ErrStorageUnavailable), msg)
}
