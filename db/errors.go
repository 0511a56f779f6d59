package db

import (
	"strings"

	"github.com/talentbase/talentbase/errors"
)

// ErrStorageUnavailable indicates the durable medium could not be bound at
// open time. Fatal to store initialization; callers are expected to offer an
// in-memory fallback rather than crash (see OpenFallback).
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrDatabaseClosed is returned when operations are attempted on a closed
// database, typically during graceful shutdown when the connection is closed
// before all goroutines have finished their work.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed. This handles both wrapped ErrDatabaseClosed errors from this package
// and raw sql driver errors that contain "database is closed" in their
// message; the string fallback is necessary because the driver's own error
// types cannot be wrapped at the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
