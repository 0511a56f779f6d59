package commands

import (
	"database/sql"

	"github.com/talentbase/talentbase/config"
	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/logger"
)

// openDatabase opens and migrates a database at the given path. An empty path
// falls back to the configured one.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "load configuration")
		}
		dbPath = cfg.Database.Path
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "open database at %s", dbPath)
	}
	return database, nil
}
