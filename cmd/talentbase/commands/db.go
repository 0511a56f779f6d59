package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/logger"
	"github.com/talentbase/talentbase/store"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage talentbase database",
	Long: `Manage database operations including statistics and diagnostics.

Examples:
  talentbase db stats   # Show table counts and schema version`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  "Display table counts and the current schema version",
	RunE:  runDbStats,
}

var dbStatsPathFlag string

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	dbStatsCmd.Flags().StringVar(&dbStatsPathFlag, "db-path", "", "Custom database path (overrides config)")
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(dbStatsPathFlag)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer database.Close()

	version, err := db.SchemaVersion(database)
	if err != nil {
		return errors.Wrap(err, "read schema version")
	}

	counts, err := store.New(database, logger.Logger).TableCounts()
	if err != nil {
		return errors.Wrap(err, "count rows")
	}

	fmt.Printf("Schema version: %s\n", version)
	for _, table := range []string{"jobs", "candidates", "assessments", "notes", "timeline_events"} {
		fmt.Printf("%-16s %d\n", table, counts[table])
	}
	return nil
}
