package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentbase/talentbase/cmd/talentbase/commands"
	"github.com/talentbase/talentbase/logger"
)

var rootCmd = &cobra.Command{
	Use:   "talentbase",
	Short: "talentbase - Hiring pipeline data core",
	Long: `talentbase - Durable hiring pipeline data core.

Serves a jobs board, candidate pipeline, and per-job assessments from a
local SQLite store behind a request interceptor with fault injection.

Available commands:
  serve   - Start the API and WebSocket notification server
  seed    - Populate the store with randomized sample data
  db      - Manage database operations
  version - Show version information

Examples:
  talentbase serve                 # Start the server
  talentbase seed --candidates 50  # Seed a small dataset
  talentbase db stats              # Show table counts`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.SeedCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
