package commands

import (
	"math/rand"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/talentbase/talentbase/config"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/logger"
	"github.com/talentbase/talentbase/seed"
	"github.com/talentbase/talentbase/store"
)

// SeedCmd populates the store with randomized sample data.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with randomized sample data",
	Long: `Populate an empty store with jobs, candidates, notes, timeline events, and
assessments. A store that already holds jobs is left untouched.

Examples:
  talentbase seed                          # Default 25 jobs, 1000 candidates
  talentbase seed --jobs 5 --candidates 50 # Small dataset
  talentbase seed --rng-seed 42            # Reproducible dataset`,
	RunE: runSeed,
}

var (
	seedJobsFlag       int
	seedCandidatesFlag int
	seedRNGSeedFlag    int64
	seedDBPathFlag     string
)

func init() {
	SeedCmd.Flags().IntVar(&seedJobsFlag, "jobs", 0, "Number of jobs to create (default from config)")
	SeedCmd.Flags().IntVar(&seedCandidatesFlag, "candidates", 0, "Number of candidates to create (default from config)")
	SeedCmd.Flags().Int64Var(&seedRNGSeedFlag, "rng-seed", 0, "Fix the RNG seed for reproducible data (0 = time-seeded)")
	SeedCmd.Flags().StringVar(&seedDBPathFlag, "db-path", "", "Custom database path (overrides config)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	jobs := seedJobsFlag
	if jobs == 0 {
		jobs = cfg.Seed.Jobs
	}
	candidates := seedCandidatesFlag
	if candidates == 0 {
		candidates = cfg.Seed.Candidates
	}
	rngSeed := seedRNGSeedFlag
	if rngSeed == 0 {
		rngSeed = cfg.Seed.RNGSeed
	}

	database, err := openDatabase(seedDBPathFlag)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer database.Close()

	seeder := seed.New(store.New(database, logger.Logger), logger.Logger)
	if rngSeed != 0 {
		seeder.RNG = rand.New(rand.NewSource(rngSeed))
	}

	result, err := seeder.Run(cmd.Context(), seed.Params{JobCount: jobs, CandidateCount: candidates})
	if err != nil {
		return errors.Wrap(err, "seed store")
	}

	if result.Skipped {
		pterm.Info.Println("Store already seeded, nothing written")
		return nil
	}

	pterm.Success.Printf("Seeded %d jobs, %d candidates, %d notes, %d timeline events, %d assessments\n",
		result.Jobs, result.Candidates, result.Notes, result.Events, result.Assessments)
	return nil
}
