package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/talentbase/talentbase/config"
	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/gateway"
	"github.com/talentbase/talentbase/logger"
	"github.com/talentbase/talentbase/notify"
	"github.com/talentbase/talentbase/optimistic"
	"github.com/talentbase/talentbase/seed"
	"github.com/talentbase/talentbase/server"
	"github.com/talentbase/talentbase/store"
	"github.com/talentbase/talentbase/timeline"
)

// ServeCmd starts the talentbase API server.
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the talentbase API and notification server",
	Long: `Launch the hiring API over HTTP with WebSocket mutation notifications on /ws.

The store is seeded on first start unless --no-seed is given. If the database
file cannot be opened the server falls back to an in-memory store.`,
	RunE: runServe,
}

var (
	servePortFlag   int
	serveDBPathFlag string
	serveNoSeedFlag bool
)

func init() {
	ServeCmd.Flags().IntVar(&servePortFlag, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveDBPathFlag, "db-path", "", "Custom database path (overrides config)")
	ServeCmd.Flags().BoolVar(&serveNoSeedFlag, "no-seed", false, "Skip first-run data seeding")
}

// faultConfigFrom maps the gateway section of the config onto the injector's
// tuning knobs.
func faultConfigFrom(cfg *config.Config) gateway.FaultConfig {
	return gateway.FaultConfig{
		MinLatency: time.Duration(cfg.Gateway.MinLatencyMs) * time.Millisecond,
		MaxLatency: time.Duration(cfg.Gateway.MaxLatencyMs) * time.Millisecond,
		FailureRates: map[string]float64{
			gateway.RouteReorderJobs:    cfg.Gateway.ReorderFailureRate,
			gateway.RouteUpdateJob:      cfg.Gateway.WriteFailureRate,
			gateway.RouteCandidateStage: cfg.Gateway.WriteFailureRate,
			gateway.RouteAddNote:        cfg.Gateway.WriteFailureRate,
			gateway.RoutePutAssessment:  cfg.Gateway.WriteFailureRate,
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	port := servePortFlag
	if port == 0 {
		port = cfg.Server.Port
	}
	dbPath := serveDBPathFlag
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}

	database, inMemory, err := db.OpenFallback(dbPath, logger.Logger)
	if err != nil {
		return errors.Wrapf(err, "open database at %s", dbPath)
	}
	defer database.Close()
	if inMemory {
		pterm.Warning.Printf("Database at %s unavailable, using in-memory store (data will not persist)\n", dbPath)
	}

	st := store.New(database, logger.Logger)

	if !serveNoSeedFlag {
		result, err := seed.New(st, logger.Logger).Run(cmd.Context(), seed.Params{
			JobCount:       cfg.Seed.Jobs,
			CandidateCount: cfg.Seed.Candidates,
		})
		if err != nil {
			return errors.Wrap(err, "seed store")
		}
		if !result.Skipped {
			logger.Infow("Seeded store",
				"jobs", result.Jobs,
				"candidates", result.Candidates,
				"notes", result.Notes,
				"events", result.Events,
			)
		}
	}

	faults := gateway.NewFaultInjector(faultConfigFrom(cfg), nil)

	// Edits to the project config file retune latency and failure rates on
	// the running server.
	if path := config.ProjectConfigPath(); path != "" {
		watcher, err := config.NewConfigWatcher(path)
		if err != nil {
			logger.Warnw("Config watcher unavailable", "path", path, "error", err)
		} else {
			watcher.OnReload(func(c *config.Config) error {
				faults.Reconfigure(faultConfigFrom(c))
				logger.Infow("Gateway fault settings reloaded", "path", path)
				return nil
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	transport := gateway.NewTransport(st, faults, nil, logger.Logger)
	client := gateway.NewClient(transport, "")
	recorder := timeline.NewRecorder(st, nil, logger.Logger)
	hub := notify.NewHub(logger.Logger)
	coordinator := optimistic.New(client, recorder, hub, logger.Logger)

	// Baseline the job ordering so a failed reorder can roll back exactly.
	jobs, err := st.ListJobs(store.JobFilter{})
	if err != nil {
		return errors.Wrap(err, "list jobs")
	}
	order := make([]int64, 0, len(jobs))
	for _, job := range jobs {
		order = append(order, job.ID)
	}
	coordinator.ObserveJobOrder(order)

	srv := server.New(st, transport.Handler(), coordinator, hub, logger.Logger)

	pterm.Success.Printf("talentbase serving on :%d (ws on /ws)\n", port)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown server")
	}
	return nil
}
