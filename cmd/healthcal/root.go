// ABOUTME: Root Cobra command for healthcal CLI.
// ABOUTME: Opens stores and builds the engine via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/KishParikh13/HealthToCalendar/internal/calendar"
	"github.com/KishParikh13/HealthToCalendar/internal/config"
	"github.com/KishParikh13/HealthToCalendar/internal/engine"
	"github.com/KishParikh13/HealthToCalendar/internal/health"
	"github.com/KishParikh13/HealthToCalendar/internal/ledger"
	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/KishParikh13/HealthToCalendar/internal/store"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	samples  *health.SampleStore
	ledgerKV store.KeyValueStore
	eng      *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "healthcal",
	Short: "Health data aggregation and calendar sync",
	Long: `Healthcal aggregates health samples into daily statistics and projects
them into calendar records, with an undoable sync ledger.

CATEGORIES:

  Cumulative     steps, distance, active_energy, water
  Averaged       weight, heart_rate
  Durations      sleep, mindfulness
  Events         workouts

QUICK START:

  $ healthcal sample add steps 2400 --at "2025-03-10 08:00"
  $ healthcal stats steps --from 2025-03-01 --to 2025-03-31
  $ healthcal chart steps --hourly
  $ healthcal sync 2025-03-01 2025-03-07
  $ healthcal synced
  $ healthcal unsync abc12345

SYNC SEMANTICS:

  Syncing the exact same date range twice is a no-op; the second run
  reports the prior sync instead of creating duplicate records. Unsync
  removes a range's records and forgets the range, so a fresh sync of
  the same dates works again.

MCP INTEGRATION:

  Run 'healthcal mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "healthcal": { "command": "healthcal", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Samples live in a SQLite database under ~/.local/share/healthcal.
  The sync ledger is stored in Badger by default, or Charm KV when
  "backend": "charm" is set in ~/.config/healthcal/config.json.
  Calendar records are written to an ICS file next to the database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initEngine()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeEngine()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initEngine() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	samples, err = cfg.OpenSamples()
	if err != nil {
		return fmt.Errorf("failed to open sample store: %w", err)
	}

	ledgerKV, err = cfg.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}

	led, err := ledger.Load(ledgerKV)
	if err != nil {
		return fmt.Errorf("failed to load sync ledger: %w", err)
	}

	registry := models.DefaultRegistry()
	enabled, err := cfg.EnabledCategories(registry)
	if err != nil {
		return err
	}

	var sink calendar.RecordSink = cfg.OpenSink()
	eng = engine.New(registry, samples, sink, led, enabled)
	return nil
}

func closeEngine() error {
	var firstErr error
	if samples != nil {
		if err := samples.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		samples = nil
	}
	if ledgerKV != nil {
		if err := ledgerKV.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		ledgerKV = nil
	}
	return firstErr
}
