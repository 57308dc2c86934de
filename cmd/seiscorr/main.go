package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/seiscorr/internal/aggregate"
	"github.com/rewired-gh/seiscorr/internal/config"
	"github.com/rewired-gh/seiscorr/internal/correlation"
	"github.com/rewired-gh/seiscorr/internal/export"
	"github.com/rewired-gh/seiscorr/internal/loader"
	"github.com/rewired-gh/seiscorr/internal/logger"
	"github.com/rewired-gh/seiscorr/internal/pipeline"
	"github.com/rewired-gh/seiscorr/internal/source"
	"github.com/rewired-gh/seiscorr/internal/storage"
	"github.com/rewired-gh/seiscorr/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	history    = flag.Int("history", 0, "List the N most recent stored runs and exit")
	runID      = flag.String("run", "", "Print a stored run by ID and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("%v", err)
	}
}

// run executes one command. Every resource it opens is closed before it
// returns, so callers may exit right after.
func run(ctx context.Context, cfg *config.Config) error {
	var store *storage.Storage
	if cfg.Storage.DBPath != "" {
		var err error
		store, err = storage.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close storage: %v", err)
			}
		}()
	}

	if *history > 0 || *runID != "" {
		if store == nil {
			return errors.New("run history requires storage.db_path")
		}
		if *runID != "" {
			return showRun(ctx, store, *runID)
		}
		runs, err := store.ListRuns(ctx, *history)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		printHistory(os.Stdout, runs)
		return nil
	}

	opt, err := pipelineOptions(cfg)
	if err != nil {
		return fmt.Errorf("invalid analysis options: %w", err)
	}

	src := source.NewClient(cfg.Inputs.Timeout, source.ClientConfig{
		MaxRetries:     cfg.Inputs.MaxRetries,
		RetryDelayBase: cfg.Inputs.RetryDelayBase,
	})

	res, err := pipeline.Run(ctx, src, pipeline.Inputs{
		Events:        cfg.Inputs.Events,
		WellLocations: cfg.Inputs.WellLocations,
		WellVolumes:   cfg.Inputs.WellVolumes,
	}, opt)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.Info("Run %s: %d events over %d months, %d wells", res.Run.ID, res.Run.EventCount, res.Run.PeriodCount, res.Run.WellCount)

	printReport(os.Stdout, res, cfg.Analysis.TopK)

	if path := cfg.Output.WellsPath; path != "" {
		if err := export.WriteFile(path, func(w io.Writer) error { return export.WriteWells(w, res.Wells) }); err != nil {
			return fmt.Errorf("failed to export wells: %w", err)
		}
		logger.Info("Wrote %d wells to %s", len(res.Wells), path)
	}
	if path := cfg.Output.SeriesPath; path != "" {
		if err := export.WriteFile(path, func(w io.Writer) error { return export.WriteSeries(w, res.PerWell) }); err != nil {
			return fmt.Errorf("failed to export merged series: %w", err)
		}
		logger.Info("Wrote %d months to %s", res.PerWell.Len(), path)
	}

	if store != nil {
		if err := store.SaveRun(ctx, &res.Run, res.Wells, res.Series); err != nil {
			logger.Error("Failed to save run: %v", err)
		} else if removed, err := store.RotateRuns(ctx, cfg.Storage.MaxRuns); err != nil {
			logger.Warn("Failed to rotate runs: %v", err)
		} else if removed > 0 {
			logger.Debug("Rotated out %d old runs", removed)
		}
	}

	if cfg.Telegram.Enabled {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("Failed to initialize Telegram client: %v", err)
			return nil
		}
		if err := tg.SendRun(ctx, &res.Run, res.Wells, cfg.Analysis.TopK); err != nil {
			logger.Warn("Failed to send Telegram summary: %v", err)
		} else {
			logger.Info("Telegram summary sent")
		}
	}
	return nil
}

// showRun prints a stored run with its wells and series pairs.
func showRun(ctx context.Context, store *storage.Storage, id string) error {
	r, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	wells, err := store.GetWellCorrelations(ctx, id)
	if err != nil {
		return err
	}
	pairs, err := store.GetSeriesCorrelations(ctx, id)
	if err != nil {
		return err
	}
	printStoredRun(os.Stdout, r, wells, pairs)
	return nil
}

// pipelineOptions translates the configuration into pipeline options.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	policy, err := loader.ParsePolicy(cfg.Analysis.ParsePolicy)
	if err != nil {
		return pipeline.Options{}, err
	}
	order, err := correlation.ParseOrder(cfg.Analysis.RankBy)
	if err != nil {
		return pipeline.Options{}, err
	}
	from, to, err := cfg.Filter.Range()
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Load: loader.Options{
			Policy:         policy,
			LocationPrefix: cfg.Wells.LocationPrefix,
			HoleDelimiter:  cfg.Wells.HoleDelimiter,
		},
		Filter: aggregate.EventFilter{
			MinMagnitude: cfg.Filter.MinMagnitude,
			From:         from,
			To:           to,
		},
		Order: order,
	}, nil
}
