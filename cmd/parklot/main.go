package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"parklot/internal/config"
	"parklot/internal/events"
	"parklot/internal/journal"
	"parklot/internal/menu"
	"parklot/internal/metrics"
	"parklot/internal/registry"
	"parklot/internal/store"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PARKLOT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	jrnl, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open journal error")
	}
	defer jrnl.Close()

	bus := events.NewBus()
	jrnl.Subscribe(bus)

	lot := openLot(cfg, &logger)
	lot.SetEventBus(bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.SetOccupiedSlots(lot.OccupiedCount())
		go serveMetrics(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	backup := store.NewBackupService(cfg.Lot.DataPath, cfg.Backup, &logger)
	m := menu.New(lot, cfg.Lot.DataPath, cfg.Report.Path, backup, bus, &logger, os.Stdin, os.Stdout)
	m.Run()

	// Persist the final state of whichever lot the session ended with.
	if err := store.Save(m.Lot(), cfg.Lot.DataPath); err != nil {
		logger.Error().Err(err).Msg("final save failed")
	}
	logger.Info().Msg("shutdown complete")
}

// openLot restores the lot from the data file, falling back to an empty
// lot with the configured capacity when no file exists yet.
func openLot(cfg *config.Config, logger *zerolog.Logger) *registry.Lot {
	lot, skipped, err := store.Load(cfg.Lot.DataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info().Int("total_slots", cfg.Lot.TotalSlots).Msg("no data file, starting empty lot")
			return registry.New(cfg.Lot.TotalSlots)
		}
		logger.Fatal().Err(err).Str("path", cfg.Lot.DataPath).Msg("load data error")
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("malformed lines skipped while loading")
	}
	logger.Info().Int("slots", len(lot.Slots())).Msg("lot restored")
	return lot
}

func serveMetrics(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
