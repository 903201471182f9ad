package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/index"
	"github.com/runnerr0/retrace/internal/linefile"
	"github.com/runnerr0/retrace/internal/saver"
)

// storeEnv bundles everything a command needs to work with a loaded
// history store.
type storeEnv struct {
	cfg   *config.Config
	file  *linefile.File
	table *index.Table
	store *history.Store
	saves *saver.Manager
}

// Close releases the in-memory index.
func (e *storeEnv) Close() error {
	return e.table.Close()
}

// loadConfig resolves the config for the given globals: an explicit
// --config path must exist; otherwise the default path is created on
// first use.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// newLogger builds the slog logger for command execution. --verbose
// forces debug level regardless of config.
func newLogger(cfg *config.Config, globals *GlobalFlags) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if globals != nil && globals.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// openStore builds the store stack from config, drives the initial load
// to completion, and returns the ready environment. The store registers
// its Save with the returned save manager during load, so commands
// flush through env.saves.
func openStore(globals *GlobalFlags, confirmer history.Confirmer) (*storeEnv, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	return openStoreWithConfig(cfg, globals, confirmer)
}

// openStoreWithConfig is openStore with the config already resolved,
// letting commands override config fields from flags first.
func openStoreWithConfig(cfg *config.Config, globals *GlobalFlags, confirmer history.Confirmer) (*storeEnv, error) {
	histPath, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, globals)

	table, err := index.NewTable()
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	file := linefile.New(histPath)
	saves := saver.NewManager(logger)

	store := history.NewStore(file, table, history.Options{
		Confirmer:   confirmer,
		Registrar:   saves,
		Logger:      logger,
		RecentLines: cfg.Recent.Lines,
	})

	if err := store.RunLoad(); err != nil {
		table.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}

	return &storeEnv{
		cfg:   cfg,
		file:  file,
		table: table,
		store: store,
		saves: saves,
	}, nil
}
