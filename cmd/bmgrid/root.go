package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmgrid/internal/browser"
	"github.com/nikbrunner/bmgrid/internal/coordinator"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tui"
)

var (
	storePath    string
	settingsPath string
	logFile      string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "bmgrid",
	Short: "Browse and reorder bookmarks as a grid",
	Long: `bmgrid shows the bookmarks bar as a grid of tiles. Enter folders,
open links in the browser, rename, delete and drag tiles into a new order.

Bookmarks live in ~/.config/bmgrid/bookmarks.json unless --store names
another file. Files ending in .db or .sqlite use SQLite.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&storePath, "store", "", "bookmark store file (default ~/.config/bmgrid/bookmarks.json)")
	flags.StringVar(&settingsPath, "settings", "", "settings file (default ~/.config/bmgrid/settings.json)")
	flags.StringVar(&logFile, "log-file", "", "append logs to this file")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// The alt screen owns the terminal, so logs only go to --log-file.
	logger, closeLog, err := openLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	settings, err := openSettings()
	if err != nil {
		return err
	}
	cfg := settings.Settings()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("starting",
		slog.String("store", store.Path()),
		slog.String("bar_title", cfg.BarTitle),
		slog.Int("columns", cfg.Columns),
	)

	ctx := cmd.Context()
	coord := coordinator.New(coordinator.Params{
		Store:     store,
		Settings:  settings,
		Opener:    browser.NewSystem(logger),
		Logger:    logger,
		BarTitle:  cfg.BarTitle,
		ManageURL: cfg.ManageURL,
	})
	app := tui.NewApp(tui.AppParams{
		Coordinator: coord,
		Context:     ctx,
		Columns:     cfg.Columns,
		Logger:      logger,
	})

	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

// openLogger builds the logger for --log-file and --log-level. Without a
// log file, logs go to fallback.
func openLogger(fallback io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	if logFile == "" {
		logger := slog.New(slog.NewTextHandler(fallback, opts))
		slog.SetDefault(logger)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, opts))
	slog.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

// openStore opens --store, or the default store.
func openStore() (storage.Backend, error) {
	if storePath == "" {
		store, err := storage.OpenDefault()
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return store, nil
	}
	store, err := storage.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", storePath, err)
	}
	return store, nil
}

// openSettings loads --settings, or the default settings file.
func openSettings() (*storage.SettingsFile, error) {
	path := settingsPath
	if path == "" {
		var err error
		path, err = storage.DefaultSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("settings path: %w", err)
		}
	}
	settings, err := storage.OpenSettings(path)
	if err != nil {
		return nil, fmt.Errorf("load settings %s: %w", path, err)
	}
	return settings, nil
}
