package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmgrid/internal/importer"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import bookmarks from an HTML export",
	Long: `Import bookmarks from a Netscape bookmark HTML file, as exported by
Chrome, Firefox and Safari.

The contents of a top-level "Bookmarks Bar" folder are added to the
bookmarks bar and those of "Other Bookmarks" to Other Bookmarks. Anything
else at the top level is added to the bookmarks bar.

Examples:
  bmgrid import ~/Downloads/bookmarks.html
  bmgrid import --store ~/bookmarks.db export.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := openLogger(os.Stderr)
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

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		defer file.Close()

		nodes, err := importer.ParseHTMLBookmarks(file)
		if err != nil {
			return fmt.Errorf("parse HTML: %w", err)
		}
		bar, other := importer.Split(nodes, cfg.BarTitle, storage.OtherTitle)

		ctx := cmd.Context()
		root, err := store.GetTree(ctx)
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}
		barID := storage.BarID
		if found, ok := tree.FindBar(root, cfg.BarTitle); ok {
			barID = found.ID
		}

		barCount, err := store.Insert(ctx, barID, bar)
		if err != nil {
			return fmt.Errorf("import into %s: %w", cfg.BarTitle, err)
		}
		otherCount, err := store.Insert(ctx, storage.OtherID, other)
		if err != nil {
			return fmt.Errorf("import into %s: %w", storage.OtherTitle, err)
		}

		logger.Info("import finished",
			slog.String("file", args[0]),
			slog.String("store", store.Path()),
			slog.Int("bar", barCount),
			slog.Int("other", otherCount),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks (%d into %s, %d into %s)\n",
			barCount+otherCount, barCount, cfg.BarTitle, otherCount, storage.OtherTitle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
