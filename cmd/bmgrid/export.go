package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmgrid/internal/exporter"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export bookmarks to an HTML file",
	Long: `Export all bookmarks to a Netscape bookmark HTML file that browsers
can import. Folders and bookmarks keep their order.

Without a path the file is written to ~/Downloads/bookmarks-export-<date>.html.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeLog, err := openLogger(os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		outputPath := ""
		if len(args) == 1 {
			outputPath = args[0]
		}
		if outputPath == "" {
			outputPath, err = exporter.DefaultExportPath()
			if err != nil {
				return fmt.Errorf("default export path: %w", err)
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		root, err := store.GetTree(cmd.Context())
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(root, storage.BarID)), 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(tree.Links(root)), outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
