package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmgrid/internal/browser"
	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/picker"
	"github.com/nikbrunner/bmgrid/internal/search"
)

var printOnly bool

var findCmd = &cobra.Command{
	Use:   "find <query...>",
	Short: "Fuzzy find a bookmark and open it",
	Long: `Fuzzy find bookmarks by title. A single match opens right away;
several matches open a picker.

Examples:
  bmgrid find github
  bmgrid find go docs --print`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := openLogger(os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		root, err := store.GetTree(ctx)
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}

		out := cmd.OutOrStdout()
		query := strings.Join(args, " ")
		results := search.FuzzySearchLinks(root, query)
		if len(results) == 0 {
			fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
			return nil
		}

		var selected *model.Node
		if len(results) == 1 {
			selected = results[0].Node
		} else {
			finalModel, err := tea.NewProgram(picker.New(results, query), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			p := finalModel.(picker.Picker)
			if p.Cancelled() {
				return nil
			}
			selected = p.SelectedNode()
		}
		if selected == nil {
			return nil
		}

		if printOnly {
			fmt.Fprintln(out, selected.Link())
			return nil
		}
		fmt.Fprintf(out, "Opening: %s\n", selected.DisplayTitle())
		return browser.NewSystem(logger).Open(ctx, selected.Link(), browser.Current)
	},
}

func init() {
	findCmd.Flags().BoolVar(&printOnly, "print", false, "print the URL instead of opening it")
	rootCmd.AddCommand(findCmd)
}
