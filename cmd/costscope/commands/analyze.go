package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/engine"
	"github.com/DrSkyle/costscope/pkg/engine/report"
	"github.com/DrSkyle/costscope/pkg/tui"
)

var headless bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a cost analysis and browse the results (TUI)",
	Long: `Fetches billing data from the configured sources, runs the full
analysis pipeline, and opens the interactive result browser.

Use --headless for CI pipelines; the summary prints to stdout instead.

Example:
  costscope analyze --aws --region us-east-1
  costscope analyze --input export.csv --headless`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(cmd.Context(), engine.WithConfig(config))
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		defer eng.Close(cmd.Context())

		if headless {
			rep, err := eng.Run(cmd.Context())
			if err != nil && err != engine.ErrPartialResult {
				return err
			}
			fmt.Print(report.RenderText(rep))
			return err
		}

		// Partial results still render; the report carries the
		// per-provider errors. Only total failure reaches the model.
		var partial error
		model := tui.NewRunningModel(func() (billing.OptimizationReport, error) {
			rep, err := eng.Run(cmd.Context())
			if err == engine.ErrPartialResult {
				partial = err
				return rep, nil
			}
			return rep, err
		})

		final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
			os.Exit(1)
		}
		if m, ok := final.(tui.Model); ok && m.Err() != nil {
			return m.Err()
		}

		fmt.Printf("Artifacts written to %s\n", config.OutputDir)
		return partial
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&headless, "headless", false, "Print the text summary instead of launching the TUI")
}
