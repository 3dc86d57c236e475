package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/costscope/pkg/engine"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run an analysis and write artifacts (CSV, JSON, HTML)",
	Long: `Runs the full pipeline without the TUI and writes every report
format to the output location.

Default output directory: ./costscope-out/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(cmd.Context(), engine.WithConfig(config))
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		defer eng.Close(cmd.Context())

		rep, err := eng.Run(cmd.Context())
		if err != nil && err != engine.ErrPartialResult {
			return err
		}

		fmt.Println("Export complete.")
		fmt.Printf("   Report: %s\n", rep.ReportID)
		fmt.Printf("   CSV:    %s/report.csv\n", config.OutputDir)
		fmt.Printf("   JSON:   %s/report.json\n", config.OutputDir)
		fmt.Printf("   HTML:   %s/report.html\n", config.OutputDir)
		return err
	},
}
