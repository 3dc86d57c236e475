package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/costscope/pkg/engine"
	"github.com/DrSkyle/costscope/pkg/version"
)

var (
	cfgFile string
	config  engine.Config
)

var rootCmd = &cobra.Command{
	Use:   "costscope",
	Short: "Cloud Cost Analysis Tool",
	Long: `CostScope - Cloud Billing Analysis Platform

Aggregate. Detect. Optimize.`,
	Version: version.Current,
	// Run: nil (forces help output).
	Run: nil,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.costscope.yaml)")
	rootCmd.PersistentFlags().StringVar(&config.Region, "region", "us-east-1", "AWS Region")
	rootCmd.PersistentFlags().IntVar(&config.WindowDays, "window", 30, "Analysis window in days")
	rootCmd.PersistentFlags().StringSliceVar(&config.InputFiles, "input", nil, "Billing export files (csv/json), may repeat")
	rootCmd.PersistentFlags().BoolVar(&config.UseAWS, "aws", false, "Pull live data from AWS Cost Explorer")
	rootCmd.PersistentFlags().BoolVar(&config.Fallback, "fallback", false, "Substitute placeholder data when no source yields records")
	rootCmd.PersistentFlags().StringVar(&config.RulesFile, "rules", "", "Override rules file (YAML with CEL conditions)")
	rootCmd.PersistentFlags().StringVar(&config.SlackWebhook, "slack-webhook", "", "Slack Webhook URL")
	rootCmd.PersistentFlags().StringVar(&config.SlackChannel, "slack-channel", "", "Slack channel override")
	rootCmd.PersistentFlags().StringVar(&config.OutputDir, "output", "costscope-out", "Artifact directory or s3://bucket/prefix")
	rootCmd.PersistentFlags().StringVar(&config.HistoryURL, "history", "", "Run history location (default .costscope/, or s3://bucket/prefix)")
	rootCmd.PersistentFlags().Float64Var(&config.DiscountRate, "discount-rate", 0, "Manual discount factor for savings estimates (e.g. 0.82)")
	rootCmd.PersistentFlags().Float64Var(&config.VelocityAlertPerHour, "velocity-alert", 0, "Webhook alert when spend climbs faster than this many $/hour between runs (0 disables)")
	rootCmd.PersistentFlags().StringVar(&config.OtelEndpoint, "otel-endpoint", "", "OTLP trace endpoint")
	rootCmd.PersistentFlags().BoolVar(&config.StrictMode, "strict", false, "Exit non-zero when any provider fails")
	rootCmd.PersistentFlags().BoolVar(&config.JsonLogs, "json-logs", false, "Structured JSON log output")
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")

	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("window", rootCmd.PersistentFlags().Lookup("window"))
	viper.BindPFlag("slack-webhook", rootCmd.PersistentFlags().Lookup("slack-webhook"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("history", rootCmd.PersistentFlags().Lookup("history"))

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".costscope.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

func renderHelp(cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Println(titleStyle.Render(fmt.Sprintf("COSTSCOPE %s", version.Current)))
	fmt.Println("Cloud cost aggregation, trend detection, and optimization planning.")

	fmt.Println(titleStyle.Render("USAGE"))
	fmt.Printf("  %s\n\n", cmd.UseLine())

	fmt.Println(titleStyle.Render("COMMANDS"))
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() {
			fmt.Printf("  %-12s %s\n", c.Name(), c.Short)
		}
	}
	fmt.Println("")

	fmt.Println(titleStyle.Render("EXAMPLES"))
	fmt.Println("  costscope analyze --aws --region us-east-1   # Live Cost Explorer data (TUI)")
	fmt.Println("  costscope analyze --input export.csv         # Offline billing export")
	fmt.Println("  costscope export --aws --headless            # CI/CD artifacts, no TUI")
	fmt.Println("")

	fmt.Println(titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Println(flagStyle.Render(output))
	})
	fmt.Println("")
}
