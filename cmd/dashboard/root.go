package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"InsightsDashboard/internal/app"
	"InsightsDashboard/internal/config"
	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/filter"
	"InsightsDashboard/internal/logging"
	"InsightsDashboard/internal/query"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Filterable insights dashboard: query, chart and serve analytical records",
	Long: `dashboard turns filter selections into repository predicates, fetches the
matching records and aggregates them into a published-vs-intensity bar chart.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			loaded, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		} else {
			cfg = config.Load()
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger = logging.NewWriter(os.Stderr, level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default $DASHBOARD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func newApp() *app.Application {
	return app.New(cfg, logger)
}

// parseFilters turns repeated key=value flags into a filter state. Keys follow the
// HTTP query conventions: "key[]" or a repeated key is a multi-select.
func parseFilters(pairs []string) (domain.FilterState, error) {
	values := map[string][]string{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return domain.FilterState{}, fmt.Errorf("filter %q: expected key=value", pair)
		}
		values[key] = append(values[key], value)
	}
	return query.ParseValues(values), nil
}

// filterModel presets a model with every selection in state.
func filterModel(state domain.FilterState) *filter.Model {
	model := filter.NewModel(nil)
	for _, key := range state.Keys() {
		model.Set(key, state.Get(key))
	}
	return model
}
