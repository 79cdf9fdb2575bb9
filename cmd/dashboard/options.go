package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/usecase"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the selectable values of every filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, err := newApp().OpenRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = handle.Shutdown() }()

		options, err := loadOptions(cmd.Context(), handle.Repository)
		if err != nil {
			return err
		}

		if optionsJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(options)
		}
		writeOptions(cmd.OutOrStdout(), options)
		return nil
	},
}

// loadOptions asks the repository for its option lists when it serves them
// (the remote driver) and otherwise derives them from an unfiltered fetch.
func loadOptions(ctx context.Context, repo ports.RecordRepository) (map[domain.Field][]string, error) {
	if source, ok := repo.(ports.OptionSource); ok {
		return source.Options(ctx)
	}

	fetcherLogger := logger
	if fetcherLogger != nil {
		fetcherLogger = fetcherLogger.With("component", "fetcher")
	}
	fetcher := usecase.NewFetcher(repo, fetcherLogger)
	if err := fetcher.Prime(ctx); err != nil {
		return nil, err
	}
	return fetcher.Options(), nil
}

func writeOptions(out io.Writer, options map[domain.Field][]string) {
	for _, field := range domain.FilterableFields {
		values := options[field]
		fmt.Fprintf(out, "%s (%d): %s\n", field, len(values), strings.Join(values, ", "))
	}
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "Output in JSON format")
}
