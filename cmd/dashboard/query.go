package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/usecase"
)

var (
	queryFilters []string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Fetch the records matching the given filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := parseFilters(queryFilters)
		if err != nil {
			return err
		}

		application := newApp()
		builder, err := application.Builder()
		if err != nil {
			return err
		}

		handle, err := application.OpenRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = handle.Shutdown() }()

		fetcher := usecase.NewFetcher(handle.Repository, logger.With("component", "fetcher"))
		records, err := fetcher.Fetch(cmd.Context(), builder.Build(state))
		if err != nil {
			return err
		}

		if queryJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}
		return writeRecords(cmd.OutOrStdout(), records)
	},
}

func writeRecords(out io.Writer, records []domain.Record) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLISHED\tINTENSITY\tEND_YEAR\tREGION\tSECTOR\tTOPIC")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			r.Published, r.Intensity, r.Value(domain.FieldEndYear), r.Region, r.Sector, r.Topic)
	}
	fmt.Fprintf(tw, "\n%d records\n", len(records))
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "Filter as key=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output in JSON format")
}
