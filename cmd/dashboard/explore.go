package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/infrastructure/render"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/usecase"
)

var (
	exploreOut     string
	exploreRefresh time.Duration
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactive session: change filters line by line and watch the chart follow",
	Long: `Commands:
  set <key> <value>     select a value (a,b,c selects several)
  unset <key>           clear one filter
  reset                 clear every filter
  show                  print state, filters and chart summary
  records               print the current records
  options               print the selectable values
  refresh               re-run the current filters
  quit                  leave the session`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exploreRefresh > 0 {
			cfg.Refresh.Interval = exploreRefresh
		}

		application := newApp()
		handle, err := application.OpenRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = handle.Shutdown() }()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if handle.Watch != nil {
			go func() { _ = handle.Watch(ctx) }()
		}

		var surface ports.ChartSurface
		if exploreOut != "" {
			surface = render.NewFileSurface(exploreOut)
		}

		dashboard, err := application.NewDashboard(handle.Repository, surface, nil)
		if err != nil {
			return err
		}
		defer dashboard.Close()

		if refresher := application.NewRefresher(dashboard); refresher != nil {
			if err := refresher.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = refresher.Stop(context.Background()) }()
		}

		return runSession(ctx, dashboard, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVarP(&exploreOut, "out", "o", "", "Re-render the chart to this file after every change")
	exploreCmd.Flags().DurationVar(&exploreRefresh, "refresh", 0, "Re-fetch the current filters at this interval")
}

// runSession drives the dashboard from line commands until quit or end of input.
func runSession(ctx context.Context, d *usecase.Dashboard, in io.Reader, out io.Writer) error {
	<-d.Start(ctx)
	printSummary(out, d.View())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, rest := fields[0], fields[1:]; cmd {
		case "set":
			if len(rest) < 2 {
				fmt.Fprintln(out, "usage: set <key> <value>")
				continue
			}
			<-d.SetFilter(ctx, rest[0], selection(strings.Join(rest[1:], " ")))
			printSummary(out, d.View())
		case "unset":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: unset <key>")
				continue
			}
			<-d.SetFilter(ctx, rest[0], domain.Empty())
			printSummary(out, d.View())
		case "reset":
			<-d.Reset(ctx)
			printSummary(out, d.View())
		case "refresh":
			<-d.Refresh(ctx)
			printSummary(out, d.View())
		case "show":
			printSummary(out, d.View())
			printChart(out, d.View().Chart.Result)
		case "records":
			if err := writeRecords(out, d.View().Records); err != nil {
				return err
			}
		case "options":
			writeOptions(out, d.Options())
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q\n", cmd)
		}
	}
}

// selection reads "a,b" as a multi-select and anything else as a scalar.
func selection(raw string) domain.FilterValue {
	if !strings.Contains(raw, ",") {
		return domain.Scalar(raw)
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return domain.Set(values...)
}

func printSummary(out io.Writer, view usecase.View) {
	filters, _ := json.Marshal(activeFilters(view.Filters))
	fmt.Fprintf(out, "[%s] %d records, %d bars, max %g, filters %s\n",
		view.State, len(view.Records), len(view.Chart.Result.Bars), view.Chart.Result.Max, filters)
	if view.Err != nil {
		fmt.Fprintf(out, "error: %v\n", view.Err)
	}
}

func activeFilters(state domain.FilterState) map[string]string {
	active := map[string]string{}
	for _, key := range state.Active() {
		active[key] = state.Get(key).String()
	}
	return active
}

func printChart(out io.Writer, result domain.AggregationResult) {
	const width = 40
	for _, bar := range result.Bars {
		n := 0
		if result.Max > 0 && bar.Value > 0 {
			n = int(bar.Value / result.Max * width)
		}
		if n > width {
			n = width
		}
		fmt.Fprintf(out, "%-28s %6g %s\n", bar.Category, bar.Value, strings.Repeat("#", n))
	}
}
