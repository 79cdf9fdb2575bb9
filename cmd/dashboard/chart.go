package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"InsightsDashboard/internal/infrastructure/render"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/usecase"
)

var (
	chartFilters []string
	chartOut     string
	chartFormat  string
	chartMode    string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the published-vs-intensity bar chart for the given filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := parseFilters(chartFilters)
		if err != nil {
			return err
		}
		if chartMode != "" {
			cfg.Chart.Mode = chartMode
		}

		var surface ports.ChartSurface
		if chartOut == "" || chartOut == "-" {
			format, err := render.ParseFormat(chartFormat)
			if err != nil {
				return err
			}
			surface = render.NewSurface(cmd.OutOrStdout(), format)
		} else {
			fs := render.NewFileSurface(chartOut)
			if chartFormat != "" {
				if fs.Format, err = render.ParseFormat(chartFormat); err != nil {
					return err
				}
			}
			surface = fs
		}

		application := newApp()
		handle, err := application.OpenRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = handle.Shutdown() }()

		dashboard, err := application.NewDashboard(handle.Repository, surface, filterModel(state))
		if err != nil {
			return err
		}
		defer dashboard.Close()

		<-dashboard.Start(cmd.Context())

		view := dashboard.View()
		if view.State != usecase.StateReady {
			if view.Err != nil {
				return view.Err
			}
			return fmt.Errorf("chart not rendered: dashboard is %s", view.State)
		}
		logger.Info("chart rendered", "bars", len(view.Chart.Result.Bars), "max", view.Chart.Result.Max, "out", chartOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringArrayVarP(&chartFilters, "filter", "f", nil, "Filter as key=value (repeatable)")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "-", "Output file; - writes to stdout")
	chartCmd.Flags().StringVar(&chartFormat, "format", "", "svg or png (default from --out extension, else svg)")
	chartCmd.Flags().StringVar(&chartMode, "mode", "", "Aggregation: per_record, sum or mean")
}
