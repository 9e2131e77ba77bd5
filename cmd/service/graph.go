package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httphandler "github.com/kjstillabower/weather-explorer/internal/http"
	"github.com/kjstillabower/weather-explorer/internal/validation"
)

func newGraphCmd() *cobra.Command {
	var lat, lon, unitsFlag, date, out string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Write the hourly temperature chart for one day and place to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := validation.ParseGraph(map[string]string{
				"lat": lat, "lon": lon, "units": unitsFlag, "date": date,
			})
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			temps, err := a.weather.HourlyTemperatures(cmd.Context(), req.Location, req.Units, req.Date)
			if err != nil {
				return err
			}
			png, err := httphandler.RenderHourlyChart(temps, req.Units)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("graph-%s.png", req.Date.Format(validation.DateLayout))
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("chart written", zap.String("path", out), zap.Int("points", len(temps)))
			cmd.Printf("wrote %s (%d hourly readings)\n", out, len(temps))
			return nil
		},
	}
	cmd.Flags().StringVar(&lat, "lat", "", "latitude in degrees")
	cmd.Flags().StringVar(&lon, "lon", "", "longitude in degrees")
	cmd.Flags().StringVar(&unitsFlag, "units", "metric", "imperial, metric or standard")
	cmd.Flags().StringVar(&date, "date", "", "day to plot, YYYY-MM-DD")
	cmd.Flags().StringVar(&out, "out", "", "output file (default graph-<date>.png)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
