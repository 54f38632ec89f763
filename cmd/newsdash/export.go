package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdash/internal/chart"
	"github.com/pders01/newsdash/internal/debuglog"
	"github.com/pders01/newsdash/internal/validation"
)

var (
	chartDate string
	chartOut  string

	reportDate  string
	reportEmail string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Export a chart as a PNG image",
}

var chartWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Export the weekly news count line chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportChart(cmd, chart.RegionWeekly)
	},
}

var chartDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Export the per-category bar chart of one day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportChart(cmd, chart.RegionDaily)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Ask the backend to email the report of a day",
	RunE:  runReport,
}

func init() {
	chartCmd.PersistentFlags().StringVarP(&chartOut, "out", "o", "", "PNG file to write")
	chartDailyCmd.Flags().StringVarP(&chartDate, "date", "d", "", "day to chart (YYYY-MM-DD)")
	chartCmd.AddCommand(chartWeeklyCmd, chartDailyCmd)

	reportCmd.Flags().StringVarP(&reportDate, "date", "d", "", "day of the report (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&reportEmail, "email", "e", "", "recipient address")
}

func exportChart(cmd *cobra.Command, region chart.Region) error {
	out, err := validation.NewPNGPathValidator().Validate(chartOut)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	var date string
	if region == chart.RegionDaily {
		if date, err = validation.ValidateDate(chartDate); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	var h *chart.Handle
	switch region {
	case chart.RegionWeekly:
		err = ctrl.InitialLoad(cmd.Context())
		h = ctrl.Snapshot().Weekly
	default:
		err = ctrl.RenderDailyChart(cmd.Context(), date)
		h = ctrl.Snapshot().Daily
	}
	if err != nil {
		return fmt.Errorf("loading %s counts: %w", region, err)
	}
	defer h.Release()

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = chart.ExportPNG(f, h, chart.ExportOptions{
		Width:  cfg.UI.Export.Width,
		Height: cfg.UI.Export.Height,
		Color:  cfg.UI.Colors.Series,
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out)
		if errors.Is(err, chart.ErrEmptyDataset) {
			return fmt.Errorf("%s: %w", ctrl.Labels().NoData, err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s chart to %s\n", region, out)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	date, err := validation.ValidateDate(reportDate)
	if err != nil {
		return err
	}
	email, err := validation.ValidateEmail(reportEmail)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	status, _, err := ctrl.SubmitReport(cmd.Context(), date, email)
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return err
}
