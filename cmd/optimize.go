package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessopt/app"
	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/infra/logger"
	"github.com/kilianp07/bessopt/infra/timeseries"
	"github.com/kilianp07/bessopt/pkg/export"
	"github.com/kilianp07/bessopt/pkg/render"
)

var (
	seriesPath string
	jsonPath   string
	csvPath    string
	showCharts bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve a schedule for a demand and price series",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&seriesPath, "series", "s", "", "CSV series file (defaults to data.path)")
	optimizeCmd.Flags().StringVar(&jsonPath, "json", "", "write the schedule as JSON to this file")
	optimizeCmd.Flags().StringVar(&csvPath, "csv", "", "write the schedule as CSV to this file")
	optimizeCmd.Flags().BoolVar(&showCharts, "charts", false, "plot state of charge and power flow charts")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := seriesPath
	if path == "" {
		path = cfg.Data.Path
	}
	if path == "" {
		return fmt.Errorf("no series file: pass --series or set data.path")
	}
	series, err := timeseries.Load(path, cfg.Data.DemandColumn, cfg.Data.PriceColumn)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	if cfg.Solver.MaxSteps > 0 && series.Steps() > cfg.Solver.MaxSteps {
		return fmt.Errorf("series has %d steps, limit is %d", series.Steps(), cfg.Solver.MaxSteps)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)

	sched, err := svc.Optimize(ctx, cfg.Battery, cfg.Tariff, series)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := render.Summary(out, sched); err != nil {
		return err
	}
	if err := render.Table(out, sched); err != nil {
		return err
	}
	if showCharts {
		if err := render.Charts(out, sched, 80, 12); err != nil {
			return err
		}
	}

	if jsonPath != "" {
		if err := writeFile(jsonPath, func(f *os.File) error { return export.WriteJSON(f, sched) }); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	if csvPath != "" {
		if err := writeFile(csvPath, func(f *os.File) error { return export.WriteCSV(f, sched) }); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
