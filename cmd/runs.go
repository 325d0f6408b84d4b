package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/infra/store"
	"github.com/kilianp07/bessopt/pkg/render"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted solver runs",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List persisted runs",
	RunE:  runRunsLs,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a persisted schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsLsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsLsCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.Store.Enabled {
		return nil, fmt.Errorf("run persistence is not enabled")
	}
	return store.New(cfg.Store.Path)
}

func closeStore(cmd *cobra.Command, st *store.Store) {
	if err := st.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error while closing store: %v\n", err)
	}
}

func runRunsLs(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	runs, err := st.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	table := tablewriter.NewTable(cmd.OutOrStdout())
	table.Header([]string{"Run", "Solved At", "Steps", "Peak kW", "Total Cost"})
	for _, r := range runs {
		table.Append([]string{
			r.RunID,
			r.SolvedAt.Format(time.RFC3339),
			strconv.Itoa(r.Steps),
			fmt.Sprintf("%.2f", r.PeakKW),
			fmt.Sprintf("%.2f", r.TotalCost),
		})
	}
	return table.Render()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	sched, err := st.GetRun(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := render.Summary(out, sched); err != nil {
		return err
	}
	return render.Table(out, sched)
}
