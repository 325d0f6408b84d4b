package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "bessopt",
	Short: "Battery storage schedule optimizer",
	Long: "bessopt plans charge and discharge schedules for a grid-connected " +
		"battery, minimizing energy cost plus the monthly peak demand charge.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
