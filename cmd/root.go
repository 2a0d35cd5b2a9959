package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loanbench",
		Short: "Failure-aware reward and evaluation engine for loan-advisory agents",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "loanbench.yaml", "config file path")
	root.AddCommand(newBenchCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newScoreCmd())
	return root
}
