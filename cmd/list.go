package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arclearn/loanbench/internal/config"
	"github.com/arclearn/loanbench/internal/trajectory"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Summarize the configured task set by failure type",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			store, err := trajectory.Load(cfg.TaskSet.Path, cfg.TaskSet.Name, cfg.TaskSet.Format, cfg.TaskSet.Split)
			if err != nil {
				return err
			}

			fmt.Printf("Task set %q: %d trajectories", store.Name(), store.Len())
			if store.Skipped() > 0 {
				fmt.Printf(" (%d rows skipped)", store.Skipped())
			}
			fmt.Println()

			stats := store.Stats()
			types := make([]string, 0, len(stats))
			for ft := range stats {
				types = append(types, ft)
			}
			sort.Strings(types)
			for _, ft := range types {
				s := stats[ft]
				fmt.Printf("  - %s: %d examples, mean priority %.2f, mean impact cost $%.0f\n",
					ft, s.Count, s.MeanPriority, s.MeanImpactCost)
			}
			return nil
		},
	}
}
