package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arclearn/loanbench/internal/config"
	"github.com/arclearn/loanbench/internal/reward"
	"github.com/arclearn/loanbench/internal/trajectory"
)

var (
	flagTrajectoryID string
	flagResponseFile string
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one response against one trajectory and print the reward record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			store, err := trajectory.Load(cfg.TaskSet.Path, cfg.TaskSet.Name, cfg.TaskSet.Format, cfg.TaskSet.Split)
			if err != nil {
				return err
			}
			traj, ok := store.ByID(flagTrajectoryID)
			if !ok {
				return fmt.Errorf("trajectory %q not found in task set", flagTrajectoryID)
			}
			response, err := os.ReadFile(flagResponseFile)
			if err != nil {
				return fmt.Errorf("reading response file: %w", err)
			}

			rec, err := reward.NewEngine(cfg.Reward).Score(traj, string(response))
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&flagTrajectoryID, "trajectory", "", "trajectory id to score against")
	cmd.Flags().StringVar(&flagResponseFile, "response", "", "file containing the generated response")
	cmd.MarkFlagRequired("trajectory")
	cmd.MarkFlagRequired("response")
	return cmd
}
