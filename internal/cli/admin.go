package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRepairCmd runs the integrity repair for one quiz against the configured backends.
func NewRepairCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <quizID>",
		Short: "Relink questions to dimensions and derive missing score ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			backends, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer backends.Close()

			report, err := backends.service.RepairQuiz(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if !report.Success {
				return fmt.Errorf("repair failed: %s", report.Message)
			}
			return nil
		},
	}
}

// NewInspectCmd prints the integrity report of one quiz without changing it.
func NewInspectCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <quizID>",
		Short: "Report dimension link and score range problems of a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			backends, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer backends.Close()

			report, err := backends.service.InspectQuiz(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
