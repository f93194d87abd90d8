package cli

import (
	"github.com/spf13/cobra"
)

const plansPath = "/api/v1/plans"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Plans

			if err := client.Get(cmd.Context(), plansPath, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <plan>",
		Short: "Append a plan to your list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"plan": args[0]}
			var result Plans

			if err := client.Post(cmd.Context(), plansPath, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <plan>",
		Short: "Remove every plan equal to <plan>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"plan": args[0]}
			var result RemoveResult

			if err := client.Delete(cmd.Context(), plansPath, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
