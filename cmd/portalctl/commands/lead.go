package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/repo"
)

func leadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Inspect and triage leads",
	}
	cmd.AddCommand(leadListCmd(), leadStatusCmd())
	return cmd
}

func leadListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leads, err := lead.NewService(repo.NewLeadRepo(gw)).GetAllLeads(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tFIRST NAME\tEMAIL\tCREATED")
			for _, l := range leads {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Status, l.FirstName, l.Email, l.CreatedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func leadStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Set the status of a lead (new, contacted, qualified, converted, lost)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := lead.NewService(repo.NewLeadRepo(gw)).UpdateStatus(cmd.Context(), args[0], entity.Status(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", l.ID, l.Status)
			return nil
		},
	}
}
