package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/schema"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := schema.Ensure(cmd.Context(), gw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
