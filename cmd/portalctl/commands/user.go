package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/repo"
)

func userService() *user.UserService {
	return user.NewUserService(repo.NewUserRepo(gw), nil)
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage portal accounts",
	}
	cmd.AddCommand(userCreateCmd(), userListCmd(), userDisableCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var in user.NewUser
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("PORTAL_PASSWORD")
			}
			if in.Password == "" {
				return errors.New("--password or PORTAL_PASSWORD is required")
			}
			p, err := userService().CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", p.Role, p.Email, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.Role, "role", string(entity.RoleClient), "ADMIN, HOS, CLIENT or EXPERT")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (prefer PORTAL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func userListCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, optionally by role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r entity.Role
			if role != "" {
				var ok bool
				if r, ok = entity.ParseRole(role); !ok {
					return fmt.Errorf("unknown role %q", role)
				}
			}
			users, err := userService().List(cmd.Context(), r)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROLE\tEMAIL\tNAME\tSTATUS")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Role, u.Email, u.DisplayName(), u.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "filter by role")
	return cmd
}

func userDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable [id]",
		Short: "Disable an account so it can no longer sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userService().Deactivate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "disabled %s\n", args[0])
			return nil
		},
	}
}
