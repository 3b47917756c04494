package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

var gw *database.Gateway

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operate the Declic portal database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return err
				}
			} else {
				_ = godotenv.Load()
			}
			cfg, err := database.ConfigFromEnv()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			gw = database.NewGateway(db)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if gw == nil {
				return nil
			}
			return gw.Close()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")

	root.AddCommand(migrateCmd(), userCmd(), leadCmd())
	return root
}
