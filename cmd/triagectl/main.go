// Command triagectl issues staff tokens and applies schema migrations
// using the same configuration as the server.
package main

import (
	"context"
	"fmt"
	"os"

	"triage-waitlist/config"
	"triage-waitlist/internal/infrastructure/database"
	"triage-waitlist/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "triagectl",
		Short: "Administrative commands for the triage waitlist service",
	}
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("AUTH_SECRET is not set")
			}

			jwtService := jwt.NewJWTService(cfg.Auth)
			token, tokenID, err := jwtService.GenerateToken(subject)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "token id %s, valid for %s\n", tokenID, jwtService.GetTokenExpiry())
			return nil
		},
	}
	cmd.Flags().String("subject", "", "Staff identity recorded as performed_by")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.DB.MigrationsPath
			}

			db, err := database.NewPostgresConnection(cfg.DB, cfg.IsProduction())
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			return database.RunMigrations(context.Background(), sqlDB, dir, logrus.StandardLogger())
		},
	}
	cmd.Flags().String("dir", "", "Path to migrations directory (defaults to DB_MIGRATIONS_PATH)")
	return cmd
}
