// Command admin runs maintenance tasks against the lucky ticket store:
// seeding the admin account, minting ticket batches and importing pre-printed codes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArowuTest/luckyticket-backend/internal/config"
	"github.com/ArowuTest/luckyticket-backend/internal/logging"
	"github.com/ArowuTest/luckyticket-backend/internal/services"
	"github.com/ArowuTest/luckyticket-backend/internal/storage"
	"github.com/ArowuTest/luckyticket-backend/pkg/jwt"
	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *storage.Backend
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          = &app{}
	)

	root := &cobra.Command{
		Use:           "admin",
		Short:         "Lucky ticket maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			a.backend, err = storage.Open(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.backend == nil {
				return nil
			}
			return a.backend.Close(context.Background())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	root.AddCommand(newSeedAdminCmd(a), newGenerateCmd(a), newImportCmd(a))
	return root
}

func newSeedAdminCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				name = a.cfg.Admin.Name
			}
			if email == "" {
				email = a.cfg.Admin.Email
			}
			if password == "" {
				password = a.cfg.Admin.Password
			}

			tokens := jwt.NewTokenService(a.cfg.JWT.Secret, 0)
			auth := services.NewAuthService(a.backend.Users, tokens, a.logger)
			user, created, err := auth.SeedAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin account created: %s\n", user.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin already exists: %s\n", user.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "admin display name (default Admin.Name)")
	cmd.Flags().StringVar(&email, "email", "", "admin email (default Admin.Email)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default ADMIN_PASSWORD)")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		reward string
		count  int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Mint a batch of tickets and print them as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := services.NewTicketService(a.backend.Tickets, a.backend.Users, a.cfg.Tickets,
				services.WithLogger(a.logger))
			tickets, err := svc.GenerateBatch(cmd.Context(), reward, count)

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, t := range tickets {
				if encErr := enc.Encode(t); encErr != nil {
					return encErr
				}
			}
			if err != nil {
				return fmt.Errorf("generated %d of %d tickets: %w", len(tickets), count, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reward, "reward", "", "points awarded per ticket")
	cmd.Flags().IntVar(&count, "count", 1, "number of tickets to mint")
	_ = cmd.MarkFlagRequired("reward")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import pre-printed tickets from a CSV file with code and reward columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open CSV file: %w", err)
			}
			defer f.Close()

			svc := services.NewTicketService(a.backend.Tickets, a.backend.Users, a.cfg.Tickets,
				services.WithLogger(a.logger))
			result, err := svc.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
