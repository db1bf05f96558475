package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/httpapi"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the signup API",
		Long:  "Serve the signup API until interrupted. Arms the trail backfill when server.trailBackfillAt is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := httpapi.NewServer(app.Cfg, app.Database, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			if at, ok := app.Cfg.TrailBackfillAt(); ok {
				disarm := server.ArmTrailBackfill(ctx, at)
				defer disarm()
			} else {
				app.Logger.Debug("Trail backfill not armed")
			}

			app.Logger.Info("Starting server", zap.String("addr", app.Cfg.ServerAddr()))
			return server.ListenAndServe(ctx)
		},
	}
}

// IssueTokenCmd creates the issueToken command
func IssueTokenCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issueToken <person_id>",
		Short: "Issue an API token for a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwtSecret is not configured")
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")

			person, err := app.Database.GetPerson(app.Ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get person: %w", err)
			}

			token, err := httpapi.NewAuthenticator(app.Cfg.Server.JWTSecret).IssueToken(person.ID, ttl)
			if err != nil {
				return err
			}

			app.Logger.Info("Token issued", zap.String("person_id", person.ID), zap.Duration("ttl", ttl))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Duration("ttl", 14*24*time.Hour, "Token lifetime")

	return cmd
}
