package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"portal/config"
	"portal/internal/activity"
	"portal/internal/auth"
	"portal/internal/chat"
	"portal/internal/database"
	"portal/internal/files"
	"portal/internal/lastseen"
	"portal/internal/membership"
	"portal/internal/user"
	"portal/pkg/clock"
)

// models lists every table the portal owns, in dependency order.
var models = []interface{}{
	&user.User{},
	&files.File{},
	&membership.Group{},
	&membership.GroupMember{},
	&membership.DirectThread{},
	&files.FileShare{},
	&chat.Message{},
	&lastseen.ChatLastSeen{},
	&activity.UserActivity{},
}

var issueEmail string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "portal",
	Short:         "Team portal messaging and inbox server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the realtime socket and the gRPC health endpoint.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(models...); err != nil {
			return err
		}

		app := InitializeApp(cfg, db, clock.Real())
		defer app.Scheduler.Stop()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		errCh := make(chan error, 2)
		go func() { errCh <- app.Server.Run(ctx, ":"+cfg.Port) }()
		go func() { errCh <- serveGRPC(ctx, ":"+cfg.GRPCPort) }()

		// Either listener failing takes the other one down with it.
		err = <-errCh
		cancel()
		err = errors.Join(err, <-errCh)

		slog.Info("server stopped", "pending_reminders", app.Scheduler.Pending())
		return err
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		return db.Migrate(models...)
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print an access token for the user with the given email, creating the user if needed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		u, err := user.ProvideRepository(db).FindOrCreateByEmail(cmd.Context(), issueEmail)
		if err != nil {
			return err
		}
		token, err := auth.ProvideJWT(cfg).GenerateToken(u.ID)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	issueTokenCmd.Flags().StringVarP(&issueEmail, "email", "e", "", "Email of the user to issue a token for.")
	_ = issueTokenCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, issueTokenCmd)
}

func bootstrap() (*config.Config, *database.Database, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
