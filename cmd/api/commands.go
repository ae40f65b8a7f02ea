package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	appRepos "github.com/yigit/questionbank/internal/app/repositories"
	"github.com/yigit/questionbank/internal/bootstrap"
	"github.com/yigit/questionbank/internal/server"
)

var defaultConfigPath = filepath.Join("configs", "config.yaml")

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "questionbank",
		Short: "QuestionBank API server",
		Long: `QuestionBank serves users, permission sets, forms and the book library.

Without a subcommand the HTTP server is started (same as "serve").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), server.Options{ConfigPath: configPath})
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")

	cmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		seedCmd(&configPath),
		cleanupTokensCmd(&configPath),
	)
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	var opts server.Options
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, seed defaults and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = *configPath
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.SkipMigrations, "skip-migrations", false, "Do not apply pending migrations on start")
	cmd.Flags().BoolVar(&opts.SkipSeed, "skip-seed", false, "Do not seed default data on start")
	return cmd
}

func runServe(ctx context.Context, opts server.Options) error {
	srv, err := server.NewServer(ctx, opts)
	if err != nil {
		return err
	}
	return srv.Run()
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
			if err != nil {
				return err
			}
			database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()
			return bootstrap.RunMigrations(ctx, cfg, database, lgr)
		},
	}
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories, grades, permission sets and admin user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
			if err != nil {
				return err
			}
			database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()

			res, err := bootstrap.RunSeed(ctx, cfg, database, lgr)
			if err != nil {
				return err
			}
			cmd.Printf("categories: %d, grades: %d, permission sets: %d, admin created: %t\n",
				res.Categories, res.Grades, res.PermissionSets, res.AdminCreated)
			return nil
		},
	}
}

func cleanupTokensCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-tokens",
		Short: "Delete expired refresh tokens and revoked ones older than 30 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
			if err != nil {
				return err
			}
			database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()

			removed, err := appRepos.NewTokenRepository(database.Pool).CleanupExpiredTokens(ctx)
			if err != nil {
				return err
			}
			lgr.Info().Int64("removed", removed).Msg("Expired tokens cleaned up")
			cmd.Printf("removed %d tokens\n", removed)
			return nil
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
