package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskify/backend/internal/events"
	"taskify/backend/internal/repositories"
	"taskify/backend/internal/server"
	"taskify/backend/internal/web"

	"github.com/spf13/cobra"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			app, err := server.New(g.cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := server.OpenDatabase(g.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return repositories.Migrate(pool.DB, pool.Driver(), server.MigrationConfig(g.cfg))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.Database.Driver == "sqlite" {
				return errors.New("sqlite schemas are auto-migrated and cannot be rolled back")
			}
			pool, err := server.OpenDatabase(g.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return repositories.RollbackMigration(pool.DB, server.MigrationConfig(g.cfg))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.Database.Driver == "sqlite" {
				fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is managed by auto-migration")
				return nil
			}
			pool, err := server.OpenDatabase(g.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			version, dirty, err := repositories.GetMigrationVersion(pool.DB, server.MigrationConfig(g.cfg))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func newEventsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Consume and log task lifecycle events from Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !g.cfg.Kafka.Enabled() {
				return errors.New("kafka.brokers and kafka.topic must be configured")
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			consumer := events.NewConsumer(g.cfg.Kafka.Brokers, g.cfg.Kafka.Topic, g.cfg.Kafka.GroupID)
			defer consumer.Close()

			log.Printf("📨 Consuming %s from %v", g.cfg.Kafka.Topic, g.cfg.Kafka.Brokers)
			return consumer.Run(ctx, events.LogHandler(log.New(cmd.OutOrStdout(), "", log.LstdFlags)))
		},
	}
}

func newWebCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Serve the browser dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			srv, err := web.NewServer(web.APIAuthenticator{Client: g.newClient("")}, web.Options{
				SessionTTL:   g.cfg.Web.SessionTTL,
				SecureCookie: g.cfg.Web.SecureCookie,
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx, g.cfg.GetWebAddr())
		},
	}
}
