package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server"
)

var (
	servePort    int
	serveDBURL   string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job tracker REST API backed by PostgreSQL.`,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	migrateCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func databaseURL(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("db-url") {
		return serveDBURL, nil
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return cfg.DatabaseURL, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	dbURL, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	if serveMigrate {
		if err := migrate(cmd.Context(), dbURL); err != nil {
			return err
		}
	}

	srv, err := server.New(server.Config{
		Port:        servePort,
		DatabaseURL: dbURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbURL, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	if err := migrate(cmd.Context(), dbURL); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func migrate(ctx context.Context, dbURL string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("[db] schema applied")
	return nil
}
