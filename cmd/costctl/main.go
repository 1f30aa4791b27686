// Command costctl resolves recipe costs from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"costbook/internal/config"
	"costbook/internal/db"
	"costbook/internal/db/mock"
	applog "costbook/internal/log"
	"costbook/internal/serializer"
)

const name = "costctl"

var openDatabase = func(ctx context.Context, url string, useMock bool) (*gorm.DB, error) {
	if useMock || url == "" {
		applog.Debug(ctx, "using in-memory mock database")
		return mock.New(ctx)
	}
	return db.Configure(config.DatabaseConfig{URL: url})
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Resolve recipe costs and inspect the recipe graph",
		EnableShellCompletion: true,
		Writer:                out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database URL (postgres://..., sqlite://file:...)",
				Sources: cli.EnvVars("DATABASE_URL", "DB_URL"),
			},
			&cli.BoolFlag{
				Name:    "mock",
				Usage:   "Use the seeded in-memory database",
				Sources: cli.EnvVars("DATABASE_USE_MOCK"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(serializer.FormatTable),
				Usage:   fmt.Sprintf("Output format (supported values: %s)", serializer.SupportedFormats()),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to this file instead of stdout",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := applog.SetLevel(cmd.String("log-level")); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			costCmd(),
			costsCmd(),
			usedInCmd(),
			convertCmd(),
			unitsCmd(),
		},
	}
}

// emit serializes value using the root --format and --output flags.
func emit(ctx context.Context, cmd *cli.Command, value any) error {
	format, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var w *serializer.Writer
	if path := cmd.String("output"); path != "" {
		w, err = serializer.NewFileWriterOrStdout(format, path)
		if err != nil {
			return err
		}
	} else {
		w = serializer.NewWriter(format, cmd.Root().Writer)
	}
	defer func() {
		if err := w.Close(); err != nil {
			applog.Warn(ctx, "failed to close output", "error", err)
		}
	}()
	return w.Serialize(ctx, value)
}

// loadStore opens the configured database for one command invocation.
func loadStore(ctx context.Context, cmd *cli.Command) (*db.Store, func(), error) {
	database, err := openDatabase(ctx, cmd.String("database-url"), cmd.Bool("mock"))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db.NewStore(database), closeFn, nil
}
