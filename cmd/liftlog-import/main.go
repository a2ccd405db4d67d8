package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env-file", ".env", "optional .env file loaded before the config")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of exports (required)")
	login := flag.String("user", "local", "login of the user the workouts belong to")
	createUser := flag.Bool("create-user", false, "create the user if it does not exist yet")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -path /path/to/exports [-user login] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*exportPath); err != nil {
		log.Error("export path does not exist", "path", *exportPath)
		os.Exit(1)
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
		stats, err := importer.New(nil, cfg.Scoring.IncludeWarmups, log, true).Import(ctx, *exportPath, 0)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		printStats(log, stats)
		return
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, cfg.Database.MigrationsPath()); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := db.LookupUser(ctx, *login)
	if errors.Is(err, storage.ErrNotFound) && *createUser {
		userID, err = db.GetOrCreateUser(ctx, *login, "")
	}
	if err != nil {
		log.Error("unknown user (use -create-user to add it)", "user", *login, "error", err)
		os.Exit(1)
	}

	// Run import
	imp := importer.New(db, cfg.Scoring.IncludeWarmups, log, false)
	stats, err := imp.Import(ctx, *exportPath, userID)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete", "user", *login)
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"dry_run", stats.DryRun,
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_received", stats.SessionsReceived,
		"sessions_skipped", stats.SessionsSkipped,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_replaced", stats.WorkoutsReplaced,
		"sets_received", stats.SetsReceived,
	)
}
