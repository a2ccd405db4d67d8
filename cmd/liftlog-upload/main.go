package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/claude/liftlog/internal/upload"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net); env LIFTLOG_SERVER")
	apiKey := flag.String("api-key", "", "ingest API key; env LIFTLOG_API_KEY")
	exportPath := flag.String("path", "", "directory of Alpha Progression CSV exports")
	stateDir := flag.String("state-dir", "", "state database directory (default ~/.liftlog-upload)")
	dryRun := flag.Bool("dry-run", false, "parse exports but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// A .env next to the exports is optional
	_ = godotenv.Load()
	if *serverURL == "" {
		*serverURL = os.Getenv("LIFTLOG_SERVER")
	}
	if *apiKey == "" {
		*apiKey = os.Getenv("LIFTLOG_API_KEY")
	}

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-upload -server <URL> -api-key <key> -path <export dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*serverURL == "" || *apiKey == "") && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".liftlog-upload")
	}

	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("DRY RUN mode: exports will be parsed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Run upload
	uploader := upload.New(client, state, *exportPath, *dryRun, log)
	stats, err := uploader.Run(ctx)
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		state.Close()
		os.Exit(1)
	}

	printStats(stats)
	if last, err := state.GetSyncState("last_upload"); err == nil && last != "" {
		log.Info("upload complete", "last_upload", last)
	}
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded or empty)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions sent:    %d\n", stats.SessionsSent)
	fmt.Printf("  Sets sent:        %d\n", stats.SetsSent)
	fmt.Printf("  Workouts new:     %d\n", stats.WorkoutsInserted)
	fmt.Printf("  Workouts replaced: %d\n", stats.WorkoutsReplaced)
	fmt.Println()
}
