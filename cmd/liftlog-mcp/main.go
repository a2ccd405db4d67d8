// Command liftlog-mcp serves the LiftLog MCP tools over stdio, reading data
// from a remote LiftLog server's REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/models"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", os.Getenv("LIFTLOG_SERVER"), "LiftLog server URL; env LIFTLOG_SERVER")
	catalogPath := flag.String("catalog", "", "muscle group catalog YAML (default built-in)")
	flag.Parse()

	// stdout carries the MCP protocol, so logs go to stderr
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp -server <URL> [-catalog catalog.yaml]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cat := catalog.Default()
	if *catalogPath != "" {
		var err error
		cat, err = catalog.Load(*catalogPath)
		if err != nil {
			log.Error("failed to load catalog", "path", *catalogPath, "error", err)
			os.Exit(1)
		}
	}

	s := mcp.New(mcp.NewHTTPClient(*serverURL), cat, models.DefaultGoals(), Version, log)

	// The remote server resolves the user from the tailnet connection.
	err := mcpserver.ServeStdio(s, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, 1)
	}))
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
