// Package upload sends Alpha Progression CSV exports from a local directory
// to a LiftLog server, skipping files it has already delivered.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftlog/internal/ingest/alpha"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent     int
	SetsSent         int
	WorkoutsInserted int
	WorkoutsReplaced int64
}

// Uploader walks an export directory and POSTs every new or changed CSV file
// to the LiftLog server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// fileInfo tracks a file's metadata for state DB operations.
type fileInfo struct {
	path    string
	relPath string
	size    int64
	hash    string
}

// Run uploads every pending export. Files that fail to parse are counted and
// skipped; a server failure stops the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := alpha.FindExports(u.dir)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		u.stats.FilesTotal++

		fi, pending, err := u.pending(f)
		if err != nil {
			u.log.Warn("state check failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if !pending {
			u.stats.FilesSkipped++
			continue
		}

		if err := u.uploadFile(ctx, fi); err != nil {
			return &u.stats, err
		}
	}

	if !u.dryRun && u.stats.FilesUploaded > 0 {
		if err := u.state.SetSyncState("last_upload", time.Now().UTC().Format(time.RFC3339)); err != nil {
			u.log.Warn("failed to save sync state", "error", err)
		}
	}
	return &u.stats, nil
}

// pending stats and hashes a file and reports whether it still needs uploading.
func (u *Uploader) pending(path string) (fileInfo, bool, error) {
	relPath, _ := filepath.Rel(u.dir, path)
	info, err := os.Stat(path)
	if err != nil {
		return fileInfo{}, false, err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fileInfo{}, false, err
	}
	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		return fileInfo{}, false, err
	}
	return fileInfo{path: path, relPath: relPath, size: info.Size(), hash: hash}, !uploaded, nil
}

func (u *Uploader) uploadFile(ctx context.Context, fi fileInfo) error {
	data, err := os.ReadFile(fi.path)
	if err != nil {
		u.log.Warn("read failed", "file", fi.relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	// Parse locally so malformed exports never reach the server.
	sessions, err := alpha.Parse(bytes.NewReader(data))
	if err != nil {
		u.log.Warn("parse failed", "file", fi.relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if len(sessions) == 0 {
		u.stats.FilesSkipped++
		if !u.dryRun {
			// Mark empty files as uploaded so we don't re-check them
			_ = u.state.MarkUploaded(fi.relPath, fi.size, fi.hash)
		}
		return nil
	}

	if u.dryRun {
		sets := 0
		for _, s := range sessions {
			sets += s.SetCount(false)
		}
		u.log.Info("dry-run: would send", "file", fi.relPath, "sessions", len(sessions), "sets", sets)
		u.stats.SessionsSent += len(sessions)
		u.stats.SetsSent += sets
		u.stats.FilesUploaded++
		return nil
	}

	result, err := u.client.SendAlphaCSV(ctx, data)
	if err != nil {
		return fmt.Errorf("sending %s: %w", fi.relPath, err)
	}
	u.stats.SessionsSent += result.SessionsReceived
	u.stats.SetsSent += result.SetsReceived
	u.stats.WorkoutsInserted += result.WorkoutsInserted
	u.stats.WorkoutsReplaced += result.WorkoutsReplaced

	if err := u.state.MarkUploaded(fi.relPath, fi.size, fi.hash); err != nil {
		u.log.Warn("failed to mark uploaded", "file", fi.relPath, "error", err)
	}
	u.stats.FilesUploaded++

	u.log.Info("uploaded export",
		"file", fi.relPath,
		"sessions", result.SessionsReceived,
		"inserted", result.WorkoutsInserted,
		"replaced", result.WorkoutsReplaced,
	)
	return nil
}
