// Package importer loads Alpha Progression CSV exports from disk straight
// into the database, bypassing the HTTP API.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Store is the persistence an import writes to. *storage.DB satisfies it.
type Store interface {
	ingest.WorkoutStore
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ingest.Result
}

// Importer reads Alpha CSV exports from a directory and inserts their
// sessions for one user.
type Importer struct {
	store    Store
	provider *alpha.Provider
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. In dry-run mode files are parsed and counted
// but nothing is written.
func New(store Store, includeWarmups bool, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{
		store:    store,
		provider: alpha.NewProvider(store, includeWarmups, log),
		log:      log,
		dryRun:   dryRun,
	}
}

// Import processes every CSV export under path, which may also name a single
// file. Malformed exports are logged and skipped; a storage failure aborts
// the import.
func (imp *Importer) Import(ctx context.Context, path string, userID int) (*Stats, error) {
	files, err := alpha.FindExports(path)
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		rel, err := filepath.Rel(path, f)
		if err != nil || rel == "." {
			rel = filepath.Base(f)
		}

		var result *ingest.Result
		if imp.dryRun {
			result, err = imp.count(f)
		} else {
			result, err = imp.importFile(ctx, f, rel, userID)
		}
		switch {
		case errors.Is(err, alpha.ErrMalformed):
			imp.log.Warn("skipping malformed export", "file", rel, "error", err)
			imp.stats.FilesErrored++
			continue
		case err != nil:
			return &imp.stats, fmt.Errorf("importing %s: %w", rel, err)
		}

		if result.SessionsReceived == 0 {
			imp.stats.FilesSkipped++
			continue
		}
		imp.stats.FilesProcessed++
		imp.stats.Add(result)
	}

	imp.stats.DryRun = imp.dryRun
	return &imp.stats, nil
}

// count parses a file without storing it.
func (imp *Importer) count(path string) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sessions, err := alpha.Parse(f)
	if err != nil {
		return nil, err
	}
	result := &ingest.Result{SessionsReceived: len(sessions), DryRun: true}
	records := imp.provider.Records(sessions, result)
	result.WorkoutsInserted = len(records)
	return result, nil
}

// importFile ingests one file, tracking it in import_logs from running to
// success or error.
func (imp *Importer) importFile(ctx context.Context, path, rel string, userID int) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, _ := json.Marshal(map[string]string{"file": rel})
	raw := json.RawMessage(meta)
	entry := storage.ImportLog{
		UserID:   userID,
		Source:   models.SourceAlpha,
		Status:   storage.ImportRunning,
		Metadata: &raw,
	}
	logID, err := imp.store.InsertImportLog(ctx, entry)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, importErr := imp.provider.Ingest(ctx, f, userID)

	duration := int(time.Since(start).Milliseconds())
	entry.DurationMs = &duration
	entry.Status = storage.ImportSuccess
	if importErr != nil {
		entry.Status = storage.ImportError
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	} else {
		entry.SessionsReceived = result.SessionsReceived
		entry.WorkoutsInserted = result.WorkoutsInserted
		entry.WorkoutsReplaced = result.WorkoutsReplaced
		entry.SetsReceived = result.SetsReceived
	}
	if err := imp.store.UpdateImportLog(ctx, logID, entry); err != nil {
		imp.log.Warn("failed to update import log", "file", rel, "error", err)
	}

	return result, importErr
}
