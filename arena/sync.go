package arena

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/strangesongs/arena-dl/storage"
)

// ErrSyncInProgress is returned when Sync is invoked while a prior run on the
// same Syncer has not settled. Overlapping runs against one channel directory
// would corrupt skip-existing accounting and failure-log overwrites, so the
// overlapping trigger is dropped.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncOptions configures a Syncer.
type SyncOptions struct {
	// OutputDir is the directory the channel subdirectory is created under.
	OutputDir string
	// ExportFormat, if non-empty, writes a manifest ("json" or "csv") after
	// the run.
	ExportFormat string
	// Download holds the orchestrator options.
	Download DownloadOptions
}

// Syncer coordinates one full pass: resolve the channel, list its blocks,
// plan jobs, download, and persist the run's artifacts. One Syncer owns its
// channel output directory; runs are serialized by the in-flight guard.
type Syncer struct {
	api     *Client
	dl      *Downloader
	opts    SyncOptions
	history *storage.HistoryStore
	running atomic.Bool
}

// NewSyncer creates a syncer from a listing client and a downloader.
func NewSyncer(api *Client, dl *Downloader, opts SyncOptions) *Syncer {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Syncer{api: api, dl: dl, opts: opts}
}

// SetHistory attaches a run-history store. Persistence failures during a run
// are warnings, never fatal.
func (s *Syncer) SetHistory(h *storage.HistoryStore) {
	s.history = h
}

// Sync performs one run against the channel identified by slugOrURL.
//
// Setup failures (unresolvable argument, channel not found, no connectivity)
// abort before any directory creation side effect. Per-item failures are
// counted, logged to the failure log, and never abort the batch. A manifest
// export failure surfaces as an *ExportError alongside the completed result.
func (s *Syncer) Sync(ctx context.Context, slugOrURL string) (*RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	slug, err := ExtractSlug(slugOrURL)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()

	channel, err := s.api.FetchChannel(ctx, slug)
	if err != nil {
		return nil, err
	}

	blocks := s.api.FetchAllBlocks(ctx, slug, channel.Length)
	jobs := Plan(blocks, s.opts.OutputDir, slug)

	result := s.dl.Run(ctx, jobs)
	result.Total = len(blocks)
	result.NoImage = len(blocks) - len(jobs)

	if result.Failed > 0 {
		logPath := FailureLogPath(s.opts.OutputDir, slug)
		if err := WriteFailureLog(logPath, result.Failures); err != nil {
			log.Printf("arena-dl: warning: %v", err)
		}
	}

	s.recordHistory(slug, startedAt, result)

	if s.opts.ExportFormat != "" {
		path := ManifestPath(s.opts.OutputDir, slug, s.opts.ExportFormat)
		if err := ExportManifest(result.DownloadedJobs, s.opts.ExportFormat, path); err != nil {
			return result, err
		}
	}

	return result, nil
}

// recordHistory persists the run outcome for the next watch cycle.
func (s *Syncer) recordHistory(slug string, startedAt time.Time, result *RunResult) {
	if s.history == nil {
		return
	}
	rec := &storage.RunRecord{
		Slug:       slug,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		DryRun:     result.DryRun,
		Total:      result.Total,
		Downloaded: result.Downloaded,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		NoImage:    result.NoImage,
	}
	if err := s.history.RecordRun(rec); err != nil {
		log.Printf("arena-dl: warning: failed to persist run history: %v", err)
	}
}
