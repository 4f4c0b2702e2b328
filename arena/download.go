package arena

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	arenahttp "github.com/strangesongs/arena-dl/http"
	"github.com/strangesongs/arena-dl/storage"
)

// FailureRecord captures one failed job for the failure log.
type FailureRecord struct {
	BlockID int
	Title   string
	Message string
}

// CompletedJob is a job that resolved as downloaded (or counted, in dry-run),
// kept for the manifest export.
type CompletedJob struct {
	Job          Job
	DownloadedAt time.Time
}

// RunResult accumulates the outcome of one orchestrator pass. It is mutated
// only by the downloader during the run and read-only afterward; one run owns
// it at a time. The counters satisfy
// downloaded+skipped+failed+noImage <= total.
type RunResult struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
	NoImage    int

	// Failures is ordered by job settlement within the chunk sequence.
	Failures []FailureRecord
	// DownloadedJobs lists the jobs that resolved as downloaded, in order.
	DownloadedJobs []CompletedJob

	BytesWritten int64
	Elapsed      time.Duration
	DryRun       bool
}

// Progress is an incremental snapshot emitted after every chunk.
type Progress struct {
	Done         int
	Total        int
	Downloaded   int
	Skipped      int
	Failed       int
	BytesWritten int64
	Elapsed      time.Duration
}

// Throughput returns bytes per second over the run so far.
func (p Progress) Throughput() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.BytesWritten) / p.Elapsed.Seconds()
}

// DownloadOptions configures one orchestrator pass.
type DownloadOptions struct {
	// Concurrent is the chunk size: the bound on simultaneously in-flight
	// downloads. Defaults to 5.
	Concurrent int
	// Force disables skip-existing: a pre-existing file at the target path
	// still goes through a download attempt.
	Force bool
	// DryRun replaces the download side effect with a no-op that still
	// counts and records the job. Nothing is fetched or written.
	DryRun bool
	// OnProgress, if set, receives a snapshot after every chunk.
	OnProgress func(Progress)
}

// Downloader executes planned jobs under bounded concurrency.
type Downloader struct {
	client *arenahttp.Client
	opts   DownloadOptions
}

// NewDownloader creates a downloader over the given HTTP client.
func NewDownloader(client *arenahttp.Client, opts DownloadOptions) *Downloader {
	if opts.Concurrent <= 0 {
		opts.Concurrent = 5
	}
	return &Downloader{client: client, opts: opts}
}

type jobStatus int

const (
	statusDownloaded jobStatus = iota
	statusSkipped
	statusFailed
)

type jobOutcome struct {
	status jobStatus
	bytes  int64
	doneAt time.Time
	err    error
}

// Run executes the jobs in chunks of size Concurrent. Chunks are strictly
// sequential; every job within a chunk runs concurrently and the chunk
// boundary is a join point, so at most Concurrent jobs are ever unresolved.
// Per-job failures never abort the batch.
func (d *Downloader) Run(ctx context.Context, jobs []Job) *RunResult {
	start := time.Now()
	result := &RunResult{
		Total:  len(jobs),
		DryRun: d.opts.DryRun,
	}

	chunkSize := d.opts.Concurrent
	for begin := 0; begin < len(jobs); begin += chunkSize {
		end := begin + chunkSize
		if end > len(jobs) {
			end = len(jobs)
		}
		chunk := jobs[begin:end]

		outcomes := make([]jobOutcome, len(chunk))
		var wg sync.WaitGroup
		for i := range chunk {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = d.execute(ctx, chunk[i])
			}(i)
		}
		wg.Wait()

		// Settle the chunk in job order so counters and the failure log
		// stay deterministic regardless of goroutine scheduling.
		for i, out := range outcomes {
			job := chunk[i]
			switch out.status {
			case statusSkipped:
				result.Skipped++
			case statusDownloaded:
				result.Downloaded++
				result.BytesWritten += out.bytes
				result.DownloadedJobs = append(result.DownloadedJobs, CompletedJob{
					Job:          job,
					DownloadedAt: out.doneAt,
				})
			case statusFailed:
				result.Failed++
				result.Failures = append(result.Failures, FailureRecord{
					BlockID: job.Block.ID,
					Title:   job.Block.Title,
					Message: out.err.Error(),
				})
			}
		}

		if d.opts.OnProgress != nil {
			d.opts.OnProgress(Progress{
				Done:         end,
				Total:        len(jobs),
				Downloaded:   result.Downloaded,
				Skipped:      result.Skipped,
				Failed:       result.Failed,
				BytesWritten: result.BytesWritten,
				Elapsed:      time.Since(start),
			})
		}
	}

	result.Elapsed = time.Since(start)
	return result
}

// execute resolves a single job: SKIPPED when skip-existing applies,
// DOWNLOADED on a non-empty body written atomically, FAILED otherwise.
func (d *Downloader) execute(ctx context.Context, job Job) jobOutcome {
	if !d.opts.Force {
		if info, err := os.Stat(job.TargetPath); err == nil && info.Size() > 0 {
			return jobOutcome{status: statusSkipped}
		}
	}

	if d.opts.DryRun {
		return jobOutcome{status: statusDownloaded, doneAt: time.Now()}
	}

	resp, err := d.client.GetOnce(ctx, job.Block.Image.Original.URL, arenahttp.ImageHeaders())
	if err != nil {
		return jobOutcome{status: statusFailed, err: err}
	}
	if len(resp.Body) == 0 {
		return jobOutcome{status: statusFailed, err: arenahttp.ErrEmptyBody}
	}

	writer, err := storage.NewAtomicWriter(job.TargetPath)
	if err != nil {
		return jobOutcome{status: statusFailed, err: err}
	}
	if _, err := writer.Write(resp.Body); err != nil {
		writer.Abort()
		return jobOutcome{status: statusFailed, err: fmt.Errorf("write %s: %w", job.TargetPath, err)}
	}
	if err := writer.Commit(); err != nil {
		return jobOutcome{status: statusFailed, err: fmt.Errorf("write %s: %w", job.TargetPath, err)}
	}

	return jobOutcome{
		status: statusDownloaded,
		bytes:  int64(len(resp.Body)),
		doneAt: time.Now(),
	}
}

// WriteFailureLog serializes failure records to the given path, one
// "id - title: message" line per record, unconditionally overwriting any
// prior content. Callers only invoke it when the run had failures.
func WriteFailureLog(path string, failures []FailureRecord) error {
	var sb strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&sb, "%d - %s: %s\n", f.BlockID, f.Title, f.Message)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write failure log: %w", err)
	}
	return nil
}
