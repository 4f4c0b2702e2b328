// Command arena-dl mirrors the image blocks of an are.na channel to disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/strangesongs/arena-dl/arena"
	"github.com/strangesongs/arena-dl/config"
	arenahttp "github.com/strangesongs/arena-dl/http"
	"github.com/strangesongs/arena-dl/retry"
	"github.com/strangesongs/arena-dl/storage"
)

func main() {
	fs := flag.NewFlagSet("arena-dl", flag.ExitOnError)
	out := fs.String("out", "", "Output directory (default from config, else current directory)")
	force := fs.Bool("force", false, "Re-download even if the file already exists")
	dryRun := fs.Bool("dry-run", false, "Plan and count without fetching or writing anything")
	export := fs.String("export", "", "Write a manifest of downloaded blocks: json or csv")
	watch := fs.Int("watch", 0, "Re-run every N minutes (0 = run once)")
	concurrent := fs.Int("concurrent", 0, "Downloads in flight per chunk (overrides config)")
	timeout := fs.Int("timeout", 0, "Per-request timeout in seconds (overrides config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `arena-dl - mirror an are.na channel's images to disk

Usage:
  arena-dl [flags] <channel-slug-or-url>

Examples:
  arena-dl sea-walls
  arena-dl https://www.are.na/someone/sea-walls
  arena-dl -out ~/arena -export csv sea-walls
  arena-dl -watch 30 sea-walls

Flags:
`)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	argv := fs.Args()
	if len(argv) != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one channel slug or URL\n")
		fs.Usage()
		os.Exit(1)
	}
	channelArg := argv[0]

	if *export != "" && *export != arena.FormatJSON && *export != arena.FormatCSV {
		fmt.Fprintf(os.Stderr, "Error: invalid -export value %q (use json or csv)\n", *export)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Explicit flags override config values.
	if *out != "" {
		cfg.OutputDir = *out
	}
	if *concurrent > 0 {
		cfg.Concurrent = *concurrent
	}
	if *timeout > 0 {
		cfg.Timeout = time.Duration(*timeout) * time.Second
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	httpCfg := arenahttp.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	client := arenahttp.New(httpCfg)
	defer client.Close()

	api := arena.NewClient(client)
	dl := arena.NewDownloader(client, arena.DownloadOptions{
		Concurrent: cfg.Concurrent,
		Force:      *force,
		DryRun:     *dryRun,
		OnProgress: printProgress,
	})
	syncer := arena.NewSyncer(api, dl, arena.SyncOptions{
		OutputDir:    cfg.OutputDir,
		ExportFormat: *export,
	})

	historyPath := filepath.Join(cfg.OutputDir, ".arena-dl-history.json")
	if history, err := storage.OpenHistory(historyPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run history unavailable: %v\n", err)
	} else {
		syncer.SetHistory(history)
		defer history.Close()
	}

	ctx := context.Background()

	if *watch <= 0 {
		os.Exit(runOnce(ctx, syncer, channelArg, *dryRun))
	}

	// Watch mode: run immediately, then on a fixed cadence. A trigger that
	// fires while a run is still in flight is dropped.
	interval := time.Duration(*watch) * time.Minute
	fmt.Fprintf(os.Stderr, "Watching %s every %v\n", channelArg, interval)

	if code := runOnce(ctx, syncer, channelArg, *dryRun); code != 0 {
		os.Exit(code)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if code := runOnce(ctx, syncer, channelArg, *dryRun); code != 0 {
			os.Exit(code)
		}
	}
}

// runOnce performs a single sync and reports it. Returns the process exit
// code: non-zero only for unrecoverable setup failures. Per-item failures
// leave the run successful.
func runOnce(ctx context.Context, syncer *arena.Syncer, channelArg string, dryRun bool) int {
	fmt.Fprintf(os.Stderr, "Syncing %s...\n", channelArg)

	result, err := syncer.Sync(ctx, channelArg)
	if err != nil {
		var exportErr *arena.ExportError
		switch {
		case errors.Is(err, arena.ErrSyncInProgress):
			fmt.Fprintf(os.Stderr, "Skipping: previous run still in progress\n")
			return 0
		case errors.Is(err, retry.ErrChannelNotFound):
			fmt.Fprintf(os.Stderr, "Error: %v\nCheck the channel slug or URL and try again.\n", err)
			return 1
		case errors.Is(err, retry.ErrInvalidURL):
			fmt.Fprintf(os.Stderr, "Error: %v\nPass a channel slug or a full are.na channel URL.\n", err)
			return 1
		case errors.As(err, &exportErr):
			// Downloads completed; only the manifest failed.
			arena.Report(os.Stdout, result)
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return 0
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\nCheck your connection and try again.\n", err)
			return 1
		}
	}

	arena.Report(os.Stdout, result)
	if result.Failed > 0 {
		fmt.Fprintf(os.Stderr, "%d failures logged; re-run the same command to retry them.\n", result.Failed)
	}
	if dryRun {
		fmt.Fprintf(os.Stderr, "Dry run: nothing was written to disk.\n")
	}
	return 0
}

// printProgress writes an incremental status line after each chunk.
func printProgress(p arena.Progress) {
	line := fmt.Sprintf("progress: %d/%d downloaded=%d skipped=%d failed=%d",
		p.Done, p.Total, p.Downloaded, p.Skipped, p.Failed)
	if tp := p.Throughput(); tp > 0 {
		line += fmt.Sprintf(" (%s/s)", humanBytes(tp))
	}
	fmt.Fprintln(os.Stderr, line)
}

// humanBytes formats a byte count with a binary unit suffix.
func humanBytes(n float64) string {
	units := []string{"B", "KiB", "MiB", "GiB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f %s", n, units[i])
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}
