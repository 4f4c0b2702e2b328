// Package arenadl provides a library for mirroring are.na channel images to
// local storage.
//
// The entry point is the arena package's Syncer, which turns a channel's
// paginated remote listing into a set of local download jobs and executes
// them under bounded concurrency with skip-existing and re-run-to-retry
// semantics:
//
//	hc := arenahttp.New(nil)
//	api := arena.NewClient(hc)
//	dl := arena.NewDownloader(hc, arena.DownloadOptions{Concurrent: 5})
//	syncer := arena.NewSyncer(api, dl, arena.SyncOptions{OutputDir: "out"})
//
//	result, err := syncer.Sync(ctx, "https://www.are.na/someone/sea-walls")
//
// Per-item failures never fail a run: they are counted, written to a
// per-channel failure log, and resolved by re-running the same command, which
// skips everything that already landed on disk.
//
// Supporting packages: http (retrying, rate-limited client with browser-like
// headers), retry (backoff and permanent-error sentinels), config (file, env,
// and default settings), and storage (atomic writes, file locks, run
// history).
package arenadl
