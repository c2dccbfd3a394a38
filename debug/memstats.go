package debug

// Memory snapshot logging around the optimizer call, enabled with --debug.
// Logs the process working set (RSS) next to Go heap stats: GrabCut allocates
// its models on the C heap, so the two are needed to tell native from Go growth.

import (
	"log/slog"
	"runtime"
	"sync"
)

var rssErrOnce sync.Once

// LogMemStats logs one memory snapshot tagged with phase. attrs are appended
// to the record (for example the run id). RSS query failures are logged once.
func LogMemStats(logger *slog.Logger, phase string, attrs ...any) {
	if logger == nil {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rss, err := processRSS()
	if err != nil {
		rssErrOnce.Do(func() {
			logger.Warn("memlog: rss unavailable", slog.String("err", err.Error()))
		})
	}
	args := append([]any{
		slog.String("phase", phase),
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Uint64("heap_inuse", ms.HeapInuse),
		slog.Uint64("heap_sys", ms.HeapSys),
		slog.Uint64("rss", rss),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	}, attrs...)
	logger.Info("memstats", args...)
}
