// Package monitor periodically logs the process's own resource usage.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Monitor samples process CPU and runtime memory on a fixed interval.
type Monitor struct {
	interval time.Duration
	wg       sync.WaitGroup
	proc     *process.Process
}

// New creates a monitor with the given sampling interval. Returns nil
// when the process handle cannot be obtained.
func New(interval time.Duration) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		slog.Error("failed to get process handle", "error", err)
		return nil
	}

	return &Monitor{
		interval: interval,
		proc:     proc,
	}
}

// Run starts the sampling loop in a background goroutine until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.sample()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sample()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) sample() {
	cpu, err := m.proc.CPUPercent()
	if err != nil {
		slog.Warn("failed to get cpu percent", "error", err)
		cpu = 0
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	slog.Info("resource usage",
		"cpu", fmt.Sprintf("%.2f%%", cpu),
		"goroutines", runtime.NumGoroutine(),
		"heap_alloc_mb", fmt.Sprintf("%.2f", float64(ms.HeapAlloc)/(1024*1024)),
		"gc_runs", ms.NumGC,
	)
}
