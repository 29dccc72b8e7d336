// Package health runs a periodic probe against the bank through its public
// surface only, and logs heap statistics alongside.
package health

import (
	"context"
	"errors"
	"log"
	"runtime"
	"time"

	"github.com/plundell/stabelo-elevator/internal/bank"
)

// ErrTimeout is reported when a probe does not answer within the deadline.
var ErrTimeout = errors.New("health probe timed out")

// Monitor probes the bank on a fixed interval.
type Monitor struct {
	bank     *bank.Bank
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
}

// NewMonitor creates a monitor.
func NewMonitor(b *bank.Bank, interval, timeout time.Duration, logger *log.Logger) *Monitor {
	return &Monitor{bank: b, interval: interval, timeout: timeout, logger: logger}
}

// Run probes until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Println("Health monitor shutting down.")
			return
		case <-ticker.C:
			if err := m.probe(ctx); err != nil {
				m.logger.Printf("health: %v", err)
			}
			m.logHeap()
		}
	}
}

// probe asks the bank whether every elevator is running, bounded by the
// configured timeout.
func (m *Monitor) probe(ctx context.Context) error {
	done := make(chan bool, 1)
	go func() {
		done <- m.bank.IsRunning()
	}()

	select {
	case running := <-done:
		if !running {
			m.logger.Printf("health: not all elevators are running")
		}
		return nil
	case <-time.After(m.timeout):
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) logHeap() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.logger.Printf("health: heap %d KiB, goroutines %d", ms.HeapAlloc/1024, runtime.NumGoroutine())
}
