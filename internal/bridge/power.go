package bridge

import (
	"context"
	"sync"
	"time"
)

// PowerStatusGetter is the slice of the device client the monitor needs.
type PowerStatusGetter interface {
	GetPowerStatus(ctx context.Context) (bool, error)
}

// Monitor polls one television's power state and reports changes.
//
// The loop reschedules itself exactly once per tick whether the poll
// succeeded or failed: failure must not stop polling and success must
// not double-schedule. Poll failures are assumed transient - the state
// is never flipped to "off" defensively.
type Monitor struct {
	client   PowerStatusGetter
	interval time.Duration
	onChange func(on bool)
	logger   Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewMonitor creates a power monitor.
//
// onChange is invoked from the poll goroutine whenever the observed state
// differs from the last known one; the first successful poll always
// counts as a change because the prior state is unknown.
func NewMonitor(client PowerStatusGetter, interval time.Duration, onChange func(on bool), logger Logger) *Monitor {
	return &Monitor{
		client:   client,
		interval: interval,
		onChange: onChange,
		logger:   orNop(logger),
		done:     make(chan struct{}),
	}
}

// Start begins polling. Call Stop to shut down.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.pollLoop(ctx)
}

// Stop terminates the poll loop and waits for it to finish.
// An in-flight poll completes its RPC call but will not reschedule.
// Safe to call multiple times.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}

// pollLoop runs until shutdown, polling once per interval.
func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	var last *bool

	for {
		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		on, err := m.client.GetPowerStatus(ctx)
		if err != nil {
			// Transient by assumption: keep the last known state.
			m.logger.Debug("power poll failed", "error", err)
		} else if last == nil || *last != on {
			state := on
			last = &state
			m.onChange(on)
		}

		// The poll may have been slow; if shutdown was requested while
		// the RPC was in flight, do not reschedule.
		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		default:
		}
		timer.Reset(m.interval)
	}
}
