package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// notifyRecorder collects change notifications from a Monitor.
type notifyRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (n *notifyRecorder) record(on bool) {
	n.mu.Lock()
	n.states = append(n.states, on)
	n.mu.Unlock()
}

func (n *notifyRecorder) recorded() []bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]bool(nil), n.states...)
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMonitorNotifiesOnlyOnChange(t *testing.T) {
	client := &fakeDeviceClient{powerOn: true}
	rec := &notifyRecorder{}
	m := NewMonitor(client, 5*time.Millisecond, rec.record, nil)

	m.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return client.powerStatusCalls() >= 4 })
	m.Stop()

	if got := rec.recorded(); len(got) != 1 || !got[0] {
		t.Errorf("notifications = %v, want exactly one true (repeat polls are not changes)", got)
	}
}

func TestMonitorDetectsTransition(t *testing.T) {
	client := &fakeDeviceClient{powerOn: true}
	rec := &notifyRecorder{}
	m := NewMonitor(client, 5*time.Millisecond, rec.record, nil)

	m.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return len(rec.recorded()) >= 1 })

	client.mu.Lock()
	client.powerOn = false
	client.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return len(rec.recorded()) >= 2 })
	m.Stop()

	got := rec.recorded()
	if len(got) < 2 || got[0] != true || got[1] != false {
		t.Errorf("notifications = %v, want [true false ...]", got)
	}
}

func TestMonitorKeepsStateAcrossPollFailures(t *testing.T) {
	client := &fakeDeviceClient{powerOn: true}
	rec := &notifyRecorder{}
	m := NewMonitor(client, 5*time.Millisecond, rec.record, nil)

	m.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return len(rec.recorded()) >= 1 })

	// Polls start failing; the last known state must not flip and no
	// notifications should fire.
	client.mu.Lock()
	client.powerErr = errors.New("connect refused")
	failedAt := client.powerCalls
	client.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return client.powerStatusCalls() >= failedAt+3 })

	// Recovery with the same state is not a change either.
	client.mu.Lock()
	client.powerErr = nil
	recoveredAt := client.powerCalls
	client.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return client.powerStatusCalls() >= recoveredAt+2 })
	m.Stop()

	if got := rec.recorded(); len(got) != 1 {
		t.Errorf("notifications = %v, want exactly one (failures and same-state recovery are silent)", got)
	}
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	client := &fakeDeviceClient{}
	m := NewMonitor(client, time.Hour, func(bool) {}, nil)

	m.Start(context.Background())
	m.Stop()
	m.Stop()
}

func TestMonitorStopsOnContextCancel(t *testing.T) {
	client := &fakeDeviceClient{powerOn: true}
	m := NewMonitor(client, 5*time.Millisecond, func(bool) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	waitFor(t, 2*time.Second, func() bool { return client.powerStatusCalls() >= 1 })
	cancel()

	// Stop must return even though done was never closed by it first.
	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after context cancel")
	}
}
