package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/mqtt"
)

// defaultHealthInterval is how often health status is published.
const defaultHealthInterval = 30 * time.Second

// HealthPublisher is the interface for publishing health messages.
type HealthPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// HealthReporter periodically publishes bridge health to the health topic
// so the core can distinguish a quiet bridge from a dead one.
type HealthReporter struct {
	bridgeID  string
	version   string
	startTime time.Time
	interval  time.Duration
	publisher HealthPublisher
	logger    Logger

	deviceCount   int
	deviceCountMu sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// BridgeID identifies this bridge instance in health messages.
	BridgeID string

	// Version is the bridge software version.
	Version string

	// Interval is how often to publish. Default: 30 seconds.
	Interval time.Duration

	// Publisher is the MQTT client for publishing messages.
	Publisher HealthPublisher

	// Logger is optional.
	Logger Logger
}

// NewHealthReporter creates a health reporter.
// Call Start to begin reporting and Stop to shut down.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultHealthInterval
	}

	return &HealthReporter{
		bridgeID:  cfg.BridgeID,
		version:   cfg.Version,
		startTime: time.Now(),
		interval:  interval,
		publisher: cfg.Publisher,
		logger:    orNop(cfg.Logger),
		done:      make(chan struct{}),
	}
}

// SetDeviceCount updates the managed device count included in reports.
func (h *HealthReporter) SetDeviceCount(count int) {
	h.deviceCountMu.Lock()
	h.deviceCount = count
	h.deviceCountMu.Unlock()
}

// Start begins periodic health reporting.
func (h *HealthReporter) Start() {
	h.wg.Add(1)
	go h.reportLoop()
}

// Stop gracefully stops health reporting and publishes a final
// "stopping" status. Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		// Best-effort final status; nothing to do if it fails.
		h.publish("stopping")
	})
}

// PublishNow publishes a health report immediately.
// Useful after a significant event such as startup completing.
func (h *HealthReporter) PublishNow() {
	h.publish("healthy")
}

// reportLoop publishes health at the configured interval.
func (h *HealthReporter) reportLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.publish("healthy")
		}
	}
}

// publish builds and sends one health message.
func (h *HealthReporter) publish(status string) {
	if h.publisher == nil || !h.publisher.IsConnected() {
		return
	}

	h.deviceCountMu.RLock()
	devices := h.deviceCount
	h.deviceCountMu.RUnlock()

	msg := HealthMessage{
		Status:    status,
		BridgeID:  h.bridgeID,
		Version:   h.version,
		UptimeS:   int64(time.Since(h.startTime).Seconds()),
		Devices:   devices,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding health message", "error", err)
		return
	}

	if err := h.publisher.Publish(mqtt.Topics{}.Health(), payload, 1, true); err != nil {
		h.logger.Debug("health publish failed", "error", err)
	}
}
