package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-bravia/internal/accessory"
	"github.com/nerrad567/gray-logic-bravia/internal/bravia"
	"github.com/nerrad567/gray-logic-bravia/internal/favourites"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/mqtt"
)

// Controller timing constants.
const (
	// initialRefreshDelay postpones the first channel map refresh after
	// start; the television is often still initialising its services.
	initialRefreshDelay = 2 * time.Second

	// periodicRefreshInterval is the unconditional channel map refresh
	// cadence, catching retunes and source list changes.
	periodicRefreshInterval = 6 * time.Hour
)

// DeviceClient is the interface the controller needs from the protocol
// client. Satisfied by *bravia.Client; faked in tests.
type DeviceClient interface {
	GetPowerStatus(ctx context.Context) (bool, error)
	SetPowerStatus(ctx context.Context, on bool) error
	GetContentList(ctx context.Context, source string) ([]bravia.ContentItem, error)
	SetPlayContent(ctx context.Context, uri string) error
}

// Bus is the interface for the MQTT operations the bridge uses. The
// controller publishes through it; the Dispatcher holds the command
// subscription.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Controller exposes one television to the automation hub: a power
// switch, a current-selection identifier, and one tuner input per
// favourite. It owns the device's runtime state; only the power monitor
// (power) and the public SetPower/SelectChannel operations mutate it.
type Controller struct {
	acc    *accessory.Accessory
	repo   accessory.Repository
	client DeviceClient
	bus    Bus
	qos    byte
	logger Logger

	resolver *Resolver
	monitor  *Monitor

	// Runtime state, guarded by mu.
	mu               sync.Mutex
	powerOn          bool
	activeIdentifier int
	table            map[int]string // identifier -> channel number

	// Lifecycle.
	runCtx         context.Context
	runCancel      context.CancelFunc
	initialRefresh *time.Timer
	done           chan struct{}
	wg             sync.WaitGroup
	startMu        sync.Mutex
	started        bool
	stopOnce       sync.Once
}

// ControllerOptions holds the dependencies for one controller.
type ControllerOptions struct {
	// Accessory is the directory entry for this television. The
	// controller takes ownership of the pointer.
	Accessory *accessory.Accessory

	// Repository persists accessory and state updates.
	Repository accessory.Repository

	// Client is the television's protocol client.
	Client DeviceClient

	// Bus is the MQTT connection; may be nil in tests, in which case no
	// publishes or subscriptions happen.
	Bus Bus

	// QoS is the MQTT QoS level for state publishes.
	QoS byte

	// PollInterval is the power poll cadence.
	PollInterval time.Duration

	// Logger is optional.
	Logger Logger
}

// NewController wires a controller from its options. Start must be
// called before the controller does anything.
func NewController(opts ControllerOptions) *Controller {
	logger := orNop(opts.Logger)

	c := &Controller{
		acc:              opts.Accessory,
		repo:             opts.Repository,
		client:           opts.Client,
		bus:              opts.Bus,
		qos:              opts.QoS,
		logger:           logger,
		table:            identifierTable(opts.Accessory.Inputs),
		powerOn:          opts.Accessory.PowerOn,
		activeIdentifier: opts.Accessory.ActiveIdentifier,
		done:             make(chan struct{}),
	}

	c.resolver = NewResolver(opts.Client, opts.Accessory.Source, logger)
	c.monitor = NewMonitor(opts.Client, opts.PollInterval, c.handlePowerChange, logger)

	return c
}

// ID returns the accessory identity this controller drives.
func (c *Controller) ID() string {
	return c.acc.ID
}

// Name returns the television's display name.
func (c *Controller) Name() string {
	return c.acc.Name
}

// RebuildInputs rebuilds the exposed input list from a favourites list.
//
// Entries no longer present are removed, surviving entries are updated in
// place (name may change, identifier does not), and the result is
// persisted to the directory. Safe to call while running.
func (c *Controller) RebuildInputs(ctx context.Context, favs []favourites.Favourite) error {
	desired := BuildInputs(favs)

	added, removed, updated := DiffInputs(c.acc.Inputs, desired)
	if len(added)+len(removed)+len(updated) > 0 {
		c.logger.Info("input list changed",
			"device", c.acc.Name,
			"added", len(added),
			"removed", len(removed),
			"updated", len(updated),
		)
	}

	c.mu.Lock()
	c.acc.Inputs = desired
	c.table = identifierTable(desired)
	c.mu.Unlock()

	if err := c.repo.Upsert(ctx, c.acc); err != nil {
		return fmt.Errorf("persisting inputs: %w", err)
	}
	return nil
}

// Start begins the controller's timer-driven tasks: the power poll loop,
// a deferred initial channel map refresh, and the periodic unconditional
// refresh. Command messages arrive through the Dispatcher's wildcard
// subscription, so register the controller there after starting it.
func (c *Controller) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}

	c.runCtx, c.runCancel = context.WithCancel(ctx)

	c.monitor.Start(c.runCtx)

	// The television is likely still starting its control services; give
	// it a moment before the first content list call.
	c.initialRefresh = time.AfterFunc(initialRefreshDelay, func() {
		if err := c.resolver.Refresh(c.runCtx); err != nil {
			c.logger.Debug("initial channel map refresh failed",
				"device", c.acc.Name,
				"error", err,
			)
		}
	})

	c.wg.Add(1)
	go c.refreshLoop()

	c.publishState()
	c.started = true

	c.logger.Info("controller started",
		"device", c.acc.Name,
		"inputs", len(c.acc.Inputs),
	)
	return nil
}

// Stop cancels all outstanding timers and waits for in-flight work.
// Idempotent, and safe to call even if Start was never called.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		if c.runCancel != nil {
			c.runCancel()
		}
		if c.initialRefresh != nil {
			c.initialRefresh.Stop()
		}
		c.monitor.Stop()
		c.wg.Wait()

		c.logger.Info("controller stopped", "device", c.acc.Name)
	})
}

// refreshLoop runs the unconditional periodic channel map refresh.
func (c *Controller) refreshLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(periodicRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.resolver.Refresh(c.runCtx); err != nil {
				c.logger.Debug("scheduled channel map refresh failed",
					"device", c.acc.Name,
					"error", err,
				)
			}
		}
	}
}

// SetPower turns the television on or off.
//
// On RPC success the local state is updated and republished. On failure
// the error is surfaced to the caller - presentation is the caller's
// problem - and no retry happens here; the power monitor will reconcile
// actual state on its next tick anyway.
func (c *Controller) SetPower(ctx context.Context, on bool) error {
	if err := c.client.SetPowerStatus(ctx, on); err != nil {
		return fmt.Errorf("setting power for %s: %w", c.acc.Name, err)
	}

	c.mu.Lock()
	c.powerOn = on
	c.mu.Unlock()

	c.publishState()
	c.persistState()
	return nil
}

// SelectChannel tunes the television to the favourite with the given
// identifier.
//
// The requested identifier is recorded and republished immediately
// (optimistic). An identifier with no table entry is a silent no-op: the
// hub may select inputs this bridge never offered a broadcast mapping
// for. A channel missing from the source list is logged and swallowed -
// the likely cause is a misconfigured source, which tuning errors at the
// hub would not help diagnose.
func (c *Controller) SelectChannel(ctx context.Context, identifier int) error {
	c.mu.Lock()
	c.activeIdentifier = identifier
	number, ok := c.table[identifier]
	c.mu.Unlock()

	c.publishState()
	c.persistState()

	if !ok {
		return nil
	}

	uri, err := c.resolver.Resolve(ctx, number)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			c.logger.Warn("favourite channel missing from source list",
				"device", c.acc.Name,
				"channel", number,
				"source", c.acc.Source,
			)
			return nil
		}
		return err
	}

	if err := c.client.SetPlayContent(ctx, uri); err != nil {
		return fmt.Errorf("tuning %s to channel %s: %w", c.acc.Name, number, err)
	}
	return nil
}

// handlePowerChange receives change-only notifications from the monitor.
func (c *Controller) handlePowerChange(on bool) {
	c.mu.Lock()
	c.powerOn = on
	c.mu.Unlock()

	c.logger.Info("power state changed", "device", c.acc.Name, "on", on)
	c.publishState()
	c.persistState()
}

// handleCommand parses and dispatches one command topic message.
func (c *Controller) handleCommand(topic string, payload []byte) error {
	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decoding command on %s: %w", topic, err)
	}

	if cmd.Power != nil {
		if err := c.SetPower(c.runCtx, *cmd.Power); err != nil {
			c.logger.Warn("power command failed",
				"device", c.acc.Name,
				"error", err,
			)
		}
	}

	if cmd.Identifier != nil {
		if err := c.SelectChannel(c.runCtx, *cmd.Identifier); err != nil {
			c.logger.Warn("select command failed",
				"device", c.acc.Name,
				"error", err,
			)
		}
	}

	return nil
}

// publishState publishes the retained state snapshot for this television.
// Publish failures are logged at debug level; the retained message will
// be corrected by the next successful publish.
func (c *Controller) publishState() {
	if c.bus == nil {
		return
	}

	c.mu.Lock()
	msg := StateMessage{
		Power:            c.powerOn,
		ActiveIdentifier: c.activeIdentifier,
		Inputs:           make([]StateInput, 0, len(c.acc.Inputs)),
		UpdatedAt:        time.Now().UTC(),
	}
	for _, in := range c.acc.Inputs {
		msg.Inputs = append(msg.Inputs, StateInput{Identifier: in.Identifier, Name: in.Name})
	}
	c.mu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("encoding state message", "device", c.acc.Name, "error", err)
		return
	}

	topic := mqtt.Topics{}.State(c.acc.ID)
	if err := c.bus.Publish(topic, payload, c.qos, true); err != nil {
		c.logger.Debug("state publish failed", "device", c.acc.Name, "error", err)
	}
}

// persistState writes the cached runtime state back to the directory.
func (c *Controller) persistState() {
	c.mu.Lock()
	power, identifier := c.powerOn, c.activeIdentifier
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.repo.UpdateState(ctx, c.acc.ID, power, identifier); err != nil {
		c.logger.Debug("persisting state failed", "device", c.acc.Name, "error", err)
	}
}

// Status is a read-only snapshot of one controller for the status API.
type Status struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Power            bool      `json:"power"`
	ActiveIdentifier int       `json:"active_identifier"`
	Inputs           int       `json:"inputs"`
	ChannelMapSize   int       `json:"channel_map_size"`
	LastMapRefresh   time.Time `json:"last_map_refresh"`
}

// Snapshot returns the controller's current status.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		ID:               c.acc.ID,
		Name:             c.acc.Name,
		Address:          c.acc.Address,
		Power:            c.powerOn,
		ActiveIdentifier: c.activeIdentifier,
		Inputs:           len(c.acc.Inputs),
		ChannelMapSize:   c.resolver.Size(),
		LastMapRefresh:   c.resolver.LastRefresh(),
	}
}
