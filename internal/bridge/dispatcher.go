package bridge

import (
	"sync"

	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/mqtt"
)

// Dispatcher routes command messages to the controller owning the
// addressed accessory. The bridge holds a single wildcard subscription
// for the whole fleet instead of one subscription per television.
type Dispatcher struct {
	logger Logger

	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewDispatcher creates an empty command dispatcher.
func NewDispatcher(logger Logger) *Dispatcher {
	return &Dispatcher{
		logger:      orNop(logger),
		controllers: make(map[string]*Controller),
	}
}

// Register adds a controller to the routing table. Register every
// started controller before calling Subscribe so no command arrives
// ahead of its handler.
func (d *Dispatcher) Register(c *Controller) {
	d.mu.Lock()
	d.controllers[c.ID()] = c
	d.mu.Unlock()
}

// Subscribe opens the wildcard command subscription on the bus.
func (d *Dispatcher) Subscribe(bus Bus, qos byte) error {
	return bus.Subscribe(mqtt.Topics{}.CommandSubscribe(), qos, d.dispatch)
}

// dispatch routes one command message by the accessory ID in its topic.
// Commands for accessories this bridge does not manage are logged and
// dropped; a misaddressed or leftover retained message must not fail the
// subscription.
func (d *Dispatcher) dispatch(topic string, payload []byte) error {
	id := mqtt.AccessoryIDFromTopic(topic)

	d.mu.RLock()
	c, ok := d.controllers[id]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("command for unknown accessory", "topic", topic)
		return nil
	}
	return c.handleCommand(topic, payload)
}
