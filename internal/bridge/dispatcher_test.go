package bridge

import (
	"context"
	"testing"

	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/mqtt"
)

func newDispatchedController(t *testing.T, client *fakeDeviceClient, bus *fakeBus) (*Controller, mqtt.MessageHandler) {
	t.Helper()
	c, _ := newTestController(t, client, bus)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(c.Stop)

	d := NewDispatcher(nil)
	d.Register(c)
	if err := d.Subscribe(bus, 1); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	handler := bus.handlerFor(mqtt.Topics{}.CommandSubscribe())
	if handler == nil {
		t.Fatal("no handler on the wildcard command topic")
	}
	return c, handler
}

func TestDispatcherRoutesCommands(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	bus := newFakeBus()
	c, handler := newDispatchedController(t, client, bus)

	topic := mqtt.Topics{}.Command(c.ID())

	if err := handler(topic, []byte(`{"power":true}`)); err != nil {
		t.Fatalf("power command error = %v", err)
	}
	if len(client.setPowerCalls) != 1 || !client.setPowerCalls[0] {
		t.Errorf("setPowerCalls = %v, want [true]", client.setPowerCalls)
	}

	if err := handler(topic, []byte(`{"identifier":1}`)); err != nil {
		t.Fatalf("select command error = %v", err)
	}
	if got := client.playedURIs(); len(got) != 1 || got[0] != "tv:dvbt?trip=1" {
		t.Errorf("played URIs = %v, want [tv:dvbt?trip=1]", got)
	}

	if err := handler(topic, []byte(`not json`)); err == nil {
		t.Error("malformed command payload accepted, want error")
	}
}

func TestDispatcherDropsUnknownAccessory(t *testing.T) {
	client := &fakeDeviceClient{}
	bus := newFakeBus()
	_, handler := newDispatchedController(t, client, bus)

	// A command for an accessory this bridge does not manage is dropped,
	// not an error: retained strays must not fail the subscription.
	topic := mqtt.Topics{}.Command("some-other-bridge-tv")
	if err := handler(topic, []byte(`{"power":true}`)); err != nil {
		t.Fatalf("unknown accessory command error = %v, want nil", err)
	}
	if len(client.setPowerCalls) != 0 {
		t.Errorf("setPowerCalls = %v, want none", client.setPowerCalls)
	}
}
