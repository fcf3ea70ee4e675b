package bridge

import (
	"context"
	"sync"

	"github.com/nerrad567/gray-logic-bravia/internal/accessory"
	"github.com/nerrad567/gray-logic-bravia/internal/bravia"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/mqtt"
)

// fakeDeviceClient implements DeviceClient with canned responses and call
// recording.
type fakeDeviceClient struct {
	mu sync.Mutex

	powerOn    bool
	powerErr   error
	powerCalls int

	setPowerErr   error
	setPowerCalls []bool

	contentItems []bravia.ContentItem
	contentErr   error
	contentCalls int

	playErr   error
	playCalls []string
}

func (f *fakeDeviceClient) GetPowerStatus(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.powerCalls++
	if f.powerErr != nil {
		return false, f.powerErr
	}
	return f.powerOn, nil
}

func (f *fakeDeviceClient) SetPowerStatus(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setPowerCalls = append(f.setPowerCalls, on)
	return f.setPowerErr
}

func (f *fakeDeviceClient) GetContentList(_ context.Context, _ string) ([]bravia.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentCalls++
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return f.contentItems, nil
}

func (f *fakeDeviceClient) SetPlayContent(_ context.Context, uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls = append(f.playCalls, uri)
	return f.playErr
}

func (f *fakeDeviceClient) playedURIs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.playCalls...)
}

func (f *fakeDeviceClient) contentListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contentCalls
}

func (f *fakeDeviceClient) powerStatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.powerCalls
}

// fakeRepo is an in-memory accessory.Repository.
type fakeRepo struct {
	mu           sync.Mutex
	accs         map[string]accessory.Accessory
	upserts      int
	stateUpdates int
	removeCalls  int
	removedIDs   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accs: make(map[string]accessory.Accessory)}
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*accessory.Accessory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accs[id]
	if !ok {
		return nil, accessory.ErrNotFound
	}
	copied := acc
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context) ([]accessory.Accessory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]accessory.Accessory, 0, len(f.accs))
	for _, acc := range f.accs {
		out = append(out, acc)
	}
	return out, nil
}

func (f *fakeRepo) Upsert(_ context.Context, acc *accessory.Accessory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.accs[acc.ID] = *acc
	return nil
}

func (f *fakeRepo) UpdateState(_ context.Context, id string, powerOn bool, activeIdentifier int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accs[id]
	if !ok {
		return accessory.ErrNotFound
	}
	f.stateUpdates++
	acc.PowerOn = powerOn
	acc.ActiveIdentifier = activeIdentifier
	f.accs[id] = acc
	return nil
}

func (f *fakeRepo) RemoveBatch(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	for _, id := range ids {
		delete(f.accs, id)
		f.removedIDs = append(f.removedIDs, id)
	}
	return nil
}

// fakeBus records publishes and subscriptions.
type fakeBus struct {
	mu        sync.Mutex
	published []publishedMessage
	handlers  map[string]mqtt.MessageHandler
}

type publishedMessage struct {
	topic    string
	payload  []byte
	retained bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeBus) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeBus) messages() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedMessage(nil), f.published...)
}

func (f *fakeBus) handlerFor(topic string) mqtt.MessageHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[topic]
}
