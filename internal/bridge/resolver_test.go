package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-bravia/internal/bravia"
)

func testContentItems() []bravia.ContentItem {
	return []bravia.ContentItem{
		{URI: "tv:dvbt?trip=1", Title: "BBC One", DispNum: "1"},
		{URI: "tv:dvbt?trip=2", Title: "BBC Two", DispNum: "2"},
		{URI: "tv:dvbt?trip=7", Title: "7 Digital", DispNum: "007"},
	}
}

func TestResolverResolve(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	r := NewResolver(client, "tv:dvbt", nil)

	uri, err := r.Resolve(context.Background(), "2")
	if err != nil {
		t.Fatalf("Resolve(2) error = %v", err)
	}
	if uri != "tv:dvbt?trip=2" {
		t.Errorf("Resolve(2) = %q, want %q", uri, "tv:dvbt?trip=2")
	}
}

func TestResolverNormalizesNumber(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	r := NewResolver(client, "tv:dvbt", nil)

	// "007" in the content list and "07" in the request both normalize
	// to "7".
	uri, err := r.Resolve(context.Background(), "07")
	if err != nil {
		t.Fatalf("Resolve(07) error = %v", err)
	}
	if uri != "tv:dvbt?trip=7" {
		t.Errorf("Resolve(07) = %q, want %q", uri, "tv:dvbt?trip=7")
	}
}

func TestResolverUnknownChannel(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	r := NewResolver(client, "tv:dvbt", nil)

	_, err := r.Resolve(context.Background(), "999")
	if !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("Resolve(999) error = %v, want ErrChannelNotFound", err)
	}
}

func TestResolverThrottlesRefresh(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	r := NewResolver(client, "tv:dvbt", nil)

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), "1"); err != nil {
			t.Fatalf("Resolve #%d error = %v", i, err)
		}
	}

	if got := client.contentListCalls(); got != 1 {
		t.Errorf("content list calls = %d, want 1 (later resolves inside throttle window)", got)
	}
}

func TestResolverEmptyListKeepsMap(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	r := NewResolver(client, "tv:dvbt", nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := r.Size(); got != 3 {
		t.Fatalf("Size() after first refresh = %d, want 3", got)
	}

	// Force the next refresh past the throttle and have the television
	// return an empty list.
	client.mu.Lock()
	client.contentItems = nil
	client.mu.Unlock()
	r.mu.Lock()
	r.lastRefresh = time.Now().Add(-2 * defaultRefreshThrottle)
	r.mu.Unlock()

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() with empty list error = %v", err)
	}
	if got := r.Size(); got != 3 {
		t.Errorf("Size() after empty refresh = %d, want 3 (existing map kept)", got)
	}
	if r.LastRefresh().IsZero() || time.Since(r.LastRefresh()) > time.Second {
		t.Errorf("empty refresh should still advance the throttle clock")
	}
}

func TestResolverErrorDoesNotAdvanceThrottle(t *testing.T) {
	client := &fakeDeviceClient{contentErr: errors.New("connect refused")}
	r := NewResolver(client, "tv:dvbt", nil)

	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() with failing client = nil, want error")
	}
	if !r.LastRefresh().IsZero() {
		t.Error("failed refresh advanced the throttle clock")
	}

	// Next caller retries immediately.
	client.mu.Lock()
	client.contentErr = nil
	client.contentItems = testContentItems()
	client.mu.Unlock()

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() retry error = %v", err)
	}
	if got := client.contentListCalls(); got != 2 {
		t.Errorf("content list calls = %d, want 2", got)
	}
}

func TestResolverResolveSurvivesRefreshFailure(t *testing.T) {
	client := &fakeDeviceClient{contentItems: testContentItems()}
	r := NewResolver(client, "tv:dvbt", nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// Television goes away; a stale map still answers.
	client.mu.Lock()
	client.contentErr = errors.New("connect refused")
	client.mu.Unlock()
	r.mu.Lock()
	r.lastRefresh = time.Now().Add(-2 * defaultRefreshThrottle)
	r.mu.Unlock()

	uri, err := r.Resolve(context.Background(), "1")
	if err != nil {
		t.Fatalf("Resolve(1) with failing refresh error = %v", err)
	}
	if uri != "tv:dvbt?trip=1" {
		t.Errorf("Resolve(1) = %q, want %q", uri, "tv:dvbt?trip=1")
	}
}
