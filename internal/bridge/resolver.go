package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-bravia/internal/bravia"
	"github.com/nerrad567/gray-logic-bravia/internal/favourites"
)

// defaultRefreshThrottle is the minimum interval between channel map
// refreshes. On-demand refreshes inside this window are silently skipped;
// a stale-but-present map is still useful and the television does not
// appreciate being hammered.
const defaultRefreshThrottle = 60 * time.Second

// ContentLister is the slice of the device client the resolver needs.
type ContentLister interface {
	GetContentList(ctx context.Context, source string) ([]bravia.ContentItem, error)
}

// Resolver maintains the mapping from normalized channel numbers to the
// television's tunable content URIs.
//
// The map is rebuilt wholesale on each refresh (no incremental merge) so
// entries removed from the source list cannot linger, and replaced as a
// single assignment so readers always see a complete map.
type Resolver struct {
	client   ContentLister
	source   string
	throttle time.Duration
	logger   Logger

	mu          sync.Mutex
	channels    map[string]string
	lastRefresh time.Time // zero until the first completed refresh
}

// NewResolver creates a resolver for one television's broadcast source.
func NewResolver(client ContentLister, source string, logger Logger) *Resolver {
	return &Resolver{
		client:   client,
		source:   source,
		throttle: defaultRefreshThrottle,
		channels: make(map[string]string),
		logger:   orNop(logger),
	}
}

// Refresh rebuilds the channel map from the television's content list.
//
// It is a successful no-op when called within the throttle window of the
// last completed refresh. An empty content list is treated as transient:
// it is logged and the existing map is left untouched, but still counts
// as a completed refresh for throttling purposes. A failed RPC call does
// not advance the throttle clock, so the next caller retries.
func (r *Resolver) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if !r.lastRefresh.IsZero() && time.Since(r.lastRefresh) < r.throttle {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	items, err := r.client.GetContentList(ctx, r.source)
	if err != nil {
		return fmt.Errorf("listing content for %s: %w", r.source, err)
	}

	if len(items) == 0 {
		r.logger.Warn("content list empty, keeping existing channel map",
			"source", r.source)
		r.mu.Lock()
		r.lastRefresh = time.Now()
		r.mu.Unlock()
		return nil
	}

	channels := make(map[string]string, len(items))
	for _, item := range items {
		number := item.ChannelNumber()
		if number == "" {
			continue
		}
		channels[number] = item.URI
	}

	r.mu.Lock()
	r.channels = channels
	r.lastRefresh = time.Now()
	r.mu.Unlock()

	r.logger.Debug("channel map refreshed",
		"source", r.source,
		"entries", len(channels),
	)
	return nil
}

// Resolve maps a channel number to its content URI.
//
// The input is normalized first ("007" resolves like "7"). A best-effort
// refresh runs before the lookup; refresh failures are swallowed because
// a stale map may still hold the answer. Returns ErrChannelNotFound if
// the number is absent from the current map.
func (r *Resolver) Resolve(ctx context.Context, number string) (string, error) {
	number = favourites.NormalizeNumber(number)

	if err := r.Refresh(ctx); err != nil {
		r.logger.Debug("channel map refresh failed, using existing map",
			"source", r.source,
			"error", err,
		)
	}

	r.mu.Lock()
	uri, ok := r.channels[number]
	r.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: %s in %s", ErrChannelNotFound, number, r.source)
	}
	return uri, nil
}

// LastRefresh returns when the channel map was last successfully rebuilt.
// The zero time means no refresh has completed yet.
func (r *Resolver) LastRefresh() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRefresh
}

// Size returns the number of entries in the current channel map.
func (r *Resolver) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
