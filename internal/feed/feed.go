// Package feed replaces the original implicit store listeners with an
// explicit publish/subscribe surface: writers call Notify after every
// successful mutation, the hub re-reads the full collection and pushes
// it to every subscriber. Subscribers always see whole snapshots,
// newest report first; there is no partial-diff protocol.
package feed

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"waste-report-service/internal/model"
)

const changeChannel = "waste_reports:changed"

// Loader produces the current full collection.
type Loader func(ctx context.Context) ([]model.Report, error)

type Hub struct {
	loader Loader
	rdb    *redis.Client
	log    zerolog.Logger

	mu   sync.Mutex
	subs map[chan []model.Report]struct{}
}

// New builds a hub. rdb may be nil; without redis, change events stay
// local to this process.
func New(loader Loader, rdb *redis.Client, log zerolog.Logger) *Hub {
	return &Hub{
		loader: loader,
		rdb:    rdb,
		log:    log,
		subs:   make(map[chan []model.Report]struct{}),
	}
}

// Subscribe registers a live subscriber. The current snapshot is
// delivered first, then one snapshot per collection change. The channel
// is closed when ctx is done.
func (h *Hub) Subscribe(ctx context.Context) <-chan []model.Report {
	ch := make(chan []model.Report, 1)

	// Load before registering so the initial send can never contend
	// with a concurrent broadcast.
	if snapshot, err := h.loader(ctx); err == nil {
		ch <- snapshot
	} else {
		h.log.Error().Err(err).Msg("initial snapshot load failed")
	}

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Notify signals that the collection changed. With redis configured the
// event fans out to every instance; otherwise the local subscribers are
// refreshed directly.
func (h *Hub) Notify(ctx context.Context) {
	if h.rdb != nil {
		if err := h.rdb.Publish(ctx, changeChannel, "changed").Err(); err != nil {
			h.log.Warn().Err(err).Msg("change publish failed, falling back to local broadcast")
			h.broadcast(ctx)
		}
		return
	}
	h.broadcast(ctx)
}

// Run consumes cross-instance change events until ctx is canceled. No-op
// without redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	sub := h.rdb.Subscribe(ctx, changeChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
			h.broadcast(ctx)
		}
	}
}

func (h *Hub) broadcast(ctx context.Context) {
	snapshot, err := h.loader(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("snapshot reload failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		// Drop the stale pending snapshot so a slow subscriber only
		// ever sees the latest state.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
