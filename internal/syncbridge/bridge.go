// Package syncbridge mirrors playlist coordinator state to a shared
// record over redis pub/sub so a second viewer or session observes the
// same playback position.
//
// Consistency is last-writer-wins with no field-level merge: inbound
// snapshots overwrite local state wholesale. That is acceptable because
// there is a single logical writer per active session in the intended
// usage; it is a documented limitation, not a guarantee.
package syncbridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
	"github.com/holosmedia/holos/internal/playlist"
	"github.com/redis/go-redis/v9"
)

const syncChannel = "holos:playlist"

// Bridge publishes coordinator snapshots to redis while a broadcast is
// active and applies inbound remote snapshots back into the coordinator.
// It also fans snapshots out to local websocket observers.
type Bridge struct {
	rdb    *redis.Client
	coord  *playlist.Coordinator
	origin string
	cancel context.CancelFunc

	mu        sync.RWMutex
	observers map[chan []byte]struct{}
	running   bool
}

// New creates a sync bridge. The coordinator is wired in afterwards via
// SetCoordinator because the coordinator also takes the bridge as its
// mirror.
func New(rdb *redis.Client) *Bridge {
	return &Bridge{
		rdb:       rdb,
		origin:    uuid.NewString(),
		observers: make(map[chan []byte]struct{}),
	}
}

// SetCoordinator attaches the coordinator that inbound snapshots are
// applied to
func (b *Bridge) SetCoordinator(coord *playlist.Coordinator) {
	b.coord = coord
}

// Publish mirrors a snapshot to remote observers. The coordinator only
// calls this while the playlist is active.
func (b *Bridge) Publish(ctx context.Context, snap *models.PlaylistSnapshot) error {
	out := *snap
	out.Origin = b.origin

	payload, err := json.Marshal(&out)
	if err != nil {
		return err
	}

	b.fanOut(payload)

	if err := b.rdb.Publish(ctx, syncChannel, payload).Err(); err != nil {
		return err
	}
	return nil
}

// Start begins consuming inbound snapshots. It runs until Stop is called.
func (b *Bridge) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	go b.runSubscriber(ctx)

	logger.Log.Info().
		Str("channel", syncChannel).
		Str("origin", b.origin).
		Msg("Sync bridge started")
}

// Stop tears down the subscriber and all observer channels
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	b.running = false
	b.cancel()

	for ch := range b.observers {
		close(ch)
		delete(b.observers, ch)
	}

	logger.Log.Info().Msg("Sync bridge stopped")
}

// Observe registers a local observer channel receiving raw snapshot
// payloads. The caller must drain it and call Unobserve when done.
func (b *Bridge) Observe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers[ch] = struct{}{}
	return ch
}

// Unobserve removes an observer channel
func (b *Bridge) Unobserve(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.observers[ch]; ok {
		delete(b.observers, ch)
		close(ch)
	}
}

func (b *Bridge) runSubscriber(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, syncChannel)
	defer sub.Close() // nolint:errcheck

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage(ctx, []byte(msg.Payload))
		}
	}
}

// handleMessage applies one inbound snapshot. Own publications are
// skipped by origin ID; snapshots only apply while the local session is
// active (the bridge is disengaged otherwise).
func (b *Bridge) handleMessage(ctx context.Context, payload []byte) {
	var snap models.PlaylistSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		logger.Log.Warn().Err(err).Msg("Discarding malformed sync snapshot")
		return
	}
	if snap.Origin == b.origin {
		return
	}
	if b.coord == nil || !b.coord.IsActive() {
		return
	}

	logger.Log.Debug().
		Str("origin", snap.Origin).
		Int("item_count", len(snap.Items)).
		Int("current_index", snap.CurrentIndex).
		Msg("Applying remote playlist snapshot")

	b.coord.ApplySnapshot(ctx, &snap)
	b.fanOut(payload)
}

// fanOut delivers a payload to local observers, dropping it for any
// observer whose buffer is full
func (b *Bridge) fanOut(payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.observers {
		select {
		case ch <- payload:
		default:
		}
	}
}
