package thread

import (
	"context"
	"sync"
	"sync/atomic"

	"tangled.org/corvid.social/corvid/internal/metrics"

	"github.com/nbd-wtf/go-nostr"
	"github.com/rs/zerolog/log"
)

// StreamOpener opens a live subscription for documents that might reply to
// the given target. The channel closes when the subscription ends.
type StreamOpener interface {
	OpenReplyStream(ctx context.Context, target Target) (<-chan *nostr.Event, error)
}

// Watcher owns a live reply subscription for one displayed target. Incoming
// candidates are tested against the target's reference rules; accepted ones
// are prepended to the visible set, most recent first. A Watcher must be
// stopped when the displayed target changes or the view goes away.
type Watcher struct {
	opener StreamOpener
	target Target

	mu       sync.RWMutex
	replies  []*nostr.Event
	seen     map[string]struct{}
	subs     map[chan *nostr.Event]struct{}

	// Stats
	candidates atomic.Int64
	accepted   atomic.Int64

	// Control
	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for the given target. Call Start to begin
// consuming and Stop to release the subscription.
func NewWatcher(opener StreamOpener, target Target) *Watcher {
	return &Watcher{
		opener: opener,
		target: target,
		seen:   make(map[string]struct{}),
		subs:   make(map[chan *nostr.Event]struct{}),
		stopCh: make(chan struct{}),
	}
}

// Start begins consuming candidates in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop ends the subscription and waits for the consume loop to exit.
// Calling it again is a no-op.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	w.wg.Wait()
}

// Seed records replies already known before the live stream opened, so
// re-observing them on the stream is a no-op. Order is preserved.
func (w *Watcher) Seed(events []*nostr.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ev := range events {
		if _, ok := w.seen[ev.ID]; ok {
			continue
		}
		w.seen[ev.ID] = struct{}{}
		w.replies = append(w.replies, ev)
	}
}

// Replies returns the current visible reply set, most recent first.
func (w *Watcher) Replies() []*nostr.Event {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*nostr.Event, len(w.replies))
	copy(out, w.replies)
	return out
}

// Subscribe returns a channel receiving each newly accepted reply. The
// returned cancel func must be called when the subscriber goes away; it
// unregisters the channel but never closes it, so a fan-out send racing
// the cancel lands in the buffer instead of panicking.
func (w *Watcher) Subscribe() (<-chan *nostr.Event, func()) {
	ch := make(chan *nostr.Event, 16)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		delete(w.subs, ch)
		w.mu.Unlock()
	}
	return ch, cancel
}

// IsRunning reports whether the consume loop currently holds an open stream.
func (w *Watcher) IsRunning() bool {
	return w.running.Load()
}

// Stats returns candidate and accepted counters.
func (w *Watcher) Stats() (candidates, accepted int64) {
	return w.candidates.Load(), w.accepted.Load()
}

func (w *Watcher) run(ctx context.Context) {
	events, err := w.opener.OpenReplyStream(ctx, w.target)
	if err != nil {
		log.Warn().Err(err).
			Str("event_id", w.target.EventID).
			Str("address", w.target.Address).
			Msg("thread: failed to open reply stream")
		return
	}

	w.running.Store(true)
	metrics.ReplyStreamsOpen.Inc()
	defer func() {
		w.running.Store(false)
		metrics.ReplyStreamsOpen.Dec()
	}()

	log.Debug().
		Str("event_id", w.target.EventID).
		Str("address", w.target.Address).
		Msg("thread: reply stream open")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev == nil {
				continue
			}
			w.handleCandidate(ev)
		}
	}
}

func (w *Watcher) handleCandidate(ev *nostr.Event) {
	w.candidates.Add(1)

	if !ShouldAccept(ParseRefs(ev.Tags), w.target) {
		metrics.ReplyCandidatesTotal.WithLabelValues("rejected").Inc()
		return
	}

	w.mu.Lock()
	if _, ok := w.seen[ev.ID]; ok {
		w.mu.Unlock()
		metrics.ReplyCandidatesTotal.WithLabelValues("duplicate").Inc()
		return
	}
	w.seen[ev.ID] = struct{}{}
	w.replies = append([]*nostr.Event{ev}, w.replies...)
	subs := make([]chan *nostr.Event, 0, len(w.subs))
	for ch := range w.subs {
		subs = append(subs, ch)
	}
	w.mu.Unlock()

	w.accepted.Add(1)
	metrics.ReplyCandidatesTotal.WithLabelValues("accepted").Inc()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
