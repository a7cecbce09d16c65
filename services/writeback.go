package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/rs/zerolog"
)

const (
	DefaultWriteBackDebounce = 500 * time.Millisecond
	DefaultPersistTimeout    = 5 * time.Second
)

// GameSnapshotter returns the current persisted view of a game.
type GameSnapshotter interface {
	SnapshotGame(id int) (models.GameUpdate, bool)
}

type GameStore interface {
	UpsertGame(ctx context.Context, id int, update models.GameUpdate) error
}

type SyncState string

const (
	SyncClean    SyncState = "clean"
	SyncDirty    SyncState = "dirty"
	SyncInFlight SyncState = "in-flight"
)

// WriteBackSynchronizer batches game edits and writes each dirty game once
// per quiet period. Every write carries the game's state at flush time, not
// the state at mark time.
type WriteBackSynchronizer struct {
	store    GameStore
	snap     GameSnapshotter
	notifier Notifier
	log      zerolog.Logger

	debounce time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	pending  map[int]struct{}
	inFlight map[int]int
	timer    *time.Timer
	armed    uint64 // bumped on every timer arm; a fire with an older value is stale
	gen      uint64 // bumped by Cancel; running flushes stop at the next game
	active   int
	idle     chan struct{} // closed when active drops to zero
	closed   bool
}

func NewWriteBackSynchronizer(store GameStore, snap GameSnapshotter, notifier Notifier, debounce, timeout time.Duration, log zerolog.Logger) *WriteBackSynchronizer {
	if debounce <= 0 {
		debounce = DefaultWriteBackDebounce
	}
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	idle := make(chan struct{})
	close(idle)
	return &WriteBackSynchronizer{
		store:    store,
		snap:     snap,
		notifier: notifier,
		log:      log.With().Str("component", "writeback").Logger(),
		debounce: debounce,
		timeout:  timeout,
		pending:  make(map[int]struct{}),
		inFlight: make(map[int]int),
		idle:     idle,
	}
}

// MarkDirty queues the game and restarts the quiet period.
func (s *WriteBackSynchronizer) MarkDirty(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending[id] = struct{}{}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.armed++
	seq := s.armed
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(seq) })
}

func (s *WriteBackSynchronizer) Pending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.pending)
}

func (s *WriteBackSynchronizer) State(id int) SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] > 0 {
		return SyncInFlight
	}
	if _, ok := s.pending[id]; ok {
		return SyncDirty
	}
	return SyncClean
}

// Cancel drops every pending write and stops the timer. A flush already
// running finishes the write it has started and skips the rest of its games.
func (s *WriteBackSynchronizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed++
	s.gen++
	if n := len(s.pending); n > 0 {
		s.log.Debug().Int("dropped", n).Msg("pending writes cancelled")
	}
	s.pending = make(map[int]struct{})
}

// Busy reports whether a flush is running.
func (s *WriteBackSynchronizer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active > 0
}

// Wait blocks until no flush is running.
func (s *WriteBackSynchronizer) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight writes: %w", ctx.Err())
	}
}

// Close flushes whatever is pending and waits for in-flight writes.
func (s *WriteBackSynchronizer) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	ids := sortedIDs(s.pending)
	s.pending = make(map[int]struct{})
	gen := s.gen
	s.beginFlushLocked()
	s.mu.Unlock()

	s.flush(ctx, ids, gen)
	s.endFlush()

	return s.Wait(ctx)
}

func (s *WriteBackSynchronizer) fire(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.armed {
		s.mu.Unlock()
		return
	}
	ids := sortedIDs(s.pending)
	s.pending = make(map[int]struct{})
	s.timer = nil
	if len(ids) == 0 {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	s.beginFlushLocked()
	s.mu.Unlock()

	defer s.endFlush()
	s.flush(context.Background(), ids, gen)
}

func (s *WriteBackSynchronizer) beginFlushLocked() {
	if s.active == 0 {
		s.idle = make(chan struct{})
	}
	s.active++
}

func (s *WriteBackSynchronizer) endFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
	if s.active == 0 {
		close(s.idle)
	}
}

func (s *WriteBackSynchronizer) cancelled(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != gen
}

func (s *WriteBackSynchronizer) flush(ctx context.Context, ids []int, gen uint64) {
	for i, id := range ids {
		if s.cancelled(gen) {
			s.log.Debug().Ints("skipped", ids[i:]).Msg("flush cancelled")
			return
		}
		update, ok := s.snap.SnapshotGame(id)
		if !ok {
			s.log.Warn().Int("game_id", id).Msg("dirty game no longer exists, skipping write")
			continue
		}

		s.setInFlight(id, 1)
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.store.UpsertGame(callCtx, id, update)
		cancel()
		s.setInFlight(id, -1)

		if err != nil {
			s.log.Error().Err(err).Int("game_id", id).Msg("failed to persist game")
			s.notifier.Notify(NotificationError, fmt.Sprintf("Failed to save game %d", id))
			continue
		}
		s.log.Debug().Int("game_id", id).Msg("game persisted")
	}
}

func (s *WriteBackSynchronizer) setInFlight(id, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight[id] += delta
	if s.inFlight[id] <= 0 {
		delete(s.inFlight, id)
	}
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
