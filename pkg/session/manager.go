package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica keeps a distributed lock.
const DefaultLockTTL = 30 * time.Second

// ErrFinished is returned when answering a playthrough that already reached END.
var ErrFinished = errors.New("playthrough already finished")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates playthrough access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	engine ports.Engine
	store  ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager resolving answers with engine and persisting to store.
func NewManager(engine ports.Engine, store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		engine:  engine,
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Begin loads the playthrough for sessionID, starting explorationID when the
// session does not exist yet. The returned view is nil for resumed sessions.
func (m *Manager) Begin(ctx context.Context, sessionID, explorationID string) (*domain.Playthrough, *domain.InitialView, error) {
	var (
		play *domain.Playthrough
		view *domain.InitialView
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		play, err = m.store.Load(ctx, sessionID)
		if err == nil {
			if play.ExplorationID != explorationID {
				return fmt.Errorf("session %q belongs to exploration %q", sessionID, play.ExplorationID)
			}
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		view, err = m.engine.Start(ctx, explorationID)
		if err != nil {
			return err
		}
		play = &domain.Playthrough{
			ID:            sessionID,
			ExplorationID: view.ExplorationID,
			StateID:       view.StateID,
			BlockNumber:   view.BlockNumber,
			Params:        view.Params,
			History:       view.StateHistory,
		}
		if err := m.store.Save(ctx, sessionID, play); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return play, view, err
}

// Answer resolves an answer for the session's current state and persists
// the advanced playthrough.
func (m *Manager) Answer(ctx context.Context, sessionID, handler string, answer any) (*domain.Outcome, error) {
	var out *domain.Outcome
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		play, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if play.Finished {
			return ErrFinished
		}

		out, err = m.engine.Submit(ctx, domain.Request{
			ExplorationID: play.ExplorationID,
			StateID:       play.StateID,
			Answer:        answer,
			Handler:       handler,
			BlockNumber:   play.BlockNumber,
			Params:        play.Params.Without(domain.AnswerKey),
			StateHistory:  play.History,
		})
		if err != nil {
			return err
		}
		play.Advance(out)
		return m.store.Save(ctx, sessionID, play)
	})
	return out, err
}

// Feedback records reader feedback about the session's current state.
func (m *Manager) Feedback(ctx context.Context, sessionID, feedback string) error {
	play, err := m.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	return m.engine.RecordFeedback(ctx, play.ExplorationID, play.StateID, feedback, play.History)
}

// Load retrieves an existing playthrough from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Playthrough, error) {
	var play *domain.Playthrough
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		play, err = m.store.Load(ctx, sessionID)
		return err
	})
	return play, err
}

// Save persists the playthrough.
func (m *Manager) Save(ctx context.Context, sessionID string, play *domain.Playthrough) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, play)
	})
}

// Delete removes the playthrough from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
