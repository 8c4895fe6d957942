package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/analytics"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dsl"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/aretw0/lattice/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(t *testing.T) (*runtime.Engine, *analytics.Recorder) {
	t.Helper()
	b := dsl.New("counter").Param("n", 0)
	b.Add("A").Widget("Continue").Otherwise("Inc")
	b.Add("Inc").SetExpr("n", "n + 1").Widget("TextInput").
		When(dsl.Equals("stop"), dsl.End, "Bye").
		Otherwise("Inc")
	store, err := b.Store()
	require.NoError(t, err)
	rec := analytics.NewRecorder()
	return runtime.NewEngine(store, widgets.Default(), runtime.WithEmitter(rec)), rec
}

func TestManager_Playthrough(t *testing.T) {
	ctx := context.Background()
	eng, rec := counter(t)
	mgr := session.NewManager(eng, memory.NewSessionStore())

	play, view, err := mgr.Begin(ctx, "s1", "counter")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "A", play.StateID)

	resumed, view, err := mgr.Begin(ctx, "s1", "counter")
	require.NoError(t, err)
	assert.Nil(t, view, "existing sessions are resumed")
	assert.Equal(t, play, resumed)

	_, err = mgr.Answer(ctx, "s1", "", nil)
	require.NoError(t, err)
	out, err := mgr.Answer(ctx, "s1", "", "again")
	require.NoError(t, err)
	assert.Equal(t, "Inc", out.StateID)
	assert.EqualValues(t, 2, out.Params["n"])

	require.NoError(t, mgr.Feedback(ctx, "s1", "fun"))
	assert.ErrorIs(t, mgr.Feedback(ctx, "s1", " "), domain.ErrEmptyFeedback)
	assert.Equal(t, "Inc", rec.Feedback()[0].StateID)

	out, err = mgr.Answer(ctx, "s1", "", "stop")
	require.NoError(t, err)
	assert.True(t, out.Finished)

	_, err = mgr.Answer(ctx, "s1", "", "more")
	assert.ErrorIs(t, err, session.ErrFinished)

	stored, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.History{"A", "Inc", "Inc", domain.EndDest}, stored.History)
	assert.Equal(t, 3, stored.BlockNumber)
}

func TestManager_Errors(t *testing.T) {
	ctx := context.Background()
	eng, _ := counter(t)
	mgr := session.NewManager(eng, memory.NewSessionStore())

	_, err := mgr.Answer(ctx, "ghost", "", "x")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = mgr.Begin(ctx, "s", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = mgr.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "failed starts persist nothing")

	_, _, err = mgr.Begin(ctx, "s", "counter")
	require.NoError(t, err)
	_, _, err = mgr.Begin(ctx, "s", "other")
	assert.Error(t, err)
}

func TestManager_ConcurrentAnswers(t *testing.T) {
	ctx := context.Background()
	eng, _ := counter(t)
	mgr := session.NewManager(eng, memory.NewSessionStore())

	_, _, err := mgr.Begin(ctx, "race", "counter")
	require.NoError(t, err)
	_, err = mgr.Answer(ctx, "race", "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Answer(ctx, "race", "", "go")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	play, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.EqualValues(t, 21, play.Params["n"], "no lost updates")
	assert.Len(t, play.History, 22)
}

func TestManager_LockLifecycle(t *testing.T) {
	eng, _ := counter(t)
	mgr := session.NewManager(eng, memory.NewSessionStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, &domain.Playthrough{ID: sid})
		_ = mgr.Delete(ctx, sid)
	}

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, session.ActiveLocks(mgr))
}

type countingLocker struct {
	mu      sync.Mutex
	locks   int
	unlocks int
	ttl     time.Duration
}

func (c *countingLocker) Lock(_ context.Context, _ string, ttl time.Duration) (ports.UnlockFunc, error) {
	c.mu.Lock()
	c.locks++
	c.ttl = ttl
	c.mu.Unlock()
	return func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	eng, _ := counter(t)
	locker := &countingLocker{}
	mgr := session.NewManager(eng, memory.NewSessionStore(),
		session.WithLocker(locker),
		session.WithLockTTL(time.Minute),
	)

	_, _, err := mgr.Begin(context.Background(), "s", "counter")
	require.NoError(t, err)
	_, err = mgr.Answer(context.Background(), "s", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, time.Minute, locker.ttl)
}
