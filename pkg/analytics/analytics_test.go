package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func hit(state string) domain.StateHitEvent {
	return domain.StateHitEvent{
		EventBase:  domain.NewEventBase(domain.EventStateHit, "exp"),
		StateID:    state,
		FirstVisit: true,
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.RecordStateHit(ctx, hit("A"))
	r.RecordAnswerSubmitted(ctx, domain.AnswerSubmittedEvent{StateID: "A", RuleID: "Default"})
	r.RecordFeedback(ctx, domain.FeedbackEvent{StateID: "A", Feedback: "nice"})

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "A", r.StateHits()[0].StateID)
	assert.Equal(t, "Default", r.Answers()[0].RuleID)
	assert.Equal(t, "nice", r.Feedback()[0].Feedback)

	r.Reset()
	assert.Zero(t, r.Len())
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, Nop{}, b}

	m.RecordStateHit(context.Background(), hit("A"))

	assert.Len(t, a.StateHits(), 1)
	assert.Len(t, b.StateHits(), 1)
}

func TestAsync_DeliversOnClose(t *testing.T) {
	r := NewRecorder()
	a := NewAsync(r, WithBuffer(16))

	for i := 0; i < 10; i++ {
		a.RecordStateHit(context.Background(), hit("A"))
	}
	require.NoError(t, a.Close(context.Background()))

	assert.Len(t, r.StateHits(), 10)
	assert.Zero(t, a.Dropped())
}

func TestAsync_IgnoresAfterClose(t *testing.T) {
	r := NewRecorder()
	a := NewAsync(r)
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	a.RecordStateHit(context.Background(), hit("A"))
	assert.Zero(t, r.Len())
}

type blockingSink struct {
	Nop
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (b *blockingSink) RecordStateHit(context.Context, domain.StateHitEvent) {
	b.once.Do(func() { close(b.started) })
	<-b.release
}

func TestAsync_DropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), started: make(chan struct{})}
	a := NewAsync(sink, WithBuffer(1))

	a.RecordStateHit(context.Background(), hit("A"))
	<-sink.started

	a.RecordStateHit(context.Background(), hit("B")) // fills the buffer
	a.RecordStateHit(context.Background(), hit("C")) // dropped

	assert.Equal(t, 1, a.Dropped())

	close(sink.release)
	require.NoError(t, a.Close(context.Background()))
}

func TestAsync_CloseHonoursContext(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), started: make(chan struct{})}
	a := NewAsync(sink)
	a.RecordStateHit(context.Background(), hit("A"))
	<-sink.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Close(ctx), context.DeadlineExceeded)

	close(sink.release)
	require.NoError(t, a.Close(context.Background()))
}

type panickySink struct{ Nop }

func (panickySink) RecordStateHit(context.Context, domain.StateHitEvent) { panic("boom") }

func TestAsync_RecoversSinkPanic(t *testing.T) {
	r := NewRecorder()
	a := NewAsync(Multi{panickySink{}, r})

	a.RecordStateHit(context.Background(), hit("A"))
	a.RecordFeedback(context.Background(), domain.FeedbackEvent{Feedback: "ok"})
	require.NoError(t, a.Close(context.Background()))

	assert.Len(t, r.StateHits(), 1, "sinks after a panicking one still get the event")
	assert.Len(t, r.Feedback(), 1)
}

func TestMulti_SkipsPanickingSink(t *testing.T) {
	first, last := NewRecorder(), NewRecorder()
	m := Multi{first, panickySink{}, last}

	assert.NotPanics(t, func() { m.RecordStateHit(context.Background(), hit("A")) })
	assert.Len(t, first.StateHits(), 1)
	assert.Len(t, last.StateHits(), 1)
}
