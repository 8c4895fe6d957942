package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// EventReload is sent when an exploration definition changes on disk.
const EventReload = "reload"

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

// StreamManager fans analytics events out to SSE subscribers.
// Subscribers register for one exploration, or for all of them with "".
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{}
	logger      *slog.Logger
}

var _ ports.AnalyticsEmitter = (*StreamManager)(nil)

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for explorationID.
// The returned func unregisters and closes it.
func (sm *StreamManager) Subscribe(explorationID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	if _, ok := sm.subscribers[explorationID]; !ok {
		sm.subscribers[explorationID] = make(map[chan Message]struct{})
	}
	sm.subscribers[explorationID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			subs := sm.subscribers[explorationID]
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, explorationID)
			}
		})
	}
}

// Subscribers reports how many channels listen on explorationID.
func (sm *StreamManager) Subscribers(explorationID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[explorationID])
}

// Broadcast delivers msg to the subscribers of explorationID and to global subscribers.
// Slow subscribers lose messages instead of blocking the caller.
func (sm *StreamManager) Broadcast(explorationID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	send := func(key string) {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: client buffer full, dropping message", "exploration_id", explorationID, "event", msg.Event)
			}
		}
	}
	send(explorationID)
	if explorationID != "" {
		send("")
	}
}

// Forward broadcasts every changed exploration id from events as a reload
// message until events closes or ctx is done.
func (sm *StreamManager) Forward(ctx context.Context, events <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			sm.Broadcast(id, Message{Event: EventReload, Data: id})
		}
	}
}

func (sm *StreamManager) RecordStateHit(_ context.Context, e domain.StateHitEvent) {
	sm.publish(e.ExplorationID, string(e.Type), e)
}

func (sm *StreamManager) RecordAnswerSubmitted(_ context.Context, e domain.AnswerSubmittedEvent) {
	sm.publish(e.ExplorationID, string(e.Type), e)
}

func (sm *StreamManager) RecordFeedback(_ context.Context, e domain.FeedbackEvent) {
	sm.publish(e.ExplorationID, string(e.Type), e)
}

func (sm *StreamManager) publish(explorationID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("SSE: failed to encode event", "event", event, "err", err)
		return
	}
	sm.Broadcast(explorationID, Message{Event: event, Data: string(data)})
}

// SubscribeEvents handles GET /events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, s.logger, fmt.Errorf("streaming not supported"))
		return
	}

	explorationID := ""
	if params.ExplorationID != nil {
		explorationID = *params.ExplorationID
	}

	ch, cancel := s.streams.Subscribe(explorationID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: client subscribed", "exploration_id", explorationID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "exploration_id", explorationID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
