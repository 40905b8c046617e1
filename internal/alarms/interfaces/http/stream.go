package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"monitoring-console/internal/store"
)

const defaultHeartbeat = 15 * time.Second

// streamEvent is one SSE frame. id lets a reconnecting client tell which
// transition it saw last.
type streamEvent struct {
	id   string
	data []byte
}

// SSEBroker fans slice transitions out to connected clients.
type SSEBroker struct {
	mu      sync.Mutex
	clients map[*Subscriber]struct{}
}

// Subscriber is one connected stream client.
type Subscriber struct {
	ch     chan streamEvent
	slices map[string]struct{}
}

func (s *Subscriber) wants(slice string) bool {
	if len(s.slices) == 0 {
		return true
	}
	_, ok := s.slices[slice]
	return ok
}

// NewSSEBroker constructs a broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[*Subscriber]struct{})}
}

// Observe implements store.Observer.
func (b *SSEBroker) Observe(t store.Transition) {
	if b == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	b.broadcast(t.Slice, streamEvent{id: fmt.Sprintf("%s.%s.%d", t.Slice, t.Track, t.Seq), data: data})
}

// Subscribe registers a client for slices. No slices receives every transition.
func (b *SSEBroker) Subscribe(slices ...string) *Subscriber {
	if b == nil {
		return nil
	}
	c := &Subscriber{ch: make(chan streamEvent, 16), slices: make(map[string]struct{}, len(slices))}
	for _, s := range slices {
		if s = strings.TrimSpace(s); s != "" {
			c.slices[s] = struct{}{}
		}
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unsubscribe removes a client.
func (b *SSEBroker) Unsubscribe(c *Subscriber) {
	if b == nil || c == nil {
		return
	}
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
	close(c.ch)
}

// Clients returns the number of connected clients.
func (b *SSEBroker) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *SSEBroker) broadcast(slice string, ev streamEvent) {
	// Sends happen under the lock so Unsubscribe never closes a channel
	// mid-send. Slow clients lose events rather than blocking the track.
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if !c.wants(slice) {
			continue
		}
		select {
		case c.ch <- ev:
		default:
		}
	}
}

// StreamHandler serves the SSE transition stream.
type StreamHandler struct {
	broker    *SSEBroker
	heartbeat time.Duration
}

// StreamOption customizes a StreamHandler.
type StreamOption func(*StreamHandler)

// WithHeartbeat sets the keep-alive comment interval.
func WithHeartbeat(d time.Duration) StreamOption {
	return func(h *StreamHandler) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *SSEBroker, opts ...StreamOption) *StreamHandler {
	h := &StreamHandler{broker: broker, heartbeat: defaultHeartbeat}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// ServeHTTP handles GET /api/v1/alarms/stream[?slice=a,b|all]. The default
// is the alarms slice.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	var slices []string
	switch raw := r.URL.Query().Get("slice"); raw {
	case "":
		slices = []string{sliceAlarms}
	case "all":
	default:
		slices = strings.Split(raw, ",")
	}
	c := h.broker.Subscribe(slices...)
	defer h.broker.Unsubscribe(c)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, "retry: 3000\nevent: ready\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "id: %s\nevent: transition\ndata: %s\n\n", ev.id, ev.data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

const sliceAlarms = "alarms"
