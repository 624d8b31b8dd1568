package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/atikulmunna/trainlog/internal/model"
)

const subscriberBuffer = 16

// Hub fans completed run summaries out to every subscriber.
type Hub struct {
	input       <-chan model.RunSummary
	mu          sync.RWMutex
	subscribers []chan model.RunSummary
	dropped     atomic.Int64
}

// New creates a Hub that reads summaries from input.
func New(input <-chan model.RunSummary) *Hub {
	return &Hub{input: input}
}

// Subscribe returns a buffered channel that receives every summary
// published after the call.
func (h *Hub) Subscribe() <-chan model.RunSummary {
	ch := make(chan model.RunSummary, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan model.RunSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subscribers {
		if ch == sub {
			close(ch)
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Dropped returns the number of summaries dropped for slow consumers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Start broadcasts summaries until the context is cancelled or the input
// channel is closed, then closes every subscriber channel.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case run, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(run)
		}
	}
}

// broadcast sends a summary to all subscribers.
// If a subscriber's channel is full, the summary is dropped for that subscriber.
func (h *Hub) broadcast(run model.RunSummary) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- run:
		default:
			n := h.dropped.Add(1)
			slog.Warn("hub: dropped run summary for slow consumer", "run_id", run.RunID, "total_dropped", n)
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
