package dashboard

import (
	"encoding/json"
	"sync"

	"github.com/SarthakJain2/monitord/internal/metrics"
	"github.com/SarthakJain2/monitord/internal/server"
)

// Hub tracks every browser WebSocket connection currently subscribed to the
// metrics stream and fans each sample out to all of them, mirroring the
// "WebSocket connection set" the concurrency model assigns its own
// RWMutex-guarded map.
type Hub struct {
	mu    sync.RWMutex
	conns map[*server.WSConn]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*server.WSConn]struct{})}
}

// Register adds conn to the broadcast set.
func (h *Hub) Register(conn *server.WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Unregister removes conn from the broadcast set. Safe to call more than
// once or with a conn never registered.
func (h *Hub) Unregister(conn *server.WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Count reports how many connections are currently subscribed.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// update is the JSON shape pushed to every connected browser.
type update struct {
	Sample       metrics.Sample  `json:"sample"`
	ActiveAlerts []metrics.Alert `json:"active_alerts"`
}

// Broadcast marshals sample and alerts once and writes the result to every
// registered connection, dropping (and unregistering) any that fail to
// write rather than letting one slow client stall the others.
func (h *Hub) Broadcast(sample metrics.Sample, alerts []metrics.Alert) error {
	payload, err := json.Marshal(update{Sample: sample, ActiveAlerts: alerts})
	if err != nil {
		return err
	}
	text := string(payload)

	h.mu.RLock()
	targets := make([]*server.WSConn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var dead []*server.WSConn
	for _, c := range targets {
		if err := c.WriteText(text); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		h.Unregister(c)
	}
	return nil
}
