package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kvgossip/internal/store"
)

// Gossip is the timer-driven task: every Interval seconds it sends
// this node's entire operation log to every non-blacklisted peer.
//
// This is intentionally a single long-lived task waiting on a cancellable
// ticker, not a fresh timer object spawned per round — that pattern in the
// original source is accidental, not essential to the protocol.
type Gossip struct {
	self     store.NodeID
	table    *Table
	store    *store.Store
	interval time.Duration
	client   *http.Client
}

// NewGossip builds a Gossip component for self, using the interval
// configured for self in the cluster table.
func NewGossip(self store.NodeID, table *Table, s *store.Store) *Gossip {
	interval := 800 * time.Millisecond
	if p, ok := table.Get(self); ok {
		interval = p.Interval
	}
	return &Gossip{
		self:     self,
		table:    table,
		store:    s,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Run blocks, firing a gossip round every Interval until ctx is cancelled.
// In-flight dispatches from the final round are fire-and-forget; Run itself
// returns as soon as ctx.Done fires, it does not wait for them.
func (g *Gossip) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.round()
		case <-ctx.Done():
			return
		}
	}
}

// round copies the current log under the store mutex, serializes the copy
// after the mutex is released, then dispatches the payload to every
// non-blacklisted peer on its own goroutine.
func (g *Gossip) round() {
	entries := g.store.SnapshotLog()
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}

	for _, peer := range g.table.Peers() {
		if peer.ID == g.self {
			continue
		}
		if g.store.IsBlacklisted(peer.ID) {
			continue
		}
		go g.send(peer, payload)
	}
}

// send PUTs the serialized log to one peer's /merge endpoint with a 5s
// timeout and the Node header carrying our own ID.
//
// Failures — connection refused, timeout, non-2xx — are swallowed here by
// design: the log is never truncated, so the next tick resends
// the full history and any missed delivery is self-healing. There is
// deliberately no per-request retry; that would fight the gossip protocol's
// own retry mechanism instead of complementing it.
func (g *Gossip) send(peer Peer, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/merge", peer.Host, peer.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Node", strconv.Itoa(int(g.self)))

	resp, err := g.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}
