// Package cluster holds the compiled-in cluster table and the gossip
// component that periodically ships each node's operation log to its peers.
//
// Unlike a membership service that handles nodes joining and leaving at
// runtime, this table is fixed at compile time and identical across every
// node in the cluster — horizontal membership changes are out of scope
// (an explicit non-goal).
package cluster

import (
	"time"

	"kvgossip/internal/store"
)

// Peer describes one member of the cluster table: its ID, where to reach it,
// and how often it should gossip.
type Peer struct {
	ID       store.NodeID
	Host     string
	Port     int
	Interval time.Duration
}

// Table is the ordered, immutable cluster configuration compiled into every
// node. It is identical across the cluster, so any node can compute any
// other node's address without asking.
type Table struct {
	peers []Peer
	byID  map[store.NodeID]Peer
}

// NewTable builds a Table from an ordered peer list.
func NewTable(peers []Peer) *Table {
	byID := make(map[store.NodeID]Peer, len(peers))
	for _, p := range peers {
		byID[p.ID] = p
	}
	return &Table{peers: peers, byID: byID}
}

// DefaultTable is the three-node default cluster: 127.0.0.1:15501-15503,
// gossip interval 0.8s each.
func DefaultTable() *Table {
	const interval = 800 * time.Millisecond
	return NewTable([]Peer{
		{ID: 0, Host: "127.0.0.1", Port: 15501, Interval: interval},
		{ID: 1, Host: "127.0.0.1", Port: 15502, Interval: interval},
		{ID: 2, Host: "127.0.0.1", Port: 15503, Interval: interval},
	})
}

// Peers returns the full ordered peer list, including self.
func (t *Table) Peers() []Peer {
	return t.peers
}

// Get returns the Peer entry for id.
func (t *Table) Get(id store.NodeID) (Peer, bool) {
	p, ok := t.byID[id]
	return p, ok
}
