// Package store contains the core storage engine of our distributed key-value
// system: the per-key vector clocks, the conflict-resolution merger, and the
// append-only operation log the gossip protocol replays across peers.
//
// Big idea:
//
//  1. Vector clock
//     Every node stamps its own writes with a logical counter. When two
//     writes to the same key arrive, comparing their stamps tells us whether
//     one strictly happened-before the other, or whether they were
//     concurrent and need a tiebreak.
//
//  2. Operation log
//     Every accepted write is appended to an in-memory, replayable log.
//     Gossip ships the whole log to peers every round; replaying it against
//     an empty store reproduces the same state. There is no persistence to
//     disk — a restarted node starts empty and catches up from peers.
//
//  3. Concurrency
//     A single mutex guards all store state. Reads and writes are both
//     short, in-memory operations, so we do not split it into separate
//     reader/writer locks the way a disk-backed store would.
package store

import "maps"

// NodeID identifies a member of the cluster. It is a small non-negative
// integer — an index into the compiled-in cluster table, never a hostname.
type NodeID int

// VersionVector is a logical clock: nodeID → how many times that node has
// incremented its own counter. A node absent from the map is implicitly at
// counter 0.
//
// Example:
//
//	{0: 3, 1: 1}
//
// means node 0 has ticked 3 times and node 1 has ticked once, as observed by
// whoever holds this vector.
type VersionVector map[NodeID]uint64

// Clone returns a deep copy.
//
// This matters at stamp time: once an Operation is built, its stamp must
// never be retroactively mutated by a later tick on the same node, so every
// stamp is handed out as an independent copy.
func (vc VersionVector) Clone() VersionVector {
	c := make(VersionVector, len(vc))
	maps.Copy(c, vc)
	return c
}

// relate compares two vector vectors component-wise and reports, treating a
// missing entry as 0, whether inc has any component strictly greater than
// cur (incNewer) and whether cur has any component strictly greater than inc
// (curNewer). Both can be true at once — that is the concurrent case.
//
// A component present only in cur (absent from inc) is, by definition,
// greater than the implicit 0 inc carries for it, so it already falls out of
// the "cur[n] > inc[n]" comparison below without needing a separate check.
func relate(cur, inc VersionVector) (incNewer, curNewer bool) {
	for n, t := range inc {
		if t > cur[n] {
			incNewer = true
		}
	}
	for n, t := range cur {
		if t > inc[n] {
			curNewer = true
		}
	}
	return incNewer, curNewer
}

// absorb merges every (node, counter) pair of other into vc in place,
// keeping the larger counter for each node.
func (vc VersionVector) absorb(other VersionVector) {
	for n, t := range other {
		if t > vc[n] {
			vc[n] = t
		}
	}
}
