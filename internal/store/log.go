package store

// OperationLog is the append-only history of every Operation this node has
// accepted, in acceptance order. It is replayable: applying every entry in
// order against an empty Store reconstructs the same (data, per-key clocks)
// state, modulo ties resolved identically — which they are, since the
// merger's decision is a pure function of (current state, incoming op).
//
// The log is never truncated or compacted: it grows for the life of the
// process, and every gossip round ships all of it.
//
// Unlike the teacher's on-disk write-ahead log, this one lives only in
// memory. Durability across a process restart is explicitly out of scope
// here: a node that restarts comes back empty and catches up from peers on
// the next gossip round, the same way a late-joining node does.
type OperationLog []Operation

// snapshot returns a defensive copy, safe to hand to the gossip component
// for serialization after the store mutex has been released.
func (l OperationLog) snapshot() OperationLog {
	cp := make(OperationLog, len(l))
	copy(cp, l)
	return cp
}

// Replay rebuilds a fresh Store's (data, per-key clocks) state by applying
// every entry of a log in order. It does not touch the target's own local
// clock or log — it is meant for reconstructing visible state from a
// gossiped or snapshotted history, e.g. in tests asserting the replay
// invariant.
func Replay(entries OperationLog, into *Store) {
	for _, op := range entries {
		into.Apply(op)
	}
}
