package store

import "sync"

// Store is the in-memory state of a single node: the visible data map, the
// per-key version vectors used for conflict resolution, this node's own
// current version vector, the append-only operation log, and the current
// peer blacklist.
//
// All of it is guarded by a single mutex. Nothing here does network or disk
// I/O, so the lock is never held across anything that could block — every
// exported method that reads or changes that state takes it, does pure
// in-memory work, and releases it before returning. Self only reads the
// immutable node ID and takes no lock.
type Store struct {
	mu sync.Mutex

	self NodeID

	data         map[string]string
	perKeyClocks map[string]VersionVector
	localClock   VersionVector
	log          OperationLog
	blacklist    map[NodeID]bool
}

// New creates an empty Store for the given node. Store, clock, log, and
// blacklist all start empty and live only for the life of the process.
func New(self NodeID) *Store {
	return &Store{
		self:         self,
		data:         make(map[string]string),
		perKeyClocks: make(map[string]VersionVector),
		localClock:   make(VersionVector),
		blacklist:    make(map[NodeID]bool),
	}
}

// Self returns this node's own ID.
func (s *Store) Self() NodeID {
	return s.self
}

// ─── Clock ──────────────────────────────────────────────────────────────────
//
// Tick and Absorb are the two clock operations. Both run under the
// store mutex since LocalClock is store state.

// Tick increments this node's own component of the local clock by one and
// returns a deep copy of the resulting vector, suitable for stamping an
// Operation. Returning the copy from inside the same critical section that
// performs the increment is what gives the "deep copy, never retroactively
// mutated" guarantee for free: two ticks can never see a torn value
// of their own stamp, no matter how request handling is interleaved with
// other goroutines.
func (s *Store) Tick() VersionVector {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localClock[s.self]++
	return s.localClock.Clone()
}

// Absorb folds an incoming vector into the local clock, keeping the larger
// counter per node. Called once per gossiped operation after it has been
// merged.
func (s *Store) Absorb(v VersionVector) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localClock.absorb(v)
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// ReadAll returns a snapshot copy of the visible data map.
func (s *Store) ReadAll() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Snapshot is the triple returned by ReadSnapshot: the visible data, the
// per-key replication metadata, and this node's own current clock.
type Snapshot struct {
	Data         map[string]string        `json:"data"`
	PerKeyClocks map[string]VersionVector `json:"data_ts"`
	LocalClock   VersionVector             `json:"cur_ts"`
}

// ReadSnapshot returns copies of data, per-key clocks, and the local clock —
// the internal view used by tests and by the /snapshot endpoint.
func (s *Store) ReadSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(map[string]string, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	clocks := make(map[string]VersionVector, len(s.perKeyClocks))
	for k, v := range s.perKeyClocks {
		clocks[k] = v.Clone()
	}
	return Snapshot{
		Data:         data,
		PerKeyClocks: clocks,
		LocalClock:   s.localClock.Clone(),
	}
}

// SnapshotLog returns a defensive copy of the operation log, used by Gossip
// before transmission so the send can happen after the lock is released.
func (s *Store) SnapshotLog() OperationLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.log.snapshot()
}

// ─── Blacklist ──────────────────────────────────────────────────────────────

// SetBlacklist replaces the current peer blacklist wholesale.
func (s *Store) SetBlacklist(ids []NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blacklist := make(map[NodeID]bool, len(ids))
	for _, id := range ids {
		blacklist[id] = true
	}
	s.blacklist = blacklist
}

// IsBlacklisted reports whether id is currently suppressed, used both to
// drop inbound traffic from a blacklisted sender and to skip outbound
// gossip dispatches to one.
func (s *Store) IsBlacklisted(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blacklist[id]
}
