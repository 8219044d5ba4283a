package store

import "testing"

func TestTickIncrementsOwnComponentAndIsMonotonic(t *testing.T) {
	s := New(1)

	v1 := s.Tick()
	if v1[1] != 1 {
		t.Fatalf("after first tick localClock[1] = %d, want 1", v1[1])
	}
	v2 := s.Tick()
	if v2[1] != 2 {
		t.Fatalf("after second tick localClock[1] = %d, want 2", v2[1])
	}
	if v2[1] <= v1[1] {
		t.Fatal("local clock must never decrease across the process lifetime")
	}
}

func TestTickReturnsIndependentDeepCopies(t *testing.T) {
	s := New(0)
	e1 := s.Tick()
	e2 := s.Tick()

	if !(e1[0] < e2[0]) {
		t.Fatalf("e1.stamp[self]=%d must be < e2.stamp[self]=%d", e1[0], e2[0])
	}

	// Mutating a returned stamp must not retroactively affect an earlier one.
	e2[0] = 99
	if e1[0] == 99 {
		t.Fatal("stamps handed out by Tick must be independent deep copies")
	}
}

func TestAbsorbTakesElementwiseMaximum(t *testing.T) {
	s := New(0)
	s.Tick() // localClock = {0: 1}

	s.Absorb(VersionVector{0: 5, 2: 3})
	snap := s.ReadSnapshot()
	if snap.LocalClock[0] != 5 {
		t.Fatalf("localClock[0] = %d, want 5 (absorb takes the max)", snap.LocalClock[0])
	}
	if snap.LocalClock[2] != 3 {
		t.Fatalf("localClock[2] = %d, want 3", snap.LocalClock[2])
	}

	// Absorbing a smaller value for an already-known node must not regress it.
	s.Absorb(VersionVector{0: 1})
	snap = s.ReadSnapshot()
	if snap.LocalClock[0] != 5 {
		t.Fatalf("localClock[0] regressed to %d after absorbing a smaller value", snap.LocalClock[0])
	}
}

func TestBlacklistReplacesWholesale(t *testing.T) {
	s := New(0)
	s.SetBlacklist([]NodeID{1, 2})
	if !s.IsBlacklisted(1) || !s.IsBlacklisted(2) {
		t.Fatal("nodes 1 and 2 must be blacklisted")
	}
	s.SetBlacklist([]NodeID{1})
	if s.IsBlacklisted(2) {
		t.Fatal("SetBlacklist must replace the set wholesale, not merge into it")
	}
	if !s.IsBlacklisted(1) {
		t.Fatal("node 1 should still be blacklisted")
	}
}
