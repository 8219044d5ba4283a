package store

// Apply is the Merger: given an incoming Operation e targeting key k,
// it decides whether to apply it using the vector-clock + value-tiebreak
// rule, mutates the data map accordingly, absorbs e's stamp into the per-key
// clock, and appends e to the log — all unconditionally when, and only
// when, the operation is applied.
//
// The decision, with cur = perKeyClocks[k] (absent ⇒ never seen) and
// inc = e.Stamp:
//
//  1. k never seen before              → apply (first write wins trivially)
//  2. inc strictly dominates cur       → apply
//  3. cur strictly dominates inc       → discard
//  4. neither dominates (equal)        → discard (idempotent replay)
//  5. both dominate in some component  → concurrent: apply iff e.Value is
//     lexicographically greater than the current data value (empty string
//     if k is currently absent/deleted)
//
// Rationale: the vector clock captures causality; concurrent writes fall
// through to a deterministic, cluster-agreed tiebreak so every node
// converges on the same value without coordination, regardless of arrival
// order.
func (s *Store) Apply(e Operation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, seen := s.perKeyClocks[e.Key]

	apply := false
	switch {
	case !seen:
		apply = true
	default:
		incNewer, curNewer := relate(cur, e.Stamp)
		switch {
		case incNewer && !curNewer:
			apply = true
		case curNewer && !incNewer:
			apply = false
		case !incNewer && !curNewer:
			apply = false
		default: // concurrent
			apply = e.Value > s.data[e.Key]
		}
	}

	if !apply {
		return false
	}

	switch e.Kind {
	case KindSet:
		s.data[e.Key] = e.Value
	case KindDel:
		delete(s.data, e.Key)
	}

	if !seen {
		cur = make(VersionVector, len(e.Stamp))
	}
	cur.absorb(e.Stamp)
	s.perKeyClocks[e.Key] = cur

	s.log = append(s.log, e)
	return true
}
