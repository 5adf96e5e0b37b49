package discovery

// orderedSet keeps insertion order and rejects repeats.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		items: make([]string, 0, capacity),
		seen:  make(map[string]struct{}, capacity),
	}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// Deduplicate merges seqs in priority order. Each distinct identity appears
// once, at the position of its earliest occurrence reading the arguments in
// order and each argument front to back. Comparison is exact and
// case-sensitive. The result is never nil.
func Deduplicate(seqs ...[]string) []string {
	n := 0
	for _, seq := range seqs {
		n += len(seq)
	}

	set := newOrderedSet(n)
	for _, seq := range seqs {
		for _, v := range seq {
			set.add(v)
		}
	}
	return set.items
}
