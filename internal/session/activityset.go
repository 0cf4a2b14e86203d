package session

// ActivitySet is an ordered set of activity ids. It is owned by the Runtime and
// only mutated under the Runtime's lock.
type ActivitySet struct {
	ids   []string
	index map[string]struct{}
}

// NewActivitySet builds a set from ids, dropping duplicates and keeping first-seen order
func NewActivitySet(ids ...string) *ActivitySet {
	s := &ActivitySet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *ActivitySet) add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *ActivitySet) remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether id is in the set
func (s *ActivitySet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of ids in the set
func (s *ActivitySet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in order
func (s *ActivitySet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// MoveTo removes id from s and inserts it into dst as a single step.
// It returns false, leaving both sets untouched, when id is not in s.
func (s *ActivitySet) MoveTo(id string, dst *ActivitySet) bool {
	if !s.remove(id) {
		return false
	}
	dst.add(id)
	return true
}

// Except returns the ids of s that are in none of the excluded sets, plus not equal to skip
func (s *ActivitySet) Except(skip string, exclude ...*ActivitySet) []string {
	out := make([]string, 0, len(s.ids))
outer:
	for _, id := range s.ids {
		if id == skip {
			continue
		}
		for _, ex := range exclude {
			if ex != nil && ex.Contains(id) {
				continue outer
			}
		}
		out = append(out, id)
	}
	return out
}
