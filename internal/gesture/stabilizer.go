package gesture

// StabilizerWindow is the number of recent finger counts the majority vote covers.
const StabilizerWindow = 5

// Stabilizer smooths out single-frame misclassifications with a majority
// vote over the last few finger counts.
type Stabilizer struct {
	history *Ring[int]
}

// NewStabilizer creates a Stabilizer voting over window samples.
func NewStabilizer(window int) *Stabilizer {
	return &Stabilizer{history: NewRing[int](window)}
}

// Push records a finger count.
func (s *Stabilizer) Push(count int) {
	s.history.Push(count)
}

// Current returns the most frequent count in the window. Ties go to the
// smallest count; an empty window yields 0.
func (s *Stabilizer) Current() int {
	vals := s.history.Values()
	if len(vals) == 0 {
		return 0
	}

	freq := make(map[int]int, len(vals))
	for _, v := range vals {
		freq[v]++
	}

	best, bestN := vals[0], 0
	for _, v := range vals {
		if freq[v] > bestN || freq[v] == bestN && v < best {
			best, bestN = v, freq[v]
		}
	}
	return best
}

// Reset forgets all history. Call it whenever a frame has no hand.
func (s *Stabilizer) Reset() {
	s.history.Reset()
}
