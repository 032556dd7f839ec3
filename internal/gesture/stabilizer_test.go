package gesture

import "testing"

func TestStabilizer(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"single outlier is ignored", []int{1, 1, 2, 1, 1}, 1},
		{"empty window", nil, 0},
		{"tie goes to the smaller count", []int{2, 3}, 2},
		{"tie ignores arrival order", []int{3, 2}, 2},
		{"tie ignores window order", []int{3, 2, 2, 3}, 2},
		{"open palm then four fingers", []int{5, 4}, 4},
		{"oldest sample falls out of the window", []int{1, 1, 1, 2, 2, 2}, 2},
		{"majority of five", []int{4, 5, 4, 5, 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStabilizer(StabilizerWindow)
			for _, c := range tt.counts {
				s.Push(c)
			}

			if got := s.Current(); got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStabilizer_Reset(t *testing.T) {
	s := NewStabilizer(StabilizerWindow)
	for _, c := range []int{1, 1, 2, 1, 1} {
		s.Push(c)
	}

	s.Reset()

	if got := s.Current(); got != 0 {
		t.Errorf("Current() after Reset = %d, want 0", got)
	}

	// History from before the reset must not leak into new votes
	s.Push(3)
	if got := s.Current(); got != 3 {
		t.Errorf("Current() = %d, want 3", got)
	}
}
