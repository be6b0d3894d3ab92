package employee

import "testing"

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusActive, StatusTerminated, true},
		{StatusActive, StatusResigned, true},
		{StatusTerminated, StatusActive, false},
		{StatusResigned, StatusActive, false},
		{StatusActive, StatusActive, false},
		{StatusTerminated, StatusResigned, false},
	}

	for _, tc := range tests {
		if got := TransitionAllowed(tc.from, tc.to); got != tc.want {
			t.Fatalf("TransitionAllowed(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
