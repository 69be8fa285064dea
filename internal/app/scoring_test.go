package app

import "testing"

func TestPoints(t *testing.T) {
	cases := []struct {
		name     string
		correct  bool
		elapsed  int64
		duration int64
		want     int
	}{
		{"wrong answer", false, 0, 10_000, 0},
		{"wrong answer late", false, 10_000, 10_000, 0},
		{"instant", true, 0, 10_000, 1000},
		{"instant short question", true, 0, 1, 1000},
		{"at deadline", true, 10_000, 10_000, 500},
		{"after deadline", true, 12_000, 10_000, 500},
		{"two seconds of ten", true, 2_000, 10_000, 900},
		{"floor after scaling", true, 3_000, 10_000, 850},
		{"bonus floors", true, 1, 3, 833},
		{"negative elapsed clamps", true, -500, 10_000, 1000},
		{"no duration", true, 0, 0, 500},
	}
	for _, tc := range cases {
		if got := Points(tc.correct, tc.elapsed, tc.duration); got != tc.want {
			t.Fatalf("%s: Points(%v, %d, %d) = %d, want %d", tc.name, tc.correct, tc.elapsed, tc.duration, got, tc.want)
		}
	}
}
