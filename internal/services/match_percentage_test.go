package services

import "testing"

func TestMatchPercentage(t *testing.T) {
	cases := []struct {
		name    string
		matched int64
		total   int64
		want    int
	}{
		{"all matched", 10, 10, 100},
		{"none matched", 0, 10, 0},
		{"one third rounds down", 1, 3, 33},
		{"two thirds rounds up", 2, 3, 67},
		{"half", 1, 2, 50},
		{"no items", 0, 0, 0},
		{"negative total treated as empty", 0, -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchPercentage(tc.matched, tc.total); got != tc.want {
				t.Fatalf("matchPercentage(%d, %d) = %d, want %d", tc.matched, tc.total, got, tc.want)
			}
		})
	}
}
