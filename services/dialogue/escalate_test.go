package dialogue

import "testing"

func TestShouldEscalate(t *testing.T) {
	cases := []struct {
		counter, threshold int
		hasStaffLine       bool
		want               bool
	}{
		{0, 2, true, false},
		{2, 2, true, false}, // exactly at the threshold still tolerated
		{3, 2, true, true},
		{3, 2, false, false}, // no staff line, nowhere to escalate
		{1, 0, true, true},
		{0, 0, true, false},
	}
	for _, tc := range cases {
		got := ShouldEscalate(tc.counter, tc.threshold, tc.hasStaffLine)
		if got != tc.want {
			t.Errorf("ShouldEscalate(%d, %d, %v) = %v, want %v",
				tc.counter, tc.threshold, tc.hasStaffLine, got, tc.want)
		}
	}
}
