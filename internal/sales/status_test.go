package sales

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusActive, StatusFinalized, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusActive, false},
		{StatusFinalized, StatusActive, false},
		{StatusFinalized, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusFinalized, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("FINALIZED"); !ok || s != StatusFinalized {
		t.Errorf("ParseStatus(FINALIZED) = %s, %v", s, ok)
	}
	if _, ok := ParseStatus("finalized"); ok {
		t.Error("ParseStatus should be case sensitive")
	}
	if _, ok := ParseStatus("SHIPPED"); ok {
		t.Error("ParseStatus accepted an unknown status")
	}
}
