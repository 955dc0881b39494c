package app

import "testing"

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	got := splitCSV(" ai , robotics ,, quantum computing ")
	if len(got) != 3 {
		t.Fatalf("expected 3 values, got %v", got)
	}
	if got[0] != "ai" || got[2] != "quantum computing" {
		t.Fatalf("unexpected values: %v", got)
	}

	if got := splitCSV(""); len(got) != 0 {
		t.Fatalf("expected no values for empty input, got %v", got)
	}
}
