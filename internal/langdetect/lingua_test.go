package langdetect

import "testing"

func TestDetectISO6391RejectsShortSamples(t *testing.T) {
	t.Parallel()

	if got := DetectISO6391(""); got != "" {
		t.Fatalf("expected empty code for empty text, got %q", got)
	}
	if got := DetectISO6391("ab 12"); got != "" {
		t.Fatalf("expected empty code for too-short sample, got %q", got)
	}
}

func TestDetectISO6391English(t *testing.T) {
	t.Parallel()

	got := DetectISO6391("The government announced a new infrastructure spending program this morning in the capital.")
	if got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
}
