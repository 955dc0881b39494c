package doc

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCountSentences(t *testing.T) {
	t.Parallel()

	if got := CountSentences(""); got != 0 {
		t.Fatalf("expected 0 sentences for empty text, got %d", got)
	}
	if got := CountSentences("One. Two! Three?"); got != 3 {
		t.Fatalf("expected 3 sentences, got %d", got)
	}
	if got := CountSentences("Trailing dots... and more."); got != 2 {
		t.Fatalf("expected blank fragments between dots to be discarded, got %d", got)
	}
	if got := CountSentences("No terminator at all"); got != 1 {
		t.Fatalf("expected unterminated text to count as one sentence, got %d", got)
	}
}

func TestSplitSentencesKeepsPunctuation(t *testing.T) {
	t.Parallel()

	sentences := SplitSentences("First  one.   Second one!  Third?")
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "First one." {
		t.Fatalf("expected collapsed whitespace inside sentence, got %q", sentences[0])
	}
	if sentences[2] != "Third?" {
		t.Fatalf("unexpected last sentence: %q", sentences[2])
	}
}

func TestSplitSentencesDoesNotBreakDecimals(t *testing.T) {
	t.Parallel()

	sentences := SplitSentences("Inflation hit 3.5 percent. Markets reacted.")
	if len(sentences) != 2 {
		t.Fatalf("expected decimal point to stay inside its sentence, got %v", sentences)
	}
}

func TestSplitIntoParagraphsGroupsOfThree(t *testing.T) {
	t.Parallel()

	paragraphs := SplitIntoParagraphs("A. B. C. D. E. F. G.")
	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs for 7 sentences, got %d", len(paragraphs))
	}
	if paragraphs[0] != "A. B. C." {
		t.Fatalf("unexpected first paragraph: %q", paragraphs[0])
	}
	if paragraphs[2] != "G." {
		t.Fatalf("expected short final paragraph, got %q", paragraphs[2])
	}
}

func TestFromTextDocumentShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	document := FromText("One. Two. Three. Four.", now)

	if document.Version != Version {
		t.Fatalf("unexpected version: %q", document.Version)
	}
	if document.Time != now.UnixMilli() {
		t.Fatalf("expected millisecond timestamp %d, got %d", now.UnixMilli(), document.Time)
	}
	if len(document.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(document.Blocks))
	}
	for _, block := range document.Blocks {
		if block.Type != "paragraph" {
			t.Fatalf("unexpected block type: %q", block.Type)
		}
	}
}

func TestMarshalAndPlainTextRoundTrip(t *testing.T) {
	t.Parallel()

	document := FromText("One. Two. Three. Four.", time.Unix(0, 0))
	serialized, err := document.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal([]byte(serialized), &decoded); err != nil {
		t.Fatalf("serialized document is not valid JSON: %v", err)
	}

	if got := PlainText(serialized); got != "One. Two. Three. Four." {
		t.Fatalf("unexpected plain text: %q", got)
	}
}

func TestPlainTextOnGarbageReturnsEmpty(t *testing.T) {
	t.Parallel()

	if got := PlainText("not a document"); got != "" {
		t.Fatalf("expected empty string for non-document input, got %q", got)
	}
}
