package service

import (
	"strings"
	"testing"
)

func TestSplitIntoChunksRespectsMaxSize(t *testing.T) {
	// 50 sentences of ~50 characters gives ~2500 characters total
	sentence := "The contractor failed to deliver the agreed work."
	var b strings.Builder
	for i := 0; i < 50; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
	}
	text := b.String()

	chunks := SplitIntoChunks(text, 1000)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for %d chars, got %d", len(text), len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1000 {
			t.Errorf("chunk %d exceeds max size: %d chars", i, len(chunk))
		}
	}
}

func TestSplitIntoChunksRoundTrip(t *testing.T) {
	text := "First sentence. Second one!   Third, with a 3.14 number inside? And a trailing fragment without punctuation"

	chunks := SplitIntoChunks(text, 50)

	joined := strings.Join(chunks, " ")
	if got, want := strings.Fields(joined), strings.Fields(text); !equalStrings(got, want) {
		t.Fatalf("round trip lost text:\n got: %q\nwant: %q", joined, text)
	}
}

func TestSplitIntoChunksPreservesTrailingFragment(t *testing.T) {
	chunks := SplitIntoChunks("Complete sentence. unfinished trailing thought", 100)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "unfinished trailing thought") {
		t.Errorf("trailing fragment dropped: %q", chunks[0])
	}
}

func TestSplitIntoChunksOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end." // ~304 chars, one sentence
	text := "Short intro. " + long + " Short outro."

	chunks := SplitIntoChunks(text, 100)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, "end.") && len(chunk) > 100 {
			found = true
			if strings.Contains(chunk, "Short intro") || strings.Contains(chunk, "Short outro") {
				t.Errorf("oversized sentence was merged with neighbors: %q", chunk)
			}
		}
	}
	if !found {
		t.Fatal("oversized sentence was split or dropped")
	}
}

func TestSplitIntoChunksKeepsOrder(t *testing.T) {
	text := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five."

	chunks := SplitIntoChunks(text, 25)

	joined := strings.Join(chunks, " ")
	for _, pair := range [][2]string{{"Alpha", "Beta"}, {"Beta", "Gamma"}, {"Gamma", "Delta"}, {"Delta", "Epsilon"}} {
		if strings.Index(joined, pair[0]) > strings.Index(joined, pair[1]) {
			t.Errorf("order broken: %s should come before %s", pair[0], pair[1])
		}
	}
}

func TestSplitIntoChunksEmptyInput(t *testing.T) {
	if chunks := SplitIntoChunks("", 1000); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %v", chunks)
	}
	if chunks := SplitIntoChunks("   \n\t  ", 1000); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %v", chunks)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
