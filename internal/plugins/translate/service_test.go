package translate

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkTextShort(t *testing.T) {
	chunks := chunkText("Hello world", maxChunkLen)
	if len(chunks) != 1 || chunks[0] != "Hello world" {
		t.Errorf("expected single chunk, got %v", chunks)
	}
}

func TestChunkTextSplitsAtWhitespace(t *testing.T) {
	words := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	chunks := chunkText(words, maxChunkLen)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > maxChunkLen {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(chunk))
		}
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk %d has leftover whitespace: %q", i, chunk)
		}
	}

	rejoined := strings.Join(chunks, " ")
	if rejoined != strings.TrimSpace(words) {
		t.Error("expected chunks to rejoin into the source text")
	}
}

func TestChunkTextLongWord(t *testing.T) {
	word := strings.Repeat("a", maxChunkLen*2+10)
	chunks := chunkText(word, maxChunkLen)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for an unbreakable word, got %d", len(chunks))
	}
	if got := strings.Join(chunks, ""); got != word {
		t.Error("expected mid-word split to preserve every byte")
	}
}

func TestChunkTextLongWordKeepsRunesWhole(t *testing.T) {
	// One unbroken run of three-byte runes, longer than the limit and
	// never space-breakable. 490 is not a multiple of three, so a naive
	// byte cut would split a rune; every chunk must stay whole.
	word := strings.Repeat("語", 400)
	chunks := chunkText(word, maxChunkLen)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	var rejoined strings.Builder
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c[:8])
		}
		if len(c) > maxChunkLen {
			t.Errorf("chunk %d is %d bytes, over the limit", i, len(c))
		}
		rejoined.WriteString(c)
	}
	if rejoined.String() != word {
		t.Error("chunks do not reassemble into the source text")
	}
}
