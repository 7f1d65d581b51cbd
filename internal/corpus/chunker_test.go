package corpus

import (
	"strings"
	"testing"
)

func TestSplitText_ParagraphBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		config   ChunkConfig
		wantLen  int
		wantZero bool
	}{
		{
			name:     "empty input",
			text:     "",
			config:   DefaultChunkConfig(),
			wantZero: true,
		},
		{
			name:     "whitespace only",
			text:     "   \n\n\t  ",
			config:   DefaultChunkConfig(),
			wantZero: true,
		},
		{
			name:    "short text single chunk",
			text:    "Every package shall bear a declaration of net quantity.",
			config:  DefaultChunkConfig(),
			wantLen: 1,
		},
		{
			name:    "two paragraphs under target merge",
			text:    "Rule one text here.\n\nRule two text here.",
			config:  DefaultChunkConfig(),
			wantLen: 1,
		},
		{
			name:    "paragraphs split at target",
			text:    strings.Repeat("a", 40) + "\n\n" + strings.Repeat("b", 40) + "\n\n" + strings.Repeat("c", 40),
			config:  ChunkConfig{TargetSize: 100, Overlap: 0},
			wantLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.config)

			if tt.wantZero {
				if len(chunks) != 0 {
					t.Errorf("SplitText() got %d chunks, want 0", len(chunks))
				}
				return
			}

			if len(chunks) != tt.wantLen {
				t.Errorf("SplitText() got %d chunks, want %d", len(chunks), tt.wantLen)
				for i, c := range chunks {
					t.Errorf("  chunk[%d] (%d chars): %q", i, len(c), c)
				}
			}

			for i, chunk := range chunks {
				if strings.TrimSpace(chunk) == "" {
					t.Errorf("chunk[%d] is empty", i)
				}
			}
		})
	}
}

func TestSplitText_OversizedParagraphFallsBackToSentences(t *testing.T) {
	// One paragraph well past the target, made of short sentences.
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("This sentence pads out the paragraph with filler words. ")
	}
	text := sb.String()

	config := ChunkConfig{TargetSize: 200, Overlap: 0}
	chunks := SplitText(text, config)

	if len(chunks) < 2 {
		t.Fatalf("expected oversized paragraph to split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > config.TargetSize+50 {
			t.Errorf("chunk[%d] is %d chars, want <= ~%d", i, len(chunk), config.TargetSize)
		}
		if !strings.HasSuffix(strings.TrimSpace(chunk), ".") {
			t.Errorf("chunk[%d] does not end at a sentence boundary: %q", i, chunk)
		}
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	text := strings.Repeat("The declaration of retail sale price shall be printed legibly. ", 50)

	first := SplitText(text, DefaultChunkConfig())
	second := SplitText(text, DefaultChunkConfig())

	if len(first) != len(second) {
		t.Fatalf("runs disagree on chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk[%d] differs between runs", i)
		}
	}
}

func TestApplyOverlap_WordBoundary(t *testing.T) {
	chunks := []string{
		"The first chunk ends with these trailing words",
		"The second chunk begins here.",
	}

	result := applyOverlap(chunks, 20)

	if len(result) != 2 {
		t.Fatalf("got %d chunks, want 2", len(result))
	}
	if result[0] != chunks[0] {
		t.Errorf("first chunk should be unchanged, got %q", result[0])
	}
	if !strings.HasSuffix(result[1], "The second chunk begins here.") {
		t.Errorf("second chunk lost its own content: %q", result[1])
	}
	prefix := strings.TrimSuffix(result[1], " The second chunk begins here.")
	if strings.HasPrefix(prefix, "ailing") || strings.HasPrefix(prefix, "railing") {
		t.Errorf("overlap cut mid-word: %q", prefix)
	}
	if !strings.Contains(result[1], "trailing words") {
		t.Errorf("second chunk should carry the predecessor tail: %q", result[1])
	}
}

func TestApplyOverlap_EdgeCases(t *testing.T) {
	if got := applyOverlap(nil, 100); len(got) != 0 {
		t.Error("nil input should return empty output")
	}

	single := []string{"Only one chunk."}
	if got := applyOverlap(single, 100); len(got) != 1 || got[0] != "Only one chunk." {
		t.Error("single chunk should be unchanged")
	}

	two := []string{"First chunk.", "Second chunk."}
	if got := applyOverlap(two, 0); got[1] != "Second chunk." {
		t.Errorf("zero overlap should not modify chunks, got %q", got[1])
	}

	// Predecessor shorter than the overlap window is skipped entirely.
	short := []string{"Tiny.", "Second chunk."}
	if got := applyOverlap(short, 100); got[1] != "Second chunk." {
		t.Errorf("short predecessor should not produce overlap, got %q", got[1])
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"single sentence", "One sentence.", 1},
		{"three sentences", "First. Second! Third?", 3},
		{"no terminator", "trailing fragment without punctuation", 1},
		{"abbreviation not split", "See Rule 6 of the Rules, 2011. It applies here.", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if len(got) != tt.want {
				t.Errorf("splitSentences(%q) = %d sentences, want %d: %q", tt.text, len(got), tt.want, got)
			}
		})
	}
}
