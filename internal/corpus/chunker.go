// Package corpus builds and queries the persisted rule-corpus vector index.
package corpus

import (
	"strings"
	"unicode"
)

// ChunkConfig defines chunking parameters for the rule corpus.
type ChunkConfig struct {
	// TargetSize is the ideal chunk size in characters.
	TargetSize int
	// Overlap is the character overlap between adjacent chunks. Overlap
	// prevents rule statements from being truncated across a boundary.
	Overlap int
}

// DefaultChunkConfig returns the corpus chunking defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		TargetSize: 1000,
		Overlap:    100,
	}
}

// SplitText splits corpus text into overlapping chunks of roughly
// TargetSize characters, preferring paragraph boundaries and falling back to
// sentence boundaries for oversized paragraphs. Deterministic for a given
// input and config.
func SplitText(text string, config ChunkConfig) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		// Flush before a paragraph that would push past the target.
		if current.Len() > 0 && current.Len()+len(para) > config.TargetSize {
			flush()
		}

		// A single paragraph past the target splits at sentences.
		if len(para) > config.TargetSize {
			flush()
			for _, sc := range splitBySentences(para, config.TargetSize) {
				chunks = append(chunks, sc)
			}
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return applyOverlap(chunks, config.Overlap)
}

// splitBySentences packs sentences into chunks no larger than target.
func splitBySentences(text string, target int) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(sentence) > target {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// splitSentences splits text at sentence-ending punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				// Skip likely abbreviations such as "Govt."
				if i > 1 && unicode.IsUpper(runes[i-1]) {
					continue
				}
				sentences = append(sentences, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}

// applyOverlap prefixes each chunk after the first with the tail of its
// predecessor, trimmed to a word boundary.
func applyOverlap(chunks []string, overlap int) []string {
	if overlap <= 0 || len(chunks) <= 1 {
		return chunks
	}

	result := make([]string, len(chunks))
	copy(result, chunks)

	for i := 1; i < len(result); i++ {
		prev := result[i-1]
		if len(prev) <= overlap {
			continue
		}
		tail := prev[len(prev)-overlap:]
		// The window may start mid-word; drop the partial leading word.
		if spaceIdx := strings.Index(tail, " "); spaceIdx >= 0 {
			tail = tail[spaceIdx+1:]
		}
		result[i] = tail + " " + result[i]
	}

	return result
}
