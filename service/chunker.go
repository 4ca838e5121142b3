package service

import "strings"

// DefaultChunkSize is the target maximum chunk length in characters
// used during document ingestion
const DefaultChunkSize = 1000

// SplitIntoChunks splits text into ordered, non-overlapping chunks of
// at most maxSize characters, breaking at sentence boundaries. A
// single sentence longer than maxSize becomes its own oversized chunk
// rather than being split mid-sentence. Chunk order follows source
// order; joining the chunks back together reproduces the input text
// modulo whitespace.
func SplitIntoChunks(text string, maxSize int) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > maxSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitSentences cuts text after runs of terminal punctuation. Any
// trailing fragment without terminal punctuation is kept as a final
// sentence so no text is lost.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])

		if !isTerminal(runes[i]) {
			continue
		}
		// Consume the rest of a punctuation run ("?!", "...")
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		// Only end the sentence at a real boundary, not inside "3.14"
		if i+1 == len(runes) || isSpace(runes[i+1]) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
