package summarize

import (
	"math"
	"strings"
)

const (
	// ChunkSize is the window length, in characters, of one summarization input.
	ChunkSize = 1000

	// MinWords is the shortest article, in words, worth summarizing.
	MinWords = 50

	minMaxLength = 5
	minMinLength = 3
)

// Chunks cuts text into consecutive windows of size characters. The cut is
// a hard one: words and sentences may be split. The last window may be
// shorter. Joining the result gives back text unchanged.
func Chunks(text string, size int) []string {
	if size <= 0 {
		size = ChunkSize
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// LengthBounds derives the summary length limits for a chunk of the given
// word count: max is half the words (at least 5), min a fifth (at least 3).
func LengthBounds(words int) (maxLength, minLength int) {
	maxLength = max(minMaxLength, int(math.Round(0.5*float64(words))))
	minLength = max(minMinLength, int(math.Round(0.2*float64(words))))
	return maxLength, minLength
}
