package document

import "strings"

// DefaultChunkWords is the word budget used by the embedding stage.
const DefaultChunkWords = 512

// Chunk splits text into segments of at most maxWords whitespace-delimited
// words. Segments never split a word; internal whitespace is collapsed.
func Chunk(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultChunkWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
