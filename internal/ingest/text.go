package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultChunkSize is the largest chunk ChunkText produces by default.
const DefaultChunkSize = 4000

// CleanText collapses all whitespace runs to single spaces and removes NUL
// bytes.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.Join(strings.Fields(text), " ")
}

// ChunkText splits text on word boundaries into chunks of at most max
// bytes. Text that already fits is returned as a single chunk. A single
// word longer than max becomes its own chunk.
func ChunkText(text string, max int) []string {
	if max <= 0 {
		max = DefaultChunkSize
	}
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	var cur []string
	size := 0
	for _, w := range strings.Fields(text) {
		n := len(w) + 1
		if size+n > max && len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, " "))
			cur, size = nil, 0
		}
		cur = append(cur, w)
		size += n
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// ContentHash identifies study material for question-set caching.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
