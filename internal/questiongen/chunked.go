package questiongen

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/smartquiz/internal/ingest"
)

// DefaultMaxChunks caps how many chunks of long material RunChunked draws
// questions from.
const DefaultMaxChunks = 3

// RunChunked splits long material into chunks of at most chunkSize runes
// and spreads the requested count over the first maxChunks of them, so
// questions are not all drawn from the opening of a long document. Short
// material is a single Run.
func (c *Chain) RunChunked(ctx context.Context, input GenerateInput, chunkSize, maxChunks int) (*Result, error) {
	chunks := ingest.ChunkText(input.Content, chunkSize)
	if len(chunks) <= 1 {
		return c.Run(ctx, input)
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}

	count := input.count()
	n := min(len(chunks), maxChunks, count)
	per, extra := count/n, count%n

	out := &Result{}
	var sources []string
	for i := range n {
		part := input
		part.Content = chunks[i]
		part.Count = per
		if i < extra {
			part.Count++
		}

		res, err := c.Run(ctx, part)
		if err != nil {
			return nil, err
		}
		out.Questions = append(out.Questions, res.Questions...)
		out.Fallbacks = append(out.Fallbacks, res.Fallbacks...)
		if !slices.Contains(sources, res.Source) {
			sources = append(sources, res.Source)
		}
	}
	out.Source = strings.Join(sources, "+")
	c.logger.Debug("generated questions from chunks", "chunks", n, "of", len(chunks), "count", len(out.Questions))
	return out, nil
}

// CacheKey identifies a generation request for the question cache: the
// content hash combined with the resolved count and types.
func (in GenerateInput) CacheKey() string {
	types := in.types()
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = string(t)
	}
	return ingest.ContentHash(fmt.Sprintf("%d|%s|%s", in.count(), strings.Join(labels, ","), in.Content))
}
