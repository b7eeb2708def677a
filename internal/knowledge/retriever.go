// Package knowledge implements the passage-retrieval engine over the
// product knowledge base: markdown chunked by section and ranked by
// embedding similarity.
package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

//go:embed knowledge.md
var defaultKnowledge string

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTopK         = 3
)

type chunk struct {
	text   string
	vector []float32
}

// Retriever holds the chunked, pre-embedded knowledge base. Read-only
// after construction, safe for concurrent use.
type Retriever struct {
	chunks []chunk
}

// NewRetriever builds the index from the markdown file at path, or from
// the embedded default knowledge base when path is empty.
func NewRetriever(path string, chunkSize, overlap int) (*Retriever, error) {
	content := defaultKnowledge
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read knowledge base: %w", err)
		}
		content = string(data)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}

	pieces := splitChunks(content, chunkSize, overlap)
	chunks := make([]chunk, 0, len(pieces))
	for _, text := range pieces {
		chunks = append(chunks, chunk{text: text, vector: embedText(text)})
	}

	slog.Info("Knowledge base indexed", "chunks", len(chunks))
	return &Retriever{chunks: chunks}, nil
}

// Retrieve returns the top-k chunks ranked by similarity to the query.
// An empty index or query yields an empty result, not an error.
func (r *Retriever) Retrieve(_ context.Context, query string, k int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(r.chunks) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	queryVec := embedText(query)
	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(r.chunks))
	for _, c := range r.chunks {
		ranked = append(ranked, scored{text: c.text, score: cosineSimilarity(queryVec, c.vector)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	results := make([]string, 0, k)
	for _, s := range ranked[:k] {
		results = append(results, s.text)
	}
	return results, nil
}

// splitChunks breaks markdown into section-aligned chunks of at most
// chunkSize bytes, carrying overlap bytes of trailing context between
// adjacent chunks within a section.
func splitChunks(content string, chunkSize, overlap int) []string {
	var chunks []string
	for _, section := range splitSections(content) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if len(section) <= chunkSize {
			chunks = append(chunks, section)
			continue
		}
		start := 0
		for start < len(section) {
			end := start + chunkSize
			if end >= len(section) {
				chunks = append(chunks, strings.TrimSpace(section[start:]))
				break
			}
			// Break on the last whitespace inside the window to keep
			// words intact.
			cut := strings.LastIndexAny(section[start:end], " \n")
			if cut <= 0 {
				cut = chunkSize
			}
			chunks = append(chunks, strings.TrimSpace(section[start:start+cut]))
			advance := cut - overlap
			if advance < 1 {
				advance = cut
			}
			start += advance
		}
	}
	return chunks
}

func splitSections(content string) []string {
	var sections []string
	current := strings.Builder{}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}
