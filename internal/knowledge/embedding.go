package knowledge

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const embeddingDims = 256

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_\-]+`)

// embedText builds a character-trigram vector with token-level boosts.
// Deterministic and dependency-free; good enough to rank a small
// knowledge base, which is all the retrieval contract asks for.
func embedText(text string) []float32 {
	vec := make([]float32, embeddingDims)
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return vec
	}
	window := "#" + normalized + "#"
	for i := 0; i+3 <= len(window); i++ {
		gram := window[i : i+3]
		h := fnv.New64a()
		_, _ = h.Write([]byte(gram))
		idx := int(h.Sum64() % uint64(embeddingDims))
		vec[idx]++
	}
	for _, token := range tokenPattern.FindAllString(normalized, -1) {
		h := fnv.New64a()
		_, _ = h.Write([]byte("tok:" + token))
		idx := int(h.Sum64() % uint64(embeddingDims))
		vec[idx] += 1.25
	}
	normalizeVector(vec)
	return vec
}

func normalizeVector(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	// Vectors are already normalized.
	return dot
}
