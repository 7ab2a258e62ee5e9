package matcher

import (
	"context"
	"fmt"
	"sync"
)

// StaticEmbedder serves embeddings from a fixed table, keyed by exact
// text. It backs tests and offline runs where no embeddings API is
// reachable; unknown text is an error so misses cannot silently match.
type StaticEmbedder struct {
	vectors map[string][]float32
	mu      sync.RWMutex
}

// NewStaticEmbedder creates an embedder over a fixed text-to-vector table.
func NewStaticEmbedder(vectors map[string][]float32) *StaticEmbedder {
	if vectors == nil {
		vectors = make(map[string][]float32)
	}
	return &StaticEmbedder{vectors: vectors}
}

// Add registers a vector for a text.
func (e *StaticEmbedder) Add(text string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors[text] = vec
}

// Embed returns the registered vector for the text.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	vec, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no embedding registered for %q", text)
	}
	return vec, nil
}
