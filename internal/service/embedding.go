package service

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingService produces query and document embeddings. The provider
// is optional: queries degrade to a deterministic pseudo-embedding so
// retrieval still returns something, documents are stored unembedded.
type EmbeddingService struct {
	client     EmbeddingClient
	dimensions int
}

func NewEmbeddingService(client EmbeddingClient, dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &EmbeddingService{client: client, dimensions: dimensions}
}

// EmbedQuery returns an embedding for a question. When the provider is
// missing or fails, it returns a deterministic unit vector seeded from
// the question text, so identical questions map to identical vectors.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, question string) []float32 {
	if s.client != nil {
		embedding, err := s.client.GenerateEmbedding(ctx, question)
		if err == nil && len(embedding) == s.dimensions {
			return embedding
		}
	}
	return fallbackEmbedding(question, s.dimensions)
}

// EmbedDocument returns an embedding for document content, or nil when
// the provider is missing or fails. Documents without an embedding are
// stored anyway and excluded from vector search.
func (s *EmbeddingService) EmbedDocument(ctx context.Context, content string) []float32 {
	if s.client == nil {
		return nil
	}
	embedding, err := s.client.GenerateEmbedding(ctx, content)
	if err != nil || len(embedding) != s.dimensions {
		return nil
	}
	return embedding
}

// fallbackEmbedding builds a unit-normalized vector from a PRNG seeded
// with a hash of the text.
func fallbackEmbedding(text string, dimensions int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum32())))

	vec := make([]float64, dimensions)
	var norm float64
	for i := range vec {
		vec[i] = rng.NormFloat64()
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, dimensions)
	for i := range vec {
		out[i] = float32(vec[i] / norm)
	}
	return out
}
