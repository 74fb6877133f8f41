package repository

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"classpulse/internal/model"
)

// EmbeddingRepo stores and queries response embeddings.
type EmbeddingRepo interface {
	Insert(ctx context.Context, record *model.EmbeddingRecord) error

	// FindSimilar returns embeddings for a subject ordered by cosine
	// similarity to the query vector, keeping those at or above the
	// threshold. A nil or zero query vector with a zero threshold therefore
	// acts as "fetch all", capped at limit.
	FindSimilar(ctx context.Context, queryVector []float64, subjectID string, limit int, threshold float64) ([]model.SimilarEmbedding, error)
}

type embeddingRepo struct {
	collection *mongo.Collection
}

func NewEmbeddingRepo(db *mongo.Database) EmbeddingRepo {
	return &embeddingRepo{
		collection: db.Collection("response_embeddings"),
	}
}

func (r *embeddingRepo) Insert(ctx context.Context, record *model.EmbeddingRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *embeddingRepo) FindSimilar(ctx context.Context, queryVector []float64, subjectID string, limit int, threshold float64) ([]model.SimilarEmbedding, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"subjectId": subjectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.EmbeddingRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	// Similarity is computed client-side; the driver has no vector index.
	results := make([]model.SimilarEmbedding, 0, len(records))
	for _, rec := range records {
		sim := cosineSimilarity(queryVector, rec.Vector)
		if sim >= threshold {
			results = append(results, model.SimilarEmbedding{Record: rec, Similarity: sim})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
