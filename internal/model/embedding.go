package model

import "time"

// EmbeddingRecord is a stored vector representation of a response text.
type EmbeddingRecord struct {
	ID         string            `json:"id" bson:"_id"`
	ResponseID string            `json:"responseId" bson:"responseId"`
	SubjectID  string            `json:"subjectId" bson:"subjectId"`
	Text       string            `json:"text" bson:"text"`
	Vector     []float64         `json:"vector" bson:"vector"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt" bson:"createdAt"`
}

// SimilarEmbedding pairs a record with its similarity to a query vector.
type SimilarEmbedding struct {
	Record     EmbeddingRecord `json:"record"`
	Similarity float64         `json:"similarity"`
}

// SearchHit is a formatted semantic search result.
type SearchHit struct {
	Text       string            `json:"text"`
	ResponseID string            `json:"responseId"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// ChatAnswer is a grounded answer to an instructor's question.
type ChatAnswer struct {
	Query   string      `json:"query"`
	Answer  string      `json:"answer"`
	Sources []SearchHit `json:"sources"`
}
