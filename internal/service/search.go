package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"classpulse/internal/model"
	"classpulse/internal/repository"
)

const defaultSearchLimit = 20

// SearchService answers semantic queries over stored response embeddings and
// indexes new response texts.
type SearchService struct {
	embeddings repository.EmbeddingRepo
	llm        LLMProvider
	logger     *zap.Logger
}

func NewSearchService(embeddings repository.EmbeddingRepo, llm LLMProvider, logger *zap.Logger) *SearchService {
	return &SearchService{
		embeddings: embeddings,
		llm:        llm,
		logger:     logger,
	}
}

// Search embeds the query and returns the most similar responses for the
// subject at or above the similarity threshold.
func (s *SearchService) Search(ctx context.Context, query, subjectID string, limit int, threshold float64) ([]model.SearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := s.llm.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.embeddings.FindSimilar(ctx, vector, subjectID, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("searching embeddings: %w", err)
	}

	hits := make([]model.SearchHit, len(results))
	for i, r := range results {
		hits[i] = model.SearchHit{
			Text:       r.Record.Text,
			ResponseID: r.Record.ResponseID,
			Similarity: r.Similarity,
			Metadata:   r.Record.Metadata,
			CreatedAt:  r.Record.CreatedAt,
		}
	}

	s.logger.Info("semantic search completed",
		zap.String("subjectId", subjectID),
		zap.Int("hits", len(hits)))
	return hits, nil
}

// Index embeds a response text and stores it for later search and
// clustering.
func (s *SearchService) Index(ctx context.Context, subjectID, responseID, text string, metadata map[string]string) error {
	vector, err := s.llm.EmbedText(ctx, text)
	if err != nil {
		return err
	}

	record := &model.EmbeddingRecord{
		ResponseID: responseID,
		SubjectID:  subjectID,
		Text:       text,
		Vector:     vector,
		Metadata:   metadata,
	}
	if err := s.embeddings.Insert(ctx, record); err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}
	return nil
}
