package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"classpulse/internal/model"
	"classpulse/internal/repository"
)

const (
	chatContextSize      = 8
	chatContextThreshold = 0.5
)

// ChatService answers instructor questions about their feedback, grounded in
// the most similar stored responses.
type ChatService struct {
	embeddings repository.EmbeddingRepo
	llm        LLMProvider
	logger     *zap.Logger
}

func NewChatService(embeddings repository.EmbeddingRepo, llm LLMProvider, logger *zap.Logger) *ChatService {
	return &ChatService{
		embeddings: embeddings,
		llm:        llm,
		logger:     logger,
	}
}

// Ask retrieves relevant student quotes and answers the question from them.
func (s *ChatService) Ask(ctx context.Context, subjectID, query string) (*model.ChatAnswer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.ValidationError{Message: "query must not be empty"}
	}

	vector, err := s.llm.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.embeddings.FindSimilar(ctx, vector, subjectID, chatContextSize, chatContextThreshold)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	sources := make([]model.SearchHit, len(results))
	quotes := make([]string, len(results))
	for i, r := range results {
		sources[i] = model.SearchHit{
			Text:       r.Record.Text,
			ResponseID: r.Record.ResponseID,
			Similarity: r.Similarity,
			Metadata:   r.Record.Metadata,
			CreatedAt:  r.Record.CreatedAt,
		}
		quotes[i] = "Student: " + r.Record.Text
	}

	answer, err := s.llm.Complete(ctx, buildChatPrompt(query, quotes))
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat query answered",
		zap.String("subjectId", subjectID),
		zap.Int("sources", len(sources)))

	return &model.ChatAnswer{
		Query:   query,
		Answer:  answer,
		Sources: sources,
	}, nil
}

func buildChatPrompt(query string, quotes []string) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant helping a course instructor understand student feedback.\n")
	sb.WriteString("Answer the question using only the student quotes below. ")
	sb.WriteString("If the quotes do not cover the question, say so.\n\n")
	if len(quotes) > 0 {
		sb.WriteString("Quotes:\n")
		sb.WriteString(strings.Join(quotes, "\n"))
		sb.WriteString("\n")
	} else {
		sb.WriteString("No relevant quotes were found.\n")
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
