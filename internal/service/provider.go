package service

import (
	"context"

	"classpulse/internal/llm"
)

// LLMProvider is the language-model and embedding surface the pipelines
// consume. Implemented by llm.Client; faked in tests.
type LLMProvider interface {
	AnalyzeSentiment(ctx context.Context, subjectName string, responses []string) (*llm.SentimentCompletion, error)
	GenerateClusterLabel(ctx context.Context, examples []string) (string, error)
	ExtractKeywords(ctx context.Context, texts []string) ([]string, error)
	Complete(ctx context.Context, prompt string) (string, error)
	EmbedText(ctx context.Context, text string) ([]float64, error)
}
