package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"classpulse/internal/model"
	"classpulse/internal/repository"
)

const (
	minResponsesForSentiment = 5
	maxResponsesToLLM        = 50
	defaultPeriodDays        = 30
)

// SentimentService runs the sentiment analysis pipeline for a subject.
type SentimentService struct {
	responses repository.ResponseRepo
	llm       LLMProvider
	logger    *zap.Logger
}

func NewSentimentService(responses repository.ResponseRepo, llm LLMProvider, logger *zap.Logger) *SentimentService {
	return &SentimentService{
		responses: responses,
		llm:       llm,
		logger:    logger,
	}
}

// Analyze fetches responses for the period, scores them via the LLM, fuses
// the result with the star-derived score and assembles the full result.
// Fails with InsufficientDataError when fewer than 5 text responses exist in
// the period.
func (s *SentimentService) Analyze(ctx context.Context, subjectID string, periodDays int) (*model.SentimentResult, error) {
	if periodDays <= 0 {
		periodDays = defaultPeriodDays
	}

	periodEnd := time.Now()
	periodStart := periodEnd.AddDate(0, 0, -periodDays)

	s.logger.Info("analyzing sentiment",
		zap.String("subjectId", subjectID),
		zap.Int("periodDays", periodDays))

	responses, err := s.responses.GetTextResponses(ctx, subjectID, &periodStart)
	if err != nil {
		return nil, fmt.Errorf("fetching responses: %w", err)
	}
	if len(responses) < minResponsesForSentiment {
		return nil, &model.InsufficientDataError{
			Op:          "sentiment analysis",
			MinRequired: minResponsesForSentiment,
			Actual:      len(responses),
		}
	}

	// Star ratings are intentionally unbounded by the period.
	ratings, err := s.responses.GetStarRatings(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("fetching star ratings: %w", err)
	}
	starScore := StarsToScore(ratings)

	// Up to 50 texts, in input order (newest first from the repository).
	texts := make([]string, 0, maxResponsesToLLM)
	for _, r := range responses {
		texts = append(texts, r.Text)
		if len(texts) == maxResponsesToLLM {
			break
		}
	}

	// Subject names live in the backend that owns subjects; the id is the
	// stable handle available here.
	completion, err := s.llm.AnalyzeSentiment(ctx, subjectID, texts)
	if err != nil {
		return nil, err
	}

	combined := FuseScores(completion.OverallScore, starScore)
	distribution := ComputeDistribution(ratings)

	result := &model.SentimentResult{
		SubjectID:          subjectID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		OverallScore:       combined,
		Confidence:         completion.Confidence,
		Label:              LabelFromScore(combined),
		PositivePercentage: distribution.Positive,
		NeutralPercentage:  distribution.Neutral,
		NegativePercentage: distribution.Negative,
		TrendPercentage:    nil, // no prior-period comparison yet
		PositivePoints:     completion.PositivePoints,
		NegativePoints:     completion.NegativePoints,
		Recommendations:    completion.Recommendations,
		PositiveEvidence:   ExtractEvidence(responses, completion.PositivePoints),
		NegativeEvidence:   ExtractEvidence(responses, completion.NegativePoints),
		TotalResponses:     len(responses),
		StarAverage:        starScore,
		Themes:             []model.Cluster{},
	}

	s.logger.Info("sentiment analysis completed",
		zap.String("subjectId", subjectID),
		zap.Float64("score", combined),
		zap.String("label", result.Label))

	return result, nil
}
