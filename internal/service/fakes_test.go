package service

import (
	"context"
	"time"

	"classpulse/internal/llm"
	"classpulse/internal/model"
)

type fakeResponseRepo struct {
	texts      []model.TextResponse
	ratings    []model.StarRating
	textsErr   error
	ratingsErr error
}

func (f *fakeResponseRepo) GetTextResponses(_ context.Context, _ string, _ *time.Time) ([]model.TextResponse, error) {
	return f.texts, f.textsErr
}

func (f *fakeResponseRepo) GetStarRatings(_ context.Context, _ string) ([]model.StarRating, error) {
	return f.ratings, f.ratingsErr
}

func (f *fakeResponseRepo) ActiveSubjectIDs(_ context.Context, _ time.Time) ([]string, error) {
	return nil, nil
}

// fakeProvider answers all LLM calls from canned fields. Label and keyword
// fields are read concurrently by labelClusters, so they must not be written
// after the service starts.
type fakeProvider struct {
	completion   *llm.SentimentCompletion
	analyzeErr   error
	analyzeCalls int
	lastTexts    []string

	label    string
	labelErr error

	keywords    []string
	keywordsErr error

	completeText  string
	completeErr   error
	completeCalls int

	vector   []float64
	embedErr error
}

func (f *fakeProvider) AnalyzeSentiment(_ context.Context, _ string, texts []string) (*llm.SentimentCompletion, error) {
	f.analyzeCalls++
	f.lastTexts = texts
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.completion, nil
}

func (f *fakeProvider) GenerateClusterLabel(_ context.Context, _ []string) (string, error) {
	return f.label, f.labelErr
}

func (f *fakeProvider) ExtractKeywords(_ context.Context, _ []string) ([]string, error) {
	return f.keywords, f.keywordsErr
}

func (f *fakeProvider) Complete(_ context.Context, _ string) (string, error) {
	f.completeCalls++
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeText, nil
}

func (f *fakeProvider) EmbedText(_ context.Context, _ string) ([]float64, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.vector, nil
}

type fakeEmbeddingRepo struct {
	records  []model.EmbeddingRecord
	findErr  error
	inserted []model.EmbeddingRecord
}

func (f *fakeEmbeddingRepo) Insert(_ context.Context, record *model.EmbeddingRecord) error {
	f.inserted = append(f.inserted, *record)
	return nil
}

func (f *fakeEmbeddingRepo) FindSimilar(_ context.Context, _ []float64, _ string, limit int, _ float64) ([]model.SimilarEmbedding, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]model.SimilarEmbedding, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, model.SimilarEmbedding{Record: r, Similarity: 1})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type analyzeOutcome struct {
	result *model.SentimentResult
	err    error
}

// fakeAnalyzer pops one outcome per Analyze call, per subject. An exhausted
// queue reports insufficient data.
type fakeAnalyzer struct {
	bySubject map[string][]analyzeOutcome
	calls     int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, subjectID string, _ int) (*model.SentimentResult, error) {
	f.calls++
	queue := f.bySubject[subjectID]
	if len(queue) == 0 {
		return nil, &model.InsufficientDataError{
			Op:          "sentiment analysis",
			MinRequired: minResponsesForSentiment,
			Actual:      0,
		}
	}
	out := queue[0]
	f.bySubject[subjectID] = queue[1:]
	return out.result, out.err
}

type fakeClusterer struct {
	result *model.ClusterResult
	err    error
}

func (f *fakeClusterer) Cluster(_ context.Context, _ string, _ int) (*model.ClusterResult, error) {
	return f.result, f.err
}

type fakeRiskPredictor struct {
	report *model.RiskReport
	err    error
}

func (f *fakeRiskPredictor) PredictRisks(_ context.Context, _ string, _ int) (*model.RiskReport, error) {
	return f.report, f.err
}

func historyResult(score float64, responses int) *model.SentimentResult {
	return &model.SentimentResult{
		OverallScore:   score,
		TotalResponses: responses,
		Label:          LabelFromScore(score),
	}
}
