package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"classpulse/internal/cache"
	"classpulse/internal/model"
)

const (
	summaryCacheTTL       = time.Hour
	minSubjectsForCompare = 2
	significantSpread     = 0.3
)

type clusterer interface {
	Cluster(ctx context.Context, subjectID string, requestedClusters int) (*model.ClusterResult, error)
}

type riskPredictor interface {
	PredictRisks(ctx context.Context, subjectID string, lookbackDays int) (*model.RiskReport, error)
}

// AnalysisFacade composes the analysis pipelines into the operations the API
// and job layers consume.
type AnalysisFacade struct {
	sentiment sentimentAnalyzer
	clusters  clusterer
	insights  *InsightService
	risks     riskPredictor
	cache     cache.AnalysisCache
	llm       LLMProvider
	logger    *zap.Logger
}

func NewAnalysisFacade(
	sentiment *SentimentService,
	clusters *ClusterService,
	insights *InsightService,
	risks *RiskService,
	analysisCache cache.AnalysisCache,
	llm LLMProvider,
	logger *zap.Logger,
) *AnalysisFacade {
	return &AnalysisFacade{
		sentiment: sentiment,
		clusters:  clusters,
		insights:  insights,
		risks:     risks,
		cache:     analysisCache,
		llm:       llm,
		logger:    logger,
	}
}

// AnalyzeSentiment runs sentiment analysis and attaches themes best-effort:
// too little data for clustering leaves the theme list empty rather than
// failing the whole operation.
func (f *AnalysisFacade) AnalyzeSentiment(ctx context.Context, subjectID string, periodDays int) (*model.SentimentResult, error) {
	sentiment, err := f.sentiment.Analyze(ctx, subjectID, periodDays)
	if err != nil {
		return nil, err
	}

	themes, err := f.clusters.Cluster(ctx, subjectID, defaultClusterCount)
	if err != nil {
		var insufficient *model.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return nil, err
		}
		f.logger.Info("not enough data for theme clustering",
			zap.String("subjectId", subjectID))
		sentiment.Themes = []model.Cluster{}
		return sentiment, nil
	}

	sentiment.Themes = themes.Clusters
	return sentiment, nil
}

// GenerateComprehensiveInsights combines sentiment, themes and the insight
// rules into one timestamped report.
func (f *AnalysisFacade) GenerateComprehensiveInsights(ctx context.Context, subjectID string, periodDays int) (*model.InsightReport, error) {
	sentiment, err := f.sentiment.Analyze(ctx, subjectID, periodDays)
	if err != nil {
		return nil, err
	}

	themes, err := f.clusters.Cluster(ctx, subjectID, defaultClusterCount)
	if err != nil {
		var insufficient *model.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return nil, err
		}
		themes = &model.ClusterResult{Clusters: []model.Cluster{}}
	}

	return &model.InsightReport{
		SubjectID:   subjectID,
		PeriodDays:  periodDays,
		Sentiment:   sentiment,
		Themes:      themes.Clusters,
		Insights:    f.insights.Generate(sentiment, themes),
		GeneratedAt: time.Now(),
	}, nil
}

// CompareSubjects analyzes each subject and ranks them by overall score.
// Subjects with too little data are skipped; at least 2 must succeed.
func (f *AnalysisFacade) CompareSubjects(ctx context.Context, subjectIDs []string, periodDays int) (*model.Comparison, error) {
	if len(subjectIDs) < minSubjectsForCompare {
		return nil, &model.ValidationError{Message: "need at least 2 subjects to compare"}
	}

	f.logger.Info("comparing subjects", zap.Int("subjects", len(subjectIDs)))

	analyses := make(map[string]*model.SentimentResult, len(subjectIDs))
	ordered := make([]string, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		analysis, err := f.sentiment.Analyze(ctx, id, periodDays)
		if err != nil {
			var insufficient *model.InsufficientDataError
			if errors.As(err, &insufficient) {
				f.logger.Warn("insufficient data for subject",
					zap.String("subjectId", id))
				continue
			}
			return nil, err
		}
		analyses[id] = analysis
		ordered = append(ordered, id)
	}

	if len(analyses) < minSubjectsForCompare {
		return nil, &model.InsufficientDataError{
			Op:          "subject comparison",
			MinRequired: minSubjectsForCompare,
			Actual:      len(analyses),
		}
	}

	// First strictly-greater score wins, so ties resolve by input order.
	winner := ordered[0]
	minScore := analyses[winner].OverallScore
	maxScore := minScore
	for _, id := range ordered[1:] {
		score := analyses[id].OverallScore
		if score > maxScore {
			maxScore = score
			winner = id
		}
		if score < minScore {
			minScore = score
		}
	}

	var keyDifferences []string
	if spread := maxScore - minScore; spread > significantSpread {
		keyDifferences = append(keyDifferences, fmt.Sprintf("Significant sentiment spread: %.2f", spread))
	}

	return &model.Comparison{
		SubjectsCompared: len(analyses),
		Analyses:         analyses,
		Winner:           winner,
		KeyDifferences:   keyDifferences,
	}, nil
}

// PredictRisks delegates to the risk model.
func (f *AnalysisFacade) PredictRisks(ctx context.Context, subjectID string, lookbackDays int) (*model.RiskReport, error) {
	return f.risks.PredictRisks(ctx, subjectID, lookbackDays)
}

// GenerateAlerts produces the pushable subset of insights. Analysis errors
// degrade to an empty alert list so batch callers keep going.
func (f *AnalysisFacade) GenerateAlerts(ctx context.Context, subjectID string, periodDays int) ([]model.Alert, error) {
	report, err := f.GenerateComprehensiveInsights(ctx, subjectID, periodDays)
	if err != nil {
		f.logger.Error("insight generation failed for alerts",
			zap.String("subjectId", subjectID),
			zap.Error(err))
		return []model.Alert{}, nil
	}

	alerts := f.insights.ExtractAlerts(subjectID, report.Insights, time.Now())
	f.logger.Info("alerts generated",
		zap.String("subjectId", subjectID),
		zap.Int("alerts", len(alerts)))
	return alerts, nil
}

// GenerateSummary produces short and detailed textual digests, cached for an
// hour per subject and period.
func (f *AnalysisFacade) GenerateSummary(ctx context.Context, subjectID string, periodDays int) (*model.Summary, error) {
	key := fmt.Sprintf("feedback_summary_%s_%d", subjectID, periodDays)

	if raw, err := f.cache.Get(ctx, key); err == nil && raw != nil {
		var cached model.Summary
		if err := json.Unmarshal(raw, &cached); err == nil {
			f.logger.Info("using cached summary", zap.String("subjectId", subjectID))
			return &cached, nil
		}
	}

	report, err := f.GenerateComprehensiveInsights(ctx, subjectID, periodDays)
	if err != nil {
		var insufficient *model.InsufficientDataError
		if errors.As(err, &insufficient) {
			return &model.Summary{
				Summary:     "Not enough data to generate a summary.",
				FullSummary: "Not enough student responses in this period.",
				GeneratedAt: time.Now(),
			}, nil
		}
		return nil, err
	}

	short, err := f.llm.Complete(ctx, buildShortSummaryPrompt(report))
	if err != nil {
		f.logger.Error("short summary generation failed", zap.Error(err))
		short = "Summary unavailable."
	}
	full, err := f.llm.Complete(ctx, buildFullSummaryPrompt(report))
	if err != nil {
		f.logger.Error("full summary generation failed", zap.Error(err))
		full = "Detailed summary unavailable."
	}

	summary := &model.Summary{
		Summary:     short,
		FullSummary: full,
		GeneratedAt: time.Now(),
	}

	if err := f.cache.Set(ctx, key, summary, time.Now().Add(summaryCacheTTL)); err != nil {
		f.logger.Warn("caching summary failed", zap.Error(err))
	}
	return summary, nil
}

func buildShortSummaryPrompt(report *model.InsightReport) string {
	return fmt.Sprintf(`Write a short summary (2-3 sentences) of the student feedback for this course.

Overall sentiment: %.2f (scale -1 to 1)
Themes identified: %d
Insights: %d

Short summary (factual and actionable):`,
		report.Sentiment.OverallScore, len(report.Themes), len(report.Insights))
}

func buildFullSummaryPrompt(report *model.InsightReport) string {
	actionable := 0
	for _, in := range report.Insights {
		if in.Priority == model.PriorityHigh || in.Priority == model.PriorityUrgent {
			actionable++
		}
	}

	themeLabels := make([]string, 0, 3)
	for _, t := range report.Themes {
		themeLabels = append(themeLabels, t.Label)
		if len(themeLabels) == 3 {
			break
		}
	}

	return fmt.Sprintf(`Write a detailed summary of the student feedback for this course.

Data:
- Overall sentiment: %.2f
- Distribution: %.0f%% positive, %.0f%% negative
- Main themes: %s
- Actionable insights: %d

Detailed summary (one structured paragraph, factual and actionable):`,
		report.Sentiment.OverallScore,
		report.Sentiment.PositivePercentage,
		report.Sentiment.NegativePercentage,
		joinOrNone(themeLabels),
		actionable)
}

func joinOrNone(labels []string) string {
	if len(labels) == 0 {
		return "none identified"
	}
	out := labels[0]
	for _, l := range labels[1:] {
		out += ", " + l
	}
	return out
}
