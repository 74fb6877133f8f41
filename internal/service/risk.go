package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"classpulse/internal/model"
)

const (
	defaultLookbackDays = 90
	minHistoryPoints    = 2

	// Fixed model confidence; not computed from the data.
	riskConfidence = 0.75
)

// sentimentAnalyzer is the slice of SentimentService the risk model needs.
type sentimentAnalyzer interface {
	Analyze(ctx context.Context, subjectID string, periodDays int) (*model.SentimentResult, error)
}

// RiskService derives a risk score for a subject from repeated sentiment
// snapshots: trend slope, current level, response-rate drop and volatility
// each contribute additively.
type RiskService struct {
	sentiment sentimentAnalyzer
	logger    *zap.Logger
}

func NewRiskService(sentiment sentimentAnalyzer, logger *zap.Logger) *RiskService {
	return &RiskService{
		sentiment: sentiment,
		logger:    logger,
	}
}

// PredictRisks builds up to 3 historical snapshots and scores the subject's
// risk on [0, 1]. Fails with InsufficientDataError when fewer than 2
// snapshots succeed.
func (s *RiskService) PredictRisks(ctx context.Context, subjectID string, lookbackDays int) (*model.RiskReport, error) {
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}

	s.logger.Info("predicting risks",
		zap.String("subjectId", subjectID),
		zap.Int("lookbackDays", lookbackDays))

	history := make([]model.HistoricalPoint, 0, 3)
	for days := 30; days <= lookbackDays && days <= 90; days += 30 {
		// Every snapshot requests the same 30-day window; the period label
		// describes the intended offset only. Kept as shipped pending a
		// product decision on true offset windows.
		analysis, err := s.sentiment.Analyze(ctx, subjectID, 30)
		if err != nil {
			var insufficient *model.InsufficientDataError
			if errors.As(err, &insufficient) {
				continue
			}
			return nil, err
		}
		history = append(history, model.HistoricalPoint{
			Period:        fmt.Sprintf("Last %d days", days),
			Score:         analysis.OverallScore,
			ResponseCount: analysis.TotalResponses,
		})
	}

	if len(history) < minHistoryPoints {
		return nil, &model.InsufficientDataError{
			Op:          "risk prediction",
			MinRequired: minHistoryPoints,
			Actual:      len(history),
		}
	}

	scores := make([]float64, len(history))
	for i, h := range history {
		scores[i] = h.Score
	}
	trend := trendSlope(scores)

	var factors []string
	riskScore := 0.0
	downwardTrend := false
	responseDrop := false

	if trend < -0.1 {
		riskScore += 0.3
		downwardTrend = true
		factors = append(factors, fmt.Sprintf("Downward trend (%.2f)", trend))
	}

	current := scores[len(scores)-1]
	if current < -0.2 {
		riskScore += 0.3
		factors = append(factors, fmt.Sprintf("Low current score (%.2f)", current))
	}

	last := history[len(history)-1].ResponseCount
	previous := history[len(history)-2].ResponseCount
	if float64(last) < 0.7*float64(previous) {
		riskScore += 0.2
		responseDrop = true
		factors = append(factors, "Response rate dropped (-30%)")
	}

	if len(scores) >= 3 {
		volatility := stat.PopStdDev(scores, nil)
		if volatility > 0.3 {
			riskScore += 0.2
			factors = append(factors, fmt.Sprintf("High volatility (%.2f)", volatility))
		}
	}

	if riskScore > 1.0 {
		riskScore = 1.0
	}

	level := riskLevelFromScore(riskScore)
	report := &model.RiskReport{
		SubjectID:       subjectID,
		RiskScore:       riskScore,
		RiskLevel:       level,
		Confidence:      riskConfidence,
		Factors:         factors,
		Recommendations: riskRecommendations(level, downwardTrend, responseDrop),
		HistoricalData:  history,
		Trend:           trend,
	}

	s.logger.Info("risk prediction completed",
		zap.String("subjectId", subjectID),
		zap.Float64("riskScore", riskScore),
		zap.String("riskLevel", string(level)))

	return report, nil
}

func riskLevelFromScore(score float64) model.RiskLevel {
	switch {
	case score >= 0.7:
		return model.RiskCritical
	case score >= 0.5:
		return model.RiskHigh
	case score >= 0.3:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// riskRecommendations templates recommendations from the factors that fired.
// The list is never empty.
func riskRecommendations(level model.RiskLevel, downwardTrend, responseDrop bool) []string {
	var recs []string
	if level == model.RiskCritical || level == model.RiskHigh {
		recs = append(recs,
			"Run a feedback session with students within 48 hours",
			"Analyze the negative themes in detail")
	}
	if downwardTrend {
		recs = append(recs, "Review course content and pedagogy")
	}
	if responseDrop {
		recs = append(recs, "Re-engage students with reminders or incentives")
	}
	if len(recs) == 0 {
		recs = append(recs, "Continue regular monitoring")
	}
	return recs
}

// trendSlope is the slope of a least-squares linear fit over scores indexed
// 0..n-1.
func trendSlope(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	xs := make([]float64, len(scores))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, scores, nil, false)
	return slope
}
