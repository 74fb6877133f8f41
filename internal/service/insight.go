package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"classpulse/internal/model"
)

const (
	maxNegativeThemeInsights  = 2
	maxRecommendationInsights = 3
	negativeThemeThreshold    = -0.3
)

// InsightService turns computed sentiment and theme results into a ranked
// list of typed insights. Pure and deterministic: identical inputs produce
// an identical ordered list.
type InsightService struct{}

func NewInsightService() *InsightService {
	return &InsightService{}
}

// Generate emits insights in a fixed rule order: overall sentiment, trend,
// negative themes, then recommendations. The order determines display order
// and alert numbering downstream.
func (s *InsightService) Generate(sentiment *model.SentimentResult, clusters *model.ClusterResult) []model.Insight {
	insights := make([]model.Insight, 0, 8)

	if sentiment.OverallScore > 0.5 {
		insights = append(insights, model.Insight{
			Type:     model.InsightPositive,
			Priority: model.PriorityLow,
			Title:    "Excellent overall sentiment",
			Content:  fmt.Sprintf("Students are very satisfied (score: %.2f)", sentiment.OverallScore),
			Evidence: sentiment.PositiveEvidence,
		})
	} else if sentiment.OverallScore < -0.3 {
		insights = append(insights, model.Insight{
			Type:     model.InsightAlert,
			Priority: model.PriorityHigh,
			Title:    "Negative sentiment detected",
			Content:  fmt.Sprintf("Warning: sentiment is negative (score: %.2f)", sentiment.OverallScore),
			Evidence: sentiment.NegativeEvidence,
		})
	}

	if sentiment.TrendPercentage != nil && *sentiment.TrendPercentage < -15 {
		insights = append(insights, model.Insight{
			Type:     model.InsightAlert,
			Priority: model.PriorityUrgent,
			Title:    "Significant sentiment drop",
			Content:  fmt.Sprintf("Sentiment dropped %.0f%% versus the previous period", -*sentiment.TrendPercentage),
			Evidence: []model.Evidence{},
		})
	}

	if clusters != nil {
		emitted := 0
		for _, theme := range clusters.Clusters {
			if theme.Sentiment >= negativeThemeThreshold {
				continue
			}
			evidence := make([]model.Evidence, 0, maxEvidencePoints)
			for _, ex := range firstN(theme.Examples, maxEvidencePoints) {
				evidence = append(evidence, model.Evidence{Example: ex})
			}
			insights = append(insights, model.Insight{
				Type:     model.InsightNegative,
				Priority: model.PriorityHigh,
				Title:    fmt.Sprintf("Problem identified: %s", theme.Label),
				Content:  fmt.Sprintf("%d students mention issues related to %s", theme.Count, theme.Label),
				Evidence: evidence,
			})
			emitted++
			if emitted == maxNegativeThemeInsights {
				break
			}
		}
	}

	for _, rec := range firstN(sentiment.Recommendations, maxRecommendationInsights) {
		insights = append(insights, model.Insight{
			Type:     model.InsightRecommendation,
			Priority: model.PriorityMedium,
			Title:    "Recommendation",
			Content:  rec,
			Evidence: []model.Evidence{},
		})
	}

	return insights
}

// ExtractAlerts derives alerts from insights with priority high or urgent
// and type alert or negative. Alert ids are content hashes, so regenerating
// from unchanged insights never produces duplicate alerts downstream.
func (s *InsightService) ExtractAlerts(subjectID string, insights []model.Insight, now time.Time) []model.Alert {
	urgent := 0
	for _, in := range insights {
		if in.Priority == model.PriorityHigh || in.Priority == model.PriorityUrgent {
			urgent++
		}
	}

	alerts := make([]model.Alert, 0, urgent)
	for _, in := range insights {
		if in.Priority != model.PriorityHigh && in.Priority != model.PriorityUrgent {
			continue
		}
		if in.Type != model.InsightAlert && in.Type != model.InsightNegative {
			continue
		}

		alertType := model.InsightAlert
		if in.Type == model.InsightNegative {
			alertType = model.InsightNegative
		}
		alerts = append(alerts, model.Alert{
			ID:        alertID(subjectID, in),
			Type:      alertType,
			Number:    fmt.Sprintf("Alert %d/%d", len(alerts)+1, urgent),
			Title:     in.Title,
			Content:   in.Content,
			Priority:  in.Priority,
			Evidence:  in.Evidence,
			Timestamp: now,
		})
	}
	return alerts
}

func alertID(subjectID string, in model.Insight) string {
	sum := sha256.Sum256([]byte(in.Title + "|" + in.Content + "|" + subjectID))
	return "alert_" + hex.EncodeToString(sum[:8])
}
