package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classpulse/internal/model"
)

func riskAnalyzer(outcomes ...analyzeOutcome) *fakeAnalyzer {
	return &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{"subj-1": outcomes}}
}

func TestPredictRisksAllFactorsFire(t *testing.T) {
	analyzer := riskAnalyzer(
		analyzeOutcome{result: historyResult(0.5, 10)},
		analyzeOutcome{result: historyResult(0.0, 10)},
		analyzeOutcome{result: historyResult(-0.5, 5)},
	)
	svc := NewRiskService(analyzer, zap.NewNop())

	report, err := svc.PredictRisks(context.Background(), "subj-1", 90)
	require.NoError(t, err)

	assert.Equal(t, 3, analyzer.calls)
	assert.InDelta(t, 1.0, report.RiskScore, 1e-9)
	assert.Equal(t, model.RiskCritical, report.RiskLevel)
	assert.Equal(t, 0.75, report.Confidence)
	assert.Len(t, report.Factors, 4)
	assert.Len(t, report.HistoricalData, 3)
	assert.InDelta(t, -0.5, report.Trend, 1e-9)
	assert.Contains(t, report.Recommendations, "Run a feedback session with students within 48 hours")
	assert.Contains(t, report.Recommendations, "Review course content and pedagogy")
	assert.Contains(t, report.Recommendations, "Re-engage students with reminders or incentives")
}

func TestPredictRisksStableSubjectIsLowRisk(t *testing.T) {
	analyzer := riskAnalyzer(
		analyzeOutcome{result: historyResult(0.5, 10)},
		analyzeOutcome{result: historyResult(0.5, 10)},
	)
	svc := NewRiskService(analyzer, zap.NewNop())

	report, err := svc.PredictRisks(context.Background(), "subj-1", 60)
	require.NoError(t, err)

	assert.Equal(t, 2, analyzer.calls)
	assert.Equal(t, 0.0, report.RiskScore)
	assert.Equal(t, model.RiskLow, report.RiskLevel)
	assert.Empty(t, report.Factors)
	assert.Equal(t, []string{"Continue regular monitoring"}, report.Recommendations)
}

func TestPredictRisksResponseDrop(t *testing.T) {
	analyzer := riskAnalyzer(
		analyzeOutcome{result: historyResult(0.5, 10)},
		analyzeOutcome{result: historyResult(0.5, 6)},
	)
	svc := NewRiskService(analyzer, zap.NewNop())

	report, err := svc.PredictRisks(context.Background(), "subj-1", 60)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, report.RiskScore, 1e-9)
	assert.Equal(t, model.RiskLow, report.RiskLevel)
	assert.Contains(t, report.Factors, "Response rate dropped (-30%)")
	assert.Contains(t, report.Recommendations, "Re-engage students with reminders or incentives")
}

func TestPredictRisksSkipsInsufficientSnapshots(t *testing.T) {
	insufficient := &model.InsufficientDataError{Op: "sentiment analysis", MinRequired: 5, Actual: 2}
	analyzer := riskAnalyzer(
		analyzeOutcome{err: insufficient},
		analyzeOutcome{result: historyResult(0.2, 10)},
		analyzeOutcome{result: historyResult(0.3, 11)},
	)
	svc := NewRiskService(analyzer, zap.NewNop())

	report, err := svc.PredictRisks(context.Background(), "subj-1", 90)
	require.NoError(t, err)
	assert.Len(t, report.HistoricalData, 2)
}

func TestPredictRisksNeedsTwoSnapshots(t *testing.T) {
	insufficient := &model.InsufficientDataError{Op: "sentiment analysis", MinRequired: 5, Actual: 0}
	analyzer := riskAnalyzer(
		analyzeOutcome{err: insufficient},
		analyzeOutcome{err: insufficient},
		analyzeOutcome{result: historyResult(0.2, 10)},
	)
	svc := NewRiskService(analyzer, zap.NewNop())

	_, err := svc.PredictRisks(context.Background(), "subj-1", 90)

	var notEnough *model.InsufficientDataError
	require.ErrorAs(t, err, &notEnough)
	assert.Equal(t, "risk prediction", notEnough.Op)
	assert.Equal(t, 2, notEnough.MinRequired)
	assert.Equal(t, 1, notEnough.Actual)
}

func TestRiskLevelFromScore(t *testing.T) {
	assert.Equal(t, model.RiskCritical, riskLevelFromScore(0.7))
	assert.Equal(t, model.RiskHigh, riskLevelFromScore(0.5))
	assert.Equal(t, model.RiskMedium, riskLevelFromScore(0.3))
	assert.Equal(t, model.RiskLow, riskLevelFromScore(0.29))
	assert.Equal(t, model.RiskLow, riskLevelFromScore(0))
}

func TestTrendSlope(t *testing.T) {
	assert.InDelta(t, 0.0, trendSlope([]float64{0.5, 0.5, 0.5}), 1e-9)
	assert.InDelta(t, 0.5, trendSlope([]float64{0, 0.5, 1.0}), 1e-9)
	assert.InDelta(t, -0.5, trendSlope([]float64{1.0, 0.5, 0}), 1e-9)
	assert.Equal(t, 0.0, trendSlope([]float64{0.4}))
}
