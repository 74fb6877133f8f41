package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classpulse/internal/cache"
	"classpulse/internal/model"
)

func newTestFacade(analyzer *fakeAnalyzer, clusters *fakeClusterer, provider *fakeProvider) *AnalysisFacade {
	return &AnalysisFacade{
		sentiment: analyzer,
		clusters:  clusters,
		insights:  NewInsightService(),
		risks:     &fakeRiskPredictor{},
		cache:     cache.NewMemoryCache(),
		llm:       provider,
		logger:    zap.NewNop(),
	}
}

func TestFacadeAnalyzeSentimentAttachesThemes(t *testing.T) {
	analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
		"subj-1": {{result: historyResult(0.4, 10)}},
	}}
	clusters := &fakeClusterer{result: &model.ClusterResult{
		Clusters: []model.Cluster{{ID: "cluster_0", Label: "pace", Count: 10}},
	}}
	facade := newTestFacade(analyzer, clusters, &fakeProvider{})

	result, err := facade.AnalyzeSentiment(context.Background(), "subj-1", 30)
	require.NoError(t, err)
	require.Len(t, result.Themes, 1)
	assert.Equal(t, "pace", result.Themes[0].Label)
}

func TestFacadeAnalyzeSentimentAbsorbsClusteringShortfall(t *testing.T) {
	analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
		"subj-1": {{result: historyResult(0.4, 10)}},
	}}
	clusters := &fakeClusterer{err: &model.InsufficientDataError{
		Op: "response clustering", MinRequired: 2, Actual: 1,
	}}
	facade := newTestFacade(analyzer, clusters, &fakeProvider{})

	result, err := facade.AnalyzeSentiment(context.Background(), "subj-1", 30)
	require.NoError(t, err, "missing themes must not fail sentiment analysis")
	assert.NotNil(t, result.Themes)
	assert.Empty(t, result.Themes)
}

func TestFacadeCompareSubjects(t *testing.T) {
	t.Run("rejects fewer than two subjects before any analysis", func(t *testing.T) {
		analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{}}
		facade := newTestFacade(analyzer, &fakeClusterer{}, &fakeProvider{})

		_, err := facade.CompareSubjects(context.Background(), []string{"only"}, 30)

		var validation *model.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Zero(t, analyzer.calls)
	})

	t.Run("skips subjects with insufficient data", func(t *testing.T) {
		analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
			"math":    {{result: historyResult(0.2, 10)}},
			"physics": {{result: historyResult(0.7, 12)}},
		}}
		facade := newTestFacade(analyzer, &fakeClusterer{}, &fakeProvider{})

		comparison, err := facade.CompareSubjects(context.Background(), []string{"math", "empty", "physics"}, 30)
		require.NoError(t, err)

		assert.Equal(t, 2, comparison.SubjectsCompared)
		assert.Equal(t, "physics", comparison.Winner)
		require.Len(t, comparison.KeyDifferences, 1)
		assert.Contains(t, comparison.KeyDifferences[0], "0.50")
	})

	t.Run("ties resolve by input order", func(t *testing.T) {
		analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
			"math":    {{result: historyResult(0.4, 10)}},
			"physics": {{result: historyResult(0.4, 12)}},
		}}
		facade := newTestFacade(analyzer, &fakeClusterer{}, &fakeProvider{})

		comparison, err := facade.CompareSubjects(context.Background(), []string{"math", "physics"}, 30)
		require.NoError(t, err)
		assert.Equal(t, "math", comparison.Winner)
		assert.Empty(t, comparison.KeyDifferences)
	})

	t.Run("fails when fewer than two subjects survive", func(t *testing.T) {
		analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
			"math": {{result: historyResult(0.2, 10)}},
		}}
		facade := newTestFacade(analyzer, &fakeClusterer{}, &fakeProvider{})

		_, err := facade.CompareSubjects(context.Background(), []string{"math", "empty"}, 30)

		var insufficient *model.InsufficientDataError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 2, insufficient.MinRequired)
		assert.Equal(t, 1, insufficient.Actual)
	})
}

func TestFacadeGenerateAlertsDegradesToEmpty(t *testing.T) {
	analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{}}
	facade := newTestFacade(analyzer, &fakeClusterer{}, &fakeProvider{})

	alerts, err := facade.GenerateAlerts(context.Background(), "subj-1", 30)
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestFacadeGenerateAlertsFromNegativeSentiment(t *testing.T) {
	analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
		"subj-1": {{result: historyResult(-0.5, 10)}},
	}}
	clusters := &fakeClusterer{err: &model.InsufficientDataError{
		Op: "response clustering", MinRequired: 2, Actual: 0,
	}}
	facade := newTestFacade(analyzer, clusters, &fakeProvider{})

	alerts, err := facade.GenerateAlerts(context.Background(), "subj-1", 30)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Negative sentiment detected", alerts[0].Title)
	assert.Equal(t, "Alert 1/1", alerts[0].Number)
}

func TestFacadeGenerateSummaryCaches(t *testing.T) {
	analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{
		"subj-1": {{result: historyResult(0.4, 10)}},
	}}
	clusters := &fakeClusterer{err: &model.InsufficientDataError{
		Op: "response clustering", MinRequired: 2, Actual: 0,
	}}
	provider := &fakeProvider{completeText: "Students are broadly satisfied."}
	facade := newTestFacade(analyzer, clusters, provider)

	first, err := facade.GenerateSummary(context.Background(), "subj-1", 30)
	require.NoError(t, err)
	assert.Equal(t, "Students are broadly satisfied.", first.Summary)
	assert.Equal(t, 2, provider.completeCalls, "one short and one detailed completion")

	second, err := facade.GenerateSummary(context.Background(), "subj-1", 30)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.FullSummary, second.FullSummary)
	assert.Equal(t, 2, provider.completeCalls, "second call must hit the cache")
	assert.Equal(t, 1, analyzer.calls)
}

func TestFacadeGenerateSummaryInsufficientData(t *testing.T) {
	analyzer := &fakeAnalyzer{bySubject: map[string][]analyzeOutcome{}}
	provider := &fakeProvider{completeText: "unused"}
	facade := newTestFacade(analyzer, &fakeClusterer{}, provider)

	summary, err := facade.GenerateSummary(context.Background(), "subj-9", 30)
	require.NoError(t, err)
	assert.Equal(t, "Not enough data to generate a summary.", summary.Summary)
	assert.Zero(t, provider.completeCalls)
}
