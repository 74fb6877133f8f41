package model

import "time"

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightPositive       InsightType = "positive"
	InsightNegative       InsightType = "negative"
	InsightRecommendation InsightType = "recommendation"
	InsightAlert          InsightType = "alert"
)

// InsightPriority orders insights for display and alerting.
type InsightPriority string

const (
	PriorityLow    InsightPriority = "low"
	PriorityMedium InsightPriority = "medium"
	PriorityHigh   InsightPriority = "high"
	PriorityUrgent InsightPriority = "urgent"
)

// Insight is a typed, prioritized statement about a subject's feedback.
// Insights live only within the analysis run that produced them; their order
// in a result is significant.
type Insight struct {
	Type     InsightType     `json:"type" bson:"type"`
	Priority InsightPriority `json:"priority" bson:"priority"`
	Title    string          `json:"title" bson:"title"`
	Content  string          `json:"content" bson:"content"`
	Evidence []Evidence      `json:"evidence" bson:"evidence"`
}

// Alert is an insight urgent enough to push to the instructor. Its id is a
// content hash, so regenerating from unchanged insights yields the same id.
type Alert struct {
	ID        string          `json:"id" bson:"_id"`
	Type      InsightType     `json:"type" bson:"type"`
	Number    string          `json:"number" bson:"number"`
	Title     string          `json:"title" bson:"title"`
	Content   string          `json:"content" bson:"content"`
	Priority  InsightPriority `json:"priority" bson:"priority"`
	Evidence  []Evidence      `json:"evidence" bson:"evidence"`
	Timestamp time.Time       `json:"timestamp" bson:"timestamp"`
}

// InsightReport bundles a full analysis for one subject.
type InsightReport struct {
	SubjectID   string           `json:"subjectId" bson:"subjectId"`
	PeriodDays  int              `json:"periodDays" bson:"periodDays"`
	Sentiment   *SentimentResult `json:"sentiment" bson:"sentiment"`
	Themes      []Cluster        `json:"themes" bson:"themes"`
	Insights    []Insight        `json:"insights" bson:"insights"`
	GeneratedAt time.Time        `json:"generatedAt" bson:"generatedAt"`
}

// Comparison ranks several subjects by sentiment.
type Comparison struct {
	SubjectsCompared int                         `json:"subjectsCompared"`
	Analyses         map[string]*SentimentResult `json:"comparison"`
	Winner           string                      `json:"winner"`
	KeyDifferences   []string                    `json:"keyDifferences"`
}

// Summary is a cached textual digest of a subject's feedback.
type Summary struct {
	Summary     string    `json:"summary"`
	FullSummary string    `json:"fullSummary"`
	GeneratedAt time.Time `json:"generatedAt"`
}
