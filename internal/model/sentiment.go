package model

import "time"

// Sentiment labels derived from the overall score.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// TextResponse is one student's free-text answer for a subject.
type TextResponse struct {
	ResponseID  string    `json:"responseId" bson:"responseId"`
	SubjectID   string    `json:"subjectId" bson:"subjectId"`
	Text        string    `json:"text" bson:"text"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// StarRating aggregates star answers (1-5) by value.
type StarRating struct {
	Stars int `json:"stars" bson:"stars"`
	Count int `json:"count" bson:"count"`
}

// Evidence is a literal student quote backing an analysis point.
type Evidence struct {
	Point      string `json:"point" bson:"point"`
	Example    string `json:"example" bson:"example"`
	ResponseID string `json:"responseId,omitempty" bson:"responseId,omitempty"`
}

// SentimentResult is the outcome of one sentiment analysis run for a subject.
type SentimentResult struct {
	SubjectID   string    `json:"subjectId" bson:"subjectId"`
	PeriodStart time.Time `json:"periodStart" bson:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd" bson:"periodEnd"`

	OverallScore float64 `json:"overallScore" bson:"overallScore"` // -1 to 1
	Confidence   float64 `json:"confidence" bson:"confidence"`     // 0 to 1
	Label        string  `json:"label" bson:"label"`

	PositivePercentage float64 `json:"positivePercentage" bson:"positivePercentage"`
	NeutralPercentage  float64 `json:"neutralPercentage" bson:"neutralPercentage"`
	NegativePercentage float64 `json:"negativePercentage" bson:"negativePercentage"`

	// TrendPercentage is nil when there is no comparable prior period.
	// Zero would read as "flat", which is a different statement.
	TrendPercentage *float64 `json:"trendPercentage,omitempty" bson:"trendPercentage,omitempty"`

	PositivePoints  []string `json:"positivePoints" bson:"positivePoints"`
	NegativePoints  []string `json:"negativePoints" bson:"negativePoints"`
	Recommendations []string `json:"recommendations" bson:"recommendations"`

	PositiveEvidence []Evidence `json:"positiveEvidence" bson:"positiveEvidence"`
	NegativeEvidence []Evidence `json:"negativeEvidence" bson:"negativeEvidence"`

	TotalResponses int     `json:"totalResponses" bson:"totalResponses"`
	StarAverage    float64 `json:"starAverage" bson:"starAverage"` // star-derived score, -1 to 1

	// Themes is attached best-effort by the facade; empty when clustering
	// had too little data to run.
	Themes []Cluster `json:"themes" bson:"themes"`
}
