package model

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// HistoricalPoint is one sentiment snapshot used for trend analysis.
type HistoricalPoint struct {
	Period        string  `json:"period" bson:"period"`
	Score         float64 `json:"score" bson:"score"`
	ResponseCount int     `json:"responseCount" bson:"responseCount"`
}

// RiskReport is the outcome of predictive risk analysis for a subject.
type RiskReport struct {
	SubjectID       string            `json:"subjectId" bson:"subjectId"`
	RiskScore       float64           `json:"riskScore" bson:"riskScore"` // 0 to 1
	RiskLevel       RiskLevel         `json:"riskLevel" bson:"riskLevel"`
	Confidence      float64           `json:"confidence" bson:"confidence"`
	Factors         []string          `json:"factors" bson:"factors"`
	Recommendations []string          `json:"recommendations" bson:"recommendations"`
	HistoricalData  []HistoricalPoint `json:"historicalData" bson:"historicalData"`
	Trend           float64           `json:"trend" bson:"trend"` // least-squares slope over snapshots
}
