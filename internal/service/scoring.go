package service

import "classpulse/internal/model"

// FuseScores combines the LLM sentiment score with the star-derived score,
// weighted 60/40 toward the LLM. A zero star score means "no star data" and
// leaves the LLM score untouched.
func FuseScores(llmScore, starScore float64) float64 {
	if starScore == 0 {
		return llmScore
	}
	return 0.6*llmScore + 0.4*starScore
}

// StarsToScore maps a 1-5 star histogram onto [-1, 1]. Empty input yields
// exactly 0, which callers must read as "absent", not "neutral".
func StarsToScore(ratings []model.StarRating) float64 {
	totalStars := 0
	totalCount := 0
	for _, r := range ratings {
		totalStars += r.Stars * r.Count
		totalCount += r.Count
	}
	if totalCount == 0 {
		return 0.0
	}

	avg := float64(totalStars) / float64(totalCount)
	return (avg - 3) / 2
}

// Distribution is the positive/neutral/negative share of responses, in
// percent summing to 100.
type Distribution struct {
	Positive float64
	Neutral  float64
	Negative float64
}

// ComputeDistribution derives the share of positive (>=4 stars), negative
// (<=2 stars) and neutral ratings. Without star data it falls back to a fixed
// 50/30/20 split, a placeholder rather than a real computation.
func ComputeDistribution(ratings []model.StarRating) Distribution {
	total := 0
	positive := 0
	negative := 0
	for _, r := range ratings {
		total += r.Count
		if r.Stars >= 4 {
			positive += r.Count
		} else if r.Stars <= 2 {
			negative += r.Count
		}
	}

	if total == 0 {
		return Distribution{Positive: 50.0, Neutral: 30.0, Negative: 20.0}
	}

	neutral := total - positive - negative
	return Distribution{
		Positive: float64(positive) / float64(total) * 100,
		Neutral:  float64(neutral) / float64(total) * 100,
		Negative: float64(negative) / float64(total) * 100,
	}
}

// LabelFromScore partitions scores into three labels. The boundaries 0.3 and
// -0.3 themselves are neutral.
func LabelFromScore(score float64) string {
	switch {
	case score > 0.3:
		return model.LabelPositive
	case score < -0.3:
		return model.LabelNegative
	default:
		return model.LabelNeutral
	}
}
