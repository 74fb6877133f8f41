package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classpulse/internal/model"
)

func TestFuseScores(t *testing.T) {
	t.Run("no star data leaves llm score untouched", func(t *testing.T) {
		assert.Equal(t, 0.8, FuseScores(0.8, 0))
		assert.Equal(t, -0.5, FuseScores(-0.5, 0))
	})

	t.Run("weighted 60/40", func(t *testing.T) {
		assert.InDelta(t, 0.7, FuseScores(0.5, 1.0), 1e-9)
		assert.InDelta(t, -0.7, FuseScores(-0.5, -1.0), 1e-9)
		assert.InDelta(t, 0.5, FuseScores(0.5, 0.5), 1e-9)
	})
}

func TestStarsToScore(t *testing.T) {
	t.Run("empty histogram is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, StarsToScore(nil))
	})

	t.Run("extremes map to unit interval ends", func(t *testing.T) {
		assert.Equal(t, 1.0, StarsToScore([]model.StarRating{{Stars: 5, Count: 7}}))
		assert.Equal(t, -1.0, StarsToScore([]model.StarRating{{Stars: 1, Count: 3}}))
		assert.Equal(t, 0.0, StarsToScore([]model.StarRating{{Stars: 3, Count: 10}}))
	})

	t.Run("weighted average", func(t *testing.T) {
		// (5*2 + 1*2) / 4 = 3 -> 0
		score := StarsToScore([]model.StarRating{
			{Stars: 5, Count: 2},
			{Stars: 1, Count: 2},
		})
		assert.InDelta(t, 0.0, score, 1e-9)

		// (4*3) / 3 = 4 -> 0.5
		score = StarsToScore([]model.StarRating{{Stars: 4, Count: 3}})
		assert.InDelta(t, 0.5, score, 1e-9)
	})
}

func TestComputeDistribution(t *testing.T) {
	t.Run("no star data falls back to fixed split", func(t *testing.T) {
		d := ComputeDistribution(nil)
		assert.Equal(t, Distribution{Positive: 50.0, Neutral: 30.0, Negative: 20.0}, d)
	})

	t.Run("counts by star thresholds", func(t *testing.T) {
		d := ComputeDistribution([]model.StarRating{
			{Stars: 5, Count: 3},
			{Stars: 4, Count: 1},
			{Stars: 3, Count: 2},
			{Stars: 2, Count: 1},
			{Stars: 1, Count: 1},
		})
		require.InDelta(t, 50.0, d.Positive, 1e-9)
		require.InDelta(t, 25.0, d.Neutral, 1e-9)
		require.InDelta(t, 25.0, d.Negative, 1e-9)
		assert.InDelta(t, 100.0, d.Positive+d.Neutral+d.Negative, 1e-9)
	})
}

func TestLabelFromScore(t *testing.T) {
	assert.Equal(t, model.LabelPositive, LabelFromScore(0.31))
	assert.Equal(t, model.LabelNegative, LabelFromScore(-0.31))
	assert.Equal(t, model.LabelNeutral, LabelFromScore(0.3))
	assert.Equal(t, model.LabelNeutral, LabelFromScore(-0.3))
	assert.Equal(t, model.LabelNeutral, LabelFromScore(0))
}
