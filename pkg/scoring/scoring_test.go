package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsValidation(t *testing.T) {
	_, err := NewWeights(0.6, 0.3, 0.1)
	require.NoError(t, err)
	_, err = NewWeights(0.6, 0.3, 0.109)
	require.NoError(t, err)

	for _, w := range [][3]float64{{0.6, 0.3, 0.2}, {0.5, 0.3, 0.1}, {1, 1, 1}, {0, 0, 0}, {1.1, -0.1, 0}} {
		_, err := NewWeights(w[0], w[1], w[2])
		assert.ErrorIs(t, err, ErrInvalidWeights, "%v", w)
	}
}

func TestWeightsValidationRandom(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		w := Weights{Skills: r.Float64(), Experience: r.Float64(), Education: r.Float64()}
		sum := w.Skills + w.Experience + w.Education
		err := w.Validate()
		if sum < 0.99 || sum > 1.01 {
			assert.ErrorIs(t, err, ErrInvalidWeights, "sum %v", sum)
		}
	}
}

func TestSubScores(t *testing.T) {
	assert.Equal(t, 0.0, ExperienceScore(0))
	assert.Equal(t, 50.0, ExperienceScore(5))
	assert.Equal(t, 100.0, ExperienceScore(25))
	assert.Equal(t, 60.0, EducationScore(3))
	assert.Equal(t, 100.0, EducationScore(5))
	assert.Equal(t, 0.0, EducationScore(0))
}

func TestFuse(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 80*0.6+50*0.3+80*0.1, w.Fuse(80, 5, 4), 1e-9)
	assert.InDelta(t, 100, w.Fuse(100, 30, 5), 1e-9)
	assert.InDelta(t, 0, w.Fuse(0, 0, 0), 1e-9)
	assert.LessOrEqual(t, Weights{Skills: 1.005, Experience: 0.005}.Fuse(100, 10, 0), 100.0)
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, StatusShortlisted, th.Classify(90))
	assert.Equal(t, StatusShortlisted, th.Classify(85))
	assert.Equal(t, StatusUnderReview, th.Classify(72))
	assert.Equal(t, StatusUnderReview, th.Classify(50))
	assert.Equal(t, StatusNotQualified, th.Classify(40))
	assert.Equal(t, StatusNotQualified, th.Classify(49.99))
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{Shortlist: 40, Reject: 60}.Validate())
}

func TestRound2AndCost(t *testing.T) {
	assert.Equal(t, 72.35, Round2(72.3456))
	assert.Equal(t, 0.0, Cost(0, 0.002))
	assert.InDelta(t, 0.003, Cost(1500, 0.002), 1e-12)
}
