package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/artem13815/shortlist/pkg/attributes"
)

const (
	weightTolerance = 0.01
	// experienceCap is the number of years that maps to a full experience sub-score.
	experienceCap = 10.0
)

var ErrInvalidWeights = errors.New("invalid scoring weights")

// Weights of the fused score. Skills applies to the similarity score.
type Weights struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
}

func DefaultWeights() Weights {
	return Weights{Skills: 0.6, Experience: 0.3, Education: 0.1}
}

// NewWeights validates that the weights are non-negative and sum to 1.0 within 0.01.
func NewWeights(skills, experience, education float64) (Weights, error) {
	w := Weights{Skills: skills, Experience: experience, Education: education}
	return w, w.Validate()
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Skills, w.Experience, w.Education} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v is not a valid weight", ErrInvalidWeights, v)
		}
	}
	if sum := w.Skills + w.Experience + w.Education; math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: sum is %.4f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// ExperienceScore maps years to [0,100], saturating at ten years.
func ExperienceScore(years int) float64 {
	return clamp(float64(years) / experienceCap * 100)
}

// EducationScore maps an education rank to [0,100].
func EducationScore(rank int) float64 {
	return clamp(float64(rank) / attributes.MaxEducationRank * 100)
}

// Fuse combines the similarity percentage with experience and education sub-scores.
func (w Weights) Fuse(similarity float64, years, educationRank int) float64 {
	return clamp(similarity*w.Skills + ExperienceScore(years)*w.Experience + EducationScore(educationRank)*w.Education)
}

// Round2 rounds a score to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
