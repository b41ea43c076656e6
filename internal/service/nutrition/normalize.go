// Package nutrition turns raw macro estimates into a displayable percentage triple.
package nutrition

import (
	"math"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

// tolerance is how far from 100 a raw triple may drift before it gets rescaled.
const tolerance = 5

// Normalize maps raw protein/fat/carb percentages onto integers summing to 100.
//
// Triples within tolerance of 100 are not rescaled, but they are still changed:
// after rounding, carbs absorbs the gap to 100, so (30, 30, 35) becomes
// (30, 30, 40). Others are first scaled by 100/sum, then carbs takes the
// rounding remainder the same way.
func Normalize(protein, fat, carbs float64) models.Nutrition {
	protein, fat, carbs = nonNegative(protein), nonNegative(fat), nonNegative(carbs)

	factor := 1.0
	if sum := protein + fat + carbs; math.Abs(sum-100) > tolerance {
		if sum == 0 {
			sum = 1
		}
		factor = 100 / sum
	}

	p := round(protein * factor)
	f := round(fat * factor)
	c := round(carbs * factor)
	c += 100 - (p + f + c)

	// Protein and fat alone can round past 100.
	if c < 0 {
		if p >= f {
			p += c
		} else {
			f += c
		}
		c = 0
	}

	return models.Nutrition{Protein: p, Fat: f, Carbs: c}
}

func round(v float64) int {
	return int(math.Round(v))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
