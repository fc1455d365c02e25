package domain

import "math"

const (
	// SemanticWeight and DrawingWeight split the total between the
	// judged guess and the drawer's self-reported drawing score.
	SemanticWeight = 0.7
	DrawingWeight  = 0.3

	MinScore = 0
	MaxScore = 100
)

func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, score))
}

// TotalScore weighs both components and rounds half up.
func TotalScore(semantic, drawing float64) int {
	total := ClampScore(semantic)*SemanticWeight + ClampScore(drawing)*DrawingWeight
	return int(math.Floor(total + 0.5))
}
