package domain

import "context"

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

type TopicCandidate struct {
	Topic      string `json:"topic"`
	Hint       string `json:"hint"`
	Difficulty int    `json:"difficulty"`
}

type Judgment struct {
	Correct         bool    `json:"correct"`
	Score           float64 `json:"score"`
	Reason          string  `json:"reason"`
	NormalizedTopic string  `json:"normalizedTopic"`
	NormalizedGuess string  `json:"normalizedGuess"`
}

// Judge generates topics and scores guesses. Both calls are single-shot
// and may fail with no partial result.
type Judge interface {
	GenerateTopic(ctx context.Context) (TopicCandidate, error)
	JudgeGuess(ctx context.Context, topic, guess string) (Judgment, error)
}

func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}
