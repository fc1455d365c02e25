package domain

import "strings"

// RoundResult is the reveal sent to the whole room once a guess is judged.
type RoundResult struct {
	Round           int     `json:"round"`
	Topic           string  `json:"topic"`
	Guess           string  `json:"guess"`
	Correct         bool    `json:"correct"`
	GuessScore      float64 `json:"guessScore"`
	DrawingScore    float64 `json:"drawingScore"`
	TotalScore      int     `json:"totalScore"`
	Reason          string  `json:"reason"`
	NormalizedTopic string  `json:"normalizedTopic"`
	NormalizedGuess string  `json:"normalizedGuess"`
}

func NewRoundResult(round int, topic TopicCandidate, guess string, judgment Judgment, drawingScore float64) RoundResult {
	guessScore := ClampScore(judgment.Score)
	drawingScore = ClampScore(drawingScore)

	return RoundResult{
		Round:           round,
		Topic:           topic.Topic,
		Guess:           strings.TrimSpace(guess),
		Correct:         judgment.Correct,
		GuessScore:      guessScore,
		DrawingScore:    drawingScore,
		TotalScore:      TotalScore(guessScore, drawingScore),
		Reason:          judgment.Reason,
		NormalizedTopic: judgment.NormalizedTopic,
		NormalizedGuess: judgment.NormalizedGuess,
	}
}
