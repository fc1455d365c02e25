package llm

import (
	"errors"
	"fmt"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	DefaultTopic = "ねこ"
	DefaultHint  = "動物"
)

var (
	ErrInvalidResponse = errors.New("response is not a JSON object")
	ErrNoArray         = errors.New("no array found in the response object")
)

// FirstArray returns the first array-valued property of a JSON object.
func FirstArray(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("failed to parse LLM response: %w", ErrInvalidResponse)
	}

	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return gjson.Result{}, fmt.Errorf("failed to parse LLM response: %w", ErrInvalidResponse)
	}

	var found gjson.Result
	obj.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			found = value
			return false
		}
		return true
	})
	if !found.Exists() {
		return gjson.Result{}, fmt.Errorf("failed to parse LLM response: %w", ErrNoArray)
	}

	return found, nil
}

func topicFromItem(item gjson.Result) domain.TopicCandidate {
	difficulty := int(item.Get("difficulty").Int())
	if difficulty == 0 {
		difficulty = domain.MinDifficulty
	}

	return domain.TopicCandidate{
		Topic:      stringOr(item.Get("topic"), DefaultTopic),
		Hint:       stringOr(item.Get("hint"), DefaultHint),
		Difficulty: domain.ClampDifficulty(difficulty),
	}
}

func judgmentFromItem(item gjson.Result) domain.Judgment {
	return domain.Judgment{
		Correct:         item.Get("correct").Bool(),
		Score:           domain.ClampScore(item.Get("score").Float()),
		Reason:          stringOr(item.Get("reason"), ""),
		NormalizedTopic: stringOr(firstOf(item, "normalized_topic", "normalizedTopic"), ""),
		NormalizedGuess: stringOr(firstOf(item, "normalized_guess", "normalizedGuess"), ""),
	}
}

func firstOf(item gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := item.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// stringOr falls back for missing, null, false, zero and empty values.
func stringOr(v gjson.Result, fallback string) string {
	switch v.Type {
	case gjson.Null, gjson.False:
		return fallback
	case gjson.Number:
		if v.Num == 0 {
			return fallback
		}
	case gjson.String:
		if v.Str == "" {
			return fallback
		}
	}
	return v.String()
}
