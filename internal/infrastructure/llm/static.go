package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/tidwall/gjson"
)

// StaticProvider answers without a network. Judge prompts are scored by
// exact match after trimming and case folding; every other prompt gets the
// fixed topic.
type StaticProvider struct {
	topic domain.TopicCandidate
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		topic: domain.TopicCandidate{Topic: DefaultTopic, Hint: DefaultHint, Difficulty: domain.MinDifficulty},
	}
}

func (p *StaticProvider) Complete(ctx context.Context, prompt string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic, guess, ok := judgeInputs(prompt)
	if !ok {
		return json.Marshal(map[string]any{"data": []domain.TopicCandidate{p.topic}})
	}

	correct := strings.EqualFold(strings.TrimSpace(topic), strings.TrimSpace(guess))
	item := map[string]any{
		"correct":          correct,
		"score":            0,
		"reason":           "不一致",
		"normalized_topic": strings.TrimSpace(topic),
		"normalized_guess": strings.TrimSpace(guess),
	}
	if correct {
		item["score"] = domain.MaxScore
		item["reason"] = "一致"
	}

	return json.Marshal(map[string]any{"data": []any{item}})
}

// judgeInputs reads the JSON-quoted topic and guess lines of a judge prompt.
func judgeInputs(prompt string) (topic, guess string, ok bool) {
	var hasTopic, hasGuess bool

	sc := bufio.NewScanner(strings.NewReader(prompt))
	for sc.Scan() {
		line := sc.Text()
		if v, found := strings.CutPrefix(line, "topic: "); found {
			if r := gjson.Parse(v); r.Type == gjson.String {
				topic, hasTopic = r.Str, true
			}
		}
		if v, found := strings.CutPrefix(line, "guess: "); found {
			if r := gjson.Parse(v); r.Type == gjson.String {
				guess, hasGuess = r.Str, true
			}
		}
	}

	return topic, guess, hasTopic && hasGuess
}
