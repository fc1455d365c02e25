package llm

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"quote": quoteJSON}).
	ParseFS(promptFS, "prompts/*.tmpl"))

type judgePromptData struct {
	Topic string
	Guess string
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func TopicPrompt() (string, error) {
	return render("topic.tmpl", nil)
}

func JudgePrompt(topic, guess string) (string, error) {
	return render("judge.tmpl", judgePromptData{Topic: topic, Guess: guess})
}

// LoadTemplate reads a prompt template file. A missing file yields "".
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template: %w", err)
	}
	return string(b), nil
}

// Substitute replaces every ${key} in prompt with its value. Strings are
// inserted as-is, anything else as JSON.
func Substitute(prompt string, vars map[string]any) string {
	if len(vars) == 0 {
		return prompt
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		var value string
		switch v := vars[k].(type) {
		case string:
			value = v
		case nil:
			value = "null"
		default:
			b, err := json.Marshal(v)
			if err != nil {
				value = fmt.Sprint(v)
			} else {
				value = string(b)
			}
		}
		pairs = append(pairs, "${"+k+"}", value)
	}

	return strings.NewReplacer(pairs...).Replace(prompt)
}
