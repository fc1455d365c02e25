package profanity

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	defaultFilter *ProfanityFilter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func LoadBannedWords() ([]string, error) {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded word list: %w", err)
	}

	var bannedWords []string
	if err := json.Unmarshal(data, &bannedWords); err != nil {
		return nil, fmt.Errorf("decode embedded word list: %w", err)
	}
	return bannedWords, nil
}

type ProfanityFilter struct {
	regex *regexp.Regexp
}

// NewProfanityFilter returns the shared filter built from the embedded word list.
func NewProfanityFilter() *ProfanityFilter {
	once.Do(func() {
		words, err := LoadBannedWords()
		if err != nil {
			// The list is compiled into the binary.
			panic(err)
		}
		defaultFilter = NewFilterFromWords(words)
	})

	return defaultFilter
}

func NewFilterFromWords(words []string) *ProfanityFilter {
	return &ProfanityFilter{regex: buildMasterRegex(words)}
}

func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	if text == "" {
		return false
	}
	return pf.regex.MatchString(normalizeText(text))
}

var separators = regexp.MustCompile(`[\s_.\-*/\\|]+`)

var leetspeak = strings.NewReplacer(
	"@", "a", "4", "a",
	"3", "e", "€", "e",
	"1", "i", "!", "i", "|", "i", "¡", "i",
	"0", "o", "()", "o", "[]", "o",
	"$", "s", "5", "s",
	"7", "t", "+", "t",
	"9", "g", "8", "b",
	"ph", "f",
)

func normalizeText(text string) string {
	s := strings.ToLower(text)
	s = strings.Map(func(r rune) rune {
		switch r {
		case 'á', 'à', 'â', 'ä', 'ã', 'å':
			return 'a'
		case 'é', 'è', 'ê', 'ë':
			return 'e'
		case 'í', 'ì', 'î', 'ï':
			return 'i'
		case 'ó', 'ò', 'ô', 'ö', 'õ':
			return 'o'
		case 'ú', 'ù', 'û', 'ü':
			return 'u'
		case 'ñ':
			return 'n'
		case 'ç':
			return 'c'
		default:
			return r
		}
	}, s)

	s = leetspeak.Replace(s)

	return separators.ReplaceAllString(s, " ")
}

// buildMasterRegex matches each word with repeated letters and
// non-letters between them allowed: "f.u.u.c.k" matches "fuck".
func buildMasterRegex(words []string) *regexp.Regexp {
	patterns := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}

		parts := make([]string, 0, len(word))
		for _, r := range word {
			parts = append(parts, regexp.QuoteMeta(string(r))+"+")
		}
		patterns = append(patterns, strings.Join(parts, `[^\p{L}]*`))
	}

	if len(patterns) == 0 {
		return regexp.MustCompile(`$^`)
	}

	return regexp.MustCompile(`(?:^|[^\p{L}])(` + strings.Join(patterns, "|") + `)(?:$|[^\p{L}])`)
}
