package prompt

import stdjson "encoding/json"

type generateRequest struct {
	Prompt    string
	Title     string
	Variables map[string]any
}

type generateResponse struct {
	Title string             `json:"title"`
	Data  stdjson.RawMessage `json:"data"`
}
