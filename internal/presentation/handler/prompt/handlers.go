package prompt

import (
	"context"
	stdjson "encoding/json"
	"net/http"

	"github.com/hilthontt/oekaki/internal/infrastructure/json"
	"github.com/hilthontt/oekaki/internal/infrastructure/llm"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
)

const defaultTitle = "Generated Content"

// Generator runs a prompt and returns the array the model answered with.
type Generator interface {
	Generate(ctx context.Context, prompt string) (stdjson.RawMessage, error)
}

type Handler struct {
	generator Generator
	template  string
	logger    logging.Logger
}

// NewHandler serves prompts with template as the fallback when a request
// carries none.
func NewHandler(generator Generator, template string, logger logging.Logger) *Handler {
	return &Handler{
		generator: generator,
		template:  template,
		logger:    logger,
	}
}

// Generate handles POST /api/. Every body field other than prompt and
// title is a ${name} substitution.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.Read(r, &body); err != nil {
		json.WriteErrorMessage(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	req := parseRequest(body)
	prompt := req.Prompt
	if prompt == "" {
		prompt = h.template
	}
	if prompt == "" {
		json.WriteErrorMessage(w, http.StatusBadRequest, "no prompt given and no prompt template configured")
		return
	}

	data, err := h.generator.Generate(r.Context(), llm.Substitute(prompt, req.Variables))
	if err != nil {
		h.logger.Error(logging.Judge, logging.Prompt, "prompt generation failed", map[logging.ExtraKey]any{
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = json.Write(w, http.StatusOK, generateResponse{Title: req.Title, Data: data})
}

func parseRequest(body map[string]any) generateRequest {
	req := generateRequest{Title: defaultTitle, Variables: make(map[string]any, len(body))}

	for k, v := range body {
		switch k {
		case "prompt":
			if s, ok := v.(string); ok {
				req.Prompt = s
			}
		case "title":
			if s, ok := v.(string); ok && s != "" {
				req.Title = s
			}
		default:
			req.Variables[k] = v
		}
	}

	return req
}
