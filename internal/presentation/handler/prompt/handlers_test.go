package prompt

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	prompt string
	data   stdjson.RawMessage
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (stdjson.RawMessage, error) {
	g.prompt = prompt
	return g.data, g.err
}

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/", strings.NewReader(body))
	h.Generate(rec, req)
	return rec
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		body       string
		genErr     error
		wantStatus int
		wantPrompt string
		wantBody   string
	}{
		{
			name:       "template with variables",
			template:   "${n} items about ${topic}",
			body:       `{"topic":"cats","n":3}`,
			wantStatus: http.StatusOK,
			wantPrompt: "3 items about cats",
			wantBody:   `{"title":"Generated Content","data":[1,2]}`,
		},
		{
			name:       "request prompt wins",
			template:   "unused",
			body:       `{"prompt":"hi ${who}","who":"there","title":"Greeting"}`,
			wantStatus: http.StatusOK,
			wantPrompt: "hi there",
			wantBody:   `{"title":"Greeting","data":[1,2]}`,
		},
		{
			name:       "no prompt at all",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not an object",
			template:   "x",
			body:       `[1]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "generator failure",
			template:   "x",
			body:       `{}`,
			genErr:     errors.New("No array found"),
			wantStatus: http.StatusInternalServerError,
			wantPrompt: "x",
			wantBody:   `{"error":"No array found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{data: stdjson.RawMessage(`[1,2]`), err: tt.genErr}
			rec := serve(NewHandler(gen, tt.template, logging.NewNopLogger()), tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantPrompt, gen.prompt)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
