package health

import (
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounter int

func (c fixedCounter) Count() int { return int(c) }

func TestGetHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(fixedCounter(3)).GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got healthResponse
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 3, got.Rooms)
	assert.NotEmpty(t, got.Timestamp)
}
