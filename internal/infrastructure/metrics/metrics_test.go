package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RoundStarted()
	m.RoundResolved(true)
	m.RoundResolved(false)
	m.RoundResolved(false)
	m.EventRejected("not_drawer")
	m.ObserveJudge("judge_guess", 0.5, errors.New("timeout"))
	m.ObserveJudge("judge_guess", 0.1, nil)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.SetRoomsActive(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.roundsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.roundResults.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.roundResults.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsRejected.WithLabelValues("not_drawer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.judgeFailures.WithLabelValues("judge_guess")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsActive))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.roomsActive))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.StrokeRelayed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "oekaki_strokes_relayed_total 1")
	assert.Contains(t, string(body), "oekaki_go_routines")
}
