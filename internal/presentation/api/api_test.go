package api

import (
	stdjson "encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/oekaki/internal/application/game"
	"github.com/hilthontt/oekaki/internal/infrastructure/configs"
	"github.com/hilthontt/oekaki/internal/infrastructure/events"
	"github.com/hilthontt/oekaki/internal/infrastructure/llm"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/metrics"
	"github.com/hilthontt/oekaki/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/oekaki/internal/persistence/repository"
	gameHandler "github.com/hilthontt/oekaki/internal/presentation/handler/game"
	healthHandler "github.com/hilthontt/oekaki/internal/presentation/handler/health"
	promptHandler "github.com/hilthontt/oekaki/internal/presentation/handler/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, limiter ratelimiter.Limiter) *httptest.Server {
	t.Helper()

	cfg := &configs.Config{
		HTTP: configs.HTTPConfig{
			AllowedOrigins: []string{"http://game.example"},
			AllowedHeaders: []string{"Content-Type"},
		},
	}
	logger := logging.NewNopLogger()
	m := metrics.New()
	repo := repository.NewRoomRepository(10, time.Hour)
	judge := llm.NewClient(llm.NewStaticProvider(), time.Second, logger, m)

	relay := game.NewRelay(repo, judge, events.NewNoopRoomPublisher(), nil, logger, m, game.Options{})
	t.Cleanup(relay.Wait)

	if limiter == nil {
		limiter = ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 1000, MaxBurst: 1000})
	}

	app := NewApplication(
		cfg,
		gameHandler.NewHandler(relay, gameHandler.Options{}, logger),
		promptHandler.NewHandler(judge, "${animal}の名前を1つ", logger),
		healthHandler.NewHandler(repo),
		logger,
		limiter,
		m,
	)

	srv := httptest.NewServer(app.Mount())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type envelope struct {
	Type   string             `json:"type"`
	RoomID string             `json:"roomId"`
	Data   stdjson.RawMessage `json:"data"`
}

func sendFrame(t *testing.T, conn *websocket.Conn, eventType string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": eventType, "data": data}))
}

// readUntil reads frames until one of eventType arrives and returns it
// along with every frame type seen before it.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) (envelope, []string) {
	t.Helper()
	var seen []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == eventType {
			return env, seen
		}
		seen = append(seen, env.Type)
	}
}

func TestWebsocket_FullRound(t *testing.T) {
	srv := newTestServer(t, nil)
	a, b := dial(t, srv), dial(t, srv)

	sendFrame(t, a, "joinRoom", map[string]any{"roomId": "R1", "role": "drawer", "name": "Ann"})
	readUntil(t, a, "roomState")
	sendFrame(t, b, "joinRoom", map[string]any{"roomId": "R1", "role": "guesser", "name": "Bea"})
	state, _ := readUntil(t, b, "roomState")
	assert.Equal(t, "R1", state.RoomID)
	assert.JSONEq(t, `{"drawerConnected":true,"guesserConnected":true,"drawerName":"Ann","guesserName":"Bea","round":0,"drawingDone":false}`, string(state.Data))

	sendFrame(t, a, "startRound", map[string]any{})
	topic, _ := readUntil(t, a, "topicForDrawer")
	assert.JSONEq(t, `{"topic":"ねこ","hint":"動物","difficulty":1,"round":1}`, string(topic.Data))

	started, seen := readUntil(t, b, "roundStartedForGuesser")
	assert.JSONEq(t, `{"round":1}`, string(started.Data))
	assert.Contains(t, seen, "clearCanvas")
	assert.NotContains(t, seen, "topicForDrawer")

	sendFrame(t, a, "stroke", map[string]any{"points": []map[string]int{{"x": 1, "y": 1}, {"x": 2, "y": 2}}, "color": "#f00", "size": 4})
	stroke, _ := readUntil(t, b, "stroke")
	assert.JSONEq(t, `{"points":[{"x":1,"y":1},{"x":2,"y":2}],"color":"#f00","size":4}`, string(stroke.Data))

	sendFrame(t, a, "finishDrawing", map[string]any{"drawingScore": 50})
	readUntil(t, b, "drawingFinished")

	sendFrame(t, b, "submitGuess", map[string]any{"guess": "ねこ", "drawingScore": 50})
	for _, conn := range []*websocket.Conn{a, b} {
		result, _ := readUntil(t, conn, "roundResult")
		var got map[string]any
		require.NoError(t, stdjson.Unmarshal(result.Data, &got))
		assert.Equal(t, true, got["correct"])
		assert.Equal(t, "ねこ", got["topic"])
		assert.Equal(t, float64(85), got["totalScore"])
	}
}

func TestWebsocket_ErrorEnvelope(t *testing.T) {
	srv := newTestServer(t, nil)
	a := dial(t, srv)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"joinRoom","data":{"roomId":"x","role":"judge"}}`)))
	env, _ := readUntil(t, a, "errorMessage")

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, stdjson.Unmarshal(env.Data, &payload))
	assert.Equal(t, "invalid_role", payload.Code)
	assert.NotEmpty(t, payload.Message)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/api/health", "/api/healthz", "/api/ready", "/api/live"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(body), `"status":"ok"`)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "oekaki_http_requests_total")
}

func TestPromptEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/", "application/json", strings.NewReader(`{"title":"動物","animal":"ねこ"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Title string           `json:"title"`
		Data  []map[string]any `json:"data"`
	}
	require.NoError(t, stdjson.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "動物", got.Title)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "ねこ", got.Data[0]["topic"])
}

func TestCors(t *testing.T) {
	srv := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/", nil)
	req.Header.Set("Origin", "http://game.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://game.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	srv := newTestServer(t, ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 1, MaxBurst: 1}))

	post := func() int {
		resp, err := http.Post(srv.URL+"/api/", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}
