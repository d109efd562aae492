package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tutor-service/config"
	"tutor-service/models"
	"tutor-service/sse"
	"tutor-service/stubllm"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		AllowedOrigins:       "*",
		LLMProvider:          config.ProviderStub,
		SessionTokenCap:      200,
		CharsPerToken:        1,
		UpstreamReadTimeout:  time.Second,
		MaxStreamDuration:    5 * time.Second,
		MaxMessageChars:      50,
		RateLimitWindow:      time.Minute,
		RateLimitMaxRequests: 100,
		RateLimitSecret:      "test-secret",
	}
}

func newTestRouter(cfg *config.Config, stub *stubllm.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return setupRouter(cfg, stub)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func longDeltas(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "xxxxxxxxxx"
	}
	return out
}

func TestTutorStream_GET(t *testing.T) {
	stub := &stubllm.Client{Deltas: []string{"Hi", " there"}}
	r := newTestRouter(testConfig(), stub)

	req := httptest.NewRequest(http.MethodGet, "/tutor-stream?message=hello&scope=hooks&courseTitle=Shorts", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sse.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-transform", w.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", w.Header().Get("Connection"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t,
		"event: open\ndata: {}\n\n"+
			"data: {\"delta\": \"Hi\"}\n\n"+
			"data: {\"delta\": \" there\"}\n\n"+
			"event: done\ndata: {}\n\n",
		w.Body.String())

	system, user := stub.LastPrompt()
	assert.Equal(t, "hello", user)
	assert.Contains(t, system, "hooks")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "n2e_rl=")
}

func TestTutorStream_POSTWithAlias(t *testing.T) {
	stub := &stubllm.Client{Deltas: []string{"ok"}}
	r := newTestRouter(testConfig(), stub)

	req := httptest.NewRequest(http.MethodPost, "/tutor-stream", strings.NewReader(`{"q":"what is a beat?","scope":"beats"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasSuffix(w.Body.String(), "event: done\ndata: {}\n\n"))
	_, user := stub.LastPrompt()
	assert.Equal(t, "what is a beat?", user)
}

func TestTutorStream_BadRequests(t *testing.T) {
	r := newTestRouter(testConfig(), &stubllm.Client{})

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"missing message", httptest.NewRequest(http.MethodGet, "/tutor-stream?scope=x", nil), "message is required"},
		{"blank message", httptest.NewRequest(http.MethodGet, "/tutor-stream?message=%20%20", nil), "message is required"},
		{"too long", httptest.NewRequest(http.MethodGet, "/tutor-stream?message="+strings.Repeat("a", 51), nil), "message exceeds 50 characters"},
		{"bad json", httptest.NewRequest(http.MethodPost, "/tutor-stream", strings.NewReader("{")), "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEqual(t, sse.ContentType, w.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestTutorStream_UpstreamError(t *testing.T) {
	r := newTestRouter(testConfig(), &stubllm.Client{Err: assert.AnError})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/tutor-stream?message=hi", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "event: error\ndata: {\"error\":\"upstream\"}\n\n", w.Body.String())
}

func TestTutorStream_Cap(t *testing.T) {
	r := newTestRouter(testConfig(), &stubllm.Client{Deltas: longDeltas(100)})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/tutor-stream?message=hi", nil))

	body := w.Body.String()
	assert.True(t, strings.HasSuffix(body, string(sse.CapFrame(200, 200))))
	assert.Equal(t, 1, strings.Count(body, "event: cap"))
	assert.NotContains(t, body, "event: done")
	assert.NotContains(t, body, "event: error")
}

func TestTutorStream_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMaxRequests = 1
	r := newTestRouter(cfg, &stubllm.Client{Deltas: []string{"a"}})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/tutor-stream?message=hi", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/tutor-stream?message=hi", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = serve(r, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var body models.RateLimitedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error)
	assert.Equal(t, 60, body.WindowSeconds)
	assert.Equal(t, 1, body.MaxRequests)

	// Other endpoints are not limited.
	w = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidate_Routes(t *testing.T) {
	r := newTestRouter(testConfig(), &stubllm.Client{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/validate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(`{"text":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"fix","score":0,"suggestions":[
		"Add 2–3 concrete details or examples.",
		"Use 3–6 bullets to front‑load actions.",
		"Add one short heading for scannability."]}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(testConfig(), &stubllm.Client{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func dialWS(t *testing.T, srv *httptest.Server) *gorilla.Conn {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/tutor-ws"

	conn, resp, err := gorilla.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "n2e_rl=")
	return conn
}

func readEvents(t *testing.T, conn *gorilla.Conn) []models.WSEvent {
	t.Helper()
	var events []models.WSEvent
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var ev models.WSEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return events
		}
		events = append(events, ev)
	}
}

func TestTutorWS_Done(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(testConfig(), &stubllm.Client{Deltas: []string{"Hel", "lo"}}))
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.WSClientMessage{
		Action: "msg",
		Data:   models.StreamRequest{Scope: "hooks", CourseTitle: "Shorts", Message: "hello"},
	}))

	assert.Equal(t, []models.WSEvent{
		{Event: "open"},
		{Delta: "Hel"},
		{Delta: "lo"},
		{Event: "done"},
	}, readEvents(t, conn))
}

func TestTutorWS_Cap(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(testConfig(), &stubllm.Client{Deltas: longDeltas(100)}))
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.WSClientMessage{Action: "msg", Data: models.StreamRequest{Message: "hello"}}))

	events := readEvents(t, conn)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, models.WSEvent{Event: "cap", Reason: "session_cap", CapTokens: 200, CapChars: 200}, last)
	// Same budget as the SSE endpoint: open plus seven delta frames.
	assert.Len(t, events, 9)
}

func TestTutorWS_BadAction(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(testConfig(), &stubllm.Client{}))
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.WSClientMessage{Action: "ping"}))

	assert.Equal(t, []models.WSEvent{{Event: "error", Error: "bad_request"}}, readEvents(t, conn))
}
