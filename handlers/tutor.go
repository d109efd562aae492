package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"tutor-service/config"
	"tutor-service/llm"
	"tutor-service/metrics"
	"tutor-service/models"
	"tutor-service/openai"
	"tutor-service/sse"
	"tutor-service/tutor"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

const (
	transportSSE = "sse"
	transportWS  = "ws"
)

type TutorHandler struct {
	config   *config.Config
	streamer llm.Streamer
	upgrader gorilla.Upgrader
}

func NewTutorHandler(cfg *config.Config, streamer llm.Streamer) *TutorHandler {
	return &TutorHandler{
		config:   cfg,
		streamer: streamer,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

// Stream answers one tutor question as server-sent events. Parameters come
// from the query string on GET and from a JSON body on POST. Problems with
// the request are reported as plain 400 responses before any event is sent.
func (h *TutorHandler) Stream(c *gin.Context) {
	var req models.StreamRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warnf("Invalid tutor stream body: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	} else if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	relayReq, err := h.relayRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.MaxStreamDuration)
	defer cancel()

	h.relay(ctx, transportSSE, c.ClientIP(), relayReq, sse.NewEmitter(c.Writer))
}

// relayRequest checks the message and trims the free-text fields.
func (h *TutorHandler) relayRequest(req models.StreamRequest) (tutor.Request, error) {
	message := strings.TrimSpace(req.Text())
	if message == "" {
		return tutor.Request{}, errors.New("message is required")
	}
	if h.config.MaxMessageChars > 0 && utf8.RuneCountInString(message) > h.config.MaxMessageChars {
		return tutor.Request{}, fmt.Errorf("message exceeds %d characters", h.config.MaxMessageChars)
	}
	return tutor.Request{
		CourseTitle: strings.TrimSpace(req.CourseTitle),
		Scope:       strings.TrimSpace(req.Scope),
		Message:     message,
	}, nil
}

// relay runs one relay and records how it ended.
func (h *TutorHandler) relay(ctx context.Context, transport, clientIP string, req tutor.Request, sink tutor.Sink) tutor.Result {
	start := time.Now()
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	fields := log.Fields{
		"transport":    transport,
		"client_ip":    clientIP,
		"source":       h.streamer.SourceName(),
		"course_title": req.CourseTitle,
		"message_len":  utf8.RuneCountInString(req.Message),
	}
	log.WithFields(fields).Info("tutor.stream.open")

	res := tutor.Relay(ctx, h.streamer, req, sink)

	elapsed := time.Since(start)
	metrics.StreamsTotal.WithLabelValues(transport, string(res.Outcome)).Inc()
	metrics.StreamDurationSeconds.WithLabelValues(string(res.Outcome)).Observe(elapsed.Seconds())

	entry := log.WithFields(fields).WithFields(log.Fields{
		"outcome":     res.Outcome,
		"deltas":      res.Deltas,
		"duration_ms": elapsed.Milliseconds(),
	})
	if res.Outcome == tutor.OutcomeError {
		kind := upstreamErrorKind(res)
		metrics.UpstreamErrorsTotal.WithLabelValues(kind).Inc()
		entry.WithField("kind", kind).WithError(res.Err).Error("tutor.stream.upstream_error")
		return res
	}
	entry.Info("tutor.stream.end")
	return res
}

func upstreamErrorKind(res tutor.Result) string {
	var upstreamErr *openai.UpstreamError
	switch {
	case errors.As(res.Err, &upstreamErr):
		return "status"
	case errors.Is(res.Err, openai.ErrUpstreamTimeout), errors.Is(res.Err, context.DeadlineExceeded):
		return "timeout"
	case !res.Opened:
		return "connect"
	default:
		return "read"
	}
}

// originChecker accepts WebSocket upgrades from the configured origins.
func originChecker(allowedOrigins string) func(r *http.Request) bool {
	list := strings.TrimSpace(allowedOrigins)
	if list == "" || list == "*" {
		return func(r *http.Request) bool { return true }
	}
	allowed := make(map[string]bool)
	for _, o := range strings.Split(list, ",") {
		allowed[strings.TrimSpace(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
