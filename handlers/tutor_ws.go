package handlers

import (
	"context"
	"net/http"
	"time"

	"tutor-service/models"
	"tutor-service/sse"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

const (
	wsActionMessage  = "msg"
	wsErrBadRequest  = "bad_request"
	wsFirstMsgWait   = 30 * time.Second
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 64 * 1024
)

// StreamWS is the WebSocket variant of Stream. The client sends one
// {"action":"msg","data":{...}} message and receives JSON events; the
// session budget is counted exactly as on the SSE endpoint.
func (h *TutorHandler) StreamWS(c *gin.Context) {
	// Carry cookies set by earlier middleware (the rate limiter) into the
	// handshake response.
	respHeader := http.Header{}
	for _, v := range c.Writer.Header().Values("Set-Cookie") {
		respHeader.Add("Set-Cookie", v)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		log.Warnf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsFirstMsgWait))

	var msg models.WSClientMessage
	if err := conn.ReadJSON(&msg); err != nil {
		log.WithError(err).Warn("tutor.ws.read")
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	sink := newWSSink(conn, sse.NewCapTransform(h.config.SessionTokenCap, h.config.CharsPerToken))

	if msg.Action != wsActionMessage {
		_ = sink.Error(wsErrBadRequest)
		sink.close(gorilla.CloseUnsupportedData, "unknown action")
		return
	}
	req, err := h.relayRequest(msg.Data)
	if err != nil {
		_ = sink.Error(wsErrBadRequest)
		sink.close(gorilla.ClosePolicyViolation, err.Error())
		return
	}

	ctx, cancel := context.WithCancelCause(c.Request.Context())
	defer cancel(nil)
	ctx, cancelTimeout := context.WithTimeout(ctx, h.config.MaxStreamDuration)
	defer cancelTimeout()

	sink.onCap = func() { cancel(sse.ErrCapped) }

	// The connection is hijacked, so a client going away is only noticed by
	// reading from it.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel(nil)
				return
			}
		}
	}()

	h.relay(ctx, transportWS, c.ClientIP(), req, sink)
	sink.close(gorilla.CloseNormalClosure, "")
}

// wsSink writes relay events as JSON messages and applies the session cap
// to the SSE rendering of each event.
type wsSink struct {
	conn      *gorilla.Conn
	transform *sse.CapTransform
	onCap     func()
	done      bool
}

func newWSSink(conn *gorilla.Conn, t *sse.CapTransform) *wsSink {
	return &wsSink{conn: conn, transform: t}
}

func (s *wsSink) Open() error {
	return s.send(models.WSEvent{Event: sse.EventOpen}, sse.Frame(sse.EventOpen, []byte("{}")))
}

func (s *wsSink) Delta(text string) error {
	return s.send(models.WSEvent{Delta: text}, sse.DeltaFrame(text))
}

func (s *wsSink) Done() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.send(models.WSEvent{Event: sse.EventDone}, sse.Frame(sse.EventDone, []byte("{}")))
}

func (s *wsSink) Error(code string) error {
	return s.send(models.WSEvent{Event: sse.EventError, Error: code}, sse.ErrorFrame(code))
}

func (s *wsSink) send(ev models.WSEvent, frame []byte) error {
	if s.transform.Announced() {
		return sse.ErrCapped
	}
	if err := s.write(ev); err != nil {
		return err
	}

	if _, terminate := s.transform.Transform(frame); terminate {
		if err := s.write(models.WSEvent{
			Event:     sse.EventCap,
			Reason:    sse.CapReason,
			CapTokens: s.transform.TokenCap(),
			CapChars:  s.transform.CharLimit(),
		}); err != nil {
			return err
		}
		if s.onCap != nil {
			s.onCap()
		}
	}
	return nil
}

func (s *wsSink) write(ev models.WSEvent) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(ev)
}

func (s *wsSink) close(code int, text string) {
	_ = s.conn.WriteControl(gorilla.CloseMessage, gorilla.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
