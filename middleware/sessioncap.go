package middleware

import (
	"context"
	"strings"

	"tutor-service/sse"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// CapTransformKey is the gin context key under which SessionCap stores the
// stream's *sse.CapTransform.
const CapTransformKey = "session_cap"

// SessionCap limits every text/event-stream response to tokenCap tokens of
// charsPerToken characters. The first body write decides: responses of any
// other content type pass through untouched. When the budget is spent the
// cap frame is written and flushed, the request context is canceled with
// cause sse.ErrCapped and later writes fail with sse.ErrCapped.
func SessionCap(tokenCap, charsPerToken int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithCancelCause(c.Request.Context())
		defer cancel(nil)
		c.Request = c.Request.WithContext(ctx)

		t := sse.NewCapTransform(tokenCap, charsPerToken)
		c.Set(CapTransformKey, t)

		w := &capResponseWriter{ResponseWriter: c.Writer, transform: t, path: c.Request.URL.Path}
		w.onCap = func() {
			w.ResponseWriter.Flush()
			cancel(sse.ErrCapped)
			log.WithFields(log.Fields{
				"path":       w.path,
				"cap_tokens": t.TokenCap(),
				"cap_chars":  t.CharLimit(),
				"sent_chars": t.Sent(),
			}).Info("tutor.stream.cap")
		}
		c.Writer = w

		c.Next()
	}
}

// GetCapTransform returns the transform SessionCap installed, if any.
func GetCapTransform(c *gin.Context) (*sse.CapTransform, bool) {
	v, ok := c.Get(CapTransformKey)
	if !ok {
		return nil, false
	}
	t, ok := v.(*sse.CapTransform)
	return t, ok
}

type capResponseWriter struct {
	gin.ResponseWriter
	transform *sse.CapTransform
	onCap     func()
	path      string

	decided bool
	capped  *sse.CapWriter
}

func (w *capResponseWriter) Write(p []byte) (int, error) {
	if !w.decided {
		w.decided = true
		if strings.Contains(w.Header().Get("Content-Type"), sse.ContentType) {
			w.capped = sse.NewCapWriter(w.ResponseWriter, w.transform, w.onCap)
		}
	}
	if w.capped == nil {
		return w.ResponseWriter.Write(p)
	}
	return w.capped.Write(p)
}

func (w *capResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
