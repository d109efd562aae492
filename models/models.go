package models

import "encoding/json"

// StreamRequest is a tutor question, from the query string (GET) or a JSON
// body (POST). Q is the short alias some clients send instead of message.
type StreamRequest struct {
	CourseTitle string `json:"courseTitle" form:"courseTitle"`
	Scope       string `json:"scope" form:"scope"`
	Message     string `json:"message" form:"message"`
	Q           string `json:"q" form:"q"`
}

// Text returns the learner's message, falling back to the q alias.
func (r StreamRequest) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Q
}

// WSClientMessage is the first frame a WebSocket client sends.
type WSClientMessage struct {
	Action string        `json:"action"`
	Data   StreamRequest `json:"data"`
}

// WSEvent is one server message on the WebSocket transport.
type WSEvent struct {
	Event     string `json:"event,omitempty"`
	Delta     string `json:"delta,omitempty"`
	Error     string `json:"error,omitempty"`
	Reason    string `json:"reason,omitempty"`
	CapTokens int    `json:"capTokens,omitempty"`
	CapChars  int    `json:"capChars,omitempty"`
}

// ValidateRequest is a free-text draft to score.
type ValidateRequest struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// ChecksRequest asks for the structured checks of one document kind.
// Now, when set, is the RFC 3339 instant future dates are compared against.
type ChecksRequest struct {
	Kind string          `json:"kind" binding:"required,oneof=yt proposal"`
	Doc  json.RawMessage `json:"doc" binding:"required"`
	Now  string          `json:"now,omitempty"`
}

// ExportRequest accepts either {title, body} or {artifact, context, markdown}.
// Pointers tell an absent field from an empty one.
type ExportRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Artifact *string `json:"artifact"`
	Context  *string `json:"context"`
	Markdown *string `json:"markdown"`
}

type DocxRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type SessionStartRequest struct {
	RoleOrProblem string `json:"roleOrProblem"`
	Track         string `json:"track"`
}

// RateLimitedResponse is the 429 body of the tutor stream rate limiter.
type RateLimitedResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	WindowSeconds int    `json:"windowSeconds"`
	MaxRequests   int    `json:"maxRequests"`
}
