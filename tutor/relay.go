// Package tutor relays one scoped question to the upstream model and
// re-emits the answer through a transport-neutral sink.
package tutor

import (
	"context"
	"errors"
	"io"

	"tutor-service/llm"
	"tutor-service/sse"
)

// Sink receives the tutor's event vocabulary. The SSE emitter and the
// WebSocket writer both implement it. A write that returns sse.ErrCapped
// means the session budget was spent and the cap notice already delivered.
type Sink interface {
	Open() error
	Delta(text string) error
	Done() error
	Error(code string) error
}

type Outcome string

const (
	OutcomeDone     Outcome = "done"
	OutcomeCap      Outcome = "cap"
	OutcomeError    Outcome = "error"
	OutcomeCanceled Outcome = "canceled"
)

// Result describes how a relay ended.
type Result struct {
	Outcome Outcome
	// Opened is true once the upstream accepted the request.
	Opened bool
	Deltas int
	// Err is the upstream or sink error that ended the relay, if any.
	Err error
}

// Relay streams the answer for req into sink. Deltas are forwarded in the
// order they arrive; synthetic frames are only written at the end.
//
// The request context decides how interruptions are reported: a context
// canceled with cause sse.ErrCapped ends as a cap, a plain cancellation is a
// client that went away and nothing more is written, anything else (deadline,
// upstream timeout, read failure) gets the upstream error frame.
func Relay(ctx context.Context, streamer llm.Streamer, req Request, sink Sink) Result {
	system := SystemPrompt(req.CourseTitle, req.Scope)

	stream, err := streamer.StreamChat(ctx, system, req.Message)
	if err != nil {
		return fail(ctx, sink, Result{Err: err})
	}
	defer stream.Close()

	res := Result{Opened: true}
	if err := sink.Open(); err != nil {
		return sinkFailed(res, err)
	}

	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if err := sink.Done(); err != nil {
				return sinkFailed(res, err)
			}
			res.Outcome = OutcomeDone
			return res
		}
		if err != nil {
			res.Err = err
			return fail(ctx, sink, res)
		}

		if err := sink.Delta(delta); err != nil {
			return sinkFailed(res, err)
		}
		res.Deltas++
	}
}

func fail(ctx context.Context, sink Sink, res Result) Result {
	if ctx.Err() != nil {
		if errors.Is(context.Cause(ctx), sse.ErrCapped) {
			res.Outcome = OutcomeCap
			return res
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			res.Outcome = OutcomeCanceled
			return res
		}
	}

	if err := sink.Error(sse.ErrorUpstream); err != nil {
		return sinkFailed(res, err)
	}
	res.Outcome = OutcomeError
	return res
}

func sinkFailed(res Result, err error) Result {
	if errors.Is(err, sse.ErrCapped) {
		res.Outcome = OutcomeCap
		return res
	}
	res.Outcome = OutcomeCanceled
	if res.Err == nil {
		res.Err = err
	}
	return res
}
