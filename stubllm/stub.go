package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"tutor-service/llm"
)

// Client is a deterministic, no-network stand-in for the chat-completion
// provider, for local runs (LLM_PROVIDER=stub) and tests.
type Client struct {
	// Deltas replaces the generated reply when set.
	Deltas []string
	// Err is returned from StreamChat instead of opening a stream.
	Err error
	// Hang keeps the stream open after the last delta until the context ends.
	Hang bool

	mu         sync.Mutex
	lastSystem string
	lastUser   string
}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) StreamChat(ctx context.Context, system, user string) (llm.DeltaStream, error) {
	c.mu.Lock()
	c.lastSystem, c.lastUser = system, user
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}

	deltas := c.Deltas
	if deltas == nil {
		deltas = reply(user)
	}
	return &stream{ctx: ctx, deltas: deltas, hang: c.Hang}, nil
}

// LastPrompt returns the most recent system and user prompt.
func (c *Client) LastPrompt() (system, user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSystem, c.lastUser
}

// reply makes the output deterministic per input, split into word deltas.
func reply(user string) []string {
	sum := sha256.Sum256([]byte(user))
	text := fmt.Sprintf("Stub tutor reply (%s): %s", hex.EncodeToString(sum[:4]), truncate(user, 120))

	words := strings.SplitAfter(text, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

type stream struct {
	ctx    context.Context
	deltas []string
	hang   bool
	closed bool
}

func (s *stream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if len(s.deltas) > 0 {
		d := s.deltas[0]
		s.deltas = s.deltas[1:]
		return d, nil
	}
	if s.hang {
		<-s.ctx.Done()
		return "", s.ctx.Err()
	}
	return "", io.EOF
}

func (s *stream) Close() error {
	s.closed = true
	return nil
}
