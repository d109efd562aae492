package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"tutor-service/config"
	"tutor-service/llm"
)

const doneSentinel = "[DONE]"

// ErrUpstreamTimeout is returned when the upstream sends nothing for longer
// than the configured read timeout.
var ErrUpstreamTimeout = errors.New("openai: upstream read timeout")

// UpstreamError carries the status and body of a non-2xx upstream response.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openai: status=%d body=%s", e.StatusCode, snippet(e.Body, 300))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

type Client struct {
	apiKey      string
	model       string
	baseURL     string
	readTimeout time.Duration
	client      *http.Client
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type StreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		baseURL:     cfg.OpenAIBaseURL,
		readTimeout: cfg.UpstreamReadTimeout,
		// No client timeout: streams are bounded by the read timeout and the caller's context.
		client: &http.Client{},
	}
}

func (c *Client) SourceName() string { return "OpenAI" }

// StreamChat opens a streaming chat completion. Connection failures and
// non-2xx responses are returned as errors and leave nothing open.
func (c *Client) StreamChat(ctx context.Context, system, user string) (llm.DeltaStream, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &stream{cancel: cancel, readTimeout: c.readTimeout, buf: make([]byte, 4096)}
	s.timer = time.AfterFunc(c.readTimeout, s.expire)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		s.abort()
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		s.abort()
		if s.timedOut.Load() {
			return nil, ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("openai request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		s.abort()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	s.body = resp.Body
	s.timer.Reset(c.readTimeout)
	return s, nil
}

// stream decodes one upstream response body into text deltas.
type stream struct {
	body        io.ReadCloser
	cancel      context.CancelFunc
	timer       *time.Timer
	readTimeout time.Duration
	timedOut    atomic.Bool

	dec     FrameDecoder
	buf     []byte
	pending []string
	eof     bool
	done    bool
}

func (s *stream) Recv() (string, error) {
	for {
		if len(s.pending) > 0 {
			delta := s.pending[0]
			s.pending = s.pending[1:]
			return delta, nil
		}
		if s.done {
			return "", io.EOF
		}
		if s.eof {
			s.enqueue(s.dec.Flush())
			s.done = true
			continue
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.timer.Reset(s.readTimeout)
			s.enqueue(s.dec.Feed(s.buf[:n]))
		}
		if errors.Is(err, io.EOF) {
			s.eof = true
			continue
		}
		if err != nil {
			if s.timedOut.Load() {
				return "", ErrUpstreamTimeout
			}
			return "", fmt.Errorf("read upstream: %w", err)
		}
	}
}

// enqueue decodes block payloads, skipping any that are not valid JSON.
func (s *stream) enqueue(payloads []string) {
	for _, data := range payloads {
		if s.done {
			return
		}
		if strings.TrimSpace(data) == doneSentinel {
			s.done = true
			return
		}

		var streamResp StreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			continue
		}
		if len(streamResp.Choices) > 0 && streamResp.Choices[0].Delta.Content != "" {
			s.pending = append(s.pending, streamResp.Choices[0].Delta.Content)
		}
	}
}

func (s *stream) expire() {
	s.timedOut.Store(true)
	s.cancel()
}

func (s *stream) abort() {
	s.timer.Stop()
	s.cancel()
}

func (s *stream) Close() error {
	s.abort()
	if s.body == nil {
		return nil
	}
	return s.body.Close()
}
