package llm

import "context"

// Streamer abstracts the chat-completion provider the tutor relays.
// Implementations must be concurrency-safe; each call opens an independent stream.
type Streamer interface {
	// StreamChat opens a streaming completion for one system/user prompt pair.
	// An error means no stream was opened (connect failure, non-2xx status).
	StreamChat(ctx context.Context, system, user string) (DeltaStream, error)
	// SourceName returns a short provider label for logs (e.g., "OpenAI", "Stub").
	SourceName() string
}

// DeltaStream yields incremental text fragments of one completion.
type DeltaStream interface {
	// Recv returns the next non-empty delta. It returns io.EOF once the
	// provider signals the end of the completion or the body ends.
	Recv() (string, error)
	// Close releases the stream and aborts the upstream request if still open.
	Close() error
}
