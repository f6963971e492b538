package agentruntime

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyPrompt is returned when Invoke is called without input text
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrMissingClient is returned when an Invoker is built without a client
	ErrMissingClient = errors.New("agent runtime client is required")

	// ErrInvalidUTF8 is returned when chunk bytes do not decode as UTF-8
	ErrInvalidUTF8 = errors.New("response is not valid UTF-8")
)

// Client is the capability to start one agent invocation
type Client interface {
	// InvokeAgent sends the request and returns the response event stream
	InvokeAgent(ctx context.Context, req Request) (Stream, error)
}

// Stream is an ordered, finite, non-restartable sequence of events.
// Recv returns io.EOF once the stream has been fully delivered.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// Request holds the parameters of a single invocation
type Request struct {
	AgentID      string `json:"agent_id"`
	AgentAliasID string `json:"agent_alias_id"`
	SessionID    string `json:"session_id"`
	InputText    string `json:"input_text"`
	EnableTrace  bool   `json:"enable_trace,omitempty"`
	EndSession   bool   `json:"end_session,omitempty"`
}

// EventKind identifies the payload carried by an event
type EventKind string

const (
	EventChunk         EventKind = "chunk"
	EventTrace         EventKind = "trace"
	EventReturnControl EventKind = "return_control"
	EventFiles         EventKind = "files"
	EventUnknown       EventKind = "unknown"
)

// Event is one record of the response stream
type Event struct {
	Kind  EventKind  `json:"kind"`
	Chunk *Chunk     `json:"chunk,omitempty"`
	Trace *TraceInfo `json:"trace,omitempty"`
}

// Chunk carries part of the textual response
type Chunk struct {
	Bytes []byte `json:"bytes,omitempty"`
}

// TraceInfo identifies the agent that emitted a trace event
type TraceInfo struct {
	AgentID      string `json:"agent_id,omitempty"`
	AgentAliasID string `json:"agent_alias_id,omitempty"`
	AgentVersion string `json:"agent_version,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
}

// ChunkEvent builds a chunk event from raw bytes
func ChunkEvent(b []byte) Event {
	return Event{Kind: EventChunk, Chunk: &Chunk{Bytes: b}}
}

// Result is the outcome of a successful invocation
type Result struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Chunks    int    `json:"chunks"`
	Bytes     int    `json:"bytes"`
	Events    int    `json:"events"`
}

// DecodeMode selects how chunk bytes are turned into text
type DecodeMode string

const (
	// DecodeStream concatenates raw bytes and decodes once at the end
	DecodeStream DecodeMode = "stream"
	// DecodeChunk decodes every chunk on its own before concatenating
	DecodeChunk DecodeMode = "chunk"
)

// ParseDecodeMode maps a configuration value to a DecodeMode.
// An empty value selects DecodeStream.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch DecodeMode(s) {
	case "", DecodeStream:
		return DecodeStream, nil
	case DecodeChunk:
		return DecodeChunk, nil
	default:
		return "", fmt.Errorf("invalid decode mode %q (must be: stream, chunk)", s)
	}
}
