// Package runtimetest provides in-memory agentruntime clients and streams for tests.
package runtimetest

import (
	"context"
	"io"
	"sync"

	"github.com/harun/invoke-agent/pkg/agentruntime"
)

// Stream replays a fixed list of events, then returns Err (or io.EOF when Err is nil)
type Stream struct {
	Events []agentruntime.Event
	Err    error

	pos    int
	closed bool
}

// NewStream creates a stream that yields events in order
func NewStream(events ...agentruntime.Event) *Stream {
	return &Stream{Events: events}
}

// Chunks creates a stream of chunk events, one per string
func Chunks(parts ...string) *Stream {
	events := make([]agentruntime.Event, 0, len(parts))
	for _, p := range parts {
		events = append(events, agentruntime.ChunkEvent([]byte(p)))
	}
	return NewStream(events...)
}

// Recv implements agentruntime.Stream
func (s *Stream) Recv() (agentruntime.Event, error) {
	if s.pos < len(s.Events) {
		ev := s.Events[s.pos]
		s.pos++
		return ev, nil
	}
	if s.Err != nil {
		return agentruntime.Event{}, s.Err
	}
	return agentruntime.Event{}, io.EOF
}

// Close implements agentruntime.Stream
func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called
func (s *Stream) Closed() bool {
	return s.closed
}

// Client records requests and answers each with the stream returned by Respond
type Client struct {
	// Respond builds the stream for a request; Err is returned instead when set
	Respond func(req agentruntime.Request) *Stream
	Err     error

	mu       sync.Mutex
	requests []agentruntime.Request
}

// NewClient creates a client that answers every request with a fresh chunk stream
func NewClient(parts ...string) *Client {
	return &Client{
		Respond: func(agentruntime.Request) *Stream {
			return Chunks(parts...)
		},
	}
}

// FailingClient creates a client whose calls fail with err before any event
func FailingClient(err error) *Client {
	return &Client{Err: err}
}

// InvokeAgent implements agentruntime.Client
func (c *Client) InvokeAgent(_ context.Context, req agentruntime.Request) (agentruntime.Stream, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	if c.Respond == nil {
		return NewStream(), nil
	}
	return c.Respond(req), nil
}

// Requests returns the requests received so far
func (c *Client) Requests() []agentruntime.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]agentruntime.Request, len(c.requests))
	copy(out, c.requests)
	return out
}
