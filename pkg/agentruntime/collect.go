package agentruntime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Stats counts what a collector saw on a stream
type Stats struct {
	Events int
	Chunks int
	Bytes  int
	Kinds  map[EventKind]int
}

// Collector drains a Stream into a single string
type Collector struct {
	mode   DecodeMode
	logger zerolog.Logger
}

// NewCollector creates a collector for the given decode mode
func NewCollector(mode DecodeMode, logger zerolog.Logger) *Collector {
	if mode == "" {
		mode = DecodeStream
	}
	return &Collector{
		mode:   mode,
		logger: logger,
	}
}

// Collect reads the stream until io.EOF. On any error the text gathered so far is discarded.
func (c *Collector) Collect(s Stream) (string, Stats, error) {
	stats := Stats{Kinds: make(map[EventKind]int)}

	var raw bytes.Buffer
	var text strings.Builder

	for {
		event, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", stats, err
		}

		stats.Events++
		stats.Kinds[event.Kind]++

		if event.Chunk == nil || event.Chunk.Bytes == nil {
			c.logSkipped(event)
			continue
		}

		stats.Chunks++
		stats.Bytes += len(event.Chunk.Bytes)

		switch c.mode {
		case DecodeChunk:
			if !utf8.Valid(event.Chunk.Bytes) {
				return "", stats, fmt.Errorf("chunk %d: %w", stats.Chunks, ErrInvalidUTF8)
			}
			text.Write(event.Chunk.Bytes)
		default:
			raw.Write(event.Chunk.Bytes)
		}
	}

	if c.mode == DecodeChunk {
		return text.String(), stats, nil
	}

	if !utf8.Valid(raw.Bytes()) {
		return "", stats, ErrInvalidUTF8
	}
	return raw.String(), stats, nil
}

func (c *Collector) logSkipped(event Event) {
	e := c.logger.Debug().Str("kind", string(event.Kind))
	if event.Trace != nil {
		e = e.Str("trace_agent_id", event.Trace.AgentID).
			Str("trace_agent_version", event.Trace.AgentVersion)
	}
	e.Msg("Skipping event without chunk bytes")
}
