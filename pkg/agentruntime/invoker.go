package agentruntime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harun/invoke-agent/internal/metrics"
	"github.com/harun/invoke-agent/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Invoker sends one prompt to an agent and collects the reply
type Invoker struct {
	client       Client
	agentID      string
	agentAliasID string
	enableTrace  bool
	endSession   bool
	collector    *Collector
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	newSessionID func() string
}

// Config holds invoker configuration
type Config struct {
	Client       Client
	AgentID      string
	AgentAliasID string
	Decode       DecodeMode
	EnableTrace  bool
	EndSession   bool
	Logger       zerolog.Logger
	// Metrics is optional
	Metrics *metrics.Metrics
	// NewSessionID overrides session id generation; defaults to a random UUID
	NewSessionID func() string
}

// NewInvoker creates a new invoker
func NewInvoker(cfg Config) (*Invoker, error) {
	if cfg.Client == nil {
		return nil, ErrMissingClient
	}
	if cfg.AgentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if cfg.AgentAliasID == "" {
		return nil, fmt.Errorf("agent alias id is required")
	}

	mode, err := ParseDecodeMode(string(cfg.Decode))
	if err != nil {
		return nil, err
	}

	newSessionID := cfg.NewSessionID
	if newSessionID == nil {
		newSessionID = uuid.NewString
	}

	return &Invoker{
		client:       cfg.Client,
		agentID:      cfg.AgentID,
		agentAliasID: cfg.AgentAliasID,
		enableTrace:  cfg.EnableTrace,
		endSession:   cfg.EndSession,
		collector:    NewCollector(mode, cfg.Logger),
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		newSessionID: newSessionID,
	}, nil
}

// Invoke sends prompt under a new session and returns the concatenated response.
// Errors from the client or the stream are returned as-is.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (*Result, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sessionID := i.newSessionID()
	ctx = tracing.NewInvocationContext(ctx, i.agentID, i.agentAliasID, sessionID)
	ctx, span := tracing.StartSpan(
		ctx,
		"invoke-agent.runtime",
		"agent.invoke",
		attribute.String("agent_id", i.agentID),
		attribute.String("agent_alias_id", i.agentAliasID),
		attribute.String("session_id", sessionID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, i.logger)

	start := time.Now()
	fail := func(stage string, err error) (*Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if i.metrics != nil {
			i.metrics.RecordError(i.agentID, stage)
			i.metrics.RecordInvocation(i.agentID, time.Since(start), false)
		}
		logger.Error().Err(err).Str("stage", stage).Msg("Agent invocation failed")
		return nil, err
	}

	logger.Debug().Int("prompt_length", len(prompt)).Msg("Invoking agent")

	stream, err := i.client.InvokeAgent(ctx, Request{
		AgentID:      i.agentID,
		AgentAliasID: i.agentAliasID,
		SessionID:    sessionID,
		InputText:    prompt,
		EnableTrace:  i.enableTrace,
		EndSession:   i.endSession,
	})
	if err != nil {
		return fail(metrics.ErrorTypeCall, err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close response stream")
		}
	}()

	text, stats, err := i.collector.Collect(stream)
	if i.metrics != nil {
		kinds := make(map[string]int, len(stats.Kinds))
		for k, n := range stats.Kinds {
			kinds[string(k)] = n
		}
		i.metrics.RecordStream(kinds, stats.Chunks, stats.Bytes)
	}
	if err != nil {
		stage := metrics.ErrorTypeStream
		if errors.Is(err, ErrInvalidUTF8) {
			stage = metrics.ErrorTypeDecode
		}
		return fail(stage, err)
	}

	duration := time.Since(start)
	if i.metrics != nil {
		i.metrics.RecordInvocation(i.agentID, duration, true)
	}
	span.SetAttributes(
		attribute.Int("response.chunks", stats.Chunks),
		attribute.Int("response.bytes", stats.Bytes),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info().
		Int("events", stats.Events).
		Int("chunks", stats.Chunks).
		Int("bytes", stats.Bytes).
		Dur("duration", duration).
		Msg("Agent invocation completed")

	return &Result{
		SessionID: sessionID,
		Text:      text,
		Chunks:    stats.Chunks,
		Bytes:     stats.Bytes,
		Events:    stats.Events,
	}, nil
}
