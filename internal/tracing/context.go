package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// RunIDKey is the context key for run ID
	RunIDKey ContextKey = "run_id"
	// AgentIDKey is the context key for agent ID
	AgentIDKey ContextKey = "agent_id"
	// AgentAliasIDKey is the context key for agent alias ID
	AgentAliasIDKey ContextKey = "agent_alias_id"
	// SessionIDKey is the context key for the remote session ID
	SessionIDKey ContextKey = "session_id"
)

// TraceContext holds tracing information
type TraceContext struct {
	TraceID      string
	RunID        string
	AgentID      string
	AgentAliasID string
	SessionID    string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// NewRunID generates a new run ID
func NewRunID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithAgentID adds an agent ID to the context
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, AgentIDKey, agentID)
}

// WithAgentAliasID adds an agent alias ID to the context
func WithAgentAliasID(ctx context.Context, aliasID string) context.Context {
	return context.WithValue(ctx, AgentAliasIDKey, aliasID)
}

// WithSessionID adds a session ID to the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func getString(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string {
	return getString(ctx, TraceIDKey)
}

// GetRunID retrieves the run ID from the context
func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

// GetAgentID retrieves the agent ID from the context
func GetAgentID(ctx context.Context) string {
	return getString(ctx, AgentIDKey)
}

// GetAgentAliasID retrieves the agent alias ID from the context
func GetAgentAliasID(ctx context.Context) string {
	return getString(ctx, AgentAliasIDKey)
}

// GetSessionID retrieves the session ID from the context
func GetSessionID(ctx context.Context) string {
	return getString(ctx, SessionIDKey)
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:      GetTraceID(ctx),
		RunID:        GetRunID(ctx),
		AgentID:      GetAgentID(ctx),
		AgentAliasID: GetAgentAliasID(ctx),
		SessionID:    GetSessionID(ctx),
	}
}

// NewContext creates a new context with tracing information
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.RunID != "" {
		ctx = WithRunID(ctx, tc.RunID)
	}
	if tc.AgentID != "" {
		ctx = WithAgentID(ctx, tc.AgentID)
	}
	if tc.AgentAliasID != "" {
		ctx = WithAgentAliasID(ctx, tc.AgentAliasID)
	}
	if tc.SessionID != "" {
		ctx = WithSessionID(ctx, tc.SessionID)
	}
	return ctx
}

// NewInvocationContext creates a context for one agent invocation with a new run ID
func NewInvocationContext(ctx context.Context, agentID, aliasID, sessionID string) context.Context {
	return NewContext(ctx, &TraceContext{
		RunID:        NewRunID(),
		AgentID:      agentID,
		AgentAliasID: aliasID,
		SessionID:    sessionID,
	})
}
