package agentruntime_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harun/invoke-agent/internal/metrics"
	"github.com/harun/invoke-agent/pkg/agentruntime"
	"github.com/harun/invoke-agent/pkg/agentruntime/runtimetest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoker(t *testing.T, client agentruntime.Client, m *metrics.Metrics) *agentruntime.Invoker {
	t.Helper()

	inv, err := agentruntime.NewInvoker(agentruntime.Config{
		Client:       client,
		AgentID:      "AGENT12345",
		AgentAliasID: "TSTALIASID",
		Logger:       zerolog.Nop(),
		Metrics:      m,
	})
	require.NoError(t, err)
	return inv
}

func TestNewInvoker(t *testing.T) {
	t.Run("should fail without client", func(t *testing.T) {
		_, err := agentruntime.NewInvoker(agentruntime.Config{
			AgentID:      "AGENT12345",
			AgentAliasID: "TSTALIASID",
		})

		assert.ErrorIs(t, err, agentruntime.ErrMissingClient)
	})

	t.Run("should fail without agent id", func(t *testing.T) {
		_, err := agentruntime.NewInvoker(agentruntime.Config{
			Client:       runtimetest.NewClient(),
			AgentAliasID: "TSTALIASID",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent id")
	})

	t.Run("should fail without alias id", func(t *testing.T) {
		_, err := agentruntime.NewInvoker(agentruntime.Config{
			Client:  runtimetest.NewClient(),
			AgentID: "AGENT12345",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "alias id")
	})

	t.Run("should fail with unknown decode mode", func(t *testing.T) {
		_, err := agentruntime.NewInvoker(agentruntime.Config{
			Client:       runtimetest.NewClient(),
			AgentID:      "AGENT12345",
			AgentAliasID: "TSTALIASID",
			Decode:       "utf16",
		})

		assert.Error(t, err)
	})
}

func TestInvoke(t *testing.T) {
	t.Run("should send request and return concatenated text", func(t *testing.T) {
		client := runtimetest.NewClient("He", "llo")
		inv := newTestInvoker(t, client, nil)

		result, err := inv.Invoke(context.Background(), "hello there")

		require.NoError(t, err)
		assert.Equal(t, "Hello", result.Text)
		assert.Equal(t, 2, result.Chunks)

		reqs := client.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "AGENT12345", reqs[0].AgentID)
		assert.Equal(t, "TSTALIASID", reqs[0].AgentAliasID)
		assert.Equal(t, "hello there", reqs[0].InputText)
		assert.Equal(t, result.SessionID, reqs[0].SessionID)
		assert.False(t, reqs[0].EnableTrace)
	})

	t.Run("should generate a UUID session id per invocation", func(t *testing.T) {
		client := runtimetest.NewClient("ok")
		inv := newTestInvoker(t, client, nil)

		first, err := inv.Invoke(context.Background(), "same prompt")
		require.NoError(t, err)
		second, err := inv.Invoke(context.Background(), "same prompt")
		require.NoError(t, err)

		assert.NotEqual(t, first.SessionID, second.SessionID)

		parsed, err := uuid.Parse(first.SessionID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
	})

	t.Run("should use injected session id generator", func(t *testing.T) {
		client := runtimetest.NewClient("ok")
		inv, err := agentruntime.NewInvoker(agentruntime.Config{
			Client:       client,
			AgentID:      "AGENT12345",
			AgentAliasID: "TSTALIASID",
			EnableTrace:  true,
			EndSession:   true,
			Logger:       zerolog.Nop(),
			NewSessionID: func() string { return "fixed-session" },
		})
		require.NoError(t, err)

		result, err := inv.Invoke(context.Background(), "hi")
		require.NoError(t, err)

		assert.Equal(t, "fixed-session", result.SessionID)
		req := client.Requests()[0]
		assert.True(t, req.EnableTrace)
		assert.True(t, req.EndSession)
	})

	t.Run("should reject empty prompt", func(t *testing.T) {
		client := runtimetest.NewClient("ok")
		inv := newTestInvoker(t, client, nil)

		_, err := inv.Invoke(context.Background(), "")

		assert.ErrorIs(t, err, agentruntime.ErrEmptyPrompt)
		assert.Empty(t, client.Requests())
	})

	t.Run("should return client error unchanged", func(t *testing.T) {
		boom := errors.New("AccessDeniedException: not authorized")
		inv := newTestInvoker(t, runtimetest.FailingClient(boom), nil)

		result, err := inv.Invoke(context.Background(), "hi")

		assert.Nil(t, result)
		assert.Equal(t, boom, err)
	})

	t.Run("should close the stream", func(t *testing.T) {
		stream := runtimetest.Chunks("a")
		client := &runtimetest.Client{
			Respond: func(agentruntime.Request) *runtimetest.Stream { return stream },
		}
		inv := newTestInvoker(t, client, nil)

		_, err := inv.Invoke(context.Background(), "hi")

		require.NoError(t, err)
		assert.True(t, stream.Closed())
	})

	t.Run("should close the stream on failure", func(t *testing.T) {
		stream := runtimetest.Chunks("a")
		stream.Err = errors.New("stream reset")
		client := &runtimetest.Client{
			Respond: func(agentruntime.Request) *runtimetest.Stream { return stream },
		}
		inv := newTestInvoker(t, client, nil)

		result, err := inv.Invoke(context.Background(), "hi")

		assert.Nil(t, result)
		assert.EqualError(t, err, "stream reset")
		assert.True(t, stream.Closed())
	})
}

func TestInvokeMetrics(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		m := metrics.NewMetrics()
		inv := newTestInvoker(t, runtimetest.NewClient("He", "llo"), m)

		_, err := inv.Invoke(context.Background(), "hi")
		require.NoError(t, err)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("AGENT12345", "success")))
		assert.Equal(t, float64(2), testutil.ToFloat64(m.ResponseChunksTotal))
		assert.Equal(t, float64(5), testutil.ToFloat64(m.ResponseBytesTotal))
		assert.Equal(t, float64(2), testutil.ToFloat64(m.StreamEventsTotal.WithLabelValues("chunk")))
	})

	t.Run("records call failure", func(t *testing.T) {
		m := metrics.NewMetrics()
		inv := newTestInvoker(t, runtimetest.FailingClient(errors.New("boom")), m)

		_, err := inv.Invoke(context.Background(), "hi")
		require.Error(t, err)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("AGENT12345", "error")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.InvocationErrorsTotal.WithLabelValues("AGENT12345", metrics.ErrorTypeCall)))
	})

	t.Run("records decode failure", func(t *testing.T) {
		m := metrics.NewMetrics()
		client := &runtimetest.Client{
			Respond: func(agentruntime.Request) *runtimetest.Stream {
				return runtimetest.NewStream(agentruntime.ChunkEvent([]byte{0xFF}))
			},
		}
		inv := newTestInvoker(t, client, m)

		_, err := inv.Invoke(context.Background(), "hi")
		require.ErrorIs(t, err, agentruntime.ErrInvalidUTF8)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.InvocationErrorsTotal.WithLabelValues("AGENT12345", metrics.ErrorTypeDecode)))
	})
}

func TestInvokeLogging(t *testing.T) {
	var buf bytes.Buffer
	inv, err := agentruntime.NewInvoker(agentruntime.Config{
		Client:       runtimetest.NewClient("ok"),
		AgentID:      "AGENT12345",
		AgentAliasID: "TSTALIASID",
		Logger:       zerolog.New(&buf),
		NewSessionID: func() string { return "session-log" },
	})
	require.NoError(t, err)

	_, err = inv.Invoke(context.Background(), "hi")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Agent invocation completed")
	assert.Contains(t, out, `"session_id":"session-log"`)
	assert.Contains(t, out, `"agent_id":"AGENT12345"`)
}
