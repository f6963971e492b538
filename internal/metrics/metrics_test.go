package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	if m.registry == nil {
		t.Error("Registry is nil")
	}

	if m.InvocationsTotal == nil {
		t.Error("InvocationsTotal is nil")
	}
	if m.InvocationDuration == nil {
		t.Error("InvocationDuration is nil")
	}
	if m.InvocationErrorsTotal == nil {
		t.Error("InvocationErrorsTotal is nil")
	}
	if m.StreamEventsTotal == nil {
		t.Error("StreamEventsTotal is nil")
	}
	if m.ResponseChunksTotal == nil {
		t.Error("ResponseChunksTotal is nil")
	}
	if m.ResponseBytesTotal == nil {
		t.Error("ResponseBytesTotal is nil")
	}
}

func TestRecordInvocation(t *testing.T) {
	m := NewMetrics()

	m.RecordInvocation("AGENT12345", 1500*time.Millisecond, true)
	m.RecordInvocation("AGENT12345", 200*time.Millisecond, false)
	m.RecordInvocation("AGENT12345", 300*time.Millisecond, false)

	if got := testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("AGENT12345", "success")); got != 1 {
		t.Errorf("Expected 1 successful invocation, got %v", got)
	}
	if got := testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("AGENT12345", "error")); got != 2 {
		t.Errorf("Expected 2 failed invocations, got %v", got)
	}
	if got := testutil.CollectAndCount(m.InvocationDuration); got != 1 {
		t.Errorf("Expected 1 duration series, got %d", got)
	}
}

func TestRecordError(t *testing.T) {
	m := NewMetrics()

	m.RecordError("AGENT12345", ErrorTypeStream)

	if got := testutil.ToFloat64(m.InvocationErrorsTotal.WithLabelValues("AGENT12345", ErrorTypeStream)); got != 1 {
		t.Errorf("Expected 1 stream error, got %v", got)
	}
}

func TestRecordStream(t *testing.T) {
	m := NewMetrics()

	m.RecordStream(map[string]int{"chunk": 2, "trace": 1}, 2, 5)

	if got := testutil.ToFloat64(m.StreamEventsTotal.WithLabelValues("chunk")); got != 2 {
		t.Errorf("Expected 2 chunk events, got %v", got)
	}
	if got := testutil.ToFloat64(m.StreamEventsTotal.WithLabelValues("trace")); got != 1 {
		t.Errorf("Expected 1 trace event, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResponseChunksTotal); got != 2 {
		t.Errorf("Expected 2 chunks, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResponseBytesTotal); got != 5 {
		t.Errorf("Expected 5 bytes, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordInvocation("AGENT12345", time.Second, true)

	path := filepath.Join(t.TempDir(), "textfile", "invoke_agent.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}

	output := string(data)
	for _, name := range []string{
		"agent_invocations_total",
		"agent_invocation_duration_seconds",
	} {
		if !strings.Contains(output, name) {
			t.Errorf("Textfile missing metric %s", name)
		}
	}
}

func TestRegistry(t *testing.T) {
	m := NewMetrics()

	if m.Registry() == nil {
		t.Fatal("Registry returned nil")
	}

	m.ResponseChunksTotal.Inc()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected at least one metric family")
	}
}
