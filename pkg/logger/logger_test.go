package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	output = buf
	mu.Unlock()

	rebuild()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		mu.Unlock()
		rebuild()
	}
	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Debug("debug message")
	Info("info message")
	Warn("warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestContextFieldsInjected(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()
	SetLevel("DEBUG")

	lc := NewLogContext().WithTrace(42, 7).WithService("billing")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "handled call")

	out := buf.String()
	assert.Contains(t, out, "trace_id=42")
	assert.Contains(t, out, "span_id=7")
	assert.Contains(t, out, "service=billing")
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext().WithService("billing")
	clone := lc.WithCaller("payments", "")

	assert.Equal(t, "billing", clone.Service)
	assert.Equal(t, "payments", clone.CallerName)
	assert.Equal(t, "billing", lc.Service)
	assert.Empty(t, lc.CallerName)
}
