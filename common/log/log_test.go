package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type syncBuffer struct {
	bytes.Buffer
}

func (s *syncBuffer) Sync() error { return nil }

func TestNewWritesToOutput(t *testing.T) {
	buf := &syncBuffer{}
	l := New(zapcore.AddSync(buf), InfoLevel, false)
	l.Info("hello", "key", "value")

	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "value")
}

func TestWithAddsFields(t *testing.T) {
	buf := &syncBuffer{}
	l := New(zapcore.AddSync(buf), InfoLevel, true)
	l = l.With("node", "42")
	l.Info("joined")

	require.Contains(t, buf.String(), `"node":"42"`)
}

func TestDefaultLoggerIsSingleton(t *testing.T) {
	a := DefaultLogger()
	b := DefaultLogger()
	require.Equal(t, a, b)
}
