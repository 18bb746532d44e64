package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newTestLogger creates a logger that writes JSON entries to a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestLoggerWritesFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info("annex loaded",
		String("source", "Annex II"),
		Int("rows", 1623),
		Bool("cached", false),
		Duration("elapsed", 20*time.Millisecond),
	)

	out := buf.String()
	assert.Contains(t, out, "annex loaded")
	assert.Contains(t, out, `"source":"Annex II"`)
	assert.Contains(t, out, `"rows":1623`)
}

func TestErrField(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
	assert.Equal(t, "boom", Err(errors.New("boom")).Value)
}

func TestWithAndNamed(t *testing.T) {
	l, buf := newTestLogger(t)
	child := l.With(String("component", "freshness")).Named("worker")
	child.Warn("fetch failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"freshness"`)
	assert.Contains(t, out, "worker")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	// Must not panic.
	l.Debug("msg")
	l.Info("msg", String("k", "v"))
	l.Warn("msg")
	l.Error("msg", Err(errors.New("x")))
	assert.NotNil(t, l.With(String("k", "v")))
	assert.NotNil(t, l.Named("child"))
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, l, Default())
}
