package qbo_test

import (
	"bytes"
	"testing"

	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
)

func TestConfig_ResolveBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, qbo.ProductionBaseURL, (&qbo.Config{}).ResolveBaseURL())
	assert.Equal(t, qbo.SandboxBaseURL, (&qbo.Config{Sandbox: true}).ResolveBaseURL())
	assert.Equal(t, "http://localhost:8080/v3", (&qbo.Config{Sandbox: true, BaseURL: "http://localhost:8080/v3"}).ResolveBaseURL())
}

func TestConfig_EffectiveLogger(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		logger := &captureLogger{}
		config := &qbo.Config{Logger: logger}

		config.EffectiveLogger(nil).Error("dropped", nil)
		assert.Empty(t, logger.entries)
	})

	t.Run("filters by level", func(t *testing.T) {
		t.Parallel()

		logger := &captureLogger{}
		config := &qbo.Config{Logger: logger, EnableLogging: true, LogLevel: qbo.LevelWarn}

		effective := config.EffectiveLogger(nil)
		effective.Debug("debug", nil)
		effective.Info("info", nil)
		effective.Warn("warn", nil)
		effective.Error("error", nil)

		assert.Len(t, logger.entries, 2)
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		config := &qbo.Config{EnableLogging: true}
		config.EffectiveLogger(qbo.NewSlogLogger(&buf, qbo.LevelDebug)).Error("boom", map[string]interface{}{"status": 500})

		assert.Contains(t, buf.String(), "msg=boom")
		assert.Contains(t, buf.String(), "status=500")
	})

	t.Run("no logger at all", func(t *testing.T) {
		t.Parallel()

		config := &qbo.Config{EnableLogging: true}
		assert.IsType(t, qbo.NopLogger{}, config.EffectiveLogger(nil))
	})
}
