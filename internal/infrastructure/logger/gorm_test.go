package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func selectAnalyses(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) {
		return sql, rows
	}
}

func TestNewGormLogger(t *testing.T) {
	gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)

	require.NotNil(t, gl)
	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, defaultSlowThreshold, gl.slowThreshold)
	assert.True(t, gl.ignoreNotFound)
}

func TestGormLoggerOptions(t *testing.T) {
	gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreNotFound)
}

func TestGormLoggerLogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)

	changed := gl.LogMode(gormlogger.Warn)

	// LogMode returns a copy; the receiver keeps its level
	assert.Equal(t, gormlogger.Info, gl.level)

	clone, ok := changed.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.level)
}

func TestGormLoggerLeveledMethods(t *testing.T) {
	t.Run("Info formats args", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)
		gl.Info(context.Background(), "migrated %s", "analyses")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrated analyses")
	})

	t.Run("Info suppressed at silent", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Silent)
		gl.Info(context.Background(), "hidden")
		assert.Empty(t, recorded.All())
	})

	t.Run("Warn logs at warn level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn)
		gl.Warn(context.Background(), "pool near limit %d", 25)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Contains(t, logs[0].Message, "pool near limit 25")
	})

	t.Run("Error logs at error level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)
		gl.Error(context.Background(), "connection lost")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLoggerTrace(t *testing.T) {
	t.Run("query error logs SQL Error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(),
			selectAnalyses("SELECT * FROM analyses", 0), errors.New("connection refused"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
	})

	t.Run("record not found is suppressed by default", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(),
			selectAnalyses("SELECT * FROM analyses WHERE id = ?", 0), gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow query logs SLOW SQL at warn", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn,
			WithSlowThreshold(time.Nanosecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second),
			selectAnalyses("SELECT * FROM analyses", 10), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("normal query logs SQL Query at debug", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)

		gl.Trace(context.Background(), time.Now(),
			selectAnalyses("SELECT * FROM analyses", 5), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(),
			selectAnalyses("SELECT * FROM analyses", 5), nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("request ID from context is attached", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)

		ctx := context.WithValue(context.Background(), RequestIDKey, "test-req-id")
		gl.Trace(ctx, time.Now(), selectAnalyses("SELECT * FROM analyses", 5), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)

		found := false
		for _, field := range logs[0].Context {
			if field.Key == "request_id" {
				found = true
				assert.Equal(t, "test-req-id", field.String)
			}
		}
		assert.True(t, found, "request_id should be in log fields")
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
