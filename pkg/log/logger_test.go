package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesErrors "github.com/YuminosukeSato/salesml/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message")
	testLogger.Error("error message", salesErrors.New("boom"), StageKey, "fit")

	require.NotEmpty(t, buffer.String())
	assert.True(t, testLogger.ContainsMessage("debug message"))
	assert.True(t, testLogger.ContainsMessage("warning message"))
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrorKey, "boom"))
	assert.True(t, testLogger.ContainsField(StageKey, "fit"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("hidden debug")
	testLogger.Info("hidden info")
	testLogger.Warn("visible warn")

	assert.False(t, testLogger.ContainsMessage("hidden"))
	assert.True(t, testLogger.ContainsMessage("visible warn"))
	assert.False(t, testLogger.Enabled(context.Background(), LevelInfo))
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(ModelNameKey, "SVR", RunIDKey, "run-1")
	contextLogger.Info("contextual message", OperationKey, OperationPredict)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "SVR"))
	assert.True(t, testLogger.ContainsField(RunIDKey, "run-1"))
	assert.True(t, testLogger.ContainsField(OperationKey, OperationPredict))
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(ComponentKey, "svm")

	logger.Debug("not emitted")
	logger.Info("fitted", SamplesKey, 8, GammaKey, 0.25)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "fitted", rec["message"])
	assert.Equal(t, "svm", rec[ComponentKey])
	assert.Equal(t, 8.0, rec[SamplesKey])
	assert.Equal(t, 0.25, rec[GammaKey])
}

func TestZerologLoggerErrorCarriesStackAndDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := salesErrors.NewSplitError(1, 0.2, "need at least 2 rows")
	logger.Error("run failed", err, StageKey, "split")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Contains(t, rec[ErrorKey], "need at least 2 rows")
	assert.NotEmpty(t, rec[StacktraceKey])

	detail, ok := rec[ErrorKey+"_detail"].(map[string]interface{})
	require.True(t, ok, "expected structured error detail")
	assert.Equal(t, "SplitError", detail["type"])
	assert.Equal(t, "split", rec[StageKey])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, SetupLogger("info", "xml"))
}

func TestProviderSwap(t *testing.T) {
	p, testLogger := NewTestLoggerProvider(LevelDebug)
	SetProvider(p)
	defer SetProvider(newZerologProvider(&bytes.Buffer{}, LevelInfo))

	GetLoggerWithName("dataset").Info("loaded", SamplesKey, 10)

	assert.True(t, testLogger.ContainsField(ComponentKey, "dataset"))
	assert.True(t, testLogger.ContainsField(SamplesKey, 10.0))

	p.SetLevel(LevelError)
	GetLogger().Info("dropped")
	assert.False(t, testLogger.ContainsMessage("dropped"))
}
