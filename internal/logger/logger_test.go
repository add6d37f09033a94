package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false // Disable colors for easier testing
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		output := buf.String()
		assert.Contains(t, output, "debug message")
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		Debug("debug message")
		Info("info message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.Contains(t, output, "info message")
	})

	t.Run("ErrorLevelShowsOnlyErrors", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.NotContains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("BOGUS")

		Info("still logged")
		assert.Contains(t, buf.String(), "still logged")
	})
}

func TestJSONFormat(t *testing.T) {
	t.Run("JSONOutputIsValid", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("json")
		defer SetFormat("text")

		Info("batch ingested", "batch", 250, "queue", "metadata-extract")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "batch ingested", record["msg"])
		assert.Equal(t, float64(250), record["batch"])
		assert.Equal(t, "metadata-extract", record["queue"])
	})
}

func TestContextFieldInjection(t *testing.T) {
	t.Run("LogContextInjectsFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("json")
		defer SetFormat("text")

		lc := &LogContext{
			TraceID:   "trace-123",
			SpanID:    "span-456",
			Operation: "ingest.batch",
			Worker:    "indexer-1",
			JobID:     "job-789",
		}
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "file row upserted")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "trace-123", record[KeyTraceID])
		assert.Equal(t, "span-456", record[KeySpanID])
		assert.Equal(t, "ingest.batch", record[KeyOperation])
		assert.Equal(t, "indexer-1", record[KeyWorker])
		assert.Equal(t, "job-789", record[KeyJobID])
	})

	t.Run("ContextWithoutLogContextHandled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		InfoCtx(context.Background(), "no context fields")
		assert.Contains(t, buf.String(), "no context fields")
	})
}

func TestLogContext(t *testing.T) {
	t.Run("NewLogContext", func(t *testing.T) {
		lc := NewLogContext("192.168.1.100")
		assert.Equal(t, "192.168.1.100", lc.ClientIP)
		assert.False(t, lc.StartTime.IsZero())
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		lc := &LogContext{Operation: "bus.consume"}
		clone := lc.Clone()
		require.NotNil(t, clone)

		clone.Operation = "bus.publish"
		assert.Equal(t, "bus.consume", lc.Operation)
	})

	t.Run("CloneNil", func(t *testing.T) {
		var lc *LogContext
		assert.Nil(t, lc.Clone())
	})

	t.Run("WithOperation", func(t *testing.T) {
		lc := NewLogContext("192.168.1.100")
		lc2 := lc.WithOperation("hub.dispatch")
		assert.Equal(t, "hub.dispatch", lc2.Operation)
		assert.Equal(t, "", lc.Operation) // Original unchanged
	})

	t.Run("WithWorker", func(t *testing.T) {
		lc := NewLogContext("192.168.1.100")
		lc2 := lc.WithWorker("cleaner-1", "nas-01")
		assert.Equal(t, "cleaner-1", lc2.Worker)
		assert.Equal(t, "nas-01", lc2.Hostname)
	})

	t.Run("WithJob", func(t *testing.T) {
		lc := NewLogContext("192.168.1.100")
		lc2 := lc.WithJob("job-1")
		assert.Equal(t, "job-1", lc2.JobID)
	})

	t.Run("DurationMsNil", func(t *testing.T) {
		var lc *LogContext
		assert.Equal(t, float64(0), lc.DurationMs())
	})
}

func TestFieldConstructors(t *testing.T) {
	t.Run("Err", func(t *testing.T) {
		attr := Err(assert.AnError)
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, assert.AnError.Error(), attr.Value.String())
	})

	t.Run("ErrNil", func(t *testing.T) {
		attr := Err(nil)
		assert.Equal(t, "", attr.Key)
	})

	t.Run("DomainFields", func(t *testing.T) {
		assert.Equal(t, KeyHash, Hash("abc").Key)
		assert.Equal(t, KeyBucket, Bucket("thumbnails").Key)
		assert.Equal(t, KeyQueue, Queue("thumbnail-generate").Key)
		assert.Equal(t, KeyGroupID, GroupID("g1").Key)
		assert.Equal(t, KeyDryRun, DryRun(true).Key)
	})
}

func TestConcurrentLogging(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				Info("concurrent write", "goroutine", j)
			}
		}()
	}
	wg.Wait()

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, 16*20, lines)
}
