package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures hub events for assertions.
type recordingHandler struct {
	mu          sync.Mutex
	connected   []string
	statuses    []WorkerStatus
	completions []JobCompletion
	statusCh    chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{statusCh: make(chan struct{}, 16)}
}

func (h *recordingHandler) WorkerConnected(_ context.Context, _ Kind, workerID string) {
	h.mu.Lock()
	h.connected = append(h.connected, workerID)
	h.mu.Unlock()
}

func (h *recordingHandler) WorkerDisconnected(context.Context, Kind, string) {}

func (h *recordingHandler) StatusReported(_ context.Context, _ Kind, _ string, status *WorkerStatus) {
	h.mu.Lock()
	h.statuses = append(h.statuses, *status)
	h.mu.Unlock()
	h.statusCh <- struct{}{}
}

func (h *recordingHandler) DeleteProgress(context.Context, string, *DeleteProgress) {}

func (h *recordingHandler) DeleteCompleted(context.Context, string, *DeleteResult) error {
	return nil
}

func (h *recordingHandler) JobCompleted(_ context.Context, _ string, c *JobCompletion) error {
	h.mu.Lock()
	h.completions = append(h.completions, *c)
	h.mu.Unlock()
	return nil
}

func startHub(t *testing.T) (*Registry, *recordingHandler, *httptest.Server) {
	t.Helper()
	registry := NewRegistry()
	handler := newRecordingHandler()
	server := NewServer(registry, handler)

	mux := http.NewServeMux()
	mux.HandleFunc("/hubs/indexer", server.HandleIndexer)
	mux.HandleFunc("/hubs/cleaner", server.HandleCleaner)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return registry, handler, ts
}

func dialWorker(t *testing.T, ts *httptest.Server, kind Kind, id string) *websocket.Conn {
	t.Helper()
	idParam := "indexerId"
	if kind == KindCleaner {
		idParam = "cleanerId"
	}
	url := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/hubs/" + string(kind) + "?" + idParam + "=" + id + "&hostname=nas-01"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func sendEnvelope(t *testing.T, ws *websocket.Conn, method string, payload any) {
	t.Helper()
	env, err := NewEnvelope(method, payload)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(env))
}

func waitStatus(t *testing.T, h *recordingHandler) {
	t.Helper()
	select {
	case <-h.statusCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for status report")
	}
}

func TestHubConnectionLifecycle(t *testing.T) {
	registry, handler, ts := startHub(t)

	ws := dialWorker(t, ts, KindIndexer, "idx-1")
	sendEnvelope(t, ws, MethodReportStatus, &WorkerStatus{
		State:     StateScanning,
		ScanRoots: []string{"/photos"},
	})
	waitStatus(t, handler)

	rec, ok := registry.Worker("idx-1")
	require.True(t, ok)
	assert.True(t, rec.Connected)
	assert.Equal(t, "nas-01", rec.Hostname)
	assert.Equal(t, StateScanning, rec.Status.State)

	ws.Close()
	require.Eventually(t, func() bool {
		rec, ok := registry.Worker("idx-1")
		return ok && !rec.Connected && rec.Status.State == StateDisconnected
	}, 5*time.Second, 10*time.Millisecond,
		"disconnect must flip the aggregated state")
}

func TestHubCommandDelivery(t *testing.T) {
	registry, handler, ts := startHub(t)

	ws := dialWorker(t, ts, KindCleaner, "cln-1")
	sendEnvelope(t, ws, MethodReportStatus, &WorkerStatus{State: StateIdle})
	waitStatus(t, handler)

	conn, ok := registry.Get(KindCleaner, "cln-1")
	require.True(t, ok)
	require.NoError(t, conn.Send(MethodDeleteFiles, &DeleteFilesCommand{
		Files: []DeleteFileCommand{{
			JobID:  "job-1",
			FileID: "file-1",
			Path:   "/photos/dup.jpg",
			Hash:   "abcd",
		}},
	}))

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env Envelope
	require.NoError(t, ws.ReadJSON(&env))
	assert.Equal(t, MethodDeleteFiles, env.Method)

	payload, err := DecodePayload(&env)
	require.NoError(t, err)
	batch := payload.(*DeleteFilesCommand)
	require.Len(t, batch.Files, 1)
	assert.Equal(t, "job-1", batch.Files[0].JobID)
}

func TestHubRejectsUnknownMethod(t *testing.T) {
	registry, handler, ts := startHub(t)

	ws := dialWorker(t, ts, KindIndexer, "idx-2")
	sendEnvelope(t, ws, MethodReportStatus, &WorkerStatus{State: StateIdle})
	waitStatus(t, handler)

	require.NoError(t, ws.WriteJSON(&Envelope{Method: "FormatDisk"}))

	// The server drops the connection on a protocol violation.
	require.Eventually(t, func() bool {
		rec, ok := registry.Worker("idx-2")
		return ok && !rec.Connected
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHubReconnectReplacesConnection(t *testing.T) {
	registry, handler, ts := startHub(t)

	first := dialWorker(t, ts, KindIndexer, "idx-3")
	sendEnvelope(t, first, MethodReportStatus, &WorkerStatus{State: StateIdle})
	waitStatus(t, handler)

	second := dialWorker(t, ts, KindIndexer, "idx-3")
	sendEnvelope(t, second, MethodReportStatus, &WorkerStatus{State: StateScanning})
	waitStatus(t, handler)

	// The second connection owns the registration even after the first
	// connection's teardown completes.
	require.Eventually(t, func() bool {
		_, _, err := first.NextReader()
		return err != nil
	}, 5*time.Second, 10*time.Millisecond, "stale connection must be closed")

	rec, ok := registry.Worker("idx-3")
	require.True(t, ok)
	assert.True(t, rec.Connected)
	assert.Len(t, registry.Connections(KindIndexer), 1)
}

func TestRequiredQueryParams(t *testing.T) {
	_, _, ts := startHub(t)

	resp, err := http.Get(ts.URL + "/hubs/indexer?hostname=nas-01")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/hubs/cleaner?cleanerId=c1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientEndpoint(t *testing.T) {
	c := NewClient("http://hub.local:8080", KindCleaner, "cln-9", "nas-02", nil, nil)
	endpoint, err := c.endpoint()
	require.NoError(t, err)
	assert.Equal(t,
		"ws://hub.local:8080/hubs/cleaner?cleanerId=cln-9&hostname=nas-02",
		endpoint)

	c = NewClient("https://hub.local", KindIndexer, "idx-9", "nas-02", nil, nil)
	endpoint, err = c.endpoint()
	require.NoError(t, err)
	assert.Equal(t,
		"wss://hub.local/hubs/indexer?hostname=nas-02&indexerId=idx-9",
		endpoint)
}
