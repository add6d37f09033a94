package hub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marmos91/photovault/internal/logger"
)

// reconnectSchedule is the fixed backoff ladder for hub reconnection. The
// last step repeats until the connection comes back.
var reconnectSchedule = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

// CommandHandler processes server->worker commands. The payload is one of
// the typed command structs from this package.
type CommandHandler interface {
	HandleCommand(ctx context.Context, method string, payload any) error
}

// Client maintains a worker's persistent hub connection. It dials, resends
// a full status immediately after every (re)connect, dispatches incoming
// commands, and reconnects on the fixed schedule when the link drops.
type Client struct {
	serverURL string
	kind      Kind
	workerID  string
	hostname  string

	handler CommandHandler
	// status produces the current full status record, sent on every
	// connect and on demand via SendStatus.
	status func() *WorkerStatus

	mu sync.Mutex
	ws *websocket.Conn
}

// NewClient builds a hub client. serverURL is the ingestion service base
// URL (http or https); the hub path and query are derived from kind.
func NewClient(serverURL string, kind Kind, workerID, hostname string, handler CommandHandler, status func() *WorkerStatus) *Client {
	return &Client{
		serverURL: serverURL,
		kind:      kind,
		workerID:  workerID,
		hostname:  hostname,
		handler:   handler,
		status:    status,
	}
}

// Run keeps the connection alive until the context ends. Each session
// starts with a full status report.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		err := c.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A session that held for a while starts the ladder over.
		if time.Since(started) > reconnectSchedule[len(reconnectSchedule)-1] {
			attempt = 0
		}

		delay := reconnectSchedule[attempt]
		if attempt < len(reconnectSchedule)-1 {
			attempt++
		}
		logger.Warn("hub connection lost, reconnecting",
			logger.Worker(c.workerID),
			"delay", delay,
			logger.Err(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) runSession(ctx context.Context) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	ws, _, err := websocket.DefaultDialer.DialContext(dialCtx, endpoint, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to dial hub: %w", err)
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.ws = nil
		c.mu.Unlock()
		ws.Close()
	}()

	logger.Info("hub connected",
		logger.Worker(c.workerID), "kind", string(c.kind))

	ws.SetPingHandler(func(appData string) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		return ws.WriteControl(websocket.PongMessage,
			[]byte(appData), time.Now().Add(writeWait))
	})

	// Full status resend is part of the reconnect contract.
	if err := c.SendStatus(); err != nil {
		return err
	}

	// Close the socket when the context ends so the read loop unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-done:
		}
	}()

	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			return err
		}
		c.handleCommand(ctx, &env)
	}
}

func (c *Client) handleCommand(ctx context.Context, env *Envelope) {
	payload, err := DecodePayload(env)
	if err != nil {
		logger.Warn("ignoring unknown hub command",
			logger.Worker(c.workerID), "method", env.Method, logger.Err(err))
		return
	}

	// RequestStatus is answered here so every worker behaves identically.
	if _, ok := payload.(*RequestStatusCommand); ok {
		if err := c.SendStatus(); err != nil {
			logger.Warn("status report failed",
				logger.Worker(c.workerID), logger.Err(err))
		}
		return
	}

	if err := c.handler.HandleCommand(ctx, env.Method, payload); err != nil {
		logger.Error("command handling failed",
			logger.Worker(c.workerID), "method", env.Method, logger.Err(err))
	}
}

func (c *Client) endpoint() (string, error) {
	base, err := url.Parse(c.serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid hub server url: %w", err)
	}
	switch base.Scheme {
	case "http":
		base.Scheme = "ws"
	case "https":
		base.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid hub server scheme %q", base.Scheme)
	}

	idParam := "indexerId"
	if c.kind == KindCleaner {
		idParam = "cleanerId"
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/hubs/" + string(c.kind)
	q := url.Values{}
	q.Set(idParam, c.workerID)
	q.Set("hostname", c.hostname)
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// send writes one envelope, serialized against concurrent senders.
func (c *Client) send(method string, payload any) error {
	env, err := NewEnvelope(method, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return fmt.Errorf("hub not connected")
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(env)
}

// SendStatus pushes the current full status record.
func (c *Client) SendStatus() error {
	return c.send(MethodReportStatus, c.status())
}

// SendDeleteProgress reports a per-file phase change.
func (c *Client) SendDeleteProgress(progress *DeleteProgress) error {
	return c.send(MethodReportDeleteProgress, progress)
}

// SendDeleteComplete reports a terminal per-file outcome.
func (c *Client) SendDeleteComplete(result *DeleteResult) error {
	return c.send(MethodReportDeleteComplete, result)
}

// SendJobComplete reports a job's final counters.
func (c *Client) SendJobComplete(completion *JobCompletion) error {
	return c.send(MethodReportJobComplete, completion)
}
