package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
)

const (
	// outboundQueueSize bounds buffered server->worker commands per
	// connection. Overflow closes the connection (backpressure contract).
	outboundQueueSize = 64

	writeWait  = 10 * time.Second
	pongWait   = 90 * time.Second
	pingPeriod = 30 * time.Second
)

// StatusHandler receives worker reports and lifecycle events from the hub
// server. The supervisor is the production implementation.
type StatusHandler interface {
	WorkerConnected(ctx context.Context, kind Kind, workerID string)
	WorkerDisconnected(ctx context.Context, kind Kind, workerID string)
	StatusReported(ctx context.Context, kind Kind, workerID string, status *WorkerStatus)
	DeleteProgress(ctx context.Context, workerID string, progress *DeleteProgress)
	DeleteCompleted(ctx context.Context, workerID string, result *DeleteResult) error
	JobCompleted(ctx context.Context, workerID string, completion *JobCompletion) error
}

// Server accepts persistent worker connections on the two hub endpoints and
// dispatches their reports to the handler.
type Server struct {
	registry *Registry
	handler  StatusHandler
	upgrader websocket.Upgrader
}

// NewServer returns a hub server over the given registry.
func NewServer(registry *Registry, handler StatusHandler) *Server {
	return &Server{
		registry: registry,
		handler:  handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Workers are not browsers; origin checks do not apply.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleIndexer upgrades GET /hubs/indexer?indexerId=<id>&hostname=<h>.
func (s *Server) HandleIndexer(w http.ResponseWriter, r *http.Request) {
	s.handleUpgrade(w, r, KindIndexer, r.URL.Query().Get("indexerId"))
}

// HandleCleaner upgrades GET /hubs/cleaner?cleanerId=<id>&hostname=<h>.
func (s *Server) HandleCleaner(w http.ResponseWriter, r *http.Request) {
	s.handleUpgrade(w, r, KindCleaner, r.URL.Query().Get("cleanerId"))
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request, kind Kind, workerID string) {
	hostname := r.URL.Query().Get("hostname")
	if workerID == "" || hostname == "" {
		http.Error(w, "worker id and hostname query parameters are required",
			http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("hub upgrade failed",
			logger.Worker(workerID), logger.Err(err))
		return
	}

	conn := &Conn{
		id:       workerID,
		hostname: hostname,
		kind:     kind,
		ws:       ws,
		send:     make(chan *Envelope, outboundQueueSize),
		done:     make(chan struct{}),
	}

	if previous := s.registry.add(conn); previous != nil {
		previous.close()
	}
	logger.Info("worker connected",
		logger.Worker(workerID),
		logger.Hostname(hostname),
		"kind", string(kind))

	go conn.writePump()
	go s.readPump(conn)

	s.handler.WorkerConnected(r.Context(), kind, workerID)
}

func (s *Server) readPump(c *Conn) {
	defer func() {
		s.registry.remove(c)
		c.close()
		s.handler.WorkerDisconnected(context.Background(), c.kind, c.id)
		logger.Info("worker disconnected",
			logger.Worker(c.id), "kind", string(c.kind))
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("hub read failed",
					logger.Worker(c.id), logger.Err(err))
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		s.dispatch(c, &env)
	}
}

// dispatch applies one worker report. Unknown methods are a protocol
// violation and drop the connection.
func (s *Server) dispatch(c *Conn, env *Envelope) {
	ctx, span := telemetry.StartHubSpan(context.Background(), env.Method,
		telemetry.WorkerID(c.id),
		telemetry.WorkerKind(string(c.kind)))
	defer span.End()

	payload, err := DecodePayload(env)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.Warn("rejecting hub message",
			logger.Worker(c.id), "method", env.Method, logger.Err(err))
		c.close()
		return
	}

	switch msg := payload.(type) {
	case *WorkerStatus:
		s.registry.updateStatus(c, msg)
		s.handler.StatusReported(ctx, c.kind, c.id, msg)
	case *DeleteProgress:
		s.handler.DeleteProgress(ctx, c.id, msg)
	case *DeleteResult:
		if err := s.handler.DeleteCompleted(ctx, c.id, msg); err != nil {
			telemetry.RecordError(ctx, err)
			logger.Error("delete completion failed",
				logger.Worker(c.id),
				logger.JobID(msg.JobID),
				logger.FileID(msg.FileID),
				logger.Err(err))
		}
	case *JobCompletion:
		if err := s.handler.JobCompleted(ctx, c.id, msg); err != nil {
			telemetry.RecordError(ctx, err)
			logger.Error("job completion failed",
				logger.Worker(c.id), logger.JobID(msg.JobID), logger.Err(err))
		}
	default:
		// A worker sent a server->worker command. Same violation as an
		// unknown method.
		logger.Warn("rejecting command from worker",
			logger.Worker(c.id), "method", env.Method)
		c.close()
	}
}

// Conn is one live worker connection. Sends go through a bounded queue
// drained by the write pump; a full queue closes the connection.
type Conn struct {
	id       string
	hostname string
	kind     Kind

	ws   *websocket.Conn
	send chan *Envelope

	once sync.Once
	done chan struct{}
}

// ID returns the worker id.
func (c *Conn) ID() string { return c.id }

// Hostname returns the worker-reported hostname.
func (c *Conn) Hostname() string { return c.hostname }

// Send queues a command for the worker. A full outbound queue means the
// worker stopped draining; the connection is closed and an error returned
// so the caller can retry on reconnect.
func (c *Conn) Send(method string, payload any) error {
	env, err := NewEnvelope(method, payload)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	case c.send <- env:
		return nil
	default:
		logger.Warn("hub outbound queue full, dropping connection",
			logger.Worker(c.id))
		c.close()
		return websocket.ErrCloseSent
	}
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case env := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(env); err != nil {
				logger.Warn("hub write failed",
					logger.Worker(c.id), logger.Err(err))
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
