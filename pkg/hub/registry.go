package hub

import (
	"sync"
	"time"
)

// WorkerRecord is the hub's aggregated view of one worker. Held in memory
// only; a restart starts from scratch and workers repopulate it on
// reconnect.
type WorkerRecord struct {
	ID          string       `json:"id"`
	Hostname    string       `json:"hostname"`
	Kind        Kind         `json:"kind"`
	Connected   bool         `json:"connected"`
	ConnectedAt time.Time    `json:"connectedAt"`
	LastSeenAt  time.Time    `json:"lastSeenAt"`
	Status      WorkerStatus `json:"status"`
}

// Registry tracks live hub connections and the last status each worker
// reported. A reconnecting worker replaces its previous connection.
type Registry struct {
	mu      sync.RWMutex
	conns   map[Kind]map[string]*Conn
	workers map[string]*WorkerRecord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: map[Kind]map[string]*Conn{
			KindIndexer: {},
			KindCleaner: {},
		},
		workers: make(map[string]*WorkerRecord),
	}
}

// add registers a connection, closing any previous one for the same worker.
func (r *Registry) add(c *Conn) *Conn {
	r.mu.Lock()
	previous := r.conns[c.kind][c.id]
	r.conns[c.kind][c.id] = c

	now := time.Now().UTC()
	rec, ok := r.workers[c.id]
	if !ok {
		rec = &WorkerRecord{ID: c.id, Kind: c.kind}
		r.workers[c.id] = rec
	}
	rec.Hostname = c.hostname
	rec.Connected = true
	rec.ConnectedAt = now
	rec.LastSeenAt = now
	r.mu.Unlock()
	return previous
}

// remove drops a connection if it is still the current one for its worker
// and flips the worker's aggregated state to disconnected.
func (r *Registry) remove(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current := r.conns[c.kind][c.id]; current != c {
		return
	}
	delete(r.conns[c.kind], c.id)
	if rec, ok := r.workers[c.id]; ok {
		rec.Connected = false
		rec.Status.State = StateDisconnected
	}
}

// updateStatus stores a worker's latest full status report.
func (r *Registry) updateStatus(c *Conn, status *WorkerStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.workers[c.id]
	if !ok {
		return
	}
	rec.Status = *status
	rec.LastSeenAt = time.Now().UTC()
}

// Get returns the connection for a specific worker, if connected.
func (r *Registry) Get(kind Kind, id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[kind][id]
	return c, ok
}

// Connections returns the live connections of one kind.
func (r *Registry) Connections(kind Kind) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns[kind]))
	for _, c := range r.conns[kind] {
		out = append(out, c)
	}
	return out
}

// Workers returns a snapshot of every known worker record.
func (r *Registry) Workers() []WorkerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WorkerRecord, 0, len(r.workers))
	for _, rec := range r.workers {
		out = append(out, *rec)
	}
	return out
}

// Worker returns the record for one worker id.
func (r *Registry) Worker(id string) (WorkerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.workers[id]
	if !ok {
		return WorkerRecord{}, false
	}
	return *rec, true
}
