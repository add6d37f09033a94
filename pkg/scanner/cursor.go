package scanner

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// cursorPrefix namespaces scan-cursor keys: "sc:<absolute path>".
const cursorPrefix = "sc:"

// CursorEntry is the per-path record the cursor stores once a batch
// containing the path has been acknowledged by the ingestion service.
type CursorEntry struct {
	Path    string    `json:"-"`
	Hash    string    `json:"hash"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Cursor remembers which files have been ingested so a rescan can skip
// anything whose size and mtime are unchanged. It only advances after the
// ingestion service acknowledges the batch, so a crash mid-batch re-submits
// rather than loses files.
type Cursor struct {
	db *badger.DB
}

// OpenCursor opens the badger-backed cursor at path. An empty path keeps
// the cursor in memory; every restart then rescans from scratch.
func OpenCursor(path string) (*Cursor, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan cursor: %w", err)
	}
	return &Cursor{db: db}, nil
}

// Close releases the underlying database.
func (c *Cursor) Close() error {
	return c.db.Close()
}

// Unchanged reports whether the path was already ingested with the same
// size and modification time, returning the recorded hash when so.
func (c *Cursor) Unchanged(path string, size int64, modTime time.Time) (string, bool) {
	var rec CursorEntry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cursorKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return "", false
	}
	if rec.Size != size || !rec.ModTime.Equal(modTime) {
		return "", false
	}
	return rec.Hash, true
}

// Advance records a batch of acknowledged files in one transaction.
func (c *Cursor) Advance(entries []CursorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			val, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := txn.Set(cursorKey(e.Path), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to advance scan cursor: %w", err)
	}
	return nil
}

// Forget drops a path's record so the next encounter re-ingests it. Used
// when the server requests a reprocess.
func (c *Cursor) Forget(path string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(cursorKey(path))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to drop cursor entry: %w", err)
	}
	return nil
}

func cursorKey(path string) []byte {
	return []byte(cursorPrefix + path)
}
