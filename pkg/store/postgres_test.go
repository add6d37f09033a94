//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/photovault/pkg/models"
)

// createPostgresStore starts a throwaway PostgreSQL container and opens a
// store against it. Covers the dialect-sensitive paths (upserts, aggregate
// stats) that the SQLite tests cannot.
func createPostgresStore(t *testing.T) *GORMStore {
	t.Helper()
	ctx := context.Background()

	// PostgreSQL logs the ready line twice during startup, once while
	// bootstrapping and once when actually accepting connections.
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("photovault_test"),
		postgres.WithUsername("photovault_test"),
		postgres.WithPassword("photovault_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	store, err := New(&Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     port.Int(),
			Database: "photovault_test",
			User:     "photovault_test",
			Password: "photovault_test",
			SSLMode:  "disable",
		},
	})
	if err != nil {
		t.Fatalf("failed to open postgres store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresUpsertRoundtrip(t *testing.T) {
	store := createPostgresStore(t)
	ctx := context.Background()

	dirID := createTestScanDir(t, store, "/photos/postgres")

	file := &models.IndexedFile{
		ScanDirectoryID: dirID,
		Path:            "/photos/postgres/IMG_0001.jpg",
		Name:            "IMG_0001.jpg",
		Hash:            "aa11bb22cc33dd44ee55ff6600112233aa11bb22cc33dd44ee55ff6600112233",
		Size:            2048,
		FileModifiedAt:  time.Now().UTC().Truncate(time.Second),
		IndexedAt:       time.Now().UTC(),
	}

	result, err := store.UpsertFile(ctx, file)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if !result.IsNew {
		t.Error("expected first upsert to report a new row")
	}

	// Same path, changed content.
	file.Hash = "bb11bb22cc33dd44ee55ff6600112233aa11bb22cc33dd44ee55ff6600112233"
	result, err = store.UpsertFile(ctx, file)
	if err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}
	if result.IsNew {
		t.Error("expected second upsert to update in place")
	}
	if !result.HashChanged {
		t.Error("expected hash change to be reported")
	}

	got, err := store.GetFile(ctx, result.File.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Hash != file.Hash {
		t.Errorf("hash %q, want %q", got.Hash, file.Hash)
	}
}

func TestPostgresFileStats(t *testing.T) {
	store := createPostgresStore(t)
	ctx := context.Background()

	dirID := createTestScanDir(t, store, "/photos/stats")

	hash := "cc11bb22cc33dd44ee55ff6600112233aa11bb22cc33dd44ee55ff6600112233"
	for _, name := range []string{"a.jpg", "b.jpg"} {
		_, err := store.UpsertFile(ctx, &models.IndexedFile{
			ScanDirectoryID: dirID,
			Path:            "/photos/stats/" + name,
			Name:            name,
			Hash:            hash,
			Size:            4096,
			IndexedAt:       time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("upsert %s failed: %v", name, err)
		}
	}

	stats, err := store.FileStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalFiles != 2 {
		t.Errorf("total files %d, want 2", stats.TotalFiles)
	}
	if stats.DuplicateGroups != 1 {
		t.Errorf("duplicate groups %d, want 1", stats.DuplicateGroups)
	}
	// No original picked yet, so both copies count as waste.
	if stats.WastedSize != 8192 {
		t.Errorf("wasted size %d, want 8192", stats.WastedSize)
	}

	group, err := store.GetGroupByHash(ctx, hash)
	if err != nil {
		t.Fatalf("group lookup failed: %v", err)
	}
	if group.FileCount != 2 {
		t.Errorf("group file count %d, want 2", group.FileCount)
	}
}
