//go:build integration

package duplicates

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

func createTestStore(t *testing.T) *store.GORMStore {
	t.Helper()
	st, err := store.New(&store.Config{
		Type: store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return st
}

func createScanDir(t *testing.T, st *store.GORMStore, path string) string {
	t.Helper()
	id, err := st.CreateScanDirectory(context.Background(), &models.ScanDirectory{
		Path:     path,
		Hostname: "nas-01",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("failed to create scan directory: %v", err)
	}
	return id
}

func upsertFile(t *testing.T, st *store.GORMStore, dirID, path, hash string) *models.IndexedFile {
	t.Helper()
	result, err := st.UpsertFile(context.Background(), &models.IndexedFile{
		ScanDirectoryID: dirID,
		Path:            path,
		Name:            filepath.Base(path),
		Hash:            hash,
		Size:            2048,
		FileCreatedAt:   time.Now().UTC(),
		FileModifiedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to upsert %s: %v", path, err)
	}
	return result.File
}

func groupForHash(t *testing.T, st *store.GORMStore, hash string) *models.DuplicateGroup {
	t.Helper()
	group, err := st.GetGroupByHash(context.Background(), hash)
	if err != nil {
		t.Fatalf("no group for hash %s: %v", hash, err)
	}
	return group
}

func TestAutoSelectOriginal(t *testing.T) {
	ctx := context.Background()

	t.Run("PicksPreferredPath", func(t *testing.T) {
		st := createTestStore(t)
		defer st.Close()
		svc := NewService(st, 5)

		dirID := createScanDir(t, st, "/photos")
		orig := upsertFile(t, st, dirID, "/photos/originals/img.jpg", "aaaa")
		upsertFile(t, st, dirID, "/photos/backup/img.jpg", "aaaa")

		for _, p := range []models.SelectionPreference{
			{Prefix: "/photos/originals", Priority: 80},
			{Prefix: "/photos/backup", Priority: 20},
		} {
			pref := p
			if _, err := st.CreatePreference(ctx, &pref); err != nil {
				t.Fatalf("create preference: %v", err)
			}
		}

		group := groupForHash(t, st, "aaaa")
		result, err := svc.AutoSelectOriginal(ctx, group.ID)
		if err != nil {
			t.Fatalf("auto-select failed: %v", err)
		}
		if result.Conflict {
			t.Fatal("unexpected conflict")
		}
		if result.SelectedID != orig.ID {
			t.Errorf("selected %s, want %s", result.SelectedID, orig.ID)
		}

		updated, err := st.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if updated.Status != models.GroupStatusAutoSelected {
			t.Errorf("group status = %s, want autoSelected", updated.Status)
		}
		if updated.KeptFileID == nil || *updated.KeptFileID != orig.ID {
			t.Error("kept file id not stamped")
		}
	})

	t.Run("ConflictLeavesGroupPending", func(t *testing.T) {
		st := createTestStore(t)
		defer st.Close()
		svc := NewService(st, 5)

		dirID := createScanDir(t, st, "/photos")
		upsertFile(t, st, dirID, "/photos/a/img.jpg", "bbbb")
		upsertFile(t, st, dirID, "/photos/b/img.jpg", "bbbb")

		group := groupForHash(t, st, "bbbb")
		result, err := svc.AutoSelectOriginal(ctx, group.ID)
		if err != nil {
			t.Fatalf("auto-select failed: %v", err)
		}
		if !result.Conflict {
			t.Fatal("expected conflict for identical scores")
		}
		if result.SelectedID != "" {
			t.Error("conflict result must not carry a selection")
		}

		updated, err := st.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if updated.Status != models.GroupStatusPending {
			t.Errorf("group status = %s, want pending", updated.Status)
		}
	})

	t.Run("AutoSelectAllCounts", func(t *testing.T) {
		st := createTestStore(t)
		defer st.Close()
		svc := NewService(st, 5)

		dirID := createScanDir(t, st, "/photos")
		upsertFile(t, st, dirID, "/photos/originals/one.jpg", "cccc")
		upsertFile(t, st, dirID, "/photos/backup/one.jpg", "cccc")
		upsertFile(t, st, dirID, "/photos/a/two.jpg", "dddd")
		upsertFile(t, st, dirID, "/photos/b/two.jpg", "dddd")

		pref := models.SelectionPreference{Prefix: "/photos/originals", Priority: 80}
		if _, err := st.CreatePreference(ctx, &pref); err != nil {
			t.Fatalf("create preference: %v", err)
		}

		summary, err := svc.AutoSelectAll(ctx)
		if err != nil {
			t.Fatalf("auto-select all failed: %v", err)
		}
		if summary.Selected != 1 {
			t.Errorf("selected = %d, want 1", summary.Selected)
		}
		if summary.Conflicts != 1 {
			t.Errorf("conflicts = %d, want 1", summary.Conflicts)
		}
		if summary.Failed != 0 {
			t.Errorf("failed = %d, want 0", summary.Failed)
		}
	})
}

func TestQueueForDeletion(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidatedGroupQueues", func(t *testing.T) {
		st := createTestStore(t)
		defer st.Close()
		svc := NewService(st, 5)

		dirID := createScanDir(t, st, "/photos")
		orig := upsertFile(t, st, dirID, "/photos/keep.jpg", "eeee")
		upsertFile(t, st, dirID, "/photos/drop.jpg", "eeee")

		group := groupForHash(t, st, "eeee")
		if err := svc.SetOriginal(ctx, group.ID, orig.ID); err != nil {
			t.Fatalf("set original: %v", err)
		}

		job, err := svc.QueueForDeletion(ctx, group.ID, false)
		if err != nil {
			t.Fatalf("queue failed: %v", err)
		}
		if job.TotalFiles != 1 {
			t.Errorf("job covers %d files, want 1", job.TotalFiles)
		}

		updated, _ := st.GetGroup(ctx, group.ID)
		if updated.Status != models.GroupStatusCleaning {
			t.Errorf("group status = %s, want cleaning", updated.Status)
		}
	})

	t.Run("DryRunStaysValidated", func(t *testing.T) {
		st := createTestStore(t)
		defer st.Close()
		svc := NewService(st, 5)

		dirID := createScanDir(t, st, "/photos")
		orig := upsertFile(t, st, dirID, "/photos/keep.jpg", "ffff")
		upsertFile(t, st, dirID, "/photos/drop.jpg", "ffff")

		group := groupForHash(t, st, "ffff")
		if err := svc.SetOriginal(ctx, group.ID, orig.ID); err != nil {
			t.Fatalf("set original: %v", err)
		}

		job, err := svc.QueueForDeletion(ctx, group.ID, true)
		if err != nil {
			t.Fatalf("queue failed: %v", err)
		}
		if !job.DryRun {
			t.Error("job must be marked dry-run")
		}

		updated, _ := st.GetGroup(ctx, group.ID)
		if updated.Status != models.GroupStatusValidated {
			t.Errorf("group status = %s, want validated", updated.Status)
		}
	})

	t.Run("UnresolvedGroupRefuses", func(t *testing.T) {
		st := createTestStore(t)
		defer st.Close()
		svc := NewService(st, 5)

		dirID := createScanDir(t, st, "/photos")
		upsertFile(t, st, dirID, "/photos/one.jpg", "abab")
		upsertFile(t, st, dirID, "/photos/two.jpg", "abab")

		group := groupForHash(t, st, "abab")
		_, err := svc.QueueForDeletion(ctx, group.ID, false)
		if !errors.Is(err, models.ErrNoOriginalSelected) {
			t.Errorf("err = %v, want ErrNoOriginalSelected", err)
		}
	})
}

func TestReviewSession(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*store.GORMStore, *SessionService, []*models.DuplicateGroup) {
		t.Helper()
		st := createTestStore(t)
		t.Cleanup(func() { st.Close() })

		dirID := createScanDir(t, st, "/photos")
		upsertFile(t, st, dirID, "/photos/a/one.jpg", "1111")
		upsertFile(t, st, dirID, "/photos/b/one.jpg", "1111")
		upsertFile(t, st, dirID, "/photos/a/two.jpg", "2222")
		upsertFile(t, st, dirID, "/photos/b/two.jpg", "2222")

		groups := []*models.DuplicateGroup{
			groupForHash(t, st, "1111"),
			groupForHash(t, st, "2222"),
		}
		svc := NewSessionService(st, NewService(st, 5))
		return st, svc, groups
	}

	t.Run("ProposeValidateFlow", func(t *testing.T) {
		st, svc, _ := setup(t)

		session, err := svc.Start(ctx, false)
		if err != nil {
			t.Fatalf("start session: %v", err)
		}

		group, _, err := svc.Next(ctx, session.ID)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		fileID := group.Files[0].ID

		if err := svc.Propose(ctx, session.ID, group.ID, fileID); err != nil {
			t.Fatalf("propose: %v", err)
		}
		if err := svc.Validate(ctx, session.ID, group.ID); err != nil {
			t.Fatalf("validate: %v", err)
		}

		updated, err := st.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if updated.Status != models.GroupStatusValidated {
			t.Errorf("group status = %s, want validated", updated.Status)
		}
		if updated.ReviewSessionID == nil || *updated.ReviewSessionID != session.ID {
			t.Error("group not attached to session")
		}

		refreshed, err := st.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if refreshed.ProposedCount != 1 || refreshed.ValidatedCount != 1 {
			t.Errorf("counters = %d/%d, want 1/1",
				refreshed.ProposedCount, refreshed.ValidatedCount)
		}
	})

	t.Run("ValidateWithoutProposalFails", func(t *testing.T) {
		_, svc, groups := setup(t)

		session, err := svc.Start(ctx, false)
		if err != nil {
			t.Fatalf("start session: %v", err)
		}
		err = svc.Validate(ctx, session.ID, groups[0].ID)
		if !errors.Is(err, models.ErrNoOriginalSelected) {
			t.Errorf("err = %v, want ErrNoOriginalSelected", err)
		}
	})

	t.Run("NextWalksQueueAndExhausts", func(t *testing.T) {
		_, svc, _ := setup(t)

		session, err := svc.Start(ctx, false)
		if err != nil {
			t.Fatalf("start session: %v", err)
		}

		first, scores, err := svc.Next(ctx, session.ID)
		if err != nil {
			t.Fatalf("first next: %v", err)
		}
		if len(scores.Scores) != 2 {
			t.Errorf("scores for %d members, want 2", len(scores.Scores))
		}

		second, _, err := svc.Next(ctx, session.ID)
		if err != nil {
			t.Fatalf("second next: %v", err)
		}
		if second.ID == first.ID {
			t.Error("cursor did not advance")
		}

		_, _, err = svc.Next(ctx, session.ID)
		if !errors.Is(err, ErrNoUnreviewedGroups) {
			t.Errorf("err = %v, want ErrNoUnreviewedGroups", err)
		}
	})

	t.Run("SingleActiveSession", func(t *testing.T) {
		_, svc, _ := setup(t)

		if _, err := svc.Start(ctx, false); err != nil {
			t.Fatalf("start session: %v", err)
		}
		if _, err := svc.Start(ctx, false); !errors.Is(err, models.ErrSessionActive) {
			t.Errorf("err = %v, want ErrSessionActive", err)
		}
		if _, err := svc.Start(ctx, true); err != nil {
			t.Errorf("resume failed: %v", err)
		}
	})

	t.Run("PauseAndComplete", func(t *testing.T) {
		st, svc, _ := setup(t)

		session, err := svc.Start(ctx, false)
		if err != nil {
			t.Fatalf("start session: %v", err)
		}
		if err := svc.Pause(ctx, session.ID); err != nil {
			t.Fatalf("pause: %v", err)
		}
		if _, err := svc.Active(ctx); !errors.Is(err, models.ErrNoActiveSession) {
			t.Errorf("err = %v, want ErrNoActiveSession", err)
		}
		if err := svc.Complete(ctx, session.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}

		closed, err := st.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if closed.Status != models.SessionStatusCompleted {
			t.Errorf("status = %s, want completed", closed.Status)
		}
		if closed.CompletedAt == nil {
			t.Error("completed_at not stamped")
		}
	})
}
