//go:build integration

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/photovault/pkg/models"
)

// createTestStore creates an in-memory SQLite store for testing.
func createTestStore(t *testing.T) *GORMStore {
	t.Helper()
	store, err := New(&Config{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func createTestScanDir(t *testing.T, store *GORMStore, path string) string {
	t.Helper()
	id, err := store.CreateScanDirectory(context.Background(), &models.ScanDirectory{
		Path:     path,
		Hostname: "nas-01",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("failed to create scan directory: %v", err)
	}
	return id
}

func upsertTestFile(t *testing.T, store *GORMStore, dirID, path, hash string, size int64) *UpsertResult {
	t.Helper()
	now := time.Now().UTC()
	result, err := store.UpsertFile(context.Background(), &models.IndexedFile{
		ScanDirectoryID: dirID,
		Path:            path,
		Name:            filepath.Base(path),
		Hash:            hash,
		Size:            size,
		FileCreatedAt:   now,
		FileModifiedAt:  now,
	})
	if err != nil {
		t.Fatalf("failed to upsert %s: %v", path, err)
	}
	return result
}

func TestScanDirectoryOperations(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		id := createTestScanDir(t, store, "/photos/library")

		dir, err := store.GetScanDirectory(ctx, id)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if dir.Path != "/photos/library" {
			t.Errorf("unexpected path: %s", dir.Path)
		}
		if !dir.Enabled {
			t.Error("expected enabled")
		}
	})

	t.Run("RelativePathRejected", func(t *testing.T) {
		_, err := store.CreateScanDirectory(ctx, &models.ScanDirectory{
			Path:     "photos/relative",
			Hostname: "nas-01",
		})
		if !errors.Is(err, models.ErrScanPathNotAbsolute) {
			t.Errorf("expected ErrScanPathNotAbsolute, got %v", err)
		}
	})

	t.Run("DuplicatePathRejected", func(t *testing.T) {
		_, err := store.CreateScanDirectory(ctx, &models.ScanDirectory{
			Path:     "/photos/library",
			Hostname: "nas-02",
		})
		if !errors.Is(err, models.ErrDuplicateScanDir) {
			t.Errorf("expected ErrDuplicateScanDir, got %v", err)
		}
	})

	t.Run("TouchLastScanned", func(t *testing.T) {
		id := createTestScanDir(t, store, "/photos/touch")
		at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

		if err := store.TouchLastScanned(ctx, id, at); err != nil {
			t.Fatalf("touch failed: %v", err)
		}
		dir, err := store.GetScanDirectory(ctx, id)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if dir.LastScanAt == nil || !dir.LastScanAt.Equal(at) {
			t.Errorf("last scan not stamped: %v", dir.LastScanAt)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.GetScanDirectory(ctx, "no-such-id")
		if !errors.Is(err, models.ErrScanDirectoryNotFound) {
			t.Errorf("expected ErrScanDirectoryNotFound, got %v", err)
		}
	})
}

func TestUpsertFile(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()
	dirID := createTestScanDir(t, store, "/r")

	t.Run("NewFile", func(t *testing.T) {
		result := upsertTestFile(t, store, dirID, "/r/a.jpg", "h1", 100)
		if !result.IsNew {
			t.Error("expected IsNew")
		}
		if !result.Changed() {
			t.Error("expected Changed")
		}
	})

	t.Run("SameHashNotChanged", func(t *testing.T) {
		result := upsertTestFile(t, store, dirID, "/r/a.jpg", "h1", 100)
		if result.IsNew || result.HashChanged {
			t.Errorf("expected no change, got new=%v changed=%v", result.IsNew, result.HashChanged)
		}
	})

	t.Run("HashChangedResetsEnrichment", func(t *testing.T) {
		first := upsertTestFile(t, store, dirID, "/r/b.jpg", "h2", 100)
		width := 800
		if err := store.ApplyMetadata(ctx, first.File.ID, MetadataUpdate{Width: &width}); err != nil {
			t.Fatalf("apply metadata: %v", err)
		}

		result := upsertTestFile(t, store, dirID, "/r/b.jpg", "h2-new", 150)
		if !result.HashChanged {
			t.Error("expected HashChanged")
		}

		file, err := store.GetFile(ctx, first.File.ID)
		if err != nil {
			t.Fatalf("get file: %v", err)
		}
		if file.Width != nil {
			t.Error("expected enrichment reset on hash change")
		}
		if file.Hash != "h2-new" {
			t.Errorf("hash not updated: %s", file.Hash)
		}
	})
}

func TestDuplicateGroupLifecycle(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()
	dirID := createTestScanDir(t, store, "/r")

	t.Run("SingleFileNoGroup", func(t *testing.T) {
		upsertTestFile(t, store, dirID, "/r/solo.jpg", "solo", 100)
		_, err := store.GetGroupByHash(ctx, "solo")
		if !errors.Is(err, models.ErrGroupNotFound) {
			t.Errorf("expected no group, got %v", err)
		}
	})

	t.Run("SecondFileCreatesGroup", func(t *testing.T) {
		upsertTestFile(t, store, dirID, "/r/a.jpg", "H2", 200)
		upsertTestFile(t, store, dirID, "/r/backup/a.jpg", "H2", 200)

		group, err := store.GetGroupByHash(ctx, "H2")
		if err != nil {
			t.Fatalf("expected group: %v", err)
		}
		if group.Status != models.GroupStatusPending {
			t.Errorf("expected pending, got %s", group.Status)
		}
		if group.FileCount != 2 {
			t.Errorf("expected fileCount 2, got %d", group.FileCount)
		}
		if group.TotalSize != 400 {
			t.Errorf("expected totalSize 400, got %d", group.TotalSize)
		}
	})

	t.Run("MembersSortedByPath", func(t *testing.T) {
		group, err := store.GetGroupByHash(ctx, "H2")
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		full, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group with files: %v", err)
		}
		if len(full.Files) != 2 {
			t.Fatalf("expected 2 members, got %d", len(full.Files))
		}
		if full.Files[0].Path > full.Files[1].Path {
			t.Error("members not sorted by path")
		}
	})

	t.Run("SetOriginal", func(t *testing.T) {
		group, err := store.GetGroupByHash(ctx, "H2")
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		full, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group with files: %v", err)
		}
		chosen := full.Files[0]

		err = store.SetOriginal(ctx, group.ID, chosen.ID, models.GroupStatusValidated)
		if err != nil {
			t.Fatalf("set original: %v", err)
		}

		updated, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if updated.Status != models.GroupStatusValidated {
			t.Errorf("expected validated, got %s", updated.Status)
		}
		if updated.KeptFileID == nil || *updated.KeptFileID != chosen.ID {
			t.Error("keptFileId not stamped")
		}
		if updated.ResolvedAt == nil {
			t.Error("resolvedAt not stamped")
		}

		originals := 0
		for _, f := range updated.Files {
			if f.IsOriginal {
				originals++
				if f.ID != chosen.ID {
					t.Error("wrong file marked original")
				}
			}
		}
		if originals != 1 {
			t.Errorf("expected exactly one original, got %d", originals)
		}
	})

	t.Run("SetOriginalFileOutsideGroup", func(t *testing.T) {
		group, _ := store.GetGroupByHash(ctx, "H2")
		solo := upsertTestFile(t, store, dirID, "/r/other.jpg", "other", 50)

		err := store.SetOriginal(ctx, group.ID, solo.File.ID, models.GroupStatusValidated)
		if !errors.Is(err, models.ErrFileNotInGroup) {
			t.Errorf("expected ErrFileNotInGroup, got %v", err)
		}
	})

	t.Run("ArchiveKeepsGroupRow", func(t *testing.T) {
		upsertTestFile(t, store, dirID, "/r/c.jpg", "H3", 10)
		second := upsertTestFile(t, store, dirID, "/r/backup/c.jpg", "H3", 10)

		if err := store.MarkFileArchived(ctx, second.File.ID, "/trash/backup/c.jpg"); err != nil {
			t.Fatalf("archive: %v", err)
		}

		group, err := store.GetGroupByHash(ctx, "H3")
		if err != nil {
			t.Fatalf("group must survive the archive: %v", err)
		}
		if group.FileCount != 1 {
			t.Errorf("file count = %d, want 1 live member", group.FileCount)
		}

		file, err := store.GetFile(ctx, second.File.ID)
		if err != nil {
			t.Fatalf("get file: %v", err)
		}
		if !file.IsDeleted || file.ArchivePath == nil {
			t.Error("archive state not recorded")
		}
	})

	t.Run("ReviewOrderFollowsCreation", func(t *testing.T) {
		upsertTestFile(t, store, dirID, "/r/o1.jpg", "H4", 10)
		upsertTestFile(t, store, dirID, "/r/o1-copy.jpg", "H4", 10)
		upsertTestFile(t, store, dirID, "/r/o2.jpg", "H5", 10)
		upsertTestFile(t, store, dirID, "/r/o2-copy.jpg", "H5", 10)

		first, _ := store.GetGroupByHash(ctx, "H4")
		second, _ := store.GetGroupByHash(ctx, "H5")
		if first.ReviewOrder == 0 || second.ReviewOrder == 0 {
			t.Fatal("review order not assigned")
		}
		if first.ReviewOrder >= second.ReviewOrder {
			t.Errorf("review order %d >= %d, want creation order",
				first.ReviewOrder, second.ReviewOrder)
		}

		ids, err := store.ListUnresolvedGroupIDs(ctx)
		if err != nil {
			t.Fatalf("list unresolved: %v", err)
		}
		idxFirst, idxSecond := -1, -1
		for i, id := range ids {
			if id == first.ID {
				idxFirst = i
			}
			if id == second.ID {
				idxSecond = i
			}
		}
		if idxFirst == -1 || idxSecond == -1 || idxFirst > idxSecond {
			t.Errorf("review queue positions %d/%d, want first before second",
				idxFirst, idxSecond)
		}
	})

	t.Run("InvalidTransitionRejected", func(t *testing.T) {
		group, _ := store.GetGroupByHash(ctx, "H2")
		err := store.UpdateGroupStatus(ctx, group.ID, models.GroupStatusCleaned)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestSessionOperations(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()

	t.Run("StartCreatesActive", func(t *testing.T) {
		session, err := store.StartSession(ctx, false)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if session.Status != models.SessionStatusActive {
			t.Errorf("expected active, got %s", session.Status)
		}
	})

	t.Run("SecondStartWithoutResumeRejected", func(t *testing.T) {
		_, err := store.StartSession(ctx, false)
		if !errors.Is(err, models.ErrSessionActive) {
			t.Errorf("expected ErrSessionActive, got %v", err)
		}
	})

	t.Run("ResumeReattaches", func(t *testing.T) {
		first, err := store.GetActiveSession(ctx)
		if err != nil {
			t.Fatalf("get active: %v", err)
		}
		resumed, err := store.StartSession(ctx, true)
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if resumed.ID != first.ID {
			t.Error("resume created a new session")
		}
		if resumed.ResumedAt == nil {
			t.Error("resumedAt not stamped")
		}
	})

	t.Run("CompleteFreesSlot", func(t *testing.T) {
		active, _ := store.GetActiveSession(ctx)
		if err := store.UpdateSessionStatus(ctx, active.ID, models.SessionStatusCompleted); err != nil {
			t.Fatalf("complete: %v", err)
		}

		session, err := store.StartSession(ctx, false)
		if err != nil {
			t.Fatalf("start after complete: %v", err)
		}
		if session.ID == active.ID {
			t.Error("completed session reused")
		}
	})

	t.Run("CompletedCannotResume", func(t *testing.T) {
		var done models.SelectionSession
		if err := store.DB().Where("status = ?", models.SessionStatusCompleted).First(&done).Error; err != nil {
			t.Fatalf("find completed: %v", err)
		}
		err := store.UpdateSessionStatus(ctx, done.ID, models.SessionStatusActive)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestCleanerJobLifecycle(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()
	dirID := createTestScanDir(t, store, "/r")

	setupGroup := func(t *testing.T, hash string) *models.DuplicateGroup {
		t.Helper()
		upsertTestFile(t, store, dirID, "/r/"+hash+"-1.jpg", hash, 100)
		upsertTestFile(t, store, dirID, "/r/"+hash+"-2.jpg", hash, 100)
		group, err := store.GetGroupByHash(ctx, hash)
		if err != nil {
			t.Fatalf("group not created: %v", err)
		}
		full, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if err := store.SetOriginal(ctx, group.ID, full.Files[0].ID, models.GroupStatusValidated); err != nil {
			t.Fatalf("set original: %v", err)
		}
		return group
	}

	t.Run("QueueRequiresOriginal", func(t *testing.T) {
		upsertTestFile(t, store, dirID, "/r/x1.jpg", "HX", 10)
		upsertTestFile(t, store, dirID, "/r/x2.jpg", "HX", 10)
		group, _ := store.GetGroupByHash(ctx, "HX")

		_, err := store.CreateJobForGroup(ctx, group.ID, models.JobCategoryHashDuplicate, false)
		if !errors.Is(err, models.ErrNoOriginalSelected) {
			t.Errorf("expected ErrNoOriginalSelected, got %v", err)
		}
	})

	t.Run("QueueExcludesOriginal", func(t *testing.T) {
		group := setupGroup(t, "HJ")
		job, err := store.CreateJobForGroup(ctx, group.ID, models.JobCategoryHashDuplicate, false)
		if err != nil {
			t.Fatalf("create job: %v", err)
		}
		if job.TotalFiles != 1 {
			t.Errorf("expected 1 queued file, got %d", job.TotalFiles)
		}

		updated, _ := store.GetGroup(ctx, group.ID)
		if updated.Status != models.GroupStatusCleaning {
			t.Errorf("expected cleaning, got %s", updated.Status)
		}
	})

	t.Run("SuccessfulJobArchivesAndCleans", func(t *testing.T) {
		group, _ := store.GetGroupByHash(ctx, "HJ")
		jobs, err := store.ListPendingJobs(ctx)
		if err != nil || len(jobs) == 0 {
			t.Fatalf("no pending jobs: %v", err)
		}
		job := jobs[0]

		if err := store.UpdateJobStatus(ctx, job.ID, models.JobStatusInProgress); err != nil {
			t.Fatalf("start job: %v", err)
		}

		archive := "/trash/r/HJ-2.jpg"
		err = store.ApplyJobFileResult(ctx, job.ID, job.Files[0].FileID, JobFileResult{
			Status:      models.JobFileStatusDeleted,
			ArchivePath: &archive,
		})
		if err != nil {
			t.Fatalf("apply result: %v", err)
		}

		if err := store.FinishJob(ctx, job.ID, 1, 0, 0); err != nil {
			t.Fatalf("finish job: %v", err)
		}

		done, err := store.GetJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if done.Status != models.JobStatusCompleted {
			t.Errorf("expected completed, got %s", done.Status)
		}
		if done.SucceededCnt != 1 {
			t.Errorf("expected 1 succeeded, got %d", done.SucceededCnt)
		}

		// The group row survives the clean as the record of the resolution.
		cleaned, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("group must survive the clean: %v", err)
		}
		if cleaned.Status != models.GroupStatusCleaned {
			t.Errorf("expected cleaned, got %s", cleaned.Status)
		}
		if cleaned.KeptFileID == nil {
			t.Error("cleaned group lost its original reference")
		}
		if cleaned.FileCount != 1 {
			t.Errorf("file count = %d, want 1 live member", cleaned.FileCount)
		}
	})

	t.Run("NewDuplicateReopensCleanedGroup", func(t *testing.T) {
		group, err := store.GetGroupByHash(ctx, "HJ")
		if err != nil {
			t.Fatalf("cleaned group missing: %v", err)
		}
		if group.Status != models.GroupStatusCleaned {
			t.Fatalf("precondition: group is %s, want cleaned", group.Status)
		}
		previousOrder := group.ReviewOrder

		upsertTestFile(t, store, dirID, "/r/HJ-3.jpg", "HJ", 100)

		reopened, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("get reopened group: %v", err)
		}
		if reopened.Status != models.GroupStatusPending {
			t.Errorf("expected pending after new duplicate, got %s", reopened.Status)
		}
		if reopened.KeptFileID != nil {
			t.Error("reopened group must not carry the old original")
		}
		if reopened.ReviewOrder <= previousOrder {
			t.Errorf("review order %d, want past %d (back of the queue)",
				reopened.ReviewOrder, previousOrder)
		}
		for _, f := range reopened.Files {
			if f.IsOriginal && !f.IsDeleted {
				t.Errorf("live member %s still flagged original", f.Path)
			}
		}
		if reopened.FileCount != 2 {
			t.Errorf("file count = %d, want 2 live members", reopened.FileCount)
		}
	})

	t.Run("DryRunLeavesGroupValidated", func(t *testing.T) {
		group := setupGroup(t, "HD")
		job, err := store.CreateJobForGroup(ctx, group.ID, models.JobCategoryHashDuplicate, true)
		if err != nil {
			t.Fatalf("create dry-run job: %v", err)
		}

		after, _ := store.GetGroup(ctx, group.ID)
		if after.Status != models.GroupStatusValidated {
			t.Errorf("dry-run queue moved group to %s", after.Status)
		}

		if err := store.UpdateJobStatus(ctx, job.ID, models.JobStatusInProgress); err != nil {
			t.Fatalf("start job: %v", err)
		}
		err = store.ApplyJobFileResult(ctx, job.ID, job.Files[0].FileID, JobFileResult{
			Status:    models.JobFileStatusDeleted,
			WasDryRun: true,
		})
		if err != nil {
			t.Fatalf("apply result: %v", err)
		}
		if err := store.FinishJob(ctx, job.ID, 1, 0, 0); err != nil {
			t.Fatalf("finish: %v", err)
		}

		final, _ := store.GetGroup(ctx, group.ID)
		if final.Status != models.GroupStatusValidated {
			t.Errorf("expected validated after dry-run, got %s", final.Status)
		}

		file, err := store.GetFile(ctx, job.Files[0].FileID)
		if err != nil {
			t.Fatalf("get file: %v", err)
		}
		if file.IsDeleted {
			t.Error("dry-run must not archive the file")
		}
	})

	t.Run("FailedJobMarksCleaningFailed", func(t *testing.T) {
		group := setupGroup(t, "HF")
		job, err := store.CreateJobForGroup(ctx, group.ID, models.JobCategoryHashDuplicate, false)
		if err != nil {
			t.Fatalf("create job: %v", err)
		}
		if err := store.UpdateJobStatus(ctx, job.ID, models.JobStatusInProgress); err != nil {
			t.Fatalf("start: %v", err)
		}
		msg := "permission denied"
		err = store.ApplyJobFileResult(ctx, job.ID, job.Files[0].FileID, JobFileResult{
			Status: models.JobFileStatusFailed,
			Error:  &msg,
		})
		if err != nil {
			t.Fatalf("apply result: %v", err)
		}
		if err := store.FinishJob(ctx, job.ID, 0, 1, 0); err != nil {
			t.Fatalf("finish: %v", err)
		}

		final, _ := store.GetGroup(ctx, group.ID)
		if final.Status != models.GroupStatusCleaningFailed {
			t.Errorf("expected cleaningFailed, got %s", final.Status)
		}

		// Retry is allowed from cleaningFailed.
		if err := store.UpdateGroupStatus(ctx, group.ID, models.GroupStatusCleaning); err != nil {
			t.Errorf("retry transition rejected: %v", err)
		}
	})
}

func TestHiddenRules(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()
	dirID := createTestScanDir(t, store, "/r")

	upsertTestFile(t, store, dirID, "/r/keep/a.jpg", "HH", 100)
	upsertTestFile(t, store, dirID, "/r/cache/a.jpg", "HH", 100)

	t.Run("FolderRuleHidesAndShrinksGroup", func(t *testing.T) {
		if _, err := store.GetGroupByHash(ctx, "HH"); err != nil {
			t.Fatalf("expected group before hide: %v", err)
		}

		_, err := store.CreateHiddenFolder(ctx, &models.HiddenFolder{Path: "/r/cache"})
		if err != nil {
			t.Fatalf("create folder rule: %v", err)
		}

		// One live non-hidden member left: group dissolves.
		_, err = store.GetGroupByHash(ctx, "HH")
		if !errors.Is(err, models.ErrGroupNotFound) {
			t.Errorf("expected group dissolved, got %v", err)
		}

		files, _, err := store.ListFiles(ctx, FileFilter{Search: "/r/cache"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(files) != 0 {
			t.Error("hidden files leaked into default listing")
		}
	})

	t.Run("RemovingRuleUnhidesAndRestoresGroup", func(t *testing.T) {
		folders, err := store.ListHiddenFolders(ctx)
		if err != nil || len(folders) != 1 {
			t.Fatalf("list folders: %v", err)
		}
		if err := store.DeleteHiddenFolder(ctx, folders[0].ID); err != nil {
			t.Fatalf("delete rule: %v", err)
		}

		group, err := store.GetGroupByHash(ctx, "HH")
		if err != nil {
			t.Fatalf("expected group restored: %v", err)
		}
		if group.FileCount != 2 {
			t.Errorf("expected 2 members after unhide, got %d", group.FileCount)
		}
	})

	t.Run("SizeRuleHidesSmallFiles", func(t *testing.T) {
		small := upsertTestFile(t, store, dirID, "/r/tiny.jpg", "tiny", 10)
		_, err := store.CreateHiddenSizeRule(ctx, &models.HiddenSizeRule{MaxSize: 50, Label: "thumbnails"})
		if err != nil {
			t.Fatalf("create size rule: %v", err)
		}

		file, err := store.GetFile(ctx, small.File.ID)
		if err != nil {
			t.Fatalf("get file: %v", err)
		}
		if !file.Hidden {
			t.Error("expected small file hidden")
		}
		if file.HiddenCategory == nil || *file.HiddenCategory != models.HiddenCategorySize {
			t.Error("expected size category")
		}
	})
}

func TestFileStats(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()
	ctx := context.Background()
	dirID := createTestScanDir(t, store, "/r")

	upsertTestFile(t, store, dirID, "/r/a.jpg", "S1", 100)
	upsertTestFile(t, store, dirID, "/r/b.jpg", "S1", 100)
	upsertTestFile(t, store, dirID, "/r/c.jpg", "S2", 300)

	group, _ := store.GetGroupByHash(ctx, "S1")
	full, _ := store.GetGroup(ctx, group.ID)
	if err := store.SetOriginal(ctx, group.ID, full.Files[0].ID, models.GroupStatusValidated); err != nil {
		t.Fatalf("set original: %v", err)
	}

	stats, err := store.FileStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Errorf("expected 3 files, got %d", stats.TotalFiles)
	}
	if stats.TotalSize != 500 {
		t.Errorf("expected 500 bytes, got %d", stats.TotalSize)
	}
	if stats.DuplicateGroups != 1 {
		t.Errorf("expected 1 group, got %d", stats.DuplicateGroups)
	}
	if stats.WastedSize != 100 {
		t.Errorf("expected 100 wasted bytes, got %d", stats.WastedSize)
	}
}
