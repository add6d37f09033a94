package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStatusTransitions(t *testing.T) {
	t.Run("AllowedEdges", func(t *testing.T) {
		allowed := []struct {
			from, to GroupStatus
		}{
			{GroupStatusPending, GroupStatusAutoSelected},
			{GroupStatusPending, GroupStatusValidated},
			{GroupStatusAutoSelected, GroupStatusValidated},
			{GroupStatusValidated, GroupStatusCleaning},
			{GroupStatusCleaning, GroupStatusCleaned},
			{GroupStatusCleaning, GroupStatusCleaningFailed},
			{GroupStatusCleaningFailed, GroupStatusCleaning},
			{GroupStatusCleaned, GroupStatusPending},
		}
		for _, tc := range allowed {
			assert.True(t, tc.from.CanTransitionTo(tc.to),
				"%s -> %s should be allowed", tc.from, tc.to)
		}
	})

	t.Run("ForbiddenEdges", func(t *testing.T) {
		forbidden := []struct {
			from, to GroupStatus
		}{
			{GroupStatusPending, GroupStatusCleaning},
			{GroupStatusPending, GroupStatusCleaned},
			{GroupStatusAutoSelected, GroupStatusPending},
			{GroupStatusAutoSelected, GroupStatusCleaning},
			{GroupStatusValidated, GroupStatusCleaned},
			{GroupStatusValidated, GroupStatusPending},
			{GroupStatusCleaned, GroupStatusCleaning},
			{GroupStatusCleaningFailed, GroupStatusCleaned},
		}
		for _, tc := range forbidden {
			assert.False(t, tc.from.CanTransitionTo(tc.to),
				"%s -> %s should be forbidden", tc.from, tc.to)
		}
	})

	t.Run("ParseValid", func(t *testing.T) {
		s, err := ParseGroupStatus("autoSelected")
		require.NoError(t, err)
		assert.Equal(t, GroupStatusAutoSelected, s)
	})

	t.Run("ParseInvalid", func(t *testing.T) {
		_, err := ParseGroupStatus("archived")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidGroupStatus)
	})
}

func TestJobStatusTransitions(t *testing.T) {
	t.Run("PendingStartsOrCancels", func(t *testing.T) {
		assert.True(t, JobStatusPending.CanTransitionTo(JobStatusInProgress))
		assert.True(t, JobStatusPending.CanTransitionTo(JobStatusCancelled))
		assert.False(t, JobStatusPending.CanTransitionTo(JobStatusCompleted))
	})

	t.Run("InProgressFinishes", func(t *testing.T) {
		assert.True(t, JobStatusInProgress.CanTransitionTo(JobStatusCompleted))
		assert.True(t, JobStatusInProgress.CanTransitionTo(JobStatusFailed))
		assert.True(t, JobStatusInProgress.CanTransitionTo(JobStatusCancelled))
	})

	t.Run("FailedRetries", func(t *testing.T) {
		assert.True(t, JobStatusFailed.CanTransitionTo(JobStatusPending))
		assert.False(t, JobStatusFailed.CanTransitionTo(JobStatusInProgress))
	})

	t.Run("TerminalStatesStay", func(t *testing.T) {
		for _, next := range []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusFailed} {
			assert.False(t, JobStatusCompleted.CanTransitionTo(next))
			assert.False(t, JobStatusCancelled.CanTransitionTo(next))
		}
		assert.True(t, JobStatusCompleted.Terminal())
		assert.True(t, JobStatusCancelled.Terminal())
		assert.False(t, JobStatusInProgress.Terminal())
	})
}

func TestJobFileStatus(t *testing.T) {
	t.Run("TerminalStates", func(t *testing.T) {
		assert.True(t, JobFileStatusDeleted.Terminal())
		assert.True(t, JobFileStatusFailed.Terminal())
		assert.True(t, JobFileStatusSkipped.Terminal())
		assert.False(t, JobFileStatusUploading.Terminal())
		assert.False(t, JobFileStatusPending.Terminal())
	})

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, JobFileStatusDeleting.Valid())
		assert.False(t, JobFileStatus("purged").Valid())
	})
}

func TestSessionStatusTransitions(t *testing.T) {
	t.Run("ActivePausesOrCompletes", func(t *testing.T) {
		assert.True(t, SessionStatusActive.CanTransitionTo(SessionStatusPaused))
		assert.True(t, SessionStatusActive.CanTransitionTo(SessionStatusCompleted))
	})

	t.Run("PausedResumesOrCompletes", func(t *testing.T) {
		assert.True(t, SessionStatusPaused.CanTransitionTo(SessionStatusActive))
		assert.True(t, SessionStatusPaused.CanTransitionTo(SessionStatusCompleted))
	})

	t.Run("CompletedIsTerminal", func(t *testing.T) {
		assert.False(t, SessionStatusCompleted.CanTransitionTo(SessionStatusActive))
		assert.False(t, SessionStatusCompleted.CanTransitionTo(SessionStatusPaused))
	})
}

func TestSelectionPreferenceMatches(t *testing.T) {
	pref := &SelectionPreference{Prefix: "/r/originals", Priority: 80}

	assert.True(t, pref.Matches("/r/originals/2024/img.jpg"))
	assert.True(t, pref.Matches("/r/originals"))
	assert.False(t, pref.Matches("/r/originals-backup/img.jpg"))
	assert.False(t, pref.Matches("/r/backup/img.jpg"))
}

func TestHiddenRules(t *testing.T) {
	t.Run("FolderContains", func(t *testing.T) {
		folder := &HiddenFolder{Path: "/r/cache"}
		assert.True(t, folder.Contains("/r/cache/thumb.jpg"))
		assert.True(t, folder.Contains("/r/cache"))
		assert.False(t, folder.Contains("/r/cache2/thumb.jpg"))
	})

	t.Run("SizeRuleApplies", func(t *testing.T) {
		rule := &HiddenSizeRule{MaxSize: 1024}
		assert.True(t, rule.Applies(512))
		assert.False(t, rule.Applies(1024))
		assert.False(t, rule.Applies(4096))
	})
}

func TestIndexedFileHelpers(t *testing.T) {
	t.Run("HasExif", func(t *testing.T) {
		f := &IndexedFile{}
		assert.False(t, f.HasExif())

		taken := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		f.DateTaken = &taken
		assert.True(t, f.HasExif())

		make := "Canon"
		g := &IndexedFile{CameraMake: &make}
		assert.True(t, g.HasExif())
	})

	t.Run("IsLive", func(t *testing.T) {
		f := &IndexedFile{}
		assert.True(t, f.IsLive())
		f.IsDeleted = true
		assert.False(t, f.IsLive())
	})
}

func TestAllModels(t *testing.T) {
	all := AllModels()
	require.Len(t, all, 9)
	for _, m := range all {
		require.NotNil(t, m)
	}
}
