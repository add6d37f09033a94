package duplicates

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/pkg/models"
	"github.com/marmos91/photovault/pkg/store"
)

// DefaultConflictThreshold is the minimum score gap between the top two
// members before the engine commits to an automatic pick.
const DefaultConflictThreshold = 5

// Service drives original selection and deletion queueing for duplicate
// groups on top of the metadata store.
type Service struct {
	store     *store.GORMStore
	threshold int
	now       func() time.Time
}

// NewService returns a selection service. A non-positive conflictThreshold
// falls back to DefaultConflictThreshold.
func NewService(st *store.GORMStore, conflictThreshold int) *Service {
	if conflictThreshold <= 0 {
		conflictThreshold = DefaultConflictThreshold
	}
	return &Service{
		store:     st,
		threshold: conflictThreshold,
		now:       time.Now,
	}
}

// SelectionResult is the outcome of scoring one group. When Conflict is set
// no original was chosen and the group stays where it was; Scores always
// carries the full ranking so the caller can surface it.
type SelectionResult struct {
	GroupID    string           `json:"groupId"`
	SelectedID string           `json:"selectedId,omitempty"`
	Conflict   bool             `json:"conflict"`
	Scores     []ScoreBreakdown `json:"scores"`
}

// AutoSelectSummary aggregates a bulk auto-selection pass.
type AutoSelectSummary struct {
	Selected  int `json:"selected"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// ScoreGroup ranks the group's live, non-hidden members without writing
// anything. Used by AutoSelectOriginal and by the conflict inspection
// endpoint.
func (s *Service) ScoreGroup(ctx context.Context, groupID string) (*SelectionResult, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members := make([]models.IndexedFile, 0, len(group.Files))
	for _, f := range group.Files {
		if !f.Hidden {
			members = append(members, f)
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("group %s has no scoreable members", groupID)
	}

	prefs, err := s.store.ListPreferences(ctx)
	if err != nil {
		return nil, err
	}
	roots, err := s.scanRoots(ctx, members)
	if err != nil {
		return nil, err
	}

	return &SelectionResult{
		GroupID: groupID,
		Scores:  rank(members, roots, prefs, s.now().UTC()),
	}, nil
}

// AutoSelectOriginal scores the group and commits the winner as its original,
// moving it to autoSelected. When the top two scores sit closer than the
// conflict threshold the group is left untouched and the result reports the
// conflict instead.
func (s *Service) AutoSelectOriginal(ctx context.Context, groupID string) (*SelectionResult, error) {
	result, err := s.ScoreGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if len(result.Scores) > 1 {
		gap := result.Scores[0].Total() - result.Scores[1].Total()
		if gap < s.threshold {
			result.Conflict = true
			logger.DebugCtx(ctx, "auto-selection conflict",
				logger.GroupID(groupID), "gap", gap, "threshold", s.threshold)
			return result, nil
		}
	}

	winner := result.Scores[0].FileID
	if err := s.store.SetOriginal(ctx, groupID, winner, models.GroupStatusAutoSelected); err != nil {
		return nil, err
	}
	result.SelectedID = winner
	return result, nil
}

// AutoSelectAll runs auto-selection over every unresolved group. Per-group
// failures are logged and counted; the pass keeps going.
func (s *Service) AutoSelectAll(ctx context.Context) (*AutoSelectSummary, error) {
	ids, err := s.store.ListUnresolvedGroupIDs(ctx)
	if err != nil {
		return nil, err
	}

	summary := &AutoSelectSummary{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := s.AutoSelectOriginal(ctx, id)
		switch {
		case err != nil:
			summary.Failed++
			logger.WarnCtx(ctx, "auto-selection failed",
				logger.GroupID(id), logger.Err(err))
		case result.Conflict:
			summary.Conflicts++
		default:
			summary.Selected++
		}
	}

	logger.InfoCtx(ctx, "auto-selection pass finished",
		"groups", len(ids),
		"selected", summary.Selected,
		"conflicts", summary.Conflicts,
		"failed", summary.Failed)
	return summary, nil
}

// SetOriginal records an operator-confirmed original and moves the group to
// validated.
func (s *Service) SetOriginal(ctx context.Context, groupID, fileID string) error {
	return s.store.SetOriginal(ctx, groupID, fileID, models.GroupStatusValidated)
}

// QueueForDeletion creates a cleaner job covering the group's non-original
// members. The group must be validated with an original on record.
func (s *Service) QueueForDeletion(ctx context.Context, groupID string, dryRun bool) (*models.CleanerJob, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Resolved() {
		return nil, models.ErrNoOriginalSelected
	}
	if group.Status != models.GroupStatusValidated && group.Status != models.GroupStatusCleaningFailed {
		return nil, fmt.Errorf("%w: group is %s", models.ErrInvalidTransition, group.Status)
	}
	return s.store.CreateJobForGroup(ctx, groupID, models.JobCategoryHashDuplicate, dryRun)
}

// scanRoots resolves the scan directory path for each distinct directory the
// members came from.
func (s *Service) scanRoots(ctx context.Context, members []models.IndexedFile) (map[string]string, error) {
	roots := make(map[string]string)
	for i := range members {
		dirID := members[i].ScanDirectoryID
		if _, ok := roots[dirID]; ok {
			continue
		}
		dir, err := s.store.GetScanDirectory(ctx, dirID)
		if err != nil {
			return nil, fmt.Errorf("resolve scan directory %s: %w", dirID, err)
		}
		roots[dirID] = dir.Path
	}
	return roots, nil
}
