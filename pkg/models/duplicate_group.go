package models

import (
	"fmt"
	"time"
)

// GroupStatus is the lifecycle state of a duplicate group. Persisted as a
// short string; transitions are validated with CanTransitionTo before any
// write.
type GroupStatus string

const (
	GroupStatusPending        GroupStatus = "pending"
	GroupStatusAutoSelected   GroupStatus = "autoSelected"
	GroupStatusValidated      GroupStatus = "validated"
	GroupStatusCleaning       GroupStatus = "cleaning"
	GroupStatusCleaned        GroupStatus = "cleaned"
	GroupStatusCleaningFailed GroupStatus = "cleaningFailed"
)

// groupTransitions is the closed set of allowed status edges.
var groupTransitions = map[GroupStatus][]GroupStatus{
	GroupStatusPending:        {GroupStatusAutoSelected, GroupStatusValidated},
	GroupStatusAutoSelected:   {GroupStatusValidated},
	GroupStatusValidated:      {GroupStatusCleaning},
	GroupStatusCleaning:       {GroupStatusCleaned, GroupStatusCleaningFailed},
	GroupStatusCleaningFailed: {GroupStatusCleaning},
	GroupStatusCleaned:        {GroupStatusPending},
}

// Valid reports whether s is a known group status.
func (s GroupStatus) Valid() bool {
	switch s {
	case GroupStatusPending, GroupStatusAutoSelected, GroupStatusValidated,
		GroupStatusCleaning, GroupStatusCleaned, GroupStatusCleaningFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> next is allowed.
func (s GroupStatus) CanTransitionTo(next GroupStatus) bool {
	for _, allowed := range groupTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseGroupStatus parses a stored status string.
func ParseGroupStatus(raw string) (GroupStatus, error) {
	s := GroupStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGroupStatus, raw)
	}
	return s, nil
}

// DuplicateGroup collects all live files sharing one content hash. A group
// forms when at least two live files share the hash; FileCount and
// TotalSize track live, non-hidden members. A cleaned group keeps its row
// as the record of the resolution.
type DuplicateGroup struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	Hash      string      `gorm:"uniqueIndex;not null;size:64" json:"hash"`
	Status    GroupStatus `gorm:"not null;size:16;index;default:pending" json:"status"`
	FileCount int         `gorm:"not null" json:"file_count"`
	TotalSize int64       `gorm:"not null" json:"total_size"`

	// ReviewOrder is the group's slot in the review queue, assigned when
	// the group forms and reassigned when a cleaned group re-enters review.
	ReviewOrder int64 `gorm:"not null;default:0;index" json:"review_order"`

	// KeptFileID and ResolvedAt are stamped when an original is chosen.
	KeptFileID *string    `gorm:"size:36" json:"kept_file_id,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// ReviewSessionID associates the group with the session that last
	// proposed an original for it.
	ReviewSessionID *string `gorm:"size:36;index" json:"review_session_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Members are loaded on demand, sorted by path.
	Files []IndexedFile `gorm:"foreignKey:DuplicateGroupID" json:"files,omitempty"`
}

// TableName returns the table name for DuplicateGroup.
func (DuplicateGroup) TableName() string {
	return "duplicate_groups"
}

// Resolved reports whether an original has been chosen for the group.
func (g *DuplicateGroup) Resolved() bool {
	return g.KeptFileID != nil
}
