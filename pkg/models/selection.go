package models

import (
	"fmt"
	"strings"
	"time"
)

// SelectionPreference ranks a directory prefix for original selection.
// Higher priority wins; the longest matching prefix is consulted first,
// with SortOrder breaking ties between equal-length prefixes.
type SelectionPreference struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Prefix    string `gorm:"uniqueIndex;not null;size:1024" json:"prefix"`
	Priority  int    `gorm:"not null" json:"priority"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for SelectionPreference.
func (SelectionPreference) TableName() string {
	return "selection_preferences"
}

// Matches reports whether path falls under the preference prefix. Matching
// is segment-aware: /r/origin does not match /r/originals.
func (p *SelectionPreference) Matches(path string) bool {
	prefix := strings.TrimSuffix(p.Prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// SessionStatus is the lifecycle state of a review session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
)

// sessionTransitions is the closed set of allowed session edges.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusActive: {SessionStatusPaused, SessionStatusCompleted},
	SessionStatusPaused: {SessionStatusActive, SessionStatusCompleted},
}

// Valid reports whether s is a known session status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusActive, SessionStatusPaused, SessionStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> next is allowed.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseSessionStatus parses a stored status string.
func ParseSessionStatus(raw string) (SessionStatus, error) {
	s := SessionStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionStatus, raw)
	}
	return s, nil
}

// SelectionSession is the operator's in-flight review of duplicate groups.
// At most one session is active at a time.
type SelectionSession struct {
	ID     string        `gorm:"primaryKey;size:36" json:"id"`
	Status SessionStatus `gorm:"not null;size:16;index;default:active" json:"status"`

	ProposedCount  int `gorm:"default:0" json:"proposed_count"`
	ValidatedCount int `gorm:"default:0" json:"validated_count"`
	SkippedCount   int `gorm:"default:0" json:"skipped_count"`

	CurrentGroupID *string `gorm:"size:36" json:"current_group_id,omitempty"`

	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	ResumedAt      *time.Time `json:"resumed_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastActivityAt time.Time  `gorm:"not null" json:"last_activity_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for SelectionSession.
func (SelectionSession) TableName() string {
	return "selection_sessions"
}
