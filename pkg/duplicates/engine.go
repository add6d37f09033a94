// Package duplicates owns original selection for duplicate groups: the
// scoring engine, the automatic selection service, and the operator review
// session workflow.
package duplicates

import (
	"sort"
	"strings"
	"time"

	"github.com/marmos91/photovault/pkg/models"
)

// Scoring weights. Path priority comes from the preferences table (0-100);
// the structural bonuses below stack on top of it.
const (
	exifBonus        = 20
	depthBonusStep   = 5
	depthBonusCap    = 25
	ageBonusPerMonth = 1
	ageBonusCap      = 12
)

// ScoreBreakdown is one member's score with its components, kept separate
// so conflict responses can show the operator why the engine could not pick.
type ScoreBreakdown struct {
	FileID     string `json:"fileId"`
	Path       string `json:"path"`
	Priority   int    `json:"priority"`
	ExifBonus  int    `json:"exifBonus"`
	DepthBonus int    `json:"depthBonus"`
	AgeBonus   int    `json:"ageBonus"`
}

// Total returns the member's combined score.
func (b ScoreBreakdown) Total() int {
	return b.Priority + b.ExifBonus + b.DepthBonus + b.AgeBonus
}

// scoreFile computes one member's score. Preferences must be ordered
// longest-prefix-first (store.ListPreferences order); the first match wins.
func scoreFile(file *models.IndexedFile, scanRoot string, prefs []*models.SelectionPreference, now time.Time) ScoreBreakdown {
	b := ScoreBreakdown{
		FileID: file.ID,
		Path:   file.Path,
	}

	for _, pref := range prefs {
		if pref.Matches(file.Path) {
			b.Priority = pref.Priority
			break
		}
	}

	if file.HasExif() {
		b.ExifBonus = exifBonus
	}

	b.DepthBonus = depthBonusStep * segmentsBelowRoot(file.Path, scanRoot)
	if b.DepthBonus > depthBonusCap {
		b.DepthBonus = depthBonusCap
	}

	ref := file.FileModifiedAt
	if file.DateTaken != nil {
		ref = *file.DateTaken
	}
	b.AgeBonus = ageBonusPerMonth * fullMonths(ref, now)
	if b.AgeBonus > ageBonusCap {
		b.AgeBonus = ageBonusCap
	}

	return b
}

// segmentsBelowRoot counts the directory segments between the scan root and
// the file itself. A file directly inside the root scores zero.
func segmentsBelowRoot(path, scanRoot string) int {
	root := strings.TrimSuffix(scanRoot, "/")
	if root == "" || !strings.HasPrefix(path, root+"/") {
		return 0
	}
	rel := strings.TrimPrefix(path, root+"/")
	// The last element is the file name, everything before it is a segment.
	return strings.Count(rel, "/")
}

// fullMonths returns the number of whole calendar months between from and to.
func fullMonths(from, to time.Time) int {
	if !from.Before(to) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// rank scores every member and sorts descending by total, with path as a
// deterministic tie-break so repeated runs agree.
func rank(files []models.IndexedFile, roots map[string]string, prefs []*models.SelectionPreference, now time.Time) []ScoreBreakdown {
	scores := make([]ScoreBreakdown, 0, len(files))
	for i := range files {
		file := &files[i]
		scores = append(scores, scoreFile(file, roots[file.ScanDirectoryID], prefs, now))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Total() != scores[j].Total() {
			return scores[i].Total() > scores[j].Total()
		}
		return scores[i].Path < scores[j].Path
	})
	return scores
}
