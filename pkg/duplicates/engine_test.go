package duplicates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/photovault/pkg/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func testFile(id, dirID, path string) models.IndexedFile {
	return models.IndexedFile{
		ID:              id,
		ScanDirectoryID: dirID,
		Path:            path,
		FileModifiedAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestScoreFile(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	t.Run("LongestPrefixWins", func(t *testing.T) {
		// Preferences arrive longest-prefix-first, mirroring store ordering.
		prefs := []*models.SelectionPreference{
			{Prefix: "/photos/originals", Priority: 80},
			{Prefix: "/photos", Priority: 10},
		}
		f := testFile("f1", "d1", "/photos/originals/img.jpg")
		b := scoreFile(&f, "/photos", prefs, now)
		assert.Equal(t, 80, b.Priority)
	})

	t.Run("SegmentAwarePrefix", func(t *testing.T) {
		prefs := []*models.SelectionPreference{
			{Prefix: "/photos/origin", Priority: 90},
		}
		f := testFile("f1", "d1", "/photos/originals/img.jpg")
		b := scoreFile(&f, "/photos", prefs, now)
		assert.Equal(t, 0, b.Priority)
	})

	t.Run("ExifBonus", func(t *testing.T) {
		f := testFile("f1", "d1", "/photos/img.jpg")
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 0, b.ExifBonus)

		f.CameraMake = strPtr("Canon")
		b = scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 20, b.ExifBonus)
	})

	t.Run("DepthBonus", func(t *testing.T) {
		f := testFile("f1", "d1", "/photos/img.jpg")
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 0, b.DepthBonus, "file directly in root")

		f.Path = "/photos/2024/summer/img.jpg"
		b = scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 10, b.DepthBonus, "two segments below root")
	})

	t.Run("DepthBonusCapped", func(t *testing.T) {
		f := testFile("f1", "d1", "/photos/a/b/c/d/e/f/g/img.jpg")
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 25, b.DepthBonus)
	})

	t.Run("DepthBonusOutsideRoot", func(t *testing.T) {
		f := testFile("f1", "d1", "/other/deep/nested/img.jpg")
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 0, b.DepthBonus)
	})

	t.Run("AgeBonusPrefersDateTaken", func(t *testing.T) {
		f := testFile("f1", "d1", "/photos/img.jpg")
		f.FileModifiedAt = now.AddDate(0, -1, 0)
		f.DateTaken = timePtr(now.AddDate(0, -6, 0))
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 6, b.AgeBonus)
	})

	t.Run("AgeBonusFallsBackToModified", func(t *testing.T) {
		f := testFile("f1", "d1", "/photos/img.jpg")
		f.FileModifiedAt = now.AddDate(0, -3, 0)
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 3, b.AgeBonus)
	})

	t.Run("AgeBonusCapped", func(t *testing.T) {
		f := testFile("f1", "d1", "/photos/img.jpg")
		f.DateTaken = timePtr(now.AddDate(-5, 0, 0))
		b := scoreFile(&f, "/photos", nil, now)
		assert.Equal(t, 12, b.AgeBonus)
	})
}

func TestFullMonths(t *testing.T) {
	now := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		from time.Time
		want int
	}{
		{"SameDay", now, 0},
		{"Future", now.AddDate(0, 1, 0), 0},
		{"JustUnderOneMonth", time.Date(2026, 7, 25, 0, 0, 0, 0, time.UTC), 0},
		{"ExactlyOneMonth", time.Date(2026, 7, 24, 0, 0, 0, 0, time.UTC), 1},
		{"YearBoundary", time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fullMonths(tc.from, now))
		})
	}
}

func TestRank(t *testing.T) {
	now := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	t.Run("PreferredPathWins", func(t *testing.T) {
		prefs := []*models.SelectionPreference{
			{Prefix: "/photos/originals", Priority: 80},
			{Prefix: "/photos/backup", Priority: 20},
		}
		files := []models.IndexedFile{
			testFile("backup", "d1", "/photos/backup/img.jpg"),
			testFile("orig", "d1", "/photos/originals/img.jpg"),
		}
		roots := map[string]string{"d1": "/photos"}

		scores := rank(files, roots, prefs, now)
		require.Len(t, scores, 2)
		assert.Equal(t, "orig", scores[0].FileID)
		assert.Equal(t, 60, scores[0].Total()-scores[1].Total())
	})

	t.Run("EqualScoresTieBreakByPath", func(t *testing.T) {
		files := []models.IndexedFile{
			testFile("b", "d1", "/photos/b/img.jpg"),
			testFile("a", "d1", "/photos/a/img.jpg"),
		}
		roots := map[string]string{"d1": "/photos"}

		scores := rank(files, roots, nil, now)
		require.Len(t, scores, 2)
		assert.Equal(t, scores[0].Total(), scores[1].Total())
		assert.Equal(t, "a", scores[0].FileID, "path ascending breaks the tie")
	})

	t.Run("ExifBeatsPlainCopy", func(t *testing.T) {
		withExif := testFile("exif", "d1", "/photos/img.jpg")
		withExif.ISO = func() *int { v := 200; return &v }()
		files := []models.IndexedFile{
			testFile("plain", "d1", "/photos/copy.jpg"),
			withExif,
		}
		roots := map[string]string{"d1": "/photos"}

		scores := rank(files, roots, nil, now)
		assert.Equal(t, "exif", scores[0].FileID)
		assert.Equal(t, 20, scores[0].Total()-scores[1].Total())
	})
}
