package processor

import (
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifTimeLayout is the EXIF timestamp format. Cameras record wall-clock
// time without zone information; the pipeline treats it as UTC so the same
// file yields the same capture time on every host.
const exifTimeLayout = "2006:01:02 15:04:05"

// Metadata holds everything the metadata worker can decode from a file.
// Nil fields were absent or undecodable.
type Metadata struct {
	Width        *int
	Height       *int
	DateTaken    *time.Time
	CameraMake   *string
	CameraModel  *string
	GPSLatitude  *float64
	GPSLongitude *float64
	ISO          *int
	Aperture     *string
	ShutterSpeed *string
	Orientation  *int
}

// ExtractMetadata decodes the image header for dimensions and the EXIF
// block for the enrichment fields. A file with no EXIF data still yields
// its dimensions; only an undecodable header is an error.
func ExtractMetadata(r io.ReadSeeker) (*Metadata, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	meta := &Metadata{
		Width:  intPtr(cfg.Width),
		Height: intPtr(cfg.Height),
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind for exif decode: %w", err)
	}

	x, err := exif.Decode(r)
	if err != nil {
		// No EXIF block. Dimensions alone are a valid result.
		return meta, nil
	}

	if t, ok := captureTime(x); ok {
		meta.DateTaken = &t
	}
	if s, ok := tagString(x, exif.Make); ok {
		meta.CameraMake = &s
	}
	if s, ok := tagString(x, exif.Model); ok {
		meta.CameraModel = &s
	}
	if lat, long, err := x.LatLong(); err == nil {
		meta.GPSLatitude = &lat
		meta.GPSLongitude = &long
	}
	if n, ok := tagInt(x, exif.ISOSpeedRatings); ok {
		meta.ISO = &n
	}
	if num, den, ok := tagRat(x, exif.FNumber); ok {
		if s := FormatAperture(num, den); s != "" {
			meta.Aperture = &s
		}
	}
	if num, den, ok := tagRat(x, exif.ExposureTime); ok {
		if s := FormatShutterSpeed(num, den); s != "" {
			meta.ShutterSpeed = &s
		}
	}
	if n, ok := tagInt(x, exif.Orientation); ok {
		meta.Orientation = &n
	}

	return meta, nil
}

// captureTime prefers DateTimeOriginal over DateTime and rejects the
// zero-year placeholders some cameras write.
func captureTime(x *exif.Exif) (time.Time, bool) {
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		s, ok := tagString(x, field)
		if !ok {
			continue
		}
		t, err := ParseExifTime(s)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseExifTime parses an EXIF timestamp as UTC. Empty values and
// zero-year placeholders are rejected.
func ParseExifTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty exif timestamp")
	}
	t, err := time.ParseInLocation(exifTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse exif timestamp %q: %w", s, err)
	}
	if t.Year() <= 1 {
		return time.Time{}, fmt.Errorf("exif timestamp %q has no usable year", s)
	}
	return t, nil
}

// FormatAperture renders an FNumber rational as "f/2.8". Trailing zeros
// are dropped, so 8/1 renders as "f/8".
func FormatAperture(num, den int64) string {
	if num <= 0 || den <= 0 {
		return ""
	}
	v := float64(num) / float64(den)
	return "f/" + strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// FormatShutterSpeed renders an ExposureTime rational: "1/250" when the
// numerator is one, "2.5s" at one second or slower, and the nearest
// "1/<x>" fraction otherwise.
func FormatShutterSpeed(num, den int64) string {
	if num <= 0 || den <= 0 {
		return ""
	}
	if num == 1 {
		return fmt.Sprintf("1/%d", den)
	}
	seconds := float64(num) / float64(den)
	if seconds >= 1 {
		return strconv.FormatFloat(math.Round(seconds*10)/10, 'f', -1, 64) + "s"
	}
	return fmt.Sprintf("1/%d", int64(math.Round(1/seconds)))
}

func tagString(x *exif.Exif, field exif.FieldName) (string, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return "", false
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func tagInt(x *exif.Exif, field exif.FieldName) (int, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false
	}
	n, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return n, true
}

func tagRat(x *exif.Exif, field exif.FieldName) (num, den int64, ok bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, 0, false
	}
	num, den, err = tag.Rat2(0)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}

func intPtr(n int) *int {
	return &n
}
