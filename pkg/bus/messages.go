package bus

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Wire shapes for the pipeline topics. Every record carries a correlation
// id, the target row id, and enough addressing (object key, hash) for
// consumers to reconcile without relying on message ordering. Field names
// follow the wire contract shared with the workers, hence camelCase.

// FileDiscovered is published once per new or hash-changed file and fanned
// out to both processing queues.
type FileDiscovered struct {
	CorrelationID   string `json:"correlationId"`
	IndexedFileID   string `json:"indexedFileId"`
	ObjectKey       string `json:"objectKey"`
	ScanDirectoryID string `json:"scanDirectoryId"`
	FilePath        string `json:"filePath"`
	FileHash        string `json:"fileHash"`
	FileSize        int64  `json:"fileSize"`
}

// MetadataExtracted reports the metadata worker's outcome for one file.
// On failure Success is false and ErrorMessage carries the decode error;
// the enrichment fields are left unset.
type MetadataExtracted struct {
	CorrelationID string `json:"correlationId"`
	IndexedFileID string `json:"indexedFileId"`
	ObjectKey     string `json:"objectKey"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"errorMessage,omitempty"`

	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
	DateTaken    *string  `json:"dateTaken,omitempty"` // RFC 3339, always UTC
	CameraMake   *string  `json:"cameraMake,omitempty"`
	CameraModel  *string  `json:"cameraModel,omitempty"`
	GPSLatitude  *float64 `json:"gpsLatitude,omitempty"`
	GPSLongitude *float64 `json:"gpsLongitude,omitempty"`
	ISO          *int     `json:"iso,omitempty"`
	Aperture     *string  `json:"aperture,omitempty"`
	ShutterSpeed *string  `json:"shutterSpeed,omitempty"`
	Orientation  *int     `json:"orientation,omitempty"`
}

// ThumbnailGenerated reports the thumbnail worker's outcome for one file.
type ThumbnailGenerated struct {
	CorrelationID      string `json:"correlationId"`
	IndexedFileID      string `json:"indexedFileId"`
	ObjectKey          string `json:"objectKey"`
	Success            bool   `json:"success"`
	ErrorMessage       string `json:"errorMessage,omitempty"`
	ThumbnailObjectKey string `json:"thumbnailObjectKey,omitempty"`
}

// NewCorrelationID returns a fresh 128-bit correlation id.
func NewCorrelationID() string {
	return uuid.New().String()
}

// Encode marshals a message body for publishing.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return body, nil
}

// Decode unmarshals a message body into the given shape.
func Decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
