package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher chunk bounds. Reads outside this range either thrash syscalls or
// hold the buffer too long between cancellation checks.
const (
	minChunkSize = 64 * 1024
	maxChunkSize = 1024 * 1024
)

// Hasher computes content hashes by streaming files in fixed-size chunks,
// checking for cancellation between chunks.
type Hasher struct {
	chunkSize int
}

// NewHasher builds a hasher, clamping chunkSize to 64KiB..1MiB.
func NewHasher(chunkSize int) *Hasher {
	if chunkSize < minChunkSize {
		chunkSize = minChunkSize
	}
	if chunkSize > maxChunkSize {
		chunkSize = maxChunkSize
	}
	return &Hasher{chunkSize: chunkSize}
}

// HashFile returns the lowercase hex SHA-256 of the file's content. The
// progress callback, when non-nil, receives the byte count of each chunk
// read.
func (h *Hasher) HashFile(ctx context.Context, path string, progress func(read int64)) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	sum := sha256.New()
	buf := make([]byte, h.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := f.Read(buf)
		if n > 0 {
			sum.Write(buf[:n])
			if progress != nil {
				progress(int64(n))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}
