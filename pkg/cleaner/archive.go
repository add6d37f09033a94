package cleaner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TrashPath maps a file to its archive location: the path relative to its
// scan root, re-rooted under trashBase. A file outside any known root
// falls back to its absolute path minus the leading separator, so nothing
// ever escapes the trash directory.
func TrashPath(trashBase, root, path string) string {
	var rel string
	switch {
	case root != "" && strings.HasPrefix(path, root+string(filepath.Separator)):
		rel = strings.TrimPrefix(path, root+string(filepath.Separator))
	default:
		rel = strings.TrimPrefix(path, string(filepath.Separator))
	}
	return filepath.Join(trashBase, rel)
}

// moveFile renames src to dst, falling back to copy+delete when the
// rename fails, typically because trash lives on another device. The
// destination directory must already exist.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create archive copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy to archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to flush archive copy: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}
