package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one supported file the walk yielded.
type Entry struct {
	Path    string
	Name    string
	Ext     string
	Size    int64
	ModTime time.Time
}

// Visitor receives walk events. Nil fields are skipped.
type Visitor struct {
	// File is called for every supported file. A non-nil error aborts
	// the walk.
	File func(Entry) error

	// Dir is called before a directory's entries are read.
	Dir func(path string)

	// Error is called for per-entry failures; the walk continues.
	Error func(path string, err error)
}

// Walker enumerates supported files under a scan root, depth first, with
// directory entries visited in name order so two walks of the same snapshot
// yield the same sequence.
type Walker struct {
	opts     Options
	excluded map[string]struct{}
	exts     map[string]struct{}
}

// NewWalker builds a walker. Empty option slices fall back to the package
// defaults.
func NewWalker(opts Options) *Walker {
	if len(opts.SupportedExtensions) == 0 {
		opts.SupportedExtensions = DefaultExtensions
	}
	if len(opts.ExcludedDirs) == 0 {
		opts.ExcludedDirs = DefaultExcludedDirs
	}

	w := &Walker{
		opts:     opts,
		excluded: make(map[string]struct{}, len(opts.ExcludedDirs)),
		exts:     make(map[string]struct{}, len(opts.SupportedExtensions)),
	}
	for _, dir := range opts.ExcludedDirs {
		w.excluded[dir] = struct{}{}
	}
	for _, ext := range opts.SupportedExtensions {
		w.exts[strings.ToLower(ext)] = struct{}{}
	}
	return w
}

// Walk traverses root and reports every supported file to v. The root must
// be an existing directory; per-entry failures below it are reported via
// v.Error and do not abort the walk.
func (w *Walker) Walk(ctx context.Context, root string, v Visitor) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat scan root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan root %q is not a directory", root)
	}
	return w.walkDir(ctx, root, 0, v)
}

func (w *Walker) walkDir(ctx context.Context, dir string, depth int, v Visitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.Dir != nil {
		v.Dir(dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if v.Error != nil {
			v.Error(dir, err)
		}
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		if w.opts.SkipHidden && strings.HasPrefix(name, ".") {
			continue
		}

		isSymlink := entry.Type()&os.ModeSymlink != 0
		if isSymlink && !w.opts.FollowSymlinks {
			continue
		}

		isDir := entry.IsDir()
		if isSymlink {
			// A followed symlink's kind comes from its target.
			target, err := os.Stat(path)
			if err != nil {
				if v.Error != nil {
					v.Error(path, err)
				}
				continue
			}
			isDir = target.IsDir()
		}

		if isDir {
			if _, skip := w.excluded[name]; skip {
				continue
			}
			if w.opts.MaxDepth > 0 && depth+1 > w.opts.MaxDepth {
				continue
			}
			if err := w.walkDir(ctx, path, depth+1, v); err != nil {
				return err
			}
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := w.exts[ext]; !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if v.Error != nil {
				v.Error(path, err)
			}
			continue
		}
		if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
			continue
		}

		if v.File != nil {
			if err := v.File(Entry{
				Path:    path,
				Name:    name,
				Ext:     ext,
				Size:    info.Size(),
				ModTime: info.ModTime().UTC(),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
