package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Walk lists the files under root in processing order: entries of each
// directory sorted by name, subdirectories expanded in place, depth first.
//
// include is a doublestar pattern matched against the slash-separated path
// relative to root; an empty pattern matches everything. Returned paths are
// joined with root.
func Walk(root, include string) ([]string, error) {
	rel, err := WalkFS(os.DirFS(root), include)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(rel))
	for i, p := range rel {
		paths[i] = filepath.Join(root, filepath.FromSlash(p))
	}
	return paths, nil
}

// WalkFS is Walk over an fs.FS, returning slash-separated paths relative to
// the FS root.
func WalkFS(fsys fs.FS, include string) ([]string, error) {
	if include != "" && !doublestar.ValidatePattern(include) {
		return nil, fmt.Errorf("invalid include pattern %q", include)
	}
	var files []string
	if err := walkDir(fsys, ".", include, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walkDir(fsys fs.FS, dir, include string, files *[]string) error {
	// fs.ReadDir returns entries sorted by filename.
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("cannot list %s: %w", dir, err)
	}

	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if isDirectory(fsys, p, e) {
			if err := walkDir(fsys, p, include, files); err != nil {
				return err
			}
			continue
		}
		if include != "" {
			// Pattern was validated up front.
			if ok, _ := doublestar.Match(include, p); !ok {
				continue
			}
		}
		*files = append(*files, p)
	}
	return nil
}

// isDirectory follows symlinks so linked folders are walked like real ones.
// A dangling link counts as a file; opening it fails later as a per-file error.
func isDirectory(fsys fs.FS, p string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := fs.Stat(fsys, p)
	return err == nil && info.IsDir()
}
