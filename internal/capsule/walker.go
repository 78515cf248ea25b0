package capsule

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// isHidden reports whether name (a single path element) begins with a
// dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// walkSource walks root, invoking visit with each regular file's path
// (root joined with the entry, so absolute only when root is) and its
// path relative to root. Hidden entries, anything
// under .helix, and a co-located helix.exe are excluded; excluded
// directories are pruned entirely rather than merely skipped.
func walkSource(root string, visit func(absPath, relPath string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if isHidden(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if name == selfExeName {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return visit(path, rel)
	})
}
