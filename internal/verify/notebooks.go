package verify

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const notebookExt = ".ipynb"

// skippedDirs never contain pipeline notebooks.
var skippedDirs = map[string]bool{
	".git":               true,
	".ipynb_checkpoints": true,
}

// FindNotebooks returns the sorted slash-separated paths of *.ipynb files
// under root. Paths ignored by .gitignore are skipped unless noGitignore.
func FindNotebooks(root string, noGitignore bool) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var found []string
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == absRoot {
			return nil
		}
		if d.IsDir() && skippedDirs[d.Name()] {
			return fs.SkipDir
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		if !noGitignore && matchIgnore(absRoot, rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), notebookExt) {
			return nil
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
