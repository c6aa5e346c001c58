// Package finder discovers corpus files for batch processing. Results are
// deterministic so that cluster array tasks agree on file order.
package finder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Criteria narrows the files returned by Find. Zero values match everything.
type Criteria struct {
	Extension string // file extension, with or without the leading dot
	Prefix    string // prefix of the base name
	Suffix    string // suffix of the base name, before the extension
	Recursive bool   // descend into subdirectories
}

// Find returns the files under root matching the criteria, sorted
// lexicographically by path. A root with no matches yields an empty result;
// a missing or non-directory root is an error. Find never modifies the tree.
func Find(root string, c Criteria) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	ext := normalizeExt(c.Extension)

	var matches []string
	if c.Recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if matchName(d.Name(), ext, c) {
				matches = append(matches, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if matchName(entry.Name(), ext, c) {
				matches = append(matches, filepath.Join(root, entry.Name()))
			}
		}
	}

	sort.Strings(matches)
	return matches, nil
}

func matchName(name, ext string, c Criteria) bool {
	fileExt := filepath.Ext(name)
	if ext != "" && fileExt != ext {
		return false
	}
	stem := strings.TrimSuffix(name, fileExt)
	if c.Prefix != "" && !strings.HasPrefix(stem, c.Prefix) {
		return false
	}
	if c.Suffix != "" && !strings.HasSuffix(stem, c.Suffix) {
		return false
	}
	return true
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
