package listings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported reports whether path has an extension ReadFile understands
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ExpandPaths replaces every directory in paths with the supported files it
// contains, sorted by name. Subdirectories and Excel lock files (~$name.xlsx)
// are ignored. Plain file paths are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		var found []string
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, "~$") || !Supported(name) {
				continue
			}
			found = append(found, filepath.Join(p, name))
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
