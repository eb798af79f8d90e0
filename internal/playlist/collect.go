package playlist

import (
	"os"
	"path/filepath"
	"sort"
)

// Expand turns command-line arguments into a play list.
//
// A directory contributes every regular file below it, sorted by path.
// Anything else is kept as given, so a missing or unreadable entry is reported
// when playback reaches it rather than up front.
func Expand(args []string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, collectDir(arg)...)
	}
	return paths
}

func collectDir(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip directories/files with errors, continue walking
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files
}
