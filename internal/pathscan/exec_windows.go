//go:build windows

package pathscan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func pathExts() []string {
	raw := os.Getenv("PATHEXT")
	if raw == "" {
		raw = ".COM;.EXE;.BAT;.CMD"
	}
	var exts []string
	for _, e := range filepath.SplitList(raw) {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

func isExecutable(info fs.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	_, ok := toolName(info.Name())
	return ok
}

// toolName strips an executable extension; files without one are not commands.
func toolName(file string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range pathExts() {
		if ext == e {
			return strings.TrimSuffix(file, filepath.Ext(file)), true
		}
	}
	return "", false
}
