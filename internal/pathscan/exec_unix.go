//go:build !windows

package pathscan

import "io/fs"

func isExecutable(info fs.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// toolName maps a directory entry to the command name it is invoked by.
func toolName(file string) (string, bool) {
	return file, true
}
