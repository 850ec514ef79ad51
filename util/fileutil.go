package util

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// FileExists returns true if the file or directory at path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExpandTilde expands a leading ~ in filePath to the current user's
// home directory. Paths without a leading ~ are returned unchanged.
func ExpandTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, strings.TrimPrefix(filePath, "~")), nil
}

// LooksSafeToDelete returns true if filePath is at least minLength
// characters long and at least minSeparators directories deep. We
// don't remove files near the root of the file system.
func LooksSafeToDelete(filePath string, minLength, minSeparators int) bool {
	if filePath == "" {
		return false
	}
	separators := strings.Count(filePath, string(os.PathSeparator))
	return len(filePath) >= minLength && separators >= minSeparators
}
