package sandbox

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandShortcut maps the DESKTOP, DOCUMENTS and DOWNLOADS tokens and a
// leading ~ to paths below the home directory. Other input is returned
// unchanged.
func ExpandShortcut(dir string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}

	switch strings.TrimSpace(dir) {
	case "DESKTOP":
		return filepath.Join(home, "Desktop")
	case "DOCUMENTS":
		return filepath.Join(home, "Documents")
	case "DOWNLOADS":
		return filepath.Join(home, "Downloads")
	case "~":
		return home
	}

	if strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, "~"+string(filepath.Separator)) {
		return filepath.Join(home, dir[2:])
	}
	return dir
}
