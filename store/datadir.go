package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DataDir resolves the per-application data directory for app. It does
// not create it; Opener.Open does.
//
//	linux:   $XDG_DATA_HOME/<app> or ~/.local/share/<app>
//	darwin:  ~/Library/Application Support/<app>
//	windows: %AppData%\<app>
func DataDir(app string) (string, error) {
	app = strings.TrimSpace(app)
	if app == "" {
		return "", errors.New("empty application name")
	}

	var base string
	switch runtime.GOOS {
	case "darwin", "windows", "ios", "plan9":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
		base = dir
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(xdg) {
			base = xdg
			break
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, app), nil
}
