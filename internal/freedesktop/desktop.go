// Package freedesktop implements the pure lookups the protocol boundary
// needs: application names from desktop entries, icon paths from icon themes,
// and temp-file materialization of raw pixel buffers.
//
// Every lookup reports absence with a false second return; the caller falls
// through to its next candidate, absence is never an error.
package freedesktop

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName resolves a desktop-entry id (the "desktop-entry" hint) to the
// application's display name by scanning the XDG application directories for
// a matching .desktop file. The match is case-insensitive.
func AppName(desktopEntryID string) (string, bool) {
	if desktopEntryID == "" {
		return "", false
	}
	for _, dir := range applicationDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			base := e.Name()
			if !strings.HasSuffix(base, ".desktop") {
				continue
			}
			appID := strings.TrimSuffix(base, ".desktop")
			if !strings.EqualFold(appID, desktopEntryID) {
				continue
			}
			if name, ok := desktopEntryName(filepath.Join(dir, base)); ok {
				return name, true
			}
		}
	}
	return "", false
}

func applicationDirs() []string {
	dirs := []string{filepath.Join(xdg.DataHome, "applications")}
	for _, d := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(d, "applications"))
	}
	return dirs
}

// desktopEntryName extracts the unlocalized Name key from the [Desktop Entry]
// group of a desktop file.
func desktopEntryName(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	inEntry := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "["):
			inEntry = line == "[Desktop Entry]"
		case inEntry:
			if v, ok := strings.CutPrefix(line, "Name="); ok {
				return v, v != ""
			}
		}
	}
	return "", false
}
