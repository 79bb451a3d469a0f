package freedesktop

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// IconResolver finds icon paths for icon names, preferring the configured
// theme and falling back to hicolor. Results are cached; the cache is flushed
// when the theme changes.
type IconResolver struct {
	mu    sync.Mutex
	theme string
	cache map[string]string
}

func NewIconResolver(theme string) *IconResolver {
	return &IconResolver{theme: theme, cache: map[string]string{}}
}

// SetTheme swaps the preferred theme, e.g. after a config reload.
func (r *IconResolver) SetTheme(theme string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if theme == r.theme {
		return
	}
	r.theme = theme
	r.cache = map[string]string{}
}

// Resolve returns a usable icon path for a name or path.
//
// Paths are supposed to be prefixed with "file://" but in practice many are
// not, so the prefix is stripped and any existing path is accepted as-is.
// Otherwise the name is looked up in the preferred theme, then hicolor,
// preferring SVG over the largest raster match, then in the pixmap dirs.
func (r *IconResolver) Resolve(nameOrPath string) (string, bool) {
	if nameOrPath == "" {
		return "", false
	}
	path := strings.TrimPrefix(nameOrPath, "file://")
	if _, err := os.Stat(path); err == nil {
		return path, true
	}

	r.mu.Lock()
	theme := r.theme
	if hit, ok := r.cache[path]; ok {
		r.mu.Unlock()
		return hit, hit != ""
	}
	r.mu.Unlock()

	found := lookupIcon(path, theme)

	r.mu.Lock()
	r.cache[path] = found
	r.mu.Unlock()
	return found, found != ""
}

func lookupIcon(name, theme string) string {
	themes := []string{theme, "hicolor"}
	if theme == "" || theme == "hicolor" {
		themes = []string{"hicolor"}
	}
	for _, th := range themes {
		for _, dir := range iconDirs() {
			if p := lookupInTheme(filepath.Join(dir, th), name); p != "" {
				return p
			}
		}
	}
	for _, dir := range pixmapDirs() {
		for _, ext := range []string{".svg", ".png", ".xpm"} {
			p := filepath.Join(dir, name+ext)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// lookupInTheme walks one theme directory and returns the best match for
// name: SVG wins outright, raster candidates are ranked by the pixel size of
// the directory they sit in.
func lookupInTheme(themeDir, name string) string {
	var best string
	bestScore := 0

	_ = filepath.WalkDir(themeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := d.Name()
		ext := filepath.Ext(base)
		if strings.TrimSuffix(base, ext) != name {
			return nil
		}
		score := 0
		switch ext {
		case ".svg":
			// Scalable always beats rasters.
			score = 1 << 20
		case ".png", ".xpm":
			rel, err := filepath.Rel(themeDir, path)
			if err != nil {
				return nil
			}
			score = sizeScore(rel)
		default:
			return nil
		}
		if score > bestScore {
			best, bestScore = path, score
		}
		return nil
	})
	return best
}

// sizeScore parses the leading size directory of a path like
// "48x48/apps/foo.png".
func sizeScore(rel string) int {
	first := rel
	if i := strings.IndexByte(rel, filepath.Separator); i >= 0 {
		first = rel[:i]
	}
	sz := first
	if i := strings.IndexByte(first, 'x'); i >= 0 {
		sz = first[:i]
	}
	n, err := strconv.Atoi(sz)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func iconDirs() []string {
	dirs := []string{filepath.Join(xdg.DataHome, "icons")}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".icons"))
	}
	for _, d := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(d, "icons"))
	}
	return dirs
}

func pixmapDirs() []string {
	dirs := make([]string, 0, len(xdg.DataDirs))
	for _, d := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(d, "pixmaps"))
	}
	return dirs
}
