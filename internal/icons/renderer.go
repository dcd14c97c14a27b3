// Package icons turns an (icon id, state, color) triple into a tray-ready
// bitmap: it resolves a file from the SVG bundle, repaints its fills,
// rasterizes it and memoizes the result.
package icons

import (
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tonhe/hometray/internal/metrics"
	"github.com/tonhe/hometray/internal/rgb"
	"golang.org/x/sync/singleflight"
)

// CacheKey identifies one rendered icon. Fields are compared exactly.
type CacheKey struct {
	IconID string
	State  string
	Color  rgb.Color
}

// String is unique per key: the free-text fields are quoted so a "|" inside
// one cannot shift the boundary between them.
func (k CacheKey) String() string {
	return fmt.Sprintf("%q|%q|%s", k.IconID, k.State, k.Color.String())
}

// Icon is a rendered, encoded tray icon. It is immutable once returned.
type Icon struct {
	Key    CacheKey
	Path   string // bundle file the icon was drawn from
	Size   int
	Image  image.Image
	Data   []byte
	Format Format
}

// Options configures a Renderer. Zero values pick the defaults.
type Options struct {
	// Size is the bitmap edge in pixels; 0 queries TrayIconSize on each miss.
	Size       int
	Format     Format
	Rasterizer Rasterizer
	Logger     zerolog.Logger
}

// Renderer resolves, recolors, rasterizes and caches icons from one bundle.
// Entries live for the life of the Renderer. It is safe for concurrent use.
type Renderer struct {
	fsys  fs.FS
	opts  Options
	log   zerolog.Logger
	group singleflight.Group
	mu    sync.RWMutex
	icons map[CacheKey]*Icon
}

// NewRenderer creates a Renderer over the bundle fsys.
func NewRenderer(fsys fs.FS, opts Options) *Renderer {
	if opts.Rasterizer == nil {
		opts.Rasterizer = OKSVG{}
	}
	return &Renderer{
		fsys:  fsys,
		opts:  opts,
		log:   opts.Logger,
		icons: make(map[CacheKey]*Icon),
	}
}

// Get returns the icon for the triple, rendering it on first use. Missing
// bundles and malformed markup are returned as errors and never cached.
func (r *Renderer) Get(iconID, state string, c rgb.Color) (*Icon, error) {
	key := CacheKey{IconID: iconID, State: state, Color: c}

	if icon := r.lookup(key); icon != nil {
		metrics.IconCacheOperations.WithLabelValues("hit").Inc()
		return icon, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		if icon := r.lookup(key); icon != nil {
			return icon, nil
		}
		icon, err := r.render(key)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.icons[key] = icon
		n := len(r.icons)
		r.mu.Unlock()
		metrics.IconCacheEntries.Set(float64(n))
		return icon, nil
	})
	if err != nil {
		metrics.IconCacheOperations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.IconCacheOperations.WithLabelValues("miss").Inc()
	return v.(*Icon), nil
}

// Len returns the number of cached icons.
func (r *Renderer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.icons)
}

func (r *Renderer) lookup(key CacheKey) *Icon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.icons[key]
}

func (r *Renderer) render(key CacheKey) (*Icon, error) {
	path, err := ResolvePath(r.fsys, key.IconID, key.State)
	if err != nil {
		return nil, err
	}
	markup, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	markup = Recolor(markup, key.Color)

	size := r.opts.Size
	if size <= 0 {
		size = TrayIconSize()
	}
	img, err := r.opts.Rasterizer.Rasterize(markup, size)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	data, err := Encode(img, r.opts.Format)
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("icon", key.IconID).
		Str("state", key.State).
		Str("color", key.Color.Hex()).
		Str("file", path).
		Int("size", size).
		Msg("icon rendered")

	return &Icon{
		Key:    key,
		Path:   path,
		Size:   size,
		Image:  img,
		Data:   data,
		Format: r.opts.Format,
	}, nil
}

// Bundle opens an icon directory. An empty dir means DefaultDir.
func Bundle(dir string) fs.FS {
	if dir == "" {
		dir = DefaultDir()
	}
	return os.DirFS(dir)
}

// DefaultDir is the icons directory next to the executable, or ./icons when
// that does not exist.
func DefaultDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "icons")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "icons"
}
