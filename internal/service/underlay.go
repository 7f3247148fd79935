package service

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoImage is returned when a floor plan has no usable image file
var ErrNoImage = errors.New("floor plan image not found")

// UnderlayLoader reads floor-plan images from a directory and keeps the
// decoded images in memory
type UnderlayLoader struct {
	dir string

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewUnderlayLoader creates a loader rooted at dir
func NewUnderlayLoader(dir string) *UnderlayLoader {
	return &UnderlayLoader{dir: dir, cache: make(map[string]image.Image)}
}

// Load decodes the named image. Names must stay inside the loader directory.
func (l *UnderlayLoader) Load(name string) (image.Image, error) {
	if name == "" || l.dir == "" {
		return nil, ErrNoImage
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("invalid floor plan filename %q", name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.cache[clean]; ok {
		return img, nil
	}

	f, err := os.Open(filepath.Join(l.dir, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoImage
		}
		return nil, fmt.Errorf("failed to open floor plan image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode floor plan image %s: %w", clean, err)
	}
	l.cache[clean] = img
	return img, nil
}
