package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"foxview/internal/imagesrc"
	"foxview/internal/library"
	"foxview/internal/view"
)

// loadedImage is a decoded source and the GPU textures of its frames. The
// textures are created on first draw.
type loadedImage struct {
	source *imagesrc.Source
	frames []*ebiten.Image
}

func newLoadedImage(src *imagesrc.Source) *loadedImage {
	return &loadedImage{source: src, frames: make([]*ebiten.Image, len(src.Frames))}
}

func (li *loadedImage) size() view.Size {
	return view.Size{W: float64(li.source.Width), H: float64(li.source.Height)}
}

// texture returns frame i, uploading it if needed. Out of range indexes use
// the last frame.
func (li *loadedImage) texture(i int) *ebiten.Image {
	if len(li.frames) == 0 {
		return nil
	}
	i = max(0, min(i, len(li.frames)-1))
	if li.frames[i] == nil {
		li.frames[i] = ebiten.NewImageFromImage(li.source.Frames[i].Image)
	}
	return li.frames[i]
}

func (li *loadedImage) deallocate() {
	for _, f := range li.frames {
		if f != nil {
			f.Deallocate()
		}
	}
	clear(li.frames)
}

// ImageManager decodes library entries and keeps recently shown images in an
// LRU cache. Decoding is synchronous; the event loop blocks while it runs.
type ImageManager struct {
	decoder imagesrc.Decoder
	cache   *imagesrc.Cache[*loadedImage]
}

// NewImageManager creates an ImageManager caching up to cacheSize images.
func NewImageManager(cacheSize int, decoder imagesrc.Decoder) *ImageManager {
	if decoder == nil {
		decoder = imagesrc.StdDecoder{}
	}
	return &ImageManager{
		decoder: decoder,
		cache: imagesrc.NewCache(cacheSize, func(key string, img *loadedImage) {
			debugLog("Cache EVICT: %s", key)
			img.deallocate()
		}),
	}
}

// Load returns the image for entry, decoding it on a cache miss. Entries are
// keyed by path and modification time so edited files are decoded again.
func (m *ImageManager) Load(entry library.Entry) (*loadedImage, error) {
	key := entry.Key()
	if img, ok := m.cache.Get(key); ok {
		debugLog("Cache HIT: %s (cache: %d items)", entry.Path, m.cache.Len())
		return img, nil
	}

	start := time.Now()
	src, err := m.decode(entry)
	if err != nil {
		return nil, err
	}

	img := newLoadedImage(src)
	m.cache.Add(key, img)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	debugLog("Cache MISS: %s, decoded %d frame(s) in %v (cache: %d items, memory: %dMB)",
		entry.Path, len(src.Frames), time.Since(start).Round(time.Millisecond), m.cache.Len(), mem.Alloc/1024/1024)

	return img, nil
}

func (m *ImageManager) decode(entry library.Entry) (*imagesrc.Source, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entry.Path, err)
	}
	defer rc.Close()

	src, err := m.decoder.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name, err)
	}
	return src, nil
}

// Cached reports whether entry can be shown without decoding.
func (m *ImageManager) Cached(entry library.Entry) bool {
	_, ok := m.cache.Get(entry.Key())
	return ok
}

// Forget drops the cached image for entry and frees its textures.
func (m *ImageManager) Forget(entry library.Entry) {
	m.cache.Remove(entry.Key())
}

// Len returns the number of cached images.
func (m *ImageManager) Len() int {
	return m.cache.Len()
}

// Purge evicts every cached image.
func (m *ImageManager) Purge() {
	m.cache.Purge()
}
