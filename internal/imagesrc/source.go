// Package imagesrc wraps decoded images behind a small capability interface.
// A Source holds every frame of an image together with its display delay, so
// static and animated formats are handled the same way by the viewer.
package imagesrc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "github.com/sergeymakinen/go-ico"
	_ "github.com/spakin/netpbm"
	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupported is returned when no registered codec recognizes the data.
	ErrUnsupported = errors.New("unsupported image format")
	// ErrDecodeFailed is returned when a codec accepted the data but could not decode it.
	ErrDecodeFailed = errors.New("decode failed")
)

// defaultFrameDelay replaces zero GIF delays, which most viewers treat as 100ms.
const defaultFrameDelay = 100 * time.Millisecond

var supportedExts = map[string]bool{
	".png": true, ".apng": true, ".gif": true, ".bmp": true, ".webp": true,
	".jpg": true, ".jpeg": true, ".jpe": true, ".jif": true, ".jfif": true, ".jfi": true,
	".tif": true, ".tiff": true, ".ico": true, ".qoi": true,
	".pbm": true, ".pgm": true, ".ppm": true, ".pnm": true, ".pam": true,
}

// IsSupportedExt reports whether the file extension of path is decodable.
func IsSupportedExt(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// SupportedExts returns the decodable extensions, with dots, sorted.
func SupportedExts() []string {
	exts := make([]string, 0, len(supportedExts))
	for ext := range supportedExts {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Frame is a single fully composed picture of a Source.
type Frame struct {
	Image image.Image
	Delay time.Duration
}

// Source is a decoded image. Static images have exactly one frame.
type Source struct {
	Format string
	Width  int
	Height int
	Frames []Frame
	// Loops is the number of times an animation plays; 0 means forever.
	Loops int
}

// Animated reports whether the source has more than one frame.
func (s *Source) Animated() bool {
	return len(s.Frames) > 1
}

// Decoder turns encoded bytes into a Source.
type Decoder interface {
	Decode(r io.Reader) (*Source, error)
}

// StdDecoder decodes every format registered with the image package.
type StdDecoder struct{}

func (StdDecoder) Decode(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	switch {
	case format == "gif":
		return decodeGIF(data)
	case format == "png" && isAPNG(data):
		return decodeAPNG(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, format, err)
	}
	b := img.Bounds()
	return &Source{
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		Frames: []Frame{{Image: img}},
		Loops:  1,
	}, nil
}

func decodeGIF(data []byte) (*Source, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gif: %v", ErrDecodeFailed, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: gif has no frames", ErrDecodeFailed)
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	src := &Source{
		Format: "gif",
		Width:  w,
		Height: h,
		Frames: composeGIF(g, w, h),
		Loops:  gifLoops(g.LoopCount),
	}
	return src, nil
}

// composeGIF flattens partial GIF frames onto a full canvas honoring disposal.
func composeGIF(g *gif.GIF, w, h int) []Frame {
	bounds := image.Rect(0, 0, w, h)
	canvas := image.NewRGBA(bounds)
	frames := make([]Frame, 0, len(g.Image))

	for i, pm := range g.Image {
		var previous *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = image.NewRGBA(bounds)
			draw.Draw(previous, bounds, canvas, image.Point{}, draw.Src)
		}

		draw.Draw(canvas, pm.Bounds(), pm, pm.Bounds().Min, draw.Over)

		snapshot := image.NewRGBA(bounds)
		draw.Draw(snapshot, bounds, canvas, image.Point{}, draw.Src)

		delay := defaultFrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, Frame{Image: snapshot, Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, pm.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return frames
}

// gifLoops converts the GIF loop count (0 forever, -1 once, n repeats) to plays.
func gifLoops(loopCount int) int {
	switch {
	case loopCount == 0:
		return 0
	case loopCount < 0:
		return 1
	default:
		return loopCount + 1
	}
}
