package imagesrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/kettek/apng"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// isAPNG reports whether data is a PNG with an animation control chunk. The
// chunk must come before the first IDAT.
func isAPNG(data []byte) bool {
	if !bytes.HasPrefix(data, pngSignature) {
		return false
	}
	rest := data[len(pngSignature):]
	for len(rest) >= 8 {
		n := int(binary.BigEndian.Uint32(rest))
		switch string(rest[4:8]) {
		case "acTL":
			return true
		case "IDAT":
			return false
		}
		if n < 0 || len(rest) < 12+n {
			return false
		}
		rest = rest[12+n:]
	}
	return false
}

func decodeAPNG(data []byte) (*Source, error) {
	a, err := apng.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: apng: %v", ErrDecodeFailed, err)
	}

	// The default image is not part of the animation unless it carries a
	// frame control chunk.
	frames := make([]apng.Frame, 0, len(a.Frames))
	for _, f := range a.Frames {
		if !f.IsDefault {
			frames = append(frames, f)
		}
	}
	if len(frames) == 0 {
		frames = a.Frames
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: apng has no frames", ErrDecodeFailed)
	}

	cfg, err := apngCanvas(data, frames)
	if err != nil {
		return nil, err
	}

	return &Source{
		Format: "apng",
		Width:  cfg.Dx(),
		Height: cfg.Dy(),
		Frames: composeAPNG(frames, cfg),
		Loops:  int(a.LoopCount),
	}, nil
}

// apngCanvas takes the canvas size from the IHDR of data.
func apngCanvas(data []byte, frames []apng.Frame) (image.Rectangle, error) {
	if len(data) >= len(pngSignature)+16 {
		ihdr := data[len(pngSignature)+8:]
		w := int(binary.BigEndian.Uint32(ihdr))
		h := int(binary.BigEndian.Uint32(ihdr[4:]))
		if w > 0 && h > 0 {
			return image.Rect(0, 0, w, h), nil
		}
	}
	if frames[0].Image == nil {
		return image.Rectangle{}, fmt.Errorf("%w: apng has no canvas size", ErrDecodeFailed)
	}
	b := frames[0].Image.Bounds()
	return image.Rect(0, 0, b.Dx(), b.Dy()), nil
}

// composeAPNG renders every frame onto the full canvas following its blend
// and dispose operations.
func composeAPNG(frames []apng.Frame, bounds image.Rectangle) []Frame {
	canvas := image.NewRGBA(bounds)
	out := make([]Frame, 0, len(frames))

	for _, f := range frames {
		if f.Image == nil {
			continue
		}
		fb := f.Image.Bounds()
		region := image.Rect(f.XOffset, f.YOffset, f.XOffset+fb.Dx(), f.YOffset+fb.Dy()).Intersect(bounds)

		var previous *image.RGBA
		if f.DisposeOp == apng.DISPOSE_OP_PREVIOUS {
			previous = image.NewRGBA(bounds)
			draw.Draw(previous, bounds, canvas, image.Point{}, draw.Src)
		}

		op := draw.Over
		if f.BlendOp == apng.BLEND_OP_SOURCE {
			op = draw.Src
		}
		draw.Draw(canvas, region, f.Image, fb.Min, op)

		snapshot := image.NewRGBA(bounds)
		draw.Draw(snapshot, bounds, canvas, image.Point{}, draw.Src)
		out = append(out, Frame{Image: snapshot, Delay: apngDelay(f.DelayNumerator, f.DelayDenominator)})

		switch f.DisposeOp {
		case apng.DISPOSE_OP_BACKGROUND:
			draw.Draw(canvas, region, image.Transparent, image.Point{}, draw.Src)
		case apng.DISPOSE_OP_PREVIOUS:
			canvas = previous
		}
	}
	return out
}

// apngDelay converts a frame delay fraction in seconds. A zero denominator
// means hundredths; a zero delay plays at the default rate.
func apngDelay(num, den uint16) time.Duration {
	if num == 0 {
		return defaultFrameDelay
	}
	if den == 0 {
		den = 100
	}
	return time.Duration(num) * time.Second / time.Duration(den)
}
