package imagesrc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"testing"
	"time"

	"github.com/xfmoulet/qoi"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, frames int, loopCount int, delay int) []byte {
	t.Helper()
	g := &gif.GIF{LoopCount: loopCount}
	for i := 0; i < frames; i++ {
		pm := image.NewPaletted(image.Rect(0, 0, 4, 3), palette.Plan9)
		pm.SetColorIndex(i%4, 0, uint8(i+1))
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll: %v", err)
	}
	return buf.Bytes()
}

func TestIsSupportedExt(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"PNG file", "test.png", true},
		{"JPG file", "test.jpg", true},
		{"JPEG file", "test.jpeg", true},
		{"WebP file", "test.webp", true},
		{"BMP file", "test.bmp", true},
		{"GIF file", "test.gif", true},
		{"TIFF file", "scan.tiff", true},
		{"APNG file", "anim.apng", true},
		{"ICO file", "favicon.ico", true},
		{"QOI file", "photo.qoi", true},
		{"PGM file", "scan.pgm", true},
		{"PNM file", "scan.pnm", true},
		{"PNG uppercase", "test.PNG", true},
		{"Text file", "test.txt", false},
		{"Archive", "book.zip", false},
		{"No extension", "test", false},
		{"Empty string", "", false},
		{"Multiple dots", "test.backup.jpg", true},
		{"Path with directory", "/path/to/test.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupportedExt(tt.path); got != tt.expected {
				t.Errorf("IsSupportedExt(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestStdDecoder_StaticImage(t *testing.T) {
	src, err := StdDecoder{}.Decode(bytes.NewReader(encodePNG(t, 7, 5)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if src.Format != "png" {
		t.Errorf("Format = %q, want %q", src.Format, "png")
	}
	if src.Width != 7 || src.Height != 5 {
		t.Errorf("size = %dx%d, want 7x5", src.Width, src.Height)
	}
	if len(src.Frames) != 1 || src.Animated() {
		t.Errorf("frames = %d, want a single static frame", len(src.Frames))
	}
}

func TestStdDecoder_AnimatedGIF(t *testing.T) {
	src, err := StdDecoder{}.Decode(bytes.NewReader(encodeGIF(t, 3, 0, 5)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !src.Animated() || len(src.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(src.Frames))
	}
	if src.Loops != 0 {
		t.Errorf("Loops = %d, want 0 (forever)", src.Loops)
	}
	for i, f := range src.Frames {
		if f.Delay != 50*time.Millisecond {
			t.Errorf("frame %d delay = %v, want 50ms", i, f.Delay)
		}
		if b := f.Image.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
			t.Errorf("frame %d bounds = %v, want full 4x3 canvas", i, b)
		}
	}
}

func TestStdDecoder_Errors(t *testing.T) {
	truncated := encodePNG(t, 16, 16)[:40]

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"Garbage", []byte("definitely not an image"), ErrUnsupported},
		{"Empty", nil, ErrUnsupported},
		{"Truncated PNG", truncated, ErrDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StdDecoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGifLoops(t *testing.T) {
	tests := []struct {
		loopCount int
		want      int
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{4, 5},
	}
	for _, tt := range tests {
		if got := gifLoops(tt.loopCount); got != tt.want {
			t.Errorf("gifLoops(%d) = %d, want %d", tt.loopCount, got, tt.want)
		}
	}
}

// encodeICO wraps a PNG in a single-entry icon directory.
func encodeICO(t *testing.T, w, h int) []byte {
	t.Helper()
	payload := encodePNG(t, w, h)
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 1, 0, 1, 0})
	entry := make([]byte, 16)
	entry[0], entry[1] = byte(w), byte(h)
	binary.LittleEndian.PutUint16(entry[4:], 1)
	binary.LittleEndian.PutUint16(entry[6:], 32)
	binary.LittleEndian.PutUint32(entry[8:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(entry[12:], 22)
	buf.Write(entry)
	buf.Write(payload)
	return buf.Bytes()
}

func TestStdDecoder_RegisteredFormats(t *testing.T) {
	var qoiBuf bytes.Buffer
	if err := qoi.Encode(&qoiBuf, image.NewRGBA(image.Rect(0, 0, 5, 4))); err != nil {
		t.Fatalf("qoi.Encode: %v", err)
	}

	tests := []struct {
		name          string
		data          []byte
		width, height int
	}{
		{"QOI", qoiBuf.Bytes(), 5, 4},
		{"Plain PGM", []byte("P2\n2 3\n255\n0 64\n128 255\n32 16\n"), 2, 3},
		{"ICO with PNG entry", encodeICO(t, 6, 6), 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := StdDecoder{}.Decode(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if src.Width != tt.width || src.Height != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", src.Width, src.Height, tt.width, tt.height)
			}
			if src.Animated() {
				t.Error("static image decoded as animated")
			}
		})
	}
}

func TestSupportedExts(t *testing.T) {
	exts := SupportedExts()
	if len(exts) != len(supportedExts) {
		t.Fatalf("SupportedExts() has %d entries, want %d", len(exts), len(supportedExts))
	}
	for i, ext := range exts {
		if !IsSupportedExt("x" + ext) {
			t.Errorf("%s listed but not supported", ext)
		}
		if i > 0 && exts[i-1] >= ext {
			t.Errorf("not sorted at %d: %v", i, exts)
		}
	}
}
