package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/xfmoulet/qoi"

	"foxview/internal/imagesrc"
)

func testOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func writeGIF(t *testing.T, path string, frames, loopCount int) {
	t.Helper()
	g := &gif.GIF{LoopCount: loopCount}
	for i := 0; i < frames; i++ {
		pm := image.NewPaletted(image.Rect(0, 0, 6, 4), palette.Plan9)
		pm.SetColorIndex(i%6, 0, uint8(i+1))
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRead_PNG(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		img       image.Image
		wantColor string
	}{
		{"RGBA", image.NewNRGBA(image.Rect(0, 0, 7, 5)), "Rgba8"},
		{"Gray", image.NewGray(image.Rect(0, 0, 7, 5)), "L8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".png")
			writePNG(t, path, tt.img)

			info, err := Read(path, testOptions())
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if info.Filename != tt.name+".png" || info.Width != 7 || info.Height != 5 {
				t.Errorf("info = %+v", info)
			}
			if info.Mime != "image/png" || len(info.Extensions) != 1 || info.Extensions[0] != "png" {
				t.Errorf("Mime = %q Extensions = %v", info.Mime, info.Extensions)
			}
			if info.ColorType != tt.wantColor {
				t.Errorf("ColorType = %q, want %q", info.ColorType, tt.wantColor)
			}
			if info.Animated != nil || info.Exif != nil {
				t.Errorf("unexpected animation or EXIF: %+v %+v", info.Animated, info.Exif)
			}
		})
	}
}

func TestRead_GIF(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		frames    int
		loopCount int
		want      *Animation
	}{
		{"Static", 1, 0, nil},
		{"Infinite", 3, 0, &Animation{Frames: 3, Loops: "infinite"}},
		{"Repeats twice", 2, 1, &Animation{Frames: 2, Loops: "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".gif")
			writeGIF(t, path, tt.frames, tt.loopCount)

			info, err := Read(path, testOptions())
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if info.ColorType != "Indexed8" {
				t.Errorf("ColorType = %q, want Indexed8", info.ColorType)
			}
			switch {
			case tt.want == nil && info.Animated != nil:
				t.Errorf("Animated = %+v, want nil", info.Animated)
			case tt.want != nil && (info.Animated == nil || *info.Animated != *tt.want):
				t.Errorf("Animated = %+v, want %+v", info.Animated, tt.want)
			}
		})
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(garbage, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Read(garbage, testOptions()); !errors.Is(err, imagesrc.ErrUnsupported) {
		t.Errorf("Read(garbage) error = %v, want ErrUnsupported", err)
	}
	if _, err := Read(filepath.Join(dir, "missing.png"), testOptions()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read(missing) error = %v, want not exist", err)
	}
}

func TestEncode(t *testing.T) {
	info := &Info{
		Filename:   "fox.gif",
		Width:      6,
		Height:     4,
		Mime:       "image/gif",
		Extensions: []string{"gif"},
		ColorType:  "Indexed8",
		Animated:   &Animation{Frames: 3, Loops: "infinite"},
		Exif:       map[string]string{"Model": "Foxcam"},
	}

	t.Run("TOML", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, info, TOML); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		var got Info
		if err := toml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not TOML: %v\n%s", err, buf.String())
		}
		if got.Filename != "fox.gif" || got.Animated == nil || got.Animated.Frames != 3 || got.Exif["Model"] != "Foxcam" {
			t.Errorf("decoded %+v", got)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, info, JSON); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !strings.Contains(buf.String(), `"Filename": "fox.gif"`) {
			t.Errorf("output missing Filename:\n%s", buf.String())
		}
		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if err := Encode(io.Discard, info, Encoding("yaml")); err == nil {
			t.Error("Encode accepted an unknown encoding")
		}
	})
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"toml": TOML, "JSON": JSON, " json ": JSON} {
		got, err := ParseEncoding(in)
		if err != nil || got != want {
			t.Errorf("ParseEncoding(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEncoding("xml"); err == nil {
		t.Error("ParseEncoding accepted xml")
	}
}

func TestColorTypeName(t *testing.T) {
	if got := colorTypeName(color.Palette{color.Black}); got != "Indexed8" {
		t.Errorf("palette = %q", got)
	}
	if got := colorTypeName(color.CMYKModel); got != "Cmyk8" {
		t.Errorf("cmyk = %q", got)
	}
}

func TestRead_QOI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.qoi")
	var buf bytes.Buffer
	if err := qoi.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatalf("qoi.Encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := Read(path, testOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if info.Width != 3 || info.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", info.Width, info.Height)
	}
	if info.Mime != "image/qoi" || len(info.Extensions) != 1 || info.Extensions[0] != "qoi" {
		t.Errorf("Mime = %q Extensions = %v", info.Mime, info.Extensions)
	}
}
