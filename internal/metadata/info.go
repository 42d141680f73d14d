// Package metadata describes an image file without opening a window: its
// format, dimensions, colour type, animation and EXIF tags.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"foxview/internal/imagesrc"
)

// Animation describes the frames of an animated image.
type Animation struct {
	Frames int    `toml:"Frames" json:"Frames"`
	Loops  string `toml:"Loops" json:"Loops"` // "infinite" or a play count
}

// Info is the printed description of one image.
type Info struct {
	Filename   string            `toml:"Filename" json:"Filename"`
	Width      int               `toml:"Width" json:"Width"`
	Height     int               `toml:"Height" json:"Height"`
	Mime       string            `toml:"Mime" json:"Mime"`
	Extensions []string          `toml:"Extensions" json:"Extensions"`
	ColorType  string            `toml:"ColorType" json:"ColorType"`
	Animated   *Animation        `toml:"Animated,omitempty" json:"Animated,omitempty"`
	Exif       map[string]string `toml:"Exif,omitempty" json:"Exif,omitempty"`
}

// Options control Read.
type Options struct {
	NoExif bool
	Logger *slog.Logger
}

type formatInfo struct {
	mime       string
	extensions []string
}

var formats = map[string]formatInfo{
	"png":  {"image/png", []string{"png"}},
	"apng": {"image/apng", []string{"apng", "png"}},
	"jpeg": {"image/jpeg", []string{"jpg", "jpeg", "jpe", "jif", "jfif", "jfi"}},
	"gif":  {"image/gif", []string{"gif"}},
	"bmp":  {"image/bmp", []string{"bmp"}},
	"webp": {"image/webp", []string{"webp"}},
	"tiff": {"image/tiff", []string{"tiff", "tif"}},
	"ico":  {"image/x-icon", []string{"ico"}},
	"qoi":  {"image/qoi", []string{"qoi"}},
	"pbm":  {"image/x-portable-bitmap", []string{"pbm", "pnm"}},
	"pgm":  {"image/x-portable-graymap", []string{"pgm", "pnm"}},
	"ppm":  {"image/x-portable-pixmap", []string{"ppm", "pnm"}},
	"pam":  {"image/x-portable-arbitrarymap", []string{"pam"}},
}

// Read decodes enough of the file at path to describe it.
func Read(path string, opts Options) (*Info, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", path, imagesrc.ErrUnsupported)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, imagesrc.ErrDecodeFailed, err)
	}
	log.Debug("decoding image", "path", path, "format", format)

	info := &Info{
		Filename:  filepath.Base(path),
		Width:     cfg.Width,
		Height:    cfg.Height,
		ColorType: colorTypeName(cfg.ColorModel),
	}

	// Only GIF and PNG can hold animations; PNG may turn out to be APNG.
	if format == "gif" || format == "png" {
		src, err := imagesrc.StdDecoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		format = src.Format
		if src.Animated() {
			info.Animated = &Animation{Frames: len(src.Frames), Loops: loopsString(src.Loops)}
		}
	}
	fi := formats[format]
	info.Mime, info.Extensions = fi.mime, fi.extensions

	if !opts.NoExif {
		tags, err := readExif(data)
		if err != nil {
			log.Debug("no EXIF metadata", "path", path, "err", err)
		} else if len(tags) > 0 {
			info.Exif = tags
			log.Debug("read EXIF metadata", "path", path, "fields", len(tags))
		}
	}

	return info, nil
}

func loopsString(loops int) string {
	if loops == 0 {
		return "infinite"
	}
	return strconv.Itoa(loops)
}

func colorTypeName(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "Indexed8"
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel:
		return "Rgba8"
	case color.RGBA64Model, color.NRGBA64Model:
		return "Rgba16"
	case color.GrayModel:
		return "L8"
	case color.Gray16Model:
		return "L16"
	case color.YCbCrModel:
		return "YCbCr8"
	case color.NYCbCrAModel:
		return "YCbCrA8"
	case color.CMYKModel:
		return "Cmyk8"
	case color.AlphaModel:
		return "A8"
	case color.Alpha16Model:
		return "A16"
	default:
		return "Unknown"
	}
}

// exifCollector gathers printable EXIF fields, skipping opaque binary ones.
type exifCollector map[string]string

func (c exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	switch tag.Format() {
	case tiff.UndefVal, tiff.OtherVal:
		return nil
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return nil
		}
		c[string(name)] = strings.TrimSpace(s)
	default:
		c[string(name)] = tag.String()
	}
	return nil
}

func readExif(data []byte) (map[string]string, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && x == nil {
		return nil, err
	}
	tags := exifCollector{}
	if err := x.Walk(tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Encoding is an output language for Encode.
type Encoding string

const (
	TOML Encoding = "toml"
	JSON Encoding = "json"
)

// ParseEncoding accepts "toml" or "json" in any case.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case TOML, JSON:
		return e, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want toml or json)", s)
	}
}

// Encode writes info to w in the given encoding.
func Encode(w io.Writer, info *Info, enc Encoding) error {
	switch enc {
	case TOML:
		return toml.NewEncoder(w).Encode(info)
	case JSON:
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal info: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", enc)
	}
}

