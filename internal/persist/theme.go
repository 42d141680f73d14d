package persist

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultThemeName is the palette used when none is configured.
const DefaultThemeName = "fox"

// Palette is the set of colours the renderer draws with. Colours are
// straight (non-premultiplied) RGBA, as written in the state file.
type Palette struct {
	Background color.RGBA
	Accent     color.RGBA // indicators, highlights and panel borders
	Text       color.RGBA
	Panel      color.RGBA // translucent backdrop behind overlays
}

var themes = map[string]Palette{
	"fox": {
		Background: color.RGBA{34, 12, 35, 255},
		Accent:     color.RGBA{245, 213, 246, 255},
		Text:       color.RGBA{255, 255, 255, 255},
		Panel:      color.RGBA{0, 0, 0, 160},
	},
	"dark": {
		Background: color.RGBA{24, 24, 24, 255},
		Accent:     color.RGBA{100, 255, 255, 255},
		Text:       color.RGBA{255, 255, 255, 255},
		Panel:      color.RGBA{0, 0, 0, 160},
	},
	"light": {
		Background: color.RGBA{236, 236, 236, 255},
		Accent:     color.RGBA{60, 60, 160, 255},
		Text:       color.RGBA{20, 20, 20, 255},
		Panel:      color.RGBA{255, 255, 255, 200},
	},
}

// ThemeNames lists the built-in palettes in cycling order.
func ThemeNames() []string {
	return []string{"fox", "dark", "light"}
}

// NextTheme returns the built-in theme after name.
func NextTheme(name string) string {
	names := ThemeNames()
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Palette resolves the theme name and applies its colour overrides.
func (t Theme) Palette() Palette {
	p, ok := themes[t.Name]
	if !ok {
		p = themes[DefaultThemeName]
	}
	if c, err := ParseHexColor(t.Background); err == nil {
		p.Background = c
	}
	if c, err := ParseHexColor(t.Accent); err == nil {
		p.Accent = c
	}
	return p
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
