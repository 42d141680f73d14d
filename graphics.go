package main

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Global font source shared by every text face
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// newFace returns a face of the UI font at size pixels.
func newFace(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: globalFontSource, Size: size}
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawBorder outlines a rectangle with lines of the given width
func DrawBorder(screen *ebiten.Image, x, y, w, h, width float64, c color.RGBA) {
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), float32(width), c, false)
}

// truncateText shortens s with an ellipsis until it fits in maxWidth.
func truncateText(s string, font *text.GoTextFace, maxWidth float64) string {
	if w, _ := text.Measure(s, font, 0); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, _ := text.Measure(candidate, font, 0); w <= maxWidth {
			return candidate
		}
	}
	return ""
}

// DrawErrorPanel draws a bordered panel centred on screen with a title, the
// file that failed and the reason.
func DrawErrorPanel(screen *ebiten.Image, title, filename, reason, hint string, fontSize float64, panel, accent color.RGBA) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	w := min(sw-40, 640)
	h := fontSize*7 + 20
	if w <= 0 || h > sh {
		return
	}
	x, y := (sw-w)/2, (sh-h)/2

	DrawFilledRect(screen, x, y, w, h, panel)
	DrawBorder(screen, x, y, w, h, 3, accent)

	font := newFace(fontSize)
	textW := w - 20
	lineHeight := fontSize * 1.5
	ty := y + 10
	DrawText(screen, title, font, x+10, ty, colorWhite)
	ty += lineHeight * 1.3
	if filename != "" {
		DrawText(screen, truncateText("File: "+filename, font, textW), font, x+10, ty, colorWhite)
		ty += lineHeight
	}
	DrawText(screen, truncateText("Reason: "+reason, font, textW), font, x+10, ty, colorLightRed)
	ty += lineHeight * 1.3
	DrawText(screen, truncateText(hint, font, textW), font, x+10, ty, colorGray)
}
