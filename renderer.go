package main

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"foxview/internal/library"
	"foxview/internal/shell"
	"foxview/internal/view"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128} // Light semi-transparent
	bgColorMedium = color.RGBA{0, 0, 0, 160} // Medium semi-transparent
	bgColorDark   = color.RGBA{0, 0, 0, 200} // Dark semi-transparent
)

const (
	helpPadding     = 40.0
	minHelpFontSize = 12.0
	maxHelpWarnings = 2
)

// premultiply converts a straight-alpha palette colour for drawing.
func premultiply(c color.RGBA) color.RGBA {
	return color.RGBAModel.Convert(color.NRGBA(c)).(color.RGBA)
}

// Renderer handles all drawing operations
type Renderer struct {
	renderState RenderState
}

// NewRenderer creates a new Renderer. InitGraphics must have been called.
func NewRenderer(renderState RenderState) *Renderer {
	return &Renderer{renderState: renderState}
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	palette := r.renderState.GetPalette()
	screen.Fill(premultiply(palette.Background))

	img := r.renderState.GetCurrentImage()
	if img != nil {
		r.drawImage(screen, img)
		r.drawIndicators(screen)
		if r.renderState.IsShowingInfo() {
			r.drawInfoDisplay(screen)
		}
	}

	switch r.renderState.ShellState() {
	case shell.Idle:
		if img == nil {
			r.drawWelcome(screen)
		}
	case shell.Loading:
		r.drawLoadingNotice(screen)
	case shell.Error:
		r.drawErrorPanel(screen)
	}

	// Draw help overlay if enabled
	if r.renderState.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}

	// Draw overlay message if active
	if r.renderState.GetOverlayMessage() != "" && time.Since(r.renderState.GetOverlayMessageTime()) < overlayMessageDuration {
		r.drawOverlayMessage(screen)
	}
}

func screenSize(screen *ebiten.Image) view.Size {
	return view.Size{W: float64(screen.Bounds().Dx()), H: float64(screen.Bounds().Dy())}
}

// placementGeoM maps image pixels to the screen: mirror and rotate about the
// image centre, scale, then move the centre to its placed position.
func placementGeoM(p view.Placement, imgW, imgH float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-imgW/2, -imgH/2)
	if p.MirrorH {
		m.Scale(-1, 1)
	}
	if p.MirrorV {
		m.Scale(1, -1)
	}
	if p.Rotation != 0 {
		m.Rotate(float64(p.Rotation) * math.Pi / 180)
	}
	m.Scale(p.Scale, p.Scale)
	m.Translate(p.Center.X, p.Center.Y)
	return m
}

func (r *Renderer) drawImage(screen *ebiten.Image, img *ebiten.Image) {
	size := r.renderState.GetImageSize()
	v := r.renderState.GetView()
	p := v.Place(size, screenSize(screen), r.renderState.GetFitPolicy())

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	if p.Scale >= 2 {
		// Keep pixels sharp when magnified.
		op.Filter = ebiten.FilterNearest
	}
	op.GeoM = placementGeoM(p, size.W, size.H)
	screen.DrawImage(img, op)
}

// drawIndicators marks a rotated or mirrored image in the top-left corner.
func (r *Renderer) drawIndicators(screen *ebiten.Image) {
	label := transformLabel(r.renderState.GetView())
	if label == "" {
		return
	}

	font := newFace(r.renderState.GetFontSize() * 0.8)
	w, h := text.Measure(label, font, 0)
	DrawFilledRect(screen, 6, 6, w+10, h+8, bgColorLight)
	DrawText(screen, label, font, 11, 10, premultiply(r.renderState.GetPalette().Accent))
}

// transformLabel describes the rotation and mirroring of v, or "" for none.
func transformLabel(v view.State) string {
	var marks []string
	if v.Rotation != 0 {
		marks = append(marks, fmt.Sprintf("Rotated %d°", v.Rotation))
	}
	switch {
	case v.MirrorH && v.MirrorV:
		marks = append(marks, "Mirrored H+V")
	case v.MirrorH:
		marks = append(marks, "Mirrored H")
	case v.MirrorV:
		marks = append(marks, "Mirrored V")
	}
	return strings.Join(marks, "  ")
}

// infoFields is what the info bar shows about the displayed image.
type infoFields struct {
	Name      string
	Index     int // zero-based, -1 when unknown
	Total     int
	Size      view.Size
	Scale     float64
	Sort      library.SortMethod
	Fit       view.FitPolicy
	Frame     int
	Frames    int
	Wrap      bool
	KeepView  bool
	Secondary bool
}

// formatInfo builds the info bar text.
func formatInfo(f infoFields) string {
	parts := []string{f.Name}
	if f.Total > 0 && f.Index >= 0 {
		parts = append(parts, fmt.Sprintf("%d / %d", f.Index+1, f.Total))
	}
	parts = append(parts,
		fmt.Sprintf("%dx%d", int(f.Size.W), int(f.Size.H)),
		fmt.Sprintf("%.0f%%", f.Scale*100),
		library.GetSortStrategy(f.Sort).Name(),
		f.Fit.String(),
	)
	if f.Frames > 1 {
		parts = append(parts, fmt.Sprintf("frame %d/%d", f.Frame+1, f.Frames))
	}
	if !f.Wrap {
		parts = append(parts, "no wrap")
	}
	if f.KeepView {
		parts = append(parts, "keep view")
	}
	if f.Secondary {
		parts = append(parts, "read-only")
	}
	return strings.Join(parts, "  |  ")
}

func (r *Renderer) buildInfoString(screen *ebiten.Image) string {
	f := infoFields{
		Sort:      r.renderState.GetSortMethod(),
		Fit:       r.renderState.GetFitPolicy(),
		Size:      r.renderState.GetImageSize(),
		Wrap:      r.renderState.IsWrapEnabled(),
		KeepView:  r.renderState.IsKeepViewEnabled(),
		Secondary: !r.renderState.IsPrimary(),
	}
	if e, ok := r.renderState.GetDisplayedEntry(); ok {
		f.Name = e.Name
	}
	f.Index, f.Total = r.renderState.GetLibraryPosition()
	f.Frame, f.Frames = r.renderState.GetFrameInfo()
	v := r.renderState.GetView()
	f.Scale = v.Place(f.Size, screenSize(screen), f.Fit).Scale
	return formatInfo(f)
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image) {
	infoFont := newFace(r.renderState.GetFontSize())
	padding := 10.0

	sw := float64(screen.Bounds().Dx())
	infoText := truncateText(r.buildInfoString(screen), infoFont, sw-padding*4)

	textWidth, textHeight := text.Measure(infoText, infoFont, 0)

	// Position at bottom right corner
	textX := sw - textWidth - padding
	textY := float64(screen.Bounds().Dy()) - textHeight - padding

	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding, textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)
	DrawText(screen, infoText, infoFont, textX, textY, colorWhite)
}

// drawCenteredLines draws a panel in the middle of the screen holding lines.
func (r *Renderer) drawCenteredLines(screen *ebiten.Image, lines []string, colors []color.RGBA) {
	font := newFace(r.renderState.GetFontSize())
	palette := r.renderState.GetPalette()
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	padding := 20.0
	lineHeight := r.renderState.GetFontSize() * 1.5

	maxWidth := 0.0
	for i, line := range lines {
		lines[i] = truncateText(line, font, sw-padding*4)
		w, _ := text.Measure(lines[i], font, 0)
		maxWidth = math.Max(maxWidth, w)
	}
	boxW := maxWidth + padding*2
	boxH := float64(len(lines))*lineHeight + padding*2
	boxX, boxY := (sw-boxW)/2, (sh-boxH)/2

	DrawFilledRect(screen, boxX, boxY, boxW, boxH, premultiply(palette.Panel))
	for i, line := range lines {
		w, _ := text.Measure(line, font, 0)
		DrawText(screen, line, font, (sw-w)/2, boxY+padding+float64(i)*lineHeight, premultiply(colors[i]))
	}
}

func (r *Renderer) drawWelcome(screen *ebiten.Image) {
	palette := r.renderState.GetPalette()
	r.drawCenteredLines(screen,
		[]string{"Drop an image here", "Press F1 for help"},
		[]color.RGBA{palette.Text, palette.Accent})
}

func (r *Renderer) drawLoadingNotice(screen *ebiten.Image) {
	palette := r.renderState.GetPalette()
	name := filepath.Base(r.renderState.GetPendingPath())
	r.drawCenteredLines(screen, []string{"Loading " + name + "..."}, []color.RGBA{palette.Text})
}

func (r *Renderer) drawErrorPanel(screen *ebiten.Image) {
	err := r.renderState.GetError()
	if err == nil {
		return
	}
	name := ""
	if p := r.renderState.GetPendingPath(); p != "" {
		name = filepath.Base(p)
	}
	DrawErrorPanel(screen, "ERROR", name, err.Error(), "Press Enter or Escape to dismiss",
		r.renderState.GetFontSize(), bgColorDark, premultiply(r.renderState.GetPalette().Accent))
}

func (r *Renderer) drawOverlayMessage(screen *ebiten.Image) {
	messageFont := newFace(r.renderState.GetFontSize())
	message := r.renderState.GetOverlayMessage()

	textWidth, textHeight := text.Measure(message, messageFont, 0)

	// Calculate position (center of screen)
	padding := 20.0
	boxWidth := textWidth + padding*2
	boxHeight := textHeight + padding*2
	boxX := (float64(screen.Bounds().Dx()) - boxWidth) / 2
	boxY := (float64(screen.Bounds().Dy()) - boxHeight) / 2

	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)
	DrawText(screen, message, messageFont, boxX+padding, boxY+padding, colorWhite)
}

// helpRow is one line of the bindings table.
type helpRow struct {
	action      string
	keys        string
	mouse       string
	description string
}

// helpRows lists the bound actions in definition order.
func helpRows(keybindings, mousebindings map[string][]string) []helpRow {
	var rows []helpRow
	for _, def := range actionDefinitions {
		keys := keybindings[def.Name]
		mouse := mousebindings[def.Name]
		if len(keys) == 0 && len(mouse) == 0 {
			continue
		}
		description := def.Description
		if description == "" {
			description = "No description available"
		}
		rows = append(rows, helpRow{
			action:      def.Name,
			keys:        strings.Join(keys, ", "),
			mouse:       strings.Join(mouse, ", "),
			description: description,
		})
	}
	return rows
}

func (row helpRow) input() string {
	switch {
	case row.keys != "" && row.mouse != "":
		return row.keys + " | " + row.mouse
	case row.keys != "":
		return row.keys
	default:
		return row.mouse
	}
}

// helpLayout holds the measured size of the help table.
type helpLayout struct {
	actionWidth float64
	inputWidth  float64
	width       float64
	height      float64
}

func (r *Renderer) configLines() (string, []string) {
	status := r.renderState.GetConfigStatus()
	statusText := fmt.Sprintf("Config Status: %s", status.Status)
	if !r.renderState.IsPrimary() {
		statusText += " (another window owns the state file)"
	}
	var warnings []string
	for i, warning := range status.Warnings {
		if i >= maxHelpWarnings {
			break
		}
		if len(warning) > 50 {
			warning = warning[:47] + "..."
		}
		warnings = append(warnings, "• "+warning)
	}
	return statusText, warnings
}

// measureHelp computes the size the help overlay needs at fontSize.
func (r *Renderer) measureHelp(rows []helpRow, fontSize float64) helpLayout {
	font := newFace(fontSize)
	lineHeight := fontSize * 1.5

	var l helpLayout
	maxDescWidth := 0.0
	for _, row := range rows {
		w, _ := text.Measure(row.action, font, 0)
		l.actionWidth = math.Max(l.actionWidth, w)
		w, _ = text.Measure(row.input(), font, 0)
		l.inputWidth = math.Max(l.inputWidth, w)
		w, _ = text.Measure(row.description, font, 0)
		maxDescWidth = math.Max(maxDescWidth, w)
	}

	statusText, warnings := r.configLines()

	// Title, controls heading, rows, then the system section
	l.height = helpPadding*2 + fontSize*2 + lineHeight*1.5
	l.height += float64(len(rows)) * lineHeight
	l.height += lineHeight * 3
	l.height += float64(len(warnings)) * lineHeight

	l.width = 40 + l.actionWidth + 20 + 30 + 20 + l.inputWidth + 20 + maxDescWidth + helpPadding
	for _, s := range append([]string{"Controls (Keyboard | Mouse):", statusText}, warnings...) {
		w, _ := text.Measure(s, font, 0)
		l.width = math.Max(l.width, w+helpPadding*2+80)
	}
	return l
}

// calculateOptimalFontSize finds the largest font size that fits within the given dimensions
func (r *Renderer) calculateOptimalFontSize(rows []helpRow, availableWidth, availableHeight float64) (float64, bool) {
	maxFontSize := r.renderState.GetFontSize()
	fits := func(size float64) bool {
		l := r.measureHelp(rows, size)
		return l.width <= availableWidth && l.height <= availableHeight
	}

	if !fits(minHelpFontSize) {
		return minHelpFontSize, false
	}
	if fits(maxFontSize) {
		return maxFontSize, true
	}

	// Binary search for optimal font size
	low, high := minHelpFontSize, maxFontSize
	bestSize := minHelpFontSize
	for high-low > 0.5 {
		mid := (low + high) / 2.0
		if fits(mid) {
			bestSize = mid
			low = mid
		} else {
			high = mid
		}
	}
	return bestSize, true
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	rows := helpRows(r.renderState.GetKeybindings(), r.renderState.GetMousebindings())

	fontSize, canFit := r.calculateOptimalFontSize(rows, w-helpPadding*2, h-helpPadding*2)
	if !canFit {
		r.drawMarginTooSmallMessage(screen)
		return
	}

	layout := r.measureHelp(rows, fontSize)
	helpFont := newFace(fontSize)
	lineHeight := fontSize * 1.5

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	DrawFilledRect(screen, helpPadding, helpPadding, w-helpPadding*2, h-helpPadding*2, bgColorMedium)

	titleY := helpPadding + 30
	DrawText(screen, "HELP:", helpFont, helpPadding+20, titleY, colorWhite)

	currentY := titleY + fontSize*2
	DrawText(screen, "Controls (Keyboard | Mouse):", helpFont, helpPadding+20, currentY, colorWhite)
	currentY += lineHeight * 1.5

	actionColumnX := helpPadding + 40
	arrowColumnX := actionColumnX + layout.actionWidth + 20
	inputColumnX := arrowColumnX + 30
	descColumnX := inputColumnX + layout.inputWidth + 20

	for _, row := range rows {
		DrawText(screen, row.action, helpFont, actionColumnX, currentY, colorLightBlue)
		DrawText(screen, "→", helpFont, arrowColumnX, currentY, colorWhite)

		// Keyboard bindings in yellow, mouse bindings in cyan
		x := inputColumnX
		if row.keys != "" {
			DrawText(screen, row.keys, helpFont, x, currentY, colorYellow)
			kw, _ := text.Measure(row.keys, helpFont, 0)
			x += kw
		}
		if row.keys != "" && row.mouse != "" {
			DrawText(screen, " | ", helpFont, x, currentY, colorWhite)
			sepWidth, _ := text.Measure(" | ", helpFont, 0)
			x += sepWidth
		}
		if row.mouse != "" {
			DrawText(screen, row.mouse, helpFont, x, currentY, colorCyan)
		}

		DrawText(screen, row.description, helpFont, descColumnX, currentY, colorGray)
		currentY += lineHeight
	}

	currentY += lineHeight
	DrawText(screen, "System:", helpFont, helpPadding+20, currentY, colorWhite)
	currentY += lineHeight

	statusText, warnings := r.configLines()
	statusColor := colorGreen
	if status := r.renderState.GetConfigStatus().Status; status == "Warning" || status == "Error" {
		statusColor = colorOrange
	}
	DrawText(screen, statusText, helpFont, helpPadding+40, currentY, statusColor)
	currentY += lineHeight

	for _, warning := range warnings {
		DrawText(screen, warning, helpFont, helpPadding+40, currentY, colorLightRed)
		currentY += lineHeight
	}
}

// drawMarginTooSmallMessage displays Fermat's margin joke when help cannot fit
func (r *Renderer) drawMarginTooSmallMessage(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	DrawFilledRect(screen, 0, 0, float64(w), float64(h), bgColorLight)

	jokeFont := newFace(16.0)

	// The famous quote from Fermat's Last Theorem margin note
	message := "Hanc marginis exiguitas non caperet."
	subtitle := "(This margin is too small to contain it.)"

	messageWidth, messageHeight := text.Measure(message, jokeFont, 0)
	subtitleWidth, _ := text.Measure(subtitle, jokeFont, 0)

	messageX := float64(w)/2 - messageWidth/2
	messageY := float64(h)/2 - messageHeight/2

	subtitleX := float64(w)/2 - subtitleWidth/2
	subtitleY := messageY + messageHeight + 10

	DrawText(screen, message, jokeFont, messageX, messageY, colorWhite)
	DrawText(screen, subtitle, jokeFont, subtitleX, subtitleY, colorGray)
}
