package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ncruces/zenity"

	"foxview/internal/imagesrc"
	"foxview/internal/library"
)

// filePicker asks the user for a file to open. An empty path with a nil
// error means the user cancelled.
type filePicker interface {
	PickImage(dir string) (string, error)
}

// nativePicker shows the platform's file dialog.
type nativePicker struct{}

func (nativePicker) PickImage(dir string) (string, error) {
	opts := []zenity.Option{zenity.Title("Open image"), openFilters()}
	if dir != "" {
		opts = append(opts, zenity.Filename(dir+string(os.PathSeparator)))
	}
	path, err := zenity.SelectFile(opts...)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return path, err
}

// openFilters lists the decodable images first, then archives.
func openFilters() zenity.FileFilters {
	var patterns []string
	for _, ext := range imagesrc.SupportedExts() {
		patterns = append(patterns, "*"+ext)
	}
	return zenity.FileFilters{
		{Name: "Images", Patterns: patterns, CaseFold: true},
		{Name: "Archives", Patterns: []string{"*.zip", "*.rar", "*.7z"}, CaseFold: true},
	}
}

type pickResult struct {
	path string
	err  error
}

// OpenFile shows the file dialog without blocking the event loop. The
// choice is picked up by pollPicker on a later update.
func (g *Game) OpenFile() {
	if g.picking {
		return
	}
	g.picking = true
	dir := g.dialogDir()
	go func() {
		path, err := g.picker.PickImage(dir)
		g.picked <- pickResult{path: path, err: err}
	}()
}

// pollPicker opens the file chosen in the dialog, if any.
func (g *Game) pollPicker() {
	select {
	case r := <-g.picked:
		g.picking = false
		switch {
		case r.err != nil:
			slog.Warn("File dialog failed", "err", r.err)
			g.ShowOverlayMessage("Cannot show the file dialog")
		case r.path == "":
			debugLog("File dialog cancelled")
		default:
			debugLog("Picked: %s", r.path)
			g.DismissError()
			g.RequestOpen(r.path)
		}
	default:
	}
}

// dialogDir starts the dialog next to the displayed image.
func (g *Game) dialogDir() string {
	if g.lib != nil {
		dir := g.lib.Dir()
		if library.IsArchiveExt(dir) {
			return filepath.Dir(dir)
		}
		return dir
	}
	if g.state.LastPath != "" {
		return filepath.Dir(g.state.LastPath)
	}
	return ""
}
