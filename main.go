package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"foxview/internal/metadata"
	"foxview/internal/persist"
)

type options struct {
	print      string
	noExif     bool
	verbose    bool
	configPath string
	path       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(windowTitle, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.print, "print", "", "print image metadata as `toml|json` and exit")
	fs.BoolVar(&opts.noExif, "no-exif", false, "omit EXIF tags when printing metadata")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	fs.StringVar(&opts.configPath, "config", "", "state file `path` (default "+persist.DefaultPath()+")")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [image|directory|archive]\n\n", windowTitle)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected at most one path, got %d", fs.NArg())
	}
	opts.path = fs.Arg(0)
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := setupLogging(stderr, opts.verbose)

	if opts.print != "" {
		return printMetadata(stdout, opts, logger)
	}
	if err := runViewer(opts, logger); err != nil {
		logger.Error("Viewer failed", "err", err)
		return 1
	}
	return 0
}

// printMetadata implements -print: one image's metadata as TOML or JSON.
func printMetadata(w io.Writer, opts options, logger *slog.Logger) int {
	enc, err := metadata.ParseEncoding(opts.print)
	if err != nil {
		logger.Error("Invalid -print value", "err", err)
		return 1
	}
	if opts.path == "" {
		logger.Error("-print needs an image path")
		return 1
	}

	info, err := metadata.Read(opts.path, metadata.Options{NoExif: opts.noExif, Logger: logger})
	if err != nil {
		logger.Error("Failed to read image", "path", opts.path, "err", err)
		return 1
	}
	if err := metadata.Encode(w, info, enc); err != nil {
		logger.Error("Failed to write metadata", "err", err)
		return 1
	}
	return 0
}

func runViewer(opts options, logger *slog.Logger) error {
	store := persist.NewStore(opts.configPath, logger)

	token, err := persist.Claim(filepath.Dir(store.Path))
	if err != nil {
		logger.Warn("Cannot claim the state file, changes will not be saved", "err", err)
	}
	if !token.Primary() {
		debugLog("Another window owns %s", store.Path)
	}

	loaded := store.Read()
	for _, w := range loaded.Warnings {
		logger.Warn("Config", "warning", w)
	}

	if err := InitGraphics(); err != nil {
		_ = token.Release()
		return fmt.Errorf("init graphics: %w", err)
	}

	g := NewGame(store, token, loaded)
	setupWindow(loaded.State.Window)

	if path := initialPath(opts.path, loaded.State.LastPath); path != "" {
		g.RequestOpen(path)
	}

	err = ebiten.RunGame(g)
	// RunGame can return without a close request, e.g. on a driver error.
	g.shutdown(false)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func setupWindow(w persist.Window) {
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowSizeLimits(persist.MinWidth, persist.MinHeight, -1, -1)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	if w.Position != nil {
		ebiten.SetWindowPosition(w.Position.X, w.Position.Y)
	}
	if w.Maximized {
		ebiten.MaximizeWindow()
	}
	if w.Fullscreen {
		ebiten.SetFullscreen(true)
	}
}

// initialPath picks what to open at startup: the command-line path, or the
// last opened path when it still exists.
func initialPath(arg, lastPath string) string {
	if arg != "" {
		return arg
	}
	if lastPath == "" {
		return ""
	}
	if _, err := os.Stat(lastPath); err != nil {
		debugLog("Last path no longer available: %s", lastPath)
		return ""
	}
	return lastPath
}
