// Package browser hands URLs to the system web browser.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Mode selects where a URL opens.
type Mode int

const (
	Current    Mode = iota // replace the current page
	NewTab                 // new foreground tab
	Background             // new tab, browser stays behind
)

func (m Mode) String() string {
	switch m {
	case NewTab:
		return "new-tab"
	case Background:
		return "background"
	default:
		return "current"
	}
}

// Opener opens URLs.
type Opener interface {
	Open(ctx context.Context, url string, mode Mode) error
}

// System opens URLs with the platform's URL handler.
type System struct {
	GOOS   string // defaults to runtime.GOOS
	Logger *slog.Logger
}

// NewSystem returns an Opener for the running platform.
func NewSystem(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{GOOS: runtime.GOOS, Logger: logger}
}

// Command returns the program and arguments that open url on goos.
// Only macOS can keep the browser in the background; elsewhere every mode
// falls back to the default handler.
func Command(goos, url string, mode Mode) (string, []string, error) {
	switch goos {
	case "darwin":
		if mode == Background {
			return "open", []string{"-g", url}, nil
		}
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	}
	return "", nil, fmt.Errorf("open %s: unsupported platform %q", url, goos)
}

// Open implements Opener. The handler is started and reaped in the background.
func (s *System) Open(ctx context.Context, url string, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	name, args, err := Command(goos, url, mode)
	if err != nil {
		return err
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil && s.Logger != nil {
			s.Logger.Warn("url handler exited", slog.String("url", url), slog.Any("error", err))
		}
	}()

	if s.Logger != nil {
		s.Logger.Info("opened url", slog.String("url", url), slog.String("mode", mode.String()))
	}
	return nil
}
