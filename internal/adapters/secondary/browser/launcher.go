// Package browser opens the live preview in a local browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// BrowserEnv overrides browser detection with an explicit command
const BrowserEnv = "DECKFLOW_BROWSER"

// ErrNoBrowser is returned when no candidate command exists on this system
var ErrNoBrowser = errors.New("no supported browser found")

// Browser is one way of opening a URL
type Browser struct {
	Name    string
	Command string
	Args    []string
}

// Launcher implements ports.BrowserLauncher
type Launcher struct {
	browsers []Browser
	logger   ports.Logger

	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

// NewLauncher detects candidate browsers for the current platform.
// DECKFLOW_BROWSER, then BROWSER, take precedence when set.
func NewLauncher(logger ports.Logger) *Launcher {
	return &Launcher{
		browsers: candidates(runtime.GOOS, os.Getenv(BrowserEnv), os.Getenv("BROWSER")),
		logger:   logger,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// Open launches the first available browser on url
func (l *Launcher) Open(target string) error {
	if err := validateURL(target); err != nil {
		return err
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	args := append(append([]string{}, browser.Args...), target)
	if err := l.start(browser.Command, args...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}

	l.logger.Debug("opened browser", "browser", browser.Name, "url", target)
	return nil
}

// Detect returns the browser Open would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

func (l *Launcher) selectBrowser() (*Browser, error) {
	for i := range l.browsers {
		if _, err := l.lookPath(l.browsers[i].Command); err == nil {
			return &l.browsers[i], nil
		}
	}
	return nil, ErrNoBrowser
}

// validateURL only lets http(s) URLs reach the shell-level launchers
func validateURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid preview URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid preview URL %q: scheme must be http or https", target)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid preview URL %q: missing host", target)
	}
	return nil
}

// candidates lists launch commands in preference order. An override is a
// command line such as "firefox --new-window".
func candidates(goos string, overrides ...string) []Browser {
	var browsers []Browser
	for _, override := range overrides {
		if fields := strings.Fields(override); len(fields) > 0 {
			browsers = append(browsers, Browser{Name: fields[0], Command: fields[0], Args: fields[1:]})
		}
	}

	switch goos {
	case "darwin":
		browsers = append(browsers, Browser{Name: "Default", Command: "open"})
	case "windows":
		browsers = append(browsers, Browser{Name: "Default", Command: "rundll32", Args: []string{"url.dll,FileProtocolHandler"}})
	default:
		browsers = append(browsers,
			Browser{Name: "xdg-open", Command: "xdg-open"},
			Browser{Name: "Chrome", Command: "google-chrome"},
			Browser{Name: "Chromium", Command: "chromium"},
			Browser{Name: "Firefox", Command: "firefox"},
		)
	}

	return browsers
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the candidate list, URL is validated
	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't wait for the browser to close
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
