package display

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// TerminalCapabilities represents what the terminal supports
type TerminalCapabilities struct {
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
	IsInteractive   bool
	IsPiped         bool
}

// RichOutput reports whether the terminal can show the pterm renderer
func (c TerminalCapabilities) RichOutput() bool {
	return c.SupportsColor && !c.IsPiped
}

// DetectCapabilities automatically detects terminal capabilities
func DetectCapabilities() TerminalCapabilities {
	return TerminalCapabilities{
		SupportsColor:   detectColorSupport(os.Getenv),
		SupportsUnicode: detectUnicodeSupport(os.Getenv),
		Width:           getTerminalWidth(),
		IsInteractive:   term.IsTerminal(int(os.Stdin.Fd())),
		IsPiped:         isPiped(),
	}
}

// detectColorSupport checks if the terminal supports colors
func detectColorSupport(getenv func(string) string) bool {
	if isCI(getenv) {
		return false
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	if getenv("NO_COLOR") != "" {
		return false
	}

	if getenv("FORCE_COLOR") != "" {
		return true
	}

	return getenv("TERM") != "dumb"
}

// detectUnicodeSupport checks if the terminal supports Unicode
func detectUnicodeSupport(getenv func(string) string) bool {
	// Windows Command Prompt has limited Unicode support
	if runtime.GOOS == "windows" {
		return false
	}

	for _, env := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if val := getenv(env); val != "" {
			return strings.Contains(strings.ToLower(val), "utf")
		}
	}

	return true
}

func isCI(getenv func(string) string) bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "JENKINS_URL", "TRAVIS", "CIRCLECI"} {
		if getenv(v) != "" {
			return true
		}
	}
	return false
}

func isPiped() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return true
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return width
}
