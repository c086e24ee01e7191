package renderers

import (
	"io"

	"github.com/TFMV/icetour/display"
)

// Auto picks the pterm renderer on capable terminals and the plain one otherwise
func Auto(out io.Writer, caps display.TerminalCapabilities) display.Renderer {
	if caps.RichOutput() {
		return NewPTermRenderer(out)
	}
	return NewFallbackRenderer(out)
}
