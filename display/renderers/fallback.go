package renderers

import (
	"fmt"
	"io"
	"strings"

	"github.com/TFMV/icetour/display"
)

// FallbackRenderer is a simple text-based renderer that works in any environment
type FallbackRenderer struct {
	out io.Writer
}

// NewFallbackRenderer creates a new fallback renderer writing to out
func NewFallbackRenderer(out io.Writer) *FallbackRenderer {
	return &FallbackRenderer{out: out}
}

// RenderTable renders a table using simple ASCII characters
func (r *FallbackRenderer) RenderTable(data display.TableData, options display.TableOptions) error {
	if options.Title != "" && options.Format == display.FormatTable {
		fmt.Fprintln(r.out, options.Title)
	}

	switch options.Format {
	case display.FormatCSV:
		return renderCSV(r.out, data)
	case display.FormatJSON:
		return renderJSON(r.out, data)
	case display.FormatMarkdown:
		return renderMarkdown(r.out, data)
	default:
		return r.renderTable(data, options)
	}
}

func (r *FallbackRenderer) renderTable(data display.TableData, options display.TableOptions) error {
	if len(data.Headers) == 0 {
		return nil
	}

	widths := make([]int, len(data.Headers))
	for i, header := range data.Headers {
		widths[i] = len(header)
	}
	for _, row := range data.Rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := len(display.FormatValue(cell)); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	maxWidth := 10
	if options.MaxWidth > 0 {
		maxWidth = max(options.MaxWidth/len(widths), 10)
	}
	for i := range widths {
		widths[i] = min(widths[i], maxWidth)
	}

	var b strings.Builder
	border := func() {
		b.WriteString("+")
		for _, width := range widths {
			b.WriteString(strings.Repeat("-", width+2))
			b.WriteString("+")
		}
		b.WriteString("\n")
	}
	line := func(cells []string) {
		b.WriteString("|")
		for i, width := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, " %-*s |", width, display.TruncateString(cell, width))
		}
		b.WriteString("\n")
	}

	border()
	line(data.Headers)
	border()
	for _, row := range data.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = display.FormatValue(cell)
		}
		line(cells)
	}
	border()
	fmt.Fprintf(&b, "(%d rows)\n", len(data.Rows))

	_, err := io.WriteString(r.out, b.String())
	return err
}

// RenderMessage renders a message with simple prefixes
func (r *FallbackRenderer) RenderMessage(level display.MessageLevel, message string) {
	switch level {
	case display.MessageLevelSuccess:
		fmt.Fprintf(r.out, "[SUCCESS] %s\n", message)
	case display.MessageLevelError:
		fmt.Fprintf(r.out, "[ERROR] %s\n", message)
	case display.MessageLevelWarning:
		fmt.Fprintf(r.out, "[WARNING] %s\n", message)
	case display.MessageLevelInfo:
		fmt.Fprintf(r.out, "[INFO] %s\n", message)
	}
}
