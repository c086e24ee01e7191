package renderers

import (
	"fmt"
	"io"

	"github.com/TFMV/icetour/display"
	"github.com/pterm/pterm"
)

// PTermRenderer provides rich terminal output using PTerm
type PTermRenderer struct {
	out io.Writer
}

// NewPTermRenderer creates a new PTerm renderer writing to out
func NewPTermRenderer(out io.Writer) *PTermRenderer {
	return &PTermRenderer{out: out}
}

// RenderTable renders a table using PTerm's table functionality
func (r *PTermRenderer) RenderTable(data display.TableData, options display.TableOptions) error {
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

func (r *PTermRenderer) renderTable(data display.TableData, options display.TableOptions) error {
	if options.Title != "" {
		fmt.Fprintln(r.out, pterm.Bold.Sprint(options.Title))
	}

	if len(data.Rows) == 0 {
		pterm.Info.WithWriter(r.out).Println("(no rows)")
		return nil
	}

	tableData := make([][]string, len(data.Rows)+1)
	tableData[0] = data.Headers
	for i, row := range data.Rows {
		tableData[i+1] = make([]string, len(row))
		for j, cell := range row {
			tableData[i+1][j] = display.FormatValue(cell)
		}
	}

	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightBlue, pterm.Bold)).
		WithData(tableData).
		WithWriter(r.out).
		Render()
}

// RenderMessage renders messages with colors and icons
func (r *PTermRenderer) RenderMessage(level display.MessageLevel, message string) {
	switch level {
	case display.MessageLevelSuccess:
		pterm.Success.WithWriter(r.out).Println(message)
	case display.MessageLevelError:
		pterm.Error.WithWriter(r.out).Println(message)
	case display.MessageLevelWarning:
		pterm.Warning.WithWriter(r.out).Println(message)
	case display.MessageLevelInfo:
		pterm.Info.WithWriter(r.out).Println(message)
	}
}
