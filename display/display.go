package display

import (
	"context"
	"fmt"
)

// Renderer draws messages and tables to some output
type Renderer interface {
	RenderTable(data TableData, options TableOptions) error
	RenderMessage(level MessageLevel, message string)
}

// Display is the user-facing output surface of the CLI
type Display interface {
	Success(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})
	Table(data TableData) *TableBuilder
}

// DisplayImpl implements Display on top of a Renderer
type DisplayImpl struct {
	renderer Renderer
	format   OutputFormat
}

// NewWithRenderer creates a new Display instance with a specific renderer
func NewWithRenderer(renderer Renderer) *DisplayImpl {
	return &DisplayImpl{
		renderer: renderer,
		format:   FormatTable,
	}
}

// SetFormat sets the default table format
func (d *DisplayImpl) SetFormat(format OutputFormat) *DisplayImpl {
	d.format = format
	return d
}

// Table starts rendering a table
func (d *DisplayImpl) Table(data TableData) *TableBuilder {
	opts := DefaultTableOptions()
	opts.Format = d.format
	return &TableBuilder{display: d, data: data, options: opts}
}

// Success displays a success message
func (d *DisplayImpl) Success(message string, args ...interface{}) {
	d.renderer.RenderMessage(MessageLevelSuccess, fmt.Sprintf(message, args...))
}

// Error displays an error message
func (d *DisplayImpl) Error(message string, args ...interface{}) {
	d.renderer.RenderMessage(MessageLevelError, fmt.Sprintf(message, args...))
}

// Warning displays a warning message
func (d *DisplayImpl) Warning(message string, args ...interface{}) {
	d.renderer.RenderMessage(MessageLevelWarning, fmt.Sprintf(message, args...))
}

// Info displays an info message
func (d *DisplayImpl) Info(message string, args ...interface{}) {
	d.renderer.RenderMessage(MessageLevelInfo, fmt.Sprintf(message, args...))
}

// TableBuilder for building tables with fluent API
type TableBuilder struct {
	display *DisplayImpl
	data    TableData
	options TableOptions
	maxRows int
}

// WithFormat sets the output format
func (tb *TableBuilder) WithFormat(format OutputFormat) *TableBuilder {
	tb.options.Format = format
	return tb
}

// WithTitle sets a caption printed above the table
func (tb *TableBuilder) WithTitle(title string) *TableBuilder {
	tb.options.Title = title
	return tb
}

// WithMaxRows limits the number of rendered rows; zero renders everything
func (tb *TableBuilder) WithMaxRows(n int) *TableBuilder {
	tb.maxRows = n
	return tb
}

// Render renders the table
func (tb *TableBuilder) Render() error {
	data := tb.data
	if tb.maxRows > 0 && len(data.Rows) > tb.maxRows {
		data.Rows = data.Rows[:tb.maxRows]
		tb.display.Warning("Showing first %d of %d rows", tb.maxRows, len(tb.data.Rows))
	}
	return tb.display.renderer.RenderTable(data, tb.options)
}

type contextKey struct{}

// WithDisplay stores a display in the context
func WithDisplay(ctx context.Context, d Display) context.Context {
	return context.WithValue(ctx, contextKey{}, d)
}

// FromContext returns the display stored in ctx, or nil
func FromContext(ctx context.Context) Display {
	if d, ok := ctx.Value(contextKey{}).(Display); ok {
		return d
	}
	return nil
}
