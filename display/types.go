package display

import (
	"fmt"
	"strings"
)

// TableData represents the data for a table
type TableData struct {
	Headers []string
	Rows    [][]interface{}
	Footer  []string
}

// OutputFormat represents different output formats
type OutputFormat int

const (
	FormatTable OutputFormat = iota
	FormatCSV
	FormatJSON
	FormatMarkdown
)

// String returns the flag spelling of the format
func (f OutputFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "markdown"
	default:
		return "table"
	}
}

// ParseFormat parses a --format flag value
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return FormatTable, fmt.Errorf("unsupported output format: %s (use table, csv, json or markdown)", s)
	}
}

// MessageLevel represents different message types
type MessageLevel int

const (
	MessageLevelInfo MessageLevel = iota
	MessageLevelSuccess
	MessageLevelWarning
	MessageLevelError
)

// TableOptions represents configuration options for table rendering
type TableOptions struct {
	Format   OutputFormat
	MaxWidth int
	Title    string
}

// DefaultTableOptions returns default table options
func DefaultTableOptions() TableOptions {
	return TableOptions{
		Format:   FormatTable,
		MaxWidth: 120,
	}
}

// FormatValue renders a cell for text output. Nulls print as NULL.
func FormatValue(value interface{}) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}

// FormatBytes formats bytes into human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// TruncateString truncates a string to the specified length with ellipsis
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
