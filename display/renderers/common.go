package renderers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/TFMV/icetour/display"
)

func renderCSV(w io.Writer, data display.TableData) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(data.Headers); err != nil {
		return err
	}

	for _, row := range data.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			if cell != nil {
				record[i] = display.FormatValue(cell)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func renderJSON(w io.Writer, data display.TableData) error {
	result := make([]map[string]interface{}, 0, len(data.Rows))

	for _, row := range data.Rows {
		record := make(map[string]interface{}, len(data.Headers))
		for i, header := range data.Headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}
		result = append(result, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func renderMarkdown(w io.Writer, data display.TableData) error {
	var b strings.Builder

	b.WriteString("|")
	for _, header := range data.Headers {
		fmt.Fprintf(&b, " %s |", header)
	}
	b.WriteString("\n|")
	for range data.Headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range data.Rows {
		b.WriteString("|")
		for i, cell := range row {
			if i < len(data.Headers) {
				fmt.Fprintf(&b, " %s |", display.FormatValue(cell))
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
