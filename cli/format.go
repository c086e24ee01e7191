package cli

import (
	"sort"
	"strconv"
	"time"

	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/tableops"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
)

func schemaTableData(schema *iceberg.Schema) display.TableData {
	data := display.TableData{Headers: []string{"ID", "Name", "Type", "Required", "Doc"}}
	if schema == nil {
		return data
	}
	for _, f := range schema.Fields() {
		data.Rows = append(data.Rows, []interface{}{f.ID, f.Name, f.Type.String(), f.Required, f.Doc})
	}
	return data
}

func snapshotTableData(snapshots []table.Snapshot) display.TableData {
	data := display.TableData{Headers: []string{"Snapshot ID", "Parent", "Timestamp", "Operation", "Run ID"}}
	for _, snap := range snapshots {
		parent := "-"
		if snap.ParentSnapshotID != nil {
			parent = strconv.FormatInt(*snap.ParentSnapshotID, 10)
		}

		operation, runID := "", ""
		if snap.Summary != nil {
			operation = string(snap.Summary.Operation)
			runID = snap.Summary.Properties[tableops.PropRunID]
		}

		data.Rows = append(data.Rows, []interface{}{
			snap.SnapshotID,
			parent,
			time.UnixMilli(snap.TimestampMs).UTC().Format("2006-01-02 15:04:05"),
			operation,
			runID,
		})
	}
	return data
}

func propertiesTableData(props iceberg.Properties) display.TableData {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := display.TableData{Headers: []string{"Key", "Value"}}
	for _, k := range keys {
		data.Rows = append(data.Rows, []interface{}{k, props[k]})
	}
	return data
}
