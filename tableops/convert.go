package tableops

import (
	"github.com/TFMV/icetour/display"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// TimestampLayout is how timestamps are rendered in scan output
const TimestampLayout = "2006-01-02 15:04:05.000000"

// ToTableData converts an Arrow table into rows for the display package. Nulls
// become nil cells.
func ToTableData(tbl arrow.Table) display.TableData {
	schema := tbl.Schema()
	data := display.TableData{
		Headers: make([]string, 0, schema.NumFields()),
		Rows:    make([][]interface{}, 0, tbl.NumRows()),
	}
	for _, f := range schema.Fields() {
		data.Headers = append(data.Headers, f.Name)
	}

	reader := array.NewTableReader(tbl, 0)
	defer reader.Release()

	for reader.Next() {
		rec := reader.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make([]interface{}, rec.NumCols())
			for j, col := range rec.Columns() {
				row[j] = cellValue(col, i)
			}
			data.Rows = append(data.Rows, row)
		}
	}

	return data
}

func cellValue(arr arrow.Array, i int) interface{} {
	if arr.IsNull(i) {
		return nil
	}

	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(TimestampLayout)
	default:
		return arr.ValueStr(i)
	}
}
