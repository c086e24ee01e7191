package tableops

import (
	"errors"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrNullValue is returned when a row carries no value for a non-nullable column
var ErrNullValue = errors.New("null value in non-nullable column")

// Row is one record of the tour table. A nil field is a null.
type Row struct {
	ID        *int64
	Name      *string
	CreatedAt *time.Time
}

// NewRow builds a row with every column set
func NewRow(id int64, name string, createdAt time.Time) Row {
	return Row{ID: &id, Name: &name, CreatedAt: &createdAt}
}

// NewRecordBatch validates rows against schema and builds an Arrow table from them.
// The caller owns the returned table and must Release it.
func NewRecordBatch(mem memory.Allocator, schema *arrow.Schema, rows []Row) (arrow.Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	for i, row := range rows {
		if err := validateRow(schema, row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()

	for idx, field := range schema.Fields() {
		fb := bldr.Field(idx)
		switch field.Name {
		case ColumnID:
			b, ok := fb.(*array.Int64Builder)
			if !ok {
				return nil, fmt.Errorf("column %q must be int64, got %s", field.Name, field.Type)
			}
			for _, row := range rows {
				if row.ID == nil {
					b.AppendNull()
					continue
				}
				b.Append(*row.ID)
			}
		case ColumnName:
			b, ok := fb.(*array.StringBuilder)
			if !ok {
				return nil, fmt.Errorf("column %q must be utf8, got %s", field.Name, field.Type)
			}
			for _, row := range rows {
				if row.Name == nil {
					b.AppendNull()
					continue
				}
				b.Append(*row.Name)
			}
		case ColumnCreatedAt:
			b, ok := fb.(*array.TimestampBuilder)
			if !ok {
				return nil, fmt.Errorf("column %q must be a timestamp, got %s", field.Name, field.Type)
			}
			unit := field.Type.(*arrow.TimestampType).Unit
			for _, row := range rows {
				if row.CreatedAt == nil {
					b.AppendNull()
					continue
				}
				ts, err := arrow.TimestampFromTime(*row.CreatedAt, unit)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", field.Name, err)
				}
				b.Append(ts)
			}
		default:
			return nil, fmt.Errorf("unknown column %q in append schema", field.Name)
		}
	}

	rec := bldr.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func validateRow(schema *arrow.Schema, row Row) error {
	for _, field := range schema.Fields() {
		if field.Nullable {
			continue
		}

		var null bool
		switch field.Name {
		case ColumnID:
			null = row.ID == nil
		case ColumnName:
			null = row.Name == nil
		case ColumnCreatedAt:
			null = row.CreatedAt == nil
		}
		if null {
			return fmt.Errorf("column %q: %w", field.Name, ErrNullValue)
		}
	}
	return nil
}

// WallClock returns t's local wall-clock reading as a zoneless timestamp. Iceberg
// timestamp columns carry no zone, so the stored value is the local date and time
// exactly as a clock on the wall would show it.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Now is the clock created_at values are stamped with
func Now() time.Time {
	return WallClock(time.Now()).Truncate(time.Microsecond)
}
