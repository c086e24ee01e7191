package importer

import (
	"fmt"

	"github.com/TFMV/icetour/tableops"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Conform rebuilds src with exactly the columns of target, matched by name. Integer
// columns widen to int64, large strings narrow to strings and timestamps of any unit
// or zone are rescaled to the target unit. A nullable target column missing from src
// is filled with nulls. Extra source columns are dropped.
func Conform(mem memory.Allocator, src arrow.Table, target *arrow.Schema) (arrow.Table, error) {
	nrows := src.NumRows()
	cols := make([]arrow.Array, 0, target.NumFields())
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for _, field := range target.Fields() {
		idx := src.Schema().FieldIndices(field.Name)
		if len(idx) == 0 {
			if !field.Nullable {
				return nil, fmt.Errorf("missing required column %q", field.Name)
			}
			cols = append(cols, array.MakeArrayOfNull(mem, field.Type, int(nrows)))
			continue
		}

		col, err := conformColumn(mem, src.Column(idx[0]), field)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	rec := array.NewRecord(target, cols, nrows)
	defer rec.Release()

	return array.NewTableFromRecords(target, []arrow.Record{rec}), nil
}

func conformColumn(mem memory.Allocator, col *arrow.Column, field arrow.Field) (arrow.Array, error) {
	bldr := array.NewBuilder(mem, field.Type)
	defer bldr.Release()

	row := 0
	for _, chunk := range col.Data().Chunks() {
		for i := 0; i < chunk.Len(); i, row = i+1, row+1 {
			if chunk.IsNull(i) {
				if !field.Nullable {
					return nil, fmt.Errorf("row %d: column %q: %w", row, field.Name, tableops.ErrNullValue)
				}
				bldr.AppendNull()
				continue
			}
			if err := appendValue(bldr, chunk, i); err != nil {
				return nil, fmt.Errorf("column %q: %w", field.Name, err)
			}
		}
	}

	return bldr.NewArray(), nil
}

func appendValue(bldr array.Builder, src arrow.Array, i int) error {
	switch b := bldr.(type) {
	case *array.Int64Builder:
		switch s := src.(type) {
		case *array.Int64:
			b.Append(s.Value(i))
		case *array.Int32:
			b.Append(int64(s.Value(i)))
		case *array.Int16:
			b.Append(int64(s.Value(i)))
		case *array.Int8:
			b.Append(int64(s.Value(i)))
		case *array.Uint32:
			b.Append(int64(s.Value(i)))
		default:
			return fmt.Errorf("cannot convert %s to int64", src.DataType())
		}
	case *array.StringBuilder:
		switch s := src.(type) {
		case *array.String:
			b.Append(s.Value(i))
		case *array.LargeString:
			b.Append(s.Value(i))
		default:
			return fmt.Errorf("cannot convert %s to string", src.DataType())
		}
	case *array.TimestampBuilder:
		s, ok := src.(*array.Timestamp)
		if !ok {
			return fmt.Errorf("cannot convert %s to timestamp", src.DataType())
		}
		srcUnit := s.DataType().(*arrow.TimestampType).Unit
		dstUnit := b.Type().(*arrow.TimestampType).Unit
		ts, err := arrow.TimestampFromTime(s.Value(i).ToTime(srcUnit), dstUnit)
		if err != nil {
			return err
		}
		b.Append(ts)
	default:
		return fmt.Errorf("unsupported target type %s", bldr.Type())
	}
	return nil
}
