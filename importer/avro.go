package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/TFMV/icetour/tableops"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hamba/avro/v2/ocf"
)

// avroRecord is the decode target for rows files. Fields are pointers so a missing
// or null value reaches Conform as a null instead of a zero value.
type avroRecord struct {
	ID        *int64     `avro:"id"`
	Name      *string    `avro:"name"`
	CreatedAt *time.Time `avro:"created_at"`
}

// avroReadSchema is the shape decoded rows take before they are conformed to the
// table schema
var avroReadSchema = arrow.NewSchema([]arrow.Field{
	{Name: tableops.ColumnID, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: tableops.ColumnName, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: tableops.ColumnCreatedAt, Type: tableops.TimestampType, Nullable: true},
}, nil)

// AvroReader reads Avro object container files with columns id, name and created_at
type AvroReader struct {
	allocator memory.Allocator
}

// Read decodes every record of the Avro file. Fields other than id, name and
// created_at are skipped.
func (a *AvroReader) Read(ctx context.Context, path string) (arrow.Table, error) {
	f, err := os.Open(localPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create avro reader: %w", err)
	}

	var rows []tableops.Row
	for dec.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec avroRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", len(rows), err)
		}
		rows = append(rows, tableops.Row{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt})
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("failed to read avro records: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no records found in Avro file")
	}

	return tableops.NewRecordBatch(a.allocator, avroReadSchema, rows)
}
