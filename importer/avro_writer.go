package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/TFMV/icetour/tableops"
	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"
)

// RowsAvroSchema is the Avro schema of rows files accepted by append --from
const RowsAvroSchema = `{
	"type": "record",
	"name": "Row",
	"namespace": "icetour",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-micros"}}
	]
}`

type avroRow struct {
	ID        int64     `avro:"id"`
	Name      string    `avro:"name"`
	CreatedAt time.Time `avro:"created_at"`
}

// WriteAvroRows writes rows as an Avro object container file. Every row must have
// all three values set.
func WriteAvroRows(w io.Writer, rows []tableops.Row) error {
	schema, err := avro.Parse(RowsAvroSchema)
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	enc, err := ocf.NewEncoder(schema.String(), w, ocf.WithCodec(ocf.Deflate))
	if err != nil {
		return fmt.Errorf("failed to create OCF writer: %w", err)
	}

	for i, row := range rows {
		if row.ID == nil || row.Name == nil || row.CreatedAt == nil {
			return fmt.Errorf("row %d: %w", i, tableops.ErrNullValue)
		}
		rec := avroRow{ID: *row.ID, Name: *row.Name, CreatedAt: row.CreatedAt.UTC()}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}

	return enc.Close()
}
