package tableops

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
)

// Column names of the tour table
const (
	ColumnID        = "id"
	ColumnName      = "name"
	ColumnCreatedAt = "created_at"
	ColumnDeletedAt = "deleted_at"
)

// TimestampType is the Arrow type used for iceberg timestamp (without zone) columns
var TimestampType = &arrow.TimestampType{Unit: arrow.Microsecond}

// DemoSchema returns the iceberg schema the tour table is created with
func DemoSchema() *iceberg.Schema {
	return iceberg.NewSchema(0,
		iceberg.NestedField{ID: 1, Name: ColumnID, Type: iceberg.PrimitiveTypes.Int64, Required: true},
		iceberg.NestedField{ID: 2, Name: ColumnName, Type: iceberg.PrimitiveTypes.String, Required: true},
		iceberg.NestedField{ID: 3, Name: ColumnCreatedAt, Type: iceberg.PrimitiveTypes.Timestamp, Required: false},
	)
}

// AppendSchema returns the Arrow schema row batches are validated against before an
// append. Nullability mirrors the required flags of DemoSchema.
func AppendSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: ColumnID, Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: ColumnName, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: ColumnCreatedAt, Type: TimestampType, Nullable: true},
	}, nil)
}

// ParseType maps a primitive type name used on the command line to an iceberg type
func ParseType(name string) (iceberg.Type, bool) {
	switch name {
	case "long", "int64", "bigint":
		return iceberg.PrimitiveTypes.Int64, true
	case "int", "int32", "integer":
		return iceberg.PrimitiveTypes.Int32, true
	case "string", "utf8":
		return iceberg.PrimitiveTypes.String, true
	case "timestamp":
		return iceberg.PrimitiveTypes.Timestamp, true
	case "timestamptz":
		return iceberg.PrimitiveTypes.TimestampTz, true
	case "date":
		return iceberg.PrimitiveTypes.Date, true
	case "boolean", "bool":
		return iceberg.PrimitiveTypes.Bool, true
	case "double", "float64":
		return iceberg.PrimitiveTypes.Float64, true
	default:
		return nil, false
	}
}
