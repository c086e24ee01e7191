package tableops

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordBatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	now := time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.UTC)
	rows := []Row{
		NewRow(1, "Example 1", now),
		NewRow(2, "Example 2", now),
	}

	tbl, err := NewRecordBatch(mem, AppendSchema(), rows)
	require.NoError(t, err)
	defer tbl.Release()

	assert.Equal(t, int64(2), tbl.NumRows())
	assert.Equal(t, int64(3), tbl.NumCols())
	assert.True(t, tbl.Schema().Equal(AppendSchema()))

	ids := tbl.Column(0).Data().Chunk(0).(*array.Int64)
	assert.Equal(t, []int64{1, 2}, ids.Int64Values())

	names := tbl.Column(1).Data().Chunk(0).(*array.String)
	assert.Equal(t, "Example 1", names.Value(0))
	assert.Equal(t, "Example 2", names.Value(1))

	ts := tbl.Column(2).Data().Chunk(0).(*array.Timestamp)
	assert.True(t, now.Equal(ts.Value(0).ToTime(arrow.Microsecond)))
}

func TestNewRecordBatchNullableTimestamp(t *testing.T) {
	id, name := int64(7), "no time"
	tbl, err := NewRecordBatch(nil, AppendSchema(), []Row{{ID: &id, Name: &name}})
	require.NoError(t, err)
	defer tbl.Release()

	ts := tbl.Column(2).Data().Chunk(0)
	assert.Equal(t, 1, ts.NullN())
}

func TestNewRecordBatchRejectsNulls(t *testing.T) {
	id, name := int64(1), "x"
	now := time.Now()

	tests := []struct {
		name   string
		row    Row
		column string
	}{
		{name: "null id", row: Row{Name: &name, CreatedAt: &now}, column: "id"},
		{name: "null name", row: Row{ID: &id, CreatedAt: &now}, column: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []Row{NewRow(0, "ok", now), tt.row}
			_, err := NewRecordBatch(nil, AppendSchema(), rows)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNullValue)
			assert.Contains(t, err.Error(), "row 1")
			assert.Contains(t, err.Error(), tt.column)
		})
	}
}

func TestNewRecordBatchUnknownColumn(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "email", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	_, err := NewRecordBatch(nil, schema, []Row{NewRow(1, "a", time.Now())})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestNewRecordBatchEmpty(t *testing.T) {
	tbl, err := NewRecordBatch(nil, AppendSchema(), nil)
	require.NoError(t, err)
	defer tbl.Release()
	assert.Equal(t, int64(0), tbl.NumRows())
}

func TestWallClockKeepsLocalReading(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 5, 1, 14, 30, 0, 0, zone)

	wall := WallClock(local)
	assert.Equal(t, time.UTC, wall.Location())
	assert.Equal(t, "2024-05-01 14:30:00.000000", wall.Format(TimestampLayout))

	tbl, err := NewRecordBatch(nil, AppendSchema(), []Row{NewRow(1, "a", wall)})
	require.NoError(t, err)
	defer tbl.Release()
	assert.Equal(t, "2024-05-01 14:30:00.000000", ToTableData(tbl).Rows[0][2])
}
