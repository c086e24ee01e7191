package tableops

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/TFMV/icetour/display"
	"github.com/apache/iceberg-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestTable(t *testing.T) (*fakeCatalog, *Handle) {
	t.Helper()
	cat := newFakeCatalog()
	h, _, err := NewManager(cat).EnsureTable(context.Background(), testIdent, DemoSchema(), nil)
	require.NoError(t, err)
	return cat, h
}

func addDeletedAt(u *SchemaUpdate) error {
	u.AddColumn(ColumnDeletedAt, iceberg.PrimitiveTypes.Timestamp, false, "")
	return nil
}

func TestUpdateSchemaAddsColumn(t *testing.T) {
	cat, h := openTestTable(t)

	changed, err := h.UpdateSchema(context.Background(), addDeletedAt)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Len(t, cat.commits, 1)
	c := cat.commits[0]
	assert.Len(t, c.reqs, 3)
	require.Len(t, c.updates, 2)
	assert.Equal(t, "add-schema", c.updates[0].Action())
	assert.Equal(t, "set-current-schema", c.updates[1].Action())

	field, ok := h.Schema().FindFieldByName(ColumnDeletedAt)
	require.True(t, ok)
	assert.False(t, field.Required)
	assert.True(t, field.Type.Equals(iceberg.PrimitiveTypes.Timestamp))
	assert.Len(t, h.Schema().Fields(), 4)
}

func TestUpdateSchemaIsIdempotent(t *testing.T) {
	cat, h := openTestTable(t)

	_, err := h.UpdateSchema(context.Background(), addDeletedAt)
	require.NoError(t, err)

	changed, err := h.UpdateSchema(context.Background(), addDeletedAt)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, cat.commits, 1)
}

func TestUpdateSchemaDiscardedOnError(t *testing.T) {
	cat, h := openTestTable(t)
	boom := errors.New("changed my mind")

	changed, err := h.UpdateSchema(context.Background(), func(u *SchemaUpdate) error {
		u.AddColumn(ColumnDeletedAt, iceberg.PrimitiveTypes.Timestamp, false, "")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, changed)
	assert.Empty(t, cat.commits)

	_, ok := h.Schema().FindFieldByName(ColumnDeletedAt)
	assert.False(t, ok)
}

func TestUpdateSchemaRejectsRequiredColumn(t *testing.T) {
	cat, h := openTestTable(t)

	_, err := h.UpdateSchema(context.Background(), func(u *SchemaUpdate) error {
		u.AddColumn("tenant", iceberg.PrimitiveTypes.String, true, "")
		return nil
	})
	assert.ErrorIs(t, err, ErrIncompatibleChange)
	assert.Empty(t, cat.commits)
}

func TestUpdateSchemaAcceptsExistingRequiredColumn(t *testing.T) {
	cat, h := openTestTable(t)

	changed, err := h.UpdateSchema(context.Background(), func(u *SchemaUpdate) error {
		u.AddColumn(ColumnID, iceberg.PrimitiveTypes.Int64, true, "")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, cat.commits)
}

func TestUpdateSchemaCommitFailure(t *testing.T) {
	cat, h := openTestTable(t)
	cat.commitErr = errors.New("requirement failed")

	_, err := h.UpdateSchema(context.Background(), addDeletedAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit schema update")
}

func TestUpdateSchemaEmpty(t *testing.T) {
	cat, h := openTestTable(t)

	changed, err := h.UpdateSchema(context.Background(), func(*SchemaUpdate) error { return nil })
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, cat.commits)
}

func TestHandleAccessors(t *testing.T) {
	_, h := openTestTable(t)

	assert.Equal(t, "s3://warehouse/my_namespace/my_table", h.Location())
	assert.NotEmpty(t, h.MetadataLocation())
	assert.Empty(t, h.Snapshots())
	assert.NotNil(t, h.Table())
}

func TestAppendNilData(t *testing.T) {
	_, h := openTestTable(t)
	assert.Error(t, h.Append(context.Background(), nil))
}

func appendRows(t *testing.T, h *Handle, rows ...Row) {
	t.Helper()
	data, err := NewRecordBatch(nil, AppendSchema(), rows)
	require.NoError(t, err)
	defer data.Release()
	require.NoError(t, h.Append(context.Background(), data))
}

func scanRows(t *testing.T, h *Handle) display.TableData {
	t.Helper()
	result, err := h.Scan(context.Background())
	require.NoError(t, err)
	defer result.Release()
	return ToTableData(result)
}

func TestAppendScanEvolve(t *testing.T) {
	ctx := context.Background()
	cat := newLocalCatalog(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h, created, err := NewManager(cat, WithBatchSize(1), WithClock(func() time.Time { return fixed })).
		EnsureTable(ctx, testIdent, DemoSchema(), nil)
	require.NoError(t, err)
	require.True(t, created)

	appendRows(t, h, NewRow(1, "Example 1", fixed), NewRow(2, "Example 2", fixed))

	snapshots := h.Snapshots()
	require.Len(t, snapshots, 1)
	props := snapshots[0].Summary.Properties
	assert.NotEmpty(t, props[PropRunID])
	assert.Equal(t, strconv.FormatInt(fixed.UnixMilli(), 10), props[PropWriteTimestamp])

	data := scanRows(t, h)
	assert.Equal(t, []string{ColumnID, ColumnName, ColumnCreatedAt}, data.Headers)
	assert.ElementsMatch(t, [][]interface{}{
		{int64(1), "Example 1", "2024-05-01 12:00:00.000000"},
		{int64(2), "Example 2", "2024-05-01 12:00:00.000000"},
	}, data.Rows)

	changed, err := h.UpdateSchema(ctx, addDeletedAt)
	require.NoError(t, err)
	require.True(t, changed)

	appendRows(t, h, NewRow(3, "Example 3", fixed), NewRow(4, "Example 4", fixed))
	require.Len(t, h.Snapshots(), 2)

	reopened, err := NewManager(cat).Open(ctx, testIdent)
	require.NoError(t, err)
	data = scanRows(t, reopened)
	assert.Equal(t, []string{ColumnID, ColumnName, ColumnCreatedAt, ColumnDeletedAt}, data.Headers)
	require.Len(t, data.Rows, 4)
	ids := make([]interface{}, 0, len(data.Rows))
	for _, row := range data.Rows {
		require.Len(t, row, 4)
		assert.Nil(t, row[3])
		ids = append(ids, row[0])
	}
	assert.ElementsMatch(t, []interface{}{int64(1), int64(2), int64(3), int64(4)}, ids)
}
