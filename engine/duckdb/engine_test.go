package duckdb

import (
	"context"
	"testing"
	"time"

	"github.com/TFMV/icetour/config"
	"github.com/apache/iceberg-go/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestExecuteQuery(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	result, err := engine.ExecuteQuery(ctx, "SELECT 1 AS test_column, 'hello' AS message")
	require.NoError(t, err)
	assert.Equal(t, []string{"test_column", "message"}, result.Columns)
	assert.Equal(t, int64(1), result.RowCount)
	assert.False(t, result.Truncated)
	require.Len(t, result.Rows, 1)
	assert.EqualValues(t, 1, result.Rows[0][0])
	assert.Equal(t, "hello", result.Rows[0][1])

	metrics := engine.GetMetrics()
	assert.Equal(t, int64(1), metrics.QueriesExecuted)
	assert.Equal(t, int64(0), metrics.ErrorCount)
}

func TestExecuteQueryTruncates(t *testing.T) {
	engine := newTestEngine(t, WithConfig(&EngineConfig{MaxMemoryMB: 256, MaxRows: 3}))

	result, err := engine.ExecuteQuery(context.Background(), "SELECT * FROM range(10)")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.RowCount)
	assert.True(t, result.Truncated)
}

func TestExecuteQueryMissingTable(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.ExecuteQuery(context.Background(), "SELECT * FROM no_such_table")
	require.Error(t, err)
	assert.Equal(t, int64(1), engine.GetMetrics().ErrorCount)
}

func TestListTables(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	tables, err := engine.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	_, err = engine.ExecuteQuery(ctx, "CREATE VIEW demo AS SELECT 1 AS id")
	require.NoError(t, err)

	tables, err = engine.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, tables)
}

func TestRegisterTableValidation(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.RegisterTable(ctx, nil, "s3://warehouse/t/metadata/v1.metadata.json")
	assert.Error(t, err)

	_, err = engine.RegisterTable(ctx, table.Identifier{"ns", "t"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metadata location")
}

func TestSecretSQL(t *testing.T) {
	stmt, err := SecretSQL(&config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "admin",
		SecretAccessKey: "pass'word",
		PathStyleAccess: true,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE OR REPLACE SECRET icetour_s3 (TYPE S3, KEY_ID 'admin', SECRET 'pass''word', "+
			"ENDPOINT 'localhost:9000', URL_STYLE 'path', USE_SSL false, REGION 'us-east-1')",
		stmt)

	stmt, err = SecretSQL(&config.S3Config{Endpoint: "https://s3.example.com"})
	require.NoError(t, err)
	assert.Contains(t, stmt, "URL_STYLE 'vhost'")
	assert.Contains(t, stmt, "USE_SSL true")
	assert.NotContains(t, stmt, "REGION")

	_, err = SecretSQL(&config.S3Config{})
	assert.Error(t, err)
}

func TestRegisterViewSQL(t *testing.T) {
	assert.Equal(t,
		`CREATE OR REPLACE VIEW "my_namespace_my_table" AS SELECT * FROM iceberg_scan('s3://warehouse/t/metadata/00001.metadata.json')`,
		RegisterViewSQL("my_namespace_my_table", "s3://warehouse/t/metadata/00001.metadata.json"))
	assert.Equal(t, "my_namespace_my_table", IdentifierToTableName(table.Identifier{"my_namespace", "my_table"}))
	assert.Equal(t, `"a""b"`, quoteName(`a"b`))
}

func TestQueryResultToTableData(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	res := &QueryResult{
		Columns: []string{"id", "raw", "at", "missing"},
		Rows:    [][]interface{}{{int64(1), []byte("bytes"), ts, nil}},
	}

	data := res.ToTableData()
	assert.Equal(t, res.Columns, data.Headers)
	assert.Equal(t, []interface{}{int64(1), "bytes", "2024-01-02 03:04:05.000006", nil}, data.Rows[0])
}
