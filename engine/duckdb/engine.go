package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TFMV/icetour/config"
	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/fs/minio"
	"github.com/TFMV/icetour/tableops"
	"github.com/apache/iceberg-go/table"
	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"
)

// SecretName is the DuckDB secret holding the warehouse credentials
const SecretName = "icetour_s3"

// Engine runs SQL over Iceberg tables using DuckDB's iceberg extension
type Engine struct {
	db               *sql.DB
	s3               *config.S3Config
	config           *EngineConfig
	logger           *zap.Logger
	metrics          *EngineMetrics
	mutex            sync.Mutex
	extensionsLoaded bool
}

// EngineConfig holds configuration options for the engine
type EngineConfig struct {
	MaxMemoryMB     int
	QueryTimeoutSec int
	MaxRows         int64
}

// EngineMetrics tracks query counters
type EngineMetrics struct {
	QueriesExecuted  int64
	TablesRegistered int64
	ErrorCount       int64
	TotalQueryTime   time.Duration
	mu               sync.RWMutex
}

// QueryResult represents the result of a SQL query
type QueryResult struct {
	Columns   []string
	Rows      [][]interface{}
	RowCount  int64
	Truncated bool
	Duration  time.Duration
	QueryID   string
}

// DefaultEngineConfig returns a default configuration for the engine
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxMemoryMB:     512,
		QueryTimeoutSec: 300,
		MaxRows:         100000,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig overrides the engine configuration
func WithConfig(cfg *EngineConfig) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.config = cfg
		}
	}
}

// NewEngine opens an in-memory DuckDB database. The httpfs and iceberg extensions
// and the S3 secret are set up on the first RegisterTable call.
func NewEngine(s3 *config.S3Config, opts ...Option) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DuckDB: %w", err)
	}

	// Views, secrets and loaded extensions live on a single in-memory connection.
	db.SetMaxOpenConns(1)

	e := &Engine{
		db:      db,
		s3:      s3,
		config:  DefaultEngineConfig(),
		logger:  zap.NewNop(),
		metrics: &EngineMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}

	settings := []string{"SET enable_progress_bar = false"}
	if e.config.MaxMemoryMB > 0 {
		settings = append(settings, fmt.Sprintf("SET memory_limit = '%dMB'", e.config.MaxMemoryMB))
	}
	for _, stmt := range settings {
		if _, err := e.db.Exec(stmt); err != nil {
			e.logger.Warn("failed to apply setting", zap.String("statement", stmt), zap.Error(err))
		}
	}

	return e, nil
}

// loadExtensions installs and loads httpfs and iceberg and creates the S3 secret
func (e *Engine) loadExtensions(ctx context.Context) error {
	if e.extensionsLoaded {
		return nil
	}

	for _, ext := range []string{"httpfs", "iceberg"} {
		if _, err := e.db.ExecContext(ctx, "INSTALL "+ext); err != nil {
			e.logger.Debug("extension install failed, trying to load an existing copy",
				zap.String("extension", ext), zap.Error(err))
		}
		if _, err := e.db.ExecContext(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load required %s extension: %w", ext, err)
		}
		e.logger.Debug("extension loaded", zap.String("extension", ext))
	}

	if e.s3 != nil {
		stmt, err := SecretSQL(e.s3)
		if err != nil {
			return err
		}
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create S3 secret: %w", err)
		}
	}

	e.extensionsLoaded = true
	return nil
}

// SecretSQL builds the CREATE SECRET statement that lets DuckDB read the warehouse
func SecretSQL(s3 *config.S3Config) (string, error) {
	host, secure, err := minio.ParseEndpoint(s3.Endpoint)
	if err != nil {
		return "", err
	}

	urlStyle := "vhost"
	if s3.PathStyleAccess {
		urlStyle = "path"
	}

	parts := []string{
		"TYPE S3",
		"KEY_ID " + quoteLiteral(s3.AccessKeyID),
		"SECRET " + quoteLiteral(s3.SecretAccessKey),
		"ENDPOINT " + quoteLiteral(host),
		"URL_STYLE " + quoteLiteral(urlStyle),
		fmt.Sprintf("USE_SSL %t", secure),
	}
	if s3.Region != "" {
		parts = append(parts, "REGION "+quoteLiteral(s3.Region))
	}

	return fmt.Sprintf("CREATE OR REPLACE SECRET %s (%s)", SecretName, strings.Join(parts, ", ")), nil
}

// Close closes the DuckDB connection
func (e *Engine) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// GetMetrics returns a copy of the engine counters
func (e *Engine) GetMetrics() *EngineMetrics {
	e.metrics.mu.RLock()
	defer e.metrics.mu.RUnlock()

	return &EngineMetrics{
		QueriesExecuted:  e.metrics.QueriesExecuted,
		TablesRegistered: e.metrics.TablesRegistered,
		ErrorCount:       e.metrics.ErrorCount,
		TotalQueryTime:   e.metrics.TotalQueryTime,
	}
}

// ExecuteQuery executes a SQL query and returns the results
func (e *Engine) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.metrics.mu.Lock()
	queryID := fmt.Sprintf("query_%d", e.metrics.QueriesExecuted)
	e.metrics.QueriesExecuted++
	e.metrics.mu.Unlock()

	if e.config.QueryTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.config.QueryTimeoutSec)*time.Second)
		defer cancel()
	}

	e.logger.Debug("executing query", zap.String("query_id", queryID), zap.String("sql", query))
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		e.incrementErrorCount()
		if strings.Contains(err.Error(), "does not exist") {
			return nil, fmt.Errorf("table not found in query [%s]. Use 'SHOW TABLES' to see available tables: %w", queryID, err)
		}
		return nil, fmt.Errorf("failed to execute query [%s]: %w", queryID, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		e.incrementErrorCount()
		return nil, fmt.Errorf("failed to get columns for query [%s]: %w", queryID, err)
	}

	result := &QueryResult{Columns: columns, QueryID: queryID}
	for rows.Next() {
		if e.config.MaxRows > 0 && result.RowCount >= e.config.MaxRows {
			result.Truncated = true
			e.logger.Warn("query result truncated", zap.String("query_id", queryID), zap.Int64("max_rows", e.config.MaxRows))
			break
		}

		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			e.incrementErrorCount()
			return nil, fmt.Errorf("failed to scan row %d in query [%s]: %w", result.RowCount, queryID, err)
		}

		result.Rows = append(result.Rows, values)
		result.RowCount++
	}

	if err := rows.Err(); err != nil {
		e.incrementErrorCount()
		return nil, fmt.Errorf("error iterating rows in query [%s]: %w", queryID, err)
	}

	result.Duration = time.Since(start)

	e.metrics.mu.Lock()
	e.metrics.TotalQueryTime += result.Duration
	e.metrics.mu.Unlock()

	e.logger.Debug("query complete",
		zap.String("query_id", queryID),
		zap.Int64("rows", result.RowCount),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// RegisterTable exposes a table's current snapshot as a view named after the
// identifier joined with underscores, plus an alias named after the last component.
// It returns the view name.
func (e *Engine) RegisterTable(ctx context.Context, identifier table.Identifier, metadataLocation string) (string, error) {
	if len(identifier) == 0 {
		return "", fmt.Errorf("table identifier cannot be empty")
	}
	if metadataLocation == "" {
		return "", fmt.Errorf("table %s has no metadata location", strings.Join(identifier, "."))
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if err := e.loadExtensions(ctx); err != nil {
		e.incrementErrorCount()
		return "", err
	}

	tableName := IdentifierToTableName(identifier)
	if _, err := e.db.ExecContext(ctx, RegisterViewSQL(tableName, metadataLocation)); err != nil {
		e.incrementErrorCount()
		return "", fmt.Errorf("failed to register table %s: %w", tableName, err)
	}

	simpleTableName := identifier[len(identifier)-1]
	if simpleTableName != tableName {
		aliasSQL := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM %s",
			quoteName(simpleTableName), quoteName(tableName))
		if _, err := e.db.ExecContext(ctx, aliasSQL); err != nil {
			e.logger.Warn("could not create table alias",
				zap.String("alias", simpleTableName), zap.String("table", tableName), zap.Error(err))
		}
	}

	e.metrics.mu.Lock()
	e.metrics.TablesRegistered++
	e.metrics.mu.Unlock()

	e.logger.Debug("registered table", zap.String("table", tableName), zap.String("metadata", metadataLocation))
	return tableName, nil
}

// RegisterViewSQL builds the view definition reading a table through iceberg_scan
func RegisterViewSQL(viewName, metadataLocation string) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM iceberg_scan(%s)",
		quoteName(viewName), quoteLiteral(metadataLocation))
}

// ListTables returns the names of all registered tables and views
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	rows, err := e.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// ToTableData converts a query result for rendering
func (r *QueryResult) ToTableData() display.TableData {
	data := display.TableData{
		Headers: r.Columns,
		Rows:    make([][]interface{}, len(r.Rows)),
	}
	for i, row := range r.Rows {
		out := make([]interface{}, len(row))
		for j, v := range row {
			switch val := v.(type) {
			case []byte:
				out[j] = string(val)
			case time.Time:
				out[j] = val.UTC().Format(tableops.TimestampLayout)
			default:
				out[j] = val
			}
		}
		data.Rows[i] = out
	}
	return data
}

func (e *Engine) incrementErrorCount() {
	e.metrics.mu.Lock()
	e.metrics.ErrorCount++
	e.metrics.mu.Unlock()
}

// IdentifierToTableName converts a table identifier to a SQL-safe table name
func IdentifierToTableName(identifier table.Identifier) string {
	return strings.Join(identifier, "_")
}

// quoteName quotes a SQL identifier
func quoteName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
