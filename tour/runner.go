// Package tour runs the bootstrap-and-demo routine against a table: create it if
// absent, append two rows, print the contents and add a deleted_at column.
package tour

import (
	"context"
	"fmt"
	"time"

	"github.com/TFMV/icetour/display"
	"github.com/TFMV/icetour/tableops"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"go.uber.org/zap"
)

// ScanTitle is printed above the scanned table
const ScanTitle = "Table contents:"

// Column describes a column added by the evolve step
type Column struct {
	Name     string
	Type     iceberg.Type
	Required bool
	Doc      string
}

// DeletedAtColumn is the column the tour adds to the table
func DeletedAtColumn() Column {
	return Column{Name: tableops.ColumnDeletedAt, Type: iceberg.PrimitiveTypes.Timestamp}
}

// DemoRows returns the two rows the tour appends
func DemoRows(now time.Time) []tableops.Row {
	return []tableops.Row{
		tableops.NewRow(1, "Example 1", now),
		tableops.NewRow(2, "Example 2", now),
	}
}

// Result summarises a tour run
type Result struct {
	Created       bool
	RowsAppended  int64
	RowsScanned   int64
	SchemaEvolved bool
	Schema        *iceberg.Schema
}

// Runner drives the tour against one table
type Runner struct {
	tables  Tables
	ident   table.Identifier
	props   iceberg.Properties
	display display.Display
	logger  *zap.Logger
	now     func() time.Time
	mem     memory.Allocator
}

// Option configures a Runner
type Option func(*Runner)

// WithDisplay sets where the scanned table is printed
func WithDisplay(d display.Display) Option {
	return func(r *Runner) { r.display = d }
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time used for created_at values
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTableProperties sets the properties a newly created table gets
func WithTableProperties(props iceberg.Properties) Option {
	return func(r *Runner) { r.props = props }
}

// WithAllocator sets the Arrow allocator used for row batches
func WithAllocator(mem memory.Allocator) Option {
	return func(r *Runner) {
		if mem != nil {
			r.mem = mem
		}
	}
}

// NewRunner creates a tour runner for the given table
func NewRunner(tables Tables, ident table.Identifier, opts ...Option) *Runner {
	r := &Runner{
		tables: tables,
		ident:  ident,
		props:  iceberg.Properties{"format-version": "2"},
		logger: zap.NewNop(),
		now:    tableops.Now,
		mem:    memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs every step in order and stops at the first failure. The returned
// error is a *StepError naming the failed step.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	tbl, created, err := r.Create(ctx)
	if err != nil {
		return res, err
	}
	res.Created = created

	res.RowsAppended, err = r.appendRows(ctx, tbl, DemoRows(r.now()))
	if err != nil {
		return res, err
	}

	data, err := r.scan(ctx, tbl)
	if err != nil {
		return res, err
	}
	res.RowsScanned = data.NumRows()
	err = r.print(data)
	data.Release()
	if err != nil {
		return res, stepErr(StepScan, err)
	}

	res.SchemaEvolved, err = r.evolve(ctx, tbl, DeletedAtColumn())
	if err != nil {
		return res, err
	}
	res.Schema = tbl.Schema()

	r.logger.Info("tour complete",
		zap.Bool("created", res.Created),
		zap.Int64("appended", res.RowsAppended),
		zap.Int64("scanned", res.RowsScanned),
		zap.Bool("evolved", res.SchemaEvolved))

	return res, nil
}

// Create makes sure the table exists with the demo schema
func (r *Runner) Create(ctx context.Context) (Table, bool, error) {
	tbl, created, err := r.tables.EnsureTable(ctx, r.ident, tableops.DemoSchema(), r.props)
	if err != nil {
		return nil, false, stepErr(StepCreate, err)
	}
	if created {
		r.logger.Info("table created", zap.Strings("table", r.ident))
	} else {
		r.logger.Info("table already exists", zap.Strings("table", r.ident))
	}
	return tbl, created, nil
}

// Append validates rows and appends them to the table
func (r *Runner) Append(ctx context.Context, rows []tableops.Row) (int64, error) {
	tbl, err := r.open(ctx, StepAppend)
	if err != nil {
		return 0, err
	}
	return r.appendRows(ctx, tbl, rows)
}

// AppendData appends an already built Arrow table
func (r *Runner) AppendData(ctx context.Context, data arrow.Table) (int64, error) {
	tbl, err := r.open(ctx, StepAppend)
	if err != nil {
		return 0, err
	}
	if err := tbl.Append(ctx, data); err != nil {
		return 0, stepErr(StepAppend, err)
	}
	return data.NumRows(), nil
}

// Scan reads the full table. The caller must Release the result.
func (r *Runner) Scan(ctx context.Context) (arrow.Table, error) {
	tbl, err := r.open(ctx, StepScan)
	if err != nil {
		return nil, err
	}
	return r.scan(ctx, tbl)
}

// Evolve adds col to the table schema. Adding a column that already exists with the
// same type is a no-op reported as changed=false.
func (r *Runner) Evolve(ctx context.Context, col Column) (changed bool, schema *iceberg.Schema, err error) {
	tbl, err := r.open(ctx, StepEvolve)
	if err != nil {
		return false, nil, err
	}
	changed, err = r.evolve(ctx, tbl, col)
	if err != nil {
		return false, nil, err
	}
	return changed, tbl.Schema(), nil
}

func (r *Runner) open(ctx context.Context, step Step) (Table, error) {
	tbl, err := r.tables.Open(ctx, r.ident)
	if err != nil {
		return nil, stepErr(step, err)
	}
	return tbl, nil
}

func (r *Runner) appendRows(ctx context.Context, tbl Table, rows []tableops.Row) (int64, error) {
	data, err := tableops.NewRecordBatch(r.mem, tableops.AppendSchema(), rows)
	if err != nil {
		return 0, stepErr(StepAppend, err)
	}
	defer data.Release()

	if err := tbl.Append(ctx, data); err != nil {
		return 0, stepErr(StepAppend, err)
	}
	return data.NumRows(), nil
}

func (r *Runner) scan(ctx context.Context, tbl Table) (arrow.Table, error) {
	data, err := tbl.Scan(ctx)
	if err != nil {
		return nil, stepErr(StepScan, err)
	}
	r.logger.Debug("scanned table", zap.Int64("rows", data.NumRows()))
	return data, nil
}

func (r *Runner) print(data arrow.Table) error {
	if r.display == nil {
		return nil
	}
	return r.display.Table(tableops.ToTableData(data)).WithTitle(ScanTitle).Render()
}

func (r *Runner) evolve(ctx context.Context, tbl Table, col Column) (bool, error) {
	if col.Type == nil {
		return false, stepErr(StepEvolve, fmt.Errorf("column %q has no type", col.Name))
	}

	changed, err := tbl.UpdateSchema(ctx, func(u *tableops.SchemaUpdate) error {
		u.AddColumn(col.Name, col.Type, col.Required, col.Doc)
		return nil
	})
	if err != nil {
		return false, stepErr(StepEvolve, err)
	}
	if !changed {
		r.logger.Info("column already present", zap.String("column", col.Name))
	}
	return changed, nil
}
