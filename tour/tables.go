package tour

import (
	"context"

	"github.com/TFMV/icetour/tableops"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
)

// Table is an opened table the tour reads, writes and evolves
type Table interface {
	Append(ctx context.Context, data arrow.Table) error
	Scan(ctx context.Context) (arrow.Table, error)
	UpdateSchema(ctx context.Context, fn func(*tableops.SchemaUpdate) error) (bool, error)
	Schema() *iceberg.Schema
}

// Tables creates and opens tables
type Tables interface {
	EnsureTable(ctx context.Context, ident table.Identifier, schema *iceberg.Schema, props iceberg.Properties) (Table, bool, error)
	Open(ctx context.Context, ident table.Identifier) (Table, error)
}

type managerTables struct {
	m *tableops.Manager
}

// FromManager exposes a table manager as Tables
func FromManager(m *tableops.Manager) Tables {
	return managerTables{m: m}
}

func (t managerTables) EnsureTable(ctx context.Context, ident table.Identifier, schema *iceberg.Schema, props iceberg.Properties) (Table, bool, error) {
	h, created, err := t.m.EnsureTable(ctx, ident, schema, props)
	if err != nil {
		return nil, false, err
	}
	return h, created, nil
}

func (t managerTables) Open(ctx context.Context, ident table.Identifier) (Table, error) {
	h, err := t.m.Open(ctx, ident)
	if err != nil {
		return nil, err
	}
	return h, nil
}
