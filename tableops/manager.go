package tableops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apache/iceberg-go"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
	"github.com/apache/iceberg-go/table"
	"go.uber.org/zap"
)

// Catalog is the subset of an iceberg catalog the table operations need
type Catalog interface {
	CheckNamespaceExists(ctx context.Context, namespace table.Identifier) (bool, error)
	CreateNamespace(ctx context.Context, namespace table.Identifier, props iceberg.Properties) error
	CheckTableExists(ctx context.Context, identifier table.Identifier) (bool, error)
	CreateTable(ctx context.Context, identifier table.Identifier, schema *iceberg.Schema, opts ...icebergcatalog.CreateTableOpt) (*table.Table, error)
	LoadTable(ctx context.Context, identifier table.Identifier, props iceberg.Properties) (*table.Table, error)
	CommitTable(ctx context.Context, tbl *table.Table, reqs []table.Requirement, updates []table.Update) (table.Metadata, string, error)
}

// Manager creates and opens tables through a catalog
type Manager struct {
	catalog   Catalog
	logger    *zap.Logger
	now       func() time.Time
	batchSize int64
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for table operations
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp snapshots
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithBatchSize sets the number of rows per written batch
func WithBatchSize(n int64) Option {
	return func(m *Manager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// NewManager creates a new table manager
func NewManager(cat Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:   cat,
		logger:    zap.NewNop(),
		now:       time.Now,
		batchSize: 1000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureTable opens the table, creating it and its namespace first when absent.
// created reports whether this call created the table. A table created concurrently
// by someone else counts as existing.
func (m *Manager) EnsureTable(ctx context.Context, ident table.Identifier, schema *iceberg.Schema, props iceberg.Properties) (h *Handle, created bool, err error) {
	if len(ident) < 2 {
		return nil, false, fmt.Errorf("table identifier %v must include a namespace", ident)
	}

	namespace := icebergcatalog.NamespaceFromIdent(ident)
	if err := m.ensureNamespace(ctx, namespace); err != nil {
		return nil, false, err
	}

	exists, err := m.catalog.CheckTableExists(ctx, ident)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check table existence: %w", err)
	}
	if exists {
		m.logger.Debug("table already exists", zap.Strings("table", ident))
		h, err := m.Open(ctx, ident)
		return h, false, err
	}

	tbl, err := m.catalog.CreateTable(ctx, ident, schema, icebergcatalog.WithProperties(props))
	switch {
	case errors.Is(err, icebergcatalog.ErrTableAlreadyExists):
		m.logger.Debug("table created concurrently", zap.Strings("table", ident))
		h, err := m.Open(ctx, ident)
		return h, false, err
	case err != nil:
		return nil, false, fmt.Errorf("failed to create table: %w", err)
	}

	m.logger.Info("created table",
		zap.Strings("table", ident),
		zap.String("location", tbl.Location()))

	return m.newHandle(tbl), true, nil
}

func (m *Manager) ensureNamespace(ctx context.Context, namespace table.Identifier) error {
	exists, err := m.catalog.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to check namespace existence: %w", err)
	}
	if exists {
		return nil
	}

	err = m.catalog.CreateNamespace(ctx, namespace, nil)
	if err != nil && !errors.Is(err, icebergcatalog.ErrNamespaceAlreadyExists) {
		return fmt.Errorf("failed to create namespace: %w", err)
	}
	if err == nil {
		m.logger.Info("created namespace", zap.Strings("namespace", namespace))
	}
	return nil
}

// Open loads an existing table
func (m *Manager) Open(ctx context.Context, ident table.Identifier) (*Handle, error) {
	tbl, err := m.catalog.LoadTable(ctx, ident, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	return m.newHandle(tbl), nil
}

func (m *Manager) newHandle(tbl *table.Table) *Handle {
	return &Handle{
		tbl:       tbl,
		catalog:   m.catalog,
		logger:    m.logger,
		now:       m.now,
		batchSize: m.batchSize,
	}
}
