package tableops

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot property keys written with every append
const (
	PropRunID          = "icetour.run-id"
	PropWriteTimestamp = "icetour.write.timestamp"
)

// Handle is an opened table. Operations that commit replace the underlying table
// with the committed version.
type Handle struct {
	tbl       *table.Table
	catalog   Catalog
	logger    *zap.Logger
	now       func() time.Time
	batchSize int64
}

// Table returns the underlying iceberg table
func (h *Handle) Table() *table.Table {
	return h.tbl
}

// Identifier returns the table identifier
func (h *Handle) Identifier() table.Identifier {
	return h.tbl.Identifier()
}

// Schema returns the current table schema
func (h *Handle) Schema() *iceberg.Schema {
	return h.tbl.Schema()
}

// Location returns the table location
func (h *Handle) Location() string {
	return h.tbl.Location()
}

// MetadataLocation returns the location of the current metadata file
func (h *Handle) MetadataLocation() string {
	return h.tbl.MetadataLocation()
}

// Properties returns the table properties
func (h *Handle) Properties() iceberg.Properties {
	return h.tbl.Properties()
}

// Snapshots returns the table snapshots, oldest first
func (h *Handle) Snapshots() []table.Snapshot {
	return h.tbl.Metadata().Snapshots()
}

// Append commits data as a new snapshot. Every snapshot is tagged with a fresh run
// id and the write time.
func (h *Handle) Append(ctx context.Context, data arrow.Table) error {
	if data == nil {
		return fmt.Errorf("no data to append")
	}

	runID := uuid.NewString()
	props := iceberg.Properties{
		PropRunID:          runID,
		PropWriteTimestamp: strconv.FormatInt(h.now().UnixMilli(), 10),
	}

	txn := h.tbl.NewTransaction()
	if err := txn.AppendTable(ctx, data, h.batchSize, props); err != nil {
		return fmt.Errorf("failed to append table: %w", err)
	}

	committed, err := txn.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	h.tbl = committed

	h.logger.Info("appended rows",
		zap.Strings("table", h.Identifier()),
		zap.Int64("rows", data.NumRows()),
		zap.String("run_id", runID))

	return nil
}

// Scan reads the full table contents. The caller must Release the result.
func (h *Handle) Scan(ctx context.Context) (arrow.Table, error) {
	result, err := h.tbl.Scan().ToArrowTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan table: %w", err)
	}
	return result, nil
}

// UpdateSchema runs fn against a new SchemaUpdate and commits the queued changes if
// fn returns nil. An error from fn discards everything it queued. changed is false
// when there was nothing new to commit.
func (h *Handle) UpdateSchema(ctx context.Context, fn func(*SchemaUpdate) error) (changed bool, err error) {
	update := &SchemaUpdate{}
	if err := fn(update); err != nil {
		return false, err
	}
	if update.Empty() {
		return false, nil
	}

	meta := h.tbl.Metadata()
	base := meta.CurrentSchema()

	next := 0
	for _, s := range meta.Schemas() {
		if s.ID >= next {
			next = s.ID + 1
		}
	}

	newSchema, lastColumnID, changed, err := update.Apply(base, next, meta.LastColumnID())
	if err != nil {
		return false, err
	}
	if !changed {
		h.logger.Debug("schema already up to date", zap.Strings("table", h.Identifier()))
		return false, nil
	}

	reqs := []table.Requirement{
		table.AssertTableUUID(meta.TableUUID()),
		table.AssertCurrentSchemaID(base.ID),
		table.AssertLastAssignedFieldID(meta.LastColumnID()),
	}
	updates := []table.Update{
		table.NewAddSchemaUpdate(newSchema, lastColumnID, false),
		table.NewSetCurrentSchemaUpdate(-1),
	}

	if _, _, err := h.catalog.CommitTable(ctx, h.tbl, reqs, updates); err != nil {
		return false, fmt.Errorf("failed to commit schema update: %w", err)
	}

	if err := h.Refresh(ctx); err != nil {
		return true, err
	}

	h.logger.Info("evolved schema",
		zap.Strings("table", h.Identifier()),
		zap.Int("schema_id", h.Schema().ID))

	return true, nil
}

// Refresh reloads the table from the catalog
func (h *Handle) Refresh(ctx context.Context) error {
	tbl, err := h.catalog.LoadTable(ctx, h.tbl.Identifier(), nil)
	if err != nil {
		return fmt.Errorf("failed to reload table: %w", err)
	}
	h.tbl = tbl
	return nil
}
