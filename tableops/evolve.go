package tableops

import (
	"errors"
	"fmt"

	"github.com/apache/iceberg-go"
)

var (
	// ErrColumnExists is returned when an added column clashes with an existing one
	ErrColumnExists = errors.New("column already exists")
	// ErrIncompatibleChange is returned for changes existing data cannot satisfy
	ErrIncompatibleChange = errors.New("incompatible schema change")
)

type addedColumn struct {
	name     string
	typ      iceberg.Type
	required bool
	doc      string
}

// SchemaUpdate collects additive schema changes. It is handed to the function passed
// to Handle.UpdateSchema and applied only when that function returns nil.
type SchemaUpdate struct {
	adds []addedColumn
}

// AddColumn queues a new top-level column
func (u *SchemaUpdate) AddColumn(name string, typ iceberg.Type, required bool, doc string) *SchemaUpdate {
	u.adds = append(u.adds, addedColumn{name: name, typ: typ, required: required, doc: doc})
	return u
}

// Empty reports whether no change was queued
func (u *SchemaUpdate) Empty() bool {
	return len(u.adds) == 0
}

// Apply computes the schema that results from the queued changes on top of base.
// The result carries schemaID and new fields get ids above lastColumnID. changed is
// false when every queued column already exists with the same type and optionality.
func (u *SchemaUpdate) Apply(base *iceberg.Schema, schemaID, lastColumnID int) (result *iceberg.Schema, newLastColumnID int, changed bool, err error) {
	fields := append([]iceberg.NestedField(nil), base.Fields()...)
	newLastColumnID = lastColumnID
	seen := make(map[string]bool, len(u.adds))

	for _, add := range u.adds {
		if add.name == "" {
			return nil, 0, false, fmt.Errorf("column name cannot be empty")
		}
		if add.typ == nil {
			return nil, 0, false, fmt.Errorf("column %q has no type", add.name)
		}
		if seen[add.name] {
			return nil, 0, false, fmt.Errorf("column %q added twice: %w", add.name, ErrColumnExists)
		}
		seen[add.name] = true

		if existing, ok := base.FindFieldByName(add.name); ok {
			if existing.Type.Equals(add.typ) && existing.Required == add.required {
				continue
			}
			return nil, 0, false, fmt.Errorf("column %q (%s): %w", add.name, existing.Type, ErrColumnExists)
		}

		if add.required {
			return nil, 0, false, fmt.Errorf("cannot add required column %q without a default: %w", add.name, ErrIncompatibleChange)
		}

		newLastColumnID++
		fields = append(fields, iceberg.NestedField{
			ID:       newLastColumnID,
			Name:     add.name,
			Type:     add.typ,
			Required: false,
			Doc:      add.doc,
		})
		changed = true
	}

	if !changed {
		return base, lastColumnID, false, nil
	}

	return iceberg.NewSchemaWithIdentifiers(schemaID, base.IdentifierFieldIDs, fields...), newLastColumnID, true, nil
}
