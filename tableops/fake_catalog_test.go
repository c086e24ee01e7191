package tableops

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/apache/iceberg-go"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
	iceio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
)

type commit struct {
	reqs    []table.Requirement
	updates []table.Update
}

// fakeCatalog keeps table metadata in memory. Data files go through fs, which is
// nil for catalogs that never write data.
type fakeCatalog struct {
	mu sync.Mutex

	warehouse string
	fs        iceio.IO

	namespaces map[string]bool
	tables     map[string]*table.Table

	createTableCalls int
	createNSCalls    int
	commits          []commit

	checkTableErr error
	createNSErr   error
	createErr     error
	commitErr     error
	// hideTables makes CheckTableExists report false even for known tables
	hideTables bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		warehouse:  "s3://warehouse",
		namespaces: map[string]bool{},
		tables:     map[string]*table.Table{},
	}
}

// newLocalCatalog returns a fake catalog whose tables live in a temporary
// directory, so appends and scans work
func newLocalCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	cat := newFakeCatalog()
	cat.warehouse = t.TempDir()
	cat.fs = iceio.LocalFS{}
	return cat
}

func identKey(ident table.Identifier) string {
	return strings.Join(ident, ".")
}

func (f *fakeCatalog) CheckNamespaceExists(_ context.Context, namespace table.Identifier) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.namespaces[identKey(namespace)], nil
}

func (f *fakeCatalog) CreateNamespace(_ context.Context, namespace table.Identifier, _ iceberg.Properties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createNSCalls++
	if f.createNSErr != nil {
		return f.createNSErr
	}
	if f.namespaces[identKey(namespace)] {
		return icebergcatalog.ErrNamespaceAlreadyExists
	}
	f.namespaces[identKey(namespace)] = true
	return nil
}

func (f *fakeCatalog) CheckTableExists(_ context.Context, identifier table.Identifier) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkTableErr != nil {
		return false, f.checkTableErr
	}
	if f.hideTables {
		return false, nil
	}
	_, ok := f.tables[identKey(identifier)]
	return ok, nil
}

func (f *fakeCatalog) CreateTable(_ context.Context, identifier table.Identifier, schema *iceberg.Schema, _ ...icebergcatalog.CreateTableOpt) (*table.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createTableCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.tables[identKey(identifier)]; ok {
		return nil, icebergcatalog.ErrTableAlreadyExists
	}

	tbl, err := f.newTable(identifier, schema, 0)
	if err != nil {
		return nil, err
	}
	f.tables[identKey(identifier)] = tbl
	return tbl, nil
}

func (f *fakeCatalog) LoadTable(_ context.Context, identifier table.Identifier, _ iceberg.Properties) (*table.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tbl, ok := f.tables[identKey(identifier)]
	if !ok {
		return nil, icebergcatalog.ErrNoSuchTable
	}
	return tbl, nil
}

func (f *fakeCatalog) CommitTable(_ context.Context, tbl *table.Table, reqs []table.Requirement, updates []table.Update) (table.Metadata, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return nil, "", f.commitErr
	}

	current, ok := f.tables[identKey(tbl.Identifier())]
	if !ok {
		return nil, "", icebergcatalog.ErrNoSuchTable
	}
	for _, req := range reqs {
		if err := req.Validate(current.Metadata()); err != nil {
			return nil, "", err
		}
	}

	bldr, err := table.MetadataBuilderFromBase(current.Metadata())
	if err != nil {
		return nil, "", err
	}
	for _, u := range updates {
		if err := u.Apply(bldr); err != nil {
			return nil, "", fmt.Errorf("%s: %w", u.Action(), err)
		}
	}
	meta, err := bldr.Build()
	if err != nil {
		return nil, "", err
	}

	f.commits = append(f.commits, commit{reqs: reqs, updates: updates})
	metaLoc := fmt.Sprintf("%s/metadata/%05d.metadata.json", meta.Location(), len(f.commits))
	f.tables[identKey(tbl.Identifier())] = table.New(tbl.Identifier(), meta, metaLoc, f.fs, f)
	return meta, metaLoc, nil
}

func (f *fakeCatalog) newTable(identifier table.Identifier, schema *iceberg.Schema, version int) (*table.Table, error) {
	location := f.warehouse + "/" + strings.Join(identifier, "/")
	meta, err := table.NewMetadata(schema, iceberg.UnpartitionedSpec, table.UnsortedSortOrder, location,
		iceberg.Properties{"format-version": "2"})
	if err != nil {
		return nil, err
	}
	metaLoc := fmt.Sprintf("%s/metadata/%05d.metadata.json", location, version)
	return table.New(identifier, meta, metaLoc, f.fs, f), nil
}
