// Package catalog is the engine's table, column and index registry. The
// planner consults it to resolve sort columns to table attributes and to
// fetch the type metadata execution needs.
package catalog

import (
	"fmt"

	"skipdb/pkg/index"
	"skipdb/pkg/storage"
	"skipdb/pkg/types"
)

// ColumnMeta is the attribute metadata planning materializes into a plan so
// execution never re-consults the catalog.
type ColumnMeta struct {
	// AttrNum is the column's position in the table schema.
	AttrNum int
	Name    string
	Type    types.Type
	// ByVal reports whether values are stored inline; reference-typed
	// values must be copied by anyone keeping them across rows.
	ByVal bool
	// StorageLen is the serialized size in bytes.
	StorageLen uint32
}

// SystemCatalog tracks registered tables and their indexes.
type SystemCatalog struct {
	tables  map[string]*storage.MemTable
	indexes map[string]index.OrderedIndex   // by index name
	byTable map[string][]index.OrderedIndex // by table name
}

func NewSystemCatalog() *SystemCatalog {
	return &SystemCatalog{
		tables:  make(map[string]*storage.MemTable),
		indexes: make(map[string]index.OrderedIndex),
		byTable: make(map[string][]index.OrderedIndex),
	}
}

func (sc *SystemCatalog) RegisterTable(t *storage.MemTable) error {
	if _, exists := sc.tables[t.Name()]; exists {
		return fmt.Errorf("table %s already registered", t.Name())
	}
	sc.tables[t.Name()] = t
	return nil
}

func (sc *SystemCatalog) RegisterIndex(idx index.OrderedIndex) error {
	meta := idx.Meta()
	if _, exists := sc.indexes[meta.Name]; exists {
		return fmt.Errorf("index %s already registered", meta.Name)
	}
	if _, exists := sc.tables[meta.Table]; !exists {
		return fmt.Errorf("index %s references unknown table %s", meta.Name, meta.Table)
	}
	sc.indexes[meta.Name] = idx
	sc.byTable[meta.Table] = append(sc.byTable[meta.Table], idx)
	return nil
}

func (sc *SystemCatalog) GetTable(name string) (*storage.MemTable, error) {
	t, ok := sc.tables[name]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", name)
	}
	return t, nil
}

func (sc *SystemCatalog) GetIndex(name string) (index.OrderedIndex, error) {
	idx, ok := sc.indexes[name]
	if !ok {
		return nil, fmt.Errorf("index not found: %s", name)
	}
	return idx, nil
}

// IndexesFor returns all indexes registered on a table.
func (sc *SystemCatalog) IndexesFor(table string) []index.OrderedIndex {
	return sc.byTable[table]
}

// AttributeMeta resolves a table attribute to its metadata.
func (sc *SystemCatalog) AttributeMeta(table string, attrNum int) (ColumnMeta, error) {
	t, err := sc.GetTable(table)
	if err != nil {
		return ColumnMeta{}, err
	}

	td := t.GetTupleDesc()
	typ, err := td.TypeAtIndex(attrNum)
	if err != nil {
		return ColumnMeta{}, fmt.Errorf("table %s: %w", table, err)
	}
	name, _ := td.GetFieldName(attrNum)

	return ColumnMeta{
		AttrNum:    attrNum,
		Name:       name,
		Type:       typ,
		ByVal:      typ.PassByValue(),
		StorageLen: typ.StorageSize(),
	}, nil
}
