// Package storage provides the minimal heap the engine scans over: an
// in-memory table whose rows are addressable by record id.
package storage

import (
	"fmt"

	"skipdb/pkg/tuple"
)

// MemTable is an append-only in-memory table. Indexes reference its rows
// by record id and scans fetch them back with FetchTuple.
type MemTable struct {
	name      string
	tupleDesc *tuple.TupleDescription
	rows      []*tuple.Tuple
}

func NewMemTable(name string, td *tuple.TupleDescription) *MemTable {
	return &MemTable{
		name:      name,
		tupleDesc: td,
	}
}

func (mt *MemTable) Name() string {
	return mt.name
}

func (mt *MemTable) GetTupleDesc() *tuple.TupleDescription {
	return mt.tupleDesc
}

// Insert appends a row and returns its record id.
func (mt *MemTable) Insert(tup *tuple.Tuple) (int, error) {
	if !tup.TupleDesc.Equals(mt.tupleDesc) {
		return -1, fmt.Errorf("tuple schema does not match table %s", mt.name)
	}

	rid := len(mt.rows)
	tup.RecordID = rid
	mt.rows = append(mt.rows, tup)
	return rid, nil
}

// FetchTuple returns the row stored at the given record id.
func (mt *MemTable) FetchTuple(rid int) (*tuple.Tuple, error) {
	if rid < 0 || rid >= len(mt.rows) {
		return nil, fmt.Errorf("record id %d out of bounds [0, %d)", rid, len(mt.rows))
	}
	return mt.rows[rid], nil
}

func (mt *MemTable) NumRows() int {
	return len(mt.rows)
}
