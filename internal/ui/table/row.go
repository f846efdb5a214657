package table

import (
	"fmt"

	"github.com/imgajeed76/lttable/internal/record"
)

// Cell is one rendered field of a row.
type Cell struct {
	ID    string // row-<identifier>-<field>
	Field string
	Value record.Value
}

// Row is a rendered record, keyed by its identifier value.
type Row struct {
	Key   string
	Cells []Cell
}

// Cell returns the cell for field.
func (r Row) Cell(field string) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Field == field {
			return c, true
		}
	}
	return Cell{}, false
}

// RowIdentifierError is returned when a record lacks the identifier field.
type RowIdentifierError struct {
	Identifier string
	Record     record.Record
}

func (e *RowIdentifierError) Error() string {
	return fmt.Sprintf("row has no identifier field %q: %s", e.Identifier, e.Record)
}

// CellID returns the id of the cell for field in the row keyed by key.
func CellID(key, field string) string {
	return "row-" + key + "-" + field
}

// RenderRow renders rec as one cell per field, in the record's key order.
// A record without the identifier field is rejected before any cell is built.
func RenderRow(rec record.Record, identifier string) (Row, error) {
	id, ok := rec.Get(identifier)
	if !ok {
		return Row{}, &RowIdentifierError{Identifier: identifier, Record: rec}
	}

	key := id.String()
	fields := rec.Fields()
	row := Row{Key: key, Cells: make([]Cell, len(fields))}
	for i, f := range fields {
		row.Cells[i] = Cell{ID: CellID(key, f.Key), Field: f.Key, Value: f.Value}
	}
	return row, nil
}

// renderRows renders every record, stopping at the first failure.
func renderRows(recs []record.Record, identifier string) ([]Row, error) {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		row, err := RenderRow(rec, identifier)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
