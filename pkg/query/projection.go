// Package query builds parameterized SELECT statements over a projected
// table.
package query

import "strings"

// Projection maps field names to alias-qualified columns of one table.
type Projection struct {
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjection starts a projection over table with alias.
func NewProjection(table, alias string) *Projection {
	return &Projection{
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps field to column.
func (p *Projection) Project(column, field string) *Projection {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.order = append(p.order, qualified)
	return p
}

// From returns "table alias".
func (p *Projection) From() string {
	return p.table + " " + p.alias
}

// Column returns the qualified column for field. Unknown fields panic so
// a typo cannot reach SQL.
func (p *Projection) Column(field string) string {
	col, ok := p.columns[field]
	if !ok {
		panic("query: unknown field " + field)
	}
	return col
}

// Columns returns the projected columns in declaration order.
func (p *Projection) Columns() string {
	return strings.Join(p.order, ", ")
}
