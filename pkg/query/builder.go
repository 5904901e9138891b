package query

import (
	"fmt"
	"strings"
)

// SortField orders by one projected field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields reads "field,-other" into sort fields. Unknown fields are
// dropped.
func ParseSortFields(s string, p *Projection) []SortField {
	var out []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if _, ok := p.columns[part]; !ok {
			continue
		}
		out = append(out, SortField{Field: part, Descending: desc})
	}
	return out
}

type condition struct {
	clause string
	args   []any
}

// Builder accumulates AND-ed conditions. Clauses use "?" placeholders that
// are numbered $1..$n at build time.
type Builder struct {
	p     *Projection
	conds []condition
	sort  []SortField
}

// NewBuilder starts a query over p ordered by sort.
func NewBuilder(p *Projection, sort ...SortField) *Builder {
	return &Builder{p: p, sort: sort}
}

// WhereEquals adds field = value when value is non-nil.
func WhereEquals[T any](b *Builder, field string, value *T) *Builder {
	if value == nil {
		return b
	}
	b.conds = append(b.conds, condition{b.p.Column(field) + " = ?", []any{*value}})
	return b
}

// WhereIn adds field IN (values) when values is non-empty.
func WhereIn[T any](b *Builder, field string, values []T) *Builder {
	if len(values) == 0 {
		return b
	}
	marks := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		marks[i] = "?"
		args[i] = v
	}
	b.conds = append(b.conds, condition{
		b.p.Column(field) + " IN (" + strings.Join(marks, ", ") + ")",
		args,
	})
	return b
}

// WhereContains adds a case-insensitive substring match when value is set.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	b.conds = append(b.conds, condition{b.p.Column(field) + " ILIKE ?", []any{"%" + *value + "%"}})
	return b
}

// OrderBy replaces the default sort when fields is non-empty.
func (b *Builder) OrderBy(fields []SortField) *Builder {
	if len(fields) > 0 {
		b.sort = fields
	}
	return b
}

// Build returns the full SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return "SELECT " + b.p.Columns() + " FROM " + b.p.From() + where + b.orderBy(), args
}

// BuildCount returns a COUNT(*) over the same conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return "SELECT COUNT(*) FROM " + b.p.From() + where, args
}

// BuildWindow returns the SELECT limited to limit rows after offset.
func (b *Builder) BuildWindow(limit, offset int) (string, []any) {
	q, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", q, limit, offset), args
}

func (b *Builder) where() (string, []any) {
	if len(b.conds) == 0 {
		return "", nil
	}

	var args []any
	clauses := make([]string, len(b.conds))
	for i, c := range b.conds {
		clause := c.clause
		for _, arg := range c.args {
			args = append(args, arg)
			clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		clauses[i] = clause
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) orderBy() string {
	if len(b.sort) == 0 {
		return ""
	}
	parts := make([]string, len(b.sort))
	for i, s := range b.sort {
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		parts[i] = b.p.Column(s.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
