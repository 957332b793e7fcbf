// Package layout arranges field metadata into rows of a fixed column count.
//
// Plain fields fill rows left to right. A nested group with transparent flow
// is spliced inline: its fields continue the row in progress, and whatever
// partial row they leave behind is continued by the fields that follow. A
// nested group without transparent flow breaks the flow: the row in progress
// is emitted, the group is emitted as a row of its own, and the next field
// starts a fresh row. Renderers lay out the interior of a breaking group by
// calling Group again with the group's own fields and column count.
package layout

import (
	"github.com/goliatone/go-dorf/pkg/metadata"
)

// Row is either a run of fields or a breaking nested group.
type Row struct {
	Fields []metadata.Field
	Nested *metadata.Nested
}

// IsBreak reports whether the row holds a breaking nested group.
func (r Row) IsBreak() bool {
	return r.Nested != nil
}

// Group lays items out in rows of columns fields. A trailing partial row is
// kept. columns below 1 is treated as 1.
func Group(items []metadata.Field, columns int) []Row {
	return GroupWithCarry(items, columns, nil)
}

// GroupWithCarry is Group with carry seeding the first row, as if carry had
// been laid out just before items.
func GroupWithCarry(items []metadata.Field, columns int, carry []metadata.Field) []Row {
	rows, rest := Partial(items, columns, carry)
	if len(rest) > 0 {
		rows = append(rows, Row{Fields: rest})
	}
	return rows
}

// Partial lays items out like GroupWithCarry but hands the trailing partial
// row back to the caller instead of emitting it, so the caller can keep
// filling it.
func Partial(items []metadata.Field, columns int, carry []metadata.Field) ([]Row, []metadata.Field) {
	b := newBuilder(columns)
	for _, field := range carry {
		b.add(field)
	}
	b.walk(items)
	return b.rows, b.current
}

// Flatten returns the fields of rows in display order. Breaking groups are
// expanded recursively.
func Flatten(rows []Row) []metadata.Field {
	var out []metadata.Field
	for _, row := range rows {
		if row.IsBreak() {
			out = append(out, Flatten(Group(row.Nested.NestedFields(), row.Nested.Columns()))...)
			continue
		}
		out = append(out, row.Fields...)
	}
	return out
}

type builder struct {
	columns int
	rows    []Row
	current []metadata.Field
}

func newBuilder(columns int) *builder {
	if columns < 1 {
		columns = 1
	}
	return &builder{columns: columns}
}

func (b *builder) walk(items []metadata.Field) {
	for _, item := range items {
		nested, ok := item.(*metadata.Nested)
		switch {
		case !ok:
			b.add(item)
		case nested.TransparentFlow():
			b.walk(nested.NestedFields())
		default:
			b.breakWith(nested)
		}
	}
}

func (b *builder) add(field metadata.Field) {
	b.current = append(b.current, field)
	if len(b.current) >= b.columns {
		b.flush()
	}
}

func (b *builder) flush() {
	if len(b.current) == 0 {
		return
	}
	b.rows = append(b.rows, Row{Fields: b.current})
	b.current = nil
}

func (b *builder) breakWith(nested *metadata.Nested) {
	b.flush()
	b.rows = append(b.rows, Row{Nested: nested})
}
