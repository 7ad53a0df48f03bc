package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormState holds the in-memory values of one form session.
// It is owned by a single form controller and seeded once from initial data.
type FormState struct {
	// Values holds text, number, date and identifier fields as typed.
	Values map[string]string `json:"values"`

	// Flags holds checkbox fields.
	Flags map[string]bool `json:"flags"`

	// Lists holds repeatable row lists by name.
	Lists map[string][]Row `json:"lists"`

	// Texts holds scalar string lists by name.
	Texts map[string][]string `json:"texts"`
}

// Row is one entry of a repeatable list. A row may own nested lists.
type Row struct {
	Values map[string]string `json:"values"`
	Lists  map[string][]Row  `json:"lists,omitempty"`
}

// RowRef addresses one row inside a named list.
type RowRef struct {
	List  string `json:"list"`
	Index int    `json:"index"`
}

// RowPath addresses a row through nested lists, outermost first.
// An empty path denotes the form itself.
type RowPath []RowRef

// Child returns the path of a row inside a child list of this path.
func (p RowPath) Child(list string, index int) RowPath {
	out := make(RowPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, RowRef{List: list, Index: index})
}

// Parent returns the path without its last element.
func (p RowPath) Parent() RowPath {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// String renders the path as "referrals[0].followUpVisits[1]".
func (p RowPath) String() string {
	parts := make([]string, len(p))
	for i, ref := range p {
		parts[i] = fmt.Sprintf("%s[%d]", ref.List, ref.Index)
	}
	return strings.Join(parts, ".")
}

// NewFormState returns an empty state with placeholder rows for the schema.
func NewFormState(schema *Schema) *FormState {
	s := &FormState{
		Values: make(map[string]string),
		Flags:  make(map[string]bool),
		Lists:  make(map[string][]Row),
		Texts:  make(map[string][]string),
	}
	if schema == nil {
		return s
	}
	for _, f := range schema.Fields {
		if f.Kind == FieldBool {
			s.Flags[f.Name] = false
		}
	}
	for _, l := range schema.Lists {
		EnsurePlaceholders(s, nil, l)
	}
	return s
}

// NewRow returns an empty template row for a list definition.
func NewRow(def ListDef) Row {
	row := Row{Values: make(map[string]string)}
	for _, f := range def.Fields {
		row.Values[f.Name] = ""
	}
	if len(def.Children) > 0 {
		row.Lists = make(map[string][]Row)
		for _, c := range def.Children {
			if c.KeepOne {
				row.Lists[c.Name] = []Row{NewRow(c)}
			} else {
				row.Lists[c.Name] = nil
			}
		}
	}
	return row
}

// EnsurePlaceholders inserts an empty template entry into any KeepOne list
// under parent that would otherwise be empty, recursing into child lists.
func EnsurePlaceholders(s *FormState, parent RowPath, def ListDef) {
	if def.Scalar {
		if len(parent) == 0 && def.KeepOne && len(s.Texts[def.Name]) == 0 {
			s.Texts[def.Name] = []string{""}
		}
		return
	}
	rows := s.Rows(parent, def.Name)
	if def.KeepOne && len(rows) == 0 {
		s.SetRows(parent, def.Name, []Row{NewRow(def)})
		rows = s.Rows(parent, def.Name)
	}
	for i := range rows {
		for _, child := range def.Children {
			EnsurePlaceholders(s, parent.Child(def.Name, i), child)
		}
	}
}

// Rows returns the rows of a list under parent.
func (s *FormState) Rows(parent RowPath, list string) []Row {
	if len(parent) == 0 {
		return s.Lists[list]
	}
	r, ok := s.Row(parent)
	if !ok {
		return nil
	}
	return r.Lists[list]
}

// SetRows replaces the rows of a list under parent.
func (s *FormState) SetRows(parent RowPath, list string, rows []Row) bool {
	if len(parent) == 0 {
		if s.Lists == nil {
			s.Lists = make(map[string][]Row)
		}
		s.Lists[list] = rows
		return true
	}
	r, ok := s.Row(parent)
	if !ok {
		return false
	}
	if r.Lists == nil {
		r.Lists = make(map[string][]Row)
	}
	r.Lists[list] = rows
	return true
}

// Row returns a pointer to the addressed row.
func (s *FormState) Row(path RowPath) (*Row, bool) {
	if len(path) == 0 {
		return nil, false
	}
	rows := s.Lists[path[0].List]
	if path[0].Index < 0 || path[0].Index >= len(rows) {
		return nil, false
	}
	r := &rows[path[0].Index]
	for _, ref := range path[1:] {
		rows = r.Lists[ref.List]
		if ref.Index < 0 || ref.Index >= len(rows) {
			return nil, false
		}
		r = &rows[ref.Index]
	}
	return r, true
}

// Clone returns a deep copy of the state.
func (s *FormState) Clone() *FormState {
	out := &FormState{
		Values: make(map[string]string, len(s.Values)),
		Flags:  make(map[string]bool, len(s.Flags)),
		Lists:  make(map[string][]Row, len(s.Lists)),
		Texts:  make(map[string][]string, len(s.Texts)),
	}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	for k, v := range s.Flags {
		out.Flags[k] = v
	}
	for k, rows := range s.Lists {
		out.Lists[k] = cloneRows(rows)
	}
	for k, texts := range s.Texts {
		out.Texts[k] = append([]string(nil), texts...)
	}
	return out
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := Row{Values: make(map[string]string, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	if r.Lists != nil {
		out.Lists = make(map[string][]Row, len(r.Lists))
		for k, rows := range r.Lists {
			out.Lists[k] = cloneRows(rows)
		}
	}
	return out
}

// IsBlank reports whether every value of the row and its children is empty.
func (r Row) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	for _, rows := range r.Lists {
		for _, child := range rows {
			if !child.IsBlank() {
				return false
			}
		}
	}
	return true
}

// FormStateFromMap seeds a state from a record payload (edit mode).
// Unknown keys are ignored; missing lists get placeholder rows.
func FormStateFromMap(schema *Schema, data map[string]any) *FormState {
	s := NewFormState(schema)
	if schema == nil || data == nil {
		return s
	}

	for _, f := range schema.Fields {
		raw, ok := data[f.Name]
		if !ok || raw == nil {
			continue
		}
		if f.Kind == FieldBool {
			s.Flags[f.Name] = toBool(raw)
			continue
		}
		s.Values[f.Name] = seedValue(f.Kind, raw)
	}

	for _, l := range schema.Lists {
		raw, ok := data[l.Name].([]any)
		if !ok {
			continue
		}
		if l.Scalar {
			texts := make([]string, 0, len(raw))
			for _, item := range raw {
				texts = append(texts, seedValue(FieldText, item))
			}
			s.Texts[l.Name] = texts
			continue
		}
		s.Lists[l.Name] = rowsFromAny(l, raw)
	}

	for _, l := range schema.Lists {
		EnsurePlaceholders(s, nil, l)
	}
	return s
}

func rowsFromAny(def ListDef, raw []any) []Row {
	rows := make([]Row, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := NewRow(def)
		for _, f := range def.Fields {
			if v, ok := m[f.Name]; ok && v != nil {
				row.Values[f.Name] = seedValue(f.Kind, v)
			}
		}
		for _, c := range def.Children {
			if childRaw, ok := m[c.Name].([]any); ok {
				row.Lists[c.Name] = rowsFromAny(c, childRaw)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func seedValue(kind FieldKind, raw any) string {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = fmt.Sprint(v)
	}
	// Backends return full timestamps for date-only inputs.
	if kind == FieldDate && len(s) > len("2006-01-02") {
		if _, ok := ParseDate(s[:10]); ok {
			s = s[:10]
		}
	}
	return s
}

func toBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	default:
		return false
	}
}
