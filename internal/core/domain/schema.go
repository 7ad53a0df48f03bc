package domain

import "fmt"

// FieldKind describes how a field value is typed on the wire.
type FieldKind string

// Available field kinds.
const (
	// FieldText is a free-text field, trimmed and omitted when empty.
	FieldText FieldKind = "text"

	// FieldNumber is held as a string in form state and sent as a number.
	FieldNumber FieldKind = "number"

	// FieldBool is a checkbox; always sent.
	FieldBool FieldKind = "bool"

	// FieldDate is a date-only value (2006-01-02).
	FieldDate FieldKind = "date"

	// FieldDateTime is a local date-time value (2006-01-02T15:04).
	FieldDateTime FieldKind = "datetime"

	// FieldIdentifier is an employee or case identifier, upper-cased on write.
	FieldIdentifier FieldKind = "identifier"
)

// IsValid returns true if the field kind is recognised.
func (k FieldKind) IsValid() bool {
	switch k {
	case FieldText, FieldNumber, FieldBool, FieldDate, FieldDateTime, FieldIdentifier:
		return true
	default:
		return false
	}
}

// DayRule selects how an elapsed-day count is rounded.
// The rules are not interchangeable; each form keeps its own.
type DayRule string

// Available day rules.
const (
	// DayRuleInclusive counts both ends: floor(diff/day) + 1.
	DayRuleInclusive DayRule = "inclusive_floor"

	// DayRuleCeil rounds the plain difference up: ceil(diff/day).
	DayRuleCeil DayRule = "ceil"
)

// IsValid returns true if the day rule is recognised.
func (r DayRule) IsValid() bool {
	return r == DayRuleInclusive || r == DayRuleCeil
}

// Apply computes the derived value for the given date strings.
func (r DayRule) Apply(start, end string) string {
	if r == DayRuleCeil {
		return CeilDays(start, end)
	}
	return InclusiveDays(start, end)
}

// FieldDef describes a single input.
type FieldDef struct {
	Name     string    `json:"name" toml:"name"`
	Label    string    `json:"label,omitempty" toml:"label"`
	Kind     FieldKind `json:"kind" toml:"kind"`
	Required bool      `json:"required,omitempty" toml:"required"`

	// ReadOnly fields are filled by lookups or derivations, never typed.
	ReadOnly bool `json:"read_only,omitempty" toml:"read_only"`

	// Suggest is the remote suggestion category; empty disables typeahead.
	Suggest string `json:"suggest,omitempty" toml:"suggest"`

	// Dropdown is the cached option category for enumerated fields.
	Dropdown string `json:"dropdown,omitempty" toml:"dropdown"`
}

// DisplayLabel returns the label, falling back to the name.
func (f FieldDef) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// ListDef describes a repeatable sub-list.
type ListDef struct {
	Name  string `json:"name" toml:"name"`
	Label string `json:"label,omitempty" toml:"label"`

	// Scalar lists hold plain strings instead of rows.
	Scalar bool `json:"scalar,omitempty" toml:"scalar"`

	// Fields are the columns of each row (row lists only).
	Fields []FieldDef `json:"fields,omitempty" toml:"fields"`

	// Children are lists owned by each row, e.g. follow-up visits of a referral.
	Children []ListDef `json:"children,omitempty" toml:"children"`

	// KeepOne keeps an empty placeholder row when the last row is removed.
	KeepOne bool `json:"keep_one,omitempty" toml:"keep_one"`
}

// DisplayLabel returns the label, falling back to the name.
func (l ListDef) DisplayLabel() string {
	if l.Label != "" {
		return l.Label
	}
	return l.Name
}

// Field returns the named column.
func (l ListDef) Field(name string) (FieldDef, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Child returns the named child list.
func (l ListDef) Child(name string) (ListDef, bool) {
	for _, c := range l.Children {
		if c.Name == name {
			return c, true
		}
	}
	return ListDef{}, false
}

// BlockDef groups fields and lists that are emitted only when the block applies.
type BlockDef struct {
	Name string `json:"name" toml:"name"`

	// Gate is a bool field deciding inclusion. When empty, the block applies
	// if any member holds a value.
	Gate string `json:"gate,omitempty" toml:"gate"`

	Fields []string `json:"fields,omitempty" toml:"fields"`
	Lists  []string `json:"lists,omitempty" toml:"lists"`
}

// Derivation recomputes a day-count field from two date fields.
type Derivation struct {
	Target string  `json:"target" toml:"target"`
	Start  string  `json:"start" toml:"start"`
	End    string  `json:"end" toml:"end"`
	Rule   DayRule `json:"rule" toml:"rule"`
}

// LookupDef fills dependent fields from the employee lookup endpoint.
type LookupDef struct {
	// Trigger is the employee number field.
	Trigger string `json:"trigger" toml:"trigger"`

	// Fields maps patient attributes (see Patient.Attr) to form fields.
	Fields map[string]string `json:"fields" toml:"fields"`
}

// Schema is the field-definition table of one form.
type Schema struct {
	Name  string `json:"name" toml:"name"`
	Title string `json:"title" toml:"title"`

	// Resource is the backend collection path, e.g. "clinic-visits".
	Resource string `json:"resource" toml:"resource"`

	Fields      []FieldDef   `json:"fields" toml:"fields"`
	Lists       []ListDef    `json:"lists,omitempty" toml:"lists"`
	Blocks      []BlockDef   `json:"blocks,omitempty" toml:"blocks"`
	Derivations []Derivation `json:"derivations,omitempty" toml:"derivations"`
	Lookup      *LookupDef   `json:"lookup,omitempty" toml:"lookup"`

	// SyncPatient upserts patient master data alongside the record.
	SyncPatient bool `json:"sync_patient,omitempty" toml:"sync_patient"`
}

// DisplayTitle returns the title, falling back to the name.
func (s *Schema) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// Field returns the named top-level field.
func (s *Schema) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// List returns the named top-level list.
func (s *Schema) List(name string) (ListDef, bool) {
	for _, l := range s.Lists {
		if l.Name == name {
			return l, true
		}
	}
	return ListDef{}, false
}

// Required returns the names of required top-level fields in declaration order.
func (s *Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// BlockOf returns the block that owns a field or list, if any.
func (s *Schema) BlockOf(name string) (BlockDef, bool) {
	for _, b := range s.Blocks {
		for _, f := range b.Fields {
			if f == name {
				return b, true
			}
		}
		for _, l := range b.Lists {
			if l == name {
				return b, true
			}
		}
	}
	return BlockDef{}, false
}

// DerivationsFor returns derivations that read the given field.
func (s *Schema) DerivationsFor(field string) []Derivation {
	var out []Derivation
	for _, d := range s.Derivations {
		if d.Start == field || d.End == field {
			out = append(out, d)
		}
	}
	return out
}

// Validate checks that names are unique and every reference resolves.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: schema name is empty", ErrInvalidSchema)
	}
	if s.Resource == "" {
		return fmt.Errorf("%w: %s: resource is empty", ErrInvalidSchema, s.Name)
	}

	seen := make(map[string]bool)
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s: field without name", ErrInvalidSchema, s.Name)
		}
		if !f.Kind.IsValid() {
			return fmt.Errorf("%w: %s: field %s has unknown kind %q", ErrInvalidSchema, s.Name, f.Name, f.Kind)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s: duplicate name %s", ErrInvalidSchema, s.Name, f.Name)
		}
		seen[f.Name] = true
	}
	for _, l := range s.Lists {
		if seen[l.Name] {
			return fmt.Errorf("%w: %s: duplicate name %s", ErrInvalidSchema, s.Name, l.Name)
		}
		seen[l.Name] = true
		if err := validateList(s.Name, l); err != nil {
			return err
		}
	}

	for _, b := range s.Blocks {
		if b.Gate != "" {
			gate, ok := s.Field(b.Gate)
			if !ok || gate.Kind != FieldBool {
				return fmt.Errorf("%w: %s: block %s gate %s is not a bool field", ErrInvalidSchema, s.Name, b.Name, b.Gate)
			}
		}
		for _, f := range b.Fields {
			if _, ok := s.Field(f); !ok {
				return fmt.Errorf("%w: %s: block %s references unknown field %s", ErrInvalidSchema, s.Name, b.Name, f)
			}
		}
		for _, l := range b.Lists {
			if _, ok := s.List(l); !ok {
				return fmt.Errorf("%w: %s: block %s references unknown list %s", ErrInvalidSchema, s.Name, b.Name, l)
			}
		}
	}

	for _, d := range s.Derivations {
		if !d.Rule.IsValid() {
			return fmt.Errorf("%w: %s: derivation %s has unknown rule %q", ErrInvalidSchema, s.Name, d.Target, d.Rule)
		}
		for _, name := range []string{d.Target, d.Start, d.End} {
			if _, ok := s.Field(name); !ok {
				return fmt.Errorf("%w: %s: derivation references unknown field %s", ErrInvalidSchema, s.Name, name)
			}
		}
	}

	if s.Lookup != nil {
		if _, ok := s.Field(s.Lookup.Trigger); !ok {
			return fmt.Errorf("%w: %s: lookup trigger %s is unknown", ErrInvalidSchema, s.Name, s.Lookup.Trigger)
		}
		for attr, field := range s.Lookup.Fields {
			if !IsPatientAttr(attr) {
				return fmt.Errorf("%w: %s: lookup attribute %s is unknown", ErrInvalidSchema, s.Name, attr)
			}
			if _, ok := s.Field(field); !ok {
				return fmt.Errorf("%w: %s: lookup target %s is unknown", ErrInvalidSchema, s.Name, field)
			}
		}
	}

	return nil
}

func validateList(schema string, l ListDef) error {
	if l.Name == "" {
		return fmt.Errorf("%w: %s: list without name", ErrInvalidSchema, schema)
	}
	if l.Scalar {
		if len(l.Fields) > 0 || len(l.Children) > 0 {
			return fmt.Errorf("%w: %s: scalar list %s cannot declare fields", ErrInvalidSchema, schema, l.Name)
		}
		return nil
	}
	if len(l.Fields) == 0 {
		return fmt.Errorf("%w: %s: list %s has no fields", ErrInvalidSchema, schema, l.Name)
	}
	for _, f := range l.Fields {
		if !f.Kind.IsValid() {
			return fmt.Errorf("%w: %s: list %s field %s has unknown kind %q", ErrInvalidSchema, schema, l.Name, f.Name, f.Kind)
		}
	}
	for _, c := range l.Children {
		if c.Scalar {
			return fmt.Errorf("%w: %s: child list %s must hold rows", ErrInvalidSchema, schema, c.Name)
		}
		if err := validateList(schema, c); err != nil {
			return err
		}
	}
	return nil
}
