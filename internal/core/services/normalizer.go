package services

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// NormalizerOptions configures payload normalisation.
type NormalizerOptions struct {
	// PreserveZero sends a literal "0" as the number 0. When false, "0" is
	// treated as empty and omitted, matching records already stored by the
	// browser forms.
	PreserveZero bool
}

// Normalizer converts form state into the wire payload.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	opts NormalizerOptions
}

// NewNormalizer creates a new normalizer.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize produces the payload for a state. The state is not modified.
func (n *Normalizer) Normalize(schema *domain.Schema, state *domain.FormState) domain.Payload {
	payload := make(domain.Payload)
	if schema == nil || state == nil {
		return payload
	}

	values := derivedValues(schema, state)
	open := openBlocks(schema, state, values)
	upper := cases.Upper(language.Und)

	for _, f := range schema.Fields {
		if !memberOpen(schema, open, f.Name) {
			continue
		}
		if f.Kind == domain.FieldBool {
			payload[f.Name] = state.Flags[f.Name]
			continue
		}
		if v, ok := n.scalar(f.Kind, values[f.Name], upper); ok {
			payload[f.Name] = v
		}
	}

	for _, l := range schema.Lists {
		if !memberOpen(schema, open, l.Name) {
			continue
		}
		if l.Scalar {
			if texts := nonBlankTexts(state.Texts[l.Name]); len(texts) > 0 {
				payload[l.Name] = texts
			}
			continue
		}
		if rows := n.rows(l, state.Lists[l.Name], upper); len(rows) > 0 {
			payload[l.Name] = rows
		}
	}

	return payload
}

func (n *Normalizer) rows(def domain.ListDef, rows []domain.Row, upper cases.Caser) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if row.IsBlank() {
			continue
		}
		m := make(map[string]any)
		for _, f := range def.Fields {
			raw := row.Values[f.Name]
			if f.Kind == domain.FieldBool {
				b, _ := strconv.ParseBool(strings.TrimSpace(raw))
				m[f.Name] = b
				continue
			}
			if v, ok := n.scalar(f.Kind, raw, upper); ok {
				m[f.Name] = v
			}
		}
		for _, c := range def.Children {
			if children := n.rows(c, row.Lists[c.Name], upper); len(children) > 0 {
				m[c.Name] = children
			}
		}
		out = append(out, m)
	}
	return out
}

// scalar converts one non-bool value. The second result is false when the
// key is omitted.
func (n *Normalizer) scalar(kind domain.FieldKind, raw string, upper cases.Caser) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	switch kind {
	case domain.FieldNumber:
		return n.number(s)
	case domain.FieldIdentifier:
		return upper.String(s), true
	default:
		return s, true
	}
}

// number emits a float64, or nil for text that is not a finite number.
func (n *Normalizer) number(s string) (any, bool) {
	if s == "0" && !n.opts.PreserveZero {
		return nil, false
	}
	f, ok := parseNumber(s)
	if !ok {
		return nil, true
	}
	return f, true
}

// parseNumber accepts finite decimal numbers only. NaN and infinities
// cannot be encoded as JSON numbers.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// upperIdentifier upper-cases an identifier value the way the payload does.
func upperIdentifier(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Validate reports required fields that are empty and values that cannot
// be sent. It returns nil or a *domain.ValidationError.
func (n *Normalizer) Validate(schema *domain.Schema, state *domain.FormState) error {
	if schema == nil || state == nil {
		return &domain.ValidationError{Invalid: map[string]string{"form": "is not loaded"}}
	}

	verr := &domain.ValidationError{Invalid: make(map[string]string)}
	values := derivedValues(schema, state)
	open := openBlocks(schema, state, values)

	for _, f := range schema.Fields {
		if !memberOpen(schema, open, f.Name) {
			continue
		}
		checkField(verr, f.Name, f, values[f.Name])
	}

	for _, l := range schema.Lists {
		if l.Scalar || !memberOpen(schema, open, l.Name) {
			continue
		}
		checkRows(verr, domain.RowPath{}, l, state.Lists[l.Name])
	}

	for _, d := range schema.Derivations {
		if domain.DateRangeInverted(values[d.Start], values[d.End]) {
			verr.Invalid[d.End] = "is before " + d.Start
		}
	}

	if verr.Empty() {
		return nil
	}
	if len(verr.Invalid) == 0 {
		verr.Invalid = nil
	}
	return verr
}

func checkField(verr *domain.ValidationError, key string, f domain.FieldDef, raw string) {
	if f.Kind == domain.FieldBool {
		return
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		if f.Required {
			verr.Missing = append(verr.Missing, key)
		}
		return
	}
	switch f.Kind {
	case domain.FieldNumber:
		if _, ok := parseNumber(s); !ok {
			verr.Invalid[key] = "is not a number"
		}
	case domain.FieldDate, domain.FieldDateTime:
		if _, ok := domain.ParseDate(s); !ok {
			verr.Invalid[key] = "is not a valid date"
		}
	}
}

func checkRows(verr *domain.ValidationError, parent domain.RowPath, def domain.ListDef, rows []domain.Row) {
	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		path := parent.Child(def.Name, i)
		for _, f := range def.Fields {
			checkField(verr, path.String()+"."+f.Name, f, row.Values[f.Name])
		}
		for _, c := range def.Children {
			checkRows(verr, path, c, row.Lists[c.Name])
		}
	}
}

// CanSubmit reports whether every required top-level field holds a
// non-blank value.
func CanSubmit(schema *domain.Schema, state *domain.FormState) bool {
	if schema == nil || state == nil {
		return false
	}
	for _, f := range schema.Fields {
		if !f.Required || f.Kind == domain.FieldBool {
			continue
		}
		if strings.TrimSpace(state.Values[f.Name]) == "" {
			return false
		}
	}
	return true
}

// ApplyDerivations recomputes every derived field of state in place.
func ApplyDerivations(schema *domain.Schema, state *domain.FormState) {
	for _, d := range schema.Derivations {
		state.Values[d.Target] = d.Rule.Apply(state.Values[d.Start], state.Values[d.End])
	}
}

// derivedValues returns the field values with derivations applied,
// leaving state untouched.
func derivedValues(schema *domain.Schema, state *domain.FormState) map[string]string {
	if len(schema.Derivations) == 0 {
		return state.Values
	}
	values := make(map[string]string, len(state.Values)+len(schema.Derivations))
	for k, v := range state.Values {
		values[k] = v
	}
	for _, d := range schema.Derivations {
		values[d.Target] = d.Rule.Apply(values[d.Start], values[d.End])
	}
	return values
}

// openBlocks decides which blocks are emitted.
func openBlocks(schema *domain.Schema, state *domain.FormState, values map[string]string) map[string]bool {
	open := make(map[string]bool, len(schema.Blocks))
	for _, b := range schema.Blocks {
		if b.Gate != "" {
			open[b.Name] = state.Flags[b.Gate]
			continue
		}
		open[b.Name] = blockHasValue(b, state, values)
	}
	return open
}

func blockHasValue(b domain.BlockDef, state *domain.FormState, values map[string]string) bool {
	for _, f := range b.Fields {
		if strings.TrimSpace(values[f]) != "" {
			return true
		}
	}
	for _, l := range b.Lists {
		if len(nonBlankTexts(state.Texts[l])) > 0 {
			return true
		}
		for _, row := range state.Lists[l] {
			if !row.IsBlank() {
				return true
			}
		}
	}
	return false
}

func memberOpen(schema *domain.Schema, open map[string]bool, name string) bool {
	b, ok := schema.BlockOf(name)
	if !ok {
		return true
	}
	return open[b.Name]
}

func nonBlankTexts(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
