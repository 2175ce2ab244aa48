// Package form builds runtime answer forms out of server-declared question
// definitions and validates them.
package form

import (
	"sort"
	"strconv"
	"strings"

	"github.com/unilater/galeaz/internal/domain"
)

// Field is one answer entry plus the rules derived from its question.
type Field struct {
	ID       int
	Key      string // stringified ID, the wire key
	Label    string
	Type     domain.QuestionType
	Required bool
	Options  []string
	Value    string
}

// Form maps stringified question ids to their current answer fields. A Form is
// rebuilt from scratch whenever the question catalog reloads; instances are
// never patched to a new catalog in place.
type Form struct {
	fields map[string]*Field
	order  []string // keys in ascending-id order
}

// Build creates an empty-initialized form for the given catalog. The catalog
// is sorted ascending by id first, which fixes field order for rendering. An
// empty catalog yields an empty, valid form.
func Build(questions []domain.QuestionDefinition) *Form {
	sorted := make([]domain.QuestionDefinition, len(questions))
	copy(sorted, questions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	f := &Form{fields: make(map[string]*Field, len(sorted))}
	for _, q := range sorted {
		key := strconv.Itoa(q.ID)
		if _, dup := f.fields[key]; dup {
			continue
		}
		f.fields[key] = &Field{
			ID:       q.ID,
			Key:      key,
			Label:    q.Label,
			Type:     q.Type,
			Required: q.Required,
			Options:  q.Options,
		}
		f.order = append(f.order, key)
	}
	return f
}

// Fields returns the fields in rendering order.
func (f *Form) Fields() []*Field {
	out := make([]*Field, 0, len(f.order))
	for _, key := range f.order {
		out = append(out, f.fields[key])
	}
	return out
}

// Len returns the number of fields.
func (f *Form) Len() int { return len(f.order) }

// Set assigns a value to the field with the given key. Unknown keys are
// rejected so the key set stays exactly the loaded catalog.
func (f *Form) Set(key, value string) error {
	field, ok := f.fields[key]
	if !ok {
		return domain.ErrUnknownField
	}
	field.Value = value
	return nil
}

// Get returns the current value for a key.
func (f *Form) Get(key string) (string, bool) {
	field, ok := f.fields[key]
	if !ok {
		return "", false
	}
	return field.Value, true
}

// Patch overwrites values for every given key that exists in the form.
// Unknown keys are ignored; stale answers for retired questions never
// introduce new fields.
func (f *Form) Patch(values map[string]string) {
	for key, value := range values {
		if field, ok := f.fields[key]; ok {
			field.Value = value
		}
	}
}

// Values returns a copy of the current key/value mapping, the submit payload
// shape.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for key, field := range f.fields {
		out[key] = field.Value
	}
	return out
}

// Valid reports whether every field satisfies its rules: required fields are
// non-empty, number fields parse and are not negative. There is no partial
// validity; this is the single submit gate.
func (f *Form) Valid() bool {
	for _, field := range f.fields {
		if !field.valid() {
			return false
		}
	}
	return true
}

func (fd *Field) valid() bool {
	value := strings.TrimSpace(fd.Value)
	if fd.Required && value == "" {
		return false
	}
	if fd.Type == domain.QuestionNumber && value != "" {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < 0 {
			return false
		}
	}
	return true
}
