// Package prefs defines the preference pickers of a study profile and binds
// them to selection engines.
package prefs

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/abroad/internal/refdata"
	"github.com/theirongolddev/abroad/internal/selection"
)

// Field describes one preference picker.
type Field struct {
	Key               string
	Title             string
	Placeholder       string
	SearchPlaceholder string
	Multiple          bool
	AllowCreate       bool
	options           func() []selection.Option
}

// Options returns the candidate list for the field.
func (f Field) Options() []selection.Option { return f.options() }

var fields = []Field{
	{
		Key:               "countries",
		Title:             "Destination countries",
		Placeholder:       "Where would you like to study?",
		SearchPlaceholder: "Search countries...",
		Multiple:          true,
		options:           countryOptions,
	},
	{
		Key:               "languages",
		Title:             "Languages of instruction",
		Placeholder:       "Pick the languages you can study in",
		SearchPlaceholder: "Search or add a language...",
		Multiple:          true,
		AllowCreate:       true,
		options:           func() []selection.Option { return entryOptions(refdata.Languages()) },
	},
	{
		Key:               "fields",
		Title:             "Fields of study",
		Placeholder:       "What do you want to study?",
		SearchPlaceholder: "Search or add a field...",
		Multiple:          true,
		AllowCreate:       true,
		options:           func() []selection.Option { return entryOptions(refdata.FieldsOfStudy()) },
	},
	{
		Key:               "degree",
		Title:             "Degree level",
		Placeholder:       "Choose a degree level",
		SearchPlaceholder: "Search degree levels...",
		options:           func() []selection.Option { return entryOptions(refdata.DegreeLevels()) },
	},
}

// Fields returns every preference field in display order.
func Fields() []Field { return append([]Field(nil), fields...) }

// Lookup finds a field by key.
func Lookup(key string) (Field, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, f := range fields {
		if f.Key == k {
			return f, nil
		}
	}
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return Field{}, fmt.Errorf("unknown preference %q (want one of %s)", key, strings.Join(keys, ", "))
}

// NewEngine builds a selection engine for f seeded with value.
func NewEngine(f Field, value selection.Selection, reg selection.Registrar, onChange func(selection.Selection)) *selection.Engine {
	return selection.New(selection.Config{
		Options:           f.Options(),
		Value:             value,
		OnChange:          onChange,
		Placeholder:       f.Placeholder,
		SearchPlaceholder: f.SearchPlaceholder,
		Multiple:          f.Multiple,
		AllowCreate:       f.AllowCreate,
		Registrar:         reg,
	})
}

// Resolve maps free text to an option of f: exact value or label match
// (case-insensitive) first, otherwise a bare item when f allows creating.
func Resolve(f Field, text string) (selection.Option, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return selection.Option{}, fmt.Errorf("%s: empty value", f.Key)
	}
	opts := f.Options()
	for _, o := range opts {
		if strings.EqualFold(o.Value, text) || strings.EqualFold(o.Label, text) {
			return o, nil
		}
	}
	if f.Key == "countries" {
		if c, ok := refdata.LookupCountry(text); ok {
			for _, o := range opts {
				if o.Value == c.Code {
					return o, nil
				}
			}
		}
	}
	if f.AllowCreate {
		return selection.Option{Value: text, Label: text}, nil
	}

	e := NewEngine(f, nil, nil, nil)
	e.SetQuery(text)
	if s, ok := e.Suggest(); ok {
		return selection.Option{}, fmt.Errorf("%s: no option %q (did you mean %q?)", f.Key, text, s.Label)
	}
	return selection.Option{}, fmt.Errorf("%s: no option %q", f.Key, text)
}

func countryOptions() []selection.Option {
	cs := refdata.Countries()
	out := make([]selection.Option, len(cs))
	for i, c := range cs {
		out[i] = selection.Option{
			Value: c.Code,
			Label: c.Name,
			Flag:  c.Flag(),
			Meta:  map[string]string{"currency": c.Currency},
		}
	}
	return out
}

func entryOptions(entries []refdata.Entry) []selection.Option {
	out := make([]selection.Option, len(entries))
	for i, e := range entries {
		out[i] = selection.Option{Value: e.Code, Label: e.Name}
	}
	return out
}
