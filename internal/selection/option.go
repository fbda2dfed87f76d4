// Package selection implements the searchable multi/single select state
// machine behind every preference picker.
package selection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Option is a selectable candidate. Value is its identity within a list.
type Option struct {
	Value string            `json:"value"`
	Label string            `json:"label"`
	Flag  string            `json:"flag,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// UnmarshalJSON accepts either a bare value string or a full option object.
func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o, _ = Option{Value: s}.normalized()
		return nil
	}

	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding option: %w", err)
	}
	*o, _ = Option(p).normalized()
	return nil
}

// DisplayLabel is the label prefixed with the flag when one is set.
func (o Option) DisplayLabel() string {
	if o.Flag == "" {
		return o.Label
	}
	return o.Flag + " " + o.Label
}

// Resolve normalizes the representations a stored selection item can take.
// Every form has its value trimmed and falls back to the value as label.
func Resolve(raw any) (Option, bool) {
	switch v := raw.(type) {
	case Option:
		return v.normalized()
	case *Option:
		if v == nil {
			return Option{}, false
		}
		return v.normalized()
	case string:
		return Option{Value: v}.normalized()
	case map[string]any:
		value, _ := v["value"].(string)
		label, _ := v["label"].(string)
		flag, _ := v["flag"].(string)
		return Option{Value: value, Label: label, Flag: flag, Meta: metaStrings(v["meta"])}.normalized()
	default:
		return Option{}, false
	}
}

func (o Option) normalized() (Option, bool) {
	o.Value = strings.TrimSpace(o.Value)
	if o.Value == "" {
		return Option{}, false
	}
	o.Label = strings.TrimSpace(o.Label)
	if o.Label == "" {
		o.Label = o.Value
	}
	return o, true
}

// metaStrings accepts meta as decoded from JSON or built in code.
func metaStrings(raw any) map[string]string {
	switch m := raw.(type) {
	case map[string]string:
		if len(m) == 0 {
			return nil
		}
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	case map[string]any:
		if len(m) == 0 {
			return nil
		}
		out := make(map[string]string, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			} else if v != nil {
				out[k] = fmt.Sprint(v)
			}
		}
		return out
	default:
		return nil
	}
}

// Selection is an ordered set of options keyed by Value.
type Selection []Option

// FromValues builds a selection of bare values.
func FromValues(values ...string) Selection {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}
	return Normalize(items...)
}

// Normalize resolves every item and drops blanks and duplicate values.
func Normalize(items ...any) Selection {
	out := make(Selection, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		opt, ok := Resolve(item)
		if !ok || seen[opt.Value] {
			continue
		}
		seen[opt.Value] = true
		out = append(out, opt)
	}
	return out
}

// Dedupe returns s without repeated values, keeping first occurrences.
func (s Selection) Dedupe() Selection {
	items := make([]any, len(s))
	for i, o := range s {
		items[i] = o
	}
	return Normalize(items...)
}

// Contains reports whether value is selected.
func (s Selection) Contains(value string) bool {
	return s.index(value) >= 0
}

func (s Selection) index(value string) int {
	for i, o := range s {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// Without returns a copy of s with value removed.
func (s Selection) Without(value string) Selection {
	out := make(Selection, 0, len(s))
	for _, o := range s {
		if o.Value != value {
			out = append(out, o)
		}
	}
	return out
}

// Values lists the selected values in order.
func (s Selection) Values() []string {
	out := make([]string, len(s))
	for i, o := range s {
		out[i] = o.Value
	}
	return out
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	copy(out, s)
	return out
}

// LabelFor returns the label of the option with value, or value itself when
// no option matches.
func LabelFor(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
