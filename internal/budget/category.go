package budget

import (
	"fmt"
	"strings"
)

// Category is one budget line.
type Category string

const (
	Tuition       Category = "tuition"
	Accommodation Category = "accommodation"
	Transport     Category = "transport"
	Insurance     Category = "insurance"
	Travel        Category = "travel"
	Living        Category = "living"
	Books         Category = "books"
	Other         Category = "other"
)

var categoryOrder = []Category{Tuition, Accommodation, Transport, Insurance, Travel, Living, Books, Other}

var categoryLabels = map[Category]string{
	Tuition:       "Tuition",
	Accommodation: "Accommodation",
	Transport:     "Transport",
	Insurance:     "Insurance",
	Travel:        "Travel",
	Living:        "Living expenses",
	Books:         "Books & supplies",
	Other:         "Other",
}

// Categories returns every category in display order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// Label is the human-readable name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown budget category %q", s)
	}
	return c, nil
}

// Unit is the time basis amounts are entered and displayed in.
type Unit string

const (
	Annual  Unit = "annual"
	Monthly Unit = "monthly"
)

// ParseUnit accepts "annual"/"yearly"/"year" and "monthly"/"month".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "annual", "yearly", "year", "y":
		return Annual, nil
	case "monthly", "month", "m":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown unit %q (want annual or monthly)", s)
	}
}
