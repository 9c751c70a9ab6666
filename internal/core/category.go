package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category classifies an expense. The set is closed: only the values
// declared below exist, and the zero value is not a valid category.
type Category uint8

const (
	_ Category = iota
	FoodAndDrink
	Transport
	Housing
	Entertainment
	Health
	Shopping
	Utilities
	Other
)

// AllCategories is the list-filter sentinel that disables category filtering.
const AllCategories = "All"

var categoryNames = [...]string{
	FoodAndDrink:  "Food & Drink",
	Transport:     "Transport",
	Housing:       "Housing",
	Entertainment: "Entertainment",
	Health:        "Health",
	Shopping:      "Shopping",
	Utilities:     "Utilities",
	Other:         "Other",
}

var categoryByName = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for i, name := range categoryNames {
		if name != "" {
			m[name] = Category(i)
		}
	}
	return m
}()

// Categories returns the registry in display order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames)-1)
	for i := 1; i < len(categoryNames); i++ {
		out = append(out, Category(i))
	}
	return out
}

// CategoryNames returns the registry strings in display order.
func CategoryNames() []string {
	cats := Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.String()
	}
	return out
}

// ParseCategory resolves the exact registry string. Matching is case-sensitive.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryByName[s]; ok {
		return c, nil
	}
	return 0, &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
}

// ParseCategoryFilter resolves a list filter value. Empty input and the
// AllCategories sentinel both yield nil, meaning "no category filter".
func ParseCategoryFilter(s string) (*Category, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == AllCategories {
		return nil, nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Valid reports whether c is a registered category.
func (c Category) Valid() bool {
	return int(c) > 0 && int(c) < len(categoryNames)
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, &ValidationError{Field: "category", Reason: "unregistered category"}
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	b, err := c.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(b))
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "category", Reason: "must be a string"}
	}
	return c.UnmarshalText([]byte(s))
}
