package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category is for income or expense transactions.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Reserved category names.
const (
	CategoryIncome = "Income"
	CategoryOther  = "Other"
)

// Category is one entry of the fixed taxonomy.
type Category struct {
	ID   string
	Name string
	Icon string
	Type CategoryType
}

// Taxonomy is the process-wide category list. It is built once at startup
// and never mutated; all lookups are case-insensitive.
type Taxonomy struct {
	byName     map[string]Category
	categories []Category
}

// DefaultCategories returns the built-in category list.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat-1", Name: "Housing", Icon: "🏠", Type: CategoryTypeExpense},
		{ID: "cat-2", Name: "Food", Icon: "🍴", Type: CategoryTypeExpense},
		{ID: "cat-3", Name: "Transportation", Icon: "🚗", Type: CategoryTypeExpense},
		{ID: "cat-4", Name: "Shopping", Icon: "🛍", Type: CategoryTypeExpense},
		{ID: "cat-5", Name: "Clothing", Icon: "👕", Type: CategoryTypeExpense},
		{ID: "cat-6", Name: "Health", Icon: "🩺", Type: CategoryTypeExpense},
		{ID: "cat-7", Name: "Entertainment", Icon: "🎬", Type: CategoryTypeExpense},
		{ID: "cat-8", Name: "Education", Icon: "📚", Type: CategoryTypeExpense},
		{ID: "cat-9", Name: "Gifts", Icon: "🎁", Type: CategoryTypeExpense},
		{ID: "cat-10", Name: "Pets", Icon: "🐾", Type: CategoryTypeExpense},
		{ID: "cat-11", Name: CategoryOther, Icon: "🎁", Type: CategoryTypeExpense},
		{ID: "cat-12", Name: CategoryIncome, Icon: "🏦", Type: CategoryTypeIncome},
	}
}

// DefaultTaxonomy returns the taxonomy built from DefaultCategories.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultCategories())
	if err != nil {
		panic(err) // the built-in list is static
	}
	return t
}

// NewTaxonomy validates and freezes a category list. Names must be unique
// (case-insensitively) and the list must contain Income and Other.
func NewTaxonomy(categories []Category) (*Taxonomy, error) {
	t := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		byName:     make(map[string]Category, len(categories)),
	}

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrInvalidCategory)
		}
		key := strings.ToLower(name)
		if _, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCategory, name)
		}
		c.Name = name
		t.byName[key] = c
		t.categories = append(t.categories, c)
	}

	for _, required := range []string{CategoryIncome, CategoryOther} {
		if _, ok := t.byName[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("%w: taxonomy must contain %q", ErrInvalidCategory, required)
		}
	}

	return t, nil
}

// All returns a copy of every category in declaration order.
func (t *Taxonomy) All() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Names returns every category name in declaration order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a category by name, ignoring case and surrounding space.
func (t *Taxonomy) Lookup(name string) (Category, bool) {
	c, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Canonical maps a free-form label onto a category name, falling back to Other.
func (t *Taxonomy) Canonical(label string) string {
	if c, ok := t.Lookup(label); ok {
		return c.Name
	}
	return CategoryOther
}

// BudgetEligible returns the categories a budget can be set for.
func (t *Taxonomy) BudgetEligible() []Category {
	out := make([]Category, 0, len(t.categories))
	for _, c := range t.categories {
		if c.Type == CategoryTypeExpense {
			out = append(out, c)
		}
	}
	return out
}

// IsBudgetEligible reports whether name is an expense category.
func (t *Taxonomy) IsBudgetEligible(name string) bool {
	c, ok := t.Lookup(name)
	return ok && c.Type == CategoryTypeExpense
}
