package domain

import "sort"

// Catalog maps every category (breed) to its ordered sub-categories (sub-breeds).
// It is immutable once built; a reload replaces the whole value.
type Catalog struct {
	categories    []string
	subCategories map[string][]string
}

// EmptyCatalog is the catalog used before the first load and after a failed one.
var EmptyCatalog = Catalog{}

// CatalogEntry is one category with its sub-categories, as listed by the provider.
type CatalogEntry struct {
	Category      string
	SubCategories []string
}

// NewCatalog builds a catalog keeping the order of entries. A repeated category keeps
// its first position and its last sub-category list.
func NewCatalog(entries []CatalogEntry) Catalog {
	categories := make([]string, 0, len(entries))
	subCategories := make(map[string][]string, len(entries))

	for _, entry := range entries {
		if _, seen := subCategories[entry.Category]; !seen {
			categories = append(categories, entry.Category)
		}
		subCategories[entry.Category] = append([]string{}, entry.SubCategories...)
	}

	return Catalog{
		categories:    categories,
		subCategories: subCategories,
	}
}

// CatalogFromMap builds a catalog with categories ordered by name.
func CatalogFromMap(mapping map[string][]string) Catalog {
	names := make([]string, 0, len(mapping))
	for category := range mapping {
		names = append(names, category)
	}
	sort.Strings(names)

	entries := make([]CatalogEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, CatalogEntry{Category: name, SubCategories: mapping[name]})
	}
	return NewCatalog(entries)
}

// Categories returns the category names in catalog order.
func (c Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Category returns the category at index, or "" when the index is out of range.
func (c Catalog) Category(index int) string {
	if index < 0 || index >= len(c.categories) {
		return ""
	}
	return c.categories[index]
}

// SubCategories returns the sub-categories of a category, nil for unknown ones.
func (c Catalog) SubCategories(category string) []string {
	subs := c.subCategories[category]
	if len(subs) == 0 {
		return nil
	}
	return append([]string(nil), subs...)
}

// HasSubCategories reports whether the category maps to a non-empty sub-category list.
// It only inspects the loaded catalog.
func (c Catalog) HasSubCategories(category string) bool {
	return len(c.subCategories[category]) > 0
}

func (c Catalog) Len() int {
	return len(c.categories)
}

func (c Catalog) IsEmpty() bool {
	return len(c.categories) == 0
}
