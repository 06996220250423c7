package domain

// Selection is the user's position in the two-level hierarchy.
// Names are always derived from a catalog, never stored.
type Selection struct {
	CategoryIndex    int `json:"category_index"`
	SubCategoryIndex int `json:"sub_category_index"`
}

// WithCategory moves to another category. A different index resets the sub-category
// index because the sub-category list changes with it.
func (s Selection) WithCategory(index int) Selection {
	if index == s.CategoryIndex {
		return s
	}
	return Selection{CategoryIndex: index}
}

func (s Selection) WithSubCategory(index int) Selection {
	s.SubCategoryIndex = index
	return s
}

// ActiveCategory returns the selected category name, "" for an empty catalog.
func (s Selection) ActiveCategory(c Catalog) string {
	return c.Category(s.CategoryIndex)
}

// SubCategories returns the sub-categories of the selected category.
func (s Selection) SubCategories(c Catalog) []string {
	return c.SubCategories(s.ActiveCategory(c))
}

// ActiveSubCategory returns the selected sub-category name, "" when there is none.
func (s Selection) ActiveSubCategory(c Catalog) string {
	subs := c.subCategories[s.ActiveCategory(c)]
	if s.SubCategoryIndex < 0 || s.SubCategoryIndex >= len(subs) {
		return ""
	}
	return subs[s.SubCategoryIndex]
}
