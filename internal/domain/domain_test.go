package domain

import (
	"reflect"
	"testing"
)

func TestNewImageRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "category only",
			src:  "https://images.dog.ceo/breeds/hound-afghan/n02088094_1003.jpg",
			want: "hound-afghan-none-n02088094_1003",
		},
		{
			name: "category and sub-category",
			src:  "https://images.dog.ceo/breeds/bulldog/english/jager-1.jpg",
			want: "bulldog-english-jager-1",
		},
		{
			name: "unrecognised url keeps the url",
			src:  "https://example.com/picture",
			want: "https://example.com/picture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewImageRecord(tt.src)
			if got.ID != tt.want {
				t.Errorf("ID = %q, want %q", got.ID, tt.want)
			}
			if got.Src != tt.src {
				t.Errorf("Src = %q, want %q", got.Src, tt.src)
			}
			if again := NewImageRecord(tt.src); again != got {
				t.Errorf("same src produced different records: %+v vs %+v", got, again)
			}
		})
	}
}

func TestImageListIdentity(t *testing.T) {
	t.Parallel()

	srcs := []string{"https://images.dog.ceo/breeds/boxer/a.jpg"}
	a := NewImageList(srcs)
	b := NewImageList(srcs)

	if a == b {
		t.Fatal("lists built from equal content must be distinct")
	}
	if !reflect.DeepEqual(a.Records(), b.Records()) {
		t.Fatal("lists should have equal content")
	}

	var nilList *ImageList
	if nilList.Len() != 0 || nilList.Records() != nil {
		t.Fatal("nil list should behave as empty")
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]CatalogEntry{
		{Category: "bulldog"},
		{Category: "boston", SubCategories: []string{}},
		{Category: "english", SubCategories: []string{"tell", "good"}},
	})

	if got, want := c.Categories(), []string{"bulldog", "boston", "english"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if got, want := c.SubCategories("english"), []string{"tell", "good"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SubCategories() = %v, want %v", got, want)
	}
	if !c.HasSubCategories("english") {
		t.Error("english should have sub-categories")
	}
	if c.HasSubCategories("bulldog") || c.HasSubCategories("unknown") {
		t.Error("bulldog and unknown should not have sub-categories")
	}
	if c.Category(5) != "" || c.Category(-1) != "" {
		t.Error("out of range category should be empty")
	}
	if !EmptyCatalog.IsEmpty() || EmptyCatalog.Category(0) != "" {
		t.Error("empty catalog should have no categories")
	}
}

func TestNewCatalogRepeatedCategory(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]CatalogEntry{
		{Category: "akita", SubCategories: []string{"old"}},
		{Category: "beagle"},
		{Category: "akita", SubCategories: []string{"new"}},
	})

	if got, want := c.Categories(), []string{"akita", "beagle"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if got, want := c.SubCategories("akita"), []string{"new"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SubCategories() = %v, want %v", got, want)
	}
}

func TestSelectionDerivation(t *testing.T) {
	t.Parallel()

	c := CatalogFromMap(map[string][]string{
		"pug":     {},
		"bulldog": {"boston", "english"},
	})

	sel := Selection{}.WithSubCategory(1)
	if got := sel.ActiveCategory(c); got != "bulldog" {
		t.Fatalf("ActiveCategory() = %q, want bulldog", got)
	}
	if got := sel.ActiveSubCategory(c); got != "english" {
		t.Fatalf("ActiveSubCategory() = %q, want english", got)
	}

	sel = sel.WithCategory(1)
	if sel.SubCategoryIndex != 0 {
		t.Fatalf("changing category must reset sub-category index, got %d", sel.SubCategoryIndex)
	}
	if got := sel.ActiveSubCategory(c); got != "" {
		t.Fatalf("pug has no sub-categories, got %q", got)
	}

	same := Selection{CategoryIndex: 0, SubCategoryIndex: 1}.WithCategory(0)
	if same.SubCategoryIndex != 1 {
		t.Fatal("re-selecting the same category must not reset the sub-category")
	}

	if got := (Selection{}).ActiveCategory(EmptyCatalog); got != "" {
		t.Fatalf("empty catalog should give empty category, got %q", got)
	}
}
