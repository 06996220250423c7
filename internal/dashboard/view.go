package dashboard

import (
	"fmt"

	"dogceo/dashboard/internal/gallery"
	"dogceo/dashboard/internal/selection"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const subCategoryMarker = " *"

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Selector is one dropdown bound to a tier of the selection.
type Selector struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Options  []Option `json:"options"`
	Selected string   `json:"selected"`
}

type ImageView struct {
	ID     string `json:"id"`
	Src    string `json:"src"`
	Shown  string `json:"shown"`
	Loaded bool   `json:"loaded"`
	// Failed means the last load attempt errored and the placeholder is back
	Failed bool `json:"failed"`
}

type PanelView struct {
	ID           PanelID     `json:"id"`
	Title        string      `json:"title"`
	Count        int         `json:"count"`
	Images       []ImageView `json:"images"`
	Empty        bool        `json:"empty"`
	EmptyMessage string      `json:"empty_message"`
	Centered     bool        `json:"centered"`
	Placeholder  string      `json:"placeholder"`
}

// Heading is the panel title with the image count when there is more than one image.
func (p PanelView) Heading() string {
	if p.Count > 1 {
		return fmt.Sprintf("%s (%d)", p.Title, p.Count)
	}
	return p.Title
}

type View struct {
	SessionID   string      `json:"session_id"`
	Title       string      `json:"title"`
	Category    Selector    `json:"category"`
	SubCategory Selector    `json:"sub_category"`
	Panels      []PanelView `json:"panels"`
	Loading     bool        `json:"loading"`
}

// Rows groups panels two by two: random images first, then the image lists.
func (v View) Rows() [][]PanelView {
	rows := make([][]PanelView, 0, (len(v.Panels)+1)/2)
	for i := 0; i < len(v.Panels); i += 2 {
		rows = append(rows, v.Panels[i:min(i+2, len(v.Panels))])
	}
	return rows
}

// Panel returns the view of one panel.
func (v View) Panel(id PanelID) (PanelView, bool) {
	for _, p := range v.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return PanelView{}, false
}

// CategorySelector lists every category; names with sub-categories get a marker.
func CategorySelector(snap selection.Snapshot) Selector {
	upper := cases.Upper(language.English)

	categories := snap.Categories()
	options := make([]Option, 0, len(categories))
	for _, category := range categories {
		label := upper.String(category)
		if snap.HasSubCategories(category) {
			label += subCategoryMarker
		}
		options = append(options, Option{Label: label, Value: category})
	}

	return Selector{
		ID:       "breed",
		Label:    "Breed: ",
		Options:  options,
		Selected: snap.ActiveCategory(),
	}
}

// SubCategorySelector lists the sub-categories of the active category.
func SubCategorySelector(snap selection.Snapshot) Selector {
	upper := cases.Upper(language.English)

	subs := snap.SubCategories()
	options := make([]Option, 0, len(subs))
	for _, sub := range subs {
		options = append(options, Option{Label: upper.String(sub), Value: sub})
	}

	return Selector{
		ID:       "sub-breed",
		Label:    "Sub Breed: ",
		Options:  options,
		Selected: snap.ActiveSubCategory(),
	}
}

func panelView(p *panel) PanelView {
	cells := p.renderer.Visible()
	images := make([]ImageView, 0, len(cells))
	for _, c := range cells {
		images = append(images, ImageView{
			ID:     c.ID(),
			Src:    c.Src(),
			Shown:  c.Shown(),
			Loaded: c.State() == gallery.Loaded,
			Failed: c.State() == gallery.Pending && c.Attempts() > 0,
		})
	}

	return PanelView{
		ID:           p.id,
		Title:        p.title,
		Count:        p.renderer.Total(),
		Images:       images,
		Empty:        p.renderer.Empty(),
		EmptyMessage: gallery.EmptyMessage,
		Centered:     p.renderer.Centered(),
		Placeholder:  p.placeholder,
	}
}
