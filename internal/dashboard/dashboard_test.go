package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dogceo/dashboard/internal/client"
	"dogceo/dashboard/internal/domain"
	"dogceo/dashboard/internal/gallery"
	"dogceo/dashboard/internal/selection"

	"github.com/PuerkitoBio/goquery"
)

const placeholder = "/static/dog-placeholder.svg"

var bottom = gallery.Metrics{ScrollTop: 300, ScrollHeight: 500, ClientHeight: 200}

type stubFetcher struct {
	images map[string][]string
}

func (f stubFetcher) Images(_ context.Context, scope client.Scope) (*domain.ImageList, error) {
	srcs, ok := f.images[scope.String()]
	if !ok {
		return nil, errors.New("breed not found")
	}
	return domain.NewImageList(srcs), nil
}

func (f stubFetcher) RandomImage(_ context.Context, scope client.Scope) (domain.ImageRecord, error) {
	srcs := f.images[scope.String()]
	if len(srcs) == 0 {
		return domain.ImageRecord{}, errors.New("breed not found")
	}
	return domain.NewImageRecord(srcs[0]), nil
}

type staticLoader struct {
	catalog domain.Catalog
}

func (l staticLoader) Load(context.Context) domain.Catalog {
	return l.catalog
}

func imageSrcs(dir string, n int) []string {
	srcs := make([]string, 0, n)
	for i := range n {
		srcs = append(srcs, fmt.Sprintf("https://images.dog.ceo/breeds/%s/n%03d.jpg", dir, i))
	}
	return srcs
}

// englishCatalog has a category without sub-categories first and one with two after it.
func englishCatalog() domain.Catalog {
	return domain.NewCatalog([]domain.CatalogEntry{
		{Category: "bulldog"},
		{Category: "boston"},
		{Category: "english", SubCategories: []string{"tell", "good"}},
	})
}

func englishFetcher() stubFetcher {
	return stubFetcher{images: map[string][]string{
		"bulldog":      imageSrcs("bulldog", 3),
		"boston":       imageSrcs("boston", 1),
		"english":      imageSrcs("english", 6),
		"english/tell": imageSrcs("english-tell", 2),
		"english/good": imageSrcs("english-good", 5),
	}}
}

func startSession(t *testing.T, catalog domain.Catalog, fetcher stubFetcher) (*Session, context.Context) {
	t.Helper()

	engine := selection.New(fetcher, staticLoader{catalog: catalog})
	session := NewSession("test-session", engine, Options{
		Title:       "Dog Breeds",
		Window:      gallery.DefaultWindowConfig(),
		Placeholder: placeholder,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	if err := session.WaitSettled(ctx); err != nil {
		t.Fatalf("WaitSettled() error = %v", err)
	}
	return session, ctx
}

func selectCategory(t *testing.T, ctx context.Context, s *Session, index int) {
	t.Helper()
	if err := s.SelectCategory(ctx, index); err != nil {
		t.Fatalf("SelectCategory(%d) error = %v", index, err)
	}
	if err := s.WaitSettled(ctx); err != nil {
		t.Fatalf("WaitSettled() error = %v", err)
	}
}

func renderDocument(t *testing.T, v View) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	if err := Render(&buf, v); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("failed to parse rendered html: %v", err)
	}
	return doc
}

func optionLabels(doc *goquery.Document, selectID string) []string {
	var labels []string
	doc.Find("select#" + selectID + " option").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(s.Text()))
	})
	return labels
}

func panelOf(t *testing.T, v View, id PanelID) PanelView {
	t.Helper()
	p, ok := v.Panel(id)
	if !ok {
		t.Fatalf("panel %s missing from view", id)
	}
	return p
}

func TestCategoryLabelsMarkSubCategories(t *testing.T) {
	t.Parallel()

	s, _ := startSession(t, englishCatalog(), englishFetcher())
	doc := renderDocument(t, s.View())

	got := optionLabels(doc, "breed")
	want := []string{"BULLDOG", "BOSTON", "ENGLISH *"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("breed options = %q, want %q", got, want)
	}

	if selected := doc.Find("select#breed option[selected]").AttrOr("data-name", ""); selected != "bulldog" {
		t.Errorf("selected breed = %q, want bulldog", selected)
	}
	if n := doc.Find("select#sub-breed option").Length(); n != 0 {
		t.Errorf("sub breed options = %d, want none for bulldog", n)
	}
}

func TestSubCategoryOptionsFollowCategory(t *testing.T) {
	t.Parallel()

	s, ctx := startSession(t, englishCatalog(), englishFetcher())
	selectCategory(t, ctx, s, 2)

	v := s.View()
	doc := renderDocument(t, v)

	got := optionLabels(doc, "sub-breed")
	if strings.Join(got, ",") != "TELL,GOOD" {
		t.Errorf("sub breed options = %q, want [TELL GOOD]", got)
	}
	if v.SubCategory.Selected != "tell" {
		t.Errorf("selected sub breed = %q, want tell", v.SubCategory.Selected)
	}
	if p := panelOf(t, v, PanelImagesBySubCategory); p.Count != 2 {
		t.Errorf("sub breed images = %d, want 2", p.Count)
	}

	if err := s.SelectSubCategory(ctx, 1); err != nil {
		t.Fatalf("SelectSubCategory() error = %v", err)
	}
	if err := s.WaitSettled(ctx); err != nil {
		t.Fatalf("WaitSettled() error = %v", err)
	}
	if p := panelOf(t, s.View(), PanelImagesBySubCategory); p.Count != 5 {
		t.Errorf("sub breed images = %d, want 5 for good", p.Count)
	}
}

func TestCategoryWithoutSubCategoriesClearsSubPanels(t *testing.T) {
	t.Parallel()

	s, ctx := startSession(t, englishCatalog(), englishFetcher())
	selectCategory(t, ctx, s, 2)
	selectCategory(t, ctx, s, 1)

	v := s.View()
	for _, id := range []PanelID{PanelRandomBySubCategory, PanelImagesBySubCategory} {
		p := panelOf(t, v, id)
		if !p.Empty || len(p.Images) != 0 {
			t.Errorf("%s should be empty, got %d images", id, len(p.Images))
		}
	}

	doc := renderDocument(t, v)
	text := strings.TrimSpace(doc.Find(`.image-container[data-panel="images-sub-breed"]`).Text())
	if text != gallery.EmptyMessage {
		t.Errorf("empty panel text = %q, want %q", text, gallery.EmptyMessage)
	}
}

func TestImageListGrowsOnScroll(t *testing.T) {
	t.Parallel()

	s, ctx := startSession(t, englishCatalog(), englishFetcher())
	selectCategory(t, ctx, s, 2)

	if resets := s.TakeScrollResets(); len(resets) == 0 {
		t.Error("selecting a category should scroll panels back to the top")
	}

	counts := []int{len(panelOf(t, s.View(), PanelImagesByCategory).Images)}
	for range 2 {
		if _, err := s.Scroll(PanelImagesByCategory, bottom); err != nil {
			t.Fatalf("Scroll() error = %v", err)
		}
		counts = append(counts, len(panelOf(t, s.View(), PanelImagesByCategory).Images))
	}

	if fmt.Sprint(counts) != "[4 6 6]" {
		t.Errorf("rendered counts = %v, want [4 6 6]", counts)
	}

	doc := renderDocument(t, s.View())
	heading := strings.TrimSpace(doc.Find("#images-breed .breed-title").Text())
	if heading != "Image List By Breed (6)" {
		t.Errorf("heading = %q", heading)
	}
	if n := doc.Find("#images-breed .image-box").Length(); n != 6 {
		t.Errorf("rendered image boxes = %d, want 6", n)
	}
}

func TestRandomPanelShowsSingleCenteredImage(t *testing.T) {
	t.Parallel()

	s, _ := startSession(t, englishCatalog(), englishFetcher())

	p := panelOf(t, s.View(), PanelRandomByCategory)
	if p.Count != 1 || !p.Centered {
		t.Fatalf("random panel count=%d centered=%v", p.Count, p.Centered)
	}
	if p.Heading() != "Random Image By Breed" {
		t.Errorf("Heading() = %q", p.Heading())
	}
}

func TestImageLoadEvents(t *testing.T) {
	t.Parallel()

	s, _ := startSession(t, englishCatalog(), englishFetcher())

	images := panelOf(t, s.View(), PanelImagesByCategory).Images
	if len(images) != 3 {
		t.Fatalf("bulldog images = %d, want 3", len(images))
	}
	first, second := images[0], images[1]
	if first.Shown != placeholder {
		t.Errorf("pending image shows %q", first.Shown)
	}

	if err := s.ImageLoaded(PanelImagesByCategory, first.ID); err != nil {
		t.Fatalf("ImageLoaded() error = %v", err)
	}
	if err := s.ImageFailed(PanelImagesByCategory, second.ID); err != nil {
		t.Fatalf("ImageFailed() error = %v", err)
	}

	images = panelOf(t, s.View(), PanelImagesByCategory).Images
	if !images[0].Loaded || images[0].Shown != first.Src {
		t.Errorf("loaded image = %+v", images[0])
	}
	if !images[1].Failed || images[1].Shown != placeholder {
		t.Errorf("failed image = %+v", images[1])
	}

	doc := renderDocument(t, s.View())
	box := doc.Find(fmt.Sprintf(`#images-breed .image-box[data-id=%q]`, second.ID))
	if box.Find("img.source").Length() != 0 {
		t.Error("failed image should not be requested again")
	}
	if src := box.Find("img.placeholder").AttrOr("src", ""); src != placeholder {
		t.Errorf("placeholder src = %q", src)
	}

	if err := s.ImageLoaded(PanelImagesByCategory, "missing"); !errors.Is(err, ErrUnknownImage) {
		t.Errorf("unknown image error = %v", err)
	}
	if err := s.ImageLoaded("nope", first.ID); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("unknown panel error = %v", err)
	}
}

func TestFailedFetchShowsEmptyPanels(t *testing.T) {
	t.Parallel()

	fetcher := englishFetcher()
	delete(fetcher.images, "boston")

	s, ctx := startSession(t, englishCatalog(), fetcher)
	selectCategory(t, ctx, s, 1)

	v := s.View()
	for _, id := range []PanelID{PanelRandomByCategory, PanelImagesByCategory} {
		if p := panelOf(t, v, id); !p.Empty {
			t.Errorf("%s should be empty after a failed fetch", id)
		}
	}
	if v.Loading {
		t.Error("view should not be loading once settled")
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	s, ctx := startSession(t, englishCatalog(), englishFetcher())
	selectCategory(t, ctx, s, 2)

	var buf bytes.Buffer
	if err := RenderText(&buf, s.View()); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Breed: BULLDOG BOSTON [ENGLISH *]",
		"Sub Breed: [TELL] GOOD",
		"== Image List By Breed (6) ==",
		"... 2 more",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
