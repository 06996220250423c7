package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dogceo/dashboard/internal/domain"
	"dogceo/dashboard/internal/gallery"
	"dogceo/dashboard/internal/selection"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownPanel = errors.New("unknown panel")
	ErrUnknownImage = errors.New("image not visible")
)

type PanelID string

const (
	PanelRandomByCategory    PanelID = "random-breed"
	PanelRandomBySubCategory PanelID = "random-sub-breed"
	PanelImagesByCategory    PanelID = "images-breed"
	PanelImagesBySubCategory PanelID = "images-sub-breed"
)

var panelTitles = []struct {
	id    PanelID
	title string
}{
	{PanelRandomByCategory, "Random Image By Breed"},
	{PanelRandomBySubCategory, "Random Image By Sub Breed"},
	{PanelImagesByCategory, "Image List By Breed"},
	{PanelImagesBySubCategory, "Image List By Sub Breed"},
}

// PanelIDs lists the panels in display order.
func PanelIDs() []PanelID {
	ids := make([]PanelID, 0, len(panelTitles))
	for _, pt := range panelTitles {
		ids = append(ids, pt.id)
	}
	return ids
}

// Engine drives the selection and its results
type Engine interface {
	Run(ctx context.Context) error
	SelectCategory(ctx context.Context, index int) error
	SelectSubCategory(ctx context.Context, index int) error
	SelectCategoryByName(ctx context.Context, name string) error
	SelectSubCategoryByName(ctx context.Context, name string) error
	Subscribe() (<-chan selection.Snapshot, func())
	WaitFor(ctx context.Context, cond func(selection.Snapshot) bool) (selection.Snapshot, error)
	Snapshot() selection.Snapshot
}

type Options struct {
	Title       string
	Window      gallery.WindowConfig
	Placeholder string
}

// Session is one user's dashboard: an engine plus four incrementally rendered panels.
type Session struct {
	id     string
	title  string
	engine Engine

	mutex    sync.Mutex
	panels   []*panel
	snapshot selection.Snapshot
	applied  bool
	resets   []PanelID

	changes chan struct{}
}

type panel struct {
	id          PanelID
	title       string
	placeholder string
	renderer    *gallery.Renderer
	session     *Session

	randomFed bool
	random    *domain.ImageRecord
}

// ScrollToTop records that the panel's container must scroll back to the top.
// Called with the session mutex held.
func (p *panel) ScrollToTop() {
	p.session.resets = append(p.session.resets, p.id)
}

func NewSession(id string, engine Engine, opts Options) *Session {
	s := &Session{
		id:       id,
		title:    opts.Title,
		engine:   engine,
		snapshot: engine.Snapshot(),
		changes:  make(chan struct{}, 1),
	}

	for _, pt := range panelTitles {
		p := &panel{
			id:          pt.id,
			title:       pt.title,
			placeholder: opts.Placeholder,
			renderer:    gallery.NewRenderer(opts.Window, opts.Placeholder),
			session:     s,
		}
		p.renderer.SetViewport(p)
		s.panels = append(s.panels, p)
	}

	s.notify()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Run drives the engine and feeds its snapshots to the panels until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	updates, unsubscribe := s.engine.Subscribe()
	g.Go(func() error {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap := <-updates:
				s.apply(snap)
			}
		}
	})

	g.Go(func() error {
		if err := s.engine.Run(ctx); err != nil {
			return fmt.Errorf("session %s: %w", s.id, err)
		}
		return nil
	})

	return g.Wait()
}

// Changes signals that the view changed. Signals coalesce.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) SelectCategory(ctx context.Context, index int) error {
	return s.engine.SelectCategory(ctx, index)
}

func (s *Session) SelectSubCategory(ctx context.Context, index int) error {
	return s.engine.SelectSubCategory(ctx, index)
}

func (s *Session) SelectCategoryByName(ctx context.Context, name string) error {
	return s.engine.SelectCategoryByName(ctx, name)
}

func (s *Session) SelectSubCategoryByName(ctx context.Context, name string) error {
	return s.engine.SelectSubCategoryByName(ctx, name)
}

// WaitSettled blocks until the catalog is loaded and no tier is fetching, and the panels show it.
func (s *Session) WaitSettled(ctx context.Context) error {
	snap, err := s.engine.WaitFor(ctx, selection.Snapshot.Settled)
	if err != nil {
		return err
	}
	s.apply(snap)
	return nil
}

// Scroll forwards viewport metrics to a panel.
func (s *Session) Scroll(id PanelID, m gallery.Metrics) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, err := s.panel(id)
	if err != nil {
		return false, err
	}

	grew := p.renderer.Scroll(m)
	if grew {
		s.notify()
	}
	return grew, nil
}

// ImageLoaded marks a visible image as loaded.
func (s *Session) ImageLoaded(id PanelID, imageID string) error {
	return s.updateCell(id, imageID, (*gallery.Cell).MarkLoaded)
}

// ImageFailed puts the placeholder back for a visible image.
func (s *Session) ImageFailed(id PanelID, imageID string) error {
	return s.updateCell(id, imageID, (*gallery.Cell).MarkFailed)
}

func (s *Session) updateCell(id PanelID, imageID string, update func(*gallery.Cell)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, err := s.panel(id)
	if err != nil {
		return err
	}
	cell, ok := p.renderer.Cell(imageID)
	if !ok {
		return fmt.Errorf("%s in %s: %w", imageID, id, ErrUnknownImage)
	}

	update(cell)
	s.notify()
	return nil
}

// VisibleImages returns the sources of the rendered cells of a panel, keyed by image id.
func (s *Session) VisibleImages(id PanelID) (map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, err := s.panel(id)
	if err != nil {
		return nil, err
	}
	images := make(map[string]string)
	for _, c := range p.renderer.Visible() {
		images[c.ID()] = c.Src()
	}
	return images, nil
}

// View builds the current view.
func (s *Session) View() View {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	panels := make([]PanelView, 0, len(s.panels))
	for _, p := range s.panels {
		panels = append(panels, panelView(p))
	}

	return View{
		SessionID:   s.id,
		Title:       s.title,
		Category:    CategorySelector(s.snapshot),
		SubCategory: SubCategorySelector(s.snapshot),
		Panels:      panels,
		Loading:     !s.snapshot.Settled(),
	}
}

// TakeScrollResets returns the panels whose window reset since the last call.
func (s *Session) TakeScrollResets() []PanelID {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	resets := s.resets
	s.resets = nil
	return resets
}

func (s *Session) apply(snap selection.Snapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.applied && snap.Version <= s.snapshot.Version {
		return
	}
	s.applied = true
	s.snapshot = snap

	results := snap.Results
	s.panels[0].feedRandom(results.RandomByCategory)
	s.panels[1].feedRandom(results.RandomBySubCategory)
	s.panels[2].renderer.SetSource(results.ImagesByCategory)
	s.panels[3].renderer.SetSource(results.ImagesBySubCategory)

	log.Debugf("Session %s applied snapshot %d", s.id, snap.Version)
	s.notify()
}

// feedRandom shows a single random image. The window only resets for a new record.
func (p *panel) feedRandom(record *domain.ImageRecord) {
	if p.randomFed && record == p.random {
		return
	}
	p.randomFed = true
	p.random = record

	if record == nil {
		p.renderer.SetSource(domain.EmptyImageList())
		return
	}
	p.renderer.SetSource(domain.ImageListOf(*record))
}

func (s *Session) panel(id PanelID) (*panel, error) {
	for _, p := range s.panels {
		if p.id == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", id, ErrUnknownPanel)
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
