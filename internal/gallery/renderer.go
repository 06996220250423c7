package gallery

import "dogceo/dashboard/internal/domain"

// EmptyMessage is shown instead of cells when nothing is rendered.
const EmptyMessage = "No Images To Preview"

// WindowConfig controls the rendered prefix of a source list
type WindowConfig struct {
	InitialBatches int
	BatchSize      int
	// Threshold is the distance from the bottom that counts as reaching it
	Threshold float64
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		InitialBatches: 2,
		BatchSize:      2,
		Threshold:      5,
	}
}

// Metrics describes the scroll position of a viewport.
type Metrics struct {
	ScrollTop    float64 `json:"scrollTop"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
}

func (m Metrics) nearBottom(threshold float64) bool {
	return m.ScrollTop+m.ClientHeight >= m.ScrollHeight-threshold
}

// Viewport is the scrollable container a renderer draws into.
type Viewport interface {
	ScrollToTop()
}

// Renderer displays a growing prefix of an image list. It is not safe for concurrent use.
type Renderer struct {
	cfg         WindowConfig
	placeholder string
	viewport    Viewport

	source *domain.ImageList
	offset int
	cells  []*Cell
	resets int
}

func NewRenderer(cfg WindowConfig, placeholder string) *Renderer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWindowConfig().BatchSize
	}
	if cfg.InitialBatches < 0 {
		cfg.InitialBatches = 0
	}
	return &Renderer{
		cfg:         cfg,
		placeholder: placeholder,
	}
}

// SetViewport attaches the container that is scrolled back to the top on source changes.
func (r *Renderer) SetViewport(v Viewport) {
	r.viewport = v
}

// SetSource replaces the source list. The window only resets when list is a different
// list than the current one; equal content does not matter.
func (r *Renderer) SetSource(list *domain.ImageList) bool {
	if list == r.source {
		return false
	}

	r.source = list
	r.cells = nil
	r.offset = 0
	r.grow(r.cfg.InitialBatches * r.cfg.BatchSize)

	r.resets++
	if r.viewport != nil {
		r.viewport.ScrollToTop()
	}
	return true
}

// Scroll grows the window by one batch when the viewport is near its bottom.
// It reports whether more cells became visible.
func (r *Renderer) Scroll(m Metrics) bool {
	if !m.nearBottom(r.cfg.Threshold) {
		return false
	}
	return r.grow(r.cfg.BatchSize)
}

func (r *Renderer) grow(n int) bool {
	target := min(r.offset+n, r.source.Len())
	if target <= r.offset {
		return false
	}

	for i := r.offset; i < target; i++ {
		r.cells = append(r.cells, newCell(r.source.At(i), r.placeholder))
	}
	r.offset = target
	return true
}

// Visible returns the rendered cells in source order.
func (r *Renderer) Visible() []*Cell {
	return append([]*Cell(nil), r.cells...)
}

// Cell returns the visible cell with the given id.
func (r *Renderer) Cell(id string) (*Cell, bool) {
	for _, c := range r.cells {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Count is the number of rendered cells.
func (r *Renderer) Count() int {
	return r.offset
}

// Total is the length of the source list.
func (r *Renderer) Total() int {
	return r.source.Len()
}

func (r *Renderer) Empty() bool {
	return r.offset == 0
}

// Centered is the layout hint for windows with fewer than two images.
func (r *Renderer) Centered() bool {
	return r.offset < 2
}

// Source returns the current source list.
func (r *Renderer) Source() *domain.ImageList {
	return r.source
}

// Resets counts how many times a new source reset the window.
func (r *Renderer) Resets() int {
	return r.resets
}
