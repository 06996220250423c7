package gallery

import "dogceo/dashboard/internal/domain"

type CellState int

const (
	// Pending shows the placeholder until the image resource loads
	Pending CellState = iota
	// Loaded shows the image itself
	Loaded
)

func (s CellState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Cell is one lazily loaded image. A load error puts the placeholder back; whether the
// resource is tried again is up to the host's image pipeline.
type Cell struct {
	record      domain.ImageRecord
	placeholder string
	state       CellState
	attempts    int
}

func newCell(record domain.ImageRecord, placeholder string) *Cell {
	return &Cell{
		record:      record,
		placeholder: placeholder,
	}
}

func (c *Cell) ID() string {
	return c.record.ID
}

func (c *Cell) Src() string {
	return c.record.Src
}

func (c *Cell) State() CellState {
	return c.state
}

// Shown returns the URL the cell currently displays.
func (c *Cell) Shown() string {
	if c.state == Loaded {
		return c.record.Src
	}
	return c.placeholder
}

// MarkLoaded records a successful load of the image resource.
func (c *Cell) MarkLoaded() {
	c.attempts++
	c.state = Loaded
}

// MarkFailed records a failed load and re-arms the placeholder.
func (c *Cell) MarkFailed() {
	c.attempts++
	c.state = Pending
}

// Attempts counts reported load outcomes.
func (c *Cell) Attempts() int {
	return c.attempts
}
