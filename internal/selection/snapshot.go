package selection

import "dogceo/dashboard/internal/domain"

type TierStatus int

const (
	// Idle means no fetch is active for the tier
	Idle TierStatus = iota
	// Fetching means requests for the current tier value are in flight
	Fetching
	// Settled means the results reflect the current tier value
	Settled
)

func (s TierStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the synchronizer state after one event.
type Snapshot struct {
	Version       uint64
	Catalog       domain.Catalog
	CatalogLoaded bool
	Selection     domain.Selection
	Results       domain.ResultSet

	CategoryStatus    TierStatus
	SubCategoryStatus TierStatus

	// Discarded counts settlements dropped because a newer selection superseded them
	Discarded uint64
}

func (s Snapshot) Categories() []string {
	return s.Catalog.Categories()
}

func (s Snapshot) ActiveCategory() string {
	return s.Selection.ActiveCategory(s.Catalog)
}

func (s Snapshot) SubCategories() []string {
	return s.Selection.SubCategories(s.Catalog)
}

func (s Snapshot) ActiveSubCategory() string {
	return s.Selection.ActiveSubCategory(s.Catalog)
}

// HasSubCategories inspects the loaded catalog only.
func (s Snapshot) HasSubCategories(category string) bool {
	return s.Catalog.HasSubCategories(category)
}

// Settled reports whether the catalog is loaded and no tier is fetching.
func (s Snapshot) Settled() bool {
	return s.CatalogLoaded && s.CategoryStatus != Fetching && s.SubCategoryStatus != Fetching
}
