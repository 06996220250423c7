package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"dogceo/dashboard/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Source fetches the full taxonomy
type Source interface {
	ListAll(ctx context.Context) (domain.Catalog, error)
}

// Loader fetches the catalog once. Later calls return the first outcome.
type Loader struct {
	source Source
	once   sync.Once
	loaded atomic.Bool

	catalog domain.Catalog
}

func NewLoader(source Source) *Loader {
	return &Loader{
		source:  source,
		catalog: domain.EmptyCatalog,
	}
}

// Load issues the single catalog fetch on its first call. A failed fetch yields the
// empty catalog and is only logged.
func (l *Loader) Load(ctx context.Context) domain.Catalog {
	l.once.Do(func() {
		catalog, err := l.source.ListAll(ctx)
		if err != nil {
			log.Errorf("❌ Failed to load catalog: %v", err)
			catalog = domain.EmptyCatalog
		} else {
			log.Infof("📚 Loaded catalog with %d categories", catalog.Len())
		}

		l.catalog = catalog
		l.loaded.Store(true)
	})

	return l.catalog
}

// Loaded reports whether the first load has completed.
func (l *Loader) Loaded() bool {
	return l.loaded.Load()
}
