package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"dogceo/dashboard/internal/domain"
)

type countingSource struct {
	calls   atomic.Int32
	catalog domain.Catalog
	err     error
}

func (s *countingSource) ListAll(context.Context) (domain.Catalog, error) {
	s.calls.Add(1)
	return s.catalog, s.err
}

func TestLoaderFetchesOnce(t *testing.T) {
	t.Parallel()

	source := &countingSource{
		catalog: domain.CatalogFromMap(map[string][]string{"beagle": {}, "hound": {"afghan"}}),
	}
	loader := NewLoader(source)

	if loader.Loaded() {
		t.Fatal("loader should not report loaded before Load")
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := loader.Load(context.Background()); got.Len() != 2 {
				t.Errorf("Load() returned %d categories, want 2", got.Len())
			}
		}()
	}
	wg.Wait()

	if calls := source.calls.Load(); calls != 1 {
		t.Errorf("source called %d times, want 1", calls)
	}
	if !loader.Loaded() {
		t.Error("loader should report loaded")
	}
}

func TestLoaderFailureYieldsEmptyCatalog(t *testing.T) {
	t.Parallel()

	source := &countingSource{
		catalog: domain.CatalogFromMap(map[string][]string{"ignored": {}}),
		err:     errors.New("connection refused"),
	}
	loader := NewLoader(source)

	if got := loader.Load(context.Background()); !got.IsEmpty() {
		t.Fatalf("Load() = %v, want empty catalog", got.Categories())
	}

	// No retry after a failure.
	loader.Load(context.Background())
	if calls := source.calls.Load(); calls != 1 {
		t.Errorf("source called %d times, want 1", calls)
	}
}
