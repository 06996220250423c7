package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"dogceo/dashboard/internal/client"
	"dogceo/dashboard/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownName     = errors.New("unknown name")
	ErrNotRunning      = errors.New("synchronizer is not running")
	ErrAlreadyRunning  = errors.New("synchronizer is already running")
)

// Fetcher is the image side of the remote provider
type Fetcher interface {
	Images(ctx context.Context, scope client.Scope) (*domain.ImageList, error)
	RandomImage(ctx context.Context, scope client.Scope) (domain.ImageRecord, error)
}

// CatalogLoader provides the taxonomy, fetched once
type CatalogLoader interface {
	Load(ctx context.Context) domain.Catalog
}

// Synchronizer keeps the selection hierarchy and the image results consistent.
// All state is owned by the goroutine running Run; other goroutines post events and
// read published snapshots.
type Synchronizer struct {
	fetcher Fetcher
	loader  CatalogLoader

	events   chan event
	done     chan struct{}
	running  atomic.Bool
	inflight sync.WaitGroup

	subsMutex   sync.Mutex
	current     atomic.Pointer[Snapshot]
	subscribers map[chan Snapshot]struct{}

	state loopState
}

type event struct {
	apply func() error
	reply chan error
}

// subKey identifies the sub-category tier value.
type subKey struct {
	category    string
	subCategory string
}

type loopState struct {
	catalog       domain.Catalog
	catalogLoaded bool
	selection     domain.Selection
	results       domain.ResultSet

	lastCategory   string
	lastSub        subKey
	categoryGen    uint64
	subGen         uint64
	categoryStatus TierStatus
	subStatus      TierStatus

	version   uint64
	discarded uint64
}

func New(fetcher Fetcher, loader CatalogLoader) *Synchronizer {
	s := &Synchronizer{
		fetcher:     fetcher,
		loader:      loader,
		events:      make(chan event),
		done:        make(chan struct{}),
		subscribers: make(map[chan Snapshot]struct{}),
		state: loopState{
			catalog: domain.EmptyCatalog,
			results: domain.NewResultSet(),
		},
	}
	initial := s.state.snapshot()
	s.current.Store(&initial)
	return s
}

// Run loads the catalog once and processes events until ctx is cancelled.
// Fetches started by the loop use ctx and are waited for before Run returns.
func (s *Synchronizer) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)
	defer s.inflight.Wait()

	s.spawn(func() {
		catalog := s.loader.Load(ctx)
		s.deliver(ctx, func() {
			s.state.catalog = catalog
			s.state.catalogLoaded = true
		})
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug("Synchronizer stopped")
			return nil
		case ev := <-s.events:
			err := ev.apply()
			s.reconcile(ctx)
			s.publish()
			if ev.reply != nil {
				ev.reply <- err
			}
		}
	}
}

// SelectCategory selects the category at index. A different index resets the sub-category.
func (s *Synchronizer) SelectCategory(ctx context.Context, index int) error {
	return s.post(ctx, func() error {
		if index < 0 || index >= s.state.catalog.Len() {
			return fmt.Errorf("category %d of %d: %w", index, s.state.catalog.Len(), ErrIndexOutOfRange)
		}
		s.state.selection = s.state.selection.WithCategory(index)
		return nil
	})
}

// SelectSubCategory selects the sub-category at index within the active category.
func (s *Synchronizer) SelectSubCategory(ctx context.Context, index int) error {
	return s.post(ctx, func() error {
		subs := s.state.selection.SubCategories(s.state.catalog)
		if index < 0 || index >= len(subs) {
			return fmt.Errorf("sub-category %d of %d: %w", index, len(subs), ErrIndexOutOfRange)
		}
		s.state.selection = s.state.selection.WithSubCategory(index)
		return nil
	})
}

// SelectCategoryByName selects a category by its name.
func (s *Synchronizer) SelectCategoryByName(ctx context.Context, name string) error {
	return s.post(ctx, func() error {
		for i, category := range s.state.catalog.Categories() {
			if category == name {
				s.state.selection = s.state.selection.WithCategory(i)
				return nil
			}
		}
		return fmt.Errorf("category %q: %w", name, ErrUnknownName)
	})
}

// SelectSubCategoryByName selects a sub-category of the active category by its name.
func (s *Synchronizer) SelectSubCategoryByName(ctx context.Context, name string) error {
	return s.post(ctx, func() error {
		for i, sub := range s.state.selection.SubCategories(s.state.catalog) {
			if sub == name {
				s.state.selection = s.state.selection.WithSubCategory(i)
				return nil
			}
		}
		return fmt.Errorf("sub-category %q: %w", name, ErrUnknownName)
	})
}

// Snapshot returns the latest published state.
func (s *Synchronizer) Snapshot() Snapshot {
	return *s.current.Load()
}

// Subscribe returns a channel holding the latest snapshot. A slow reader only misses
// intermediate snapshots, never the newest one.
func (s *Synchronizer) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subsMutex.Lock()
	s.subscribers[ch] = struct{}{}
	offer(ch, *s.current.Load())
	s.subsMutex.Unlock()

	return ch, func() {
		s.subsMutex.Lock()
		delete(s.subscribers, ch)
		s.subsMutex.Unlock()
	}
}

// WaitFor blocks until a published snapshot satisfies cond.
func (s *Synchronizer) WaitFor(ctx context.Context, cond func(Snapshot) bool) (Snapshot, error) {
	updates, cancel := s.Subscribe()
	defer cancel()

	for {
		select {
		case snap := <-updates:
			if cond(snap) {
				return snap, nil
			}
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

func (s *Synchronizer) post(ctx context.Context, apply func() error) error {
	reply := make(chan error, 1)

	select {
	case s.events <- event{apply: apply, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrNotRunning
	}

	return <-reply
}

// deliver hands a settlement to the loop unless the loop is gone.
func (s *Synchronizer) deliver(ctx context.Context, apply func()) {
	select {
	case s.events <- event{apply: func() error { apply(); return nil }}:
	case <-ctx.Done():
	case <-s.done:
	}
}

func (s *Synchronizer) spawn(fn func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn()
	}()
}

// reconcile starts the tier work implied by the current selection.
func (s *Synchronizer) reconcile(ctx context.Context) {
	st := &s.state

	category := st.selection.ActiveCategory(st.catalog)
	if category != st.lastCategory {
		st.lastCategory = category
		st.categoryGen++

		if category == "" {
			st.categoryStatus = Idle
		} else {
			st.categoryStatus = Fetching
			s.fetchCategory(ctx, st.categoryGen, category)
		}
	}

	key := subKey{category: category, subCategory: st.selection.ActiveSubCategory(st.catalog)}
	if key != st.lastSub {
		st.lastSub = key
		st.subGen++

		if key.subCategory == "" {
			st.results.RandomBySubCategory = nil
			st.results.ImagesBySubCategory = domain.EmptyImageList()
			st.subStatus = Idle
		} else {
			st.subStatus = Fetching
			s.fetchSubCategory(ctx, st.subGen, key)
		}
	}
}

func (s *Synchronizer) fetchCategory(ctx context.Context, gen uint64, category string) {
	scope := client.Scope{Category: category}
	log.Debugf("🔄 Fetching images for category %s", scope)

	s.spawn(func() {
		outcome := s.fetchPair(ctx, scope)
		s.deliver(ctx, func() {
			st := &s.state
			if gen != st.categoryGen {
				st.discarded++
				log.Debugf("Discarding superseded results for category %s", scope)
				return
			}

			random, images := outcome.resolve()
			st.results.RandomByCategory = random
			st.results.ImagesByCategory = images
			st.selection = st.selection.WithSubCategory(0)
			st.categoryStatus = Settled
		})
	})
}

func (s *Synchronizer) fetchSubCategory(ctx context.Context, gen uint64, key subKey) {
	scope := client.Scope{Category: key.category, SubCategory: key.subCategory}
	log.Debugf("🔄 Fetching images for sub-category %s", scope)

	s.spawn(func() {
		outcome := s.fetchPair(ctx, scope)
		s.deliver(ctx, func() {
			st := &s.state
			if gen != st.subGen {
				st.discarded++
				log.Debugf("Discarding superseded results for sub-category %s", scope)
				return
			}

			random, images := outcome.resolve()
			st.results.RandomBySubCategory = random
			st.results.ImagesBySubCategory = images
			st.subStatus = Settled
		})
	})
}

// pairOutcome is the settlement of the random image and image list fetches of one tier value.
type pairOutcome struct {
	scope     client.Scope
	random    domain.ImageRecord
	randomErr error
	images    *domain.ImageList
	imagesErr error
}

func (s *Synchronizer) fetchPair(ctx context.Context, scope client.Scope) pairOutcome {
	outcome := pairOutcome{scope: scope}

	// Each fetch keeps its own error in the outcome so one failure never cancels
	// the other; the group only joins them.
	var g errgroup.Group
	g.Go(func() error {
		outcome.random, outcome.randomErr = s.fetcher.RandomImage(ctx, scope)
		return nil
	})
	g.Go(func() error {
		outcome.images, outcome.imagesErr = s.fetcher.Images(ctx, scope)
		return nil
	})
	_ = g.Wait()

	return outcome
}

// resolve turns failures into no data: an absent random image and an empty list.
func (o pairOutcome) resolve() (*domain.ImageRecord, *domain.ImageList) {
	var random *domain.ImageRecord
	if o.randomErr != nil {
		log.Warnf("⚠️ Random image for %s unavailable: %v", o.scope, o.randomErr)
	} else {
		record := o.random
		random = &record
	}

	images := o.images
	if o.imagesErr != nil {
		log.Warnf("⚠️ Image list for %s unavailable: %v", o.scope, o.imagesErr)
		images = domain.EmptyImageList()
	} else if images == nil {
		images = domain.EmptyImageList()
	}

	return random, images
}

func (s *Synchronizer) publish() {
	s.state.version++
	snap := s.state.snapshot()

	s.subsMutex.Lock()
	defer s.subsMutex.Unlock()

	s.current.Store(&snap)
	for ch := range s.subscribers {
		offer(ch, snap)
	}
}

func (st *loopState) snapshot() Snapshot {
	return Snapshot{
		Version:           st.version,
		Catalog:           st.catalog,
		CatalogLoaded:     st.catalogLoaded,
		Selection:         st.selection,
		Results:           st.results,
		CategoryStatus:    st.categoryStatus,
		SubCategoryStatus: st.subStatus,
		Discarded:         st.discarded,
	}
}

// offer replaces any unread snapshot in ch with snap.
func offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
