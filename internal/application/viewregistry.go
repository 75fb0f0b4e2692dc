package application

import (
	"sync"
	"time"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// View names used for metrics labels.
const (
	ViewDealerList   = "dealer_list"
	ViewDealerDetail = "dealer_detail"
	ViewReviewForm   = "review_form"
)

// DealerList is the value held by the dealer list region.
type DealerList struct {
	Region  string
	Dealers []model.Dealer
	// Regions are the filter choices, AllRegions first, then distinct states
	// of the unfiltered list in first-seen order.
	Regions []string
}

// DealerPage is the value held by a dealer detail region.
type DealerPage struct {
	Dealer  model.Dealer
	Reviews []model.Review
}

// ReviewForm is the value held by a review submission region.
type ReviewForm struct {
	Dealer    model.Dealer
	CarModels []model.CarModel
}

// pageKey names one region of one rendered page. page is the id the page
// shell minted; dealer is zero for the dealer list.
type pageKey struct {
	page   string
	dealer int
}

type viewEntry[T any] struct {
	res      *Resource[T]
	lastSeen time.Time
}

// VisitorViews is the view state of one browser. Every rendered page gets its
// own resources, so two tabs showing the same region never supersede each
// other while requests issued from one page still do.
type VisitorViews struct {
	mu         sync.Mutex
	observer   ViewObserver
	now        func() time.Time
	lastAccess time.Time

	dealers map[pageKey]*viewEntry[DealerList]
	pages   map[pageKey]*viewEntry[DealerPage]
	forms   map[pageKey]*viewEntry[ReviewForm]
}

func newVisitorViews(observer ViewObserver, now func() time.Time) *VisitorViews {
	return &VisitorViews{
		observer:   observer,
		now:        now,
		lastAccess: now(),
		dealers:    make(map[pageKey]*viewEntry[DealerList]),
		pages:      make(map[pageKey]*viewEntry[DealerPage]),
		forms:      make(map[pageKey]*viewEntry[ReviewForm]),
	}
}

// DealerList returns the dealer list region of page, creating it unloaded.
func (v *VisitorViews) DealerList(page string) *Resource[DealerList] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return lookup(v.dealers, pageKey{page: page}, v.now(), ViewDealerList, v.observer)
}

// DealerPage returns the detail region of dealer id on page, creating it unloaded.
func (v *VisitorViews) DealerPage(page string, id int) *Resource[DealerPage] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return lookup(v.pages, pageKey{page: page, dealer: id}, v.now(), ViewDealerDetail, v.observer)
}

// ReviewForm returns the review form region of dealer id on page, creating it unloaded.
func (v *VisitorViews) ReviewForm(page string, id int) *Resource[ReviewForm] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return lookup(v.forms, pageKey{page: page, dealer: id}, v.now(), ViewReviewForm, v.observer)
}

// prune drops regions not used since cutoff and returns how many are left.
func (v *VisitorViews) prune(cutoff time.Time) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return pruneEntries(v.dealers, cutoff) + pruneEntries(v.pages, cutoff) + pruneEntries(v.forms, cutoff)
}

func lookup[T any](m map[pageKey]*viewEntry[T], key pageKey, now time.Time, view string, observer ViewObserver) *Resource[T] {
	e, ok := m[key]
	if !ok {
		e = &viewEntry[T]{res: NewResource[T](view, observer)}
		m[key] = e
	}
	e.lastSeen = now
	return e.res
}

func pruneEntries[T any](m map[pageKey]*viewEntry[T], cutoff time.Time) int {
	for key, e := range m {
		if e.lastSeen.Before(cutoff) {
			delete(m, key)
		}
	}
	return len(m)
}

// Registry keeps VisitorViews keyed by visitor id.
type Registry struct {
	mu       sync.Mutex
	observer ViewObserver
	now      func() time.Time
	visitors map[string]*VisitorViews
}

// NewRegistry creates an empty Registry. observer may be nil.
func NewRegistry(observer ViewObserver) *Registry {
	return &Registry{
		observer: observer,
		now:      time.Now,
		visitors: make(map[string]*VisitorViews),
	}
}

// Visitor returns the views of visitor id, creating them on first use, and
// records the access.
func (r *Registry) Visitor(id string) *VisitorViews {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[id]
	if !ok {
		v = newVisitorViews(r.observer, func() time.Time { return r.now() })
		r.visitors[id] = v
	}

	v.mu.Lock()
	v.lastAccess = r.now()
	v.mu.Unlock()

	return v
}

// Sweep drops visitors not accessed within idle, and the regions of kept
// visitors not used within idle. It returns how many visitors were dropped and
// reports what is left to the observer.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	dropped, regions := 0, 0
	for id, v := range r.visitors {
		v.mu.Lock()
		last := v.lastAccess
		v.mu.Unlock()

		if last.Before(cutoff) {
			delete(r.visitors, id)
			dropped++
			continue
		}
		regions += v.prune(cutoff)
	}

	if r.observer != nil {
		r.observer.ObserveTracked(len(r.visitors), regions)
	}
	return dropped
}
