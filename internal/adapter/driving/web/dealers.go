package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/bestcars/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/bestcars/internal/adapter/driving/web/templates/partials"
	"github.com/ericfisherdev/bestcars/internal/application"
)

// DealersPage renders the dealer list shell. The list itself is loaded by
// DealerListPartial, so the first paint shows a loading indicator.
func (h *Handler) DealersPage(w http.ResponseWriter, r *http.Request) {
	h.visitor(w, r)
	page, _ := h.page(w, r, "Dealers", "dealers")
	src := dealerListPartial(newPageView(), application.NormalizeRegion(r.URL.Query().Get("region")))
	h.renderPage(w, r, http.StatusOK, page, pages.Dealers(src))
}

// DealerListPartial fetches the dealers of the requested region and renders
// the list region of the requesting page. Each call replaces the previous
// list whole.
func (h *Handler) DealerListPartial(w http.ResponseWriter, r *http.Request) {
	views := h.visitor(w, r)
	view := pageView(r)
	region := application.NormalizeRegion(r.URL.Query().Get("region"))

	snap, ok := load(r.Context(), views.DealerList(view), region,
		func(ctx context.Context) (application.DealerList, int, error) {
			list, err := h.dealers.List(ctx, region)
			return list, len(list.Dealers), err
		})
	if !ok {
		h.logger.Debug("discarded stale dealer list", "region", region)
		noSwap(w)
		return
	}

	session := h.currentSession(r)
	h.render(w, r, http.StatusOK, partials.DealerList(toDealerListViewModel(view, snap, session != nil)))
}

// DealerPage renders the dealer detail shell.
func (h *Handler) DealerPage(w http.ResponseWriter, r *http.Request) {
	id, ok := dealerID(w, r)
	if !ok {
		return
	}

	h.visitor(w, r)
	page, _ := h.page(w, r, "Dealer", "dealers")
	h.renderPage(w, r, http.StatusOK, page, pages.Dealer(dealerDetailPartial(newPageView(), id)))
}

// DealerDetailPartial fetches a dealer with its reviews and renders the
// detail region. The region is Empty when the dealer has no reviews.
func (h *Handler) DealerDetailPartial(w http.ResponseWriter, r *http.Request) {
	id, ok := dealerID(w, r)
	if !ok {
		return
	}

	views := h.visitor(w, r)
	view := pageView(r)
	snap, ok := load(r.Context(), views.DealerPage(view, id), strconv.Itoa(id),
		func(ctx context.Context) (application.DealerPage, int, error) {
			detail, err := h.dealers.Detail(ctx, id)
			return detail, len(detail.Reviews), err
		})
	if !ok {
		h.logger.Debug("discarded stale dealer detail", "dealer_id", id)
		noSwap(w)
		return
	}

	session := h.currentSession(r)
	h.render(w, r, http.StatusOK, partials.DealerDetail(toDealerDetailViewModel(view, id, snap, session != nil)))
}
