package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/bestcars/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/bestcars/internal/adapter/driving/web/templates/partials"
	vm "github.com/ericfisherdev/bestcars/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

const (
	msgSubmitFailed   = "Failed to submit review."
	msgSessionExpired = "Your session has expired. Please log in again."
)

// PostReviewPage renders the review form shell. Visitors without a session
// are sent to the login page.
func (h *Handler) PostReviewPage(w http.ResponseWriter, r *http.Request) {
	id, ok := dealerID(w, r)
	if !ok {
		return
	}

	h.visitor(w, r)
	page, session := h.page(w, r, "Post Review", "dealers")
	if session == nil {
		redirect(w, r, "/login")
		return
	}

	h.renderPage(w, r, http.StatusOK, page, pages.PostReview(reviewFormPartial(newPageView(), id), nil, ""))
}

// ReviewFormPartial fetches the dealer and the car catalog and renders the
// empty review form.
func (h *Handler) ReviewFormPartial(w http.ResponseWriter, r *http.Request) {
	id, ok := dealerID(w, r)
	if !ok {
		return
	}

	if h.currentSession(r) == nil {
		redirect(w, r, "/login")
		return
	}

	views := h.visitor(w, r)
	view := pageView(r)
	snap, ok := h.loadReviewForm(r.Context(), views.ReviewForm(view, id), id)
	if !ok {
		h.logger.Debug("discarded stale review form", "dealer_id", id)
		noSwap(w)
		return
	}

	csrf := csrfToken(w, r, h.secureCookies)
	h.render(w, r, http.StatusOK, partials.ReviewForm(toReviewFormViewModel(view, id, snap, vm.ReviewFormValues{}, "", csrf)))
}

func (h *Handler) loadReviewForm(ctx context.Context, res *application.Resource[application.ReviewForm], id int) (application.Snapshot[application.ReviewForm], bool) {
	return load(ctx, res, strconv.Itoa(id),
		func(ctx context.Context) (application.ReviewForm, int, error) {
			form, err := h.dealers.ReviewForm(ctx, id)
			return form, len(form.CarModels), err
		})
}

// SubmitReview validates and posts a review. Success navigates to the dealer
// detail page; any failure re-renders the form with the entered values and
// an inline message.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := dealerID(w, r)
	if !ok {
		return
	}

	views := h.visitor(w, r)
	view := pageView(r)
	page, session := h.page(w, r, "Post Review", "dealers")
	if session == nil {
		redirect(w, r, "/login")
		return
	}

	in := application.ReviewInput{
		Body:         r.FormValue("review"),
		Purchase:     r.FormValue("purchase") != "",
		PurchaseDate: r.FormValue("purchase_date"),
		Car:          r.FormValue("car"),
		Year:         r.FormValue("year"),
	}

	err := h.reviews.Submit(r.Context(), session, id, in)
	if err == nil {
		redirect(w, r, dealerPath(id))
		return
	}

	status, msg := submitFailure(err)

	// The form is rebuilt from the region's last good data, fetching it only
	// when this page never loaded it. A refetch superseded by the page's own
	// region load falls back to the loading shell.
	res := views.ReviewForm(view, id)
	snap := res.Snapshot()
	if !snap.HasData() {
		fresh, ok := h.loadReviewForm(r.Context(), res, id)
		if !ok {
			h.renderPage(w, r, status, page, pages.PostReview(reviewFormPartial(view, id), nil, msg))
			return
		}
		snap = fresh
	}

	values := vm.ReviewFormValues{
		Body:         in.Body,
		Purchase:     in.Purchase,
		PurchaseDate: in.PurchaseDate,
		Car:          in.Car,
		Year:         in.Year,
	}
	form := toReviewFormViewModel(view, id, snap, values, msg, page.CSRFToken)
	h.renderPage(w, r, status, page, pages.PostReview(reviewFormPartial(view, id), &form, ""))
}

// submitFailure maps a submission error onto a status and inline message.
func submitFailure(err error) (int, string) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Message
	case errors.Is(err, driven.ErrUnauthorized):
		return http.StatusUnauthorized, msgSessionExpired
	default:
		return http.StatusBadGateway, msgSubmitFailed
	}
}
