package web

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	vm "github.com/ericfisherdev/bestcars/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

const (
	dealerListPartialPath = "/app/dealers"

	msgNotFound    = "Dealer not found."
	msgUnreachable = "The dealership service is unreachable. Please try again."
	msgMalformed   = "The dealership service sent an unexpected response. Please try again."
	msgBackend     = "The dealership service reported an error. Please try again."
)

// toSessionViewModel converts the current session, which may be nil.
func toSessionViewModel(s *model.Session) vm.SessionViewModel {
	if s == nil {
		return vm.SessionViewModel{}
	}
	return vm.SessionViewModel{
		LoggedIn:    true,
		Username:    s.Username,
		DisplayName: s.DisplayName(),
	}
}

// errorNotice maps a fetch failure onto the notice shown in its region.
func errorNotice(err error) string {
	switch {
	case errors.Is(err, application.ErrDealerNotFound):
		return msgNotFound
	case errors.Is(err, driven.ErrTransport):
		return msgUnreachable
	case errors.Is(err, driven.ErrMalformedResponse):
		return msgMalformed
	default:
		return msgBackend
	}
}

// toRegionState derives the render flags of a region from its snapshot.
// retryPath is dropped when a retry cannot help.
func toRegionState[T any](snap application.Snapshot[T], retryPath string) vm.RegionState {
	state := vm.RegionState{
		Status:  snap.Status.String(),
		Loading: snap.Status == application.StatusLoading || snap.Status == application.StatusUnloaded,
		Empty:   snap.Settled == application.StatusEmpty,
		Failed:  snap.Status == application.StatusFailed,
		HasData: snap.HasData(),
	}
	if state.Failed {
		state.Error = errorNotice(snap.Err)
		if !errors.Is(snap.Err, application.ErrDealerNotFound) {
			state.RetryPath = retryPath
		}
	}
	return state
}

func dealerName(d model.Dealer) string {
	if d.FullName != "" {
		return d.FullName
	}
	return d.ShortName
}

func dealerPath(id int) string {
	return "/dealer/" + strconv.Itoa(id)
}

func postReviewPath(id int) string {
	return "/postreview/" + strconv.Itoa(id)
}

// withView appends the page instance to a region path.
func withView(path, view string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	if view != "" {
		q.Set(viewParam, view)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func dealerListPartial(view, region string) string {
	q := url.Values{}
	if region != "" && region != model.AllRegions {
		q.Set("region", region)
	}
	return withView(dealerListPartialPath, view, q)
}

func dealerDetailPartial(view string, id int) string {
	return withView(fmt.Sprintf("/app/dealers/%d", id), view, nil)
}

func reviewFormPartial(view string, id int) string {
	return withView(fmt.Sprintf("/app/dealers/%d/review-form", id), view, nil)
}

// toDealerListViewModel converts the dealer list region. Rows always reflect
// the last successful request only.
func toDealerListViewModel(view string, snap application.Snapshot[application.DealerList], loggedIn bool) vm.DealerListViewModel {
	region := application.NormalizeRegion(snap.Params)
	if snap.HasData() {
		region = snap.Value.Region
	}

	v := vm.DealerListViewModel{
		State:            toRegionState(snap, dealerListPartial(view, snap.Params)),
		Region:           region,
		ShowReviewColumn: loggedIn,
		PartialPath:      dealerListPartial(view, ""),
	}

	choices := snap.Value.Regions
	if len(choices) == 0 {
		choices = []string{model.AllRegions}
		if region != model.AllRegions {
			choices = append(choices, region)
		}
	}
	v.Regions = make([]vm.RegionOption, 0, len(choices))
	for _, c := range choices {
		v.Regions = append(v.Regions, vm.RegionOption{Value: c, Selected: c == region})
	}

	if !snap.HasData() {
		return v
	}

	v.Rows = make([]vm.DealerRow, 0, len(snap.Value.Dealers))
	for _, d := range snap.Value.Dealers {
		v.Rows = append(v.Rows, vm.DealerRow{
			ID:         d.ID,
			Name:       dealerName(d),
			City:       d.City,
			Address:    d.Address,
			Zip:        d.Zip,
			State:      d.State,
			DetailPath: dealerPath(d.ID),
			ReviewPath: postReviewPath(d.ID),
		})
	}
	return v
}

func toDealerHeaderViewModel(d model.Dealer) vm.DealerHeaderViewModel {
	return vm.DealerHeaderViewModel{
		ID:      d.ID,
		Name:    dealerName(d),
		City:    d.City,
		Address: d.Address,
		Zip:     d.Zip,
		State:   d.State,
	}
}

// sentimentIcon returns the glyph shown next to a review.
func sentimentIcon(s model.Sentiment) string {
	switch s {
	case model.SentimentPositive:
		return "\U0001F600"
	case model.SentimentNegative:
		return "\U0001F641"
	default:
		return "\U0001F610"
	}
}

func toReviewCardViewModel(r model.Review) vm.ReviewCardViewModel {
	car := r.CarMake + " " + r.CarModel
	if r.CarYear > 0 {
		car += " " + strconv.Itoa(r.CarYear)
	}

	var note string
	if r.Purchase {
		note = "Purchased"
		if r.PurchaseDate != "" {
			note += " on " + r.PurchaseDate
		}
	}

	return vm.ReviewCardViewModel{
		Reviewer:      r.Name,
		BodyHTML:      RenderReviewBody(r.Body),
		Car:           car,
		PurchaseNote:  note,
		Sentiment:     string(r.Sentiment),
		SentimentIcon: sentimentIcon(r.Sentiment),
	}
}

// toDealerDetailViewModel converts the dealer detail region of dealer id.
// The post review affordance is derived from the session at render time.
func toDealerDetailViewModel(view string, id int, snap application.Snapshot[application.DealerPage], loggedIn bool) vm.DealerDetailViewModel {
	v := vm.DealerDetailViewModel{
		State:          toRegionState(snap, dealerDetailPartial(view, id)),
		CanPostReview:  loggedIn,
		PostReviewPath: postReviewPath(id),
		NotFound:       errors.Is(snap.Err, application.ErrDealerNotFound) && snap.Status == application.StatusFailed,
	}
	if !snap.HasData() {
		return v
	}

	v.Dealer = toDealerHeaderViewModel(snap.Value.Dealer)
	v.Reviews = make([]vm.ReviewCardViewModel, 0, len(snap.Value.Reviews))
	for _, r := range snap.Value.Reviews {
		v.Reviews = append(v.Reviews, toReviewCardViewModel(r))
	}
	return v
}

// toReviewFormViewModel converts the review form region of dealer id on page
// view with the values entered so far.
func toReviewFormViewModel(
	view string,
	id int,
	snap application.Snapshot[application.ReviewForm],
	values vm.ReviewFormValues,
	submitErr string,
	csrf string,
) vm.ReviewFormViewModel {
	v := vm.ReviewFormViewModel{
		State:      toRegionState(snap, reviewFormPartial(view, id)),
		View:       view,
		DealerID:   id,
		Values:     values,
		Error:      submitErr,
		ActionPath: postReviewPath(id),
		CSRFToken:  csrf,
		MinYear:    application.MinCarYear,
		MaxYear:    application.MaxCarYear,
		NotFound:   errors.Is(snap.Err, application.ErrDealerNotFound) && snap.Status == application.StatusFailed,
	}
	if !snap.HasData() {
		return v
	}

	v.DealerName = dealerName(snap.Value.Dealer)
	v.CarOptions = make([]vm.CarOption, 0, len(snap.Value.CarModels))
	for _, c := range snap.Value.CarModels {
		value := application.CarOptionValue(c)
		v.CarOptions = append(v.CarOptions, vm.CarOption{
			Value:    value,
			Label:    c.Label(),
			Selected: value == values.Car,
		})
	}
	return v
}
