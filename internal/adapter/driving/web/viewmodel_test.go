package web

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	vm "github.com/ericfisherdev/bestcars/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

func TestToRegionState_UnloadedIsLoading(t *testing.T) {
	state := toRegionState(application.Snapshot[application.DealerList]{}, "/app/dealers")

	assert.True(t, state.Loading)
	assert.False(t, state.Empty)
	assert.False(t, state.HasData)
	assert.Equal(t, "unloaded", state.Status)
}

func TestToRegionState_EmptyIsExplicit(t *testing.T) {
	snap := application.Snapshot[application.DealerList]{
		Status:  application.StatusEmpty,
		Settled: application.StatusEmpty,
	}

	state := toRegionState(snap, "/app/dealers")

	assert.True(t, state.Empty)
	assert.True(t, state.HasData)
	assert.False(t, state.Loading)
	assert.False(t, state.Failed)
}

func TestToRegionState_FailedKeepsData(t *testing.T) {
	snap := application.Snapshot[application.DealerList]{
		Status:  application.StatusFailed,
		Settled: application.StatusPopulated,
		Err:     fmt.Errorf("list: %w", driven.ErrTransport),
	}

	state := toRegionState(snap, "/app/dealers?region=Texas")

	assert.True(t, state.Failed)
	assert.True(t, state.HasData)
	assert.Equal(t, msgUnreachable, state.Error)
	assert.Equal(t, "/app/dealers?region=Texas", state.RetryPath)
}

func TestToRegionState_NotFoundHasNoRetry(t *testing.T) {
	snap := application.Snapshot[application.DealerPage]{
		Status: application.StatusFailed,
		Err:    fmt.Errorf("load: %w", application.ErrDealerNotFound),
	}

	state := toRegionState(snap, "/app/dealers/9")

	assert.Equal(t, msgNotFound, state.Error)
	assert.Empty(t, state.RetryPath)
}

func TestErrorNotice(t *testing.T) {
	assert.Equal(t, msgUnreachable, errorNotice(driven.ErrTransport))
	assert.Equal(t, msgMalformed, errorNotice(driven.ErrMalformedResponse))
	assert.Equal(t, msgBackend, errorNotice(driven.ErrBackendStatus))
	assert.Equal(t, msgBackend, errorNotice(errors.New("boom")))
}

func TestToDealerListViewModel_RegionFallbackWithoutData(t *testing.T) {
	snap := application.Snapshot[application.DealerList]{
		Status: application.StatusFailed,
		Params: "Texas",
		Err:    driven.ErrTransport,
	}

	v := toDealerListViewModel(testView, snap, false)

	assert.Equal(t, "Texas", v.Region)
	assert.Equal(t, "/app/dealers?view="+testView, v.PartialPath)
	assert.Equal(t, "/app/dealers?region=Texas&view="+testView, v.State.RetryPath)
	assert.Equal(t, []vm.RegionOption{
		{Value: model.AllRegions},
		{Value: "Texas", Selected: true},
	}, v.Regions)
	assert.Empty(t, v.Rows)
}

func TestToReviewCardViewModel(t *testing.T) {
	card := toReviewCardViewModel(model.Review{
		Name:      "Dana",
		Body:      "ok",
		CarMake:   "Kia",
		CarModel:  "Rio",
		Sentiment: model.SentimentNeutral,
	})

	assert.Equal(t, "Kia Rio", card.Car)
	assert.Empty(t, card.PurchaseNote)
	assert.Equal(t, "neutral", card.Sentiment)
	assert.Equal(t, sentimentIcon(model.SentimentNeutral), card.SentimentIcon)
}

func TestSentimentIcon_Distinct(t *testing.T) {
	icons := map[string]struct{}{
		sentimentIcon(model.SentimentPositive): {},
		sentimentIcon(model.SentimentNeutral):  {},
		sentimentIcon(model.SentimentNegative): {},
	}
	assert.Len(t, icons, 3)
	assert.Equal(t, sentimentIcon(model.SentimentNeutral), sentimentIcon(model.Sentiment("")))
}

func TestToReviewFormViewModel_SelectsEnteredCar(t *testing.T) {
	snap := application.Snapshot[application.ReviewForm]{
		Status:  application.StatusPopulated,
		Settled: application.StatusPopulated,
		Value: application.ReviewForm{
			Dealer:    model.Dealer{ID: 3, ShortName: "Acme"},
			CarModels: []model.CarModel{{Make: "Kia", Model: "Rio"}, {Make: "Audi", Model: "A4"}},
		},
	}

	v := toReviewFormViewModel(testView, 3, snap, vm.ReviewFormValues{Car: "Audi|A4"}, "", "tok")

	assert.Equal(t, "Acme", v.DealerName)
	assert.Equal(t, []vm.CarOption{
		{Value: "Kia|Rio", Label: "Kia Rio"},
		{Value: "Audi|A4", Label: "Audi A4", Selected: true},
	}, v.CarOptions)
	assert.Equal(t, "/postreview/3", v.ActionPath)
	assert.Equal(t, application.MinCarYear, v.MinYear)
	assert.Equal(t, testView, v.View)
}

func TestRegionPaths_CarryPageView(t *testing.T) {
	assert.Equal(t, "/app/dealers", dealerListPartial("", model.AllRegions))
	assert.Equal(t, "/app/dealers?region=New+York", dealerListPartial("", "New York"))
	assert.Equal(t, "/app/dealers/4?view="+testView, dealerDetailPartial(testView, 4))
	assert.Equal(t, "/app/dealers/4/review-form?view="+testView, reviewFormPartial(testView, 4))
}
