package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

var testDealers = []model.Dealer{
	{ID: 1, FullName: "Acme Motors", City: "Austin", Address: "1 Main St", Zip: "78701", State: "Texas"},
	{ID: 2, FullName: "Bay Cars", City: "Oakland", State: "California"},
	{ID: 3, FullName: "Lone Star Autos", City: "Dallas", State: "Texas"},
}

func dealersByRegion(region string) []model.Dealer {
	if region == model.AllRegions {
		return testDealers
	}
	var out []model.Dealer
	for _, d := range testDealers {
		if d.State == region {
			out = append(out, d)
		}
	}
	return out
}

func TestDealerService_ListAll(t *testing.T) {
	api := &mockAPI{listDealers: func(_ context.Context, region string) ([]model.Dealer, error) {
		return dealersByRegion(region), nil
	}}
	svc := application.NewDealerService(api, nil)

	list, err := svc.List(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, model.AllRegions, list.Region)
	assert.Len(t, list.Dealers, 3)
	assert.Equal(t, []string{"All", "Texas", "California"}, list.Regions)
	assert.Equal(t, []string{model.AllRegions}, api.regions, "unfiltered list is fetched once")
}

func TestDealerService_ListRegion(t *testing.T) {
	api := &mockAPI{listDealers: func(_ context.Context, region string) ([]model.Dealer, error) {
		return dealersByRegion(region), nil
	}}
	svc := application.NewDealerService(api, nil)

	list, err := svc.List(context.Background(), "Texas")

	require.NoError(t, err)
	assert.Equal(t, "Texas", list.Region)
	require.Len(t, list.Dealers, 2)
	assert.Equal(t, "Acme Motors", list.Dealers[0].FullName)
	assert.Equal(t, []string{"All", "Texas", "California"}, list.Regions)
	assert.ElementsMatch(t, []string{"Texas", model.AllRegions}, api.regions)
}

func TestDealerService_ListRegion_ChoicesFailureDegrades(t *testing.T) {
	api := &mockAPI{listDealers: func(_ context.Context, region string) ([]model.Dealer, error) {
		if region == model.AllRegions {
			return nil, driven.ErrTransport
		}
		return dealersByRegion(region), nil
	}}
	svc := application.NewDealerService(api, nil)

	list, err := svc.List(context.Background(), "Texas")

	require.NoError(t, err)
	assert.Len(t, list.Dealers, 2)
	assert.Equal(t, []string{"All", "Texas"}, list.Regions)
}

func TestDealerService_ListFailure(t *testing.T) {
	api := &mockAPI{listDealers: func(_ context.Context, _ string) ([]model.Dealer, error) {
		return nil, driven.ErrBackendStatus
	}}
	svc := application.NewDealerService(api, nil)

	_, err := svc.List(context.Background(), "Texas")
	assert.ErrorIs(t, err, driven.ErrBackendStatus)

	_, err = svc.List(context.Background(), model.AllRegions)
	assert.ErrorIs(t, err, driven.ErrBackendStatus)
}

func TestDealerService_Detail(t *testing.T) {
	api := &mockAPI{
		getDealer: func(_ context.Context, id int) (*model.Dealer, error) {
			d := testDealers[0]
			d.ID = id
			return &d, nil
		},
		listReviews: func(_ context.Context, dealerID int) ([]model.Review, error) {
			return []model.Review{{ID: 1, DealerID: dealerID, Name: "Bob", Body: "Nice", Sentiment: model.SentimentPositive}}, nil
		},
	}
	svc := application.NewDealerService(api, nil)

	page, err := svc.Detail(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 5, page.Dealer.ID)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, 5, page.Reviews[0].DealerID)
}

func TestDealerService_Detail_NoReviews(t *testing.T) {
	api := &mockAPI{
		getDealer:   func(_ context.Context, _ int) (*model.Dealer, error) { return &testDealers[0], nil },
		listReviews: func(_ context.Context, _ int) ([]model.Review, error) { return nil, nil },
	}
	svc := application.NewDealerService(api, nil)

	page, err := svc.Detail(context.Background(), 1)

	require.NoError(t, err)
	assert.NotNil(t, page.Reviews)
	assert.Empty(t, page.Reviews)
}

func TestDealerService_Detail_NotFound(t *testing.T) {
	api := &mockAPI{
		getDealer:   func(_ context.Context, _ int) (*model.Dealer, error) { return nil, nil },
		listReviews: func(_ context.Context, _ int) ([]model.Review, error) { return []model.Review{}, nil },
	}
	svc := application.NewDealerService(api, nil)

	_, err := svc.Detail(context.Background(), 404)

	assert.ErrorIs(t, err, application.ErrDealerNotFound)
}

func TestDealerService_Detail_ReviewFailureFailsPage(t *testing.T) {
	api := &mockAPI{
		getDealer: func(_ context.Context, _ int) (*model.Dealer, error) { return &testDealers[0], nil },
		listReviews: func(_ context.Context, _ int) ([]model.Review, error) {
			return nil, driven.ErrMalformedResponse
		},
	}
	svc := application.NewDealerService(api, nil)

	_, err := svc.Detail(context.Background(), 1)

	assert.ErrorIs(t, err, driven.ErrMalformedResponse)
}

func TestDealerService_ReviewForm(t *testing.T) {
	api := &mockAPI{
		getDealer: func(_ context.Context, _ int) (*model.Dealer, error) { return &testDealers[1], nil },
		listCarModels: func(_ context.Context) ([]model.CarModel, error) {
			return []model.CarModel{{Make: "Audi", Model: "A4"}}, nil
		},
	}
	svc := application.NewDealerService(api, nil)

	form, err := svc.ReviewForm(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, "Bay Cars", form.Dealer.FullName)
	assert.Equal(t, []model.CarModel{{Make: "Audi", Model: "A4"}}, form.CarModels)
}

func TestDealerService_ReviewForm_Errors(t *testing.T) {
	catalogDown := errors.New("catalog down")
	api := &mockAPI{
		getDealer:     func(_ context.Context, _ int) (*model.Dealer, error) { return &testDealers[1], nil },
		listCarModels: func(_ context.Context) ([]model.CarModel, error) { return nil, catalogDown },
	}
	svc := application.NewDealerService(api, nil)

	_, err := svc.ReviewForm(context.Background(), 2)
	assert.ErrorIs(t, err, catalogDown)

	api.getDealer = func(_ context.Context, _ int) (*model.Dealer, error) { return nil, nil }
	api.listCarModels = func(_ context.Context) ([]model.CarModel, error) { return nil, nil }

	_, err = svc.ReviewForm(context.Background(), 2)
	assert.ErrorIs(t, err, application.ErrDealerNotFound)
}
