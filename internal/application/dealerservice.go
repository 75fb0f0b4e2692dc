// Package application contains the use cases behind each view: fetching
// dealer data, session management and review submission.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

// ErrDealerNotFound is returned when the backend has no dealer with the requested id.
var ErrDealerNotFound = errors.New("dealer not found")

// DealerService fetches the data behind the dealer list, dealer detail and
// review form views.
type DealerService struct {
	api    driven.DealershipAPI
	logger *slog.Logger
}

// NewDealerService creates a DealerService.
func NewDealerService(api driven.DealershipAPI, logger *slog.Logger) *DealerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DealerService{api: api, logger: logger}
}

// NormalizeRegion maps an empty filter value to model.AllRegions.
func NormalizeRegion(region string) string {
	if region == "" {
		return model.AllRegions
	}
	return region
}

// List returns the dealers of region along with the region filter choices.
// For a filtered list the unfiltered list is fetched concurrently to derive
// the choices; if only that call fails the choices shrink to the current
// region.
func (s *DealerService) List(ctx context.Context, region string) (DealerList, error) {
	region = NormalizeRegion(region)

	if region == model.AllRegions {
		dealers, err := s.api.ListDealers(ctx, model.AllRegions)
		if err != nil {
			s.logger.Warn("list dealers failed", "region", region, "error", err)
			return DealerList{}, fmt.Errorf("list dealers: %w", err)
		}
		return DealerList{
			Region:  region,
			Dealers: dealers,
			Regions: regionChoices(model.DistinctStates(dealers)),
		}, nil
	}

	var (
		g       errgroup.Group
		dealers []model.Dealer
		states  []string
	)

	g.Go(func() error {
		var err error
		dealers, err = s.api.ListDealers(ctx, region)
		return err
	})
	g.Go(func() error {
		all, err := s.api.ListDealers(ctx, model.AllRegions)
		if err != nil {
			s.logger.Warn("list region choices failed", "error", err)
			states = []string{region}
			return nil
		}
		states = model.DistinctStates(all)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("list dealers failed", "region", region, "error", err)
		return DealerList{}, fmt.Errorf("list dealers in %q: %w", region, err)
	}

	return DealerList{Region: region, Dealers: dealers, Regions: regionChoices(states)}, nil
}

func regionChoices(states []string) []string {
	choices := make([]string, 0, len(states)+1)
	choices = append(choices, model.AllRegions)
	for _, st := range states {
		if st != model.AllRegions {
			choices = append(choices, st)
		}
	}
	return choices
}

// Detail returns a dealer and its reviews, fetched concurrently.
func (s *DealerService) Detail(ctx context.Context, id int) (DealerPage, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		dealer  *model.Dealer
		reviews []model.Review
	)
	g.Go(func() error {
		var err error
		dealer, err = s.api.GetDealer(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = s.api.ListReviews(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("load dealer detail failed", "dealer_id", id, "error", err)
		return DealerPage{}, fmt.Errorf("load dealer %d: %w", id, err)
	}
	if dealer == nil {
		return DealerPage{}, fmt.Errorf("load dealer %d: %w", id, ErrDealerNotFound)
	}
	if reviews == nil {
		reviews = []model.Review{}
	}

	return DealerPage{Dealer: *dealer, Reviews: reviews}, nil
}

// ReviewForm returns the dealer and the vehicle catalog, fetched concurrently.
func (s *DealerService) ReviewForm(ctx context.Context, id int) (ReviewForm, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		dealer *model.Dealer
		cars   []model.CarModel
	)
	g.Go(func() error {
		var err error
		dealer, err = s.api.GetDealer(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		cars, err = s.api.ListCarModels(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("load review form failed", "dealer_id", id, "error", err)
		return ReviewForm{}, fmt.Errorf("load review form for dealer %d: %w", id, err)
	}
	if dealer == nil {
		return ReviewForm{}, fmt.Errorf("load review form for dealer %d: %w", id, ErrDealerNotFound)
	}
	if cars == nil {
		cars = []model.CarModel{}
	}

	return ReviewForm{Dealer: *dealer, CarModels: cars}, nil
}
