package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// Failure classes reported by DealershipAPI implementations. Adapters wrap one of
// these so callers can branch with errors.Is.
var (
	// ErrTransport covers network failures, timeouts and cancelled requests.
	ErrTransport = errors.New("backend transport failure")
	// ErrBackendStatus covers an HTTP error status or a non-success status embedded in the body.
	ErrBackendStatus = errors.New("backend reported failure")
	// ErrMalformedResponse covers bodies that are not the JSON shape the endpoint promises.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrNotAuthenticated is returned by Login when the backend rejects the credentials.
	ErrNotAuthenticated = errors.New("user could not be authenticated")
	// ErrAlreadyRegistered is returned by Register when the username is taken.
	ErrAlreadyRegistered = errors.New("user already registered")
	// ErrUnauthorized is returned when the backend refuses an authenticated-only call.
	ErrUnauthorized = errors.New("backend refused the request: not logged in")
)

// DealershipAPI is the driven port for the dealership backend. Every call is a
// single request: no retries, no caching guarantees.
type DealershipAPI interface {
	// ListDealers returns all dealers, or only those in region when region is
	// non-empty and not model.AllRegions.
	ListDealers(ctx context.Context, region string) ([]model.Dealer, error)
	// GetDealer returns the dealer with the given id, or (nil, nil) if none exists.
	GetDealer(ctx context.Context, id int) (*model.Dealer, error)
	// ListReviews returns the reviews of a dealer. No reviews is an empty slice.
	ListReviews(ctx context.Context, dealerID int) ([]model.Review, error)
	// ListCarModels returns the known make/model pairs.
	ListCarModels(ctx context.Context) ([]model.CarModel, error)
	// SubmitReview posts a new review using the caller's backend session.
	SubmitReview(ctx context.Context, auth model.BackendAuth, review model.ReviewSubmission) error

	// Login authenticates against the backend. Rejected credentials yield ErrNotAuthenticated.
	Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error)
	// Register creates a backend account and logs it in.
	Register(ctx context.Context, reg model.Registration) (*model.LoginResult, error)
	// Logout ends the backend session.
	Logout(ctx context.Context, auth model.BackendAuth) error
}
