package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

// Accepted car model years.
const (
	MinCarYear = 2015
	MaxCarYear = 2023
)

// MsgIncomplete is shown when a required review field is empty.
const MsgIncomplete = "All details are mandatory"

// ErrLoginRequired is returned when a review is submitted without a session.
var ErrLoginRequired = errors.New("login required to post a review")

// ValidationError is a form problem found before any backend call. Message is
// shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ReviewInput is the raw review form as posted by the browser.
type ReviewInput struct {
	Body         string
	Purchase     bool
	PurchaseDate string
	// Car is the selected catalog entry encoded as "Make|Model".
	Car  string
	Year string
}

// CarOptionValue encodes a catalog entry as a ReviewInput.Car value.
func CarOptionValue(c model.CarModel) string {
	return c.Make + "|" + c.Model
}

// ParseReviewInput validates in and builds the submission for dealerID under
// the reviewer name. Every returned error is a *ValidationError.
func ParseReviewInput(dealerID int, reviewer string, in ReviewInput) (model.ReviewSubmission, error) {
	body := strings.TrimSpace(in.Body)
	date := strings.TrimSpace(in.PurchaseDate)
	car := strings.TrimSpace(in.Car)
	year := strings.TrimSpace(in.Year)

	if body == "" || date == "" || car == "" || year == "" {
		return model.ReviewSubmission{}, &ValidationError{Message: MsgIncomplete}
	}

	carMake, carModel, ok := strings.Cut(car, "|")
	if !ok || carMake == "" || carModel == "" {
		return model.ReviewSubmission{}, &ValidationError{Message: "Choose a car make and model from the list"}
	}

	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return model.ReviewSubmission{}, &ValidationError{Message: "Purchase date must be a valid date"}
	}

	carYear, err := strconv.Atoi(year)
	if err != nil || carYear < MinCarYear || carYear > MaxCarYear {
		return model.ReviewSubmission{}, &ValidationError{
			Message: fmt.Sprintf("Car year must be between %d and %d", MinCarYear, MaxCarYear),
		}
	}

	return model.ReviewSubmission{
		Name:         reviewer,
		DealerID:     dealerID,
		Body:         body,
		Purchase:     in.Purchase,
		PurchaseDate: date,
		CarMake:      carMake,
		CarModel:     carModel,
		CarYear:      carYear,
	}, nil
}

// ReviewService submits reviews on behalf of a logged-in user.
type ReviewService struct {
	api    driven.DealershipAPI
	logger *slog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(api driven.DealershipAPI, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{api: api, logger: logger}
}

// Submit validates in and posts it for dealerID. Validation failures return a
// *ValidationError without contacting the backend.
func (s *ReviewService) Submit(ctx context.Context, session *model.Session, dealerID int, in ReviewInput) error {
	if session == nil {
		return ErrLoginRequired
	}

	submission, err := ParseReviewInput(dealerID, session.DisplayName(), in)
	if err != nil {
		return err
	}

	if err := s.api.SubmitReview(ctx, session.Auth, submission); err != nil {
		s.logger.Warn("submit review failed", "dealer_id", dealerID, "username", session.Username, "error", err)
		return fmt.Errorf("submit review for dealer %d: %w", dealerID, err)
	}

	s.logger.Info("review submitted", "dealer_id", dealerID, "username", session.Username)
	return nil
}
