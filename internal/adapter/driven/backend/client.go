// Package backend implements the DealershipAPI port against the dealership REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
	"github.com/ericfisherdev/bestcars/internal/observability"
)

// Compile-time interface satisfaction check.
var _ driven.DealershipAPI = (*Client)(nil)

const (
	maxBodyBytes      = 4 << 20
	authenticated     = "Authenticated"
	alreadyRegistered = "Already Registered"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8000".
	BaseURL string
	// Namespace is the URL namespace of the API, e.g. "djangoapp".
	Namespace string
	// Timeout bounds every request. Zero means 10s.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Client implements the driven.DealershipAPI port over HTTP+JSON.
type Client struct {
	hc      *http.Client
	base    *url.URL
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a backend client with the following transport stack:
//  1. rate limiter (optional, waits on the request context)
//  2. httpcache (conditional request caching honouring backend cache headers)
//  3. http.DefaultTransport
func NewClient(opts Options) (*Client, error) {
	var transport http.RoundTripper = httpcache.NewMemoryCacheTransport()
	if opts.RequestsPerSecond > 0 {
		transport = newLimitedTransport(transport, opts.RequestsPerSecond)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return NewClientWithHTTPClient(&http.Client{Transport: transport, Timeout: timeout}, opts)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL %q must be http or https", opts.BaseURL)
	}

	ns := strings.Trim(opts.Namespace, "/")
	u.Path = strings.TrimSuffix(u.Path, "/") + "/"
	if ns != "" {
		u.Path += ns + "/"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		hc:      httpClient,
		base:    u,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// ListDealers fetches every dealer, or only those of one region.
func (c *Client) ListDealers(ctx context.Context, region string) ([]model.Dealer, error) {
	segments := []string{"get_dealers"}
	if region != "" && region != model.AllRegions {
		segments = append(segments, region)
	}

	resp, err := c.do(ctx, http.MethodGet, "get_dealers", segments, nil, model.BackendAuth{})
	if err != nil {
		return nil, err
	}
	if err := resp.requireHTTPSuccess("get_dealers"); err != nil {
		return nil, c.fail("get_dealers", resp, err)
	}

	var env dealersEnvelope
	if err := decode("get_dealers", resp.body, &env); err != nil {
		return nil, c.fail("get_dealers", resp, err)
	}
	if !env.Status.is(http.StatusOK) {
		return nil, c.fail("get_dealers", resp, statusError("get_dealers", env.Status, env.Error))
	}

	dealers := make([]model.Dealer, 0, len(env.Dealers))
	for _, d := range env.Dealers {
		dealers = append(dealers, d.toModel())
	}

	c.ok("get_dealers", resp)
	return dealers, nil
}

// GetDealer fetches one dealer. A backend "not found" yields (nil, nil).
func (c *Client) GetDealer(ctx context.Context, id int) (*model.Dealer, error) {
	segments := []string{"dealer", strconv.Itoa(id)}

	resp, err := c.do(ctx, http.MethodGet, "dealer", segments, nil, model.BackendAuth{})
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		c.ok("dealer", resp)
		return nil, nil
	}
	if err := resp.requireHTTPSuccess("dealer"); err != nil {
		return nil, c.fail("dealer", resp, err)
	}

	var env dealerEnvelope
	if err := decode("dealer", resp.body, &env); err != nil {
		return nil, c.fail("dealer", resp, err)
	}
	if env.Status.is(http.StatusNotFound) {
		c.ok("dealer", resp)
		return nil, nil
	}
	if !env.Status.is(http.StatusOK) {
		return nil, c.fail("dealer", resp, statusError("dealer", env.Status, env.Error))
	}

	dealer, err := decodeSingleDealer(env.Dealer)
	if err != nil {
		return nil, c.fail("dealer", resp, fmt.Errorf("%w: dealer: %w", driven.ErrMalformedResponse, err))
	}

	c.ok("dealer", resp)
	return dealer, nil
}

// ListReviews fetches the reviews of one dealer. The backend reports "no
// reviews" as status 404, which maps to an empty slice.
func (c *Client) ListReviews(ctx context.Context, dealerID int) ([]model.Review, error) {
	segments := []string{"reviews", "dealer", strconv.Itoa(dealerID)}

	resp, err := c.do(ctx, http.MethodGet, "reviews", segments, nil, model.BackendAuth{})
	if err != nil {
		return nil, err
	}
	if err := resp.requireHTTPSuccess("reviews"); err != nil {
		return nil, c.fail("reviews", resp, err)
	}

	var env reviewsEnvelope
	if err := decode("reviews", resp.body, &env); err != nil {
		return nil, c.fail("reviews", resp, err)
	}
	if env.Status.is(http.StatusNotFound) {
		c.ok("reviews", resp)
		return []model.Review{}, nil
	}
	if !env.Status.is(http.StatusOK) {
		return nil, c.fail("reviews", resp, statusError("reviews", env.Status, env.Error))
	}

	reviews := make([]model.Review, 0, len(env.Reviews))
	for _, r := range env.Reviews {
		reviews = append(reviews, r.toModel())
	}

	c.ok("reviews", resp)
	return reviews, nil
}

// ListCarModels fetches the vehicle catalog. This endpoint carries no status member.
func (c *Client) ListCarModels(ctx context.Context) ([]model.CarModel, error) {
	resp, err := c.do(ctx, http.MethodGet, "get_cars", []string{"get_cars"}, nil, model.BackendAuth{})
	if err != nil {
		return nil, err
	}
	if err := resp.requireHTTPSuccess("get_cars"); err != nil {
		return nil, c.fail("get_cars", resp, err)
	}

	var env carModelsEnvelope
	if err := decode("get_cars", resp.body, &env); err != nil {
		return nil, c.fail("get_cars", resp, err)
	}
	if env.Error != "" {
		return nil, c.fail("get_cars", resp, fmt.Errorf("%w: get_cars: %s", driven.ErrBackendStatus, env.Error))
	}

	cars := make([]model.CarModel, 0, len(env.CarModels))
	for _, cm := range env.CarModels {
		cars = append(cars, model.CarModel{Make: cm.CarMake, Model: cm.CarModel})
	}

	c.ok("get_cars", resp)
	return cars, nil
}

// SubmitReview posts a review with the caller's backend session cookies.
func (c *Client) SubmitReview(ctx context.Context, auth model.BackendAuth, review model.ReviewSubmission) error {
	payload := reviewRequest{
		Name:         review.Name,
		Dealership:   review.DealerID,
		Review:       review.Body,
		Purchase:     review.Purchase,
		PurchaseDate: review.PurchaseDate,
		CarMake:      review.CarMake,
		CarModel:     review.CarModel,
		CarYear:      review.CarYear,
	}

	resp, err := c.do(ctx, http.MethodPost, "add_review", []string{"add_review"}, payload, auth)
	if err != nil {
		return err
	}
	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return c.fail("add_review", resp, fmt.Errorf("add_review: %w", driven.ErrUnauthorized))
	}
	if err := resp.requireHTTPSuccess("add_review"); err != nil {
		return c.fail("add_review", resp, err)
	}

	var env statusEnvelope
	if err := decode("add_review", resp.body, &env); err != nil {
		return c.fail("add_review", resp, err)
	}
	if env.Status.is(http.StatusForbidden) {
		return c.fail("add_review", resp, fmt.Errorf("add_review: %w", driven.ErrUnauthorized))
	}
	if !env.Status.is(http.StatusOK) {
		return c.fail("add_review", resp, statusError("add_review", env.Status, env.Message))
	}

	c.ok("add_review", resp)
	return nil
}

// Login authenticates a user. Success requires status == "Authenticated".
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error) {
	payload := loginRequest{UserName: creds.Username, Password: creds.Password}

	resp, err := c.do(ctx, http.MethodPost, "login", []string{"login"}, payload, model.BackendAuth{})
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return nil, c.fail("login", resp, fmt.Errorf("login: %w", driven.ErrNotAuthenticated))
	}
	if err := resp.requireHTTPSuccess("login"); err != nil {
		return nil, c.fail("login", resp, err)
	}

	var env authEnvelope
	if err := decode("login", resp.body, &env); err != nil {
		return nil, c.fail("login", resp, err)
	}
	if env.Status.text != authenticated {
		return nil, c.fail("login", resp, fmt.Errorf("login: %w", driven.ErrNotAuthenticated))
	}

	c.ok("login", resp)
	return resp.loginResult(env.UserName, creds.Username), nil
}

// Register creates an account. The backend logs the new user in on success.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.LoginResult, error) {
	payload := registerRequest{
		UserName:  reg.Username,
		Password:  reg.Password,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
	}

	resp, err := c.do(ctx, http.MethodPost, "register", []string{"register"}, payload, model.BackendAuth{})
	if err != nil {
		return nil, err
	}

	var env authEnvelope
	decodeErr := decode("register", resp.body, &env)

	if resp.status == http.StatusConflict || (decodeErr == nil && env.Error == alreadyRegistered) {
		return nil, c.fail("register", resp, fmt.Errorf("register %q: %w", reg.Username, driven.ErrAlreadyRegistered))
	}
	if err := resp.requireHTTPSuccess("register"); err != nil {
		if decodeErr == nil && env.Error != "" {
			err = fmt.Errorf("%w: %s", err, env.Error)
		}
		return nil, c.fail("register", resp, err)
	}
	if decodeErr != nil {
		return nil, c.fail("register", resp, decodeErr)
	}
	if env.Status.text != authenticated {
		return nil, c.fail("register", resp, statusError("register", env.Status, env.Error))
	}

	c.ok("register", resp)
	return resp.loginResult(env.UserName, reg.Username), nil
}

// Logout ends the backend session. Any truthy JSON body is success.
func (c *Client) Logout(ctx context.Context, auth model.BackendAuth) error {
	resp, err := c.do(ctx, http.MethodGet, "logout", []string{"logout"}, nil, auth)
	if err != nil {
		return err
	}
	if err := resp.requireHTTPSuccess("logout"); err != nil {
		return c.fail("logout", resp, err)
	}

	var body any
	if err := decode("logout", resp.body, &body); err != nil {
		return c.fail("logout", resp, err)
	}
	if !truthy(body) {
		return c.fail("logout", resp, fmt.Errorf("%w: logout returned %v", driven.ErrBackendStatus, body))
	}

	c.ok("logout", resp)
	return nil
}

// response is a fully read backend reply.
type response struct {
	status  int
	body    []byte
	cookies []*http.Cookie
	started time.Time
}

func (r *response) requireHTTPSuccess(endpoint string) error {
	if r.status >= 200 && r.status < 300 {
		return nil
	}
	return fmt.Errorf("%w: %s: HTTP %d: %s", driven.ErrBackendStatus, endpoint, r.status, snippet(r.body))
}

func (r *response) loginResult(reported, fallback string) *model.LoginResult {
	username := reported
	if username == "" {
		username = fallback
	}
	return &model.LoginResult{
		Username: username,
		Auth:     model.BackendAuth{Cookies: r.cookies},
	}
}

// do sends one request and reads the whole body. Transport failures are
// recorded and wrapped with driven.ErrTransport here; callers classify the rest.
func (c *Client) do(ctx context.Context, method, endpoint string, segments []string, payload any, auth model.BackendAuth) (*response, error) {
	target := c.endpointURL(segments)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range auth.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		if cookie.Name == "csrftoken" {
			req.Header.Set("X-CSRFToken", cookie.Value)
		}
	}

	started := time.Now()
	c.logger.Debug("backend request", "method", method, "endpoint", endpoint, "url", target.String())

	resp, err := c.hc.Do(req)
	if err != nil {
		c.metrics.ObserveBackend(endpoint, "transport", time.Since(started))
		return nil, fmt.Errorf("%w: %s %s: %w", driven.ErrTransport, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.ObserveBackend(endpoint, "transport", time.Since(started))
		return nil, fmt.Errorf("%w: reading %s body: %w", driven.ErrTransport, endpoint, err)
	}

	return &response{
		status:  resp.StatusCode,
		body:    data,
		cookies: resp.Cookies(),
		started: started,
	}, nil
}

// endpointURL joins path segments under the namespace with a trailing slash,
// escaping each segment so a region such as "New York" stays one segment.
func (c *Client) endpointURL(segments []string) *url.URL {
	var plain, escaped strings.Builder
	for _, s := range segments {
		plain.WriteString(s)
		plain.WriteByte('/')
		escaped.WriteString(url.PathEscape(s))
		escaped.WriteByte('/')
	}

	u := *c.base
	u.Path = c.base.Path + plain.String()
	u.RawPath = c.base.EscapedPath() + escaped.String()
	return &u
}

func (c *Client) ok(endpoint string, resp *response) {
	c.metrics.ObserveBackend(endpoint, "ok", time.Since(resp.started))
}

func (c *Client) fail(endpoint string, resp *response, err error) error {
	c.metrics.ObserveBackend(endpoint, outcomeOf(err), time.Since(resp.started))
	return err
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, driven.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, driven.ErrNotAuthenticated):
		return "rejected"
	case errors.Is(err, driven.ErrAlreadyRegistered):
		return "conflict"
	case errors.Is(err, driven.ErrUnauthorized):
		return "unauthorized"
	default:
		return "status"
	}
}

func decode(endpoint string, body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: %s: empty body", driven.ErrMalformedResponse, endpoint)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %w", driven.ErrMalformedResponse, endpoint, err)
	}
	return nil
}

func statusError(endpoint string, status statusField, detail string) error {
	reported := status.text
	if reported == "" {
		reported = strconv.Itoa(status.code)
	}
	if !status.present {
		reported = "missing"
	}
	if detail != "" {
		return fmt.Errorf("%w: %s: status %s: %s", driven.ErrBackendStatus, endpoint, reported, detail)
	}
	return fmt.Errorf("%w: %s: status %s", driven.ErrBackendStatus, endpoint, reported)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// limitedTransport throttles outbound requests with a token bucket.
type limitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func newLimitedTransport(next http.RoundTripper, rps float64) *limitedTransport {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &limitedTransport{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// RoundTrip waits for a token, honouring the request context, then delegates.
func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
