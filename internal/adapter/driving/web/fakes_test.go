package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

const (
	testVisitorID = "6f1c1d2e-5a4b-4c3d-8e2f-000000000001"
	testCSRF      = "test-csrf-token"
	testSessionID = "session-1"
	testView      = "0b9f6c8e-1d2a-4e3b-9c4d-000000000002"
)

// fakeAPI is a hand-written DealershipAPI. Nil funcs return empty results.
type fakeAPI struct {
	mu sync.Mutex

	listDealers   func(ctx context.Context, region string) ([]model.Dealer, error)
	getDealer     func(ctx context.Context, id int) (*model.Dealer, error)
	listReviews   func(ctx context.Context, dealerID int) ([]model.Review, error)
	listCarModels func(ctx context.Context) ([]model.CarModel, error)
	submitReview  func(ctx context.Context, auth model.BackendAuth, review model.ReviewSubmission) error
	login         func(ctx context.Context, creds model.Credentials) (*model.LoginResult, error)
	register      func(ctx context.Context, reg model.Registration) (*model.LoginResult, error)

	dealerCalls int
	submissions []model.ReviewSubmission
	loginCalls  int
	logouts     int
}

var _ driven.DealershipAPI = (*fakeAPI)(nil)

func (f *fakeAPI) ListDealers(ctx context.Context, region string) ([]model.Dealer, error) {
	f.mu.Lock()
	f.dealerCalls++
	fn := f.listDealers
	f.mu.Unlock()
	if fn == nil {
		return []model.Dealer{}, nil
	}
	return fn(ctx, region)
}

func (f *fakeAPI) GetDealer(ctx context.Context, id int) (*model.Dealer, error) {
	if f.getDealer == nil {
		return &model.Dealer{ID: id, FullName: fmt.Sprintf("Dealer %d", id)}, nil
	}
	return f.getDealer(ctx, id)
}

func (f *fakeAPI) ListReviews(ctx context.Context, dealerID int) ([]model.Review, error) {
	if f.listReviews == nil {
		return []model.Review{}, nil
	}
	return f.listReviews(ctx, dealerID)
}

func (f *fakeAPI) ListCarModels(ctx context.Context) ([]model.CarModel, error) {
	if f.listCarModels == nil {
		return []model.CarModel{{Make: "Toyota", Model: "Corolla"}, {Make: "Audi", Model: "A4"}}, nil
	}
	return f.listCarModels(ctx)
}

func (f *fakeAPI) SubmitReview(ctx context.Context, auth model.BackendAuth, review model.ReviewSubmission) error {
	f.mu.Lock()
	f.submissions = append(f.submissions, review)
	fn := f.submitReview
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, auth, review)
}

func (f *fakeAPI) Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	if f.login == nil {
		return &model.LoginResult{Username: creds.Username}, nil
	}
	return f.login(ctx, creds)
}

func (f *fakeAPI) Register(ctx context.Context, reg model.Registration) (*model.LoginResult, error) {
	if f.register == nil {
		return &model.LoginResult{Username: reg.Username}, nil
	}
	return f.register(ctx, reg)
}

func (f *fakeAPI) Logout(_ context.Context, _ model.BackendAuth) error {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()
	return nil
}

// memStore is an in-memory SessionStore.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

var _ driven.SessionStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]model.Session)}
}

func (m *memStore) Save(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) Touch(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = at
		m.sessions[id] = s
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) DeleteIdle(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.LastSeenAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type testEnv struct {
	mux   *http.ServeMux
	api   *fakeAPI
	store *memStore
	views *application.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := &fakeAPI{}
	store := newMemStore()
	views := application.NewRegistry(nil)

	h := NewHandler(
		application.NewDealerService(api, logger),
		application.NewSessionService(api, store, logger),
		application.NewReviewService(api, logger),
		views,
		false,
		logger,
	)

	mux := http.NewServeMux()
	RegisterRoutes(mux, h)

	return &testEnv{mux: mux, api: api, store: store, views: views}
}

// login stores a session for Alice Smith and returns its cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	require.NoError(t, e.store.Save(context.Background(), model.Session{
		ID:         testSessionID,
		Username:   "alice",
		FirstName:  "Alice",
		LastName:   "Smith",
		CreatedAt:  time.Now(),
		LastSeenAt: time.Now(),
	}))
	return &http.Cookie{Name: SessionCookieName, Value: testSessionID}
}

func visitorCookie() *http.Cookie {
	return &http.Cookie{Name: VisitorCookieName, Value: testVisitorID}
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// postForm posts form with a valid CSRF cookie and field.
func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfFormField, testCSRF)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
