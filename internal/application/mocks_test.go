package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// --- Mock implementations ---

type mockAPI struct {
	mu sync.Mutex

	listDealers   func(ctx context.Context, region string) ([]model.Dealer, error)
	getDealer     func(ctx context.Context, id int) (*model.Dealer, error)
	listReviews   func(ctx context.Context, dealerID int) ([]model.Review, error)
	listCarModels func(ctx context.Context) ([]model.CarModel, error)
	submitReview  func(ctx context.Context, auth model.BackendAuth, review model.ReviewSubmission) error
	login         func(ctx context.Context, creds model.Credentials) (*model.LoginResult, error)
	register      func(ctx context.Context, reg model.Registration) (*model.LoginResult, error)
	logout        func(ctx context.Context, auth model.BackendAuth) error

	regions     []string
	submissions []model.ReviewSubmission
	logouts     int
	logins      int
}

func (m *mockAPI) ListDealers(ctx context.Context, region string) ([]model.Dealer, error) {
	m.mu.Lock()
	m.regions = append(m.regions, region)
	m.mu.Unlock()
	return m.listDealers(ctx, region)
}

func (m *mockAPI) GetDealer(ctx context.Context, id int) (*model.Dealer, error) {
	return m.getDealer(ctx, id)
}

func (m *mockAPI) ListReviews(ctx context.Context, dealerID int) ([]model.Review, error) {
	return m.listReviews(ctx, dealerID)
}

func (m *mockAPI) ListCarModels(ctx context.Context) ([]model.CarModel, error) {
	return m.listCarModels(ctx)
}

func (m *mockAPI) SubmitReview(ctx context.Context, auth model.BackendAuth, review model.ReviewSubmission) error {
	m.mu.Lock()
	m.submissions = append(m.submissions, review)
	m.mu.Unlock()
	if m.submitReview == nil {
		return nil
	}
	return m.submitReview(ctx, auth, review)
}

func (m *mockAPI) Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error) {
	m.mu.Lock()
	m.logins++
	m.mu.Unlock()
	return m.login(ctx, creds)
}

func (m *mockAPI) Register(ctx context.Context, reg model.Registration) (*model.LoginResult, error) {
	return m.register(ctx, reg)
}

func (m *mockAPI) Logout(ctx context.Context, auth model.BackendAuth) error {
	m.mu.Lock()
	m.logouts++
	m.mu.Unlock()
	if m.logout == nil {
		return nil
	}
	return m.logout(ctx, auth)
}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	saveErr  error
	getErr   error
	touched  []string
	cutoffs  []time.Time
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]model.Session)}
}

func (m *mockSessionStore) Save(_ context.Context, s model.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *mockSessionStore) Touch(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = at
		m.sessions[id] = s
	}
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) DeleteIdle(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, cutoff)
	var n int64
	for id, s := range m.sessions {
		if s.LastSeenAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
