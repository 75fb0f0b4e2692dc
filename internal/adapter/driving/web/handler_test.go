package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
)

var (
	acme   = model.Dealer{ID: 1, FullName: "Acme Motors", City: "Austin", Address: "1 Main St", Zip: "78701", State: "Texas"}
	golden = model.Dealer{ID: 2, FullName: "Golden Cars", City: "Fresno", Address: "9 Elm Rd", Zip: "93650", State: "California"}
)

// dealersByState serves the fixture dealers, filtered like the backend does.
func dealersByState(_ context.Context, region string) ([]model.Dealer, error) {
	all := []model.Dealer{acme, golden}
	if region == model.AllRegions {
		return all, nil
	}
	var out []model.Dealer
	for _, d := range all {
		if d.State == region {
			out = append(out, d)
		}
	}
	return out, nil
}

var regionSourcePattern = regexp.MustCompile(`<section id="[^"]+" class="region" hx-get="([^"]+)"`)

// regionSource returns the URL a page shell loads its region from.
func regionSource(t *testing.T, body string) string {
	t.Helper()
	m := regionSourcePattern.FindStringSubmatch(body)
	require.NotNil(t, m, "page has no data-bound region")
	return strings.ReplaceAll(m[1], "&amp;", "&")
}

func TestDealersPage_RendersLoaderOnly(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = dealersByState

	rec := env.get("/dealers")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hx-get="/app/dealers?view=`)
	assert.Contains(t, body, `hx-trigger="load"`)
	assert.Contains(t, body, `hx-sync="this:replace"`)
	assert.Contains(t, body, "Loading dealers...")
	assert.NotContains(t, body, "No dealers found.")
	assert.Zero(t, env.api.dealerCalls, "the shell must not fetch")
	assert.NotNil(t, findCookie(rec, VisitorCookieName))
	assert.NotNil(t, findCookie(rec, csrfCookieName))
}

func TestDealersPage_CarriesRegionIntoPartial(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/dealers?region=New+York")

	assert.Contains(t, rec.Body.String(), `hx-get="/app/dealers?region=New+York&amp;view=`)
}

func TestDealersPage_EachLoadIsItsOwnPage(t *testing.T) {
	env := newTestEnv(t)

	first := env.get("/dealers", visitorCookie())
	second := env.get("/dealers", visitorCookie())

	assert.NotEqual(t, regionSource(t, first.Body.String()), regionSource(t, second.Body.String()))
}

func TestDealerListPartial_FilteredRegion(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = dealersByState

	rec := env.get("/app/dealers?region=Texas", visitorCookie())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body,
		`<td>1</td><td><a href="/dealer/1">Acme Motors</a></td><td>Austin</td><td>1 Main St</td><td>78701</td><td>Texas</td>`)
	assert.Equal(t, 2, strings.Count(body, "<tr>"), "header row plus exactly one dealer row")
	assert.NotContains(t, body, "Golden Cars")
	assert.Contains(t, body, `<option value="Texas" selected>Texas</option>`)
	assert.Contains(t, body, `<option value="California">California</option>`)
	assert.Contains(t, body, `data-status="populated"`)
	assert.NotContains(t, body, "Loading dealers...")
}

func TestDealerListPartial_FilterChangeReplacesRows(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = dealersByState

	first := env.get("/app/dealers?region=Texas", visitorCookie())
	require.Contains(t, first.Body.String(), "Acme Motors")

	second := env.get("/app/dealers?region=California", visitorCookie())

	body := second.Body.String()
	assert.Contains(t, body, "Golden Cars")
	assert.NotContains(t, body, "Acme Motors")
	assert.Contains(t, body, `<option value="California" selected>California</option>`)
}

func TestDealerListPartial_FailureKeepsPreviousRows(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = dealersByState

	env.get("/app/dealers?region=Texas", visitorCookie())

	env.api.listDealers = func(_ context.Context, _ string) ([]model.Dealer, error) {
		return nil, fmt.Errorf("get dealers: %w", driven.ErrTransport)
	}
	rec := env.get("/app/dealers?region=Texas", visitorCookie())

	assert.Equal(t, http.StatusOK, rec.Code, "failures render an inline notice")
	body := rec.Body.String()
	assert.Contains(t, body, msgUnreachable)
	assert.Contains(t, body, "Acme Motors")
	assert.Contains(t, body, `data-status="failed"`)
	assert.Contains(t, body, `hx-get="/app/dealers?region=Texas"`)
}

func TestDealerListPartial_FailureWithoutData(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = func(_ context.Context, _ string) ([]model.Dealer, error) {
		return nil, fmt.Errorf("get dealers: %w", driven.ErrBackendStatus)
	}

	rec := env.get("/app/dealers", visitorCookie())

	body := rec.Body.String()
	assert.Contains(t, body, msgBackend)
	assert.NotContains(t, body, "No dealers found.")
	assert.NotContains(t, body, "<table")
}

func TestDealerListPartial_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = dealersByState

	rec := env.get("/app/dealers?region=Maryland", visitorCookie())

	body := rec.Body.String()
	assert.Contains(t, body, "No dealers found.")
	assert.Contains(t, body, `data-status="empty"`)
	assert.NotContains(t, body, "Loading dealers...")
}

func TestDealerListPartial_StaleResultIsNotSwapped(t *testing.T) {
	env := newTestEnv(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	env.api.listDealers = func(ctx context.Context, region string) ([]model.Dealer, error) {
		if region == "Texas" {
			close(entered)
			<-release
		}
		return dealersByState(ctx, region)
	}

	slow := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		slow <- env.get("/app/dealers?region=Texas&view="+testView, visitorCookie())
	}()
	<-entered

	fast := env.get("/app/dealers?region=California&view="+testView, visitorCookie())
	require.Equal(t, http.StatusOK, fast.Code)
	assert.Contains(t, fast.Body.String(), "Golden Cars")

	close(release)
	var stale *httptest.ResponseRecorder
	select {
	case stale = <-slow:
	case <-time.After(5 * time.Second):
		t.Fatal("slow request did not finish")
	}

	assert.Equal(t, http.StatusNoContent, stale.Code)
	assert.Empty(t, stale.Body.String())

	snap := env.views.Visitor(testVisitorID).DealerList(testView).Snapshot()
	assert.Equal(t, "California", snap.Value.Region, "the older response must not clobber the newer one")
}

func TestDealerListPartial_ReviewColumnRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	env.api.listDealers = dealersByState

	anon := env.get("/app/dealers", visitorCookie())
	assert.NotContains(t, anon.Body.String(), "Review Dealer")

	authed := env.get("/app/dealers", visitorCookie(), env.login(t))
	assert.Contains(t, authed.Body.String(), "Review Dealer")
	assert.Contains(t, authed.Body.String(), `href="/postreview/1"`)
}

func TestDealerPage_RendersShell(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/dealer/5")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-get="/app/dealers/5?view=`)
	assert.Contains(t, rec.Body.String(), "Loading dealer...")
	assert.NotContains(t, rec.Body.String(), "No reviews yet!")
}

func TestDealerDetailPartial_TabsDoNotSupersedeEachOther(t *testing.T) {
	env := newTestEnv(t)

	tab1, tab2 := env.get("/dealer/5", visitorCookie()), env.get("/dealer/5", visitorCookie())
	src1, src2 := regionSource(t, tab1.Body.String()), regionSource(t, tab2.Body.String())

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	env.api.getDealer = func(_ context.Context, id int) (*model.Dealer, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
		}
		return &model.Dealer{ID: id, FullName: "Fifth Avenue Autos"}, nil
	}

	slow := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		slow <- env.get(src1, visitorCookie())
	}()
	<-entered

	fast := env.get(src2, visitorCookie())
	require.Equal(t, http.StatusOK, fast.Code)
	assert.Contains(t, fast.Body.String(), "Fifth Avenue Autos")

	close(release)
	var first *httptest.ResponseRecorder
	select {
	case first = <-slow:
	case <-time.After(5 * time.Second):
		t.Fatal("first tab did not finish")
	}

	assert.Equal(t, http.StatusOK, first.Code, "a second tab on the same dealer must not blank the first")
	assert.Contains(t, first.Body.String(), "Fifth Avenue Autos")
}

func TestDealerPage_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.get("/dealer/abc").Code)
	assert.Equal(t, http.StatusNotFound, env.get("/app/dealers/0").Code)
}

func TestDealerDetailPartial_NoReviews(t *testing.T) {
	env := newTestEnv(t)
	env.api.getDealer = func(_ context.Context, id int) (*model.Dealer, error) {
		return &model.Dealer{ID: id, FullName: "Fifth Avenue Autos", City: "Dallas", Address: "5 Fifth Ave", Zip: "75001", State: "Texas"}, nil
	}

	rec := env.get("/app/dealers/5", visitorCookie())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No reviews yet!")
	assert.Contains(t, body, "Fifth Avenue Autos")
	assert.Contains(t, body, "Dallas, 5 Fifth Ave, Zip - 75001, Texas")
	assert.NotContains(t, body, "Loading dealer...")
	assert.NotContains(t, body, "Post a review", "no session")
}

func TestDealerDetailPartial_ReviewCards(t *testing.T) {
	env := newTestEnv(t)
	env.api.listReviews = func(_ context.Context, _ int) ([]model.Review, error) {
		return []model.Review{
			{
				ID: 1, DealerID: 5, Name: "Bob Jones", Body: "**Great** experience",
				Purchase: true, PurchaseDate: "2021-03-04",
				CarMake: "Audi", CarModel: "A4", CarYear: 2021, Sentiment: model.SentimentPositive,
			},
			{ID: 2, DealerID: 5, Name: "Carol", Body: "meh", Sentiment: model.SentimentNegative},
		}, nil
	}

	rec := env.get("/app/dealers/5", visitorCookie(), env.login(t))

	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, `<article class="review-card"`))
	assert.Contains(t, body, "<strong>Great</strong>")
	assert.Contains(t, body, "Bob Jones")
	assert.Contains(t, body, "Audi A4 2021")
	assert.Contains(t, body, "Purchased on 2021-03-04")
	assert.Contains(t, body, `data-sentiment="positive"`)
	assert.Contains(t, body, `data-sentiment="negative"`)
	assert.Contains(t, body, `href="/postreview/5"`)
	assert.NotContains(t, body, "No reviews yet!")
}

func TestDealerDetailPartial_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.api.getDealer = func(_ context.Context, _ int) (*model.Dealer, error) {
		return nil, nil
	}

	rec := env.get("/app/dealers/99", visitorCookie())

	body := rec.Body.String()
	assert.Contains(t, body, msgNotFound)
	assert.NotContains(t, body, "Try again")
}

func TestPostReviewPage_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/postreview/5")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestPostReviewPage_RendersShell(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/postreview/5", env.login(t))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-get="/app/dealers/5/review-form?view=`)
}

func TestReviewFormPartial_RendersCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/app/dealers/5/review-form", visitorCookie(), env.login(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Dealer 5</h1>")
	assert.Contains(t, body, `<option value="Toyota|Corolla">Toyota Corolla</option>`)
	assert.Contains(t, body, `<option value="Audi|A4">Audi A4</option>`)
	assert.Contains(t, body, `action="/postreview/5"`)
	assert.Contains(t, body, `min="2015"`)
	assert.Contains(t, body, `max="2023"`)
	assert.Contains(t, body, `name="csrf_token"`)
	assert.Contains(t, body, `<textarea id="review" name="review" rows="7" cols="50" required>`)
	assert.Contains(t, body, `<input type="date" id="purchase_date" name="purchase_date" value="" required>`)
	assert.Contains(t, body, `<select id="car" name="car" required>`)
	assert.Contains(t, body, `name="year" min="2015" max="2023" value="" required>`)
}

func TestReviewFormPartial_PostsBackItsPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/app/dealers/5/review-form?view="+testView, visitorCookie(), env.login(t))

	assert.Contains(t, rec.Body.String(), `<input type="hidden" name="view" value="`+testView+`">`)
}

func TestReviewFormPartial_HTMXWithoutSessionRedirects(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/app/dealers/5/review-form", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
}

func validReviewForm() url.Values {
	return url.Values{
		"review":        {"Friendly staff and a fair price."},
		"purchase":      {"true"},
		"purchase_date": {"2021-05-01"},
		"car":           {"Toyota|Corolla"},
		"year":          {"2020"},
	}
}

func TestSubmitReview_SuccessRedirectsToDealer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/postreview/5", validReviewForm(), visitorCookie(), env.login(t))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dealer/5", rec.Header().Get("Location"))
	require.Len(t, env.api.submissions, 1)
	sub := env.api.submissions[0]
	assert.Equal(t, "Alice Smith", sub.Name)
	assert.Equal(t, 5, sub.DealerID)
	assert.Equal(t, "Friendly staff and a fair price.", sub.Body)
	assert.True(t, sub.Purchase)
	assert.Equal(t, "2021-05-01", sub.PurchaseDate)
	assert.Equal(t, "Toyota", sub.CarMake)
	assert.Equal(t, "Corolla", sub.CarModel)
	assert.Equal(t, 2020, sub.CarYear)
}

func TestSubmitReview_EmptyReviewBlockedLocally(t *testing.T) {
	env := newTestEnv(t)
	form := validReviewForm()
	form.Set("review", "  ")

	rec := env.postForm("/postreview/5", form, visitorCookie(), env.login(t))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, env.api.submissions, "no network request for an incomplete form")
	body := rec.Body.String()
	assert.Contains(t, body, "All details are mandatory")
	assert.Contains(t, body, `value="2021-05-01"`)
	assert.Contains(t, body, `<option value="Toyota|Corolla" selected>Toyota Corolla</option>`)
	assert.Contains(t, body, `value="2020"`)
	assert.Contains(t, body, "checked")
}

func TestSubmitReview_SupersededRefetchFallsBackToRegion(t *testing.T) {
	env := newTestEnv(t)
	session := env.login(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	env.api.listCarModels = func(_ context.Context) ([]model.CarModel, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
		}
		return []model.CarModel{{Make: "Kia", Model: "Rio"}}, nil
	}

	form := validReviewForm()
	form.Set("review", "")
	form.Set("view", testView)

	submitted := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		submitted <- env.postForm("/postreview/5", form, visitorCookie(), session)
	}()
	<-entered

	region := env.get("/app/dealers/5/review-form?view="+testView, visitorCookie(), session)
	require.Equal(t, http.StatusOK, region.Code)

	close(release)
	var rec *httptest.ResponseRecorder
	select {
	case rec = <-submitted:
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not finish")
	}

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "All details are mandatory")
	assert.Contains(t, body, `hx-get="/app/dealers/5/review-form?view=`+testView+`"`)
	assert.Contains(t, body, "Loading review form...")
}

func TestSubmitReview_BackendFailureKeepsForm(t *testing.T) {
	env := newTestEnv(t)
	env.api.submitReview = func(_ context.Context, _ model.BackendAuth, _ model.ReviewSubmission) error {
		return fmt.Errorf("add review: %w", driven.ErrBackendStatus)
	}

	rec := env.postForm("/postreview/5", validReviewForm(), visitorCookie(), env.login(t))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSubmitFailed)
	assert.Contains(t, rec.Body.String(), "Friendly staff and a fair price.")
}

func TestSubmitReview_BackendRefusesSession(t *testing.T) {
	env := newTestEnv(t)
	env.api.submitReview = func(_ context.Context, _ model.BackendAuth, _ model.ReviewSubmission) error {
		return fmt.Errorf("add review: %w", driven.ErrUnauthorized)
	}

	rec := env.postForm("/postreview/5", validReviewForm(), visitorCookie(), env.login(t))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSessionExpired)
}

func TestSubmitReview_WithoutSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/postreview/5", validReviewForm(), visitorCookie())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, env.api.submissions)
}

func TestSubmitReview_RejectsMissingCSRF(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/postreview/5", strings.NewReader(validReviewForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(env.login(t))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.api.submissions)
}

func TestLogin_SuccessEstablishesSession(t *testing.T) {
	env := newTestEnv(t)
	env.api.login = func(_ context.Context, _ model.Credentials) (*model.LoginResult, error) {
		return &model.LoginResult{Username: "alice"}, nil
	}

	rec := env.postForm("/login", url.Values{"username": {"alice"}, "password": {"secret"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := findCookie(rec, SessionCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Zero(t, cookie.MaxAge, "browser-session lifetime")
	assert.Equal(t, 1, env.store.count())

	home := env.get("/", cookie)
	assert.Contains(t, home.Body.String(), "Good to see you, alice.")
	assert.Contains(t, home.Body.String(), "Logout")
	assert.NotContains(t, home.Body.String(), `href="/register"`)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.api.login = func(_ context.Context, _ model.Credentials) (*model.LoginResult, error) {
		return nil, fmt.Errorf("login: %w", driven.ErrNotAuthenticated)
	}

	rec := env.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInvalidCredentials)
	assert.Contains(t, rec.Body.String(), `value="alice"`)
	assert.Contains(t, rec.Body.String(), `<input type="password" id="password" name="password" required>`)
	assert.Nil(t, findCookie(rec, SessionCookieName))
	assert.Zero(t, env.store.count())
}

func TestLogin_EmptyPasswordBlockedLocally(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/login", url.Values{"username": {"alice"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), msgMissingCredentials)
	assert.Zero(t, env.api.loginCalls)
}

func TestRegister_SuccessUsesFullName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/register", url.Values{
		"username":   {"bob"},
		"password":   {"pw"},
		"first_name": {"Bob"},
		"last_name":  {"Jones"},
		"email":      {"bob@example.com"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := findCookie(rec, SessionCookieName)
	require.NotNil(t, cookie)

	home := env.get("/", cookie)
	assert.Contains(t, home.Body.String(), "Bob Jones")
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	env := newTestEnv(t)
	env.api.register = func(_ context.Context, _ model.Registration) (*model.LoginResult, error) {
		return nil, fmt.Errorf("register: %w", driven.ErrAlreadyRegistered)
	}

	rec := env.postForm("/register", url.Values{
		"username": {"bob"}, "password": {"pw"}, "email": {"bob@example.com"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAlreadyRegistered)
	assert.Contains(t, rec.Body.String(), `value="bob@example.com"`)
}

func TestLogout_HTMXRedirectsHome(t *testing.T) {
	env := newTestEnv(t)
	session := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set(csrfHeaderName, testCSRF)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	cleared := findCookie(rec, SessionCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.Zero(t, env.store.count())
	assert.Equal(t, 1, env.api.logouts)
}

func TestLogout_ClassicFormRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/logout", nil, env.login(t))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Zero(t, env.store.count())
}

func TestLogout_RejectsMissingCSRF(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(env.login(t))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, env.store.count())
}

func TestHome_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/login"`)
	assert.Contains(t, body, `href="/register"`)
	assert.NotContains(t, body, "Logout")
	assert.Contains(t, body, "<title>Home | Best Cars</title>")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t)

	js := env.get("/static/csrf.js")
	assert.Equal(t, http.StatusOK, js.Code)
	assert.Contains(t, js.Body.String(), "X-CSRF-Token")

	css := env.get("/static/style.css")
	assert.Equal(t, http.StatusOK, css.Code)
	assert.Contains(t, css.Body.String(), ".htmx-indicator")
}
