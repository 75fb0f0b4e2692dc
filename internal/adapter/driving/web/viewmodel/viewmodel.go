// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// SessionViewModel is the session marker as seen by templates. It is passed
// explicitly to every layout and page.
type SessionViewModel struct {
	LoggedIn    bool
	Username    string
	DisplayName string
}

// PageViewModel holds what every full page needs.
type PageViewModel struct {
	Title     string
	Session   SessionViewModel
	CSRFToken string
	// Nav marks the active navigation entry: "home", "dealers", "login" or "register".
	Nav string
}

// RegionState describes where a data-bound region is in its lifecycle.
type RegionState struct {
	Status  string
	Loading bool
	Empty   bool
	Failed  bool
	HasData bool
	// Error is the user-facing failure notice. Empty unless Failed.
	Error string
	// RetryPath is the partial route that reloads the region.
	RetryPath string
}

// RegionOption is one choice of the region filter.
type RegionOption struct {
	Value    string
	Selected bool
}

// DealerRow is one row of the dealer table.
type DealerRow struct {
	ID         int
	Name       string
	City       string
	Address    string
	Zip        string
	State      string
	DetailPath string
	ReviewPath string
}

// DealerListViewModel holds the dealer list region.
type DealerListViewModel struct {
	State   RegionState
	Region  string
	Regions []RegionOption
	Rows    []DealerRow
	// ShowReviewColumn is true when a session exists.
	ShowReviewColumn bool
	// PartialPath is the route the region filter re-queries.
	PartialPath string
}

// DealerHeaderViewModel holds a dealer's profile.
type DealerHeaderViewModel struct {
	ID      int
	Name    string
	City    string
	Address string
	Zip     string
	State   string
}

// ReviewCardViewModel holds one rendered review.
type ReviewCardViewModel struct {
	Reviewer string
	// BodyHTML is sanitised HTML.
	BodyHTML      string
	Car           string
	PurchaseNote  string
	Sentiment     string
	SentimentIcon string
}

// DealerDetailViewModel holds the dealer detail region.
type DealerDetailViewModel struct {
	State          RegionState
	Dealer         DealerHeaderViewModel
	Reviews        []ReviewCardViewModel
	CanPostReview  bool
	PostReviewPath string
	NotFound       bool
}

// CarOption is one entry of the make/model selection.
type CarOption struct {
	Value    string
	Label    string
	Selected bool
}

// ReviewFormValues are the values a user has entered so far.
type ReviewFormValues struct {
	Body         string
	Purchase     bool
	PurchaseDate string
	Car          string
	Year         string
}

// ReviewFormViewModel holds the review submission region.
type ReviewFormViewModel struct {
	State      RegionState
	// View is the page instance the form posts back with.
	View       string
	DealerID   int
	DealerName string
	CarOptions []CarOption
	Values     ReviewFormValues
	// Error is a submission problem shown above the form.
	Error      string
	ActionPath string
	CSRFToken  string
	MinYear    int
	MaxYear    int
	NotFound   bool
}

// LoginViewModel holds the login form.
type LoginViewModel struct {
	Username  string
	Error     string
	CSRFToken string
}

// RegisterViewModel holds the registration form.
type RegisterViewModel struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Error     string
	CSRFToken string
}
