package model

// Review is a dealer review as returned by the backend. Sentiment is assigned
// by the backend, never computed here.
type Review struct {
	ID           int
	DealerID     int
	Name         string
	Body         string
	Purchase     bool
	PurchaseDate string
	CarMake      string
	CarModel     string
	CarYear      int
	Sentiment    Sentiment
}

// ReviewSubmission is the structured payload for a new review.
type ReviewSubmission struct {
	Name         string
	DealerID     int
	Body         string
	Purchase     bool
	PurchaseDate string
	CarMake      string
	CarModel     string
	CarYear      int
}
