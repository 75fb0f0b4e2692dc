package model

// Sentiment is the backend-assigned tone of a review. It only drives icon selection.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment maps a wire value onto the closed sentiment set.
// Unknown or empty values fall back to neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNegative:
		return Sentiment(s)
	default:
		return SentimentNeutral
	}
}

// AllRegions is the filter value meaning "no region filter".
const AllRegions = "All"
