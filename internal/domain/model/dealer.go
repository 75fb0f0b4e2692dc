package model

// Dealer is a dealership as mirrored from the backend.
// ID is stable and is the key reviews are associated with.
type Dealer struct {
	ID        int
	FullName  string
	ShortName string
	City      string
	Address   string
	Zip       string
	State     string
}

// DistinctStates returns the distinct non-empty states of dealers in first-seen order.
func DistinctStates(dealers []Dealer) []string {
	seen := make(map[string]struct{}, len(dealers))
	states := make([]string, 0, len(dealers))
	for _, d := range dealers {
		if d.State == "" {
			continue
		}
		if _, ok := seen[d.State]; ok {
			continue
		}
		seen[d.State] = struct{}{}
		states = append(states, d.State)
	}
	return states
}
