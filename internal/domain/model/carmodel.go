package model

// CarModel is one make/model pair from the vehicle catalog.
type CarModel struct {
	Make  string
	Model string
}

// Label returns the human-readable "Make Model" form.
func (c CarModel) Label() string {
	return c.Make + " " + c.Model
}
