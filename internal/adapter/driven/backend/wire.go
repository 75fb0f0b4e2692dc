package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// statusField decodes the backend's "status" member, which is a number on data
// endpoints and a string on the auth endpoints.
type statusField struct {
	code    int
	text    string
	present bool
}

func (s *statusField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s.present = true
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.text)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	code, err := strconv.Atoi(n.String())
	if err != nil {
		return err
	}
	s.code = code
	return nil
}

// is reports whether the status equals the numeric success code.
func (s statusField) is(code int) bool {
	return s.present && s.code == code
}

// flexString accepts a JSON string or number. Older dealer records store zip as a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Review car years arrive as both.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type dealerJSON struct {
	ID        flexInt    `json:"id"`
	FullName  string     `json:"full_name"`
	ShortName string     `json:"short_name"`
	City      string     `json:"city"`
	Address   string     `json:"address"`
	Zip       flexString `json:"zip"`
	State     string     `json:"state"`
}

func (d dealerJSON) toModel() model.Dealer {
	return model.Dealer{
		ID:        int(d.ID),
		FullName:  d.FullName,
		ShortName: d.ShortName,
		City:      d.City,
		Address:   d.Address,
		Zip:       string(d.Zip),
		State:     d.State,
	}
}

type reviewJSON struct {
	ID           flexInt `json:"id"`
	Name         string  `json:"name"`
	Dealership   flexInt `json:"dealership"`
	Review       string  `json:"review"`
	Purchase     bool    `json:"purchase"`
	PurchaseDate string  `json:"purchase_date"`
	CarMake      string  `json:"car_make"`
	CarModel     string  `json:"car_model"`
	CarYear      flexInt `json:"car_year"`
	Sentiment    string  `json:"sentiment"`
}

func (r reviewJSON) toModel() model.Review {
	return model.Review{
		ID:           int(r.ID),
		DealerID:     int(r.Dealership),
		Name:         r.Name,
		Body:         r.Review,
		Purchase:     r.Purchase,
		PurchaseDate: r.PurchaseDate,
		CarMake:      r.CarMake,
		CarModel:     r.CarModel,
		CarYear:      int(r.CarYear),
		Sentiment:    model.ParseSentiment(r.Sentiment),
	}
}

type carModelJSON struct {
	CarMake  string `json:"CarMake"`
	CarModel string `json:"CarModel"`
}

type dealersEnvelope struct {
	Status  statusField  `json:"status"`
	Dealers []dealerJSON `json:"dealers"`
	Error   string       `json:"error"`
}

// dealerEnvelope keeps the dealer member raw: the backend sends either a
// one-element array or a bare object.
type dealerEnvelope struct {
	Status statusField     `json:"status"`
	Dealer json.RawMessage `json:"dealer"`
	Error  string          `json:"error"`
}

type reviewsEnvelope struct {
	Status  statusField  `json:"status"`
	Reviews []reviewJSON `json:"reviews"`
	Error   string       `json:"error"`
}

type carModelsEnvelope struct {
	CarModels []carModelJSON `json:"CarModels"`
	Error     string         `json:"error"`
}

type statusEnvelope struct {
	Status  statusField `json:"status"`
	Message string      `json:"message"`
}

type authEnvelope struct {
	Status   statusField `json:"status"`
	UserName string      `json:"userName"`
	Error    string      `json:"error"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type registerRequest struct {
	UserName  string `json:"userName"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type reviewRequest struct {
	Name         string `json:"name"`
	Dealership   int    `json:"dealership"`
	Review       string `json:"review"`
	Purchase     bool   `json:"purchase"`
	PurchaseDate string `json:"purchase_date"`
	CarMake      string `json:"car_make"`
	CarModel     string `json:"car_model"`
	CarYear      int    `json:"car_year"`
}

// decodeSingleDealer unwraps the dealer member. An absent, null or empty-array
// member means no dealer.
func decodeSingleDealer(raw json.RawMessage) (*model.Dealer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []dealerJSON
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, nil
		}
		d := list[0].toModel()
		return &d, nil
	}

	var one dealerJSON
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	d := one.toModel()
	return &d, nil
}

// truthy mirrors the backend contract for logout: any JSON value other than
// null, false, 0 and "" counts as success.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
