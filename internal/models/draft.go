package models

// Flow steps of the booking wizard, in order. Each step corresponds to one
// screen; the draft accumulates exactly one field group per transition.
const (
	StepSearchResults    = "search_results"
	StepSeatSelection    = "seat_selection"
	StepPassengerDetails = "passenger_details"
	StepPayment          = "payment"
	StepConfirmation     = "confirmation"
)

// StepOrder is the linear order of wizard steps.
var StepOrder = []string{
	StepSearchResults,
	StepSeatSelection,
	StepPassengerDetails,
	StepPayment,
	StepConfirmation,
}

// StepIndex returns the position of a step, or -1 for unknown names.
func StepIndex(step string) int {
	for i, s := range StepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// Draft is the accumulating booking state threaded through the wizard. It
// lives only in the draft store (never in sqlite) and is forward-only: each
// step adds its field group, going back discards the suffix.
type Draft struct {
	ChatID int64  `json:"chat_id"`
	Step   string `json:"step"`

	Bus        *BusResult     `json:"bus,omitempty"`
	SearchData *SearchRequest `json:"search_data,omitempty"`

	SelectedSeats []string `json:"selected_seats,omitempty"`

	Passengers     []Passenger     `json:"passengers,omitempty"`
	ContactDetails *ContactDetails `json:"contact_details,omitempty"`

	PaymentDetails *PaymentDetails `json:"payment_details,omitempty"`

	// PNR is set by the confirmation step from the backend response.
	PNR string `json:"pnr,omitempty"`
}

// HasSearch reports whether the search step has populated the draft.
func (d *Draft) HasSearch() bool {
	return d != nil && d.Bus != nil && d.SearchData != nil
}

// HasSeats reports whether at least one seat has been selected.
func (d *Draft) HasSeats() bool {
	return d.HasSearch() && len(d.SelectedSeats) > 0
}

// HasPassengers reports whether passenger and contact details are complete
// relative to the selected seats.
func (d *Draft) HasPassengers() bool {
	return d.HasSeats() &&
		len(d.Passengers) == len(d.SelectedSeats) &&
		d.ContactDetails != nil
}

// HasPayment reports whether the payment step has run.
func (d *Draft) HasPayment() bool {
	return d.HasPassengers() && d.PaymentDetails != nil
}
