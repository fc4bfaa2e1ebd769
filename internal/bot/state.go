package bot

import (
	"sync"

	"boardeasy/internal/models"
	"boardeasy/internal/view"
)

// Input modes: what the next plain-text message from the chat means.
const (
	modeNone             = ""
	modeLoginUsername    = "login_username"
	modeLoginPassword    = "login_password"
	modeRegisterUsername = "register_username"
	modeRegisterEmail    = "register_email"
	modeRegisterPhone    = "register_phone"
	modeRegisterPassword = "register_password"
	modeSearchSource     = "search_source"
	modeSearchDest       = "search_destination"
	modeSearchDate       = "search_date"
	modeSearchSeats      = "search_passengers"
	modePassengerEntry   = "passenger_entry"
	modeCouponEntry      = "coupon_entry"
	modeCardEntry        = "card_entry"
	modeProfileUpdate    = "profile_update"
	modeChangePassword   = "change_password"
	modeRouteCreate      = "route_create"
	modeScheduleCreate   = "schedule_create"
)

// chatState is the transient UI state of one chat: pending text input, the
// last search results (needed to start a draft from a keyboard tap), and the
// per-screen view specs for paginated lists. Drafts themselves live in the
// draft store; this is only screen scaffolding and survives nothing.
type chatState struct {
	Mode string

	Login    models.RegisterRequest
	Register models.RegisterRequest

	Search  models.SearchRequest
	Results []models.BusResult

	Coupon string
	Method string
	Card   models.PaymentDetails

	Bookings []models.Booking

	Specs map[string]view.Spec
}

func (s *chatState) spec(screen string, size int) view.Spec {
	if s.Specs == nil {
		s.Specs = make(map[string]view.Spec)
	}
	spec, ok := s.Specs[screen]
	if !ok {
		spec = view.NewSpec(size)
		s.Specs[screen] = spec
	}
	return spec
}

func (s *chatState) setSpec(screen string, spec view.Spec) {
	if s.Specs == nil {
		s.Specs = make(map[string]view.Spec)
	}
	s.Specs[screen] = spec
}

type stateStore struct {
	mu     sync.Mutex
	states map[int64]*chatState
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[int64]*chatState)}
}

func (s *stateStore) get(chatID int64) *chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	if !ok {
		st = &chatState{}
		s.states[chatID] = st
	}
	return st
}

func (s *stateStore) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}

// resetInput drops the pending input mode and its partial data, keeping the
// per-screen view specs.
func (s *stateStore) resetInput(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[chatID]; ok {
		specs := st.Specs
		results := st.Results
		bookings := st.Bookings
		search := st.Search
		*st = chatState{Specs: specs, Results: results, Bookings: bookings, Search: search}
	}
}
