package selection

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"delivery-options-backend/internal/model"
)

var (
	// ErrTypeNotOffered is returned when a location is selected for a
	// capability it does not have.
	ErrTypeNotOffered = errors.New("location does not offer option type")
	// ErrNotLocationType is returned when a timeframe tag is used for a location.
	ErrNotLocationType = errors.New("not a location option type")
	ErrNilLocation     = errors.New("nil location")
)

// State is the selection state of a checkout session.
type State int

const (
	Unselected State = iota
	TimeframeSelected
	LocationSelected
	// PendingVerification is a dispenser selection waiting for a phone number.
	PendingVerification
)

func (s State) String() string {
	switch s {
	case Unselected:
		return "unselected"
	case TimeframeSelected:
		return "timeframe_selected"
	case LocationSelected:
		return "location_selected"
	case PendingVerification:
		return "pending_verification"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Unselected, TimeframeSelected, LocationSelected, PendingVerification} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown selection state %q", b)
}

// Fees are the surcharges of the paid options.
type Fees struct {
	Evening float64
	Express float64
}

// Cost returns the surcharge of an option type.
func Cost(t model.OptionType, fees Fees) float64 {
	switch t {
	case model.OptionExpressPickup:
		return fees.Express
	case model.OptionEveningDelivery:
		return fees.Evening
	}
	return 0
}

// Persister receives the save calls a selection change triggers.
type Persister interface {
	SaveOption(payload model.OptionPayload)
	SaveCost(cost float64)
}

// Option is the active selection.
type Option struct {
	Type      model.OptionType `json:"type"`
	Date      string           `json:"date"`
	Cost      float64          `json:"cost"`
	Timeframe *model.Timeframe `json:"timeframe,omitempty"`
	Location  *model.Location  `json:"location,omitempty"`
}

// Payload builds the persisted form of the option.
func (o *Option) Payload() model.OptionPayload {
	p := model.OptionPayload{Type: o.Type, Date: o.Date, Cost: o.Cost}
	if o.Location != nil {
		addr := o.Location.Address
		p.Address = &addr
	}
	return p
}

// Machine tracks the one active selection of a session. It is not safe for
// concurrent use; the owning session serializes access.
type Machine struct {
	state     State
	active    *Option
	verified  bool
	fees      Fees
	persister Persister
	log       *zap.Logger
}

// New creates a machine in the Unselected state.
func New(fees Fees, persister Persister, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{fees: fees, persister: persister, log: log}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Active returns a copy of the active selection.
func (m *Machine) Active() (Option, bool) {
	if m.active == nil {
		return Option{}, false
	}
	return *m.active, true
}

// Verified reports whether a phone number has been accepted this session.
func (m *Machine) Verified() bool { return m.verified }

// Cost returns the surcharge of the active selection.
func (m *Machine) Cost() float64 {
	if m.active == nil {
		return 0
	}
	return m.active.Cost
}

// SelectTimeframe makes tf the active selection.
func (m *Machine) SelectTimeframe(tf model.Timeframe) {
	t := tf.OptionType()
	m.activate(TimeframeSelected, &Option{
		Type:      t,
		Date:      tf.Date,
		Cost:      Cost(t, m.fees),
		Timeframe: &tf,
	})
}

// SelectLocation makes loc the active selection for capability t. A
// dispenser selection without a verified phone number is held pending and
// not persisted.
func (m *Machine) SelectLocation(loc *model.Location, t model.OptionType) error {
	if loc == nil {
		return ErrNilLocation
	}
	if !t.IsLocation() {
		return fmt.Errorf("%w: %s", ErrNotLocationType, t)
	}
	if !loc.Offers(t.LocationType()) {
		return fmt.Errorf("%w: %s does not offer %s", ErrTypeNotOffered, loc.Code, t)
	}

	l := *loc
	opt := &Option{Type: t, Date: l.Date, Cost: Cost(t, m.fees), Location: &l}
	if t == model.OptionDispenser && !m.verified {
		m.activate(PendingVerification, opt)
		return nil
	}
	m.activate(LocationSelected, opt)
	return nil
}

func (m *Machine) activate(state State, opt *Option) {
	m.state = state
	m.active = opt
	m.log.Debug("selection changed",
		zap.Stringer("state", state),
		zap.String("type", string(opt.Type)),
		zap.String("date", opt.Date),
	)

	m.persister.SaveCost(opt.Cost)
	if state != PendingVerification {
		m.persister.SaveOption(opt.Payload())
	}
}

// CompleteVerification records an accepted phone number. A pending
// dispenser selection becomes active and is persisted.
func (m *Machine) CompleteVerification() {
	m.verified = true
	if m.state != PendingVerification {
		return
	}
	m.state = LocationSelected
	m.log.Debug("dispenser selection verified", zap.String("date", m.active.Date))
	m.persister.SaveOption(m.active.Payload())
}

// Reset clears the selection. The verification flag survives so a later
// dispenser selection does not prompt again.
func (m *Machine) Reset() {
	hadCost := m.Cost() != 0
	m.state = Unselected
	m.active = nil
	if hadCost {
		m.persister.SaveCost(0)
	}
}
