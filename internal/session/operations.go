package session

import (
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"delivery-options-backend/internal/coordinator"
	"delivery-options-backend/internal/mapview"
	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/parse"
	"delivery-options-backend/internal/selection"
)

// ErrUnknownViewportEvent is returned for an unrecognized map event kind.
var ErrUnknownViewportEvent = errors.New("unknown viewport event")

// SelectTimeframe selects the timeframe with the given index.
func (s *Session) SelectTimeframe(index int) error {
	return s.do(func() error {
		for _, tf := range s.timeframes {
			if tf.Index == index {
				s.machine.SelectTimeframe(tf)
				return nil
			}
		}
		return fmt.Errorf("%w: %d", ErrUnknownTimeframe, index)
	})
}

// SelectLocation selects the location with the given code for option type t.
// The matching map marker, if any, is selected too.
func (s *Session) SelectLocation(code string, t model.OptionType) error {
	code = parse.CanonicalCode(code)
	return s.do(func() error {
		loc := s.findLocation(code)
		if loc == nil {
			return fmt.Errorf("%w: %s", ErrUnknownLocation, code)
		}
		return s.selectLocation(loc, t)
	})
}

func (s *Session) selectLocation(loc *model.Location, t model.OptionType) error {
	if err := s.machine.SelectLocation(loc, t); err != nil {
		return err
	}
	if m, ok := s.mapview.Marker(loc.Code); ok && !m.Selected {
		if err := s.mapview.Select(loc.Code, true); err != nil {
			s.log.Debug("failed to sync map selection", zap.Error(err))
		}
	}
	return nil
}

func (s *Session) findLocation(code string) *model.Location {
	if loc := s.locations.Find(code); loc != nil {
		return loc
	}
	if s.custom != nil && s.custom.Code == code {
		return s.custom
	}
	if m, ok := s.mapview.Marker(code); ok {
		return m.Location()
	}
	return nil
}

// SubmitPhone normalizes number and sends it upstream. Once acknowledged a
// pending dispenser selection is persisted.
func (s *Session) SubmitPhone(number string) error {
	normalized, err := parse.NormalizePhone(number)
	if err != nil {
		return err
	}
	return s.do(func() error {
		params := url.Values{}
		params.Set("number", normalized)
		s.issue(coordinator.ChannelSavePhone, params, s.auditHandlers(model.AuditRecord{
			Channel: string(coordinator.ChannelSavePhone),
		}, s.machine.CompleteVerification))
		return nil
	})
}

// Reset clears the selection.
func (s *Session) Reset() error {
	return s.do(func() error {
		s.machine.Reset()
		return nil
	})
}

// DeselectAll clears the selection and the map highlight, for when the
// shopper picks a shipping method without delivery options.
func (s *Session) DeselectAll() error {
	return s.do(func() error {
		s.machine.Reset()
		s.mapview.Unselect()
		return nil
	})
}

// SetFilters applies the early pickup and evening filters to the map.
func (s *Session) SetFilters(early, evening bool) error {
	return s.do(func() error {
		s.mapview.SetFilters(early, evening)
		return nil
	})
}

// SelectMarker highlights a marker and pans to it.
func (s *Session) SelectMarker(code string) error {
	return s.do(func() error {
		return s.mapview.Select(parse.CanonicalCode(code), true)
	})
}

// Hover raises a marker for preview.
func (s *Session) Hover(code string) error {
	return s.do(func() error {
		return s.mapview.Hover(parse.CanonicalCode(code))
	})
}

// Unhover ends a preview.
func (s *Session) Unhover(code string) error {
	return s.do(func() error {
		return s.mapview.Unhover(parse.CanonicalCode(code))
	})
}

// ViewportEventKind names a map interaction.
type ViewportEventKind string

const (
	EventZoomChanged     ViewportEventKind = "zoom_changed"
	EventDragStart       ViewportEventKind = "drag_start"
	EventDragEnd         ViewportEventKind = "drag_end"
	EventInfoWindowOpen  ViewportEventKind = "info_window_open"
	EventInfoWindowClose ViewportEventKind = "info_window_close"
)

// ViewportEvent is a map interaction reported by the client.
type ViewportEvent struct {
	Kind     ViewportEventKind `json:"event"`
	Viewport mapview.Viewport  `json:"viewport"`
	Code     string            `json:"code,omitempty"`
}

// HandleViewport applies a map interaction, refetching markers as needed.
func (s *Session) HandleViewport(ev ViewportEvent) error {
	return s.do(func() error {
		switch ev.Kind {
		case EventZoomChanged:
			s.mapview.ZoomChanged(ev.Viewport)
		case EventDragStart:
			s.mapview.DragStart()
		case EventDragEnd:
			s.mapview.DragEnd(ev.Viewport)
		case EventInfoWindowOpen:
			return s.mapview.OpenInfoWindow(parse.CanonicalCode(ev.Code))
		case EventInfoWindowClose:
			s.mapview.CloseInfoWindow()
		default:
			return fmt.Errorf("%w: %q", ErrUnknownViewportEvent, ev.Kind)
		}
		return nil
	})
}

// ApplySearchResults pans the map to the first usable address search result.
func (s *Session) ApplySearchResults(results []mapview.GeocodeResult, opts mapview.SearchOptions) (bool, error) {
	var moved bool
	err := s.do(func() error {
		moved = s.mapview.ApplySearchResults(results, opts)
		return nil
	})
	return moved, err
}

// SaveMapLocation makes the selected marker's location the pickup choice.
// A distinguished location keeps its own type; any other replaces the
// custom location and is selected as dispenser, express or regular pickup,
// in that order of preference.
func (s *Session) SaveMapLocation() error {
	return s.do(func() error {
		m := s.mapview.Selected()
		if m == nil {
			return ErrNoMapSelection
		}
		loc := m.Location()

		slots := []struct {
			loc *model.Location
			t   model.OptionType
		}{
			{s.locations.Express, model.OptionExpressPickup},
			{s.locations.Regular, model.OptionPickup},
			{s.locations.Dispenser, model.OptionDispenser},
		}
		for _, slot := range slots {
			if slot.loc != nil && slot.loc.Code == loc.Code {
				return s.selectLocation(slot.loc, slot.t)
			}
		}

		t, ok := s.customType(loc)
		if !ok {
			return fmt.Errorf("%w: %s offers nothing allowed", selection.ErrTypeNotOffered, loc.Code)
		}
		custom := *loc
		custom.TooltipClass = ""
		s.custom = &custom
		return s.selectLocation(s.custom, t)
	})
}

func (s *Session) customType(loc *model.Location) (model.OptionType, bool) {
	allowed := allowedTypes(s.cfg.Options)
	for _, lt := range []model.LocationType{model.LocationDispenser, model.LocationExpressPickup, model.LocationPickup} {
		if allowed.Allows(lt) && loc.Offers(lt) {
			return model.OptionType(lt), true
		}
	}
	return "", false
}

// ShippingPrice adds the surcharge of the current selection to base.
func (s *Session) ShippingPrice(base float64) (float64, error) {
	var price float64
	err := s.do(func() error {
		price = base + s.machine.Cost()
		return nil
	})
	return price, err
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	ID         string            `json:"id"`
	Address    model.Address     `json:"address"`
	Ready      bool              `json:"ready"`
	State      selection.State   `json:"state"`
	Selection  *selection.Option `json:"selection,omitempty"`
	Cost       float64           `json:"cost"`
	Verified   bool              `json:"verified"`
	Timeframes []model.Timeframe `json:"timeframes"`
	Locations  []model.Location  `json:"locations"`
	Regular    *model.Location   `json:"regular,omitempty"`
	Express    *model.Location   `json:"express,omitempty"`
	Dispenser  *model.Location   `json:"dispenser,omitempty"`
	Custom     *model.Location   `json:"custom,omitempty"`
	Visible    []model.Location  `json:"visible"`
	Map        mapview.Snapshot  `json:"map"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.do(func() error {
		snap = Snapshot{
			ID:         s.ID,
			Address:    s.Address,
			Ready:      s.ready(),
			State:      s.machine.State(),
			Cost:       s.machine.Cost(),
			Verified:   s.machine.Verified(),
			Timeframes: append([]model.Timeframe(nil), s.timeframes...),
			Regular:    copyLocation(s.locations.Regular),
			Express:    copyLocation(s.locations.Express),
			Dispenser:  copyLocation(s.locations.Dispenser),
			Custom:     copyLocation(s.custom),
			Visible:    s.mapview.VisibleLocations(),
			Map:        s.mapview.Snapshot(),
		}
		for _, l := range s.locations.Locations {
			snap.Locations = append(snap.Locations, *l)
		}
		if opt, ok := s.machine.Active(); ok {
			snap.Selection = &opt
		}
		return nil
	})
	return snap, err
}

func copyLocation(l *model.Location) *model.Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
