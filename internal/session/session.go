package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/coordinator"
	"delivery-options-backend/internal/mapview"
	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/parse"
	"delivery-options-backend/internal/selection"
	"delivery-options-backend/internal/upstream"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrUnknownTimeframe = errors.New("unknown timeframe")
	ErrUnknownLocation  = errors.New("unknown location")
	ErrNoMapSelection   = errors.New("no marker selected")
)

// Recorder receives persistence calls the upstream acknowledged.
type Recorder interface {
	Dispatch(rec model.AuditRecord)
}

// Session is one checkout's delivery options. All state is owned by its
// loop; exported methods hop onto it and are safe for concurrent use.
type Session struct {
	ID        string
	Address   model.Address
	CreatedAt time.Time

	cfg      *config.Config
	loop     *Loop
	coord    *coordinator.Coordinator
	ctx      context.Context
	cancel   context.CancelFunc
	recorder Recorder
	log      *zap.Logger

	timeframes       []model.Timeframe
	locations        parse.LocationResult
	custom           *model.Location
	timeframesLoaded bool
	locationsLoaded  bool

	machine *selection.Machine
	mapview *mapview.Reconciler
}

// New builds a session. Start kicks off the initial fetches.
func New(id string, addr model.Address, cfg *config.Config, transport coordinator.Transport, recorder Recorder, log *zap.Logger) (*Session, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session", id))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		Address:   addr,
		CreatedAt: time.Now().UTC(),
		cfg:       cfg,
		loop:      NewLoop(),
		ctx:       ctx,
		cancel:    cancel,
		recorder:  recorder,
		log:       log,
	}
	s.coord = coordinator.New(transport, s.loop.Post, log)
	s.machine = selection.New(selection.Fees{
		Evening: cfg.Options.EveningFee,
		Express: cfg.Options.ExpressFee,
	}, &persister{s: s}, log)
	s.mapview = mapview.New(ctx, mapview.Options{
		Allowed:              allowedTypes(cfg.Options),
		NearestZoomThreshold: cfg.Map.NearestZoomThreshold,
		MinSearchZoom:        cfg.Map.MinSearchZoom,
		ImageBaseURL:         cfg.Map.ImageBaseURL,
		Country:              cfg.Options.Country,
		DeliveryDate:         addr.DeliveryDate,
	}, s.coord, log)
	return s, nil
}

func allowedTypes(o config.OptionsConfig) model.AllowedTypes {
	return model.AllowedTypes{PG: o.AllowPG, PGE: o.AllowPGE, PA: o.AllowPA}
}

// Start runs the loop and issues the timeframes and locations requests.
func (s *Session) Start() error {
	go s.loop.Run()
	return s.loop.Do(s.load)
}

// Close aborts every request and stops the loop.
func (s *Session) Close() {
	s.coord.CancelAll()
	s.cancel()
	s.loop.Stop()
	s.log.Debug("session closed")
}

func (s *Session) addressParams() url.Values {
	params := url.Values{}
	params.Set("postcode", s.Address.Postcode)
	params.Set("housenumber", s.Address.HouseNumber)
	params.Set("deliveryDate", model.FormatDate(s.Address.DeliveryDate))
	return params
}

func (s *Session) load() {
	s.issue(coordinator.ChannelTimeframes, s.addressParams(), coordinator.Handlers{
		OnSuccess: func(body []byte) {
			days, err := upstream.DecodeTimeframes(body)
			if err != nil {
				s.log.Warn("malformed timeframes response, using default", zap.Error(err))
			}
			s.setTimeframes(parse.TimeframesOrDefault(days, parse.TimeframeOptions{
				AllowMultiple: s.cfg.Options.AllowTimeframes,
				AllowEvening:  s.cfg.Options.AllowEveningTimeframes,
			}, s.Address.DeliveryDate))
		},
		OnDomainError: func(*coordinator.DomainError) {
			s.setTimeframes([]model.Timeframe{parse.DefaultTimeframe(s.Address.DeliveryDate)})
		},
		OnTransportError: func(error) {
			s.setTimeframes([]model.Timeframe{parse.DefaultTimeframe(s.Address.DeliveryDate)})
		},
	})

	s.issue(coordinator.ChannelLocations, s.addressParams(), coordinator.Handlers{
		OnSuccess: func(body []byte) {
			raw, err := upstream.DecodeLocations(body)
			if err != nil {
				s.log.Warn("malformed locations response", zap.Error(err))
			}
			s.setLocations(raw)
		},
		OnDomainError: func(*coordinator.DomainError) { s.setLocations(nil) },
		OnTransportError: func(error) {
			s.setLocations(nil)
		},
	})
}

func (s *Session) setTimeframes(tfs []model.Timeframe) {
	s.timeframes = tfs
	s.timeframesLoaded = true
	if s.machine.State() == selection.Unselected && len(tfs) > 0 {
		s.machine.SelectTimeframe(tfs[0])
	}
	s.logReady()
}

func (s *Session) setLocations(raw []upstream.Location) {
	s.locations = parse.ParseLocations(raw, parse.LocationOptions{
		Allowed:      allowedTypes(s.cfg.Options),
		DeliveryDate: s.Address.DeliveryDate,
	})
	s.locationsLoaded = true

	all := make([]model.Location, 0, len(raw))
	for _, rec := range raw {
		all = append(all, parse.ParseLocation(rec, s.Address.DeliveryDate))
	}
	s.mapview.AddMarkers(all, false)
	s.logReady()
}

func (s *Session) ready() bool {
	return s.timeframesLoaded && s.locationsLoaded
}

func (s *Session) logReady() {
	if s.ready() {
		s.log.Info("delivery options ready",
			zap.Int("timeframes", len(s.timeframes)),
			zap.Int("locations", len(s.locations.Locations)),
		)
	}
}

func (s *Session) issue(ch coordinator.Channel, params url.Values, h coordinator.Handlers) {
	if s.cfg.Options.OneStepCheckout && ch.IsPersistence() {
		params.Set("isOsc", "true")
	}
	if _, err := s.coord.Issue(s.ctx, ch, params, h); err != nil {
		s.log.Error("failed to issue request", zap.String("channel", string(ch)), zap.Error(err))
	}
}

// persister issues the save calls of the selection machine. It runs on the loop.
type persister struct {
	s *Session
}

func (p *persister) SaveOption(payload model.OptionPayload) {
	params := url.Values{}
	params.Set("type", string(payload.Type))
	params.Set("date", payload.Date)
	params.Set("costs", formatCost(payload.Cost))

	var encoded string
	if payload.Address != nil {
		b, err := json.Marshal(payload.Address)
		if err != nil {
			p.s.log.Error("failed to encode location address", zap.Error(err))
			return
		}
		encoded = string(b)
		params.Set("address", encoded)
	}

	p.s.issue(coordinator.ChannelSaveOption, params, p.s.auditHandlers(model.AuditRecord{
		Channel:    string(coordinator.ChannelSaveOption),
		OptionType: payload.Type,
		Date:       payload.Date,
		Cost:       payload.Cost,
		Payload:    encoded,
	}, nil))
}

func (p *persister) SaveCost(cost float64) {
	params := url.Values{}
	params.Set("costs", formatCost(cost))

	p.s.issue(coordinator.ChannelSaveCost, params, p.s.auditHandlers(model.AuditRecord{
		Channel: string(coordinator.ChannelSaveCost),
		Cost:    cost,
	}, nil))
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// auditHandlers records an OK acknowledgement and then runs onOK, if set.
func (s *Session) auditHandlers(rec model.AuditRecord, onOK func()) coordinator.Handlers {
	return coordinator.Handlers{
		OnSuccess: func([]byte) {
			if s.recorder != nil {
				rec.SessionID = s.ID
				rec.AcknowledgedAt = time.Now().UTC()
				s.recorder.Dispatch(rec)
			}
			if onOK != nil {
				onOK()
			}
		},
		OnDomainError: func(err *coordinator.DomainError) {
			s.log.Warn("upstream did not acknowledge save", zap.String("channel", rec.Channel), zap.String("response", err.Sentinel))
		},
		OnTransportError: func(err error) {
			s.log.Warn("save request failed", zap.String("channel", rec.Channel), zap.Error(err))
		},
	}
}

// do runs fn on the loop and returns its error.
func (s *Session) do(fn func() error) error {
	var err error
	if lerr := s.loop.Do(func() { err = fn() }); lerr != nil {
		return lerr
	}
	return err
}

// WaitIdle blocks until no request is outstanding and every completion has
// been applied.
func (s *Session) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		var idle bool
		if err := s.loop.Do(func() { idle = s.coord.InFlight() == 0 }); err != nil {
			return err
		}
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Session) String() string {
	return fmt.Sprintf("session %s (%s %s)", s.ID, s.Address.Postcode, s.Address.HouseNumber)
}
