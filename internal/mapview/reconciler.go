package mapview

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"delivery-options-backend/internal/coordinator"
	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/parse"
	"delivery-options-backend/internal/upstream"
)

// ErrUnknownMarker is returned for a code with no marker on the map.
var ErrUnknownMarker = errors.New("unknown marker")

// Requester issues cancellable upstream requests.
type Requester interface {
	Issue(ctx context.Context, ch coordinator.Channel, params url.Values, h coordinator.Handlers) (uint64, error)
	Cancel(ch coordinator.Channel)
	Pending(ch coordinator.Channel) bool
}

// Options configures a Reconciler.
type Options struct {
	Allowed              model.AllowedTypes
	NearestZoomThreshold int
	MinSearchZoom        int
	ImageBaseURL         string
	Country              string
	DeliveryDate         time.Time
}

// Marker is a location on the map.
type Marker struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Position LatLng `json:"position"`
	Selected bool   `json:"selected"`
	Visible  bool   `json:"visible"`
	ZIndex   int    `json:"z_index"`
	Icon     string `json:"icon"`
	Shape    Shape  `json:"shape"`
	// ShowDistance is set on markers from the first batch only.
	ShowDistance bool `json:"show_distance"`

	oldZIndex int
	location  *model.Location
}

// Location returns the location behind the marker.
func (m *Marker) Location() *model.Location {
	return m.location
}

// SearchOrigin is the marker placed on an address search result.
type SearchOrigin struct {
	Title    string `json:"title"`
	Position LatLng `json:"position"`
}

// Reconciler keeps the marker set of a session in step with the upstream
// as the viewport moves. It is not safe for concurrent use; the owning
// session serializes access, including the completions of its requests.
type Reconciler struct {
	ctx  context.Context
	opts Options
	req  Requester
	log  *zap.Logger

	markers  []*Marker
	byCode   map[string]*Marker
	selected *Marker
	hovered  *Marker

	filterEarly   bool
	filterEvening bool
	saveEnabled   bool
	searchError   bool
	searchOrigin  *SearchOrigin

	viewport       Viewport
	dragging       bool
	infoWindowCode string
}

// New creates an empty reconciler. ctx bounds every request it issues.
func New(ctx context.Context, opts Options, req Requester, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		ctx:    ctx,
		opts:   opts,
		req:    req,
		log:    log,
		byCode: make(map[string]*Marker),
	}
}

// AddMarkers adds a marker for each new location with at least one allowed
// capability. With filterBounds set, locations outside the current bounds
// are skipped. When nothing is selected the first added visible marker is.
func (r *Reconciler) AddMarkers(locs []model.Location, filterBounds bool) []*Marker {
	firstBatch := len(r.markers) == 0
	var added []*Marker

	for i := range locs {
		loc := locs[i]
		if loc.Code == "" || !loc.OffersAny(r.opts.Allowed) {
			continue
		}
		if _, ok := r.byCode[loc.Code]; ok {
			continue
		}
		pos := LatLng{Lat: loc.Latitude, Lng: loc.Longitude}
		if filterBounds && !r.viewport.Bounds.IsZero() && !r.viewport.Bounds.Contains(pos) {
			continue
		}

		m := &Marker{
			Code:         loc.Code,
			Title:        markerTitle(&loc),
			Position:     pos,
			Visible:      true,
			ZIndex:       len(r.markers) + 1,
			Icon:         r.iconFor(&loc, false),
			Shape:        shapeFor(&loc, false),
			ShowDistance: firstBatch,
			location:     &loc,
		}
		r.markers = append(r.markers, m)
		r.byCode[m.Code] = m
		added = append(added, m)
	}

	r.Filter()
	if r.selected == nil {
		for _, m := range added {
			if m.Visible {
				r.selectMarker(m, false)
				break
			}
		}
	}
	r.restack()

	r.log.Debug("markers added", zap.Int("added", len(added)), zap.Int("total", len(r.markers)))
	return added
}

// restack keeps the selected and hovered markers above the rest after the
// marker set grew.
func (r *Reconciler) restack() {
	if r.selected != nil {
		r.selected.ZIndex = len(r.markers) + 1
	}
	if r.hovered != nil {
		r.hovered.ZIndex = len(r.markers) + 2
	}
}

func markerTitle(loc *model.Location) string {
	a := loc.Address
	title := loc.Name + ", " + a.Street + " " + a.HouseNr
	if a.HouseNrExt != "" {
		title += " " + a.HouseNrExt
	}
	return strings.TrimSpace(title)
}

// Select highlights the marker with the given code. With pan set the map
// centers on it.
func (r *Reconciler) Select(code string, pan bool) error {
	m, ok := r.byCode[code]
	if !ok {
		return ErrUnknownMarker
	}
	r.selectMarker(m, pan)
	return nil
}

func (r *Reconciler) selectMarker(m *Marker, pan bool) {
	if r.selected == m {
		return
	}
	if m.oldZIndex == 0 {
		m.oldZIndex = m.ZIndex
	}
	m.ZIndex = len(r.markers) + 1
	m.Icon = r.iconFor(m.location, true)
	m.Shape = shapeFor(m.location, true)

	r.Unselect()
	m.Selected = true
	r.selected = m
	if pan {
		r.viewport.Center = m.Position
	}
}

// Unselect demotes the selected marker back to its prior stacking order.
func (r *Reconciler) Unselect() {
	m := r.selected
	if m == nil {
		return
	}
	m.Shape = shapeFor(m.location, false)
	m.Selected = false
	r.selected = nil
	if m == r.hovered {
		m.ZIndex = len(r.markers) + 2
		return
	}
	m.ZIndex = m.oldZIndex
	m.oldZIndex = 0
	m.Icon = r.iconFor(m.location, false)
}

// Selected returns the selected marker, if any.
func (r *Reconciler) Selected() *Marker {
	return r.selected
}

// Marker returns the marker with the given code.
func (r *Reconciler) Marker(code string) (*Marker, bool) {
	m, ok := r.byCode[code]
	return m, ok
}

// Hover raises a marker above every other one until Unhover. It is
// ignored while the map is dragged.
func (r *Reconciler) Hover(code string) error {
	m, ok := r.byCode[code]
	if !ok {
		return ErrUnknownMarker
	}
	if r.dragging {
		return nil
	}
	if r.hovered != nil && r.hovered != m {
		r.unhover(r.hovered)
	}
	if m.oldZIndex == 0 {
		m.oldZIndex = m.ZIndex
	}
	m.ZIndex = len(r.markers) + 2
	m.Icon = r.iconFor(m.location, true)
	r.hovered = m
	return nil
}

// Unhover restores a hovered marker.
func (r *Reconciler) Unhover(code string) error {
	m, ok := r.byCode[code]
	if !ok {
		return ErrUnknownMarker
	}
	if r.hovered == m {
		r.unhover(m)
	}
	return nil
}

func (r *Reconciler) unhover(m *Marker) {
	r.hovered = nil
	if m.Selected {
		m.ZIndex = len(r.markers) + 1
		return
	}
	m.ZIndex = m.oldZIndex
	m.oldZIndex = 0
	m.Icon = r.iconFor(m.location, false)
}

// SetFilters sets both filters and re-applies them.
func (r *Reconciler) SetFilters(early, evening bool) {
	r.filterEarly = early
	r.filterEvening = evening
	r.Filter()
}

// Filter recomputes marker visibility. Both filters apply together. A
// selected marker that becomes hidden is unselected.
func (r *Reconciler) Filter() {
	anyVisible := false
	for _, m := range r.markers {
		visible := true
		if r.filterEarly && !m.location.Offers(model.LocationExpressPickup) {
			visible = false
		}
		if r.filterEvening && !m.location.Evening {
			visible = false
		}
		m.Visible = visible
		anyVisible = anyVisible || visible
	}

	if r.selected != nil && !r.selected.Visible {
		r.Unselect()
	}
	r.saveEnabled = anyVisible
}

// Markers returns every marker in insertion order.
func (r *Reconciler) Markers() []*Marker {
	return r.markers
}

// VisibleLocations lists the locations of visible markers in insertion order.
func (r *Reconciler) VisibleLocations() []model.Location {
	var out []model.Location
	for _, m := range r.markers {
		if m.Visible {
			out = append(out, *m.location)
		}
	}
	return out
}

// SaveEnabled reports whether at least one marker is visible.
func (r *Reconciler) SaveEnabled() bool {
	return r.saveEnabled
}

// RemoveMarkers drops every marker and the selection.
func (r *Reconciler) RemoveMarkers() {
	r.markers = nil
	r.byCode = make(map[string]*Marker)
	r.selected = nil
	r.hovered = nil
	r.infoWindowCode = ""
	r.saveEnabled = false
}

// Viewport returns the last known viewport.
func (r *Reconciler) Viewport() Viewport {
	return r.viewport
}

// SetViewport records the viewport without fetching.
func (r *Reconciler) SetViewport(vp Viewport) {
	r.viewport = vp
}

// DragStart marks the start of a drag. No fetch happens until DragEnd.
func (r *Reconciler) DragStart() {
	r.dragging = true
}

// DragEnd records the final viewport of a drag and refetches.
func (r *Reconciler) DragEnd(vp Viewport) {
	r.dragging = false
	r.viewport = vp
	r.refetch()
}

// ZoomChanged records the new viewport and refetches unless an info window
// is open or a drag is in progress.
func (r *Reconciler) ZoomChanged(vp Viewport) {
	r.viewport = vp
	if r.infoWindowCode != "" || r.dragging {
		return
	}
	r.refetch()
}

func (r *Reconciler) refetch() {
	if r.viewport.Zoom < r.opts.NearestZoomThreshold {
		r.FetchNearest(true)
		return
	}
	r.FetchInArea()
}

// OpenInfoWindow marks the info window of a marker as open.
func (r *Reconciler) OpenInfoWindow(code string) error {
	if _, ok := r.byCode[code]; !ok {
		return ErrUnknownMarker
	}
	r.infoWindowCode = code
	return nil
}

// CloseInfoWindow closes any open info window.
func (r *Reconciler) CloseInfoWindow() {
	r.infoWindowCode = ""
}

// FetchNearest asks for the locations nearest to the viewport center. Any
// in-area request is aborted.
func (r *Reconciler) FetchNearest(checkBounds bool) {
	r.req.Cancel(coordinator.ChannelLocationsInArea)

	params := url.Values{}
	params.Set("lat", formatCoord(r.viewport.Center.Lat))
	params.Set("long", formatCoord(r.viewport.Center.Lng))
	params.Set("deliveryDate", model.FormatDate(r.opts.DeliveryDate))

	r.issue(coordinator.ChannelMapLocations, params, checkBounds)
}

// FetchInArea asks for the locations inside the current bounds. Any
// nearest request is aborted.
func (r *Reconciler) FetchInArea() {
	r.req.Cancel(coordinator.ChannelMapLocations)

	b := r.viewport.Bounds
	params := url.Values{}
	params.Set("northEastLat", formatCoord(b.NorthEast.Lat))
	params.Set("northEastLng", formatCoord(b.NorthEast.Lng))
	params.Set("southWestLat", formatCoord(b.SouthWest.Lat))
	params.Set("southWestLng", formatCoord(b.SouthWest.Lng))
	params.Set("deliveryDate", model.FormatDate(r.opts.DeliveryDate))

	r.issue(coordinator.ChannelLocationsInArea, params, false)
}

func (r *Reconciler) issue(ch coordinator.Channel, params url.Values, filterBounds bool) {
	_, err := r.req.Issue(r.ctx, ch, params, coordinator.Handlers{
		OnSuccess: func(body []byte) {
			raw, err := upstream.DecodeLocations(body)
			if err != nil {
				r.log.Warn("discarding map locations", zap.String("channel", string(ch)), zap.Error(err))
				return
			}
			locs := make([]model.Location, 0, len(raw))
			for _, rec := range raw {
				locs = append(locs, parse.ParseLocation(rec, r.opts.DeliveryDate))
			}
			r.AddMarkers(locs, filterBounds)
		},
		OnDomainError: func(err *coordinator.DomainError) {
			r.log.Debug("no map locations", zap.String("channel", string(ch)), zap.String("sentinel", err.Sentinel))
		},
		OnTransportError: func(err error) {
			r.log.Debug("map locations request failed", zap.String("channel", string(ch)), zap.Error(err))
		},
	})
	if err != nil {
		r.log.Error("failed to issue map request", zap.String("channel", string(ch)), zap.Error(err))
	}
}

// Loading reports whether a map request is outstanding.
func (r *Reconciler) Loading() bool {
	return r.req.Pending(coordinator.ChannelMapLocations) || r.req.Pending(coordinator.ChannelLocationsInArea)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
