package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-options-backend/internal/coordinator"
	"delivery-options-backend/internal/model"
)

func nlResult(addr string, lat, lng float64) GeocodeResult {
	return GeocodeResult{
		FormattedAddress: addr,
		Location:         LatLng{Lat: lat, Lng: lng},
		AddressComponents: []AddressComponent{
			{LongName: "Amsterdam", ShortName: "Amsterdam"},
			{LongName: "Nederland", ShortName: "NL", Types: []string{"country"}},
		},
	}
}

func TestApplySearch(t *testing.T) {
	r, req := newTestReconciler()
	r.SetViewport(Viewport{Zoom: 8})
	r.AddMarkers([]model.Location{loc("A", 52.1, 4.1, false, model.LocationPickup)}, false)

	foreign := GeocodeResult{
		FormattedAddress:  "Brussel, België",
		Location:          LatLng{Lat: 50.85, Lng: 4.35},
		AddressComponents: []AddressComponent{{LongName: "België", ShortName: "BE"}},
	}

	moved := r.ApplySearchResults([]GeocodeResult{foreign, nlResult("Damrak 1, Amsterdam", 52.37, 4.89)}, SearchOptions{AddMarker: true, Refetch: true})

	require.True(t, moved)
	assert.False(t, r.SearchError())
	assert.Equal(t, LatLng{Lat: 52.37, Lng: 4.89}, r.Viewport().Center)
	assert.Equal(t, 13, r.Viewport().Zoom)
	assert.Empty(t, r.Markers(), "refetch clears the markers")

	last := req.last(t)
	assert.Equal(t, coordinator.ChannelMapLocations, last.channel)
	assert.Equal(t, "52.37", last.params.Get("lat"))

	require.NotNil(t, r.SearchOrigin())
	assert.Equal(t, "Damrak 1, Amsterdam", r.SearchOrigin().Title)
}

func TestApplySearch_KeepsHigherZoom(t *testing.T) {
	r, req := newTestReconciler()
	r.SetViewport(Viewport{Zoom: 16})

	require.True(t, r.ApplySearchResults([]GeocodeResult{nlResult("Utrecht", 52.09, 5.12)}, SearchOptions{}))

	assert.Equal(t, 16, r.Viewport().Zoom)
	assert.Empty(t, req.issued)
	assert.Nil(t, r.SearchOrigin())
}

func TestApplySearch_NoCountryMatch(t *testing.T) {
	r, _ := newTestReconciler()
	r.AddMarkers([]model.Location{loc("A", 52.1, 4.1, false, model.LocationPickup)}, false)

	moved := r.ApplySearchResults([]GeocodeResult{{
		FormattedAddress:  "Paris, France",
		AddressComponents: []AddressComponent{{ShortName: "FR"}},
	}}, SearchOptions{Refetch: true})

	assert.False(t, moved)
	assert.True(t, r.SearchError())
	assert.Len(t, r.Markers(), 1)
}

func TestApplySearch_SkipsBogusResults(t *testing.T) {
	r, _ := newTestReconciler()

	moved := r.ApplySearchResults([]GeocodeResult{
		nlResult("Nederland", 52, 5),
		nlResult("8362 Nederland", 52.6, 5.9),
	}, SearchOptions{})
	assert.False(t, moved)
	assert.True(t, r.SearchError())

	moved = r.ApplySearchResults([]GeocodeResult{
		nlResult("8362 Nederland", 52.6, 5.9),
		nlResult("Kalverstraat 1, Amsterdam", 52.37, 4.89),
	}, SearchOptions{})
	assert.True(t, moved)
	assert.False(t, r.SearchError())
	assert.Equal(t, LatLng{Lat: 52.37, Lng: 4.89}, r.Viewport().Center)
}
