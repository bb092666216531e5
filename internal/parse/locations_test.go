package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/upstream"
)

var allAllowed = model.AllowedTypes{PG: true, PGE: true, PA: true}

func rawLocation(code string, types ...string) upstream.Location {
	return upstream.Location{
		LocationCode:    code,
		Name:            "Location " + code,
		DeliveryOptions: upstream.StringWrapper{String: types},
	}
}

func codes(locs []*model.Location) []string {
	var out []string
	for _, l := range locs {
		out = append(out, l.Code)
	}
	return out
}

func TestParseLocations_CombinedLocationFillsBothSlots(t *testing.T) {
	res := ParseLocations([]upstream.Location{
		rawLocation("A", "PG", "PGE"),
		rawLocation("B", "PA"),
	}, LocationOptions{Allowed: allAllowed})

	require.NotNil(t, res.Regular)
	require.NotNil(t, res.Express)
	assert.Same(t, res.Regular, res.Express)
	assert.Equal(t, "A", res.Regular.Code)
	assert.Equal(t, TooltipFirst, res.Regular.TooltipClass)
	require.NotNil(t, res.Dispenser)
	assert.Equal(t, "B", res.Dispenser.Code)
	assert.Equal(t, TooltipThird, res.Dispenser.TooltipClass)
}

func TestParseLocations_StopsOnceAllSlotsAreFilled(t *testing.T) {
	res := ParseLocations([]upstream.Location{
		rawLocation("X", "PG"),
		rawLocation("Y", "PGE"),
		rawLocation("Z", "PA"),
		rawLocation("W", "PG"),
	}, LocationOptions{Allowed: allAllowed})

	assert.Equal(t, "X", res.Regular.Code)
	assert.Equal(t, TooltipSecond, res.Regular.TooltipClass)
	assert.Equal(t, "Y", res.Express.Code)
	assert.Equal(t, TooltipFirst, res.Express.TooltipClass)
	assert.Equal(t, "Z", res.Dispenser.Code)
	assert.Equal(t, []string{"X", "Y", "Z"}, codes(res.Locations))
	assert.Nil(t, res.Find("W"))
}

func TestParseLocations_KeepsUnassignedVisitedRecords(t *testing.T) {
	res := ParseLocations([]upstream.Location{
		rawLocation("X", "PG"),
		rawLocation("V", "PG"),
		rawLocation("Y", "PGE"),
	}, LocationOptions{Allowed: allAllowed})

	assert.Equal(t, []string{"X", "V", "Y"}, codes(res.Locations))
	assert.Empty(t, res.Find("V").TooltipClass)
	assert.Nil(t, res.Dispenser)
	assert.False(t, res.Complete())
}

func TestParseLocations_DisallowedTypes(t *testing.T) {
	testCases := []struct {
		name          string
		allowed       model.AllowedTypes
		wantRegular   string
		wantExpress   string
		wantDispenser string
	}{
		{
			name:        "Express disallowed splits the combined branch",
			allowed:     model.AllowedTypes{PG: true, PA: true},
			wantRegular: "A",
		},
		{
			name:        "Regular disallowed leaves express only",
			allowed:     model.AllowedTypes{PGE: true},
			wantExpress: "A",
		},
		{
			name:          "Dispenser only",
			allowed:       model.AllowedTypes{PA: true},
			wantDispenser: "B",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := ParseLocations([]upstream.Location{
				rawLocation("A", "PG", "PGE"),
				rawLocation("B", "PA"),
			}, LocationOptions{Allowed: tc.allowed})

			check := func(want string, got *model.Location) {
				if want == "" {
					assert.Nil(t, got)
					return
				}
				require.NotNil(t, got)
				assert.Equal(t, want, got.Code)
			}
			check(tc.wantRegular, res.Regular)
			check(tc.wantExpress, res.Express)
			check(tc.wantDispenser, res.Dispenser)
		})
	}
}

func TestParseLocations_CanonicalCodesAndDuplicates(t *testing.T) {
	res := ParseLocations([]upstream.Location{
		rawLocation(" 12 34 ", "PG"),
		rawLocation("1234", "PGE"),
		rawLocation("99\t1", "PGE"),
	}, LocationOptions{Allowed: allAllowed})

	assert.Equal(t, []string{"1234", "991"}, codes(res.Locations))
	assert.Equal(t, "1234", res.Regular.Code)
	assert.Equal(t, "991", res.Express.Code)
}

func TestParseLocation(t *testing.T) {
	raw := upstream.Location{
		LocationCode: "204 123",
		Name:         " Primera Centrum ",
		Address:      model.LocationAddress{Street: "Hoofdstraat", HouseNr: "1", Zipcode: "1234AB", City: "Amsterdam"},
		Latitude:     52.37,
		Longitude:    4.89,
		Distance:     350,
		OpeningHours: upstream.OpeningHours{
			Thursday: upstream.StringWrapper{String: upstream.StringList{"09:00-18:00"}},
		},
		DeliveryOptions: upstream.StringWrapper{String: upstream.StringList{"pg", "PGE", "PG", "KEL"}},
		IsEvening:       true,
	}

	loc := ParseLocation(raw, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "204123", loc.Code)
	assert.Equal(t, "Primera Centrum", loc.Name)
	assert.Equal(t, []model.LocationType{model.LocationPickup, model.LocationExpressPickup}, loc.Types)
	assert.True(t, loc.Evening)
	assert.Equal(t, "03-01-2030", loc.Date)
	assert.InDelta(t, 52.37, loc.Latitude, 1e-9)
	assert.Equal(t, []string{"09:00-18:00"}, loc.OpeningHours["Thursday"])
}
