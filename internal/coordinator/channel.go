package coordinator

// Channel names a request slot. At most one request per channel is live.
type Channel string

const (
	ChannelTimeframes Channel = "timeframes"
	// ChannelLocations carries the initial address-based location lookup.
	ChannelLocations Channel = "locations-near-point"
	// ChannelMapLocations carries map-driven nearest lookups by coordinates.
	// It targets the same endpoint as ChannelLocations but has its own slot so
	// map movement never cancels the initial lookup.
	ChannelMapLocations    Channel = "map-locations-near-point"
	ChannelLocationsInArea Channel = "locations-in-area"
	ChannelSaveOption      Channel = "save-option"
	ChannelSaveCost        Channel = "save-cost"
	ChannelSavePhone       Channel = "save-phone"
)

// Sentinel bodies the upstream returns instead of data.
const (
	SentinelNotAllowed  = "not_allowed"
	SentinelInvalidData = "invalid_data"
	SentinelError       = "error"
	SentinelNoResult    = "no_result"
)

// SuccessMarker is the body persistence channels return on success.
const SuccessMarker = "OK"

type channelRule struct {
	sentinels map[string]bool
	// expectOK marks persistence channels: anything but SuccessMarker fails.
	expectOK bool
}

func sentinels(s ...string) map[string]bool {
	m := make(map[string]bool, len(s))
	for _, v := range s {
		m[v] = true
	}
	return m
}

var channelRules = map[Channel]channelRule{
	ChannelTimeframes:      {sentinels: sentinels(SentinelNotAllowed, SentinelInvalidData, SentinelError)},
	ChannelLocations:       {sentinels: sentinels(SentinelNotAllowed, SentinelInvalidData, SentinelError, SentinelNoResult)},
	ChannelMapLocations:    {sentinels: sentinels(SentinelNotAllowed, SentinelInvalidData, SentinelError, SentinelNoResult)},
	ChannelLocationsInArea: {sentinels: sentinels(SentinelNotAllowed, SentinelInvalidData, SentinelError, SentinelNoResult)},
	ChannelSaveOption:      {expectOK: true},
	ChannelSaveCost:        {expectOK: true},
	ChannelSavePhone:       {expectOK: true},
}

// Channels returns every known channel.
func Channels() []Channel {
	return []Channel{
		ChannelTimeframes,
		ChannelLocations,
		ChannelMapLocations,
		ChannelLocationsInArea,
		ChannelSaveOption,
		ChannelSaveCost,
		ChannelSavePhone,
	}
}

// IsPersistence reports whether ch is a save channel.
func (ch Channel) IsPersistence() bool {
	return channelRules[ch].expectOK
}
