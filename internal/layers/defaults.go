package layers

// Population field carried by the census block group layer.
const PopulationField = "POP10"

// Indicator ids of the built-in table.
const (
	PM25        = "pm2.5"
	Respiratory = "resp"
	Ozone       = "ozone"
	FloodFactor = "floodfactor"
)

type indicatorDef struct {
	id, field, label            string
	lowSource, lowSourceLayer   string
	highSource, highSourceLayer string
	domain                      Domain
}

var builtin = []indicatorDef{
	{
		id: PM25, field: "D_PM25_2", label: "PM2.5 index",
		lowSource: "pm25-low", lowSourceLayer: "EJSCREEN_2020_CA_D_PM25_2_dissolve",
		highSource: "pm25-high", highSourceLayer: "cali-projected-6z3k79",
		domain: Domain{Min: 0, Max: 12512},
	},
	{
		id: Respiratory, field: "D_RESP_2", label: "Respiratory Hazard index",
		lowSource: "resp-low", lowSourceLayer: "D_RESP_2_bucketgeojson",
		highSource: "resp-high", highSourceLayer: "D_RESP_2geojson",
		domain: Domain{Min: 0, Max: 1000},
	},
	{
		id: Ozone, field: "D_OZONE_2", label: "Ozone index",
		lowSource: "ozone-low", lowSourceLayer: "D_OZONE_2_bucketgeojson",
		highSource: "ozone-high", highSourceLayer: "D_OZONE_2geojson",
		domain: Domain{Min: 0, Max: 50000},
	},
	{
		id: FloodFactor, field: "avg_risk_score_all", label: "FloodFactor Risk Score",
		lowSource: "floodfactor-low", lowSourceLayer: "flood_factor_bucketgeojson",
		highSource: "floodfactor-high", highSourceLayer: "flood_factorgeojson",
		domain: Domain{Min: 1, Max: 10},
	},
}

// DefaultDescriptors returns the built-in layer set: a low and a high fill
// layer plus a highlight outline per indicator, and the population layer.
// Low layers draw below HighZoom, high layers from HighZoom up.
func DefaultDescriptors() []Descriptor {
	var out []Descriptor
	for _, s := range builtin {
		out = append(out,
			Descriptor{
				ID: s.id + "-low", Indicator: s.id, Field: s.field, Label: s.label,
				Source: s.lowSource, SourceLayer: s.lowSourceLayer,
				MinZoom: 0, MaxZoom: HighZoom, Domain: s.domain, Kind: KindFill, Tier: TierLow,
			},
			Descriptor{
				ID: s.id + "-high", Indicator: s.id, Field: s.field, Label: s.label,
				Source: s.highSource, SourceLayer: s.highSourceLayer,
				MinZoom: HighZoom, MaxZoom: 22, Domain: s.domain, Kind: KindFill, Tier: TierHigh,
			},
			Descriptor{
				ID: s.id + "-highlights", Indicator: s.id, Field: s.field, Label: s.label,
				Source: s.highSource, SourceLayer: s.highSourceLayer,
				MinZoom: HighZoom, MaxZoom: 22, Domain: s.domain, Kind: KindHighlight, Tier: TierHigh,
			},
		)
	}
	out = append(out, Descriptor{
		ID: "population", Field: PopulationField, Label: "Population",
		Source: "population", SourceLayer: "tabblock2010_06_pophu_blockgr-biqw81",
		MinZoom: 8, MaxZoom: 22, Kind: KindPopulation, Tier: TierHigh,
	})
	return out
}

// Default returns the validated built-in table.
func Default() *Table {
	t, err := NewTable(DefaultDescriptors())
	if err != nil {
		panic(err)
	}
	return t
}
