package mapper

import "github.com/navigraph/navdata-interface/internal/geo"

// Fix is a tagged reference to a named point backed by one of the full
// record tables. For airway and procedure-leg fixes the table itself is
// never joined in — only the identifying triple is kept.
type Fix struct {
	Ident    string `json:"ident"`
	IcaoCode string `json:"icao_code"`
	Type     string `json:"type"`
}

// AirwayFix is one waypoint along an airway, carrying the altitude band
// and directionality that apply to the leg ending at this fix.
type AirwayFix struct {
	Fix
	Location      geo.Coordinates `json:"location"`
	FlightLevel   string          `json:"flightlevel,omitempty"`
	Direction     string          `json:"direction_restriction,omitempty"`
	MinimumAlt    *float64        `json:"minimum_altitude,omitempty"`
	MaximumAlt    *float64        `json:"maximum_altitude,omitempty"`
}

// Airway is a named enroute route made of ordered fixes.
type Airway struct {
	Ident     string      `json:"ident"`
	RouteType string      `json:"route_type,omitempty"`
	Fixes     []AirwayFix `json:"fixes"`
}

const airwayTable = "enroute_airways"

// FoldAirways groups a flat tbl_enroute_airways row stream into airways.
// The end of one airway is signalled by the second character of
// waypoint_description_code being 'E'; every row up to and including that
// marker belongs to the airway the group started with. A run that never
// sees an end marker (the final airway in a result set, when the query
// only fetched a prefix) is still flushed at the end of the stream so no
// fix is silently dropped.
func FoldAirways(rows []Row, sink Sink) []Airway {
	var airways []Airway
	var current *Airway

	flush := func() {
		if current != nil && len(current.Fixes) > 0 {
			airways = append(airways, *current)
		}
		current = nil
	}

	for _, row := range rows {
		if current == nil {
			current = &Airway{
				Ident:     Str(row, "route_identifier", "UNKN", airwayTable, sink),
				RouteType: StrOpt(row, "route_type"),
			}
		}

		current.Fixes = append(current.Fixes, rowToAirwayFix(row, sink))

		descCode := Str(row, "waypoint_description_code", "", airwayTable, sink)
		if len(descCode) >= 2 && descCode[1] == 'E' {
			flush()
		}
	}
	flush()

	return airways
}

func rowToAirwayFix(row Row, sink Sink) AirwayFix {
	return AirwayFix{
		Fix: Fix{
			Ident:    Str(row, "waypoint_identifier", "UNKN", airwayTable, sink),
			IcaoCode: Str(row, "icao_code", "UNKN", airwayTable, sink),
			Type:     "waypoint",
		},
		Location:    Coords(row, "waypoint_", airwayTable, sink),
		FlightLevel: StrOpt(row, "flightlevel"),
		Direction:   StrOpt(row, "direction_restriction"),
		MinimumAlt:  FloatOpt(row, "minimum_altitude"),
		MaximumAlt:  FloatOpt(row, "maximum_altitude"),
	}
}
