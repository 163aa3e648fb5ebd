package mapper

import "github.com/navigraph/navdata-interface/internal/geo"

// Airport is a single aerodrome record.
type Airport struct {
	Ident          string          `json:"ident"`
	IcaoCode       string          `json:"icao_code"`
	Name           string          `json:"name"`
	Location       geo.Coordinates `json:"location"`
	ElevationFeet  float64         `json:"elevation_ft"`
	TransitionAlt  *float64        `json:"transition_altitude,omitempty"`
	TransitionLvl  *float64        `json:"transition_level,omitempty"`
	SpeedLimit     *float64        `json:"speed_limit,omitempty"`
	SpeedLimitAlt  *float64        `json:"speed_limit_altitude,omitempty"`
}

// RowToAirport converts one tbl_airports / tbl_pa_airports row.
func RowToAirport(row Row, sink Sink) Airport {
	const table = "airports"
	return Airport{
		Ident:         Str(row, "airport_identifier", "UNKN", table, sink),
		IcaoCode:      Str(row, "icao_code", "UNKN", table, sink),
		Name:          Str(row, "airport_name", "UNKN", table, sink),
		Location:      Coords(row, "airport_ref_", table, sink),
		ElevationFeet: Float(row, "elevation", 0, table, sink),
		TransitionAlt: FloatOpt(row, "transition_altitude"),
		TransitionLvl: FloatOpt(row, "transition_level"),
		SpeedLimit:    FloatOpt(row, "speed_limit"),
		SpeedLimitAlt: FloatOpt(row, "speed_limit_altitude"),
	}
}

// Waypoint is an enroute or terminal named fix.
type Waypoint struct {
	Ident    string          `json:"ident"`
	IcaoCode string          `json:"icao_code"`
	Location geo.Coordinates `json:"location"`
	Region   string          `json:"region_code,omitempty"`
	Name     string          `json:"name,omitempty"`
}

// RowToWaypoint converts one tbl_enroute_waypoints / tbl_terminal_waypoints row.
func RowToWaypoint(row Row, sink Sink) Waypoint {
	const table = "waypoints"
	return Waypoint{
		Ident:    Str(row, "waypoint_identifier", "UNKN", table, sink),
		IcaoCode: Str(row, "icao_code", "UNKN", table, sink),
		Location: Coords(row, "waypoint_", table, sink),
		Region:   StrOpt(row, "region_code"),
		Name:     StrOpt(row, "waypoint_name"),
	}
}

// VhfNavaid is a VOR/VORDME/DME/TACAN/ILS-DME record.
type VhfNavaid struct {
	Ident       string          `json:"ident"`
	IcaoCode    string          `json:"icao_code"`
	Name        string          `json:"name"`
	Location    geo.Coordinates `json:"location"`
	FrequencyMH float64         `json:"frequency_mhz"`
	Type        string          `json:"navaid_class,omitempty"`
}

// RowToVhfNavaid converts one tbl_vhfnavaids row.
func RowToVhfNavaid(row Row, sink Sink) VhfNavaid {
	const table = "vhf_navaids"
	return VhfNavaid{
		Ident:       Str(row, "vor_identifier", "UNKN", table, sink),
		IcaoCode:    Str(row, "icao_code", "UNKN", table, sink),
		Name:        Str(row, "vor_name", "UNKN", table, sink),
		Location:    Coords(row, "vor_", table, sink),
		FrequencyMH: Float(row, "vor_frequency", 0, table, sink),
		Type:        StrOpt(row, "navaid_class"),
	}
}

// NdbNavaid is an enroute or terminal NDB record.
type NdbNavaid struct {
	Ident       string          `json:"ident"`
	IcaoCode    string          `json:"icao_code"`
	Name        string          `json:"name"`
	Location    geo.Coordinates `json:"location"`
	FrequencyKH float64         `json:"frequency_khz"`
}

// RowToNdbNavaid converts one tbl_enroute_ndbnavaids / tbl_terminal_ndbnavaids row.
func RowToNdbNavaid(row Row, sink Sink) NdbNavaid {
	const table = "ndb_navaids"
	return NdbNavaid{
		Ident:       Str(row, "ndb_identifier", "UNKN", table, sink),
		IcaoCode:    Str(row, "icao_code", "UNKN", table, sink),
		Name:        Str(row, "ndb_name", "UNKN", table, sink),
		Location:    Coords(row, "ndb_", table, sink),
		FrequencyKH: Float(row, "ndb_frequency", 0, table, sink),
	}
}

// Runway is one physical threshold record.
type Runway struct {
	AirportIdent  string          `json:"airport_ident"`
	Ident         string          `json:"ident"`
	Location      geo.Coordinates `json:"location"`
	Bearing       float64         `json:"bearing"`
	LengthFeet    float64         `json:"length_ft"`
	WidthFeet     float64         `json:"width_ft"`
	ElevationFeet float64         `json:"elevation_ft"`
}

// RowToRunway converts one tbl_runways row.
func RowToRunway(row Row, sink Sink) Runway {
	const table = "runways"
	return Runway{
		AirportIdent:  Str(row, "airport_identifier", "UNKN", table, sink),
		Ident:         Str(row, "runway_identifier", "UNKN", table, sink),
		Location:      Coords(row, "runway_", table, sink),
		Bearing:       Float(row, "runway_true_bearing", 0, table, sink),
		LengthFeet:    Float(row, "runway_length", 0, table, sink),
		WidthFeet:     Float(row, "runway_width", 0, table, sink),
		ElevationFeet: Float(row, "landing_threshold_elevation", 0, table, sink),
	}
}

// Communication is a ground-station frequency record, enroute or at an airport.
type Communication struct {
	AirportIdent string          `json:"airport_ident,omitempty"`
	Location     geo.Coordinates `json:"location"`
	FrequencyMH  float64         `json:"frequency_mhz"`
	Type         string          `json:"communication_type,omitempty"`
	CallSign     string          `json:"call_sign,omitempty"`
}

// RowToEnrouteCommunication converts one tbl_enroute_communication row.
func RowToEnrouteCommunication(row Row, sink Sink) Communication {
	const table = "enroute_communication"
	return Communication{
		Location:    Coords(row, "", table, sink),
		FrequencyMH: Float(row, "communication_frequency", 0, table, sink),
		Type:        StrOpt(row, "communication_type"),
		CallSign:    StrOpt(row, "call_sign"),
	}
}

// RowToAirportCommunication converts one tbl_airport_communication row.
func RowToAirportCommunication(row Row, sink Sink) Communication {
	const table = "airport_communication"
	return Communication{
		AirportIdent: Str(row, "airport_identifier", "UNKN", table, sink),
		Location:     Coords(row, "", table, sink),
		FrequencyMH:  Float(row, "communication_frequency", 0, table, sink),
		Type:         StrOpt(row, "communication_type"),
		CallSign:     StrOpt(row, "call_sign"),
	}
}

// Gate is a single parking position record.
type Gate struct {
	AirportIdent string          `json:"airport_ident"`
	Ident        string          `json:"ident"`
	Location     geo.Coordinates `json:"location"`
	Name         string          `json:"name,omitempty"`
}

// RowToGate converts one tbl_gate row.
func RowToGate(row Row, sink Sink) Gate {
	const table = "gate"
	return Gate{
		AirportIdent: Str(row, "airport_identifier", "UNKN", table, sink),
		Ident:        Str(row, "gate_identifier", "UNKN", table, sink),
		Location:     Coords(row, "", table, sink),
		Name:         StrOpt(row, "name"),
	}
}

// GlsNavaid is a GBAS/GLS landing system station record.
type GlsNavaid struct {
	AirportIdent string          `json:"airport_ident"`
	Ident        string          `json:"ident"`
	Location     geo.Coordinates `json:"location"`
	ChannelID    float64         `json:"channel,omitempty"`
	Bearing      float64         `json:"bearing"`
}

// RowToGlsNavaid converts one tbl_gls row.
func RowToGlsNavaid(row Row, sink Sink) GlsNavaid {
	const table = "gls"
	return GlsNavaid{
		AirportIdent: Str(row, "airport_identifier", "UNKN", table, sink),
		Ident:        Str(row, "gls_ref_path_identifier", "UNKN", table, sink),
		Location:     Coords(row, "gls_", table, sink),
		ChannelID:    Float(row, "gls_channel", 0, table, sink),
		Bearing:      Float(row, "gls_approach_bearing", 0, table, sink),
	}
}

// PathPoint is a GNSS-landing precision reference point, with TCH
// converted to meters when the source row reported feet.
type PathPoint struct {
	AirportIdent  string          `json:"airport_ident"`
	Ident         string          `json:"ident"`
	Location      geo.Coordinates `json:"location"`
	TchMeters     float64         `json:"tch_meters"`
	GlidePathAngl float64         `json:"glide_path_angle,omitempty"`
}

// RowToPathPoint converts one tbl_pathpoints row, converting the
// threshold-crossing-height to meters when the source units indicator is
// feet ("F") rather than meters.
func RowToPathPoint(row Row, sink Sink) PathPoint {
	const table = "pathpoints"
	tch := Float(row, "path_point_tch", 0, table, sink)
	if Str(row, "tch_units_indicator", "M", table, sink) == "F" {
		tch *= 0.3048
	}
	return PathPoint{
		AirportIdent:  Str(row, "airport_identifier", "UNKN", table, sink),
		Ident:         Str(row, "approach_procedure_ident", "UNKN", table, sink),
		Location:      Coords(row, "ltp_", table, sink),
		TchMeters:     tch,
		GlidePathAngl: Float(row, "glidepath_angle", 0, table, sink),
	}
}

// DatabaseStatus summarizes which cycle is installed, where, and whether a
// newer one is available from the vendor, per GetNavigationDataInstallStatus.
type DatabaseStatus struct {
	Status            string  `json:"status"`
	InstalledFormat   string  `json:"installedFormat"`
	InstalledRevision string  `json:"installedRevision"`
	InstalledCycle    string  `json:"installedCycle"`
	InstalledPath     string  `json:"installedPath"`
	ValidityPeriod    string  `json:"validityPeriod"`
	LatestCycle       *string `json:"latestCycle,omitempty"`
}
