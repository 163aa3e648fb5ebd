package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/navigraph/navdata-interface/internal/geo"
	"github.com/navigraph/navdata-interface/internal/query/mapper"
)

// tableNames resolves a logical table name to the schema-specific physical
// name. v2 renamed most tables behind two-letter prefixes; v1 keeps the
// original descriptive names.
var tableNames = map[string]map[SchemaVersion]string{
	"airports":              {SchemaV1: "tbl_airports", SchemaV2: "tbl_pa_airports"},
	"enroute_waypoints":     {SchemaV1: "tbl_enroute_waypoints", SchemaV2: "tbl_ea_enroute_waypoints"},
	"terminal_waypoints":    {SchemaV1: "tbl_terminal_waypoints", SchemaV2: "tbl_pc_terminal_waypoints"},
	"vhfnavaids":            {SchemaV1: "tbl_vhfnavaids", SchemaV2: "tbl_d_vhfnavaids"},
	"enroute_ndbnavaids":    {SchemaV1: "tbl_enroute_ndbnavaids", SchemaV2: "tbl_db_enroute_ndbnavaids"},
	"terminal_ndbnavaids":   {SchemaV1: "tbl_terminal_ndbnavaids", SchemaV2: "tbl_pn_terminal_ndbnavaids"},
	"enroute_airways":       {SchemaV1: "tbl_enroute_airways", SchemaV2: "tbl_er_enroute_airways"},
	"controlled_airspace":   {SchemaV1: "tbl_controlled_airspace", SchemaV2: "tbl_uc_controlled_airspace"},
	"restrictive_airspace":  {SchemaV1: "tbl_restrictive_airspace", SchemaV2: "tbl_ur_restrictive_airspace"},
	"enroute_communication": {SchemaV1: "tbl_enroute_communication", SchemaV2: "tbl_ev_enroute_communication"},
	"airport_communication": {SchemaV1: "tbl_airport_communication", SchemaV2: "tbl_pv_airport_communication"},
	"runways":               {SchemaV1: "tbl_runways", SchemaV2: "tbl_pg_runways"},
	"sids":                  {SchemaV1: "tbl_sids", SchemaV2: "tbl_pd_sids"},
	"stars":                 {SchemaV1: "tbl_stars", SchemaV2: "tbl_pe_stars"},
	"iaps":                  {SchemaV1: "tbl_iaps", SchemaV2: "tbl_pf_iaps"},
	"gate":                  {SchemaV1: "tbl_gate", SchemaV2: "tbl_pb_gate"},
	"gls":                   {SchemaV1: "tbl_gls", SchemaV2: "tbl_pt_gls"},
	"pathpoints":            {SchemaV1: "tbl_pathpoints", SchemaV2: "tbl_pp_pathpoints"},
}

func (e *Engine) table(name string) (string, error) {
	variants, ok := tableNames[name]
	if !ok {
		return "", fmt.Errorf("unknown logical table %q", name)
	}
	physical, ok := variants[e.version]
	if !ok {
		return "", &ErrNotSupportedOnSchema{Operation: name, Version: e.version}
	}
	return physical, nil
}

func fetchEntities[T any](ctx context.Context, db *sql.DB, query string, args []any, convert func(mapper.Row, mapper.Sink) T, warn mapper.Sink) ([]T, error) {
	rows, err := queryRows(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert(mapper.Row(r), warn))
	}
	return out, nil
}

func (e *Engine) warn(table string) mapper.Sink {
	return func(t, detail string, row mapper.Row) {
		e.onWarn(Warning{Table: table, Detail: detail, Row: row})
	}
}

// GetAirport returns the single airport matching ident, or an error if
// none is found.
func (e *Engine) GetAirport(ctx context.Context, ident string) (*mapper.Airport, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	table, err := e.table("airports")
	if err != nil {
		return nil, err
	}
	rows, err := fetchEntities(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE airport_identifier = ?", table), []any{ident}, mapper.RowToAirport, e.warn("airports"))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("airport %q not found", ident)
	}
	return &rows[0], nil
}

// GetAirportsInRange returns every airport whose true distance from center
// is within rangeNM.
func (e *Engine) GetAirportsInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.Airport, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	table, err := e.table("airports")
	if err != nil {
		return nil, err
	}
	where := RangeWhere(center, rangeNM, "airport_ref")
	rows, err := fetchEntities(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE %s", table, where), nil, mapper.RowToAirport, e.warn("airports"))
	if err != nil {
		return nil, err
	}
	return filterByDistance(rows, func(a mapper.Airport) geo.Coordinates { return a.Location }, center, rangeNM), nil
}

// GetWaypoints returns every enroute or terminal waypoint matching ident.
func (e *Engine) GetWaypoints(ctx context.Context, ident string) ([]mapper.Waypoint, error) {
	return unionByIdent(ctx, e, "enroute_waypoints", "terminal_waypoints", "waypoint_identifier", ident, mapper.RowToWaypoint, "waypoints")
}

// GetWaypointsInRange returns every enroute or terminal waypoint within rangeNM of center.
func (e *Engine) GetWaypointsInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.Waypoint, error) {
	rows, err := unionInRange(ctx, e, "enroute_waypoints", "terminal_waypoints", center, rangeNM, "waypoint", mapper.RowToWaypoint, "waypoints")
	if err != nil {
		return nil, err
	}
	return filterByDistance(rows, func(w mapper.Waypoint) geo.Coordinates { return w.Location }, center, rangeNM), nil
}

// GetWaypointsAtAirport returns the terminal waypoints registered under an
// airport's region code.
func (e *Engine) GetWaypointsAtAirport(ctx context.Context, airportIdent string) ([]mapper.Waypoint, error) {
	return atAirport(ctx, e, "terminal_waypoints", "region_code", airportIdent, mapper.RowToWaypoint, "waypoints")
}

// GetVhfNavaids returns every VOR/VORDME/ILS-DME matching ident.
func (e *Engine) GetVhfNavaids(ctx context.Context, ident string) ([]mapper.VhfNavaid, error) {
	return byIdent(ctx, e, "vhfnavaids", "vor_identifier", ident, mapper.RowToVhfNavaid, "vhf_navaids")
}

// GetVhfNavaidsInRange returns every VHF navaid within rangeNM of center.
func (e *Engine) GetVhfNavaidsInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.VhfNavaid, error) {
	rows, err := inRange(ctx, e, "vhfnavaids", center, rangeNM, "vor", mapper.RowToVhfNavaid, "vhf_navaids")
	if err != nil {
		return nil, err
	}
	return filterByDistance(rows, func(v mapper.VhfNavaid) geo.Coordinates { return v.Location }, center, rangeNM), nil
}

// GetNdbNavaids returns every enroute or terminal NDB matching ident.
func (e *Engine) GetNdbNavaids(ctx context.Context, ident string) ([]mapper.NdbNavaid, error) {
	return unionByIdent(ctx, e, "enroute_ndbnavaids", "terminal_ndbnavaids", "ndb_identifier", ident, mapper.RowToNdbNavaid, "ndb_navaids")
}

// GetNdbNavaidsInRange returns every enroute or terminal NDB within rangeNM of center.
func (e *Engine) GetNdbNavaidsInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.NdbNavaid, error) {
	rows, err := unionInRange(ctx, e, "enroute_ndbnavaids", "terminal_ndbnavaids", center, rangeNM, "ndb", mapper.RowToNdbNavaid, "ndb_navaids")
	if err != nil {
		return nil, err
	}
	return filterByDistance(rows, func(n mapper.NdbNavaid) geo.Coordinates { return n.Location }, center, rangeNM), nil
}

// GetNdbNavaidsAtAirport returns the terminal NDBs registered at an airport.
func (e *Engine) GetNdbNavaidsAtAirport(ctx context.Context, airportIdent string) ([]mapper.NdbNavaid, error) {
	return atAirport(ctx, e, "terminal_ndbnavaids", "airport_identifier", airportIdent, mapper.RowToNdbNavaid, "ndb_navaids")
}

// GetRunwaysAtAirport returns every runway threshold at an airport.
func (e *Engine) GetRunwaysAtAirport(ctx context.Context, airportIdent string) ([]mapper.Runway, error) {
	return atAirport(ctx, e, "runways", "airport_identifier", airportIdent, mapper.RowToRunway, "runways")
}

// GetGatesAtAirport returns every parking position at an airport.
func (e *Engine) GetGatesAtAirport(ctx context.Context, airportIdent string) ([]mapper.Gate, error) {
	return atAirport(ctx, e, "gate", "airport_identifier", airportIdent, mapper.RowToGate, "gate")
}

// GetCommunicationsAtAirport returns every ground-station frequency at an airport.
func (e *Engine) GetCommunicationsAtAirport(ctx context.Context, airportIdent string) ([]mapper.Communication, error) {
	return atAirport(ctx, e, "airport_communication", "airport_identifier", airportIdent, mapper.RowToAirportCommunication, "airport_communication")
}

// GetCommunicationsInRange returns every enroute or airport ground-station
// frequency within rangeNM of center.
func (e *Engine) GetCommunicationsInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.Communication, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	where := RangeWhere(center, rangeNM, "")

	enrouteTable, err := e.table("enroute_communication")
	if err != nil {
		return nil, err
	}
	terminalTable, err := e.table("airport_communication")
	if err != nil {
		return nil, err
	}

	enroute, err := fetchEntities(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE %s", enrouteTable, where), nil, mapper.RowToEnrouteCommunication, e.warn("enroute_communication"))
	if err != nil {
		return nil, err
	}
	terminal, err := fetchEntities(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE %s", terminalTable, where), nil, mapper.RowToAirportCommunication, e.warn("airport_communication"))
	if err != nil {
		return nil, err
	}

	all := append(enroute, terminal...)
	return filterByDistance(all, func(c mapper.Communication) geo.Coordinates { return c.Location }, center, rangeNM), nil
}

// GetGlsNavaidsAtAirport returns every GLS station at an airport.
func (e *Engine) GetGlsNavaidsAtAirport(ctx context.Context, airportIdent string) ([]mapper.GlsNavaid, error) {
	return atAirport(ctx, e, "gls", "airport_identifier", airportIdent, mapper.RowToGlsNavaid, "gls")
}

// GetPathPointsAtAirport returns every GNSS landing path point at an airport.
func (e *Engine) GetPathPointsAtAirport(ctx context.Context, airportIdent string) ([]mapper.PathPoint, error) {
	return atAirport(ctx, e, "pathpoints", "airport_identifier", airportIdent, mapper.RowToPathPoint, "pathpoints")
}

// byIdent, atAirport, inRange, unionByIdent and unionInRange are free
// functions rather than methods because Go methods cannot carry their own
// type parameters.
func byIdent[T any](ctx context.Context, e *Engine, logicalTable, identColumn, ident string, convert func(mapper.Row, mapper.Sink) T, warnTable string) ([]T, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	table, err := e.table(logicalTable)
	if err != nil {
		return nil, err
	}
	return fetchEntities(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, identColumn), []any{ident}, convert, e.warn(warnTable))
}

func atAirport[T any](ctx context.Context, e *Engine, logicalTable, column, airportIdent string, convert func(mapper.Row, mapper.Sink) T, warnTable string) ([]T, error) {
	return byIdent(ctx, e, logicalTable, column, airportIdent, convert, warnTable)
}

func inRange[T any](ctx context.Context, e *Engine, logicalTable string, center geo.Coordinates, rangeNM geo.NauticalMiles, columnPrefix string, convert func(mapper.Row, mapper.Sink) T, warnTable string) ([]T, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	table, err := e.table(logicalTable)
	if err != nil {
		return nil, err
	}
	where := RangeWhere(center, rangeNM, columnPrefix)
	return fetchEntities(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE %s", table, where), nil, convert, e.warn(warnTable))
}

func unionByIdent[T any](ctx context.Context, e *Engine, enrouteTable, terminalTable, identColumn, ident string, convert func(mapper.Row, mapper.Sink) T, warnTable string) ([]T, error) {
	enroute, err := byIdent(ctx, e, enrouteTable, identColumn, ident, convert, warnTable)
	if err != nil {
		return nil, err
	}
	terminal, err := byIdent(ctx, e, terminalTable, identColumn, ident, convert, warnTable)
	if err != nil {
		return nil, err
	}
	return append(enroute, terminal...), nil
}

func unionInRange[T any](ctx context.Context, e *Engine, enrouteTable, terminalTable string, center geo.Coordinates, rangeNM geo.NauticalMiles, columnPrefix string, convert func(mapper.Row, mapper.Sink) T, warnTable string) ([]T, error) {
	enroute, err := inRange(ctx, e, enrouteTable, center, rangeNM, columnPrefix, convert, warnTable)
	if err != nil {
		return nil, err
	}
	terminal, err := inRange(ctx, e, terminalTable, center, rangeNM, columnPrefix, convert, warnTable)
	if err != nil {
		return nil, err
	}
	return append(enroute, terminal...), nil
}

// filterByDistance keeps only the rows whose true great-circle distance
// from center is within rangeNM, turning the SQL bounding-box prefilter
// into the documented circular range.
func filterByDistance[T any](rows []T, locate func(T) geo.Coordinates, center geo.Coordinates, rangeNM geo.NauticalMiles) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if locate(r).DistanceTo(center) <= rangeNM {
			out = append(out, r)
		}
	}
	return out
}
