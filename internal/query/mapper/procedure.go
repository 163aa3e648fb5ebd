package mapper

import "regexp"

// AltitudeConstraint is the {alt1, alt2?, descriptor} triple describing how
// a leg's altitude column(s) constrain the flown path.
type AltitudeConstraint struct {
	Alt1       float64  `json:"alt1"`
	Alt2       *float64 `json:"alt2,omitempty"`
	Descriptor string   `json:"descriptor"`
}

// SpeedConstraint is a single speed restriction on a leg.
type SpeedConstraint struct {
	Value      float64 `json:"value"`
	Descriptor string  `json:"descriptor"`
}

// ProcedureLeg is one leg of a departure, arrival, or approach.
type ProcedureLeg struct {
	Type              string               `json:"type"`
	Fix               *Fix                 `json:"fix,omitempty"`
	RecommendedNavaid *Fix                 `json:"recommended_navaid,omitempty"`
	ArcCenterFix      *Fix                 `json:"arc_center_fix,omitempty"`
	Altitude          *AltitudeConstraint  `json:"altitude,omitempty"`
	Speed             *SpeedConstraint     `json:"speed,omitempty"`
	LengthNM          *float64             `json:"length,omitempty"`
	LengthTimeMin     *float64             `json:"length_time,omitempty"`
	Course            *float64             `json:"course,omitempty"`
	TurnDirection     string               `json:"turn_direction,omitempty"`
}

// RunwayTransition groups the legs specific to one runway (or a fanned-out
// class of runways sharing a number, or the full set for "ALL").
type RunwayTransition struct {
	RunwayIdent string         `json:"runway_ident"`
	Legs        []ProcedureLeg `json:"legs"`
}

// EnrouteTransition groups the legs of one named enroute transition.
type EnrouteTransition struct {
	Ident string         `json:"ident"`
	Legs  []ProcedureLeg `json:"legs"`
}

// Departure is a SID.
type Departure struct {
	Ident              string              `json:"ident"`
	RunwayTransitions  []RunwayTransition  `json:"runway_transitions"`
	CommonLegs         []ProcedureLeg      `json:"common_legs"`
	EnrouteTransitions []EnrouteTransition `json:"enroute_transitions"`
	EngineOutLegs      []ProcedureLeg      `json:"engine_out_legs"`
}

// Arrival is a STAR.
type Arrival struct {
	Ident              string              `json:"ident"`
	RunwayTransitions  []RunwayTransition  `json:"runway_transitions"`
	CommonLegs         []ProcedureLeg      `json:"common_legs"`
	EnrouteTransitions []EnrouteTransition `json:"enroute_transitions"`
}

// Approach is an IAP.
type Approach struct {
	Ident          string              `json:"ident"`
	RunwayIdent    string              `json:"runway_ident,omitempty"`
	ApproachType   string              `json:"approach_type"`
	Transitions    []EnrouteTransition `json:"transitions"`
	Legs           []ProcedureLeg      `json:"legs"`
	MissedLegs     []ProcedureLeg      `json:"missed_legs"`
}

var approachIdentPattern = regexp.MustCompile(`^([A-Z])([0-9]{2}[LCR]?)-?([A-Z])?$`)

// approachRunway parses an approach identifier like "I25L" or "R34-Y" into
// an RWxx runway ident; returns "" if the identifier doesn't match the
// documented shape.
func approachRunway(ident string) string {
	m := approachIdentPattern.FindStringSubmatch(ident)
	if m == nil {
		return ""
	}
	return "RW" + m[2]
}

func rowToProcedureLeg(row Row, table string, sink Sink) ProcedureLeg {
	leg := ProcedureLeg{
		Type:          Str(row, "path_termination", "UNKN", table, sink),
		Course:        FloatOpt(row, "magnetic_course"),
		TurnDirection: StrOpt(row, "turn_direction"),
		LengthNM:      nil,
		LengthTimeMin: nil,
	}

	if ident, ok := str(row, "fix_identifier"); ok && ident != "" {
		leg.Fix = &Fix{Ident: ident, IcaoCode: StrOpt(row, "fix_icao_code"), Type: StrOpt(row, "fix_ref_table")}
	}
	if ident, ok := str(row, "recommended_navaid"); ok && ident != "" {
		leg.RecommendedNavaid = &Fix{Ident: ident, IcaoCode: StrOpt(row, "recommended_navaid_icao_code"), Type: StrOpt(row, "recommended_navaid_ref_table")}
	}
	if ident, ok := str(row, "center_fix_or_taa_procedure_turn"); ok && ident != "" {
		leg.ArcCenterFix = &Fix{Ident: ident, IcaoCode: StrOpt(row, "center_fix_icao_code"), Type: StrOpt(row, "center_fix_ref_table")}
	}

	if alt1 := FloatOpt(row, "altitude1"); alt1 != nil {
		leg.Altitude = &AltitudeConstraint{
			Alt1:       *alt1,
			Alt2:       FloatOpt(row, "altitude2"),
			Descriptor: Str(row, "altitude_description", "@", table, sink),
		}
	}
	if speed := FloatOpt(row, "speed_limit"); speed != nil {
		leg.Speed = &SpeedConstraint{Value: *speed, Descriptor: Str(row, "speed_limit_description", "@", table, sink)}
	}

	switch Str(row, "distance_time", "D", table, sink) {
	case "T":
		leg.LengthTimeMin = FloatOpt(row, "route_distance_holding_distance_time")
	default:
		leg.LengthNM = FloatOpt(row, "route_distance_holding_distance_time")
	}

	return leg
}

func isEngineOut(routeType string) bool { return routeType == "0" }

func isRunwayTransitionType(routeType string, departure bool) bool {
	if departure {
		return containsAny(routeType, "1", "4", "F", "T")
	}
	return containsAny(routeType, "3", "6", "9", "S")
}

func isCommonLegType(routeType string, departure bool) bool {
	if departure {
		return containsAny(routeType, "2", "5", "M")
	}
	return containsAny(routeType, "2", "5", "8", "M")
}

func isEnrouteTransitionType(routeType string, kind string) bool {
	switch kind {
	case "departure":
		return containsAny(routeType, "3", "6", "S", "V")
	case "arrival":
		return containsAny(routeType, "1", "4", "7", "F")
	case "approach":
		return containsAny(routeType, "A")
	}
	return false
}

func containsAny(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

// matchesRunwayClass reports whether transitionIdent (e.g. "RW25B",
// "RW25L", "ALL") applies to runwayIdent (e.g. "RW25L", "RW25C").
func matchesRunwayClass(transitionIdent, runwayIdent string) bool {
	if transitionIdent == "ALL" {
		return true
	}
	if len(transitionIdent) > 0 && transitionIdent[len(transitionIdent)-1] == 'B' {
		return len(transitionIdent) >= 4 && len(runwayIdent) >= 4 &&
			transitionIdent[:len(transitionIdent)-1] == runwayIdent[:len(transitionIdent)-1]
	}
	return transitionIdent == runwayIdent
}

func expandRunwayIdents(transitionIdent string, runwayIdents []string) []string {
	var matched []string
	for _, r := range runwayIdents {
		if matchesRunwayClass(transitionIdent, r) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		matched = []string{transitionIdent}
	}
	return matched
}

const procedureTable = "procedures"

func groupByProcedure(rows []Row) ([]string, map[string][]Row) {
	var order []string
	groups := map[string][]Row{}
	for _, row := range rows {
		ident := Str(row, "procedure_identifier", "UNKN", procedureTable, nil)
		if _, seen := groups[ident]; !seen {
			order = append(order, ident)
		}
		groups[ident] = append(groups[ident], row)
	}
	return order, groups
}

// FoldDepartures classifies tbl_sids rows into Departure records, fanning
// runway transitions out across the matching runways at the airport.
func FoldDepartures(rows []Row, runways []Runway, sink Sink) []Departure {
	runwayIdents := runwayIdentsOf(runways)
	order, groups := groupByProcedure(rows)

	var out []Departure
	for _, ident := range order {
		dep := Departure{Ident: ident}
		transitionLegs := map[string][]ProcedureLeg{}
		var missedActive bool

		for _, row := range groups[ident] {
			routeType := Str(row, "route_type", "", procedureTable, sink)
			leg := rowToProcedureLeg(row, procedureTable, sink)
			descCode := Str(row, "waypoint_description_code", "", procedureTable, sink)
			if len(descCode) >= 3 && descCode[2] == 'M' {
				missedActive = true
			}
			_ = missedActive // departures have no missed-approach segment; flag kept for symmetry

			switch {
			case isEngineOut(routeType):
				dep.EngineOutLegs = append(dep.EngineOutLegs, leg)
			case isRunwayTransitionType(routeType, true):
				transID := Str(row, "transition_identifier", "ALL", procedureTable, sink)
				for _, rw := range expandRunwayIdents(transID, runwayIdents) {
					transitionLegs[rw] = append(transitionLegs[rw], leg)
				}
			case isCommonLegType(routeType, true):
				if transID, ok := str(row, "transition_identifier"); ok && transID != "" {
					for _, rw := range expandRunwayIdents(transID, runwayIdents) {
						transitionLegs[rw] = append(transitionLegs[rw], leg)
					}
				} else {
					dep.CommonLegs = append(dep.CommonLegs, leg)
				}
			case isEnrouteTransitionType(routeType, "departure"):
				dep.EnrouteTransitions = appendToTransition(dep.EnrouteTransitions, Str(row, "transition_identifier", "UNKN", procedureTable, sink), leg)
			default:
				dep.CommonLegs = append(dep.CommonLegs, leg)
			}
		}

		for _, rw := range runwayIdents {
			if legs, ok := transitionLegs[rw]; ok {
				dep.RunwayTransitions = append(dep.RunwayTransitions, RunwayTransition{RunwayIdent: rw, Legs: legs})
			}
		}
		out = append(out, dep)
	}
	return out
}

// FoldArrivals classifies tbl_stars rows into Arrival records.
func FoldArrivals(rows []Row, runways []Runway, sink Sink) []Arrival {
	runwayIdents := runwayIdentsOf(runways)
	order, groups := groupByProcedure(rows)

	var out []Arrival
	for _, ident := range order {
		arr := Arrival{Ident: ident}
		transitionLegs := map[string][]ProcedureLeg{}

		for _, row := range groups[ident] {
			routeType := Str(row, "route_type", "", procedureTable, sink)
			leg := rowToProcedureLeg(row, procedureTable, sink)

			switch {
			case isRunwayTransitionType(routeType, false):
				transID := Str(row, "transition_identifier", "ALL", procedureTable, sink)
				for _, rw := range expandRunwayIdents(transID, runwayIdents) {
					transitionLegs[rw] = append(transitionLegs[rw], leg)
				}
			case isCommonLegType(routeType, false):
				if transID, ok := str(row, "transition_identifier"); ok && transID != "" {
					for _, rw := range expandRunwayIdents(transID, runwayIdents) {
						transitionLegs[rw] = append(transitionLegs[rw], leg)
					}
				} else {
					arr.CommonLegs = append(arr.CommonLegs, leg)
				}
			case isEnrouteTransitionType(routeType, "arrival"):
				arr.EnrouteTransitions = appendToTransition(arr.EnrouteTransitions, Str(row, "transition_identifier", "UNKN", procedureTable, sink), leg)
			default:
				arr.CommonLegs = append(arr.CommonLegs, leg)
			}
		}

		for _, rw := range runwayIdents {
			if legs, ok := transitionLegs[rw]; ok {
				arr.RunwayTransitions = append(arr.RunwayTransitions, RunwayTransition{RunwayIdent: rw, Legs: legs})
			}
		}
		out = append(out, arr)
	}
	return out
}

// FoldApproaches classifies tbl_iaps rows into Approach records. The
// approach type is read off the first non-transition row's route_type
// letter; the runway is parsed from the procedure identifier.
func FoldApproaches(rows []Row, sink Sink) []Approach {
	order, groups := groupByProcedure(rows)

	var out []Approach
	for _, ident := range order {
		app := Approach{Ident: ident, RunwayIdent: approachRunway(ident)}
		var missed bool
		var typeSet bool

		for _, row := range groups[ident] {
			routeType := Str(row, "route_type", "", procedureTable, sink)
			leg := rowToProcedureLeg(row, procedureTable, sink)
			descCode := Str(row, "waypoint_description_code", "", procedureTable, sink)

			if routeType == "Z" {
				missed = true
			}

			switch {
			case isEnrouteTransitionType(routeType, "approach"):
				app.Transitions = appendToTransition(app.Transitions, Str(row, "transition_identifier", "UNKN", procedureTable, sink), leg)
				continue
			case !typeSet && routeType != "":
				app.ApproachType = routeType
				typeSet = true
			}

			if missed {
				app.MissedLegs = append(app.MissedLegs, leg)
			} else {
				app.Legs = append(app.Legs, leg)
			}

			if len(descCode) >= 3 && descCode[2] == 'M' {
				missed = true
			}
		}
		out = append(out, app)
	}
	return out
}

func appendToTransition(transitions []EnrouteTransition, ident string, leg ProcedureLeg) []EnrouteTransition {
	for i := range transitions {
		if transitions[i].Ident == ident {
			transitions[i].Legs = append(transitions[i].Legs, leg)
			return transitions
		}
	}
	return append(transitions, EnrouteTransition{Ident: ident, Legs: []ProcedureLeg{leg}})
}

func runwayIdentsOf(runways []Runway) []string {
	idents := make([]string, len(runways))
	for i, r := range runways {
		idents[i] = r.Ident
	}
	return idents
}
