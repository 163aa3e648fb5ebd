package mapper

import "github.com/navigraph/navdata-interface/internal/geo"

// BoundaryPathType tags the shape of one airspace boundary segment.
type BoundaryPathType string

const (
	BoundaryCircle      BoundaryPathType = "circle"
	BoundaryGreatCircle BoundaryPathType = "great_circle"
	BoundaryRhumbLine   BoundaryPathType = "rhumb_line"
	BoundaryArcCCW      BoundaryPathType = "arc_counter_clockwise"
	BoundaryArcCW       BoundaryPathType = "arc_clockwise"
	BoundaryUnknown     BoundaryPathType = "unknown"
)

// BoundaryPath is one segment of an airspace polygon.
type BoundaryPath struct {
	Type      BoundaryPathType `json:"type"`
	Endpoint  *geo.Coordinates `json:"endpoint,omitempty"`
	ArcOrigin *geo.Coordinates `json:"arc_origin,omitempty"`
	Distance  *float64         `json:"arc_distance,omitempty"`
	Bearing   *float64         `json:"arc_bearing,omitempty"`
}

// ControlledAirspace is a named polygon bounding controlled airspace.
type ControlledAirspace struct {
	Ident string         `json:"ident"`
	IcaoCode string      `json:"icao_code,omitempty"`
	Name  string         `json:"name"`
	Paths []BoundaryPath `json:"boundary_paths"`
}

// RestrictiveAirspace is a named polygon bounding restricted/prohibited/danger airspace.
type RestrictiveAirspace struct {
	Ident string         `json:"ident"`
	IcaoCode string      `json:"icao_code,omitempty"`
	Type  string         `json:"restrictive_type,omitempty"`
	Name  string         `json:"name"`
	Paths []BoundaryPath `json:"boundary_paths"`
}

func boundaryPathFromRow(row Row, table string, sink Sink) (BoundaryPath, bool) {
	via := Str(row, "boundary_via", "", table, sink)
	if via == "" {
		return BoundaryPath{}, false
	}

	path := BoundaryPath{}
	endpoint := Coords(row, "", table, sink)
	arcOrigin := Coords(row, "arc_origin_", table, sink)
	distance := FloatOpt(row, "arc_distance")
	bearing := FloatOpt(row, "arc_bearing")

	switch via[0] {
	case 'C':
		path.Type = BoundaryCircle
		path.ArcOrigin = &arcOrigin
	case 'G':
		path.Type = BoundaryGreatCircle
		path.Endpoint = &endpoint
	case 'H':
		path.Type = BoundaryRhumbLine
		path.Endpoint = &endpoint
	case 'L':
		path.Type = BoundaryArcCCW
		path.Endpoint = &endpoint
		path.ArcOrigin = &arcOrigin
		path.Distance = distance
		path.Bearing = bearing
	case 'R':
		path.Type = BoundaryArcCW
		path.Endpoint = &endpoint
		path.ArcOrigin = &arcOrigin
		path.Distance = distance
		path.Bearing = bearing
	default:
		path.Type = BoundaryUnknown
		if sink != nil {
			sink(table, "unrecognized boundary_via code "+via, row)
		}
	}
	return path, true
}

const controlledAirspaceTable = "controlled_airspace"

// FoldControlledAirspaces groups tbl_controlled_airspace rows keyed on
// boundary_via[1]=='E'. The first row of a group must carry a name; a
// group whose first row has no name is a clipped polygon fragment that
// starts outside the query region and is dropped.
func FoldControlledAirspaces(rows []Row, sink Sink) []ControlledAirspace {
	var out []ControlledAirspace
	var current *ControlledAirspace
	var skipping bool

	flush := func() {
		if current != nil && len(current.Paths) > 0 {
			out = append(out, *current)
		}
		current = nil
		skipping = false
	}

	for _, row := range rows {
		if current == nil && !skipping {
			name, hasName := str(row, "airspace_name")
			if !hasName || name == "" {
				skipping = true
			} else {
				current = &ControlledAirspace{
					Ident:    Str(row, "airspace_center", "UNKN", controlledAirspaceTable, sink),
					IcaoCode: StrOpt(row, "icao_code"),
					Name:     name,
				}
			}
		}

		via := Str(row, "boundary_via", "", controlledAirspaceTable, sink)
		if path, ok := boundaryPathFromRow(row, controlledAirspaceTable, sink); ok && current != nil {
			current.Paths = append(current.Paths, path)
		}

		if len(via) >= 2 && via[1] == 'E' {
			flush()
		}
	}
	flush()

	return out
}

const restrictiveAirspaceTable = "restrictive_airspace"

// FoldRestrictiveAirspaces mirrors FoldControlledAirspaces for tbl_restrictive_airspace.
func FoldRestrictiveAirspaces(rows []Row, sink Sink) []RestrictiveAirspace {
	var out []RestrictiveAirspace
	var current *RestrictiveAirspace
	var skipping bool

	flush := func() {
		if current != nil && len(current.Paths) > 0 {
			out = append(out, *current)
		}
		current = nil
		skipping = false
	}

	for _, row := range rows {
		if current == nil && !skipping {
			name, hasName := str(row, "restrictive_airspace_name")
			if !hasName || name == "" {
				skipping = true
			} else {
				current = &RestrictiveAirspace{
					Ident:    Str(row, "restrictive_airspace_designation", "UNKN", restrictiveAirspaceTable, sink),
					IcaoCode: StrOpt(row, "icao_code"),
					Type:     StrOpt(row, "restrictive_type"),
					Name:     name,
				}
			}
		}

		via := Str(row, "boundary_via", "", restrictiveAirspaceTable, sink)
		if path, ok := boundaryPathFromRow(row, restrictiveAirspaceTable, sink); ok && current != nil {
			current.Paths = append(current.Paths, path)
		}

		if len(via) >= 2 && via[1] == 'E' {
			flush()
		}
	}
	flush()

	return out
}
