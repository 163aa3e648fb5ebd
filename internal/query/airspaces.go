package query

import (
	"context"
	"fmt"

	"github.com/navigraph/navdata-interface/internal/geo"
	"github.com/navigraph/navdata-interface/internal/query/mapper"
)

func (e *Engine) fetchRows(ctx context.Context, logicalTable, where string, args []any) ([]mapper.Row, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	table, err := e.table(logicalTable)
	if err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, db, fmt.Sprintf("SELECT * FROM %s WHERE %s", table, where), args...)
	if err != nil {
		return nil, err
	}
	out := make([]mapper.Row, len(rows))
	for i, r := range rows {
		out[i] = mapper.Row(r)
	}
	return out, nil
}

// GetControlledAirspacesInRange resolves the set of (center, multiple_code)
// designators whose boundary touches the query box against either the
// primary coordinate column or the arc-origin column, then refetches and
// folds every row belonging to those designators.
func (e *Engine) GetControlledAirspacesInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.ControlledAirspace, error) {
	table, err := e.table("controlled_airspace")
	if err != nil {
		return nil, err
	}
	where := RangeWhere(center, rangeNM, "")
	arcWhere := RangeWhere(center, rangeNM, "arc_origin")

	subquery := fmt.Sprintf(
		"SELECT airspace_center, multiple_code FROM %s WHERE %s OR %s",
		table, where, arcWhere,
	)
	outer := fmt.Sprintf("(airspace_center, multiple_code) IN (%s)", subquery)

	rows, err := e.fetchRows(ctx, "controlled_airspace", outer, nil)
	if err != nil {
		return nil, err
	}
	return mapper.FoldControlledAirspaces(rows, e.warn("controlled_airspace")), nil
}

// GetRestrictiveAirspacesInRange mirrors GetControlledAirspacesInRange for
// tbl_restrictive_airspace, keyed on (designation, icao_code).
func (e *Engine) GetRestrictiveAirspacesInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.RestrictiveAirspace, error) {
	table, err := e.table("restrictive_airspace")
	if err != nil {
		return nil, err
	}
	where := RangeWhere(center, rangeNM, "")
	arcWhere := RangeWhere(center, rangeNM, "arc_origin")

	subquery := fmt.Sprintf(
		"SELECT restrictive_airspace_designation, icao_code FROM %s WHERE %s OR %s",
		table, where, arcWhere,
	)
	outer := fmt.Sprintf("(restrictive_airspace_designation, icao_code) IN (%s)", subquery)

	rows, err := e.fetchRows(ctx, "restrictive_airspace", outer, nil)
	if err != nil {
		return nil, err
	}
	return mapper.FoldRestrictiveAirspaces(rows, e.warn("restrictive_airspace")), nil
}
