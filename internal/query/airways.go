package query

import (
	"context"
	"fmt"

	"github.com/navigraph/navdata-interface/internal/geo"
	"github.com/navigraph/navdata-interface/internal/query/mapper"
)

func (e *Engine) fetchAirwayRows(ctx context.Context, where string, args []any) ([]mapper.Row, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	table, err := e.table("enroute_airways")
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, where)
	rows, err := queryRows(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]mapper.Row, len(rows))
	for i, r := range rows {
		out[i] = mapper.Row(r)
	}
	return out, nil
}

// GetAirways returns every airway whose route identifier matches ident.
func (e *Engine) GetAirways(ctx context.Context, ident string) ([]mapper.Airway, error) {
	rows, err := e.fetchAirwayRows(ctx, "route_identifier = ?", []any{ident})
	if err != nil {
		return nil, err
	}
	return mapper.FoldAirways(rows, e.warn("enroute_airways")), nil
}

// GetAirwaysAtFix returns every airway passing through the given fix. It
// first resolves the set of route identifiers any of whose rows reference
// the fix, re-fetches every row of those routes, folds into full airways,
// then keeps only the airways that actually contain the fix (a route
// identifier can be reused by unrelated airway segments elsewhere in the
// table).
func (e *Engine) GetAirwaysAtFix(ctx context.Context, fixIdent, fixIcaoCode string) ([]mapper.Airway, error) {
	table, err := e.table("enroute_airways")
	if err != nil {
		return nil, err
	}
	where := fmt.Sprintf(
		"route_identifier IN (SELECT route_identifier FROM %s WHERE waypoint_identifier = ? AND icao_code = ?)",
		table,
	)
	rows, err := e.fetchAirwayRows(ctx, where, []any{fixIdent, fixIcaoCode})
	if err != nil {
		return nil, err
	}

	airways := mapper.FoldAirways(rows, e.warn("enroute_airways"))
	out := airways[:0]
	for _, a := range airways {
		for _, f := range a.Fixes {
			if f.Ident == fixIdent && f.IcaoCode == fixIcaoCode {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// GetAirwaysInRange returns every airway at least one of whose fixes falls
// within rangeNM of center.
func (e *Engine) GetAirwaysInRange(ctx context.Context, center geo.Coordinates, rangeNM geo.NauticalMiles) ([]mapper.Airway, error) {
	table, err := e.table("enroute_airways")
	if err != nil {
		return nil, err
	}
	where := RangeWhere(center, rangeNM, "waypoint")
	outer := fmt.Sprintf(
		"route_identifier IN (SELECT route_identifier FROM %s WHERE %s)",
		table, where,
	)
	rows, err := e.fetchAirwayRows(ctx, outer, nil)
	if err != nil {
		return nil, err
	}

	airways := mapper.FoldAirways(rows, e.warn("enroute_airways"))
	out := airways[:0]
	for _, a := range airways {
		for _, f := range a.Fixes {
			if f.Location.DistanceTo(center) <= rangeNM {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}
