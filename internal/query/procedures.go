package query

import (
	"context"

	"github.com/navigraph/navdata-interface/internal/query/mapper"
)

// GetDeparturesAtAirport returns every SID at the airport with runway
// transitions fanned out against the airport's actual runway list.
func (e *Engine) GetDeparturesAtAirport(ctx context.Context, airportIdent string) ([]mapper.Departure, error) {
	procRows, err := e.fetchRows(ctx, "sids", "airport_identifier = ?", []any{airportIdent})
	if err != nil {
		return nil, err
	}
	runways, err := e.GetRunwaysAtAirport(ctx, airportIdent)
	if err != nil {
		return nil, err
	}
	return mapper.FoldDepartures(procRows, runways, e.warn("sids")), nil
}

// GetArrivalsAtAirport returns every STAR at the airport.
func (e *Engine) GetArrivalsAtAirport(ctx context.Context, airportIdent string) ([]mapper.Arrival, error) {
	procRows, err := e.fetchRows(ctx, "stars", "airport_identifier = ?", []any{airportIdent})
	if err != nil {
		return nil, err
	}
	runways, err := e.GetRunwaysAtAirport(ctx, airportIdent)
	if err != nil {
		return nil, err
	}
	return mapper.FoldArrivals(procRows, runways, e.warn("stars")), nil
}

// GetApproachesAtAirport returns every IAP at the airport.
func (e *Engine) GetApproachesAtAirport(ctx context.Context, airportIdent string) ([]mapper.Approach, error) {
	procRows, err := e.fetchRows(ctx, "iaps", "airport_identifier = ?", []any{airportIdent})
	if err != nil {
		return nil, err
	}
	return mapper.FoldApproaches(procRows, e.warn("iaps")), nil
}
