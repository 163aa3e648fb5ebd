package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(kv ...string) Row {
	r := Row{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i]] = kv[i+1]
	}
	return r
}

func TestFoldAirwaysSplitsOnEndMarker(t *testing.T) {
	rows := []Row{
		row("route_identifier", "J80", "waypoint_identifier", "ALPHA", "icao_code", "K1", "waypoint_description_code", "XB"),
		row("route_identifier", "J80", "waypoint_identifier", "BRAVO", "icao_code", "K1", "waypoint_description_code", "XE"),
		row("route_identifier", "J80", "waypoint_identifier", "CHARLIE", "icao_code", "K1", "waypoint_description_code", "XB"),
		row("route_identifier", "J80", "waypoint_identifier", "DELTA", "icao_code", "K1", "waypoint_description_code", "XE"),
	}

	var warnings int
	airways := FoldAirways(rows, func(table, detail string, row Row) { warnings++ })

	require.Len(t, airways, 2)
	assert.Equal(t, "J80", airways[0].Ident)
	require.Len(t, airways[0].Fixes, 2)
	assert.Equal(t, "ALPHA", airways[0].Fixes[0].Ident)
	assert.Equal(t, "BRAVO", airways[0].Fixes[1].Ident)
	require.Len(t, airways[1].Fixes, 2)
	assert.Equal(t, "CHARLIE", airways[1].Fixes[0].Ident)
	assert.Equal(t, "DELTA", airways[1].Fixes[1].Ident)
}

func TestFoldAirwaysFlushesTrailingGroupWithoutEndMarker(t *testing.T) {
	rows := []Row{
		row("route_identifier", "J80", "waypoint_identifier", "ALPHA", "icao_code", "K1", "waypoint_description_code", " B "),
	}
	airways := FoldAirways(rows, nil)
	require.Len(t, airways, 1)
	assert.Len(t, airways[0].Fixes, 1)
}

func TestFoldAirwaysEmptyInput(t *testing.T) {
	assert.Empty(t, FoldAirways(nil, nil))
}
