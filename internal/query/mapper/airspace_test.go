package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldControlledAirspacesGreatCircleAndEnd(t *testing.T) {
	rows := []Row{
		row("airspace_center", "KZNY", "airspace_name", "NEW YORK CTA", "boundary_via", "GB", "latitude", "40.0", "longitude", "-73.0"),
		row("airspace_center", "KZNY", "boundary_via", "GE", "latitude", "41.0", "longitude", "-74.0"),
	}
	airspaces := FoldControlledAirspaces(rows, nil)
	require.Len(t, airspaces, 1)
	assert.Equal(t, "NEW YORK CTA", airspaces[0].Name)
	require.Len(t, airspaces[0].Paths, 2)
	assert.Equal(t, BoundaryGreatCircle, airspaces[0].Paths[0].Type)
	require.NotNil(t, airspaces[0].Paths[0].Endpoint)
	assert.Equal(t, 40.0, airspaces[0].Paths[0].Endpoint.Lat)
}

func TestFoldControlledAirspacesDropsUnnamedLeadingGroup(t *testing.T) {
	rows := []Row{
		row("airspace_center", "KZNY", "boundary_via", "GE", "latitude", "40.0", "longitude", "-73.0"),
		row("airspace_center", "KZBW", "airspace_name", "BOSTON CTA", "boundary_via", "GE", "latitude", "42.0", "longitude", "-71.0"),
	}
	airspaces := FoldControlledAirspaces(rows, nil)
	require.Len(t, airspaces, 1)
	assert.Equal(t, "BOSTON CTA", airspaces[0].Name)
}

func TestFoldControlledAirspacesArcType(t *testing.T) {
	rows := []Row{
		row(
			"airspace_center", "KZNY", "airspace_name", "NY ARC",
			"boundary_via", "RE",
			"latitude", "40.0", "longitude", "-73.0",
			"arc_origin_latitude", "40.5", "arc_origin_longitude", "-73.5",
			"arc_distance", "5.0", "arc_bearing", "90.0",
		),
	}
	airspaces := FoldControlledAirspaces(rows, nil)
	require.Len(t, airspaces, 1)
	require.Len(t, airspaces[0].Paths, 1)
	path := airspaces[0].Paths[0]
	assert.Equal(t, BoundaryArcCW, path.Type)
	require.NotNil(t, path.ArcOrigin)
	require.NotNil(t, path.Distance)
	assert.Equal(t, 5.0, *path.Distance)
}

func TestFoldControlledAirspacesUnknownViaFlagged(t *testing.T) {
	var flagged bool
	rows := []Row{
		row("airspace_center", "KZNY", "airspace_name", "X", "boundary_via", "ZE", "latitude", "1", "longitude", "1"),
	}
	airspaces := FoldControlledAirspaces(rows, func(table, detail string, r Row) { flagged = true })
	require.Len(t, airspaces, 1)
	assert.Equal(t, BoundaryUnknown, airspaces[0].Paths[0].Type)
	assert.True(t, flagged)
}

func TestFoldRestrictiveAirspacesKeysOnDesignationAndIcaoCode(t *testing.T) {
	rows := []Row{
		row("restrictive_airspace_designation", "R1", "icao_code", "K1", "restrictive_airspace_name", "ZONE", "restrictive_type", "R", "boundary_via", "GE", "latitude", "1", "longitude", "1"),
	}
	areas := FoldRestrictiveAirspaces(rows, nil)
	require.Len(t, areas, 1)
	assert.Equal(t, "R1", areas[0].Ident)
	assert.Equal(t, "R", areas[0].Type)
}
