package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/navigraph/navdata-interface/internal/geo"
)

func TestRangeWhereNormalBox(t *testing.T) {
	where := RangeWhere(geo.Coordinates{Lat: 40.0, Long: -73.0}, 30, "")
	assert.Contains(t, where, "latitude BETWEEN")
	assert.Contains(t, where, "longitude BETWEEN")
	assert.NotContains(t, where, "OR")
}

func TestRangeWhereColumnPrefix(t *testing.T) {
	where := RangeWhere(geo.Coordinates{Lat: 40.0, Long: -73.0}, 30, "arc_origin")
	assert.Contains(t, where, "arc_origin_latitude")
	assert.Contains(t, where, "arc_origin_longitude")
}

func TestRangeWhereAntimeridian(t *testing.T) {
	where := RangeWhere(geo.Coordinates{Lat: 0, Long: 179.5}, 60, "")
	assert.True(t, strings.Contains(where, "OR"), "expected a disjunctive longitude clause, got %q", where)
}

func TestRangeWhereNorthPolarCap(t *testing.T) {
	where := RangeWhere(geo.Coordinates{Lat: 89, Long: 0}, 120, "")
	assert.Contains(t, where, "latitude >=")
	assert.NotContains(t, where, "longitude")
}

func TestRangeWhereSouthPolarCap(t *testing.T) {
	where := RangeWhere(geo.Coordinates{Lat: -89, Long: 0}, 120, "")
	assert.Contains(t, where, "latitude <=")
	assert.NotContains(t, where, "longitude")
}
