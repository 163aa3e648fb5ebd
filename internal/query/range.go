package query

import (
	"fmt"

	"github.com/navigraph/navdata-interface/internal/geo"
)

// RangeWhere builds the SQL predicate used to pre-filter rows to a bounding
// box around center before the caller applies the true haversine
// post-filter. columnPrefix names the lat/long column pair as
// "<prefix>_latitude"/"<prefix>_longitude"; pass "" for bare
// "latitude"/"longitude".
//
// Above 80 degrees of latitude (either direction) the predicate degrades
// to a bare latitude floor/ceiling: at that point every longitude is
// within range of a pole-adjacent circle, so constraining longitude only
// narrows the SQL scan without narrowing the true result, and the
// antimeridian-wrap form below would otherwise misfire near the poles.
func RangeWhere(center geo.Coordinates, rangeNM geo.NauticalMiles, columnPrefix string) string {
	box := center.DistanceBounds(rangeNM)

	latCol, longCol := "latitude", "longitude"
	if columnPrefix != "" {
		latCol = columnPrefix + "_latitude"
		longCol = columnPrefix + "_longitude"
	}

	switch {
	case box.CrossesAntimeridian():
		return fmt.Sprintf(
			"%s BETWEEN %f AND %f AND (%s >= %f OR %s <= %f)",
			latCol, box.SW.Lat, box.NE.Lat, longCol, box.SW.Long, longCol, box.NE.Long,
		)
	case max(box.SW.Lat, box.NE.Lat) > 80.0:
		return fmt.Sprintf("%s >= %f", latCol, min(box.SW.Lat, box.NE.Lat))
	case min(box.SW.Lat, box.NE.Lat) < -80.0:
		return fmt.Sprintf("%s <= %f", latCol, max(box.SW.Lat, box.NE.Lat))
	default:
		return fmt.Sprintf(
			"%s BETWEEN %f AND %f AND %s BETWEEN %f AND %f",
			latCol, box.SW.Lat, box.NE.Lat, longCol, box.SW.Long, box.NE.Long,
		)
	}
}
