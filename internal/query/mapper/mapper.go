// Package mapper converts the generic column-name rows produced by the
// query engine into the typed output records the host exposes. It is
// schema-agnostic: the same conversion functions serve both v1 and v2
// rows because the engine normalizes column access before handing a row
// here. Missing-but-mandatory fields are filled with documented
// sentinels and reported to a diagnostic sink rather than failing the
// whole query — a partial answer beats none.
package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/navigraph/navdata-interface/internal/geo"
)

// Row is one decoded SQL result row, column name to the driver's value
// (string, int64 or float64); the accessors below read every value in its
// string form. Absent keys mean the source column was NULL.
type Row map[string]any

// Sink receives a diagnostic whenever a row had to be patched with a
// default value or carried an unrecognized enum letter.
type Sink func(table, detail string, row Row)

func str(row Row, key string) (string, bool) {
	v, ok := row[key]
	if !ok {
		return "", false
	}
	if s, isString := v.(string); isString {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Str returns the column's string value, or def (reported to sink) if
// the column is absent.
func Str(row Row, key, def, table string, sink Sink) string {
	if v, ok := str(row, key); ok {
		return v
	}
	if sink != nil {
		sink(table, "missing "+key+", defaulted to "+def, row)
	}
	return def
}

// StrOpt returns the column's string value, or "" (no default, no
// diagnostic) when the field is genuinely optional.
func StrOpt(row Row, key string) string {
	v, _ := str(row, key)
	return v
}

// Float returns the column's value parsed as float64, or def (reported)
// if absent or unparseable.
func Float(row Row, key string, def float64, table string, sink Sink) float64 {
	v, ok := str(row, key)
	if !ok {
		if sink != nil {
			sink(table, "missing "+key+", defaulted", row)
		}
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		if sink != nil {
			sink(table, "unparseable "+key+"="+v+", defaulted", row)
		}
		return def
	}
	return f
}

// FloatOpt returns a pointer to the parsed value, or nil if the column
// is absent or blank.
func FloatOpt(row Row, key string) *float64 {
	v, ok := str(row, key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}

// IntOpt returns a pointer to the parsed integer value, or nil.
func IntOpt(row Row, key string) *int {
	v, ok := str(row, key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &i
}

// Coords reads a lat/long pair under "<prefix>latitude"/"<prefix>longitude".
func Coords(row Row, prefix, table string, sink Sink) geo.Coordinates {
	return geo.Coordinates{
		Lat:  Float(row, prefix+"latitude", 0, table, sink),
		Long: Float(row, prefix+"longitude", 0, table, sink),
	}
}
