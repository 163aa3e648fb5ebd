package cycle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFromToWithinSameYear(t *testing.T) {
	pair, err := ParseFromTo("0101310125")
	require.NoError(t, err)
	assert.Equal(t, "01-01-2025", pair.From)
	assert.Equal(t, "31-01-2025", pair.To)
}

func TestParseFromToCrossingYearBoundary(t *testing.T) {
	pair, err := ParseFromTo("2812310125")
	require.NoError(t, err)
	assert.Equal(t, "28-12-2024", pair.From)
	assert.Equal(t, "31-01-2025", pair.To)
}

func TestParseFromToRejectsWrongLength(t *testing.T) {
	_, err := ParseFromTo("123")
	require.Error(t, err)
}

func TestParseFromToRoundTrip(t *testing.T) {
	// Property: re-encoding the two produced DD-MM-YYYY strings back into
	// a DDMMDDMMYY form reproduces the original input, modulo the
	// from-year, which is inferred rather than encoded.
	input := "1503200423"
	pair, err := ParseFromTo(input)
	require.NoError(t, err)

	reencoded := pair.From[0:2] + pair.From[3:5] + pair.To[0:2] + pair.To[3:5] + pair.To[8:10]
	assert.Equal(t, input, reencoded)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ng_cycle.json")
	d := Descriptor{Format: "v2", Revision: "1", Cycle: "2501", ValidityPeriod: "01-01-2025/31-01-2025"}

	require.NoError(t, Save(path, d))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, d, *loaded)
}

func TestLoadMissingFileReturnsNilNotError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
