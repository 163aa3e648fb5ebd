package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproachRunwayParsing(t *testing.T) {
	assert.Equal(t, "RW25L", approachRunway("I25L"))
	assert.Equal(t, "RW34", approachRunway("R34"))
	assert.Equal(t, "", approachRunway("notanident!"))
}

func TestFoldDeparturesClassifiesEngineOutAndCommonLegs(t *testing.T) {
	rows := []Row{
		row("procedure_identifier", "DEP1", "route_type", "0", "path_termination", "IF", "fix_identifier", "RW25L"),
		row("procedure_identifier", "DEP1", "route_type", "2", "path_termination", "TF", "fix_identifier", "WPT1"),
	}
	deps := FoldDepartures(rows, nil, nil)
	require.Len(t, deps, 1)
	assert.Len(t, deps[0].EngineOutLegs, 1)
	assert.Len(t, deps[0].CommonLegs, 1)
}

func TestFoldDeparturesRunwayTransitionFanOutAll(t *testing.T) {
	rows := []Row{
		row("procedure_identifier", "DEP1", "route_type", "1", "path_termination", "CF", "transition_identifier", "ALL"),
	}
	runways := []Runway{{Ident: "RW25L"}, {Ident: "RW25R"}}
	deps := FoldDepartures(rows, runways, nil)
	require.Len(t, deps, 1)
	require.Len(t, deps[0].RunwayTransitions, 2)
}

func TestFoldDeparturesRunwayClassB(t *testing.T) {
	rows := []Row{
		row("procedure_identifier", "DEP1", "route_type", "1", "path_termination", "CF", "transition_identifier", "RW25B"),
	}
	runways := []Runway{{Ident: "RW25L"}, {Ident: "RW25R"}, {Ident: "RW07L"}}
	deps := FoldDepartures(rows, runways, nil)
	require.Len(t, deps, 1)
	var idents []string
	for _, rt := range deps[0].RunwayTransitions {
		idents = append(idents, rt.RunwayIdent)
	}
	assert.ElementsMatch(t, []string{"RW25L", "RW25R"}, idents)
}

func TestFoldApproachesMissedLegAfterMFlag(t *testing.T) {
	rows := []Row{
		row("procedure_identifier", "I25L", "route_type", "I", "path_termination", "IF", "waypoint_description_code", "E  "),
		row("procedure_identifier", "I25L", "route_type", "I", "path_termination", "CF", "waypoint_description_code", "EYM"),
		row("procedure_identifier", "I25L", "route_type", "I", "path_termination", "CA"),
	}
	approaches := FoldApproaches(rows, nil)
	require.Len(t, approaches, 1)
	a := approaches[0]
	assert.Equal(t, "I", a.ApproachType)
	assert.Equal(t, "RW25L", a.RunwayIdent)
	assert.Len(t, a.Legs, 2)
	assert.Len(t, a.MissedLegs, 1)
}

func TestFoldApproachesTransitionsSeparatedOut(t *testing.T) {
	rows := []Row{
		row("procedure_identifier", "I25L", "route_type", "A", "path_termination", "IF", "transition_identifier", "NORTH"),
		row("procedure_identifier", "I25L", "route_type", "I", "path_termination", "CF"),
	}
	approaches := FoldApproaches(rows, nil)
	require.Len(t, approaches, 1)
	require.Len(t, approaches[0].Transitions, 1)
	assert.Equal(t, "NORTH", approaches[0].Transitions[0].Ident)
	assert.Len(t, approaches[0].Legs, 1)
}
