package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchIsCaseInsensitiveSubstring(t *testing.T) {
	doc := map[string]any{"title": "Printer On Fire"}

	assert.True(t, Match("title", "printer").Matches(doc))
	assert.True(t, Match("title", "ON FIRE").Matches(doc))
	assert.False(t, Match("title", "router").Matches(doc))
}

func TestIsNullTreatsAbsentAndNilAlike(t *testing.T) {
	var nilPtr *string
	agent := "a-1"

	assert.True(t, IsNull("assignedAgent").Matches(map[string]any{}))
	assert.True(t, IsNull("assignedAgent").Matches(map[string]any{"assignedAgent": nil}))
	assert.True(t, IsNull("assignedAgent").Matches(map[string]any{"assignedAgent": nilPtr}))
	assert.False(t, IsNull("assignedAgent").Matches(map[string]any{"assignedAgent": agent}))
}

func TestInWithEmptyListMatchesNothing(t *testing.T) {
	doc := map[string]any{"entityId": "t-1"}

	assert.False(t, In("entityId", nil).Matches(doc))
	assert.True(t, In("entityId", []string{"t-0", "t-1"}).Matches(doc))
}

func TestAndFlattensTrivialCases(t *testing.T) {
	assert.Equal(t, KindAll, And().Kind)
	assert.Equal(t, KindAll, And(All(), All()).Kind)

	single := And(Eq("status", "Open"))
	assert.Equal(t, KindFieldEq, single.Kind)
}

func TestAndOrComposition(t *testing.T) {
	filter := And(
		Or(Match("title", "vpn"), Match("description", "vpn")),
		Or(Eq("assignedAgent", "agent-1"), IsNull("assignedAgent")),
	)

	matching := map[string]any{"title": "VPN down", "description": "", "assignedAgent": nil}
	wrongAgent := map[string]any{"title": "VPN down", "description": "", "assignedAgent": "agent-2"}
	noTerm := map[string]any{"title": "Printer", "description": "paper jam", "assignedAgent": "agent-1"}

	assert.True(t, filter.Matches(matching))
	assert.False(t, filter.Matches(wrongAgent))
	assert.False(t, filter.Matches(noTerm))
}

func TestEqOnPointerField(t *testing.T) {
	agent := "agent-1"
	assert.True(t, Eq("assignedAgent", "agent-1").Matches(map[string]any{"assignedAgent": &agent}))
}
