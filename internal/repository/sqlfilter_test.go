package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/query"
)

func TestCompileFilterAll(t *testing.T) {
	var args []any
	sql := compileFilter(query.All(), ticketColumns, &args)
	assert.Equal(t, "TRUE", sql)
	assert.Empty(t, args)
}

func TestCompileFilterEqMapsColumn(t *testing.T) {
	var args []any
	sql := compileFilter(query.Eq(query.FieldAssignedAgent, "a-1"), ticketColumns, &args)
	assert.Equal(t, "assigned_agent = $1", sql)
	assert.Equal(t, []any{"a-1"}, args)
}

func TestCompileFilterMatchLowersAndWraps(t *testing.T) {
	var args []any
	sql := compileFilter(query.Match(query.FieldTitle, "VPN"), ticketColumns, &args)
	assert.Equal(t, "LOWER(title) LIKE $1", sql)
	assert.Equal(t, []any{"%vpn%"}, args)
}

func TestCompileFilterSearchPlusScope(t *testing.T) {
	filter := query.And(
		query.Or(
			query.Match(query.FieldTitle, "vpn"),
			query.Match(query.FieldDescription, "vpn"),
		),
		query.Or(
			query.Eq(query.FieldAssignedAgent, "a-1"),
			query.IsNull(query.FieldAssignedAgent),
		),
	)

	var args []any
	sql := compileFilter(filter, ticketColumns, &args)
	assert.Equal(t,
		"((LOWER(title) LIKE $1 OR LOWER(description) LIKE $2) AND (assigned_agent = $3 OR assigned_agent IS NULL))",
		sql)
	assert.Equal(t, []any{"%vpn%", "%vpn%", "a-1"}, args)
}

func TestCompileFilterInPlaceholders(t *testing.T) {
	var args []any
	sql := compileFilter(query.In("entityId", []string{"t-1", "t-2"}), activityColumns, &args)
	assert.Equal(t, "entity_id IN ($1,$2)", sql)
	assert.Equal(t, []any{"t-1", "t-2"}, args)
}

func TestCompileFilterEmptyInMatchesNothing(t *testing.T) {
	var args []any
	sql := compileFilter(query.In("entityId", nil), activityColumns, &args)
	assert.Equal(t, "FALSE", sql)
	assert.Empty(t, args)
}

func TestCompileFilterUnknownFieldIsFalse(t *testing.T) {
	var args []any
	sql := compileFilter(query.Eq("password", "x"), ticketColumns, &args)
	assert.Equal(t, "FALSE", sql)
	assert.Empty(t, args)
}
