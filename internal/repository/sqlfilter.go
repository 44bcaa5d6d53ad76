package repository

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/query"
)

// columnMap translates store-agnostic filter field names into SQL
// columns for one table.
type columnMap map[string]string

var ticketColumns = columnMap{
	query.FieldTitle:         "title",
	query.FieldDescription:   "description",
	query.FieldStatus:        "status",
	query.FieldPriority:      "priority",
	query.FieldAssignedAgent: "assigned_agent",
	query.FieldCreatedBy:     "created_by",
}

var activityColumns = columnMap{
	"user":       "user_id",
	"entityType": "entity_type",
	"entityId":   "entity_id",
}

// compileFilter renders a query expression as a SQL condition with
// positional placeholders, appending bind values to args. Unknown field
// names render as FALSE so a bad mapping surfaces as an empty result
// rather than a SQL error.
func compileFilter(e query.Expr, cols columnMap, args *[]any) string {
	switch e.Kind {
	case query.KindAll:
		return "TRUE"
	case query.KindAnd:
		return joinChildren(e.Children, " AND ", cols, args)
	case query.KindOr:
		return joinChildren(e.Children, " OR ", cols, args)
	case query.KindFieldEq:
		col, ok := cols[e.Field]
		if !ok {
			return "FALSE"
		}
		*args = append(*args, e.Value)
		return fmt.Sprintf("%s = $%d", col, len(*args))
	case query.KindFieldMatch:
		col, ok := cols[e.Field]
		if !ok {
			return "FALSE"
		}
		*args = append(*args, "%"+strings.ToLower(e.Value)+"%")
		return fmt.Sprintf("LOWER(%s) LIKE $%d", col, len(*args))
	case query.KindFieldIsNull:
		col, ok := cols[e.Field]
		if !ok {
			return "FALSE"
		}
		return fmt.Sprintf("%s IS NULL", col)
	case query.KindFieldIn:
		col, ok := cols[e.Field]
		if !ok || len(e.Values) == 0 {
			return "FALSE"
		}
		placeholders := make([]string, len(e.Values))
		for i, v := range e.Values {
			*args = append(*args, v)
			placeholders[i] = fmt.Sprintf("$%d", len(*args))
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ","))
	}
	return "FALSE"
}

func joinChildren(children []query.Expr, sep string, cols columnMap, args *[]any) string {
	if len(children) == 0 {
		return "TRUE"
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = compileFilter(c, cols, args)
	}
	return "(" + strings.Join(parts, sep) + ")"
}
