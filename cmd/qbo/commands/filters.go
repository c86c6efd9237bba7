package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
)

// Filter operators accepted by --where, longest first so that ">=" wins
// over ">".
var filterOperators = []string{">=", "<=", "~", ">", "<", "="}

// applyFilters adds every --where expression to builder.
//
// Supported forms:
//
//	Column=value       equality; true and false are sent unquoted
//	Column=[a,b,c]     membership (in)
//	Column>value       also >=, < and <=; value must be numeric
//	Column~pattern     Like, with % as wildcard
func applyFilters(builder *qbo.QueryBuilder, expressions []string) error {
	for _, expression := range expressions {
		column, operator, value, err := splitFilter(expression)
		if err != nil {
			return err
		}

		clause := builder.Where(column)

		switch operator {
		case "=":
			if list, ok := parseList(value); ok {
				clause.Contains(list)
			} else {
				clause.Equals(parseScalar(value))
			}
		case ">":
			clause.Gt(value)
		case ">=":
			clause.Gte(value)
		case "<":
			clause.Lt(value)
		case "<=":
			clause.Lte(value)
		case "~":
			clause.Like(value)
		default:
			return fmt.Errorf("%w: unsupported operator %q in %q", constants.ErrInvalidFilter, operator, expression)
		}
	}

	return builder.Err()
}

func splitFilter(expression string) (string, string, string, error) {
	index := strings.IndexAny(expression, "<>=~!")
	if index <= 0 {
		return "", "", "", fmt.Errorf("%w: %q", constants.ErrInvalidFilter, expression)
	}

	column := strings.TrimSpace(expression[:index])
	rest := expression[index:]

	for _, operator := range filterOperators {
		if strings.HasPrefix(rest, operator) {
			return column, operator, strings.TrimSpace(rest[len(operator):]), nil
		}
	}

	return "", "", "", fmt.Errorf("%w: %q", constants.ErrInvalidFilter, expression)
}

func parseList(value string) ([]string, bool) {
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return nil, false
	}

	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []string{}, true
	}

	items := strings.Split(inner, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}

	return items, true
}

func parseScalar(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	default:
		return value
	}
}
