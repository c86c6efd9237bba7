package qbo

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Query defaults.
const (
	DefaultMaxResults    = 100
	DefaultStartPosition = 1

	wildcardColumns = "*"
	countColumns    = "count(*)"
	filterSeparator = " AND "
)

// QueryBuilder builds a query statement for the query endpoint:
//
//	Select <columns> From <entity>[ Where <f1> AND <f2>][ StartPosition <n> MaxResults <m>]
//
// Filters are added in two phases. Where opens a filter on a column and
// returns a FilterClause whose operator methods complete it and hand back
// the builder. Malformed call sequences are recorded on the builder and
// reported by Build; only Build enforces that the last filter is complete,
// so Count, Limit and Offset may be called while a filter is still open.
//
// A QueryBuilder is not safe for concurrent use.
type QueryBuilder struct {
	entity        string
	columns       string
	filters       []string
	incomplete    bool
	count         bool
	paginated     bool
	maxResults    int
	startPosition int
	err           error
}

// FilterClause is an open filter on a single column. Exactly one operator
// must be applied to it before the query can be built.
type FilterClause struct {
	builder *QueryBuilder
	column  string
}

// NewQueryBuilder creates a builder selecting every column of entity.
func NewQueryBuilder(entity string) *QueryBuilder {
	return &QueryBuilder{
		entity:        entity,
		columns:       wildcardColumns,
		maxResults:    DefaultMaxResults,
		startPosition: DefaultStartPosition,
	}
}

// NewQueryBuilderFromParts reconstructs a builder from the pieces of a
// previously rendered statement. The where clause is split on " AND " into
// opaque filter strings, so the original structured filters are not
// recovered. Non-positive pagination values leave pagination unset.
func NewQueryBuilderFromParts(entity, columns, where string, startPosition, maxResults int) *QueryBuilder {
	builder := NewQueryBuilder(entity)

	builder.setColumns(columns)

	if columns == countColumns {
		builder.count = true
	}

	builder.SetFilters(where)

	if startPosition > 0 {
		builder.Offset(startPosition)
	}

	if maxResults > 0 {
		builder.Limit(maxResults)
	}

	return builder
}

// Select sets the selected columns. Several names are joined with ", ";
// a single pre-joined string is stored as given. No columns selects "*".
// Selecting columns turns a count query back into a row query.
func (b *QueryBuilder) Select(columns ...string) *QueryBuilder {
	b.count = false
	b.setColumns(strings.Join(columns, ", "))

	return b
}

func (b *QueryBuilder) setColumns(columns string) {
	if strings.TrimSpace(columns) == "" {
		b.columns = wildcardColumns

		return
	}

	b.columns = columns
}

// Where opens a filter on column. Opening a filter while the previous one is
// still incomplete makes the query invalid.
func (b *QueryBuilder) Where(column string) *FilterClause {
	if b.incomplete {
		b.fail(incompleteFilterError(b.filters[len(b.filters)-1]))
	}

	b.filters = append(b.filters, column)
	b.incomplete = true

	return &FilterClause{builder: b, column: column}
}

// Count turns the query into a row count query.
func (b *QueryBuilder) Count() *QueryBuilder {
	b.count = true
	b.columns = countColumns

	return b
}

// Limit sets MaxResults.
func (b *QueryBuilder) Limit(maxResults int) *QueryBuilder {
	b.paginated = true
	b.maxResults = maxResults

	return b
}

// Offset sets StartPosition.
func (b *QueryBuilder) Offset(startPosition int) *QueryBuilder {
	b.paginated = true
	b.startPosition = startPosition

	return b
}

// SetFilters replaces the filters with the conditions of a rendered where
// clause. A leading "Where " is ignored. This is a lossy round trip: each
// condition is kept as an opaque string.
func (b *QueryBuilder) SetFilters(where string) *QueryBuilder {
	where = strings.TrimSpace(where)
	if len(where) >= len("Where ") && strings.EqualFold(where[:len("Where ")], "Where ") {
		where = strings.TrimSpace(where[len("Where "):])
	}

	b.filters = nil
	b.incomplete = false

	if where == "" {
		return b
	}

	b.filters = strings.Split(where, filterSeparator)

	return b
}

// Build renders the query statement. It is a pure function of the current
// state and may be called repeatedly.
func (b *QueryBuilder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}

	if b.incomplete {
		return "", incompleteFilterError(b.filters[len(b.filters)-1])
	}

	var query strings.Builder

	_, _ = fmt.Fprintf(&query, "Select %s From %s", b.columns, b.entity)

	if len(b.filters) > 0 {
		query.WriteString(" Where ")
		query.WriteString(strings.Join(b.filters, filterSeparator))
	}

	if b.paginated {
		_, _ = fmt.Fprintf(&query, " StartPosition %d MaxResults %d", b.startPosition, b.maxResults)
	}

	return query.String(), nil
}

// Entity returns the queried entity.
func (b *QueryBuilder) Entity() string { return b.entity }

// Columns returns the selected columns.
func (b *QueryBuilder) Columns() string { return b.columns }

// Filters returns a copy of the rendered filter conditions.
func (b *QueryBuilder) Filters() []string {
	return append([]string(nil), b.filters...)
}

// IsCount reports whether the builder represents a count query.
func (b *QueryBuilder) IsCount() bool { return b.count }

// MaxResults returns the pagination window size.
func (b *QueryBuilder) MaxResults() int { return b.maxResults }

// StartPosition returns the pagination window start.
func (b *QueryBuilder) StartPosition() int { return b.startPosition }

// Err returns the first call sequence error recorded on the builder.
func (b *QueryBuilder) Err() error { return b.err }

// Clone returns an independent copy of the builder.
func (b *QueryBuilder) Clone() *QueryBuilder {
	clone := *b
	clone.filters = b.Filters()

	return &clone
}

func (b *QueryBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// complete rewrites the open filter using render. Errors leave the filter
// open and are recorded on the builder.
func (c *FilterClause) complete(render func(column string) (string, error)) *QueryBuilder {
	b := c.builder
	if !b.incomplete {
		b.fail(fmt.Errorf("%w: operator on %q must be preceded by a where clause", ErrInvalidQuery, c.column))

		return b
	}

	clause, err := render(b.filters[len(b.filters)-1])
	if err != nil {
		b.fail(err)

		return b
	}

	b.filters[len(b.filters)-1] = clause
	b.incomplete = false

	return b
}

// Equals completes the filter with "=". A nil value renders as '' and a
// bool renders unquoted; everything else is single-quoted without escaping.
func (c *FilterClause) Equals(value any) *QueryBuilder {
	return c.complete(func(column string) (string, error) {
		switch v := value.(type) {
		case nil:
			return column + " = ''", nil
		case bool:
			return column + " = " + strconv.FormatBool(v), nil
		default:
			return fmt.Sprintf("%s = '%v'", column, v), nil
		}
	})
}

// Contains completes the filter with "in". values must be a slice or array.
func (c *FilterClause) Contains(values any) *QueryBuilder {
	return c.complete(func(column string) (string, error) {
		list := reflect.ValueOf(values)
		if values == nil || (list.Kind() != reflect.Slice && list.Kind() != reflect.Array) {
			return "", fmt.Errorf("%w: contains operator must receive a list of values", ErrInvalidQuery)
		}

		items := make([]string, list.Len())
		for i := range list.Len() {
			items[i] = literal(list.Index(i).Interface())
		}

		return fmt.Sprintf("%s in [%s]", column, strings.Join(items, ", ")), nil
	})
}

// Gt completes the filter with ">".
func (c *FilterClause) Gt(value any) *QueryBuilder { return c.compare(">", value) }

// Gte completes the filter with ">=".
func (c *FilterClause) Gte(value any) *QueryBuilder { return c.compare(">=", value) }

// Lt completes the filter with "<".
func (c *FilterClause) Lt(value any) *QueryBuilder { return c.compare("<", value) }

// Lte completes the filter with "<=".
func (c *FilterClause) Lte(value any) *QueryBuilder { return c.compare("<=", value) }

// GreaterThan is Gt.
func (c *FilterClause) GreaterThan(value any) *QueryBuilder { return c.Gt(value) }

// GreaterThanOrEqual is Gte.
func (c *FilterClause) GreaterThanOrEqual(value any) *QueryBuilder { return c.Gte(value) }

// LessThan is Lt.
func (c *FilterClause) LessThan(value any) *QueryBuilder { return c.Lt(value) }

// LessThanOrEqual is Lte.
func (c *FilterClause) LessThanOrEqual(value any) *QueryBuilder { return c.Lte(value) }

// compare renders a numeric comparison. The value is still quoted on the wire.
func (c *FilterClause) compare(op string, value any) *QueryBuilder {
	return c.complete(func(column string) (string, error) {
		text := fmt.Sprint(value)

		_, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if value == nil || err != nil {
			return "", fmt.Errorf("%w: %s operator requires a numeric value, got %q", ErrInvalidQuery, op, text)
		}

		return fmt.Sprintf("%s %s '%s'", column, op, text), nil
	})
}

// Like completes the filter with "Like". value must be a string.
func (c *FilterClause) Like(value any) *QueryBuilder {
	return c.complete(func(column string) (string, error) {
		pattern, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("%w: like operator requires a string value", ErrInvalidQuery)
		}

		return fmt.Sprintf("%s Like '%s'", column, pattern), nil
	})
}

func literal(value any) string {
	if s, ok := value.(string); ok {
		return "'" + s + "'"
	}

	return fmt.Sprint(value)
}

func incompleteFilterError(column string) error {
	return fmt.Errorf("%w: incomplete filter clause -> %s", ErrInvalidQuery, column)
}
