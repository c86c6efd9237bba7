package qbo_test

import (
	"testing"

	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQuery(t *testing.T, builder *qbo.QueryBuilder) string {
	t.Helper()

	query, err := builder.Build()
	require.NoError(t, err)

	return query
}

func TestQueryBuilder_Select(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		columns  []string
		expected string
	}{
		{name: "no columns", columns: nil, expected: "*"},
		{name: "single column", columns: []string{"Id"}, expected: "Id"},
		{name: "keeps order", columns: []string{"DisplayName", "Id", "Balance"}, expected: "DisplayName, Id, Balance"},
		{name: "pre-joined string", columns: []string{"Id, DisplayName"}, expected: "Id, DisplayName"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			builder := qbo.NewQueryBuilder("Customer").Select(testCase.columns...)
			assert.Equal(t, testCase.expected, builder.Columns())
			assert.Equal(t, "Select "+testCase.expected+" From Customer", buildQuery(t, builder))
		})
	}
}

func TestQueryBuilder_Pagination(t *testing.T) {
	t.Parallel()

	builder := qbo.NewQueryBuilder("company").Limit(100).Offset(1)
	assert.Equal(t, "Select * From company StartPosition 1 MaxResults 100", buildQuery(t, builder))

	unpaged := qbo.NewQueryBuilder("company")
	assert.Equal(t, "Select * From company", buildQuery(t, unpaged))
	assert.Equal(t, qbo.DefaultMaxResults, unpaged.MaxResults())
	assert.Equal(t, qbo.DefaultStartPosition, unpaged.StartPosition())

	offsetOnly := qbo.NewQueryBuilder("Item").Offset(201)
	assert.Equal(t, "Select * From Item StartPosition 201 MaxResults 100", buildQuery(t, offsetOnly))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFilterClause_Operators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		builder  *qbo.QueryBuilder
		expected string
	}{
		{
			name:     "equals nil",
			builder:  qbo.NewQueryBuilder("Customer").Where("a").Equals(nil),
			expected: "Select * From Customer Where a = ''",
		},
		{
			name:     "equals bool is unquoted",
			builder:  qbo.NewQueryBuilder("Customer").Where("a").Equals(true),
			expected: "Select * From Customer Where a = true",
		},
		{
			name:     "equals string",
			builder:  qbo.NewQueryBuilder("Customer").Where("a").Equals("b"),
			expected: "Select * From Customer Where a = 'b'",
		},
		{
			name:     "equals number is quoted",
			builder:  qbo.NewQueryBuilder("Customer").Where("Id").Equals(42),
			expected: "Select * From Customer Where Id = '42'",
		},
		{
			name:     "contains numbers",
			builder:  qbo.NewQueryBuilder("Customer").Where("a").Contains([]int{1, 2, 3}),
			expected: "Select * From Customer Where a in [1, 2, 3]",
		},
		{
			name:     "contains strings",
			builder:  qbo.NewQueryBuilder("Customer").Where("Id").Contains([]string{"1", "2"}),
			expected: "Select * From Customer Where Id in ['1', '2']",
		},
		{
			name:     "gt numeric string",
			builder:  qbo.NewQueryBuilder("Customer").Where("a").Gt("5"),
			expected: "Select * From Customer Where a > '5'",
		},
		{
			name:     "gte float",
			builder:  qbo.NewQueryBuilder("Invoice").Where("TotalAmt").Gte(10.5),
			expected: "Select * From Invoice Where TotalAmt >= '10.5'",
		},
		{
			name:     "lt and lte",
			builder:  qbo.NewQueryBuilder("Invoice").Where("Balance").Lt(100).Where("TotalAmt").Lte("200"),
			expected: "Select * From Invoice Where Balance < '100' AND TotalAmt <= '200'",
		},
		{
			name: "long comparison names",
			builder: qbo.NewQueryBuilder("Invoice").
				Where("a").GreaterThan(1).
				Where("b").GreaterThanOrEqual(2).
				Where("c").LessThan(3).
				Where("d").LessThanOrEqual(4),
			expected: "Select * From Invoice Where a > '1' AND b >= '2' AND c < '3' AND d <= '4'",
		},
		{
			name:     "like",
			builder:  qbo.NewQueryBuilder("Customer").Where("DisplayName").Like("Ac%"),
			expected: "Select * From Customer Where DisplayName Like 'Ac%'",
		},
		{
			name: "combined",
			builder: qbo.NewQueryBuilder("Customer").
				Select("Id", "DisplayName").
				Where("Active").Equals(true).
				Where("Balance").Gt(0).
				Limit(50).Offset(51),
			expected: "Select Id, DisplayName From Customer Where Active = true AND Balance > '0' StartPosition 51 MaxResults 50",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, buildQuery(t, testCase.builder))
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestQueryBuilder_InvalidQueries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		builder  func() *qbo.QueryBuilder
		contains string
	}{
		{
			name: "incomplete trailing filter",
			builder: func() *qbo.QueryBuilder {
				builder := qbo.NewQueryBuilder("Customer")
				builder.Where("a")

				return builder
			},
			contains: "incomplete filter clause -> a",
		},
		{
			name: "where after incomplete filter",
			builder: func() *qbo.QueryBuilder {
				builder := qbo.NewQueryBuilder("Customer")
				builder.Where("a")

				return builder.Where("b").Equals(1)
			},
			contains: "-> a",
		},
		{
			name: "contains non-list",
			builder: func() *qbo.QueryBuilder {
				return qbo.NewQueryBuilder("Customer").Where("a").Contains("x")
			},
			contains: "list",
		},
		{
			name: "contains nil",
			builder: func() *qbo.QueryBuilder {
				return qbo.NewQueryBuilder("Customer").Where("a").Contains(nil)
			},
			contains: "list",
		},
		{
			name: "gt non-numeric",
			builder: func() *qbo.QueryBuilder {
				return qbo.NewQueryBuilder("Customer").Where("a").Gt("x")
			},
			contains: "numeric",
		},
		{
			name: "lte nil",
			builder: func() *qbo.QueryBuilder {
				return qbo.NewQueryBuilder("Customer").Where("a").Lte(nil)
			},
			contains: "numeric",
		},
		{
			name: "like non-string",
			builder: func() *qbo.QueryBuilder {
				return qbo.NewQueryBuilder("Customer").Where("a").Like(5)
			},
			contains: "string",
		},
		{
			name: "operator applied twice",
			builder: func() *qbo.QueryBuilder {
				clause := qbo.NewQueryBuilder("Customer").Where("a")
				clause.Equals(1)

				return clause.Equals(2)
			},
			contains: "must be preceded by a where clause",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			builder := testCase.builder()

			_, err := builder.Build()
			require.ErrorIs(t, err, qbo.ErrInvalidQuery)
			assert.Contains(t, err.Error(), testCase.contains)
		})
	}
}

func TestQueryBuilder_IncompleteFilterAllowsCountAndPagination(t *testing.T) {
	t.Parallel()

	builder := qbo.NewQueryBuilder("Customer")
	builder.Where("Balance")
	builder.Count().Limit(10).Offset(1)

	require.NoError(t, builder.Err())

	_, err := builder.Build()
	require.ErrorIs(t, err, qbo.ErrInvalidQuery)

	builder.Where("Active")
	require.ErrorIs(t, builder.Err(), qbo.ErrInvalidQuery)
}

func TestQueryBuilder_Count(t *testing.T) {
	t.Parallel()

	builder := qbo.NewQueryBuilder("Invoice").Where("Balance").Gt(0).Count()
	assert.True(t, builder.IsCount())
	assert.Equal(t, "Select count(*) From Invoice Where Balance > '0'", buildQuery(t, builder))

	builder.Select("Id")
	assert.False(t, builder.IsCount())
	assert.Equal(t, "Select Id From Invoice Where Balance > '0'", buildQuery(t, builder))
}

func TestQueryBuilder_BuildIsRepeatable(t *testing.T) {
	t.Parallel()

	builder := qbo.NewQueryBuilder("Vendor").Where("Active").Equals(true)

	first := buildQuery(t, builder)
	second := buildQuery(t, builder)
	assert.Equal(t, first, second)
}

func TestQueryBuilder_FromParts(t *testing.T) {
	t.Parallel()

	builder := qbo.NewQueryBuilderFromParts("Customer", "Id, DisplayName", "Where Active = true AND Balance > '0'", 11, 10)
	assert.Equal(t, []string{"Active = true", "Balance > '0'"}, builder.Filters())
	assert.Equal(t,
		"Select Id, DisplayName From Customer Where Active = true AND Balance > '0' StartPosition 11 MaxResults 10",
		buildQuery(t, builder))

	count := qbo.NewQueryBuilderFromParts("Customer", "count(*)", "", 0, 0)
	assert.True(t, count.IsCount())
	assert.Equal(t, "Select count(*) From Customer", buildQuery(t, count))

	empty := qbo.NewQueryBuilderFromParts("Customer", "", "", 0, 0)
	assert.Equal(t, "Select * From Customer", buildQuery(t, empty))
}

func TestQueryBuilder_Clone(t *testing.T) {
	t.Parallel()

	original := qbo.NewQueryBuilder("Customer").Where("Active").Equals(true)
	clone := original.Clone().Where("Balance").Gt(1).Count()

	assert.Equal(t, "Select * From Customer Where Active = true", buildQuery(t, original))
	assert.Equal(t, "Select count(*) From Customer Where Active = true AND Balance > '1'", buildQuery(t, clone))
	assert.Equal(t, "Customer", clone.Entity())
}
