package commands

import (
	"testing"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestApplyFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		expressions []string
		expected    string
	}{
		{
			name:        "no filters",
			expressions: nil,
			expected:    "Select * From Customer",
		},
		{
			name:        "boolean equality",
			expressions: []string{"Active=true"},
			expected:    "Select * From Customer Where Active = true",
		},
		{
			name:        "string equality",
			expressions: []string{"DisplayName = Acme"},
			expected:    "Select * From Customer Where DisplayName = 'Acme'",
		},
		{
			name:        "membership",
			expressions: []string{"Id=[1, 2]"},
			expected:    "Select * From Customer Where Id in ['1', '2']",
		},
		{
			name:        "empty membership",
			expressions: []string{"Id=[]"},
			expected:    "Select * From Customer Where Id in []",
		},
		{
			name:        "comparisons",
			expressions: []string{"Balance>0", "Balance>=1", "Balance<100", "Balance<=99.5"},
			expected: "Select * From Customer Where Balance > '0' AND Balance >= '1' AND " +
				"Balance < '100' AND Balance <= '99.5'",
		},
		{
			name:        "like",
			expressions: []string{"DisplayName~Ac%"},
			expected:    "Select * From Customer Where DisplayName Like 'Ac%'",
		},
		{
			name:        "empty like pattern",
			expressions: []string{"DisplayName~"},
			expected:    "Select * From Customer Where DisplayName Like ''",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			builder := qbo.NewQueryBuilder("Customer")
			require.NoError(t, applyFilters(builder, testCase.expressions))

			query, err := builder.Build()
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, query)
		})
	}
}

func TestApplyFilters_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expression string
		expected   error
	}{
		{expression: "noop", expected: constants.ErrInvalidFilter},
		{expression: "=value", expected: constants.ErrInvalidFilter},
		{expression: "Name!=Acme", expected: constants.ErrInvalidFilter},
		{expression: "Balance>abc", expected: qbo.ErrInvalidQuery},
		{expression: "Balance<=", expected: qbo.ErrInvalidQuery},
	}

	for _, testCase := range tests {
		t.Run(testCase.expression, func(t *testing.T) {
			t.Parallel()

			err := applyFilters(qbo.NewQueryBuilder("Customer"), []string{testCase.expression})
			require.ErrorIs(t, err, testCase.expected)
		})
	}
}

func TestSplitFilter(t *testing.T) {
	t.Parallel()

	column, operator, value, err := splitFilter(" TxnDate >= 2024-01-01 ")
	require.NoError(t, err)
	assert.Equal(t, "TxnDate", column)
	assert.Equal(t, ">=", operator)
	assert.Equal(t, "2024-01-01", value)

	column, operator, value, err = splitFilter("Name=a=b")
	require.NoError(t, err)
	assert.Equal(t, "Name", column)
	assert.Equal(t, "=", operator)
	assert.Equal(t, "a=b", value)
}

func TestParseScalar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, true, parseScalar("true"))
	assert.Equal(t, false, parseScalar("false"))
	assert.Equal(t, "True", parseScalar("True"))
	assert.Equal(t, "42", parseScalar("42"))
}
