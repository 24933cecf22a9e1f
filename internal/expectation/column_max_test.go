package expectation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

func columnMax(t *testing.T, kwargs map[string]any) *ColumnMaxToBeBetween {
	t.Helper()
	e, err := New(&Configuration{ExpectationType: ColumnMaxToBeBetweenType, Kwargs: kwargs})
	require.Nil(t, err)
	return e.(*ColumnMaxToBeBetween)
}

func TestColumnMaxToBeBetween(t *testing.T) {
	tests := []struct {
		name     string
		kwargs   map[string]any
		observed any
		success  bool
	}{
		{"inside", map[string]any{"column": "fare", "min_value": 1, "max_value": 5}, 3.0, true},
		{"at min inclusive", map[string]any{"column": "fare", "min_value": 1, "max_value": 5}, 1.0, true},
		{"at max inclusive", map[string]any{"column": "fare", "min_value": 1, "max_value": 5}, 5.0, true},
		{"at min strict", map[string]any{"column": "fare", "min_value": 1, "max_value": 5, "strict_min": true}, 1.0, false},
		{"at max strict", map[string]any{"column": "fare", "min_value": 1, "max_value": 5, "strict_max": true}, 5.0, false},
		{"below", map[string]any{"column": "fare", "min_value": 1, "max_value": 5}, 0.5, false},
		{"above", map[string]any{"column": "fare", "min_value": 1, "max_value": 5}, 7, false},
		{"only min", map[string]any{"column": "fare", "min_value": 1}, 1000.0, true},
		{"only max", map[string]any{"column": "fare", "max_value": 10}, -3.0, true},
		{"only max exceeded", map[string]any{"column": "fare", "max_value": 10}, 10.5, false},
		{"missing observation", map[string]any{"column": "fare", "min_value": 1}, nil, false},
		{
			"datetime inside",
			map[string]any{"column": "pickup", "min_value": "2019-01-01T00:00:00Z", "max_value": "2019-12-31T23:59:59Z"},
			"2019-06-15T12:00:00Z",
			true,
		},
		{
			"datetime after",
			map[string]any{"column": "pickup", "max_value": "2019-12-31"},
			"2020-01-01T00:00:00Z",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := columnMax(t, tt.kwargs)
			res, err := e.Validate(map[string]any{MetricColumnMax: tt.observed})
			require.Nil(t, err)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.observed, res.ObservedValue)
			assert.Equal(t, ColumnMaxToBeBetweenType, res.Expectation.ExpectationType)
		})
	}
}

func TestColumnMaxToBeBetweenInvalidKwargs(t *testing.T) {
	tests := []struct {
		name   string
		kwargs map[string]any
	}{
		{"no column", map[string]any{"min_value": 1}},
		{"no bounds", map[string]any{"column": "fare"}},
		{"min above max", map[string]any{"column": "fare", "min_value": 5, "max_value": 1}},
		{"mixed kinds", map[string]any{"column": "fare", "min_value": 1, "max_value": "2020-01-01"}},
		{"not a bound", map[string]any{"column": "fare", "min_value": "one"}},
		{"not a bool", map[string]any{"column": "fare", "min_value": 1, "strict_min": "yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&Configuration{ExpectationType: ColumnMaxToBeBetweenType, Kwargs: tt.kwargs})
			require.NotNil(t, err)
			assert.ErrorIs(t, err, ErrInvalidKwargs)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Equal(t, apperrors.KindValue, err.Kind())
		})
	}
}

func TestColumnMaxToBeBetweenMetrics(t *testing.T) {
	e := columnMax(t, map[string]any{"column": "fare", "min_value": 1})
	assert.Equal(t, []string{"column.max"}, e.MetricDependencies())

	_, err := e.Validate(map[string]any{"column.min": 1.0})
	assert.ErrorIs(t, err, ErrMissingMetric)

	_, err = e.Validate(map[string]any{MetricColumnMax: "2020-01-01"})
	assert.ErrorIs(t, err, ErrInvalidMetric)
	assert.Equal(t, apperrors.KindType, apperrors.KindOf(err))

	_, err = e.Validate(map[string]any{MetricColumnMax: []any{1}})
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestColumnMaxToBeBetweenDescribe(t *testing.T) {
	tests := []struct {
		kwargs   map[string]any
		expected string
	}{
		{map[string]any{"column": "fare", "min_value": 1, "max_value": 5}, "fare maximum value must be greater than or equal to 1 and less than or equal to 5."},
		{map[string]any{"column": "fare", "min_value": 1.5, "max_value": 5, "strict_min": true, "strict_max": true}, "fare maximum value must be greater than 1.5 and less than 5."},
		{map[string]any{"column": "fare", "min_value": 2, "max_value": 2}, "fare maximum value must be 2."},
		{map[string]any{"column": "fare", "max_value": 5}, "fare maximum value must be less than or equal to 5."},
		{map[string]any{"column": "fare", "min_value": 0, "strict_min": true}, "fare maximum value must be greater than 0."},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, columnMax(t, tt.kwargs).Describe())
		})
	}
}
