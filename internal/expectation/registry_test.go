package expectation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.Contains(t, Types(), ColumnMaxToBeBetweenType)

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = New(&Configuration{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = New(&Configuration{ExpectationType: "expect_column_to_exist"})
	assert.ErrorIs(t, err, ErrUnknownExpectationType)
	assert.Equal(t, `unknown expectation type "expect_column_to_exist"`, err.Error())
}

func TestConfigurationFromJSON(t *testing.T) {
	cfg, err := ConfigurationFromJSON([]byte(`{
		"expectation_type": "expect_column_max_to_be_between",
		"kwargs": {"column": "passenger_count", "min_value": 1, "max_value": 6},
		"meta": {"notes": "taxi"}
	}`))
	require.Nil(t, err)
	assert.Equal(t, "passenger_count", cfg.Kwargs["column"])
	assert.Equal(t, "taxi", cfg.Meta["notes"])

	e, err := New(cfg)
	require.Nil(t, err)
	assert.Equal(t, ColumnMaxToBeBetweenType, e.Type())
	assert.Same(t, cfg, e.Configuration())
	res, err := e.Validate(map[string]any{MetricColumnMax: 6})
	require.Nil(t, err)
	assert.True(t, res.Success)

	_, err = ConfigurationFromJSON([]byte(`{"kwargs": {}}`))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = ConfigurationFromJSON([]byte(`[`))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
