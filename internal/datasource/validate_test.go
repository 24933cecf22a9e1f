package datasource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasourceNameValidator(t *testing.T) {
	tests := []struct {
		input   string
		isValid bool
	}{
		{input: "my_datasource", isValid: true},
		{input: "empty asset", isValid: true},
		{input: "postgres-prod.01", isValid: true},
		{input: "", isValid: false},
		{input: "   ", isValid: false},
		{input: "a/b", isValid: false},
		{input: strings.Repeat("x", 255), isValid: true},
		{input: strings.Repeat("x", 256), isValid: false},
	}

	for _, test := range tests {
		err := V().Var(test.input, "datasourceName")
		if (err == nil) != test.isValid {
			t.Errorf("Expected %v for input '%s', but got %v", test.isValid, test.input, err == nil)
		}
		assert.Equal(t, test.isValid, ValidateName(test.input) == nil)
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ds := New("ds", "pandas")
		a, err := ds.AddCSVAsset("a1", "x.csv")
		assert.Nil(t, err)
		_, err = a.AddBatchConfig("bc1")
		assert.Nil(t, err)
		assert.Nil(t, ds.Validate())
	})

	t.Run("unnamed config is valid", func(t *testing.T) {
		assert.Nil(t, (&Config{Type: "pandas"}).Validate())
	})

	t.Run("bad name", func(t *testing.T) {
		err := New("a/b", "pandas").Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.ErrorAll(), `invalid datasource name "a/b"`)
	})

	t.Run("missing asset name", func(t *testing.T) {
		ds := New("ds", "pandas")
		ds.Assets = append(ds.Assets, &Asset{Type: "csv"})
		err := ds.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.ErrorAll(), "missing required attribute")
	})

	t.Run("duplicates", func(t *testing.T) {
		ds := New("ds", "pandas")
		ds.Assets = []*Asset{
			{Name: "a1", BatchConfigs: []*BatchConfig{{Name: "bc"}, {Name: "bc"}}},
			{Name: "a1"},
		}
		err := ds.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, ErrAssetAlreadyExists)
		assert.ErrorIs(t, err, ErrBatchConfigAlreadyExists)
	})
}
