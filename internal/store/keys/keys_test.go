package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name  string
		key   Key
		tuple []string
		str   string
	}{
		{name: "data context variable", key: NewDataContextVariableKey("my_datasource"), tuple: []string{"my_datasource"}, str: "my_datasource"},
		{name: "cloud identifier", key: CloudIdentifier{ResourceType: "datasource", ID: "123", ResourceName: "ds"}, tuple: []string{"datasource", "123", "ds"}, str: "datasource/123/ds"},
		{name: "cloud identifier without id", key: CloudIdentifier{ResourceType: "datasource", ResourceName: "ds"}, tuple: []string{"datasource", "", "ds"}, str: "datasource//ds"},
		{name: "tuple", key: NewTupleKey("a", "b"), tuple: []string{"a", "b"}, str: "a.b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tuple, tt.key.ToTuple())
			assert.Equal(t, tt.str, tt.key.String())
		})
	}

	t.Run("tuple is a copy", func(t *testing.T) {
		k := NewTupleKey("a")
		tup := k.ToTuple()
		tup[0] = "b"
		assert.Equal(t, "a", k[0])
	})

	t.Run("keys are comparable", func(t *testing.T) {
		assert.Equal(t, NewDataContextVariableKey("x"), DataContextVariableKey{ResourceName: "x"})
		set := map[DataContextVariableKey]bool{NewDataContextVariableKey("x"): true}
		assert.True(t, set[DataContextVariableKey{ResourceName: "x"}])
	})
}
