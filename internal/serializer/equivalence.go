package serializer

import (
	"bytes"

	"github.com/tansive/datasource-store/internal/datasource"
)

// Equivalent reports whether a serialized with sa and b serialized with sb
// produce identical representations.
func Equivalent(a *datasource.Config, sa Serializer, b *datasource.Config, sb Serializer) (bool, error) {
	ra, err := sa.Serialize(a)
	if err != nil {
		return false, err
	}
	rb, err := sb.Serialize(b)
	if err != nil {
		return false, err
	}
	ca, err := Canonical(ra)
	if err != nil {
		return false, err
	}
	cb, err := Canonical(rb)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ca, cb), nil
}

// AllEquivalent checks that every consecutive pair of configs is equivalent,
// configs[i] being serialized with serializers[i]. With no serializers, Dict
// is used for every config.
func AllEquivalent(configs []*datasource.Config, serializers []Serializer) (bool, error) {
	if len(configs) < 2 {
		return false, ErrEquivalenceArgs.Msg("at least two configurations are required")
	}
	if len(serializers) == 0 {
		serializers = make([]Serializer, len(configs))
		for i := range serializers {
			serializers[i] = Dict
		}
	}
	if len(serializers) != len(configs) {
		return false, ErrEquivalenceArgs.Msgf("got %d serializers for %d configurations", len(serializers), len(configs))
	}
	for i := 1; i < len(configs); i++ {
		ok, err := Equivalent(configs[i-1], serializers[i-1], configs[i], serializers[i])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
