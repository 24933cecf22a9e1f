// Package serializer turns datasource configurations into the mapping shapes
// used by the different stores: a plain dict, a YAML-ready dict that leaves
// out names implied by the storage key, JSON, and a named dict for the cloud
// API.
package serializer

import (
	"github.com/anand-gl/jsoncanonicalizer"
	json "github.com/json-iterator/go"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/datasource"
)

// Serializer produces one representation of a datasource config.
type Serializer interface {
	Name() string
	Serialize(cfg *datasource.Config) (map[string]any, error)
}

var (
	// Dict is the full mapping of the config.
	Dict Serializer = dictSerializer{}
	// YAMLReady omits the datasource name and the data connector names.
	YAMLReady Serializer = yamlReadySerializer{}
	// JSON is the full mapping normalized to JSON values.
	JSON = jsonSerializer{}
	// Named always carries the datasource name.
	Named Serializer = namedSerializer{}
)

type dictSerializer struct{}

func (dictSerializer) Name() string { return "dict" }

func (dictSerializer) Serialize(cfg *datasource.Config) (map[string]any, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	m, err := cfg.ToMap()
	if err != nil {
		return nil, ErrSerializationFailed.Err(err)
	}
	return m, nil
}

type yamlReadySerializer struct{}

func (yamlReadySerializer) Name() string { return "yaml_ready_dict" }

func (yamlReadySerializer) Serialize(cfg *datasource.Config) (map[string]any, error) {
	m, err := Dict.Serialize(cfg)
	if err != nil {
		return nil, err
	}
	delete(m, "name")
	if connectors, ok := m["data_connectors"].(map[string]any); ok {
		for _, c := range connectors {
			if opts, ok := c.(map[string]any); ok {
				delete(opts, "name")
			}
		}
	}
	return m, nil
}

type jsonSerializer struct{}

func (jsonSerializer) Name() string { return "json" }

func (jsonSerializer) Serialize(cfg *datasource.Config) (map[string]any, error) {
	return Dict.Serialize(cfg)
}

// Marshal returns the RFC 8785 canonical JSON encoding of the config.
func (s jsonSerializer) Marshal(cfg *datasource.Config) ([]byte, error) {
	m, err := s.Serialize(cfg)
	if err != nil {
		return nil, err
	}
	return Canonical(m)
}

type namedSerializer struct{}

func (namedSerializer) Name() string { return "named" }

func (namedSerializer) Serialize(cfg *datasource.Config) (map[string]any, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Name == "" {
		return nil, ErrMissingName
	}
	m, err := Dict.Serialize(cfg)
	if err != nil {
		return nil, err
	}
	m["name"] = cfg.Name
	return m, nil
}

// Canonical encodes v as canonical JSON so that equal values always produce
// equal bytes.
func Canonical(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, ErrSerializationFailed.Err(err)
	}
	c, err := jsoncanonicalizer.Transform(b)
	if err != nil {
		return nil, ErrSerializationFailed.Err(err)
	}
	return c, nil
}

// ByName returns the serializer with the given name.
func ByName(name string) (Serializer, apperrors.Error) {
	switch name {
	case "", Dict.Name():
		return Dict, nil
	case YAMLReady.Name():
		return YAMLReady, nil
	case JSON.Name():
		return JSON, nil
	case Named.Name():
		return Named, nil
	}
	return nil, ErrUnknownSerializer.Msgf("unknown serializer %q", name)
}
