// Package datasource holds the typed configuration of a datasource: the
// execution engine it runs on, its block-style data connectors and its
// fluent-style assets with their batch configs.
package datasource

import (
	json "github.com/json-iterator/go"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

// Config describes where and how a datasource reads data. The Name may be
// empty while the config sits in storage that keys entries by name.
type Config struct {
	ID              string                    `json:"id,omitempty"`
	Name            string                    `json:"name,omitempty" validate:"omitempty,datasourceName"`
	Type            string                    `json:"type,omitempty"`
	ClassName       string                    `json:"class_name,omitempty"`
	ModuleName      string                    `json:"module_name,omitempty"`
	ExecutionEngine map[string]any            `json:"execution_engine,omitempty"`
	DataConnectors  map[string]map[string]any `json:"data_connectors,omitempty"`
	Assets          []*Asset                  `json:"assets,omitempty" validate:"dive"`
}

// New returns an empty fluent datasource of the given type.
func New(name, dsType string) *Config {
	return &Config{Name: name, Type: dsType}
}

// FromMap builds a Config from its mapping representation, as produced by a
// serializer or read back from a store backend.
func FromMap(m map[string]any) (*Config, apperrors.Error) {
	if m == nil {
		return nil, ErrUnableToDecode.Msg("empty datasource configuration")
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, ErrUnableToDecode.Err(err)
	}
	return FromJSON(b)
}

// FromJSON builds a Config from its JSON encoding.
func FromJSON(b []byte) (*Config, apperrors.Error) {
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, ErrUnableToDecode.MsgErr("unable to decode datasource configuration: "+err.Error(), err)
	}
	c.bind()
	return &c, nil
}

// ToMap returns the mapping representation of the config. Values are
// normalized to what a JSON decoder produces: numbers become float64,
// objects map[string]any and arrays []any.
func (c *Config) ToMap() (map[string]any, apperrors.Error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, ErrUnableToEncode.Err(err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, ErrUnableToEncode.Err(err)
	}
	return m, nil
}

// Clone returns a deep copy of the config. It fails when the config holds a
// value with no JSON encoding, such as NaN.
func (c *Config) Clone() (*Config, apperrors.Error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, ErrUnableToEncode.Err(err)
	}
	var cp Config
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, ErrUnableToDecode.Err(err)
	}
	cp.bind()
	return &cp, nil
}

// EngineClassName returns execution_engine.class_name, if set.
func (c *Config) EngineClassName() string {
	if c.ExecutionEngine == nil {
		return ""
	}
	s, _ := c.ExecutionEngine["class_name"].(string)
	return s
}

// Kind reports a short description of the datasource for listings.
func (c *Config) Kind() string {
	switch {
	case c.Type != "":
		return c.Type
	case c.ClassName != "":
		return c.ClassName
	default:
		return "Datasource"
	}
}

// AddAsset appends a new asset. Asset names are unique within a datasource.
func (c *Config) AddAsset(name, assetType string, options map[string]any) (*Asset, apperrors.Error) {
	if _, err := c.GetAsset(name); err == nil {
		return nil, ErrAssetAlreadyExists.Msgf("asset %q already exists on datasource %q", name, c.Name)
	}
	a := &Asset{
		Name:    name,
		Type:    assetType,
		Options: options,
	}
	c.Assets = append(c.Assets, a)
	c.bind()
	return a, nil
}

// AddCSVAsset is AddAsset for a csv asset reading from path.
func (c *Config) AddCSVAsset(name, path string) (*Asset, apperrors.Error) {
	return c.AddAsset(name, "csv", map[string]any{"filepath_or_buffer": path})
}

// GetAsset returns the named asset.
func (c *Config) GetAsset(name string) (*Asset, apperrors.Error) {
	c.bind()
	for _, a := range c.Assets {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, ErrAssetNotFound.Msgf("asset %q not found on datasource %q", name, c.Name)
}

// DeleteAsset removes the named asset.
func (c *Config) DeleteAsset(name string) apperrors.Error {
	for i, a := range c.Assets {
		if a.Name == name {
			c.Assets = append(c.Assets[:i], c.Assets[i+1:]...)
			return nil
		}
	}
	return ErrAssetNotFound.Msgf("asset %q not found on datasource %q", name, c.Name)
}

// AssetNames returns the asset names in order.
func (c *Config) AssetNames() []string {
	names := make([]string, 0, len(c.Assets))
	for _, a := range c.Assets {
		names = append(names, a.Name)
	}
	return names
}

// bind points every asset and batch config back at its owners.
func (c *Config) bind() {
	for _, a := range c.Assets {
		if a == nil {
			continue
		}
		a.datasource = c.Name
		for _, bc := range a.BatchConfigs {
			if bc == nil {
				continue
			}
			bc.datasource = c.Name
			bc.asset = a.Name
		}
	}
}

// Rebind refreshes asset and batch config bindings after the name changed.
func (c *Config) Rebind() {
	c.bind()
}
