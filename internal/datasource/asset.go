package datasource

import (
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

// Asset is a fluent-style data asset owned by a datasource.
type Asset struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name" validate:"required,notBlank"`
	Type         string         `json:"type,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
	BatchConfigs []*BatchConfig `json:"batch_configs,omitempty" validate:"dive"`

	datasource string
}

// Datasource returns the name of the datasource the asset belongs to.
func (a *Asset) Datasource() string {
	return a.datasource
}

// NewBatchConfig returns a batch config bound to this asset but not yet
// attached to it.
func (a *Asset) NewBatchConfig(name string) *BatchConfig {
	return NewBatchConfig(a.datasource, a.Name, name)
}

// AddBatchConfig creates a batch config with the given name and attaches it.
func (a *Asset) AddBatchConfig(name string) (*BatchConfig, apperrors.Error) {
	bc := a.NewBatchConfig(name)
	if err := a.AttachBatchConfig(bc); err != nil {
		return nil, err
	}
	return bc, nil
}

// AttachBatchConfig appends bc to the asset's batch configs. The asset is
// left unchanged when a batch config with the same name is already attached.
func (a *Asset) AttachBatchConfig(bc *BatchConfig) apperrors.Error {
	if bc == nil || bc.Name == "" {
		return ErrInvalidConfig.Msg("batch config name is required")
	}
	if a.indexOf(bc.Name) >= 0 {
		return ErrBatchConfigAlreadyExists.Msgf("batch config named %q already exists on asset %q", bc.Name, a.Name)
	}
	bc.datasource = a.datasource
	bc.asset = a.Name
	a.BatchConfigs = append(a.BatchConfigs, bc)
	return nil
}

// DeleteBatchConfig detaches the batch config with bc's name. The asset is
// left unchanged when no such batch config is attached.
func (a *Asset) DeleteBatchConfig(bc *BatchConfig) apperrors.Error {
	if bc == nil {
		return ErrInvalidConfig.Msg("batch config is required")
	}
	i := a.indexOf(bc.Name)
	if i < 0 {
		return ErrBatchConfigDoesNotExist.Msgf("batch config named %q does not exist on asset %q", bc.Name, a.Name)
	}
	a.BatchConfigs = append(a.BatchConfigs[:i], a.BatchConfigs[i+1:]...)
	return nil
}

// GetBatchConfig returns the attached batch config with the given name.
func (a *Asset) GetBatchConfig(name string) (*BatchConfig, apperrors.Error) {
	i := a.indexOf(name)
	if i < 0 {
		return nil, ErrBatchConfigDoesNotExist.Msgf("batch config named %q does not exist on asset %q", name, a.Name)
	}
	return a.BatchConfigs[i], nil
}

func (a *Asset) indexOf(name string) int {
	for i, bc := range a.BatchConfigs {
		if bc != nil && bc.Name == name {
			return i
		}
	}
	return -1
}

// BatchConfig is a named description of how to slice an asset into a batch.
type BatchConfig struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name" validate:"required,notBlank"`
	Partitioner map[string]any `json:"partitioner,omitempty"`

	datasource string
	asset      string
}

// AssetRef identifies the asset a batch config is bound to.
type AssetRef struct {
	Datasource string
	Asset      string
}

// NewBatchConfig returns a batch config bound to the named asset.
func NewBatchConfig(datasourceName, assetName, name string) *BatchConfig {
	return &BatchConfig{
		Name:       name,
		datasource: datasourceName,
		asset:      assetName,
	}
}

// DataAsset returns the asset the batch config is bound to.
func (b *BatchConfig) DataAsset() (AssetRef, apperrors.Error) {
	if b.datasource == "" || b.asset == "" {
		return AssetRef{}, ErrUnboundBatchConfig.Msgf("batch config %q is not bound to a data asset", b.Name)
	}
	return AssetRef{Datasource: b.datasource, Asset: b.asset}, nil
}
