// Package store persists datasource configurations on a store backend. The
// store is keyed by DataContextVariableKey and holds no state of its own:
// every call goes to the backend.
package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/cloud"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/datasource"
	"github.com/tansive/datasource-store/internal/serializer"
	"github.com/tansive/datasource-store/internal/store/backend"
	"github.com/tansive/datasource-store/internal/store/keys"
)

type DatasourceStore struct {
	backend    backend.Backend
	serializer serializer.Serializer
}

type Option func(*DatasourceStore)

// WithSerializer overrides the serializer used to write configs.
func WithSerializer(s serializer.Serializer) Option {
	return func(ds *DatasourceStore) { ds.serializer = s }
}

// NewDatasourceStore returns a store over b. Unless overridden, inline
// storage gets the YAML-ready serializer, the cloud the named one and other
// backends the plain dict.
func NewDatasourceStore(b backend.Backend, opts ...Option) *DatasourceStore {
	ds := &DatasourceStore{backend: b}
	switch b.Kind() {
	case backend.KindInline:
		ds.serializer = serializer.YAMLReady
	case backend.KindCloud:
		ds.serializer = serializer.Named
	default:
		ds.serializer = serializer.Dict
	}
	for _, opt := range opts {
		opt(ds)
	}
	return ds
}

// CloudMode reports whether the store sits on the cloud API.
func (s *DatasourceStore) CloudMode() bool {
	return s.backend.Kind() == backend.KindCloud
}

func (s *DatasourceStore) Serializer() serializer.Serializer {
	return s.serializer
}

func (s *DatasourceStore) Backend() backend.Backend {
	return s.backend
}

func validateKey(key keys.Key) (keys.DataContextVariableKey, apperrors.Error) {
	k, ok := key.(keys.DataContextVariableKey)
	if !ok {
		return keys.DataContextVariableKey{}, ErrInvalidKeyType
	}
	return k, nil
}

// backendKey translates a store key into the key the backend expects.
func (s *DatasourceStore) backendKey(name, id string) keys.Key {
	if s.CloudMode() {
		return keys.CloudIdentifier{ResourceType: string(cloud.ResourceDatasource), ID: id, ResourceName: name}
	}
	return keys.NewDataContextVariableKey(name)
}

// Set stores cfg under key and returns the config as read back from the
// backend. The key's name replaces the name cfg carries. key may be nil: the
// config's name is used, and on the cloud a new datasource is created.
func (s *DatasourceStore) Set(ctx context.Context, key keys.Key, cfg *datasource.Config) (*datasource.Config, apperrors.Error) {
	var name string
	if key != nil {
		k, err := validateKey(key)
		if err != nil {
			return nil, err
		}
		name = k.ResourceName
	}
	if cfg == nil {
		return nil, ErrMissingDatasource
	}

	c, cerr := cfg.Clone()
	if cerr != nil {
		return nil, cerr
	}
	// a key names the datasource, whatever name the config carries; an id
	// read under another name belongs to that other datasource
	if name == "" {
		name = c.Name
	} else if c.Name != name {
		if c.Name != "" {
			c.ID = ""
		}
		c.Name = name
		c.Rebind()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var bkey keys.Key
	switch {
	case name == "" && !s.CloudMode():
		return nil, ErrMissingDatasourceName
	case key == nil && s.CloudMode() && c.ID == "":
		// server assigned identity
	default:
		bkey = s.backendKey(name, c.ID)
	}

	value, err := s.serializer.Serialize(c)
	if err != nil {
		return nil, ErrStoreError.Err(err)
	}
	stored, aerr := s.backend.Set(ctx, bkey, value)
	if aerr != nil {
		log.Ctx(ctx).Error().Err(aerr).Str("datasource", name).Str("backend", string(s.backend.Kind())).Msg("unable to store datasource")
		return nil, aerr
	}
	log.Ctx(ctx).Debug().Str("datasource", name).Str("backend", string(s.backend.Kind())).Msg("stored datasource")
	return s.decode(stored, name)
}

// Get returns the datasource stored under key.
func (s *DatasourceStore) Get(ctx context.Context, key keys.Key) (*datasource.Config, apperrors.Error) {
	k, err := validateKey(key)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, k.ResourceName, "")
}

func (s *DatasourceStore) get(ctx context.Context, name, id string) (*datasource.Config, apperrors.Error) {
	m, err := s.backend.Get(ctx, s.backendKey(name, id))
	if err != nil {
		if errors.Is(err, backend.ErrKeyNotFound) {
			return nil, notFound(name, err)
		}
		return nil, err
	}
	return s.decode(m, name)
}

func (s *DatasourceStore) decode(m map[string]any, name string) (*datasource.Config, apperrors.Error) {
	cfg, err := datasource.FromMap(m)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = name
		cfg.Rebind()
	}
	return cfg, nil
}

// Delete removes the datasource identified by cfg's name, or by its id on
// the cloud.
func (s *DatasourceStore) Delete(ctx context.Context, cfg *datasource.Config) apperrors.Error {
	if cfg == nil {
		return ErrMissingDatasource
	}
	if cfg.Name == "" && (!s.CloudMode() || cfg.ID == "") {
		return ErrMissingDatasourceName
	}
	if err := s.backend.Delete(ctx, s.backendKey(cfg.Name, cfg.ID)); err != nil {
		if errors.Is(err, backend.ErrKeyNotFound) {
			return notFound(cfg.Name, err)
		}
		return err
	}
	log.Ctx(ctx).Debug().Str("datasource", cfg.Name).Str("backend", string(s.backend.Kind())).Msg("deleted datasource")
	return nil
}

// ListKeys returns a key for every stored datasource.
func (s *DatasourceStore) ListKeys(ctx context.Context) ([]keys.DataContextVariableKey, apperrors.Error) {
	bkeys, err := s.backend.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	ks := make([]keys.DataContextVariableKey, 0, len(bkeys))
	for _, bk := range bkeys {
		switch k := bk.(type) {
		case keys.DataContextVariableKey:
			ks = append(ks, k)
		case keys.CloudIdentifier:
			ks = append(ks, keys.NewDataContextVariableKey(k.ResourceName))
		default:
			ks = append(ks, keys.NewDataContextVariableKey(bk.String()))
		}
	}
	return ks, nil
}

func (s *DatasourceStore) Has(ctx context.Context, key keys.Key) (bool, apperrors.Error) {
	k, err := validateKey(key)
	if err != nil {
		return false, err
	}
	return s.backend.Has(ctx, s.backendKey(k.ResourceName, ""))
}

// AddByName stores cfg under name.
func (s *DatasourceStore) AddByName(ctx context.Context, name string, cfg *datasource.Config) (*datasource.Config, apperrors.Error) {
	if err := datasource.ValidateName(name); err != nil {
		return nil, err
	}
	return s.Set(ctx, keys.NewDataContextVariableKey(name), cfg)
}

// UpdateByName replaces the datasource stored under name. It fails, leaving
// the store untouched, when there is none.
func (s *DatasourceStore) UpdateByName(ctx context.Context, name string, cfg *datasource.Config) (*datasource.Config, apperrors.Error) {
	key := keys.NewDataContextVariableKey(name)
	ok, err := s.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(name, nil)
	}
	return s.Set(ctx, key, cfg)
}

func (s *DatasourceStore) RetrieveByName(ctx context.Context, name string) (*datasource.Config, apperrors.Error) {
	return s.Get(ctx, keys.NewDataContextVariableKey(name))
}

// AddBatchConfig attaches bc to the asset it is bound to and persists the
// datasource. It returns the batch config as stored.
func (s *DatasourceStore) AddBatchConfig(ctx context.Context, bc *datasource.BatchConfig) (*datasource.BatchConfig, apperrors.Error) {
	if bc == nil {
		return nil, datasource.ErrInvalidConfig.Msg("batch config is required")
	}
	ref, err := bc.DataAsset()
	if err != nil {
		return nil, err
	}
	cfg, err := s.RetrieveByName(ctx, ref.Datasource)
	if err != nil {
		return nil, err
	}
	asset, err := cfg.GetAsset(ref.Asset)
	if err != nil {
		return nil, err
	}
	if err := asset.AttachBatchConfig(bc); err != nil {
		return nil, err
	}
	updated, err := s.Set(ctx, keys.NewDataContextVariableKey(ref.Datasource), cfg)
	if err != nil {
		return nil, err
	}
	asset, err = updated.GetAsset(ref.Asset)
	if err != nil {
		return nil, err
	}
	return asset.GetBatchConfig(bc.Name)
}

// DeleteBatchConfig detaches bc from the asset it is bound to and persists
// the datasource.
func (s *DatasourceStore) DeleteBatchConfig(ctx context.Context, bc *datasource.BatchConfig) apperrors.Error {
	if bc == nil {
		return datasource.ErrInvalidConfig.Msg("batch config is required")
	}
	ref, err := bc.DataAsset()
	if err != nil {
		return err
	}
	cfg, err := s.RetrieveByName(ctx, ref.Datasource)
	if err != nil {
		return err
	}
	asset, err := cfg.GetAsset(ref.Asset)
	if err != nil {
		return err
	}
	if err := asset.DeleteBatchConfig(bc); err != nil {
		return err
	}
	_, err = s.Set(ctx, keys.NewDataContextVariableKey(ref.Datasource), cfg)
	return err
}
