package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/tansive/datasource-store/internal/cloud"
	"github.com/tansive/datasource-store/internal/common/httpclient"
	"github.com/tansive/datasource-store/internal/datasource"
	"github.com/tansive/datasource-store/internal/store"
	"github.com/tansive/datasource-store/internal/store/backend"
)

const cloudRequestTimeout = 30 * time.Second

// openStore builds the datasource store selected by cfg. The returned func
// releases the backend.
func openStore(ctx context.Context, cfg *Config) (*store.DatasourceStore, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("dsctl is not configured")
	}
	noop := func() {}
	switch cfg.Backend {
	case BackendMemory:
		return store.NewDatasourceStore(backend.NewMemory()), noop, nil
	case BackendInline:
		b, err := backend.NewInline(cfg.Inline.ContextRoot, backend.DatasourcesSection)
		if err != nil {
			return nil, nil, err
		}
		return store.NewDatasourceStore(b), noop, nil
	case BackendDatabase:
		d, err := backend.OpenDatabase(ctx, backend.DatabaseOptions{
			Driver: cfg.Database.Driver,
			DSN:    cfg.Database.DSN,
			Table:  cfg.Database.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		return store.NewDatasourceStore(d), func() { d.Close() }, nil
	case BackendCloud:
		client := httpclient.NewHTTPClient(cfg.Cloud.BaseURL,
			httpclient.WithToken(cfg.Cloud.AccessToken),
			httpclient.WithTimeout(cloudRequestTimeout),
			httpclient.WithUserAgent("dsctl/"+Version),
		)
		b, err := cloud.NewBackend(client, cfg.Cloud.OrganizationID, cloud.ResourceDatasource)
		if err != nil {
			return nil, nil, err
		}
		return store.NewDatasourceStore(b), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// The store returns apperrors.Error; these keep a nil result a nil error.

func addByName(ctx context.Context, s *store.DatasourceStore, name string, cfg *datasource.Config) (*datasource.Config, error) {
	saved, err := s.AddByName(ctx, name, cfg)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func updateByName(ctx context.Context, s *store.DatasourceStore, name string, cfg *datasource.Config) (*datasource.Config, error) {
	saved, err := s.UpdateByName(ctx, name, cfg)
	if err != nil {
		return nil, err
	}
	return saved, nil
}
