package store

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/datasource-store/internal/cloud"
	"github.com/tansive/datasource-store/internal/cloudsrv"
	"github.com/tansive/datasource-store/internal/cloudsrv/config"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/common/httpclient"
	"github.com/tansive/datasource-store/internal/datasource"
	"github.com/tansive/datasource-store/internal/serializer"
	"github.com/tansive/datasource-store/internal/store/backend"
	"github.com/tansive/datasource-store/internal/store/keys"
	"gopkg.in/yaml.v3"
)

const testOrg = "0ccac18e-7631-4bdd-8a42-3c35cce574c6"

func newCloudBackend(t *testing.T) *cloud.Backend {
	t.Helper()
	s, err := cloudsrv.CreateNewServer()
	require.NoError(t, err)
	s.MountHandlers()
	client := httpclient.NewHTTPClient("http://cloud.test", httpclient.WithToken(config.Config().AccessToken), httpclient.WithHandler(s.Router))
	b, aerr := cloud.NewBackend(client, testOrg, cloud.ResourceDatasource)
	require.Nil(t, aerr)
	return b
}

func newInlineBackend(t *testing.T) *backend.Inline {
	t.Helper()
	b, err := backend.NewInline(t.TempDir(), backend.DatasourcesSection)
	require.Nil(t, err)
	return b
}

func newDatabaseBackend(t *testing.T) *backend.Database {
	t.Helper()
	d, err := backend.OpenDatabase(context.Background(), backend.DatabaseOptions{Driver: backend.DriverSQLite, DSN: ":memory:"})
	require.Nil(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

var storeFactories = map[string]func(t *testing.T) *DatasourceStore{
	"memory":   func(t *testing.T) *DatasourceStore { return NewDatasourceStore(backend.NewMemory()) },
	"inline":   func(t *testing.T) *DatasourceStore { return NewDatasourceStore(newInlineBackend(t)) },
	"database": func(t *testing.T) *DatasourceStore { return NewDatasourceStore(newDatabaseBackend(t)) },
	"cloud":    func(t *testing.T) *DatasourceStore { return NewDatasourceStore(newCloudBackend(t)) },
}

func pandasDatasource(t *testing.T, name string) *datasource.Config {
	t.Helper()
	ds := datasource.New(name, "pandas")
	a, err := ds.AddCSVAsset("my_csv_asset", "data/taxi.csv")
	require.Nil(t, err)
	_, err = a.AddBatchConfig("monthly")
	require.Nil(t, err)
	return ds
}

func blockDatasource(name string) *datasource.Config {
	return &datasource.Config{
		Name:      name,
		ClassName: "Datasource",
		ExecutionEngine: map[string]any{
			"class_name": "PandasExecutionEngine",
		},
		DataConnectors: map[string]map[string]any{
			"tripdata_monthly_configured": {
				"name":           "tripdata_monthly_configured",
				"class_name":     "ConfiguredAssetFilesystemDataConnector",
				"base_directory": "/path/to/trip_data",
				"assets": map[string]any{
					"yellow": map[string]any{
						"pattern":     `yellow_tripdata_(\d{4})-(\d{2})\.csv$`,
						"group_names": []any{"year", "month"},
					},
				},
			},
		},
	}
}

// roundTripSerializer is the serializer under which a stored config and its
// retrieved copy must be equivalent.
func roundTripSerializer(s *DatasourceStore) serializer.Serializer {
	if s.Backend().Kind() == backend.KindInline {
		return serializer.YAMLReady
	}
	return serializer.Dict
}

func assertRoundTrip(t *testing.T, s *DatasourceStore, want, got *datasource.Config) {
	t.Helper()
	if s.CloudMode() {
		assert.NotEmpty(t, got.ID)
		var err error
		got, err = got.Clone()
		require.Nil(t, err)
		got.ID = ""
	}
	sz := roundTripSerializer(s)
	ok, err := serializer.Equivalent(want, sz, got, sz)
	require.NoError(t, err)
	assert.True(t, ok, "retrieved config differs from the stored one")
}

func TestDefaultSerializer(t *testing.T) {
	assert.Equal(t, serializer.Dict, NewDatasourceStore(backend.NewMemory()).Serializer())
	assert.Equal(t, serializer.YAMLReady, NewDatasourceStore(newInlineBackend(t)).Serializer())
	assert.Equal(t, serializer.Named, NewDatasourceStore(newCloudBackend(t)).Serializer())
	assert.Equal(t, serializer.JSON.Name(), NewDatasourceStore(backend.NewMemory(), WithSerializer(serializer.JSON)).Serializer().Name())
	assert.True(t, NewDatasourceStore(newCloudBackend(t)).CloudMode())
	assert.False(t, NewDatasourceStore(backend.NewMemory()).CloudMode())
}

func TestStoreRoundTrip(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			for _, ds := range []*datasource.Config{pandasDatasource(t, "my_pandas"), blockDatasource("my_block")} {
				key := keys.NewDataContextVariableKey(ds.Name)
				stored, err := s.Set(ctx, key, ds)
				require.Nil(t, err)
				assertRoundTrip(t, s, ds, stored)

				got, err := s.Get(ctx, key)
				require.Nil(t, err)
				assert.Equal(t, ds.Name, got.Name)
				assertRoundTrip(t, s, ds, got)

				// retrieved assets stay bound to the datasource
				for _, a := range got.Assets {
					assert.Equal(t, ds.Name, a.Datasource())
				}
			}

			ks, err := s.ListKeys(ctx)
			require.Nil(t, err)
			assert.ElementsMatch(t, []keys.DataContextVariableKey{
				keys.NewDataContextVariableKey("my_pandas"),
				keys.NewDataContextVariableKey("my_block"),
			}, ks)
		})
	}
}

func TestStoreAddListDelete(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			ks, err := s.ListKeys(ctx)
			require.Nil(t, err)
			assert.Empty(t, ks)

			added, err := s.AddByName(ctx, "my_datasource", pandasDatasource(t, ""))
			require.Nil(t, err)
			assert.Equal(t, "my_datasource", added.Name)

			ks, err = s.ListKeys(ctx)
			require.Nil(t, err)
			assert.Equal(t, []keys.DataContextVariableKey{keys.NewDataContextVariableKey("my_datasource")}, ks)

			ok, err := s.Has(ctx, keys.NewDataContextVariableKey("my_datasource"))
			require.Nil(t, err)
			assert.True(t, ok)

			got, err := s.RetrieveByName(ctx, "my_datasource")
			require.Nil(t, err)
			require.Nil(t, s.Delete(ctx, got))

			ks, err = s.ListKeys(ctx)
			require.Nil(t, err)
			assert.Empty(t, ks)

			ok, err = s.Has(ctx, keys.NewDataContextVariableKey("my_datasource"))
			require.Nil(t, err)
			assert.False(t, ok)

			err = s.Delete(ctx, got)
			assert.ErrorIs(t, err, ErrDatasourceNotFound)
		})
	}
}

func TestKeyNameOverridesConfigName(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.AddByName(ctx, "taxi_ds", pandasDatasource(t, "taxi_ds"))
			require.Nil(t, err)

			added, err := s.AddByName(ctx, "other_ds", pandasDatasource(t, "taxi_ds"))
			require.Nil(t, err)
			assert.Equal(t, "other_ds", added.Name)

			got, err := s.RetrieveByName(ctx, "other_ds")
			require.Nil(t, err)
			assert.Equal(t, "other_ds", got.Name)
			for _, a := range got.Assets {
				assert.Equal(t, "other_ds", a.Datasource())
			}

			ks, err := s.ListKeys(ctx)
			require.Nil(t, err)
			assert.ElementsMatch(t, []keys.DataContextVariableKey{
				keys.NewDataContextVariableKey("taxi_ds"),
				keys.NewDataContextVariableKey("other_ds"),
			}, ks)

			updated := pandasDatasource(t, "taxi_ds")
			_, aerr := updated.AddCSVAsset("second_asset", "data/second.csv")
			require.Nil(t, aerr)
			got, err = s.UpdateByName(ctx, "other_ds", updated)
			require.Nil(t, err)
			assert.Equal(t, "other_ds", got.Name)
			assert.Equal(t, []string{"my_csv_asset", "second_asset"}, got.AssetNames())

			taxi, err := s.RetrieveByName(ctx, "taxi_ds")
			require.Nil(t, err)
			assert.Equal(t, "taxi_ds", taxi.Name)
			assert.Equal(t, []string{"my_csv_asset"}, taxi.AssetNames())

			// a config read under one name and stored under another is a copy
			copied, err := s.Set(ctx, keys.NewDataContextVariableKey("copy_ds"), taxi)
			require.Nil(t, err)
			assert.Equal(t, "copy_ds", copied.Name)
			if s.CloudMode() {
				assert.NotEqual(t, taxi.ID, copied.ID)
			}
			taxi, err = s.RetrieveByName(ctx, "taxi_ds")
			require.Nil(t, err)
			assert.Equal(t, "taxi_ds", taxi.Name)

			ks, err = s.ListKeys(ctx)
			require.Nil(t, err)
			assert.Len(t, ks, 3)
		})
	}
}

func TestUnencodableConfigIsNotStored(t *testing.T) {
	ctx := context.Background()
	s := NewDatasourceStore(backend.NewMemory())
	ds := pandasDatasource(t, "my_pandas")
	ds.ExecutionEngine = map[string]any{"sample_ratio": math.NaN()}

	_, err := s.AddByName(ctx, "my_pandas", ds)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, datasource.ErrUnableToEncode)

	ks, err := s.ListKeys(ctx)
	require.Nil(t, err)
	assert.Empty(t, ks)
}

func TestStoreNotFound(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.RetrieveByName(ctx, "missing")
			require.NotNil(t, err)
			assert.ErrorIs(t, err, ErrDatasourceNotFound)
			assert.ErrorIs(t, err, backend.ErrKeyNotFound)
			assert.Equal(t, "Could not find an existing Datasource named missing.", err.Error())
			assert.Equal(t, apperrors.KindNotFound, err.Kind())
		})
	}
}

func TestUpdateByName(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.AddByName(ctx, "existing", pandasDatasource(t, "existing"))
			require.Nil(t, err)
			before, err := s.ListKeys(ctx)
			require.Nil(t, err)

			_, err = s.UpdateByName(ctx, "my_datasource", pandasDatasource(t, "my_datasource"))
			require.NotNil(t, err)
			assert.ErrorIs(t, err, ErrDatasourceNotFound)
			assert.Equal(t, "Could not find an existing Datasource named my_datasource.", err.Error())

			after, err := s.ListKeys(ctx)
			require.Nil(t, err)
			assert.Equal(t, before, after)

			updated := pandasDatasource(t, "existing")
			_, aerr := updated.AddCSVAsset("second_asset", "data/second.csv")
			require.Nil(t, aerr)
			got, err := s.UpdateByName(ctx, "existing", updated)
			require.Nil(t, err)
			assert.Equal(t, []string{"my_csv_asset", "second_asset"}, got.AssetNames())

			got, err = s.RetrieveByName(ctx, "existing")
			require.Nil(t, err)
			assert.Equal(t, []string{"my_csv_asset", "second_asset"}, got.AssetNames())

			after, err = s.ListKeys(ctx)
			require.Nil(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestBatchConfigs(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.AddByName(ctx, "my_pandas", pandasDatasource(t, "my_pandas"))
			require.Nil(t, err)

			bc := datasource.NewBatchConfig("my_pandas", "my_csv_asset", "daily")
			bc.Partitioner = map[string]any{"method": "partition_on_date", "column": "pickup_datetime"}
			added, err := s.AddBatchConfig(ctx, bc)
			require.Nil(t, err)
			assert.Equal(t, "daily", added.Name)
			assert.Equal(t, "partition_on_date", added.Partitioner["method"])
			ref, err := added.DataAsset()
			require.Nil(t, err)
			assert.Equal(t, datasource.AssetRef{Datasource: "my_pandas", Asset: "my_csv_asset"}, ref)

			batchConfigNames := func() []string {
				t.Helper()
				ds, err := s.RetrieveByName(ctx, "my_pandas")
				require.Nil(t, err)
				a, err := ds.GetAsset("my_csv_asset")
				require.Nil(t, err)
				var names []string
				for _, bc := range a.BatchConfigs {
					names = append(names, bc.Name)
				}
				return names
			}
			assert.Equal(t, []string{"monthly", "daily"}, batchConfigNames())

			// a second batch config of the same name is rejected
			_, err = s.AddBatchConfig(ctx, datasource.NewBatchConfig("my_pandas", "my_csv_asset", "daily"))
			require.NotNil(t, err)
			assert.ErrorIs(t, err, datasource.ErrBatchConfigAlreadyExists)
			assert.Contains(t, err.Error(), "already exists")
			assert.Equal(t, []string{"monthly", "daily"}, batchConfigNames())

			// deleting a batch config that is not attached fails
			err = s.DeleteBatchConfig(ctx, datasource.NewBatchConfig("my_pandas", "my_csv_asset", "hourly"))
			require.NotNil(t, err)
			assert.ErrorIs(t, err, datasource.ErrBatchConfigDoesNotExist)
			assert.Contains(t, err.Error(), "does not exist")
			assert.Equal(t, []string{"monthly", "daily"}, batchConfigNames())

			require.Nil(t, s.DeleteBatchConfig(ctx, added))
			assert.Equal(t, []string{"monthly"}, batchConfigNames())

			// unknown targets
			_, err = s.AddBatchConfig(ctx, datasource.NewBatchConfig("my_pandas", "no_such_asset", "x"))
			assert.ErrorIs(t, err, datasource.ErrAssetNotFound)
			_, err = s.AddBatchConfig(ctx, datasource.NewBatchConfig("no_such_ds", "my_csv_asset", "x"))
			assert.ErrorIs(t, err, ErrDatasourceNotFound)
			_, err = s.AddBatchConfig(ctx, &datasource.BatchConfig{Name: "unbound"})
			assert.ErrorIs(t, err, datasource.ErrUnboundBatchConfig)
			_, err = s.AddBatchConfig(ctx, nil)
			assert.ErrorIs(t, err, datasource.ErrInvalidConfig)
		})
	}
}

// spyBackend counts the calls that reach it.
type spyBackend struct {
	backend.Backend
	calls int
}

func (b *spyBackend) Get(ctx context.Context, key keys.Key) (map[string]any, apperrors.Error) {
	b.calls++
	return b.Backend.Get(ctx, key)
}

func (b *spyBackend) Set(ctx context.Context, key keys.Key, value map[string]any) (map[string]any, apperrors.Error) {
	b.calls++
	return b.Backend.Set(ctx, key, value)
}

func (b *spyBackend) Has(ctx context.Context, key keys.Key) (bool, apperrors.Error) {
	b.calls++
	return b.Backend.Has(ctx, key)
}

func TestInvalidKeyType(t *testing.T) {
	ctx := context.Background()
	spy := &spyBackend{Backend: backend.NewMemory()}
	s := NewDatasourceStore(spy)

	invalidKeys := []keys.Key{
		keys.NewTupleKey("my_datasource"),
		keys.CloudIdentifier{ResourceType: "datasource", ResourceName: "my_datasource"},
		&keys.CloudIdentifier{ResourceName: "my_datasource"},
	}
	for _, key := range invalidKeys {
		t.Run(fmt.Sprintf("%T", key), func(t *testing.T) {
			_, err := s.Set(ctx, key, pandasDatasource(t, "my_datasource"))
			require.NotNil(t, err)
			assert.ErrorIs(t, err, ErrInvalidKeyType)
			assert.Equal(t, "key must be an instance of DataContextVariableKey", err.Error())
			assert.Equal(t, apperrors.KindType, err.Kind())

			_, err = s.Get(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKeyType)
			_, err = s.Has(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKeyType)
		})
	}
	assert.Equal(t, 0, spy.calls)
}

func TestSetWithoutKey(t *testing.T) {
	ctx := context.Background()

	t.Run("local store uses the config name", func(t *testing.T) {
		s := NewDatasourceStore(backend.NewMemory())
		stored, err := s.Set(ctx, nil, pandasDatasource(t, "by_name"))
		require.Nil(t, err)
		assert.Equal(t, "by_name", stored.Name)

		_, err = s.Set(ctx, nil, pandasDatasource(t, ""))
		assert.ErrorIs(t, err, ErrMissingDatasourceName)
	})

	t.Run("cloud store creates", func(t *testing.T) {
		s := NewDatasourceStore(newCloudBackend(t))
		stored, err := s.Set(ctx, nil, pandasDatasource(t, "created"))
		require.Nil(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.Equal(t, "created", stored.Name)

		// delete by id alone
		require.Nil(t, s.Delete(ctx, &datasource.Config{ID: stored.ID}))
		ks, err := s.ListKeys(ctx)
		require.Nil(t, err)
		assert.Empty(t, ks)
	})

	t.Run("nil config", func(t *testing.T) {
		s := NewDatasourceStore(backend.NewMemory())
		_, err := s.Set(ctx, keys.NewDataContextVariableKey("x"), nil)
		assert.ErrorIs(t, err, ErrMissingDatasource)
		assert.ErrorIs(t, s.Delete(ctx, nil), ErrMissingDatasource)
		assert.ErrorIs(t, s.Delete(ctx, &datasource.Config{}), ErrMissingDatasourceName)
	})
}

func TestInvalidConfigIsNotStored(t *testing.T) {
	ctx := context.Background()
	s := NewDatasourceStore(backend.NewMemory())

	ds := pandasDatasource(t, "my_pandas")
	ds.Assets = append(ds.Assets, &datasource.Asset{Name: "my_csv_asset"})
	_, err := s.Set(ctx, keys.NewDataContextVariableKey("my_pandas"), ds)
	assert.ErrorIs(t, err, datasource.ErrInvalidConfig)

	_, err = s.AddByName(ctx, "bad/name", pandasDatasource(t, ""))
	assert.ErrorIs(t, err, datasource.ErrInvalidConfig)

	ks, err := s.ListKeys(ctx)
	require.Nil(t, err)
	assert.Empty(t, ks)
}

func TestInlineDocumentOmitsImpliedNames(t *testing.T) {
	ctx := context.Background()
	b := newInlineBackend(t)
	s := NewDatasourceStore(b)

	_, err := s.AddByName(ctx, "my_block", blockDatasource("my_block"))
	require.Nil(t, err)

	data, rerr := os.ReadFile(b.Path())
	require.NoError(t, rerr)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	datasources := doc[backend.DatasourcesSection].(map[string]any)
	entry := datasources["my_block"].(map[string]any)
	assert.NotContains(t, entry, "name")
	connector := entry["data_connectors"].(map[string]any)["tripdata_monthly_configured"].(map[string]any)
	assert.NotContains(t, connector, "name")
	assert.Equal(t, "ConfiguredAssetFilesystemDataConnector", connector["class_name"])

	got, err := s.RetrieveByName(ctx, "my_block")
	require.Nil(t, err)
	assert.Equal(t, "my_block", got.Name)
}

func TestCloudRequestFailurePropagates(t *testing.T) {
	ctx := context.Background()
	srv, err := cloudsrv.CreateNewServer()
	require.NoError(t, err)
	srv.MountHandlers()
	client := httpclient.NewHTTPClient("http://cloud.test", httpclient.WithToken("wrong"), httpclient.WithHandler(srv.Router))
	b, aerr := cloud.NewBackend(client, testOrg, cloud.ResourceDatasource)
	require.Nil(t, aerr)
	s := NewDatasourceStore(b)

	_, aerr = s.AddByName(ctx, "x", pandasDatasource(t, "x"))
	require.NotNil(t, aerr)
	assert.ErrorIs(t, aerr, cloud.ErrRequestFailed)
	assert.Equal(t, http.StatusUnauthorized, aerr.StatusCode())
}
