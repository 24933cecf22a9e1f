package cloud

import (
	"context"
	"errors"
	"net/http"
	"path"

	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/common/httpclient"
	"github.com/tansive/datasource-store/internal/store/backend"
	"github.com/tansive/datasource-store/internal/store/keys"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Backend stores resources of one type in an organization of the cloud API.
// It accepts CloudIdentifier keys; a key without an id is resolved by name.
type Backend struct {
	client         httpclient.Requester
	organizationID string
	resourceType   ResourceType
}

var _ backend.Backend = (*Backend)(nil)

func NewBackend(client httpclient.Requester, organizationID string, rt ResourceType) (*Backend, apperrors.Error) {
	if organizationID == "" {
		return nil, ErrMissingOrganization
	}
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	return &Backend{
		client:         client,
		organizationID: organizationID,
		resourceType:   rt,
	}, nil
}

func (b *Backend) Kind() backend.Kind { return backend.KindCloud }

func (b *Backend) OrganizationID() string { return b.organizationID }

func (b *Backend) collectionPath() string {
	return path.Join("organizations", b.organizationID, b.resourceType.Collection())
}

func (b *Backend) resourcePath(id string) string {
	return path.Join(b.collectionPath(), id)
}

// Payload builds the request envelope for value.
func (b *Backend) Payload(value map[string]any, id string) ([]byte, apperrors.Error) {
	cfg, err := json.Marshal(value)
	if err != nil {
		return nil, ErrInvalidPayload.Err(err)
	}
	body := []byte(`{}`)
	body, err = sjson.SetBytes(body, "data.type", string(b.resourceType))
	if err != nil {
		return nil, ErrInvalidPayload.Err(err)
	}
	if id != "" {
		if body, err = sjson.SetBytes(body, "data.id", id); err != nil {
			return nil, ErrInvalidPayload.Err(err)
		}
	}
	if body, err = sjson.SetRawBytes(body, "data.attributes."+b.resourceType.AttributeKey(), cfg); err != nil {
		return nil, ErrInvalidPayload.Err(err)
	}
	if body, err = sjson.SetBytes(body, "data.attributes.organization_id", b.organizationID); err != nil {
		return nil, ErrInvalidPayload.Err(err)
	}
	return body, nil
}

func (b *Backend) Get(ctx context.Context, key keys.Key) (map[string]any, apperrors.Error) {
	id, err := b.cloudKey(key)
	if err != nil {
		return nil, err
	}
	if id.ID != "" {
		return b.getByID(ctx, id.ID)
	}
	return b.getByName(ctx, id.ResourceName)
}

func (b *Backend) getByID(ctx context.Context, id string) (map[string]any, apperrors.Error) {
	body, err := b.do(ctx, httpclient.RequestOptions{Method: http.MethodGet, Path: b.resourcePath(id)})
	if err != nil {
		return nil, err
	}
	return ResponseToObjectDict(b.resourceType, body)
}

func (b *Backend) getByName(ctx context.Context, name string) (map[string]any, apperrors.Error) {
	body, err := b.do(ctx, httpclient.RequestOptions{
		Method:      http.MethodGet,
		Path:        b.collectionPath(),
		QueryParams: map[string]string{"name": name},
	})
	if err != nil {
		return nil, err
	}
	obj, err := ResponseToObjectDict(b.resourceType, body)
	if err != nil {
		if errors.Is(err, backend.ErrKeyNotFound) {
			return nil, ErrResourceNotFound.Msgf("%s %q not found", b.resourceType, name)
		}
		return nil, err
	}
	return obj, nil
}

// Set creates the resource when key is nil or names an unknown resource and
// replaces it otherwise. The stored resource is read back after the write.
func (b *Backend) Set(ctx context.Context, key keys.Key, value map[string]any) (map[string]any, apperrors.Error) {
	var id string
	if key != nil {
		ck, err := b.cloudKey(key)
		if err != nil {
			return nil, err
		}
		id = ck.ID
		if id == "" && ck.ResourceName != "" {
			existing, err := b.getByName(ctx, ck.ResourceName)
			if err != nil && !errors.Is(err, backend.ErrKeyNotFound) {
				return nil, err
			}
			if existing != nil {
				id, _ = existing["id"].(string)
			}
		}
	}

	if id == "" {
		return b.create(ctx, value)
	}
	return b.update(ctx, id, value)
}

func (b *Backend) create(ctx context.Context, value map[string]any) (map[string]any, apperrors.Error) {
	payload, err := b.Payload(value, "")
	if err != nil {
		return nil, err
	}
	body, err := b.do(ctx, httpclient.RequestOptions{Method: http.MethodPost, Path: b.collectionPath(), Body: payload})
	if err != nil {
		return nil, err
	}
	id := gjson.GetBytes(body, "data.id").String()
	if id == "" {
		return nil, ErrMalformedResponse.Msg("create response carries no id")
	}
	log.Ctx(ctx).Debug().Str("backend", string(backend.KindCloud)).Str("id", id).Msgf("created %s", b.resourceType)
	return b.getByID(ctx, id)
}

func (b *Backend) update(ctx context.Context, id string, value map[string]any) (map[string]any, apperrors.Error) {
	payload, err := b.Payload(value, id)
	if err != nil {
		return nil, err
	}
	if _, err := b.do(ctx, httpclient.RequestOptions{Method: http.MethodPut, Path: b.resourcePath(id), Body: payload}); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("backend", string(backend.KindCloud)).Str("id", id).Msgf("updated %s", b.resourceType)
	return b.getByID(ctx, id)
}

func (b *Backend) Delete(ctx context.Context, key keys.Key) apperrors.Error {
	ck, err := b.cloudKey(key)
	if err != nil {
		return err
	}
	id := ck.ID
	if id == "" {
		existing, err := b.getByName(ctx, ck.ResourceName)
		if err != nil {
			return err
		}
		id, _ = existing["id"].(string)
	}
	_, err = b.do(ctx, httpclient.RequestOptions{Method: http.MethodDelete, Path: b.resourcePath(id)})
	return err
}

func (b *Backend) Has(ctx context.Context, key keys.Key) (bool, apperrors.Error) {
	_, err := b.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, backend.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// ListKeys returns a CloudIdentifier for every resource, in server order.
func (b *Backend) ListKeys(ctx context.Context) ([]keys.Key, apperrors.Error) {
	body, err := b.do(ctx, httpclient.RequestOptions{Method: http.MethodGet, Path: b.collectionPath()})
	if err != nil {
		return nil, err
	}
	objs, err := ResponseToObjectCollection(b.resourceType, body)
	if err != nil {
		return nil, err
	}
	ks := make([]keys.Key, 0, len(objs))
	for _, obj := range objs {
		id, _ := obj["id"].(string)
		name, _ := obj["name"].(string)
		ks = append(ks, keys.CloudIdentifier{ResourceType: string(b.resourceType), ID: id, ResourceName: name})
	}
	return ks, nil
}

func (b *Backend) cloudKey(key keys.Key) (keys.CloudIdentifier, apperrors.Error) {
	var ck keys.CloudIdentifier
	switch k := key.(type) {
	case keys.CloudIdentifier:
		ck = k
	case *keys.CloudIdentifier:
		if k != nil {
			ck = *k
		}
	case keys.DataContextVariableKey:
		ck = keys.CloudIdentifier{ResourceType: string(b.resourceType), ResourceName: k.ResourceName}
	default:
		return ck, backend.ErrMissingKey.Msg("cloud backend needs a CloudIdentifier key")
	}
	if ck.ID == "" && ck.ResourceName == "" {
		return ck, backend.ErrMissingKey.Msg("cloud key has neither an id nor a name")
	}
	return ck, nil
}

// do sends the request and maps transport and HTTP failures onto the
// package errors.
func (b *Backend) do(ctx context.Context, opts httpclient.RequestOptions) ([]byte, apperrors.Error) {
	body, err := b.client.DoRequest(ctx, opts)
	if err == nil {
		return body, nil
	}
	var herr *httpclient.HTTPError
	if errors.As(err, &herr) {
		if herr.StatusCode == http.StatusNotFound {
			return nil, ErrResourceNotFound.MsgErr(herr.Message, err)
		}
		log.Ctx(ctx).Error().Err(err).Int("status", herr.StatusCode).Str("path", opts.Path).Msg("cloud request failed")
		return nil, ErrRequestFailed.MsgErr(herr.Message, err).SetStatusCode(herr.StatusCode)
	}
	log.Ctx(ctx).Error().Err(err).Str("path", opts.Path).Msg("cloud request failed")
	return nil, ErrRequestFailed.Err(err)
}
