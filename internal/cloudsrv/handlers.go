package cloudsrv

import (
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/cloud"
	"github.com/tansive/datasource-store/internal/common/httpx"
	"github.com/tansive/datasource-store/internal/common/uuid"
)

const (
	collectionPath = "/organizations/{orgId}/{collection}"
	resourcePath   = collectionPath + "/{id}"
)

func (s *CloudServer) resourceHandlers() []httpx.ResponseHandlerParam {
	return []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodPost,
			Path:    collectionPath,
			Handler: s.createResource,
		},
		{
			Method:  http.MethodGet,
			Path:    collectionPath,
			Handler: s.listResources,
		},
		{
			Method:  http.MethodGet,
			Path:    resourcePath,
			Handler: s.getResource,
		},
		{
			Method:  http.MethodPut,
			Path:    resourcePath,
			Handler: s.updateResource,
		},
		{
			Method:  http.MethodDelete,
			Path:    resourcePath,
			Handler: s.deleteResource,
		},
	}
}

// collection resolves the organization and resource type addressed by r.
func collection(r *http.Request) (string, cloud.ResourceType, error) {
	org := chi.URLParam(r, "orgId")
	if org == "" {
		return "", "", httpx.ErrInvalidOrganizationId()
	}
	name := chi.URLParam(r, "collection")
	rt, ok := cloud.ResourceTypeFromCollection(name)
	if !ok {
		return "", "", ErrUnknownCollection.Msgf("unknown collection %q", name)
	}
	return org, rt, nil
}

// resourceID returns the {id} path parameter. Ids are always v7 UUIDs, so
// anything else cannot name a resource.
func resourceID(r *http.Request, rt cloud.ResourceType) (string, error) {
	id := chi.URLParam(r, "id")
	u, err := uuid.Parse(id)
	if err != nil || !uuid.IsUUIDv7(u) {
		return "", ErrResourceNotFound.Msgf("%s %q not found", rt, id)
	}
	return u.String(), nil
}

// requestConfig validates the request envelope and returns the resource
// configuration it carries along with data.id, if any.
func (s *CloudServer) requestConfig(r *http.Request, org string, rt cloud.ResourceType) (map[string]any, string, error) {
	body, err := httpx.GetRequestBody(r)
	if err != nil {
		return nil, "", err
	}
	envelope, aerr := s.schemas.validate(rt, body)
	if aerr != nil {
		log.Ctx(r.Context()).Debug().Err(aerr).Str("resource_type", string(rt)).Msg("rejected request envelope")
		return nil, "", aerr
	}
	data, _ := envelope["data"].(map[string]any)
	attrs, _ := data["attributes"].(map[string]any)
	if attrs["organization_id"] != org {
		return nil, "", ErrOrganizationMismatch
	}
	config, _ := attrs[rt.AttributeKey()].(map[string]any)
	id, _ := data["id"].(string)
	return config, id, nil
}

func (s *CloudServer) createResource(r *http.Request) (*httpx.Response, error) {
	org, rt, err := collection(r)
	if err != nil {
		return nil, err
	}
	config, _, err := s.requestConfig(r, org, rt)
	if err != nil {
		return nil, err
	}
	res, aerr := s.state.create(org, rt, config)
	if aerr != nil {
		return nil, aerr
	}
	id, _ := res["id"].(string)
	log.Ctx(r.Context()).Info().Str("organization_id", org).Str("resource_type", string(rt)).Str("id", id).Msg("created resource")
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   path.Join(r.URL.Path, id),
		Response:   map[string]any{"data": res},
	}, nil
}

func (s *CloudServer) listResources(r *http.Request) (*httpx.Response, error) {
	org, rt, err := collection(r)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]any{"data": s.state.list(org, rt, r.URL.Query().Get("name"))},
	}, nil
}

func (s *CloudServer) getResource(r *http.Request) (*httpx.Response, error) {
	org, rt, err := collection(r)
	if err != nil {
		return nil, err
	}
	id, err := resourceID(r, rt)
	if err != nil {
		return nil, err
	}
	res, aerr := s.state.get(org, rt, id)
	if aerr != nil {
		return nil, aerr
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]any{"data": res},
	}, nil
}

func (s *CloudServer) updateResource(r *http.Request) (*httpx.Response, error) {
	org, rt, err := collection(r)
	if err != nil {
		return nil, err
	}
	id, err := resourceID(r, rt)
	if err != nil {
		return nil, err
	}
	config, bodyID, err := s.requestConfig(r, org, rt)
	if err != nil {
		return nil, err
	}
	if bodyID != "" && bodyID != id {
		return nil, ErrIDMismatch
	}
	res, aerr := s.state.update(org, rt, id, config)
	if aerr != nil {
		return nil, aerr
	}
	log.Ctx(r.Context()).Info().Str("organization_id", org).Str("resource_type", string(rt)).Str("id", id).Msg("updated resource")
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]any{"data": res},
	}, nil
}

func (s *CloudServer) deleteResource(r *http.Request) (*httpx.Response, error) {
	org, rt, err := collection(r)
	if err != nil {
		return nil, err
	}
	id, err := resourceID(r, rt)
	if err != nil {
		return nil, err
	}
	if aerr := s.state.remove(org, rt, id); aerr != nil {
		return nil, aerr
	}
	log.Ctx(r.Context()).Info().Str("organization_id", org).Str("resource_type", string(rt)).Str("id", id).Msg("deleted resource")
	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}
