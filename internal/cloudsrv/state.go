package cloudsrv

import (
	"sync"
	"time"

	"github.com/tansive/datasource-store/internal/cloud"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/common/uuid"
)

type resource struct {
	id             string
	organizationID string
	resourceType   cloud.ResourceType
	createdAt      time.Time
	config         map[string]any
}

func (r *resource) name() string {
	name, _ := r.config["name"].(string)
	return name
}

// envelope renders the resource the way the API returns it.
func (r *resource) envelope() map[string]any {
	return map[string]any{
		"id":   r.id,
		"type": string(r.resourceType),
		"attributes": map[string]any{
			r.resourceType.AttributeKey(): r.config,
			"organization_id":             r.organizationID,
		},
		"meta": map[string]any{
			"created_at": r.createdAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

type collectionKey struct {
	organizationID string
	resourceType   cloud.ResourceType
}

// state is the in-memory content of the emulator. Collections keep their
// resources in creation order.
type state struct {
	mu          sync.Mutex
	collections map[collectionKey][]*resource
}

func newState() *state {
	return &state{collections: make(map[collectionKey][]*resource)}
}

func (s *state) create(org string, rt cloud.ResourceType, config map[string]any) (map[string]any, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ck := collectionKey{org, rt}
	id := uuid.New()
	res := &resource{
		id:             id.String(),
		organizationID: org,
		resourceType:   rt,
		createdAt:      uuid.CreatedAt(id),
		config:         config,
	}
	if err := s.checkName(ck, res); err != nil {
		return nil, err
	}
	s.collections[ck] = append(s.collections[ck], res)
	return res.envelope(), nil
}

func (s *state) get(org string, rt cloud.ResourceType, id string) (map[string]any, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, res := s.find(collectionKey{org, rt}, id)
	if res == nil {
		return nil, ErrResourceNotFound.Msgf("%s %q not found", rt, id)
	}
	return res.envelope(), nil
}

// list returns the envelopes of the collection, restricted to the resources
// called name when name is set.
func (s *state) list(org string, rt cloud.ResourceType, name string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	envelopes := []map[string]any{}
	for _, res := range s.collections[collectionKey{org, rt}] {
		if name != "" && res.name() != name {
			continue
		}
		envelopes = append(envelopes, res.envelope())
	}
	return envelopes
}

func (s *state) update(org string, rt cloud.ResourceType, id string, config map[string]any) (map[string]any, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ck := collectionKey{org, rt}
	i, res := s.find(ck, id)
	if res == nil {
		return nil, ErrResourceNotFound.Msgf("%s %q not found", rt, id)
	}
	updated := &resource{
		id:             res.id,
		organizationID: org,
		resourceType:   rt,
		createdAt:      res.createdAt,
		config:         config,
	}
	if err := s.checkName(ck, updated); err != nil {
		return nil, err
	}
	s.collections[ck][i] = updated
	return updated.envelope(), nil
}

func (s *state) remove(org string, rt cloud.ResourceType, id string) apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ck := collectionKey{org, rt}
	i, res := s.find(ck, id)
	if res == nil {
		return ErrResourceNotFound.Msgf("%s %q not found", rt, id)
	}
	c := s.collections[ck]
	s.collections[ck] = append(c[:i:i], c[i+1:]...)
	return nil
}

func (s *state) find(ck collectionKey, id string) (int, *resource) {
	for i, res := range s.collections[ck] {
		if res.id == id {
			return i, res
		}
	}
	return -1, nil
}

// checkName fails when another resource of the collection carries the name
// of res. Unnamed resources never conflict.
func (s *state) checkName(ck collectionKey, res *resource) apperrors.Error {
	name := res.name()
	if name == "" {
		return nil
	}
	for _, other := range s.collections[ck] {
		if other.id != res.id && other.name() == name {
			return ErrDuplicateName.Msgf("%s named %q already exists", ck.resourceType, name)
		}
	}
	return nil
}
