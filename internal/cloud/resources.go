// Package cloud talks to the cloud API: it knows the resource types and
// their envelopes, normalizes responses into plain attribute mappings and
// provides a store backend over the API.
package cloud

import (
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

type ResourceType string

const (
	ResourceDatasource       ResourceType = "datasource"
	ResourceDataAsset        ResourceType = "data_asset"
	ResourceExpectationSuite ResourceType = "expectation_suite"
	ResourceCheckpoint       ResourceType = "checkpoint"
)

type resourceInfo struct {
	attributeKey string
	collection   string
}

var resources = map[ResourceType]resourceInfo{
	ResourceDatasource:       {attributeKey: "datasource_config", collection: "datasources"},
	ResourceDataAsset:        {attributeKey: "data_asset_config", collection: "data_assets"},
	ResourceExpectationSuite: {attributeKey: "suite", collection: "expectation_suites"},
	ResourceCheckpoint:       {attributeKey: "checkpoint_config", collection: "checkpoints"},
}

// AttributeKey is the attribute of a response envelope holding the
// resource's configuration.
func (r ResourceType) AttributeKey() string {
	return resources[r].attributeKey
}

// Collection is the path segment of the resource's collection.
func (r ResourceType) Collection() string {
	return resources[r].collection
}

func (r ResourceType) Validate() apperrors.Error {
	if _, ok := resources[r]; !ok {
		return ErrUnknownResourceType.Msgf("unknown resource type %q", string(r))
	}
	return nil
}

// ResourceTypeFromCollection maps a collection path segment back to its
// resource type.
func ResourceTypeFromCollection(collection string) (ResourceType, bool) {
	for rt, info := range resources {
		if info.collection == collection {
			return rt, true
		}
	}
	return "", false
}
