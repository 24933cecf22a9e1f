package cloudsrv

import (
	"bytes"
	"fmt"

	json "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tansive/datasource-store/internal/cloud"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

const envelopeSchemaTemplate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["data"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["type", "attributes"],
      "properties": {
        "type": {"const": %[1]q},
        "id": {"type": "string", "minLength": 1},
        "attributes": {
          "type": "object",
          "required": [%[2]q, "organization_id"],
          "properties": {
            %[2]q: {"type": "object"},
            "organization_id": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var envelopeResourceTypes = []cloud.ResourceType{
	cloud.ResourceDatasource,
	cloud.ResourceDataAsset,
	cloud.ResourceExpectationSuite,
	cloud.ResourceCheckpoint,
}

// envelopeSchemas holds the compiled request envelope schema of every
// resource type.
type envelopeSchemas map[cloud.ResourceType]*jsonschema.Schema

func compileEnvelopeSchemas() (envelopeSchemas, error) {
	schemas := make(envelopeSchemas, len(envelopeResourceTypes))
	for _, rt := range envelopeResourceTypes {
		url := string(rt) + ".json"
		compiler := jsonschema.NewCompiler()
		src := fmt.Sprintf(envelopeSchemaTemplate, string(rt), rt.AttributeKey())
		if err := compiler.AddResource(url, bytes.NewReader([]byte(src))); err != nil {
			return nil, err
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, err
		}
		schemas[rt] = schema
	}
	return schemas, nil
}

// validate decodes body and checks it against the envelope schema of rt.
func (s envelopeSchemas) validate(rt cloud.ResourceType, body []byte) (map[string]any, apperrors.Error) {
	schema, ok := s[rt]
	if !ok {
		return nil, ErrUnknownCollection.Msgf("no schema for resource type %q", rt)
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, ErrInvalidEnvelope.Msg("request body is not valid JSON")
	}
	if err := schema.Validate(v); err != nil {
		return nil, ErrInvalidEnvelope.Err(err)
	}
	envelope, _ := v.(map[string]any)
	return envelope, nil
}
