package cloud

import (
	json "github.com/json-iterator/go"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tidwall/gjson"
)

// ResponseToObjectDict turns a response envelope for a single resource into
// the resource's configuration with the envelope id merged in. data may be
// an object or a list holding exactly one flat object. A list of several
// resources, or of nested envelopes, is rejected: picking one of them would
// be a guess.
func ResponseToObjectDict(rt ResourceType, body []byte) (map[string]any, apperrors.Error) {
	data, err := envelopeData(body)
	if err != nil {
		return nil, err
	}
	switch {
	case data.IsObject():
		return extractObject(rt, data)
	case data.IsArray():
		items := data.Array()
		switch len(items) {
		case 0:
			return nil, ErrResourceNotFound.Msgf("no %s found in response", rt)
		case 1:
			return extractObject(rt, items[0])
		default:
			return nil, ErrMalformedResponse.Msgf("expected a single %s, response holds %d", rt, len(items))
		}
	}
	return nil, ErrMalformedResponse.Msg("response data is neither an object nor a list")
}

// ResponseToObjectCollection extracts every resource of a list envelope,
// in response order.
func ResponseToObjectCollection(rt ResourceType, body []byte) ([]map[string]any, apperrors.Error) {
	data, err := envelopeData(body)
	if err != nil {
		return nil, err
	}
	if !data.IsArray() {
		return nil, ErrMalformedResponse.Msg("response data is not a list")
	}
	items := data.Array()
	objs := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, err := extractObject(rt, item)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func envelopeData(body []byte) (gjson.Result, apperrors.Error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrMalformedResponse.Msg("response is not valid JSON")
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return gjson.Result{}, ErrMalformedResponse.Msg("response has no data")
	}
	return data, nil
}

func extractObject(rt ResourceType, item gjson.Result) (map[string]any, apperrors.Error) {
	if !item.IsObject() || item.Get("data").Exists() {
		return nil, ErrMalformedResponse.Msg("response holds nested envelopes")
	}
	attrs := item.Get("attributes." + rt.AttributeKey())
	if !attrs.IsObject() {
		return nil, ErrMalformedResponse.Msgf("response has no attributes.%s", rt.AttributeKey())
	}
	obj := make(map[string]any)
	if err := json.Unmarshal([]byte(attrs.Raw), &obj); err != nil {
		return nil, ErrMalformedResponse.Err(err)
	}
	if id := item.Get("id"); id.Exists() && id.String() != "" {
		obj["id"] = id.String()
	}
	return obj, nil
}
