package httpclient

import (
	"context"
)

// Requester sends requests to a JSON API.
type Requester interface {
	// DoRequest makes an HTTP request with the given options and returns the
	// response body.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)
}

var _ Requester = &HTTPClient{}
