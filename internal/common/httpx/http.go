// Package httpx holds the helpers shared by the HTTP handlers: decoding
// request bodies, wrapping handlers that return a Response or an error, and
// writing JSON and error responses.
package httpx

import (
	"context"
	"io"
	"net/http"

	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

const maxRequestBody = 4 << 20

// GetRequestData decodes the JSON body of a POST or PUT request into data.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil {
		log.Ctx(r.Context()).Error().Msg("Empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

// GetRequestBody returns the raw body of a POST or PUT request.
func GetRequestBody(r *http.Request) ([]byte, error) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return nil, ErrReqMethodNotSupported()
	}
	if r.Body == nil {
		return nil, ErrUnableToReadRequest()
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("unable to read request body")
		return nil, ErrUnableToReadRequest()
	}
	return b, nil
}

type Response struct {
	StatusCode  int
	Location    string
	Response    any
	ContentType string
}

type RequestHandler func(r *http.Request) (*Response, error)

func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if httperror, ok := err.(*Error); ok {
				httperror.Send(w)
			} else if appErr, ok := err.(apperrors.Error); ok {
				SendError(w, appErr)
			} else {
				ErrApplicationError(err.Error()).Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		var location []string
		if rsp.Location != "" {
			location = append(location, rsp.Location)
		}
		if rsp.ContentType == "application/json" {
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
		} else {
			ErrApplicationError("unsupported response type").Send(w)
		}
	})
}

type ResponseHandlerParam struct {
	Method  string
	Path    string
	Handler RequestHandler
}

// SendJsonRsp writes v as a JSON response. A nil v writes the status only.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, v any, location ...string) {
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}
	if v == nil || statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to encode response")
		ErrApplicationError("Unable to encode response").Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(b); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to write response")
	}
}
