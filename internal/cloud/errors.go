package cloud

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/store/backend"
)

var (
	ErrCloudError          apperrors.Error = apperrors.New("cloud error").SetStatusCode(http.StatusBadGateway)
	ErrMalformedResponse   apperrors.Error = ErrCloudError.New("malformed cloud response").SetKind(apperrors.KindType)
	ErrUnknownResourceType apperrors.Error = ErrCloudError.New("unknown resource type").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrInvalidPayload      apperrors.Error = ErrCloudError.New("unable to build request payload").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
	ErrMissingOrganization apperrors.Error = ErrCloudError.New("an organization id is required").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)

	// Backend failures also match the backend sentinels so the store can
	// handle every medium alike.
	ErrResourceNotFound apperrors.Error = backend.ErrKeyNotFound.New("cloud resource not found")
	ErrRequestFailed    apperrors.Error = backend.ErrBackendFailure.New("cloud request failed").SetStatusCode(http.StatusBadGateway)
)
