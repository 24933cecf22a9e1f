package cloudsrv

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

var (
	ErrCloudServerError     apperrors.Error = apperrors.New("cloud server error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidEnvelope      apperrors.Error = ErrCloudServerError.New("invalid request envelope").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue).SetExpandError(true)
	ErrUnknownCollection    apperrors.Error = ErrCloudServerError.New("unknown collection").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindNotFound)
	ErrResourceNotFound     apperrors.Error = ErrCloudServerError.New("resource not found").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindNotFound)
	ErrDuplicateName        apperrors.Error = ErrCloudServerError.New("resource with this name already exists").SetStatusCode(http.StatusConflict).SetKind(apperrors.KindValue)
	ErrOrganizationMismatch apperrors.Error = ErrInvalidEnvelope.New("organization_id does not match the request path")
	ErrIDMismatch           apperrors.Error = ErrInvalidEnvelope.New("data.id does not match the request path")
)
