package backend

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

var (
	ErrBackendError   apperrors.Error = apperrors.New("store backend error").SetStatusCode(http.StatusInternalServerError)
	ErrKeyNotFound    apperrors.Error = ErrBackendError.New("key not found").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindNotFound)
	ErrMissingKey     apperrors.Error = ErrBackendError.New("a key is required").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrInvalidValue   apperrors.Error = ErrBackendError.New("value cannot be stored").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
	ErrBackendFailure apperrors.Error = ErrBackendError.New("store backend failure").SetKind(apperrors.KindIO).SetExpandError(true)
	ErrLockTimeout    apperrors.Error = ErrBackendFailure.New("timed out waiting for the config file lock").SetKind(apperrors.KindIO)
	ErrUnknownDriver  apperrors.Error = ErrBackendError.New("unknown database driver").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
)
