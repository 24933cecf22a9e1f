package datasource

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

var (
	ErrDatasourceError          apperrors.Error = apperrors.New("error in datasource configuration").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidConfig            apperrors.Error = ErrDatasourceError.New("invalid datasource configuration").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue).SetExpandError(true)
	ErrUnableToDecode           apperrors.Error = ErrDatasourceError.New("unable to decode datasource configuration").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
	ErrUnableToEncode           apperrors.Error = ErrDatasourceError.New("unable to encode datasource configuration").SetStatusCode(http.StatusInternalServerError)
	ErrAssetNotFound            apperrors.Error = ErrDatasourceError.New("asset not found").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindNotFound)
	ErrAssetAlreadyExists       apperrors.Error = ErrDatasourceError.New("asset already exists").SetStatusCode(http.StatusConflict).SetKind(apperrors.KindValue)
	ErrUnboundBatchConfig       apperrors.Error = ErrDatasourceError.New("batch config is not bound to a data asset").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrBatchConfigAlreadyExists apperrors.Error = ErrDatasourceError.New("batch config already exists").SetStatusCode(http.StatusConflict).SetKind(apperrors.KindValue)
	ErrBatchConfigDoesNotExist  apperrors.Error = ErrDatasourceError.New("batch config does not exist").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindValue)
)
