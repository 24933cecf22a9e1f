package store

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

var (
	ErrStoreError            apperrors.Error = apperrors.New("datasource store error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidKeyType        apperrors.Error = ErrStoreError.New("key must be an instance of DataContextVariableKey").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
	ErrDatasourceNotFound    apperrors.Error = ErrStoreError.New("datasource not found").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindNotFound)
	ErrMissingDatasourceName apperrors.Error = ErrStoreError.New("datasource has no name and no key was given").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrMissingDatasource     apperrors.Error = ErrStoreError.New("no datasource configuration given").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
)

func notFound(name string, err error) apperrors.Error {
	msg := "Could not find an existing Datasource named " + name + "."
	if err == nil {
		return ErrDatasourceNotFound.Msg(msg)
	}
	return ErrDatasourceNotFound.MsgErr(msg, err)
}
