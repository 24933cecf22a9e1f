package serializer

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

var (
	ErrSerializerError     apperrors.Error = apperrors.New("serializer error").SetStatusCode(http.StatusInternalServerError)
	ErrNilConfig           apperrors.Error = ErrSerializerError.New("no datasource configuration to serialize").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
	ErrMissingName         apperrors.Error = ErrSerializerError.New("datasource configuration has no name").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrSerializationFailed apperrors.Error = ErrSerializerError.New("unable to serialize datasource configuration")
	ErrUnknownSerializer   apperrors.Error = ErrSerializerError.New("unknown serializer").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrEquivalenceArgs     apperrors.Error = ErrSerializerError.New("invalid equivalence arguments").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
)
