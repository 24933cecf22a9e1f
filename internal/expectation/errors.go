package expectation

import (
	"net/http"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

var (
	ErrExpectationError       apperrors.Error = apperrors.New("expectation error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidConfiguration   apperrors.Error = ErrExpectationError.New("invalid expectation configuration").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue).SetExpandError(true)
	ErrUnknownExpectationType apperrors.Error = ErrInvalidConfiguration.New("unknown expectation type").SetExpandError(false)
	ErrInvalidKwargs          apperrors.Error = ErrInvalidConfiguration.New("invalid expectation arguments")
	ErrMissingMetric          apperrors.Error = ErrExpectationError.New("missing metric").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValue)
	ErrInvalidMetric          apperrors.Error = ErrExpectationError.New("metric value has the wrong type").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindType)
)
