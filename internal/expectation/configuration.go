// Package expectation holds typed expectations: declarative assertions about
// data, configured by keyword arguments and checked against metric values
// computed elsewhere.
package expectation

import (
	"sync"

	"github.com/go-playground/validator/v10"
	json "github.com/json-iterator/go"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

// Configuration is the serialized form of an expectation.
type Configuration struct {
	ID              string         `json:"id,omitempty"`
	ExpectationType string         `json:"expectation_type" validate:"required"`
	Kwargs          map[string]any `json:"kwargs"`
	Meta            map[string]any `json:"meta,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func v() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ConfigurationFromJSON decodes and validates a configuration.
func ConfigurationFromJSON(b []byte) (*Configuration, apperrors.Error) {
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, ErrInvalidConfiguration.MsgErr("unable to decode expectation configuration", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Configuration) Validate() apperrors.Error {
	if err := v().Struct(c); err != nil {
		return ErrInvalidConfiguration.Err(err)
	}
	return nil
}

// decodeKwargs copies the configuration's kwargs into the typed struct out
// and validates it.
func (c *Configuration) decodeKwargs(out any) apperrors.Error {
	b, err := json.Marshal(c.Kwargs)
	if err != nil {
		return ErrInvalidKwargs.Err(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return ErrInvalidKwargs.Err(err)
	}
	if err := v().Struct(out); err != nil {
		return ErrInvalidKwargs.Err(err)
	}
	return nil
}
