package datasource

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

const datasourceNameMaxLength = 255

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// V returns the validator shared by the package, with the custom validations
// registered.
func V() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("datasourceName", datasourceNameValidator)
		validate.RegisterValidation("notBlank", notBlankValidator)
	})
	return validate
}

// datasourceNameValidator accepts names that can be used as a store key.
func datasourceNameValidator(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" || len(name) > datasourceNameMaxLength {
		return false
	}
	return !strings.Contains(name, "/")
}

func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateName checks a datasource name outside of a Config.
func ValidateName(name string) apperrors.Error {
	if V().Var(name, "datasourceName") != nil {
		return ErrInvalidConfig.Msgf("invalid datasource name %q", name)
	}
	return nil
}

// Validate checks the config's structure. All problems found are wrapped in
// the returned error.
func (c *Config) Validate() apperrors.Error {
	var errs []error
	if err := V().Struct(c); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return ErrInvalidConfig.Err(err)
		}
		for _, e := range ve {
			switch e.Tag() {
			case "required", "notBlank":
				errs = append(errs, ErrInvalidConfig.Msgf("missing required attribute %s", e.Namespace()))
			case "datasourceName":
				val, _ := e.Value().(string)
				errs = append(errs, ErrInvalidConfig.Msgf("invalid datasource name %q", val))
			default:
				errs = append(errs, ErrInvalidConfig.Msgf("validation failed for %s", e.Namespace()))
			}
		}
	}

	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a == nil {
			continue
		}
		if seen[a.Name] {
			errs = append(errs, ErrAssetAlreadyExists.Msgf("duplicate asset %q", a.Name))
		}
		seen[a.Name] = true
		bcs := make(map[string]bool, len(a.BatchConfigs))
		for _, bc := range a.BatchConfigs {
			if bc == nil {
				continue
			}
			if bcs[bc.Name] {
				errs = append(errs, ErrBatchConfigAlreadyExists.Msgf("duplicate batch config %q on asset %q", bc.Name, a.Name))
			}
			bcs[bc.Name] = true
		}
	}

	if len(errs) > 0 {
		return ErrInvalidConfig.Err(errs...)
	}
	return nil
}
