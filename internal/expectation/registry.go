package expectation

import (
	"sort"
	"sync"

	"github.com/tansive/datasource-store/internal/common/apperrors"
)

// Expectation is a configured assertion.
type Expectation interface {
	Type() string
	Configuration() *Configuration
	// MetricDependencies names the metrics Validate reads.
	MetricDependencies() []string
	Validate(metrics map[string]any) (*ValidationResult, apperrors.Error)
	Describe() string
}

// ValidationResult is the outcome of checking an expectation.
type ValidationResult struct {
	Success       bool           `json:"success"`
	ObservedValue any            `json:"observed_value"`
	Expectation   *Configuration `json:"expectation_config"`
}

type Factory func(cfg *Configuration) (Expectation, apperrors.Error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an expectation type available to New. Registering a type
// twice replaces the earlier factory.
func Register(expectationType string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[expectationType] = f
}

// New builds the typed expectation described by cfg.
func New(cfg *Configuration) (Expectation, apperrors.Error) {
	if cfg == nil {
		return nil, ErrInvalidConfiguration.Msg("expectation configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	f, ok := registry[cfg.ExpectationType]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownExpectationType.Msgf("unknown expectation type %q", cfg.ExpectationType)
	}
	return f(cfg)
}

// Types lists the registered expectation types.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
