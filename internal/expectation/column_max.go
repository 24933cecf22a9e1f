package expectation

import (
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

const (
	ColumnMaxToBeBetweenType = "expect_column_max_to_be_between"
	MetricColumnMax          = "column.max"
)

type columnMaxKwargs struct {
	Column    string `json:"column" validate:"required"`
	MinValue  any    `json:"min_value"`
	MaxValue  any    `json:"max_value"`
	StrictMin bool   `json:"strict_min"`
	StrictMax bool   `json:"strict_max"`
}

// ColumnMaxToBeBetween expects the maximum of a column to lie between
// min_value and max_value. Bounds are inclusive unless made strict; a
// missing bound leaves that side open.
type ColumnMaxToBeBetween struct {
	cfg       *Configuration
	Column    string
	StrictMin bool
	StrictMax bool
	min       *scalar
	max       *scalar
}

var _ Expectation = (*ColumnMaxToBeBetween)(nil)

func newColumnMaxToBeBetween(cfg *Configuration) (Expectation, apperrors.Error) {
	var kw columnMaxKwargs
	if err := cfg.decodeKwargs(&kw); err != nil {
		return nil, err
	}
	e := &ColumnMaxToBeBetween{
		cfg:       cfg,
		Column:    kw.Column,
		StrictMin: kw.StrictMin,
		StrictMax: kw.StrictMax,
	}
	var err apperrors.Error
	if e.min, err = toScalar(kw.MinValue); err != nil {
		return nil, ErrInvalidKwargs.MsgErr("invalid min_value", err)
	}
	if e.max, err = toScalar(kw.MaxValue); err != nil {
		return nil, ErrInvalidKwargs.MsgErr("invalid max_value", err)
	}
	if e.min == nil && e.max == nil {
		return nil, ErrInvalidKwargs.Msg("min_value and max_value cannot both be empty")
	}
	if e.min != nil && e.max != nil {
		if !e.min.sameKind(e.max) {
			return nil, ErrInvalidKwargs.Msg("min_value and max_value must both be numbers or both be datetimes")
		}
		if e.min.compare(e.max) > 0 {
			return nil, ErrInvalidKwargs.Msg("min_value cannot be greater than max_value")
		}
	}
	return e, nil
}

func (e *ColumnMaxToBeBetween) Type() string { return ColumnMaxToBeBetweenType }

func (e *ColumnMaxToBeBetween) Configuration() *Configuration { return e.cfg }

func (e *ColumnMaxToBeBetween) MetricDependencies() []string {
	return []string{MetricColumnMax}
}

// Validate checks the column.max metric against the bounds. A nil metric
// value fails the expectation.
func (e *ColumnMaxToBeBetween) Validate(metrics map[string]any) (*ValidationResult, apperrors.Error) {
	raw, ok := metrics[MetricColumnMax]
	if !ok {
		return nil, ErrMissingMetric.Msgf("metric %q is required", MetricColumnMax)
	}
	result := &ValidationResult{ObservedValue: raw, Expectation: e.cfg}
	observed, err := toScalar(raw)
	if err != nil {
		return nil, err
	}
	if observed == nil {
		return result, nil
	}

	aboveMin := true
	if e.min != nil {
		if !observed.sameKind(e.min) {
			return nil, ErrInvalidMetric.Msgf("%s value %v cannot be compared with min_value %s", MetricColumnMax, raw, e.min)
		}
		c := observed.compare(e.min)
		aboveMin = c > 0 || (!e.StrictMin && c == 0)
	}
	belowMax := true
	if e.max != nil {
		if !observed.sameKind(e.max) {
			return nil, ErrInvalidMetric.Msgf("%s value %v cannot be compared with max_value %s", MetricColumnMax, raw, e.max)
		}
		c := observed.compare(e.max)
		belowMax = c < 0 || (!e.StrictMax && c == 0)
	}
	result.Success = aboveMin && belowMax
	return result, nil
}

// Describe renders the expectation as a sentence.
func (e *ColumnMaxToBeBetween) Describe() string {
	atLeast := "greater than or equal to"
	if e.StrictMin {
		atLeast = "greater than"
	}
	atMost := "less than or equal to"
	if e.StrictMax {
		atMost = "less than"
	}
	prefix := e.Column + " maximum value must be "
	switch {
	case e.min != nil && e.max != nil:
		if e.min.compare(e.max) == 0 {
			return prefix + e.min.String() + "."
		}
		return prefix + atLeast + " " + e.min.String() + " and " + atMost + " " + e.max.String() + "."
	case e.min == nil:
		return prefix + atMost + " " + e.max.String() + "."
	default:
		return prefix + atLeast + " " + e.min.String() + "."
	}
}

func init() {
	Register(ColumnMaxToBeBetweenType, newColumnMaxToBeBetween)
}
