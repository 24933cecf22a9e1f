package expectation

import (
	"strconv"
	"time"

	json "github.com/json-iterator/go"
	"github.com/tansive/datasource-store/internal/common/apperrors"
)

// scalar is a bound or metric value: either a number or a point in time.
type scalar struct {
	isTime bool
	num    float64
	t      time.Time
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// toScalar converts a decoded JSON or YAML value. A nil v yields nil.
func toScalar(v any) (*scalar, apperrors.Error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &scalar{num: x}, nil
	case float32:
		return &scalar{num: float64(x)}, nil
	case int:
		return &scalar{num: float64(x)}, nil
	case int64:
		return &scalar{num: float64(x)}, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, ErrInvalidMetric.Msgf("invalid number %q", string(x))
		}
		return &scalar{num: f}, nil
	case time.Time:
		return &scalar{isTime: true, t: x}, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return &scalar{isTime: true, t: t}, nil
			}
		}
		return nil, ErrInvalidMetric.Msgf("%q is neither a number nor a datetime", x)
	}
	return nil, ErrInvalidMetric.Msgf("unsupported value of type %T", v)
}

// compare returns -1, 0 or 1 as c is less than, equal to or greater than o.
// Both must be of the same kind.
func (c *scalar) compare(o *scalar) int {
	if c.isTime {
		return c.t.Compare(o.t)
	}
	switch {
	case c.num < o.num:
		return -1
	case c.num > o.num:
		return 1
	}
	return 0
}

func (c *scalar) sameKind(o *scalar) bool {
	return c.isTime == o.isTime
}

func (c *scalar) String() string {
	if c.isTime {
		return c.t.Format(time.RFC3339)
	}
	return strconv.FormatFloat(c.num, 'f', -1, 64)
}
