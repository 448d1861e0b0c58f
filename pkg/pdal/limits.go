package pdal

import (
	"strconv"
)

// Limits is a filters.range bound expression of the form Field[low:high].
// A nil bound is open on that side.
type Limits struct {
	Field string
	Low   *float64
	High  *float64
}

// Equal keeps points whose field equals v.
func Equal(field string, v float64) Limits {
	return Limits{Field: field, Low: &v, High: &v}
}

// AtMost keeps points whose field is at or below v.
func AtMost(field string, v float64) Limits {
	return Limits{Field: field, High: &v}
}

// Between keeps points whose field lies in [lo, hi].
func Between(field string, lo, hi float64) Limits {
	return Limits{Field: field, Low: &lo, High: &hi}
}

// String renders the expression, e.g. "Z[:100]" or "Classification[2:2]".
func (l Limits) String() string {
	return l.Field + "[" + formatBound(l.Low) + ":" + formatBound(l.High) + "]"
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
