package normalizer

import (
	"errors"
	"fmt"

	"schedconv/internal/models"
)

// ErrUnparseableTime marks a period whose start or end cannot be rendered as
// a clock time. It is recoverable: the enclosing course is pruned.
var ErrUnparseableTime = errors.New("unparseable period time")

// PeriodTimes holds the formatted bounds of a valid period.
type PeriodTimes struct {
	Starts string
	Ends   string
}

// Validator decides whether a period's times can be carried into schedb.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// CheckPeriod formats both bounds of a period. The start is checked first so
// the reported field matches the first bad value.
func (v *Validator) CheckPeriod(period *models.FeedPeriod) (PeriodTimes, error) {
	starts, ok := FormatTime(period.Start)
	if !ok {
		return PeriodTimes{}, fmt.Errorf("%w: start=%q", ErrUnparseableTime, period.Start)
	}

	ends, ok := FormatTime(period.End)
	if !ok {
		return PeriodTimes{}, fmt.Errorf("%w: end=%q", ErrUnparseableTime, period.End)
	}

	return PeriodTimes{Starts: starts, Ends: ends}, nil
}
