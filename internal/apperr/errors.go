// Package apperr defines the error kinds surfaced by ledger operations.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format (e.g. 1/15)")
	ErrPastStartDate     = errors.New("start date must be today or later")
	ErrInvalidRange      = errors.New("end date must not be earlier than start date")
	ErrOverlapConflict   = errors.New("period already reserved")
	ErrUnknownCamera     = errors.New("camera not found")
	ErrBlankName         = errors.New("name is required")
	ErrCheckedOut        = errors.New("camera is checked out")
)

// OverlapError reports the stored interval that a new reservation collides with.
// Start and End are in display form (M/D).
type OverlapError struct {
	Start string
	End   string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s (%s ～ %s)", ErrOverlapConflict.Error(), e.Start, e.End)
}

// Is makes errors.Is(err, ErrOverlapConflict) match.
func (e *OverlapError) Is(target error) bool {
	return target == ErrOverlapConflict
}

// IsValidation reports whether err is a caller input error that can be
// corrected and retried.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDateFormat) ||
		errors.Is(err, ErrPastStartDate) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrOverlapConflict) ||
		errors.Is(err, ErrBlankName)
}
