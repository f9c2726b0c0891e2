package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/facematch"
)

// Clock and enrollment errors. Match and store errors are re-exported so callers
// can classify everything against this package.
var (
	ErrAlreadyCheckedIn       = errors.New("already checked in today")
	ErrAlreadyCheckedOut      = errors.New("already checked out today")
	ErrNoCheckInFound         = errors.New("no check-in found for today")
	ErrOutOfOrder             = errors.New("check-out must be after check-in")
	ErrTimeout                = errors.New("operation timed out")
	ErrInvalidEmbeddingLength = errors.New("invalid embedding length")
	ErrInvalidCredentials     = errors.New("invalid staff number or PIN")
	ErrUnknownStaff           = errors.New("unknown staff member")
	ErrInvalidClockType       = errors.New("clock type must be check_in or check_out")

	ErrInvalidInput     = facematch.ErrInvalidInput
	ErrNoEnrollments    = facematch.ErrNoEnrollments
	ErrNoMatch          = facematch.ErrNoMatch
	ErrAmbiguousMatch   = facematch.ErrAmbiguousMatch
	ErrDuplicateKey     = database.ErrDuplicateKey
	ErrStoreUnavailable = database.ErrStoreUnavailable
)

// classify wraps err with ErrTimeout when the operation's deadline was hit.
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
