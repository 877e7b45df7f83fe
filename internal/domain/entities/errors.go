package entities

import "errors"

// Run-fatal errors. Any of these aborts the whole run.
var (
	ErrWorkspace = errors.New("workspace error")
	ErrClone     = errors.New("clone error")
	ErrInstall   = errors.New("install error")
	ErrParse     = errors.New("parse error")
)

// Candidate-scoped errors. These fail a single update and the run moves on.
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotUpdated          = errors.New("package was not updated")
	ErrUpdateExecution     = errors.New("update execution error")
	ErrExecution           = errors.New("execution error")
	ErrPush                = errors.New("push error")
	ErrValidation          = errors.New("validation error")
)

// Errors that never leave the component that produced them.
var (
	ErrChangelog            = errors.New("changelog error")
	ErrNoSource             = errors.New("dependency has no version-controlled source")
	ErrEmptyChangelog       = errors.New("commit range is empty")
	ErrUnsupportedOperation = errors.New("operation not supported by this provider")
	ErrProviderRuntime      = errors.New("provider runtime error")
	ErrCommandTimeout       = errors.New("command timed out")
	ErrUnknownProvider      = errors.New("unknown provider")
)

// FailureKind is the stable, printable category of a failed update.
type FailureKind string

const (
	FailureConstraintViolation FailureKind = "constraint_violation"
	FailureNotUpdated          FailureKind = "not_updated"
	FailureUpdateExecution     FailureKind = "update_execution"
	FailureExecution           FailureKind = "execution"
	FailurePush                FailureKind = "push"
	FailureValidation          FailureKind = "validation"
	FailureTimeout             FailureKind = "timeout"
	FailureUnknown             FailureKind = "unknown"
)

// ClassifyFailure maps a candidate error to its FailureKind.
// A timeout wins over whatever step it interrupted.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrCommandTimeout):
		return FailureTimeout
	case errors.Is(err, ErrConstraintViolation):
		return FailureConstraintViolation
	case errors.Is(err, ErrNotUpdated):
		return FailureNotUpdated
	case errors.Is(err, ErrUpdateExecution):
		return FailureUpdateExecution
	case errors.Is(err, ErrPush):
		return FailurePush
	case errors.Is(err, ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrExecution):
		return FailureExecution
	default:
		return FailureUnknown
	}
}
