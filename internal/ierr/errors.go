package ierr

import (
	"errors"
	"fmt"
)

// Error kinds. Every error that crosses a service boundary wraps exactly
// one of these so the HTTP layer can discriminate with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDenied         = errors.New("access denied")
	ErrIntegrity      = errors.New("data integrity fault")
	ErrUpstream       = errors.New("upstream failure")
	ErrInternalServer = errors.New("internal server error")

	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource conflict")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenInvalidClaims = errors.New("token contains invalid claims type")
)

// Reason is a stable symbolic code shown to API callers.
type Reason string

const (
	ReasonInvalidID           Reason = "INVALID_ID"
	ReasonAuthRequired        Reason = "AUTH_REQUIRED"
	ReasonProjectNotFound     Reason = "PROJECT_NOT_FOUND"
	ReasonProjectInactive     Reason = "PROJECT_INACTIVE"
	ReasonSubscriptionExpired Reason = "SUBSCRIPTION_EXPIRED"
	ReasonFetchError          Reason = "FETCH_ERROR"

	ReasonProjectLimitReached Reason = "PROJECT_LIMIT_REACHED"
	ReasonInvalidEmbedToken   Reason = "INVALID_EMBED_TOKEN"
	ReasonRateLimited         Reason = "RATE_LIMITED"
)

var reasonMessages = map[Reason]string{
	ReasonInvalidID:           "Invalid ID.",
	ReasonAuthRequired:        "Authentication is required.",
	ReasonProjectNotFound:     "Project not found.",
	ReasonProjectInactive:     "Project is inactive.",
	ReasonSubscriptionExpired: "Subscription has expired.",
	ReasonFetchError:          "An error occurred while fetching data.",
	ReasonProjectLimitReached: "Free plan project limit reached.",
	ReasonInvalidEmbedToken:   "Embed token is invalid or expired.",
	ReasonRateLimited:         "Too many requests.",
}

// Message returns the user-facing text for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return reasonMessages[ReasonFetchError]
}

// DenialError is an expected business outcome, never a system fault.
type DenialError struct {
	Reason Reason
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

func (e *DenialError) Is(target error) bool {
	return target == ErrDenied
}

// Deny wraps a denial reason as an error so handlers can hand it to the
// error middleware.
func Deny(reason Reason) error {
	return &DenialError{Reason: reason}
}

// ReasonOf extracts the denial reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var de *DenialError
	if errors.As(err, &de) {
		return de.Reason, true
	}
	return "", false
}

// Integrity reports a malformed stored record.
func Integrity(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIntegrity, fmt.Sprintf(format, args...))
}

// Upstream wraps a failed call to a data store or external provider.
func Upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}
