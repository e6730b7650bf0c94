package license

import "errors"

// Verification failures. Each is terminal for the activation attempt and is
// surfaced to the caller as a structured reason, never defaulted to success.
var (
	ErrInvalidFormat      = errors.New("invalid license format")
	ErrBadSignatureFormat = errors.New("invalid signature format")
	ErrBadSignature       = errors.New("bad signature")
	ErrBadExpiry          = errors.New("bad expiry")
	ErrExpired            = errors.New("expired")
	ErrSchoolMismatch     = errors.New("school code mismatch")
)

// IsVerificationError reports whether err is one of the license verification
// failures, as opposed to a storage or infrastructure error.
func IsVerificationError(err error) bool {
	for _, candidate := range []error{
		ErrInvalidFormat,
		ErrBadSignatureFormat,
		ErrBadSignature,
		ErrBadExpiry,
		ErrExpired,
		ErrSchoolMismatch,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// Reason returns the stable reason string for a verification failure, or the
// plain error text for anything else.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return "Invalid license format"
	case errors.Is(err, ErrBadSignatureFormat):
		return "Invalid signature format"
	case errors.Is(err, ErrBadSignature):
		return "Bad signature"
	case errors.Is(err, ErrBadExpiry):
		return "Bad expiry"
	case errors.Is(err, ErrExpired):
		return "Expired"
	case errors.Is(err, ErrSchoolMismatch):
		return "School code mismatch"
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
