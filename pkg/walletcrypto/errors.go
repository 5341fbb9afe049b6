package walletcrypto

import "fmt"

// Kind identifies the closed set of failure conditions this package
// reports. Callers dispatch on Kind rather than string-matching error text.
type Kind int

const (
	// KindUnspecified is the zero value; it is never returned to a caller.
	KindUnspecified Kind = iota

	// KindBadEncoding indicates a hex string was odd-length or contained a
	// non-hex character.
	KindBadEncoding

	// KindBadKeyLength indicates an AES key was not 16, 24, or 32 bytes.
	KindBadKeyLength

	// KindBadIvLength indicates an AES IV was not exactly 16 bytes.
	KindBadIvLength

	// KindBadKeyFormat indicates a private or public key had the wrong
	// length or, for public keys, the wrong prefix byte.
	KindBadKeyFormat

	// KindNotOnCurve indicates a parsed public key's coordinates do not
	// satisfy the curve equation.
	KindNotOnCurve

	// KindIsIdentity indicates a parsed public key is the point at
	// infinity.
	KindIsIdentity

	// KindOutOfRange indicates a scalar was zero or >= the curve order.
	KindOutOfRange

	// KindBadParams indicates illegal KDF memory or iteration parameters.
	KindBadParams

	// KindEntropyUnavailable indicates the platform entropy source could
	// not fill a request.
	KindEntropyUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindBadEncoding:
		return "BadEncoding"
	case KindBadKeyLength:
		return "BadKeyLength"
	case KindBadIvLength:
		return "BadIvLength"
	case KindBadKeyFormat:
		return "BadKeyFormat"
	case KindNotOnCurve:
		return "NotOnCurve"
	case KindIsIdentity:
		return "IsIdentity"
	case KindOutOfRange:
		return "OutOfRange"
	case KindBadParams:
		return "BadParams"
	case KindEntropyUnavailable:
		return "EntropyUnavailable"
	default:
		return "Unspecified"
	}
}

// Error wraps a Kind with the operation that produced it, following the
// Op/Err wrapping shape used throughout the cb-mpc codebase.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("walletcrypto.%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("walletcrypto.%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, SomeKind) work by comparing against a bare Kind
// sentinel wrapped in an *Error with no Op.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newErr(op string, kind Kind, format string, args ...any) *Error {
	var err error
	if format != "" {
		err = fmt.Errorf(format, args...)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// sentinel returns a bare *Error carrying only a Kind, suitable as the
// target of errors.Is(err, walletcrypto.ErrNotOnCurve) and similar.
func sentinel(kind Kind) *Error { return &Error{Kind: kind} }

var (
	// ErrBadEncoding is the errors.Is target for KindBadEncoding.
	ErrBadEncoding = sentinel(KindBadEncoding)
	// ErrBadKeyLength is the errors.Is target for KindBadKeyLength.
	ErrBadKeyLength = sentinel(KindBadKeyLength)
	// ErrBadIvLength is the errors.Is target for KindBadIvLength.
	ErrBadIvLength = sentinel(KindBadIvLength)
	// ErrBadKeyFormat is the errors.Is target for KindBadKeyFormat.
	ErrBadKeyFormat = sentinel(KindBadKeyFormat)
	// ErrNotOnCurve is the errors.Is target for KindNotOnCurve.
	ErrNotOnCurve = sentinel(KindNotOnCurve)
	// ErrIsIdentity is the errors.Is target for KindIsIdentity.
	ErrIsIdentity = sentinel(KindIsIdentity)
	// ErrOutOfRange is the errors.Is target for KindOutOfRange.
	ErrOutOfRange = sentinel(KindOutOfRange)
	// ErrBadParams is the errors.Is target for KindBadParams.
	ErrBadParams = sentinel(KindBadParams)
	// ErrEntropyUnavailable is the errors.Is target for KindEntropyUnavailable.
	ErrEntropyUnavailable = sentinel(KindEntropyUnavailable)
)
