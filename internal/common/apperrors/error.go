package apperrors

// Error is the error type shared by every package in this module. Errors form
// a hierarchy: an error created with New on another error reports Is(parent)
// as true, so callers can match on a broad sentinel or on a specific one.
type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	Msgf(format string, args ...any) Error
	MsgErr(msg string, err ...error) Error
	Msg(msg string) Error
	Prefix(prefix string) Error
	Suffix(suffix string) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
	Kind() Kind
	SetKind(kind Kind) Error
}

// Kind classifies an error independent of its message.
type Kind int

const (
	KindUnknown Kind = iota
	// KindType is a caller passing an argument of the wrong kind or a payload of the wrong shape.
	KindType
	// KindValue is an argument of the right kind carrying an unacceptable value.
	KindValue
	KindNotFound
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type error"
	case KindValue:
		return "value error"
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io error"
	default:
		return "unknown"
	}
}
