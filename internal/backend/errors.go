package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying bootstrap failures. The pipeline maps each to
// its own exit code, so implementations must wrap these rather than invent
// parallel sentinels.
var (
	// ErrInit indicates the display/windowing system failed to initialize.
	ErrInit = errors.New("display system init failed")
	// ErrWindow indicates window creation failed.
	ErrWindow = errors.New("window creation failed")
	// ErrExtensions indicates the extension loader failed to initialize.
	ErrExtensions = errors.New("extension loader init failed")
)

// FaultKind enumerates the driver error-flag values an operation can leave
// behind. FaultUnknown covers codes outside the known set.
type FaultKind uint8

const (
	FaultUnknown FaultKind = iota
	FaultInvalidEnum
	FaultInvalidValue
	FaultInvalidOperation
	FaultInvalidFramebufferOperation
	FaultOutOfMemory
	FaultStackUnderflow
	FaultStackOverflow
)

// Describe returns the human-readable description for the fault kind.
// Descriptions follow the reference documentation wording; the unknown case
// is an explicit branch, not a silent default.
func (k FaultKind) Describe() string {
	switch k {
	case FaultInvalidEnum:
		return "An unacceptable value is specified for an enumerated argument."
	case FaultInvalidValue:
		return "A numeric argument is out of range."
	case FaultInvalidOperation:
		return "The specified operation is not allowed in the current state."
	case FaultInvalidFramebufferOperation:
		return "The framebuffer object is not complete."
	case FaultOutOfMemory:
		return "There is not enough memory left to execute the command."
	case FaultStackUnderflow:
		return "An attempt has been made to perform an operation that would cause an internal stack to underflow."
	case FaultStackOverflow:
		return "An attempt has been made to perform an operation that would cause an internal stack to overflow."
	case FaultUnknown:
		return "No description available. Incompatible driver version?"
	}
	return "No description available. Incompatible driver version?"
}

func (k FaultKind) String() string {
	switch k {
	case FaultInvalidEnum:
		return "invalid-enum"
	case FaultInvalidValue:
		return "invalid-value"
	case FaultInvalidOperation:
		return "invalid-operation"
	case FaultInvalidFramebufferOperation:
		return "invalid-framebuffer-operation"
	case FaultOutOfMemory:
		return "out-of-memory"
	case FaultStackUnderflow:
		return "stack-underflow"
	case FaultStackOverflow:
		return "stack-overflow"
	case FaultUnknown:
		return "unknown"
	}
	return "unknown"
}

// Fault reports an unexpected driver error flag detected after an operation
// that was expected to succeed. The pipeline treats it as fatal.
type Fault struct {
	Op   string // the call that left the flag set, e.g. "glCompileShader"
	Code uint32 // raw driver error value
	Kind FaultKind
}

func (f *Fault) Error() string {
	return fmt.Sprintf("driver error after %s: %d (%s): %s", f.Op, f.Code, f.Kind, f.Kind.Describe())
}

// AsFault returns the *Fault inside err, if any.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
