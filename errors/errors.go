package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in decoding the error occurred
type Phase string

const (
	PhaseOpen      Phase = "open"      // file opening / header
	PhaseEvent     Phase = "event"     // top-level event stream
	PhaseDetail    Phase = "detail"    // call detail records
	PhaseValue     Phase = "value"     // tagged value decoding
	PhaseSignature Phase = "signature" // signature interning
	PhaseFile      Phase = "file"      // byte source backend
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownEvent       Kind = "unknown_event"
	KindUnknownDetail      Kind = "unknown_detail"
	KindUnknownType        Kind = "unknown_type"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindCorruptFile        Kind = "corrupt_file"
	KindIO                 Kind = "io"
)

// Error is the structured error type used throughout the decoder
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Function string
	Detail   string
	Offset   uint64
	Tag      int
	hasTag   bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Function != "" {
		b.WriteString(" in ")
		b.WriteString(e.Function)
	}

	if e.Offset != 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.hasTag {
		fmt.Fprintf(&b, ": tag 0x%02X", e.Tag)
	}

	if e.Detail != "" {
		if e.hasTag {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Function sets the function name the decoder was inside when it failed
func (b *Builder) Function(name string) *Builder {
	b.err.Function = name
	return b
}

// Offset sets the stream offset at which the error was detected
func (b *Builder) Offset(off uint64) *Builder {
	b.err.Offset = off
	return b
}

// Tag sets the offending tag byte
func (b *Builder) Tag(tag int) *Builder {
	b.err.Tag = tag
	b.err.hasTag = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnknownEvent creates an error for an unrecognized top-level event tag
func UnknownEvent(offset uint64, tag int) *Error {
	return &Error{
		Phase:  PhaseEvent,
		Kind:   KindUnknownEvent,
		Offset: offset,
		Tag:    tag,
		hasTag: true,
	}
}

// UnknownDetail creates an error for an unrecognized call detail tag
func UnknownDetail(function string, offset uint64, tag int) *Error {
	return &Error{
		Phase:    PhaseDetail,
		Kind:     KindUnknownDetail,
		Function: function,
		Offset:   offset,
		Tag:      tag,
		hasTag:   true,
	}
}

// UnknownType creates an error for an unrecognized value type tag
func UnknownType(offset uint64, tag int) *Error {
	return &Error{
		Phase:  PhaseValue,
		Kind:   KindUnknownType,
		Offset: offset,
		Tag:    tag,
		hasTag: true,
	}
}

// UnexpectedType creates an error for a tag that is valid elsewhere but
// illegal in this position (e.g. a non-integer tag where a signed int is
// required)
func UnexpectedType(offset uint64, tag int) *Error {
	return &Error{
		Phase:  PhaseValue,
		Kind:   KindUnknownType,
		Offset: offset,
		Tag:    tag,
		hasTag: true,
		Detail: "expected an integer value tag",
	}
}

// UnsupportedVersion creates an error for a trace newer than the decoder
func UnsupportedVersion(version, max uint32) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindUnsupportedVersion,
		Detail: fmt.Sprintf("trace format version %d exceeds supported version %d", version, max),
	}
}

// CorruptFile creates an error for a damaged container
func CorruptFile(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseFile,
		Kind:   KindCorruptFile,
		Detail: detail,
		Cause:  cause,
	}
}

// IO wraps an I/O failure from the byte source backend
func IO(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseFile,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// Open wraps a failure to open a trace file
func Open(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindIO,
		Detail: fmt.Sprintf("open %s", path),
		Cause:  cause,
	}
}
