// Package errors provides structured error types for the trace decoder.
//
// Errors are categorized by Phase (where in decoding the error occurred) and
// Kind (error category). The Error type includes rich context: the function
// being decoded, the stream offset, and the offending tag byte.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDetail, errors.KindUnknownDetail).
//		Function("glDrawArrays").
//		Offset(1042).
//		Tag(0x17).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownEvent(offset, tag)
//	err := errors.UnsupportedVersion(version, trace.TraceVersion)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
