// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package flatframe provides a composable, zero-copy framing layer for
// streaming length-prefixed FlatBuffers payloads over any byte-oriented
// io.Reader/io.Writer.
//
// Semantics and design:
//   - Wire format: a 4-byte little-endian length prefix, an optional
//     little-endian checksum field (0/2/4/8 bytes depending on the chosen
//     checksum strategy), then the opaque payload bytes.
//   - Zero-copy reads: Reader owns a reusable scratch buffer and hands out
//     payload slices borrowed from it; a slice is valid only until the next
//     call on that Reader.
//   - Allocation-reusing writes: Writer owns a *flatbuffers.Builder and
//     resets it between messages; a policy.Policy decides when to
//     drop an over-grown builder in favor of a fresh one.
//   - Single-threaded, synchronous: every operation runs on the caller's
//     goroutine and blocks on the underlying source/sink. No internal
//     concurrency, no async surface.
package flatframe

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories surfaced by every fallible
// operation in this package.
type Kind uint8

const (
	// KindIO reports a non-retryable I/O error from the underlying source
	// or sink.
	KindIO Kind = iota + 1
	// KindUnexpectedEOF reports end-of-input reached mid-frame, after at
	// least one byte of a new frame was already consumed.
	KindUnexpectedEOF
	// KindInvalidFrame reports a length that exceeds a configured bound,
	// or any other framer/deframer sanity check failure.
	KindInvalidFrame
	// KindChecksumMismatch reports that a verified checksum did not match
	// the computed one.
	KindChecksumMismatch
	// KindValidationFailed reports that an installed validator rejected a
	// payload.
	KindValidationFailed
	// KindFlatbuffersError reports that a typed read's decode function
	// failed verification.
	KindFlatbuffersError
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindUnexpectedEOF:
		return "unexpected-eof"
	case KindInvalidFrame:
		return "invalid-frame"
	case KindChecksumMismatch:
		return "checksum-mismatch"
	case KindValidationFailed:
		return "validation-failed"
	case KindFlatbuffersError:
		return "flatbuffers-error"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by every fallible operation in
// package flatframe. The checksum and validator subpackages report their
// own *checksum.MismatchError and *validator.FailedError. Its Kind is one
// of the closed set above; the kind-specific fields are populated according
// to Kind.
type Error struct {
	Kind Kind

	// Reason is a human-readable description, always populated.
	Reason string

	// Populated when Kind == KindInvalidFrame and the offending length is
	// known.
	Length int64
	Bound  int64

	// Populated when Kind == KindChecksumMismatch.
	Expected uint64
	Computed uint64

	// Populated when Kind == KindValidationFailed.
	Validator string

	// Cause is the wrapped underlying error, if any: the I/O error for
	// KindIO, or the decode or Serialize error for KindFlatbuffersError.
	Cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindChecksumMismatch:
		return fmt.Sprintf("flatframe: checksum mismatch: expected %d, computed %d", e.Expected, e.Computed)
	case KindValidationFailed:
		return fmt.Sprintf("flatframe: validation failed: %s: %s", e.Validator, e.Reason)
	case KindInvalidFrame:
		if e.Bound > 0 {
			return fmt.Sprintf("flatframe: invalid frame: %s (length=%d bound=%d)", e.Reason, e.Length, e.Bound)
		}
		return fmt.Sprintf("flatframe: invalid frame: %s", e.Reason)
	case KindUnexpectedEOF:
		return "flatframe: unexpected EOF mid-frame"
	case KindFlatbuffersError:
		if e.Cause != nil {
			return fmt.Sprintf("flatframe: flatbuffers verification failed: %v", e.Cause)
		}
		return "flatframe: flatbuffers verification failed"
	case KindIO:
		if e.Cause != nil {
			return fmt.Sprintf("flatframe: io error: %v", e.Cause)
		}
		return "flatframe: io error"
	default:
		return "flatframe: error: " + e.Reason
	}
}

// Unwrap exposes the wrapped cause, if any, so errors.Is/errors.As chain
// through to the underlying I/O or decode error.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &flatframe.Error{Kind: flatframe.KindUnexpectedEOF})
// or, more conveniently, use the Is* helpers below.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Kind == e.Kind
	}
	return false
}

func ioError(cause error) *Error {
	return &Error{Kind: KindIO, Reason: "io error", Cause: cause}
}

func unexpectedEOF() *Error {
	return &Error{Kind: KindUnexpectedEOF, Reason: "unexpected EOF mid-frame"}
}

func invalidFrame(reason string, length, bound int64) *Error {
	return &Error{Kind: KindInvalidFrame, Reason: reason, Length: length, Bound: bound}
}

func checksumMismatch(expected, computed uint64) *Error {
	return &Error{Kind: KindChecksumMismatch, Reason: "checksum mismatch", Expected: expected, Computed: computed}
}

func validationFailed(validatorName, reason string) *Error {
	return &Error{Kind: KindValidationFailed, Reason: reason, Validator: validatorName}
}

func flatbuffersError(cause error) *Error {
	return &Error{Kind: KindFlatbuffersError, Reason: "flatbuffers verification failed", Cause: cause}
}

// IsUnexpectedEOF reports whether err is a flatframe UnexpectedEOF error.
func IsUnexpectedEOF(err error) bool { return kindOf(err) == KindUnexpectedEOF }

// IsChecksumMismatch reports whether err is a flatframe ChecksumMismatch error.
func IsChecksumMismatch(err error) bool { return kindOf(err) == KindChecksumMismatch }

// IsInvalidFrame reports whether err is a flatframe InvalidFrame error.
func IsInvalidFrame(err error) bool { return kindOf(err) == KindInvalidFrame }

// IsValidationFailed reports whether err is a flatframe ValidationFailed error.
func IsValidationFailed(err error) bool { return kindOf(err) == KindValidationFailed }

func kindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
