// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package checksum provides the pluggable integrity-check strategies used by
// flatframe's checksum framer/deframer adapters.
//
// Every Strategy is stateless: Compute and Verify must not accumulate state
// across calls, so a single Strategy value can be shared by a Framer and a
// Deframer, or across goroutines, without synchronization.
package checksum

import "fmt"

// Strategy is the contract a checksum algorithm must satisfy to be usable by
// flatframe's checksum framer/deframer adapters.
type Strategy interface {
	// Size returns the on-wire width of this checksum in bytes: one of
	// 0, 2, 4, or 8.
	Size() int

	// Compute returns the checksum of payload, as an unsigned integer of
	// up to 64 bits, held in the low Size()*8 bits of the return value.
	Compute(payload []byte) uint64

	// Verify reports nil if Compute(payload) == expected, or a
	// *MismatchError carrying both values otherwise.
	Verify(expected uint64, payload []byte) error
}

// MismatchError reports that a verified checksum did not match the computed
// one. flatframe's checksum deframer does not call Verify: it compares the
// result of Compute itself and reports a mismatch as a flatframe.Error of
// KindChecksumMismatch carrying the same two values.
type MismatchError struct {
	Expected uint64
	Computed uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum: expected %d, computed %d", e.Expected, e.Computed)
}

// verifyEqual is the shared Verify implementation for strategies where
// Verify is exactly "recompute and compare".
func verifyEqual(s Strategy, expected uint64, payload []byte) error {
	computed := s.Compute(payload)
	if computed != expected {
		return &MismatchError{Expected: expected, Computed: computed}
	}
	return nil
}
