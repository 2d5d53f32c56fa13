// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package validator provides the pluggable payload-validation strategies used
// by flatframe's validating framer/deframer adapters.
//
// A Validator runs after checksum verification and before the payload is
// handed to the caller (on read) or written to the wire (on write); it
// exists to reject structurally unsafe or out-of-policy payloads before the
// application touches them.
package validator

import "fmt"

// Validator is the contract a payload-validation strategy must satisfy to be
// usable by flatframe's validating framer/deframer adapters.
type Validator interface {
	// Validate reports nil if payload is acceptable, or a non-nil error
	// describing why it was rejected.
	Validate(payload []byte) error

	// Name identifies this validator for diagnostics and for the Validator
	// field of a flatframe.Error of KindValidationFailed.
	Name() string
}

// FailedError reports that a Validator rejected a payload. flatframe's
// validating deframer/framer translate this into a flatframe.Error of
// KindValidationFailed.
type FailedError struct {
	ValidatorName string
	Reason        string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("validator %s: %s", e.ValidatorName, e.Reason)
}
