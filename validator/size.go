// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

import "fmt"

// sizeValidator rejects payloads outside a fixed [min, max] byte-length
// range.
type sizeValidator struct {
	min, max int
}

// Size returns a validator that rejects any payload whose length in bytes is
// less than min or greater than max.
func Size(min, max int) Validator {
	return sizeValidator{min: min, max: max}
}

func (v sizeValidator) Validate(payload []byte) error {
	n := len(payload)
	if n < v.min {
		return &FailedError{ValidatorName: v.Name(), Reason: fmt.Sprintf("payload size %d is less than min %d", n, v.min)}
	}
	if n > v.max {
		return &FailedError{ValidatorName: v.Name(), Reason: fmt.Sprintf("payload size %d exceeds max %d", n, v.max)}
	}
	return nil
}

func (sizeValidator) Name() string { return "Size" }
