// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

// VerifyFunc verifies payload against a specific, known FlatBuffers root
// type and returns a non-nil error describing the failure if it is not a
// valid instance of that type.
type VerifyFunc func(payload []byte) error

// typedValidator wraps a caller-supplied, schema-aware verification function
// (typically a generated table's root verifier) as a Validator.
//
// Go's generated FlatBuffers code does not expose a schema-aware Verify
// entry point the way flatbuffers-rust's Follow/Verifiable traits do; Typed
// instead accepts the function directly, so callers pass the verifier their
// generated root type provides (or hand-write one) and get flatframe's
// error taxonomy and Composite/adapter wiring for free.
type typedValidator struct {
	name   string
	verify VerifyFunc
}

// Typed returns a validator that delegates to verify, reporting failures
// under the given diagnostic name.
func Typed(name string, verify VerifyFunc) Validator {
	return typedValidator{name: name, verify: verify}
}

func (v typedValidator) Validate(payload []byte) error {
	if err := v.verify(payload); err != nil {
		return &FailedError{ValidatorName: v.name, Reason: err.Error()}
	}
	return nil
}

func (v typedValidator) Name() string { return v.name }
