// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe

import "iter"

// ProcessTyped drives r.ProcessAll, first passing each payload through
// decode (typically a generated FlatBuffers root type's verifying
// constructor) before calling f with the decoded value. A decode failure is
// reported as a KindFlatbuffersError and stops iteration, matching
// ProcessAll's error propagation.
func ProcessTyped[T any](r *Reader, decode func([]byte) (T, error), f func(T) error) error {
	return r.ProcessAll(func(payload []byte) error {
		v, err := decode(payload)
		if err != nil {
			return flatbuffersError(err)
		}
		return f(v)
	})
}

// ProcessTypedUnchecked is ProcessTyped without per-message verification,
// for callers that guarantee payload integrity out of band (e.g. a
// ChecksumDeframer already verified the bytes and the schema is trusted).
func ProcessTypedUnchecked[T any](r *Reader, decode func([]byte) T, f func(T) error) error {
	return r.ProcessAll(func(payload []byte) error {
		return f(decode(payload))
	})
}

// TypedMessages is Messages with each payload passed through decode before
// being yielded. A decode failure yields a (zero value, KindFlatbuffersError)
// pair and ends iteration.
func TypedMessages[T any](r *Reader, decode func([]byte) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for payload, err := range r.Messages() {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			v, derr := decode(payload)
			if derr != nil {
				var zero T
				yield(zero, flatbuffersError(derr))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
