// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe

import (
	"io"

	"code.hybscloud.com/flatframe/checksum"
	"code.hybscloud.com/flatframe/validator"
)

// Framer writes exactly one frame (length prefix, optional checksum,
// payload) to w on each call, or fails. A successful return means every
// byte was accepted by w; writes are not required to be a single syscall.
type Framer interface {
	WriteFrame(w io.Writer, payload []byte) error
}

// baseFramer implements Default and Checksum: both write a 4-byte length,
// checksum.Size() little-endian checksum bytes (zero for None), then the
// payload.
type baseFramer struct {
	checksum checksum.Strategy
}

// DefaultFramer writes a 4-byte length prefix followed by the payload, with
// no checksum field.
func DefaultFramer() Framer {
	return &baseFramer{checksum: checksum.None()}
}

// ChecksumFramer writes a 4-byte length prefix, c.Size() little-endian
// checksum bytes computed over the payload, then the payload. c.Size() == 0
// collapses this to DefaultFramer's behavior.
func ChecksumFramer(c checksum.Strategy) Framer {
	return &baseFramer{checksum: c}
}

func (f *baseFramer) WriteFrame(w io.Writer, payload []byte) error {
	width := 0
	if f.checksum != nil {
		width = f.checksum.Size()
	}
	header := make([]byte, lengthFieldSize+width)
	putLength(header[:lengthFieldSize], uint32(len(payload)))
	if width > 0 {
		putChecksum(header[lengthFieldSize:], f.checksum.Compute(payload), width)
	}
	if err := writeFull(w, header); err != nil {
		return ioError(err)
	}
	if len(payload) == 0 {
		return nil
	}
	if err := writeFull(w, payload); err != nil {
		return ioError(err)
	}
	return nil
}

// boundedFramer wraps an inner Framer and rejects any payload longer than
// max before any byte reaches the sink.
type boundedFramer struct {
	inner Framer
	max   int
}

// BoundedFramer returns a Framer that fails with a KindInvalidFrame error,
// writing nothing, whenever len(payload) exceeds max.
func BoundedFramer(inner Framer, max int) Framer {
	return &boundedFramer{inner: inner, max: max}
}

func (f *boundedFramer) WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > f.max {
		return invalidFrame("payload exceeds bound", int64(len(payload)), int64(f.max))
	}
	return f.inner.WriteFrame(w, payload)
}

// observerFramer invokes cb with the borrowed payload slice before
// delegating to inner. cb must not retain the slice and must not fail.
type observerFramer struct {
	inner Framer
	cb    func([]byte)
}

// ObserverFramer returns a Framer that invokes cb with each payload (not to
// be retained) before writing it via inner.
func ObserverFramer(inner Framer, cb func([]byte)) Framer {
	return &observerFramer{inner: inner, cb: cb}
}

func (f *observerFramer) WriteFrame(w io.Writer, payload []byte) error {
	f.cb(payload)
	return f.inner.WriteFrame(w, payload)
}

// validatingFramer runs v against the payload before delegating to inner,
// rejecting payloads v does not accept before any byte reaches the sink.
type validatingFramer struct {
	inner Framer
	v     validator.Validator
}

// ValidatingFramer returns a Framer that fails with a KindValidationFailed
// error, writing nothing, whenever v rejects the payload.
func ValidatingFramer(inner Framer, v validator.Validator) Framer {
	return &validatingFramer{inner: inner, v: v}
}

func (f *validatingFramer) WriteFrame(w io.Writer, payload []byte) error {
	if err := f.v.Validate(payload); err != nil {
		return validationFailed(f.v.Name(), err.Error())
	}
	return f.inner.WriteFrame(w, payload)
}
