// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe

import (
	"io"

	"code.hybscloud.com/flatframe/checksum"
	"code.hybscloud.com/flatframe/validator"
)

// Deframer reads exactly one frame from r on each call, leaving the payload
// bytes in *scratch.
//
// ReadFrame reports (true, nil) when a payload was read: (*scratch)[:n] is
// the payload, where n is the frame's declared length. It reports (false,
// nil) on clean end-of-input encountered before any byte of a new frame was
// consumed. Any other outcome is (false, err); *scratch's contents are then
// unspecified and r must be treated as poisoned past this point.
type Deframer interface {
	ReadFrame(r io.Reader, scratch *[]byte) (bool, error)
}

// growScratch ensures *scratch has length n, reusing its backing array when
// it already has enough capacity. When zeroStale is true and the buffer is
// grown within its existing capacity, the newly exposed bytes (left over
// from a previous, larger payload) are cleared first; the header read in
// readFrame and the unsafe deframer pass false here, trusting the
// subsequent read to overwrite the region
// and accepting that a short read may leave stale bytes visible in a buffer
// already documented as unspecified on error.
func growScratch(scratch *[]byte, n int, zeroStale bool) {
	if cap(*scratch) < n {
		*scratch = make([]byte, n)
		return
	}
	old := len(*scratch)
	*scratch = (*scratch)[:n]
	if zeroStale && n > old {
		clear((*scratch)[old:n])
	}
}

// payloadReader reads exactly n payload bytes from r into *scratch, which it
// is responsible for sizing via growScratch. It returns a *Error (IO or
// UnexpectedEOF) on failure.
type payloadReader func(r io.Reader, scratch *[]byte, n int) error

func readPayloadDefault(r io.Reader, scratch *[]byte, n int) error {
	growScratch(scratch, n, true)
	return readPayloadBody(r, (*scratch)[:n])
}

func readPayloadSafeTake(r io.Reader, scratch *[]byte, n int) error {
	growScratch(scratch, n, true)
	lr := &io.LimitedReader{R: r, N: int64(n)}
	return readPayloadBody(lr, (*scratch)[:n])
}

func readPayloadUnsafe(r io.Reader, scratch *[]byte, n int) error {
	growScratch(scratch, n, false)
	return readPayloadBody(r, (*scratch)[:n])
}

func readPayloadBody(r io.Reader, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if _, err := readFull(r, dst); err != nil {
		if err == io.EOF {
			return unexpectedEOF()
		}
		return ioError(err)
	}
	return nil
}

// baseDeframer implements Default, SafeTake, Unsafe, and Checksum: all four
// share the same length-then-checksum-then-payload shape and differ only in
// checksum width and payload-read strategy.
type baseDeframer struct {
	checksum checksum.Strategy
	read     payloadReader
}

// DefaultDeframer reads a 4-byte length then exactly that many payload
// bytes into scratch. Before the payload read, the bytes of scratch past
// the length field are zeroed.
func DefaultDeframer() Deframer {
	return &baseDeframer{checksum: checksum.None(), read: readPayloadDefault}
}

// SafeTakeDeframer is semantically equivalent to DefaultDeframer; it reads
// the payload through an io.LimitedReader capped at the declared length,
// which some sources can service more efficiently.
func SafeTakeDeframer() Deframer {
	return &baseDeframer{checksum: checksum.None(), read: readPayloadSafeTake}
}

// UnsafeDeframer is semantically equivalent to DefaultDeframer but skips
// zero-initializing scratch before reading into it. It still fails cleanly
// on a short or truncated read; callers opt into this only when the source
// is trusted and the modest allocation-clearing cost of Default matters.
func UnsafeDeframer() Deframer {
	return &baseDeframer{checksum: checksum.None(), read: readPayloadUnsafe}
}

// ChecksumDeframer reads a 4-byte length, c.Size() little-endian checksum
// bytes, then the payload, and verifies the checksum before reporting
// success. c.Size() == 0 collapses this to DefaultDeframer's behavior.
func ChecksumDeframer(c checksum.Strategy) Deframer {
	return &baseDeframer{checksum: c, read: readPayloadDefault}
}

func (d *baseDeframer) ReadFrame(r io.Reader, scratch *[]byte) (bool, error) {
	return d.readFrame(r, scratch, -1)
}

// readFrame is the shared implementation; maxLength < 0 means unbounded.
// Bounded calls this directly (via the boundedSource interface below) so the
// length field is read exactly once even when a bound is enforced.
func (d *baseDeframer) readFrame(r io.Reader, scratch *[]byte, maxLength int64) (bool, error) {
	width := 0
	if d.checksum != nil {
		width = d.checksum.Size()
	}
	// The length and checksum fields are read into the front of scratch,
	// which the payload read then overwrites: a local array handed to r.Read
	// would escape to the heap and cost an allocation on every frame.
	growScratch(scratch, lengthFieldSize+width, false)
	header := *scratch
	n, err := readFull(r, header[:lengthFieldSize])
	if err != nil {
		if err == io.EOF && n == 0 {
			return false, nil
		}
		if err == io.EOF {
			return false, unexpectedEOF()
		}
		return false, ioError(err)
	}
	length := getLength(header[:lengthFieldSize])

	if maxLength >= 0 && int64(length) > maxLength {
		return false, invalidFrame("length exceeds bound", int64(length), maxLength)
	}

	var expected uint64
	if width > 0 {
		if _, cerr := readFull(r, header[lengthFieldSize:lengthFieldSize+width]); cerr != nil {
			if cerr == io.EOF {
				return false, unexpectedEOF()
			}
			return false, ioError(cerr)
		}
		expected = getChecksum(header[lengthFieldSize:], width)
	}

	if err := d.read(r, scratch, int(length)); err != nil {
		return false, err
	}

	if width > 0 {
		computed := d.checksum.Compute((*scratch)[:length])
		if expected != computed {
			return false, checksumMismatch(expected, computed)
		}
	}

	return true, nil
}

// boundedSource is implemented by the four base deframers (Default,
// SafeTake, Unsafe, Checksum) so Bounded can enforce a length limit without
// reading the length field twice. The Bounded, Observer, and Validating
// adapters do not implement it.
type boundedSource interface {
	readFrame(r io.Reader, scratch *[]byte, maxLength int64) (bool, error)
}

// boundedDeframer wraps an inner Deframer and rejects any frame whose
// declared length exceeds max, before any payload byte is consumed, when
// the inner deframer is one of the four base deframers. Wrapping any other
// Deframer (an Observer or Validating adapter, or a caller-supplied custom
// Deframer) falls back to delegating unbounded: no length check is made.
type boundedDeframer struct {
	inner Deframer
	max   int
}

// BoundedDeframer returns a Deframer that fails with a KindInvalidFrame
// error whenever the declared frame length exceeds max, provided inner is
// DefaultDeframer, SafeTakeDeframer, UnsafeDeframer, or ChecksumDeframer.
// Any other inner Deframer is delegated to without a bound check.
func BoundedDeframer(inner Deframer, max int) Deframer {
	return &boundedDeframer{inner: inner, max: max}
}

func (d *boundedDeframer) ReadFrame(r io.Reader, scratch *[]byte) (bool, error) {
	if bs, ok := d.inner.(boundedSource); ok {
		return bs.readFrame(r, scratch, int64(d.max))
	}
	return d.inner.ReadFrame(r, scratch)
}

// observerDeframer invokes cb with the borrowed payload slice immediately
// after the inner deframer successfully produces one, before reporting
// success to the caller.
type observerDeframer struct {
	inner Deframer
	cb    func([]byte)
}

// ObserverDeframer returns a Deframer that invokes cb with each delivered
// payload (a slice borrowed from scratch, not to be retained) in addition to
// delegating to inner.
func ObserverDeframer(inner Deframer, cb func([]byte)) Deframer {
	return &observerDeframer{inner: inner, cb: cb}
}

func (d *observerDeframer) ReadFrame(r io.Reader, scratch *[]byte) (bool, error) {
	ok, err := d.inner.ReadFrame(r, scratch)
	if ok && err == nil {
		d.cb(*scratch)
	}
	return ok, err
}

// validatingDeframer runs v against each payload the inner deframer
// produces and withholds it (returning a KindValidationFailed error
// instead) when validation fails.
type validatingDeframer struct {
	inner Deframer
	v     validator.Validator
}

// ValidatingDeframer returns a Deframer that rejects any payload v does not
// accept, after the inner deframer has otherwise successfully produced it.
func ValidatingDeframer(inner Deframer, v validator.Validator) Deframer {
	return &validatingDeframer{inner: inner, v: v}
}

func (d *validatingDeframer) ReadFrame(r io.Reader, scratch *[]byte) (bool, error) {
	ok, err := d.inner.ReadFrame(r, scratch)
	if !ok || err != nil {
		return ok, err
	}
	if verr := d.v.Validate(*scratch); verr != nil {
		return false, validationFailed(d.v.Name(), verr.Error())
	}
	return true, nil
}
