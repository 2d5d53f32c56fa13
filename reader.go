// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe

import (
	"io"
	"iter"
	"log/slog"
)

// readerOptions configures a Reader at construction.
type readerOptions struct {
	initialCapacity int
	logger          *slog.Logger
}

var defaultReaderOptions = readerOptions{
	initialCapacity: 4096,
	logger:          slog.Default(),
}

// ReaderOption configures a Reader via NewReader.
type ReaderOption func(*readerOptions)

// WithInitialCapacity sets the reader's scratch buffer's starting capacity.
func WithInitialCapacity(n int) ReaderOption {
	return func(o *readerOptions) { o.initialCapacity = n }
}

// WithReaderLogger sets the *slog.Logger a Reader uses for observational
// logging of read failures. Logging never influences control flow.
func WithReaderLogger(l *slog.Logger) ReaderOption {
	return func(o *readerOptions) { o.logger = l }
}

// Reader is the stream deframing engine: it owns a source, a Deframer, and a
// reusable scratch buffer, and yields payload slices borrowed from that
// buffer.
//
// A payload slice returned by ReadOnce, ProcessAll, or Messages is valid
// only from the moment it is handed to the caller until the next call to
// any Reader method on the same Reader. Reader is not safe for concurrent
// use.
type Reader struct {
	src     io.Reader
	d       Deframer
	scratch []byte
	logger  *slog.Logger
}

// NewReader constructs a Reader over src using d to deframe each message.
func NewReader(src io.Reader, d Deframer, opts ...ReaderOption) *Reader {
	o := defaultReaderOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Reader{
		src:     src,
		d:       d,
		scratch: make([]byte, 0, o.initialCapacity),
		logger:  o.logger,
	}
}

// Reserve ensures the scratch buffer's capacity is at least n. It never
// shrinks the buffer.
func (r *Reader) Reserve(n int) {
	if cap(r.scratch) >= n {
		return
	}
	grown := make([]byte, len(r.scratch), n)
	copy(grown, r.scratch)
	r.scratch = grown
}

// ReadOnce reads one frame. ok is false with a nil error on clean
// end-of-input; otherwise a non-nil error reports a failed read and the
// Reader must be discarded. On success, payload is a slice borrowed from
// the Reader's scratch buffer, valid only until the next Reader call.
func (r *Reader) ReadOnce() (payload []byte, ok bool, err error) {
	ok, err = r.d.ReadFrame(r.src, &r.scratch)
	if err != nil {
		r.logger.Debug("flatframe: read failed", "error", err)
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return r.scratch, true, nil
}

// ProcessAll drives ReadOnce in a loop, calling f with each payload until
// clean end-of-input, and stops on the first error from either the deframer
// or f.
func (r *Reader) ProcessAll(f func([]byte) error) error {
	for {
		payload, ok, err := r.ReadOnce()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := f(payload); err != nil {
			return err
		}
	}
}

// Messages returns a pull iterator over this Reader's frames. Iteration
// stops after clean end-of-input, or after yielding one (nil, err) pair on
// failure. The same borrowed-slice aliasing discipline as ReadOnce applies:
// a yielded payload is invalidated by the iterator's next step.
func (r *Reader) Messages() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			payload, ok, err := r.ReadOnce()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(payload, nil) {
				return
			}
		}
	}
}

// Unwrap returns the underlying source. Useful once streaming is done and
// the caller wants the raw io.Reader back.
func (r *Reader) Unwrap() io.Reader { return r.src }
