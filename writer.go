// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe

import (
	"io"
	"iter"
	"log/slog"

	flatbuffers "github.com/google/flatbuffers/go"

	"code.hybscloud.com/flatframe/policy"
)

// Serializer is implemented by values the Writer can frame: Serialize fills
// b with the value's FlatBuffers encoding and calls b.Finish, leaving
// b.FinishedBytes() ready to be framed. b has already been reset by the
// Writer before Serialize is called.
type Serializer interface {
	Serialize(b *flatbuffers.Builder) error
}

// writerOptions configures a Writer at construction.
type writerOptions struct {
	defaultCapacity int
	policy          policy.Policy
	builder         *flatbuffers.Builder
	logger          *slog.Logger
}

var defaultWriterOptions = writerOptions{
	defaultCapacity: 1024,
	policy:          policy.Never(),
	logger:          slog.Default(),
}

// WriterOption configures a Writer via NewWriter.
type WriterOption func(*writerOptions)

// WithDefaultCapacity sets the capacity of the builder a Writer allocates
// initially, and the capacity it returns to after a reclamation event.
func WithDefaultCapacity(n int) WriterOption {
	return func(o *writerOptions) { o.defaultCapacity = n }
}

// WithPolicy sets the memory-reclamation policy consulted after every
// successful Write. The default is policy.Never.
func WithPolicy(p policy.Policy) WriterOption {
	return func(o *writerOptions) { o.policy = p }
}

// WithBuilder supplies the Writer's initial serialization builder, instead
// of one allocated at the default capacity.
func WithBuilder(b *flatbuffers.Builder) WriterOption {
	return func(o *writerOptions) { o.builder = b }
}

// WithWriterLogger sets the *slog.Logger a Writer uses for observational
// logging of reclamation events. Logging never influences control flow.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(o *writerOptions) { o.logger = l }
}

// Writer is the stream framing engine: it owns a sink, a Framer, a reusable
// *flatbuffers.Builder, and a memory-reclamation policy consulted after
// every successful simple Write. Writer is not safe for concurrent use.
type Writer struct {
	sink            io.Writer
	f               Framer
	builder         *flatbuffers.Builder
	defaultCapacity int
	policy          policy.Policy
	logger          *slog.Logger
}

// NewWriter constructs a Writer over sink using f to frame each message.
func NewWriter(sink io.Writer, f Framer, opts ...WriterOption) *Writer {
	o := defaultWriterOptions
	for _, fn := range opts {
		fn(&o)
	}
	b := o.builder
	if b == nil {
		b = flatbuffers.NewBuilder(o.defaultCapacity)
	}
	return &Writer{
		sink:            sink,
		f:               f,
		builder:         b,
		defaultCapacity: o.defaultCapacity,
		policy:          o.policy,
		logger:          o.logger,
	}
}

// Write resets the Writer's owned builder, asks v to serialize into it,
// frames the result, and consults the reclamation policy. On a policy
// reclaim, the owned builder is replaced with a fresh one at the Writer's
// default capacity and policy.OnReclaim is invoked.
func (w *Writer) Write(v Serializer) error {
	w.builder.Reset()
	if err := v.Serialize(w.builder); err != nil {
		return flatbuffersError(err)
	}
	payload := w.builder.FinishedBytes()
	if err := w.f.WriteFrame(w.sink, payload); err != nil {
		return err
	}

	lastSize := len(payload)
	capacityBefore := cap(w.builder.Bytes)
	reason, reset := w.policy.ShouldReset(lastSize, capacityBefore)
	if !reset {
		return nil
	}

	capacityAfter := w.defaultCapacity
	w.builder = flatbuffers.NewBuilder(w.defaultCapacity)
	event := policy.Event{
		Reason:          reason,
		LastMessageSize: lastSize,
		CapacityBefore:  capacityBefore,
		CapacityAfter:   capacityAfter,
	}
	w.policy.OnReclaim(event)
	w.logger.Debug("flatframe: reclaimed serialization buffer",
		"reason", reason.String(),
		"capacity_before", capacityBefore,
		"capacity_after", capacityAfter,
	)
	return nil
}

// WriteFinished frames the currently-finished bytes of a caller-owned
// builder. The Writer does not reset builder; the caller is responsible for
// resetting it between messages. The reclamation policy governs only the
// Writer's own builder and is not consulted on this path.
func (w *Writer) WriteFinished(builder *flatbuffers.Builder) error {
	return w.f.WriteFrame(w.sink, builder.FinishedBytes())
}

// WriteBatch calls Write for each value produced by seq, stopping at the
// first error. Each element is framed atomically; the batch as a whole is
// not.
func (w *Writer) WriteBatch(seq iter.Seq[Serializer]) error {
	for v := range seq {
		if err := w.Write(v); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying sink, if it implements interface{ Flush()
// error }, otherwise it is a no-op.
func (w *Writer) Flush() error {
	if f, ok := w.sink.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Unwrap returns the underlying sink. Useful once streaming is done and the
// caller wants the raw io.Writer back.
func (w *Writer) Unwrap() io.Writer { return w.sink }
