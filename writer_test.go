// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe_test

import (
	"bytes"
	"errors"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"

	"code.hybscloud.com/flatframe"
	"code.hybscloud.com/flatframe/policy"
)

// blobSerializer serializes an opaque byte vector as a minimal FlatBuffers
// message, letting tests control the finished payload's approximate size
// without depending on a generated schema.
type blobSerializer struct{ data []byte }

func (s blobSerializer) Serialize(b *flatbuffers.Builder) error {
	vec := b.CreateByteVector(s.data)
	b.StartObject(1)
	b.PrependUOffsetTSlot(0, vec, 0)
	root := b.EndObject()
	b.Finish(root)
	return nil
}

type failingSerializer struct{ err error }

func (s failingSerializer) Serialize(*flatbuffers.Builder) error { return s.err }

func TestWriterWriteRoundTripsThroughReader(t *testing.T) {
	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer())

	messages := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, m := range messages {
		if err := w.Write(blobSerializer{data: m}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	r := flatframe.NewReader(&wire, flatframe.DefaultDeframer())
	for _, want := range messages {
		payload, ok, err := r.ReadOnce()
		if err != nil || !ok {
			t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
		}
		got, ok := decodeBlob(payload)
		if !ok || !bytes.Equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

// decodeBlob reads back the byte vector produced by blobSerializer, the way
// a generated FlatBuffers accessor would: resolve the root table, look up
// field 0's offset through its vtable, then read the vector it points to.
func decodeBlob(buf []byte) ([]byte, bool) {
	if len(buf) < 4 {
		return nil, false
	}
	tbl := &flatbuffers.Table{Bytes: buf, Pos: flatbuffers.GetUOffsetT(buf)}
	o := flatbuffers.UOffsetT(tbl.Offset(4))
	if o == 0 {
		return nil, false
	}
	n := tbl.VectorLen(o)
	start := tbl.Vector(o)
	return buf[start : start+flatbuffers.UOffsetT(n)], true
}

func TestWriterWriteFinishedDoesNotResetCallerBuilder(t *testing.T) {
	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer())

	b := flatbuffers.NewBuilder(64)
	off := b.CreateByteVector([]byte("caller owned"))
	b.Finish(off)

	if err := w.WriteFinished(b); err != nil {
		t.Fatalf("WriteFinished: %v", err)
	}

	r := flatframe.NewReader(&wire, flatframe.DefaultDeframer())
	payload, ok, err := r.ReadOnce()
	if err != nil || !ok {
		t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
	}
	got, ok := decodeBlob(payload)
	if !ok || string(got) != "caller owned" {
		t.Fatalf("got %q, want %q", got, "caller owned")
	}
}

func TestWriterWriteBatch(t *testing.T) {
	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer())

	messages := []blobSerializer{{data: []byte("a")}, {data: []byte("b")}}
	seq := func(yield func(flatframe.Serializer) bool) {
		for _, m := range messages {
			if !yield(m) {
				return
			}
		}
	}
	if err := w.WriteBatch(seq); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}

	r := flatframe.NewReader(&wire, flatframe.DefaultDeframer())
	for _, m := range messages {
		payload, ok, err := r.ReadOnce()
		if err != nil || !ok {
			t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
		}
		got, _ := decodeBlob(payload)
		if !bytes.Equal(got, m.data) {
			t.Fatalf("got %q, want %q", got, m.data)
		}
	}
}

func TestWriterWriteBatchStopsOnFirstError(t *testing.T) {
	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer())

	sentinel := errors.New("bad message")
	calls := 0
	seq := func(yield func(flatframe.Serializer) bool) {
		calls++
		if !yield(blobSerializer{data: []byte("ok")}) {
			return
		}
		calls++
		if !yield(failingSerializer{err: sentinel}) {
			return
		}
		calls++
		yield(blobSerializer{data: []byte("never reached")})
	}

	err := w.WriteBatch(seq)
	var fe *flatframe.Error
	if !errors.As(err, &fe) || fe.Kind != flatframe.KindFlatbuffersError {
		t.Fatalf("err = %v, want KindFlatbuffersError", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (stopped before the third message)", calls)
	}
}

func TestWriterFlushDelegatesWhenSinkSupportsIt(t *testing.T) {
	sink := &flushableSink{}
	w := flatframe.NewWriter(sink, flatframe.DefaultFramer())
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !sink.flushed {
		t.Fatalf("Flush did not delegate to the sink")
	}
}

func TestWriterFlushNoopWhenSinkDoesNotSupportIt(t *testing.T) {
	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer())
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestWriterUnwrap(t *testing.T) {
	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer())
	if w.Unwrap() != &wire {
		t.Fatalf("Unwrap() did not return the underlying sink")
	}
}

type flushableSink struct {
	bytes.Buffer
	flushed bool
}

func (s *flushableSink) Flush() error {
	s.flushed = true
	return nil
}

// S6: a sustained run of small messages following one large message must
// trigger exactly one adaptive reclamation, back down to the writer's
// default capacity.
func TestWriterAdaptiveWatermarkReclaimsAfterSustainedSmallMessages(t *testing.T) {
	const defaultCapacity = 16 * 1024
	var events []policy.Event
	recording := &recordingPolicy{
		inner: policy.NewAdaptiveWatermark(
			policy.WithShrinkMultiple(4),
			policy.WithMessagesToWait(1000),
		),
		record: &events,
	}

	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer(),
		flatframe.WithDefaultCapacity(defaultCapacity),
		flatframe.WithPolicy(recording),
	)

	large := bytes.Repeat([]byte{0x01}, 1<<20)
	if err := w.Write(blobSerializer{data: large}); err != nil {
		t.Fatalf("Write(large): %v", err)
	}

	small := bytes.Repeat([]byte{0x02}, 1024)
	for i := 0; i < 1000; i++ {
		if err := w.Write(blobSerializer{data: small}); err != nil {
			t.Fatalf("Write(small) #%d: %v", i, err)
		}
	}

	if len(events) != 1 {
		t.Fatalf("reclamation events = %d, want exactly 1 (%+v)", len(events), events)
	}
	e := events[0]
	if e.CapacityBefore < 1<<20 {
		t.Fatalf("CapacityBefore = %d, want >= 1MiB", e.CapacityBefore)
	}
	if e.CapacityAfter != defaultCapacity {
		t.Fatalf("CapacityAfter = %d, want %d", e.CapacityAfter, defaultCapacity)
	}
}

// Writer-driven variant of the SizeThreshold scenario: unlike
// policy_test.go's unit test, currentCapacity here comes straight from
// cap(w.builder.Bytes) and is never manually shrunk, so it stays above
// growAboveBytes for the whole run until the policy itself reclaims.
func TestWriterSizeThresholdReclaimsAfterSustainedSmallMessages(t *testing.T) {
	const defaultCapacity = 16 * 1024
	var events []policy.Event
	recording := &recordingPolicy{
		inner:  policy.NewSizeThreshold(64*1024, 2048, 5),
		record: &events,
	}

	var wire bytes.Buffer
	w := flatframe.NewWriter(&wire, flatframe.DefaultFramer(),
		flatframe.WithDefaultCapacity(defaultCapacity),
		flatframe.WithPolicy(recording),
	)

	large := bytes.Repeat([]byte{0x01}, 1<<20)
	if err := w.Write(blobSerializer{data: large}); err != nil {
		t.Fatalf("Write(large): %v", err)
	}

	small := bytes.Repeat([]byte{0x02}, 1024)
	for i := 0; i < 5; i++ {
		if err := w.Write(blobSerializer{data: small}); err != nil {
			t.Fatalf("Write(small) #%d: %v", i, err)
		}
	}

	if len(events) != 1 {
		t.Fatalf("reclamation events = %d, want exactly 1 (%+v)", len(events), events)
	}
	e := events[0]
	if e.Reason != policy.ReasonSizeThreshold {
		t.Fatalf("Reason = %v, want ReasonSizeThreshold", e.Reason)
	}
	if e.CapacityBefore < 1<<20 {
		t.Fatalf("CapacityBefore = %d, want >= 1MiB", e.CapacityBefore)
	}
	if e.CapacityAfter != defaultCapacity {
		t.Fatalf("CapacityAfter = %d, want %d", e.CapacityAfter, defaultCapacity)
	}

	// The builder settles back at defaultCapacity: one more small write must
	// not immediately re-trigger, since the capacity no longer exceeds
	// growAboveBytes.
	if err := w.Write(blobSerializer{data: small}); err != nil {
		t.Fatalf("Write(small) after reclaim: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("reclamation events after settling = %d, want still 1 (%+v)", len(events), events)
	}
}

type recordingPolicy struct {
	inner  policy.Policy
	record *[]policy.Event
}

func (p *recordingPolicy) ShouldReset(lastMessageSize, currentCapacity int) (policy.Reason, bool) {
	return p.inner.ShouldReset(lastMessageSize, currentCapacity)
}

func (p *recordingPolicy) OnReclaim(e policy.Event) {
	*p.record = append(*p.record, e)
	p.inner.OnReclaim(e)
}
