// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe_test

import (
	"bytes"
	"errors"
	"testing"

	"code.hybscloud.com/flatframe"
)

func writeFrames(t *testing.T, payloads ...[]byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	f := flatframe.DefaultFramer()
	for _, p := range payloads {
		if err := f.WriteFrame(&buf, p); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	return &buf
}

func TestReaderReadOnce(t *testing.T) {
	wire := writeFrames(t, []byte("first"), []byte("second"))
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer())

	payload, ok, err := r.ReadOnce()
	if err != nil || !ok {
		t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
	}
	if string(payload) != "first" {
		t.Fatalf("payload = %q, want first", payload)
	}

	payload, ok, err = r.ReadOnce()
	if err != nil || !ok {
		t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
	}
	if string(payload) != "second" {
		t.Fatalf("payload = %q, want second", payload)
	}

	_, ok, err = r.ReadOnce()
	if err != nil || ok {
		t.Fatalf("ReadOnce at EOF: ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestReaderProcessAll(t *testing.T) {
	wire := writeFrames(t, []byte("a"), []byte("b"), []byte("c"))
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer())

	var got []string
	err := r.ProcessAll(func(p []byte) error {
		got = append(got, string(p))
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestReaderProcessAllStopsOnCallbackError(t *testing.T) {
	wire := writeFrames(t, []byte("a"), []byte("b"))
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer())

	sentinel := errors.New("stop here")
	calls := 0
	err := r.ProcessAll(func(p []byte) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestReaderMessagesIterator(t *testing.T) {
	wire := writeFrames(t, []byte("x"), []byte("y"))
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer())

	var got []string
	for payload, err := range r.Messages() {
		if err != nil {
			t.Fatalf("Messages: %v", err)
		}
		got = append(got, string(payload))
	}
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("got %v, want [x y]", got)
	}
}

func TestReaderMessagesIteratorStopsEarly(t *testing.T) {
	wire := writeFrames(t, []byte("x"), []byte("y"), []byte("z"))
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer())

	var got []string
	for payload, err := range r.Messages() {
		if err != nil {
			t.Fatalf("Messages: %v", err)
		}
		got = append(got, string(payload))
		if len(got) == 1 {
			break
		}
	}
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("got %v, want [x]", got)
	}
}

func TestReaderMessagesIteratorYieldsErrorOnFailure(t *testing.T) {
	src := &scriptedReader{steps: []struct {
		b   []byte
		err error
	}{
		{b: []byte{0x05, 0x00, 0x00, 0x00, 'h', 'i'}},
	}}
	r := flatframe.NewReader(src, flatframe.DefaultDeframer())

	var sawErr error
	for payload, err := range r.Messages() {
		if err != nil {
			sawErr = err
			if payload != nil {
				t.Fatalf("payload = %v, want nil alongside error", payload)
			}
			break
		}
	}
	if !flatframe.IsUnexpectedEOF(sawErr) {
		t.Fatalf("sawErr = %v, want KindUnexpectedEOF", sawErr)
	}
}

func TestReaderUnwrap(t *testing.T) {
	wire := writeFrames(t)
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer())
	if r.Unwrap() != wire {
		t.Fatalf("Unwrap() did not return the underlying source")
	}
}

func TestReaderReadOnceAfterReserve(t *testing.T) {
	wire := writeFrames(t, []byte("hi"))
	r := flatframe.NewReader(wire, flatframe.DefaultDeframer(), flatframe.WithInitialCapacity(2))
	r.Reserve(4096)

	payload, ok, err := r.ReadOnce()
	if err != nil || !ok {
		t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
	}
	if string(payload) != "hi" {
		t.Fatalf("payload = %q, want hi", payload)
	}
}

// Steady-state reads of fixed-size frames must not allocate: the scratch
// buffer is reused once it has grown to accommodate the largest payload
// seen.
func TestReaderSteadyStateReadOnceAllocFree(t *testing.T) {
	const payloadSize = 64
	payload := bytes.Repeat([]byte{0x7A}, payloadSize)

	var wire bytes.Buffer
	f := flatframe.DefaultFramer()
	const n = 256
	for i := 0; i < n; i++ {
		if err := f.WriteFrame(&wire, payload); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}

	r := flatframe.NewReader(&wire, flatframe.DefaultDeframer(), flatframe.WithInitialCapacity(payloadSize))
	// Warm the scratch buffer to its steady-state capacity before measuring.
	if _, ok, err := r.ReadOnce(); err != nil || !ok {
		t.Fatalf("warmup ReadOnce: ok=%v err=%v", ok, err)
	}

	allocs := testing.AllocsPerRun(1, func() {
		if _, ok, err := r.ReadOnce(); err != nil || !ok {
			t.Fatalf("ReadOnce: ok=%v err=%v", ok, err)
		}
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}
