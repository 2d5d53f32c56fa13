// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

import (
	"encoding/binary"
	"fmt"
)

// Structural validates that a payload is a structurally sound FlatBuffer
// table without any schema knowledge: it walks the root table's vtable and,
// for every vtable slot that plausibly encodes a nested-table offset,
// recurses into it, bounding both recursion depth and the number of tables
// visited.
//
// Limitations, matching the flatbuffers-rust Verifier this is modeled on:
// this check is type-agnostic. A scalar field whose bit pattern happens to
// look like a valid in-bounds offset can be mistaken for a nested table and
// walked harmlessly; Structural only rules out buffers with malformed
// vtables or out-of-bounds offsets, it never performs schema-specific,
// recursive field verification. Compose it with Typed via Composite when
// the stream's root type is known.
type Structural struct {
	maxDepth  int
	maxTables int
}

// NewStructural returns a Structural validator with conservative default
// limits (depth 64, 1,000,000 tables), matching the defaults used by
// flatbuffers-rust's type-agnostic verifier.
func NewStructural() Structural {
	return Structural{maxDepth: 64, maxTables: 1_000_000}
}

// NewStructuralWithLimits returns a Structural validator with explicit
// recursion-depth and table-count limits.
func NewStructuralWithLimits(maxDepth, maxTables int) Structural {
	return Structural{maxDepth: maxDepth, maxTables: maxTables}
}

func (s Structural) Name() string { return "Structural" }

func (s Structural) Validate(payload []byte) error {
	if len(payload) < 4 {
		return &FailedError{ValidatorName: s.Name(), Reason: "buffer too small for FlatBuffer"}
	}
	rootRel := binary.LittleEndian.Uint32(payload[0:4])
	w := &structuralWalker{payload: payload, maxDepth: s.maxDepth, maxTables: s.maxTables}
	rootPos, err := addOffset(0, rootRel, len(payload))
	if err != nil {
		return &FailedError{ValidatorName: s.Name(), Reason: "root offset out of bounds: " + err.Error()}
	}
	if err := w.visitTable(rootPos, 0); err != nil {
		return &FailedError{ValidatorName: s.Name(), Reason: err.Error()}
	}
	return nil
}

type structuralWalker struct {
	payload    []byte
	maxDepth   int
	maxTables  int
	tablesSeen int
}

// visitTable checks that pos is the start of a well-formed table (a valid
// vtable, in-bounds field slots) and, for every slot that decodes to an
// in-bounds forward offset, recurses as though it were a nested table.
func (w *structuralWalker) visitTable(pos uint32, depth int) error {
	if depth > w.maxDepth {
		return fmt.Errorf("exceeded max depth %d", w.maxDepth)
	}
	w.tablesSeen++
	if w.tablesSeen > w.maxTables {
		return fmt.Errorf("exceeded max tables %d", w.maxTables)
	}

	n := uint32(len(w.payload))
	if pos+4 > n {
		return fmt.Errorf("table at %d: soffset out of bounds", pos)
	}
	soffset := int32(binary.LittleEndian.Uint32(w.payload[pos : pos+4]))
	if soffset == 0 {
		return fmt.Errorf("table at %d: zero vtable soffset", pos)
	}
	vtablePos := int64(pos) - int64(soffset)
	if vtablePos < 0 || uint64(vtablePos)+4 > uint64(n) {
		return fmt.Errorf("table at %d: vtable position %d out of bounds", pos, vtablePos)
	}
	vp := uint32(vtablePos)
	vtableSize := binary.LittleEndian.Uint16(w.payload[vp : vp+2])
	tableSize := binary.LittleEndian.Uint16(w.payload[vp+2 : vp+4])
	if vtableSize < 4 || uint64(vp)+uint64(vtableSize) > uint64(n) {
		return fmt.Errorf("table at %d: vtable size %d out of bounds", pos, vtableSize)
	}
	if uint64(pos)+uint64(tableSize) > uint64(n) {
		return fmt.Errorf("table at %d: table size %d out of bounds", pos, tableSize)
	}

	slots := int((vtableSize - 4) / 2)
	for i := 0; i < slots; i++ {
		slotOff := vp + 4 + uint32(i*2)
		fieldOffset := binary.LittleEndian.Uint16(w.payload[slotOff : slotOff+2])
		if fieldOffset == 0 {
			continue
		}
		fieldPos := pos + uint32(fieldOffset)
		if fieldPos+4 > n {
			continue
		}
		candidate := binary.LittleEndian.Uint32(w.payload[fieldPos : fieldPos+4])
		if candidate == 0 {
			continue
		}
		nestedPos, err := addOffset(fieldPos, candidate, len(w.payload))
		if err != nil {
			continue
		}
		if err := w.visitTable(nestedPos, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func addOffset(base, rel uint32, bufLen int) (uint32, error) {
	pos := uint64(base) + uint64(rel)
	if pos+4 > uint64(bufLen) {
		return 0, fmt.Errorf("offset %d+%d exceeds buffer length %d", base, rel, bufLen)
	}
	return uint32(pos), nil
}
