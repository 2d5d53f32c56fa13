// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flatframe

import "encoding/binary"

// lengthFieldSize is the fixed width, in bytes, of the on-wire payload
// length prefix.
const lengthFieldSize = 4

// putLength writes n as a 4-byte little-endian length field into buf, which
// must have length >= lengthFieldSize.
func putLength(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf, n)
}

// getLength reads a 4-byte little-endian length field from buf.
func getLength(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// putChecksum writes the low width bytes of v as a little-endian field into
// buf, which must have length >= width. width is one of 0, 2, 4, 8.
func putChecksum(buf []byte, v uint64, width int) {
	switch width {
	case 0:
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, v)
	default:
		panic("flatframe: invalid checksum width")
	}
}

// getChecksum reads a little-endian checksum field of the given width from
// buf. width is one of 0, 2, 4, 8.
func getChecksum(buf []byte, width int) uint64 {
	switch width {
	case 0:
		return 0
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	case 8:
		return binary.LittleEndian.Uint64(buf)
	default:
		panic("flatframe: invalid checksum width")
	}
}
