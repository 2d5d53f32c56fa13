// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package checksum

// crc16Strategy implements the CRC-16 member of the CCITT polynomial family
// (polynomial 0x1021, initial value 0xFFFF, no input/output reflection).
//
// The Go standard library has no CRC-16 implementation (hash/crc32 and
// hash/crc64 exist, hash/crc16 does not), and no third-party CRC-16 package
// appears anywhere in the retrieval pack. This bit-at-a-time table-free
// implementation is adapted from the hand-rolled CRC-16 helper found in the
// pack (a Modbus/ANSI variant, polynomial 0xA001 reflected); the shape of
// the byte-at-a-time loop is kept, the polynomial and reflection are changed
// to match the CCITT family this package's wire format requires.
type crc16Strategy struct{}

// CRC16 returns the CRC-16/CCITT-FALSE checksum strategy: 2 wire bytes.
func CRC16() Strategy { return crc16Strategy{} }

func (crc16Strategy) Size() int { return 2 }

func (crc16Strategy) Compute(payload []byte) uint64 {
	var crc uint16 = 0xFFFF
	for _, b := range payload {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return uint64(crc)
}

func (s crc16Strategy) Verify(expected uint64, payload []byte) error {
	return verifyEqual(s, expected, payload)
}
