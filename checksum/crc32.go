// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package checksum

import "hash/crc32"

// crc32Strategy implements CRC-32 using the IEEE polynomial, matching
// hash/crc32.ChecksumIEEE. The pack itself reaches for stdlib hash/crc32 for
// this exact concern (furkansarikaya-tick-storm/internal/protocol/frame.go
// uses crc32.Checksum with the Castagnoli table for its own frame CRC), so
// there is no pack-observed third-party CRC-32 library to prefer instead;
// flatframe uses the IEEE table per the wire-format requirement.
type crc32Strategy struct{}

// CRC32 returns the CRC-32 (IEEE) checksum strategy: 4 wire bytes.
func CRC32() Strategy { return crc32Strategy{} }

func (crc32Strategy) Size() int { return 4 }

func (crc32Strategy) Compute(payload []byte) uint64 {
	return uint64(crc32.ChecksumIEEE(payload))
}

func (s crc32Strategy) Verify(expected uint64, payload []byte) error {
	return verifyEqual(s, expected, payload)
}
