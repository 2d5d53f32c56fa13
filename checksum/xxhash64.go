// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package checksum

import "github.com/cespare/xxhash/v2"

// xxhash64Strategy implements the XXHash64 checksum variant using
// github.com/cespare/xxhash/v2, the xxHash implementation pulled in by
// furkansarikaya-tick-storm's go.mod. It stands in for XXH3 64-bit: the
// classic (non-XXH3) 64-bit xxHash algorithm is the closest available
// substitute, sharing the same 8-byte wire width and stateless contract.
type xxhash64Strategy struct{}

// XXHash64 returns the XXHash64 checksum strategy: 8 wire bytes.
func XXHash64() Strategy { return xxhash64Strategy{} }

func (xxhash64Strategy) Size() int { return 8 }

func (xxhash64Strategy) Compute(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

func (s xxhash64Strategy) Verify(expected uint64, payload []byte) error {
	return verifyEqual(s, expected, payload)
}
