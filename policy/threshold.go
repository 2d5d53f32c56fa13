// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package policy

// SizeThreshold resets after a sustained run of small messages following a
// large one: a simpler, purely size-keyed alternative to AdaptiveWatermark.
type SizeThreshold struct {
	growAboveBytes   int
	shrinkBelowBytes int
	messagesToWait   uint32

	largeEventSeen bool
	smallSinceLarge uint32
}

// NewSizeThreshold returns a SizeThreshold policy. A message is a "large
// event" once the builder's capacity exceeds growAboveBytes; once one has
// been seen, messagesToWait consecutive messages smaller than
// shrinkBelowBytes trigger a reset.
func NewSizeThreshold(growAboveBytes, shrinkBelowBytes int, messagesToWait uint32) *SizeThreshold {
	return &SizeThreshold{
		growAboveBytes:   growAboveBytes,
		shrinkBelowBytes: shrinkBelowBytes,
		messagesToWait:   messagesToWait,
	}
}

// DefaultSizeThreshold returns a SizeThreshold with conservative defaults: a
// 1 MiB grow threshold, a 1 KiB shrink threshold, and an 8-message wait.
func DefaultSizeThreshold() *SizeThreshold {
	return NewSizeThreshold(1<<20, 1<<10, 8)
}

func (p *SizeThreshold) ShouldReset(lastMessageSize, currentCapacity int) (Reason, bool) {
	if currentCapacity > p.growAboveBytes {
		p.largeEventSeen = true
	}
	if !p.largeEventSeen {
		return ReasonNone, false
	}

	if lastMessageSize >= p.shrinkBelowBytes {
		p.smallSinceLarge = 0
		return ReasonNone, false
	}

	p.smallSinceLarge++
	if p.smallSinceLarge >= p.messagesToWait {
		p.largeEventSeen = false
		p.smallSinceLarge = 0
		return ReasonSizeThreshold, true
	}
	return ReasonNone, false
}

func (p *SizeThreshold) OnReclaim(Event) {}
