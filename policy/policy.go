// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package policy provides the pluggable memory-reclamation strategies that
// decide when flatframe's Writer should discard its current
// *flatbuffers.Builder in favor of a fresh one, after a burst of large
// messages leaves the builder's backing array oversized relative to typical
// traffic.
package policy

// Reason identifies why a Policy asked for a reclamation (builder reset).
type Reason uint8

const (
	// ReasonNone is the zero value; it never appears on a triggered Event.
	ReasonNone Reason = iota
	// ReasonMessageCount reports a reclamation triggered by observing
	// messages_to_wait consecutive qualifying messages.
	ReasonMessageCount
	// ReasonTimeCooldown reports a reclamation triggered by an elapsed
	// cooldown since overprovisioning was first observed.
	ReasonTimeCooldown
	// ReasonSizeThreshold reports a reclamation triggered by a hard
	// grow/shrink byte threshold.
	ReasonSizeThreshold
)

func (r Reason) String() string {
	switch r {
	case ReasonMessageCount:
		return "message-count"
	case ReasonTimeCooldown:
		return "time-cooldown"
	case ReasonSizeThreshold:
		return "size-threshold"
	default:
		return "none"
	}
}

// Event describes a single reclamation (builder reset) that a Policy has
// just triggered.
type Event struct {
	Reason          Reason
	LastMessageSize int
	CapacityBefore  int
	CapacityAfter   int
}

// Policy is a stateful strategy controlling when a Writer should reset its
// internal builder to reclaim memory.
//
// ShouldReset is called after every successful write with the size of the
// message just written and the builder's current capacity; it reports
// whether a reset should happen now and, if so, why. OnReclaim is called
// afterward, once the reset has actually occurred, so implementations can
// log or record metrics without paying that cost on the (far more common)
// no-reset path.
type Policy interface {
	ShouldReset(lastMessageSize, currentCapacity int) (Reason, bool)
	OnReclaim(Event)
}
