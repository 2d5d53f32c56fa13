// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package policy

import "time"

// adaptiveOptions configures an AdaptiveWatermark policy.
type adaptiveOptions struct {
	shrinkMultiple int
	messagesToWait uint32
	cooldown       time.Duration // zero means no cooldown
}

var defaultAdaptiveOptions = adaptiveOptions{
	shrinkMultiple: 4,
	messagesToWait: 5,
	cooldown:       0,
}

// AdaptiveOption configures an AdaptiveWatermark policy at construction.
type AdaptiveOption func(*adaptiveOptions)

// WithShrinkMultiple sets the overprovisioning ratio: a message qualifies as
// a shrink signal once currentCapacity >= lastMessageSize * multiple.
func WithShrinkMultiple(multiple int) AdaptiveOption {
	return func(o *adaptiveOptions) { o.shrinkMultiple = multiple }
}

// WithMessagesToWait sets how many consecutive qualifying messages must be
// observed before a count-based reset triggers.
func WithMessagesToWait(n uint32) AdaptiveOption {
	return func(o *adaptiveOptions) { o.messagesToWait = n }
}

// WithCooldown enables a time-based reset: once d has elapsed since
// overprovisioning was first observed, the next qualifying message triggers
// a reset regardless of the message-count threshold.
func WithCooldown(d time.Duration) AdaptiveOption {
	return func(o *adaptiveOptions) { o.cooldown = d }
}

// AdaptiveWatermark is a capacity-aware policy with hysteresis: it tracks
// how long the builder has stayed overprovisioned relative to recent
// message sizes and resets only after a sustained signal, so a single large
// message does not thrash the builder.
type AdaptiveWatermark struct {
	opts adaptiveOptions

	messagesSinceOver uint32
	lastOverSeenAt    time.Time
	hasLastOverSeenAt bool
}

// NewAdaptiveWatermark returns an AdaptiveWatermark policy configured by
// opts, defaulting to shrink multiple 4, messages-to-wait 5, and no
// cooldown.
func NewAdaptiveWatermark(opts ...AdaptiveOption) *AdaptiveWatermark {
	o := defaultAdaptiveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &AdaptiveWatermark{opts: o}
}

func (p *AdaptiveWatermark) ShouldReset(lastMessageSize, currentCapacity int) (Reason, bool) {
	if lastMessageSize == 0 {
		p.messagesSinceOver = 0
		p.hasLastOverSeenAt = false
		return ReasonNone, false
	}

	overprovisioned := currentCapacity >= lastMessageSize*p.opts.shrinkMultiple
	now := time.Time{}
	trackTime := p.opts.cooldown > 0
	if trackTime {
		now = time.Now()
	}

	if overprovisioned {
		p.messagesSinceOver++
		if !p.hasLastOverSeenAt {
			p.lastOverSeenAt = now
			p.hasLastOverSeenAt = trackTime
		}
	} else {
		p.messagesSinceOver = 0
		p.hasLastOverSeenAt = false
	}

	countOK := overprovisioned && p.messagesSinceOver >= p.opts.messagesToWait
	timeOK := trackTime && p.hasLastOverSeenAt && now.Sub(p.lastOverSeenAt) >= p.opts.cooldown

	if countOK || timeOK {
		p.messagesSinceOver = 0
		p.lastOverSeenAt = now
		p.hasLastOverSeenAt = trackTime
		if timeOK {
			return ReasonTimeCooldown, true
		}
		return ReasonMessageCount, true
	}

	return ReasonNone, false
}

func (p *AdaptiveWatermark) OnReclaim(Event) {}
