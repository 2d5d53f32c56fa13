// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package policy

// neverPolicy never triggers a reset: the builder grows for the lifetime of
// the Writer.
type neverPolicy struct{}

// Never returns a Policy that never resets the builder.
func Never() Policy { return neverPolicy{} }

func (neverPolicy) ShouldReset(_, _ int) (Reason, bool) { return ReasonNone, false }
func (neverPolicy) OnReclaim(Event)                     {}
