// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

// Composite runs a fixed pipeline of validators in order, short-circuiting
// on the first failure (AND semantics).
type Composite struct {
	validators []Validator
}

// NewComposite builds a Composite pipeline from validators, run in the given
// order.
func NewComposite(validators ...Validator) *Composite {
	cp := make([]Validator, len(validators))
	copy(cp, validators)
	return &Composite{validators: cp}
}

// Add returns a new Composite with validator appended to the pipeline. The
// receiver is left unmodified.
func (c *Composite) Add(v Validator) *Composite {
	next := make([]Validator, 0, len(c.validators)+1)
	next = append(next, c.validators...)
	next = append(next, v)
	return &Composite{validators: next}
}

func (c *Composite) Validate(payload []byte) error {
	for _, v := range c.validators {
		if err := v.Validate(payload); err != nil {
			return err
		}
	}
	return nil
}

func (*Composite) Name() string { return "Composite" }
