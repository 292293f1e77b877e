// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

// Call is a single recorded function invocation: its sequence number,
// signature, positional arguments, and optional return value.
//
// Args is sparse: the writer assigns argument positions explicitly, and
// gaps are legal. A gap, or any argument never written before the matching
// CALL_END/LEAVE, reads back as a Null Value (Arg(i).IsNull()).
type Call struct {
	// No is this call's sequence number, assigned at ENTER time. Numbers
	// are strictly increasing starting at 0 and are never reused (spec §3).
	No uint32

	// Sig is the function signature this call invokes.
	Sig *FunctionSig

	// Args holds one Value per declared argument position that was written.
	// It is padded with Null to cover every index that was written, even if
	// some are still absent (a gap).
	Args []Value

	// Ret is the call's return value, or nil if none was recorded.
	Ret *Value

	// Incomplete is true if this Call was flushed at EOF without having seen
	// its LEAVE event (spec §3 invariant: outstanding ENTERs are flushed in
	// FIFO order with a diagnostic).
	Incomplete bool
}

// Name returns the underlying function's name, or "<unknown>" if Sig is nil.
func (c *Call) Name() string {
	if c.Sig == nil {
		return "<unknown>"
	}
	return c.Sig.Name
}

// Arg returns the Value at the given argument position, or a Null Value if
// index is beyond what was written (a trailing gap).
func (c *Call) Arg(index int) Value {
	if index < 0 || index >= len(c.Args) {
		return nullValue()
	}
	return c.Args[index]
}

// setArg grows Args to cover index, padding any newly exposed gap positions
// with Null, then stores v at index.
func (c *Call) setArg(index int, v Value) {
	if index >= len(c.Args) {
		grown := make([]Value, index+1)
		copy(grown, c.Args)
		for i := len(c.Args); i < index; i++ {
			grown[i] = nullValue()
		}
		c.Args = grown
	}
	c.Args[index] = v
}
