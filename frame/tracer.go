package frame

// Tracer receives frame-level execution events for external observation
// (spec component K, "Observable Change Hooks"). It is adapted from the
// teacher's EVMLogger interface (state/runtime/logger.go), narrowed from
// raw opcode/PC/gas parameters plus a *ScopeContext to the Frame itself —
// a tracer reads whatever it needs (PC, gas, memory hooks, stack) off the
// frame directly rather than receiving a parallel parameter list, since
// the frame is now the single source of truth those parameters used to
// duplicate.
type Tracer interface {
	// CaptureFrameStart fires when f begins executing, before its first
	// opcode.
	CaptureFrameStart(f *Frame)
	// CaptureFrameEnd fires once f reaches a terminal state.
	CaptureFrameEnd(f *Frame)
	// CaptureOperation fires once per opcode, after BeginOperation has
	// reset the tracer hooks and the opcode has run. Implementations read
	// f.LastUpdatedMemory / f.LastUpdatedStorage for this step's explicit
	// writes, matching spec.md §4.K's "each optional and overwritten per
	// operation" contract.
	CaptureOperation(f *Frame)
}

// NullTracer implements Tracer as a no-op, the default when a host embeds
// this module without wiring an observer (matches the teacher's pattern
// of defaulting optional collaborators to a null implementation, e.g.
// hclog.NewNullLogger()).
type NullTracer struct{}

func (NullTracer) CaptureFrameStart(*Frame) {}
func (NullTracer) CaptureFrameEnd(*Frame)   {}
func (NullTracer) CaptureOperation(*Frame)  {}
