package decoder

import "sync/atomic"

// State is the decoder engine's externally-observable lifecycle (§3 Decoder
// Engine state). It is stored atomically so client callbacks on another
// goroutine may read it without locking, even though all transitions happen
// on the engine thread (§5 Concurrency).
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateDecoding
	StateFlushing
	StateResetting
	StateChangingResolution
	StateAwaitingPictureBuffers
	StateError
	StateDestroying
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateDecoding:
		return "Decoding"
	case StateFlushing:
		return "Flushing"
	case StateResetting:
		return "Resetting"
	case StateChangingResolution:
		return "ChangingResolution"
	case StateAwaitingPictureBuffers:
		return "AwaitingPictureBuffers"
	case StateError:
		return "DecoderError"
	case StateDestroying:
		return "Destroying"
	default:
		return "Unknown"
	}
}

type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) Load() State    { return State(b.v.Load()) }
func (b *stateBox) Store(s State)  { b.v.Store(int32(s)) }

// pendingState records a SetDecoderState call made before Initialize has
// run. §9 Open Question #1 decided this should be faithfully cached rather
// than silently dropped: a caller configuring the decoder before the device
// is open gets the same end state as one who waits.
type pendingState struct {
	set   bool
	state State
}

// SetDecoderState records the caller's requested state. If the decoder has
// not been initialized yet, the request is cached and applied as soon as
// Initialize succeeds; otherwise it takes effect immediately.
func (d *Decoder) SetDecoderState(s State) {
	if d.state.Load() == StateUninitialized {
		d.pending = pendingState{set: true, state: s}
		return
	}
	d.state.Store(s)
}

func (d *Decoder) applyPendingState() {
	if d.pending.set {
		d.state.Store(d.pending.state)
		d.pending = pendingState{}
	}
}
