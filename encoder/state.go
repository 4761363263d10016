package encoder

import "sync/atomic"

// State is the encoder engine's externally-observable lifecycle (§3 Encoder
// Engine state), stored atomically so client callbacks on another goroutine
// may read it without locking even though all transitions happen on the
// engine thread (§5 Concurrency) — mirrors decoder.State one package over.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateEncoding
	StateFlushing
	StateError
	StateDestroying
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateEncoding:
		return "Encoding"
	case StateFlushing:
		return "Flushing"
	case StateError:
		return "EncoderError"
	case StateDestroying:
		return "Destroying"
	default:
		return "Unknown"
	}
}

type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) Load() State   { return State(b.v.Load()) }
func (b *stateBox) Store(s State) { b.v.Store(int32(s)) }
