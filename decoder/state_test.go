package decoder

import "testing"

func TestStateStringKnownValues(t *testing.T) {
	cases := map[State]string{
		StateUninitialized:         "Uninitialized",
		StateInitialized:           "Initialized",
		StateDecoding:               "Decoding",
		StateFlushing:               "Flushing",
		StateResetting:              "Resetting",
		StateChangingResolution:     "ChangingResolution",
		StateAwaitingPictureBuffers: "AwaitingPictureBuffers",
		StateError:                  "DecoderError",
		StateDestroying:             "Destroying",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestStateStringUnknownValue(t *testing.T) {
	if s := State(99).String(); s == "" {
		t.Fatal("expected non-empty fallback string for unknown state")
	}
}

func TestSetDecoderStateCachesWhileUninitialized(t *testing.T) {
	d := &Decoder{}
	d.SetDecoderState(StateDecoding)

	if d.state.Load() != StateUninitialized {
		t.Fatalf("state should not change before initialization completes, got %s", d.state.Load())
	}
	if !d.pending.set || d.pending.state != StateDecoding {
		t.Fatalf("expected pending state to be cached, got %+v", d.pending)
	}

	d.applyPendingState()
	if d.state.Load() != StateDecoding {
		t.Fatalf("want state applied after applyPendingState, got %s", d.state.Load())
	}
	if d.pending.set {
		t.Fatal("pending should be cleared after being applied")
	}
}

func TestSetDecoderStateAppliesImmediatelyOnceInitialized(t *testing.T) {
	d := &Decoder{}
	d.state.Store(StateInitialized)

	d.SetDecoderState(StateFlushing)
	if d.state.Load() != StateFlushing {
		t.Fatalf("want immediate transition, got %s", d.state.Load())
	}
	if d.pending.set {
		t.Fatal("pending should stay unset once the engine is initialized")
	}
}

func TestApplyPendingStateNoopWhenNothingPending(t *testing.T) {
	d := &Decoder{}
	d.state.Store(StateDecoding)
	d.applyPendingState()
	if d.state.Load() != StateDecoding {
		t.Fatalf("applyPendingState must not disturb state when nothing is pending, got %s", d.state.Load())
	}
}
