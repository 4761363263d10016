package pump

import (
	"sync"
	"testing"
	"time"
)

func TestThreadStartStopIdempotent(t *testing.T) {
	th := New()
	th.Start()
	th.Start()
	if !th.Running() {
		t.Fatal("expected running after Start")
	}
	th.Stop()
	th.Stop()
	if th.Running() {
		t.Fatal("expected stopped after Stop")
	}
}

func TestThreadDrainsPostedTasksBeforeExit(t *testing.T) {
	th := New()
	th.Start()

	var mu sync.Mutex
	var ran []int
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		i := i
		th.Post(func() {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
			wg.Done()
		})
	}
	th.Stop()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 5 {
		t.Fatalf("expected all 5 posted tasks to run before exit, got %d", len(ran))
	}
}

func TestPostDevicePollInvokesOnWake(t *testing.T) {
	th := New()
	th.Start()
	defer th.Stop()

	fake := fakePoller{eventPending: true}
	done := make(chan struct{})
	var gotEvent bool
	PostDevicePoll(th, fake, true, func(eventPending bool, err error) {
		gotEvent = eventPending
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for device poll task")
	}
	if !gotEvent {
		t.Fatal("expected eventPending to propagate from poller to onWake")
	}
}

type fakePoller struct {
	eventPending bool
}

func (f fakePoller) Poll(pollDevice bool) (bool, error) {
	return f.eventPending, nil
}
