// Package pump implements the single poll-thread worker shared by the
// decoder and encoder engines (§4.3 Poll Thread): a task mailbox drained by
// one background goroutine, woken by a condition variable rather than a
// channel so Post never blocks the caller and Stop can drain whatever was
// posted before it returns.
package pump

import "sync"

// Task is a unit of work posted to a Thread. The engine posts exactly one
// kind of task in practice — a blocking device poll — but Thread itself is
// task-agnostic.
type Task func()

// Thread is a single worker goroutine with a task mailbox, mirroring go4vl's
// per-device background goroutine (v4l2/syscalls.go's WaitForRead,
// device/device.go's startStreamLoop) but generalized from "one goroutine
// tied to one channel read" into a reusable start/stop/post worker the
// decoder and encoder engines each own one instance of.
type Thread struct {
	mu       sync.Mutex
	cond     *sync.Cond
	tasks    []Task
	running  bool
	stopping bool
	done     chan struct{}
}

// New creates a stopped Thread. Call Start before Post.
func New() *Thread {
	t := &Thread{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Start is idempotent.
func (t *Thread) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stopping = false
	t.done = make(chan struct{})
	go t.loop(t.done)
}

// Post appends task to the mailbox and wakes the worker. A no-op if the
// thread is not running (matches §4.3's "post(task)" contract, which the
// spec only ever calls while the poll thread is up).
func (t *Thread) Post(task Task) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.tasks = append(t.tasks, task)
	t.mu.Unlock()
	t.cond.Signal()
}

// Stop is idempotent. Any tasks posted before Stop is called are drained
// before the worker exits; Stop blocks until that drain completes.
func (t *Thread) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.stopping = true
	done := t.done
	t.mu.Unlock()
	t.cond.Signal()
	<-done

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

// Running reports whether the worker goroutine is active.
func (t *Thread) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Thread) loop(done chan struct{}) {
	defer close(done)
	for {
		t.mu.Lock()
		for len(t.tasks) == 0 && !t.stopping {
			t.cond.Wait()
		}
		if len(t.tasks) == 0 && t.stopping {
			t.mu.Unlock()
			return
		}
		local := t.tasks
		t.tasks = nil
		t.mu.Unlock()

		for _, task := range local {
			task()
		}
	}
}

// DevicePoller is satisfied by a device handle capable of blocking in
// poll(2) over its fd and an interrupt fd, and reporting whether the device
// signalled POLLPRI (§4.1 Device Handle.poll).
type DevicePoller interface {
	Poll(pollDevice bool) (eventPending bool, err error)
}

// PostDevicePoll posts the engine's sole recurring task onto t: block in
// poller.Poll, then invoke onWake with the result on the poll thread itself
// (the engine's onWake callback is expected to just post a pump-iteration
// notification back to the engine thread, never to do engine work inline).
func PostDevicePoll(t *Thread, poller DevicePoller, pollDevice bool, onWake func(eventPending bool, err error)) {
	t.Post(func() {
		eventPending, err := poller.Poll(pollDevice)
		onWake(eventPending, err)
	})
}
