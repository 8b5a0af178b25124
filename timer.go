package cadence

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// timerHandle is a cancellable one-shot scheduled callback.
//
// Stopping a handle only prevents a callback that has not yet started; a
// callback racing its own cancellation is retired inside the channel by a
// generation check, so Stop is always safe to call regardless of timer state.
type timerHandle struct {
	timer clockz.Timer
	stop  chan struct{}
	once  sync.Once
}

// schedule arms a one-shot timer on clock that runs fn after d on its own
// goroutine.
func schedule(clock clockz.Clock, d time.Duration, fn func()) *timerHandle {
	h := &timerHandle{
		timer: clock.NewTimer(d),
		stop:  make(chan struct{}),
	}
	go func() {
		select {
		case <-h.timer.C():
			fn()
		case <-h.stop:
			h.timer.Stop()
		}
	}()
	return h
}

// Stop cancels the pending callback. Safe on a nil handle and safe to call
// repeatedly or after the timer fired.
func (h *timerHandle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
}
