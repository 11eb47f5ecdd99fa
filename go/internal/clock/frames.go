package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Frames schedules a callback to run repeatedly, once per frame, until the
// registration is cancelled with its handle.
type Frames interface {
	Request(fn func()) int
	Cancel(handle int)
}

// FrameInterval approximates a 60fps display refresh.
const FrameInterval = 16 * time.Millisecond

// TickerFrames drives frame callbacks from a clockwork ticker. Callbacks are
// handed to post rather than invoked inline, so the session loop stays the
// only goroutine running core code.
type TickerFrames struct {
	clock    clockwork.Clock
	interval time.Duration
	post     func(func())

	mu     sync.Mutex
	nextID int
	stops  map[int]chan struct{}
}

// NewTickerFrames returns a Frames implementation ticking at interval on clk.
func NewTickerFrames(clk clockwork.Clock, interval time.Duration, post func(func())) *TickerFrames {
	return &TickerFrames{
		clock:    clk,
		interval: interval,
		post:     post,
		stops:    make(map[int]chan struct{}),
	}
}

// Request registers fn for per-frame invocation and returns its handle.
func (f *TickerFrames) Request(fn func()) int {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	stop := make(chan struct{})
	f.stops[id] = stop
	f.mu.Unlock()

	go func() {
		ticker := f.clock.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				// A tick may already be pending when Cancel runs; never
				// post after the handle has been cancelled.
				select {
				case <-stop:
					return
				default:
				}
				f.post(fn)
			}
		}
	}()

	log.Debug().Int("handle", id).Msg("frame callback registered")
	return id
}

// Cancel stops the registration identified by handle. Cancelling an unknown
// handle is a no-op.
func (f *TickerFrames) Cancel(handle int) {
	f.mu.Lock()
	stop, ok := f.stops[handle]
	if ok {
		delete(f.stops, handle)
	}
	f.mu.Unlock()

	if ok {
		close(stop)
		log.Debug().Int("handle", handle).Msg("frame callback cancelled")
	}
}
