package question

import (
	"sync"
	"time"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/clock"
)

// Milestones are the boolean timing gates of one question's lifecycle,
// recomputed against the corrected clock. Each gate is monotonic within a
// question instance: once true it never reverts, because both the corrected
// now and the epoch baseline only increase.
type Milestones struct {
	HasStarted     bool
	DisplayAnswers bool
	LockAnswers    bool
	RevealAnswer   bool
	HasEnded       bool
}

// Timer derives a question's milestones from the corrected clock on every
// animation frame. The frame scheduler is acquired once for any number of
// subscribers and released when the last one detaches; emissions are
// suppressed unless a milestone actually changed.
type Timer struct {
	clock  *clock.Corrected
	frames clock.Frames
	q      *CurrentQuestion

	mu      sync.Mutex
	subs    map[int]func(Milestones)
	nextID  int
	handle  int
	active  bool
	last    Milestones
	hasLast bool
}

// NewTimer returns a Timer for q. No frame polling happens until the first
// subscription.
func NewTimer(c *clock.Corrected, frames clock.Frames, q *CurrentQuestion) *Timer {
	return &Timer{
		clock:  c,
		frames: frames,
		q:      q,
		subs:   make(map[int]func(Milestones)),
	}
}

// MilestonesAt computes the milestones as of the given corrected time.
func (t *Timer) MilestonesAt(now time.Time) Milestones {
	elapsed := now.UnixMilli() - t.q.TimestampToStartVideo
	gate := func(videoSeconds float64) bool {
		return elapsed >= int64((videoSeconds-t.q.StartTime)*1000)
	}
	return Milestones{
		HasStarted:     elapsed >= 0,
		DisplayAnswers: gate(t.q.QuestionDisplayTime),
		LockAnswers:    gate(t.q.AnswerLockTime),
		RevealAnswer:   gate(t.q.AnswerRevealTime),
		HasEnded:       gate(t.q.EndTime),
	}
}

// Subscribe registers fn, delivering the current milestones immediately and
// then on every frame where at least one gate changed. The returned cancel
// function detaches fn and releases the frame scheduler if fn was the last
// subscriber.
func (t *Timer) Subscribe(fn func(Milestones)) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	first := len(t.subs) == 1
	m := t.MilestonesAt(t.clock.Now())
	t.last = m
	t.hasLast = true
	t.mu.Unlock()

	fn(m)

	if first {
		t.mu.Lock()
		if !t.active {
			t.active = true
			t.mu.Unlock()
			handle := t.frames.Request(t.tick)
			t.mu.Lock()
			t.handle = handle
		}
		t.mu.Unlock()
	}

	done := false
	return func() {
		t.mu.Lock()
		if done {
			t.mu.Unlock()
			return
		}
		done = true
		delete(t.subs, id)
		release := len(t.subs) == 0 && t.active
		handle := t.handle
		if release {
			t.active = false
		}
		t.mu.Unlock()

		if release {
			t.frames.Cancel(handle)
		}
	}
}

func (t *Timer) tick() {
	m := t.MilestonesAt(t.clock.Now())

	t.mu.Lock()
	if t.hasLast && m == t.last {
		t.mu.Unlock()
		return
	}
	t.last = m
	t.hasLast = true
	fns := make([]func(Milestones), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}
