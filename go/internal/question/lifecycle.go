package question

import (
	"github.com/rs/zerolog/log"
)

// MilestoneSource is the subscription surface of a Timer, abstracted so the
// lifecycle can be driven by fakes in tests.
type MilestoneSource interface {
	Subscribe(fn func(Milestones)) func()
}

// TimerFactory builds the milestone source for a question.
type TimerFactory func(q *CurrentQuestion) MilestoneSource

// Lifecycle watches the current question's milestones and escalates lock and
// end commands to the server exactly once each. It holds at most one watch at
// a time: installing a new question synchronously detaches the previous one,
// so in-flight frame values for a superseded question can never fire a
// command. The subscription work itself is deferred to a task boundary so
// that command side effects never run inside the notification that installed
// the question.
type Lifecycle struct {
	newTimer TimerFactory
	post     func(func())

	generation    int
	detach        []func()
	endedOnServer bool
	lockSent      bool
	endSent       bool
}

// NewLifecycle returns a Lifecycle that schedules its subscription work via
// post, the session loop's deferred-task boundary.
func NewLifecycle(newTimer TimerFactory, post func(func())) *Lifecycle {
	return &Lifecycle{newTimer: newTimer, post: post}
}

// SetCurrentQuestion installs q as the watched question, or clears the watch
// when q is nil. The previous watch is detached before this call returns.
func (l *Lifecycle) SetCurrentQuestion(q *CurrentQuestion) {
	for _, d := range l.detach {
		d()
	}
	l.detach = nil
	l.generation++
	l.endedOnServer = false
	l.lockSent = false
	l.endSent = false

	if q == nil {
		return
	}

	gen := l.generation
	l.post(func() {
		if gen != l.generation {
			// Superseded before the task boundary ran.
			return
		}
		l.watch(gen, q)
	})
}

func (l *Lifecycle) watch(gen int, q *CurrentQuestion) {
	// Track the server's view first so the milestone replay below sees it.
	detachEnded := q.HasEndedOnServer().Subscribe(func(ended bool) {
		if gen != l.generation {
			return
		}
		l.endedOnServer = ended
	})

	detachTimer := l.newTimer(q).Subscribe(func(m Milestones) {
		if gen != l.generation {
			return
		}
		if m.LockAnswers && !l.lockSent && !l.endedOnServer {
			l.lockSent = true
			log.Debug().Int("question_index", q.Index).Msg("lock milestone reached, escalating")
			q.Lock()
		}
		if m.HasEnded && !l.endSent {
			l.endSent = true
			log.Debug().Int("question_index", q.Index).Msg("end milestone reached, escalating")
			q.End()
		}
	})

	if gen != l.generation {
		// The replay inside Subscribe may have swapped the question.
		detachEnded()
		detachTimer()
		return
	}
	l.detach = append(l.detach, detachEnded, detachTimer)
}
