package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/clock"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/command"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/lobby"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/question"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/round"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/state"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

// Session is the single-goroutine core loop. It owns the AppState snapshot,
// applies server-confirmed events to it in arrival order, pairs each queued
// command with the state current at drain time, and runs the deferred tasks
// that decouple side-effecting subscriptions from synchronous propagation.
// All entity derivation happens on this goroutine.
type Session struct {
	userID  string
	handler *command.Handler
	bus     *command.Bus

	events chan state.Event
	tasks  chan func()

	st        state.AppState
	snapshots *stream.Value[*models.LobbySnapshot]
	active    *stream.Value[*lobby.Lobby]
	lifecycle *question.Lifecycle

	detachActive  func()
	detachLobby   func()
	detachRound   func()
	detachWatches func()

	ctx context.Context
}

// FramesFactory builds the frame scheduler once the session's task boundary
// exists, so production frames can deliver callbacks onto the session loop.
type FramesFactory func(post func(func())) clock.Frames

// New wires the closed loop: snapshots derived from AppState feed the active
// lobby composition, whose innermost current question drives the lifecycle
// controller, whose commands land back on this session's bus. presenter marks
// this client as the shared-screen presenter for every lobby it joins.
func New(userID string, presenter bool, api command.API, corrected *clock.Corrected, newFrames FramesFactory) *Session {
	s := &Session{
		userID: userID,
		bus:    command.NewBus(64),
		events: make(chan state.Event, 64),
		tasks:  make(chan func(), 64),
		st:     state.AppState{UserID: userID, IsPresenter: presenter},
	}
	s.handler = command.NewHandler(api, s.DeliverEvent)
	s.snapshots = stream.NewValueOf[*models.LobbySnapshot](nil)
	s.active, s.detachActive = lobby.ComposeActive(s.snapshots, s.bus)

	frames := newFrames(s.Post)
	s.lifecycle = question.NewLifecycle(func(q *question.CurrentQuestion) question.MilestoneSource {
		return question.NewTimer(corrected, frames, q)
	}, s.Post)

	s.watchCurrentQuestion()
	return s
}

// watchCurrentQuestion keeps the lifecycle pointed at the innermost live
// question across lobby and round identity changes.
func (s *Session) watchCurrentQuestion() {
	s.detachWatches = s.active.Subscribe(func(l *lobby.Lobby) {
		s.resetLobbyWatch()
		s.lifecycle.SetCurrentQuestion(nil)
		if l == nil {
			return
		}
		s.detachLobby = l.ActiveRound().Subscribe(func(r *round.Round) {
			s.resetRoundWatch()
			s.lifecycle.SetCurrentQuestion(nil)
			if r == nil {
				return
			}
			s.detachRound = r.CurrentQuestion().Subscribe(func(q *question.CurrentQuestion) {
				s.lifecycle.SetCurrentQuestion(q)
			})
		})
	})
}

func (s *Session) resetLobbyWatch() {
	s.resetRoundWatch()
	if s.detachLobby != nil {
		s.detachLobby()
		s.detachLobby = nil
	}
}

func (s *Session) resetRoundWatch() {
	if s.detachRound != nil {
		s.detachRound()
		s.detachRound = nil
	}
}

// Dispatch queues a UI command for handling against the latest state.
func (s *Session) Dispatch(cmd command.Command) {
	s.bus.Dispatch(cmd)
}

// DeliverEvent hands a server-confirmed event to the session loop. Safe to
// call from other goroutines; events are applied strictly in arrival order.
func (s *Session) DeliverEvent(ev state.Event) {
	s.events <- ev
}

// Post schedules fn on the session loop after the current unit of work.
func (s *Session) Post(fn func()) {
	s.tasks <- fn
}

// ActiveLobby is the current lobby entity stream, shared by all observers.
func (s *Session) ActiveLobby() *stream.Value[*lobby.Lobby] {
	return s.active
}

// CreatingLobby reports whether a create-lobby request is in flight.
func (s *Session) CreatingLobby() *stream.Value[bool] {
	return s.handler.CreatingLobby()
}

// JoiningLobby reports whether a join-lobby request is in flight.
func (s *Session) JoiningLobby() *stream.Value[bool] {
	return s.handler.JoiningLobby()
}

// Run drives the loop until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	log.Info().Str("user_id", s.userID).Msg("session loop started")
	defer s.teardown()

	for {
		// Events outrank everything else so that a command is always
		// evaluated against the state produced by every event that arrived
		// before it.
		select {
		case ev := <-s.events:
			s.apply(ev)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			log.Info().Str("user_id", s.userID).Msg("session loop shutting down")
			return nil
		case ev := <-s.events:
			s.apply(ev)
		case fn := <-s.tasks:
			fn()
		case cmd := <-s.bus.Commands():
			s.drainEvents()
			s.handle(cmd)
		}
	}
}

func (s *Session) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		default:
			return
		}
	}
}

func (s *Session) apply(ev state.Event) {
	s.st = state.Reduce(s.st, ev)
	s.snapshots.Emit(s.st.ActiveLobby)
}

func (s *Session) handle(cmd command.Command) {
	if follow := s.handler.Handle(s.ctx, s.st, cmd); follow != nil {
		s.bus.Dispatch(follow)
	}
}

func (s *Session) teardown() {
	s.lifecycle.SetCurrentQuestion(nil)
	s.resetLobbyWatch()
	if s.detachWatches != nil {
		s.detachWatches()
	}
	s.detachActive()
}
