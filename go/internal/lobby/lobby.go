package lobby

import (
	"github.com/dancras/tv-quiz-party-sub000/go/internal/command"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/round"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

// Lobby wraps one lobby identity. Identity fields are fixed from the snapshot
// that constructed it; the roster and the active round are derived from the
// lobby's scoped snapshot feed.
type Lobby struct {
	ID          string
	JoinCode    string
	IsHost      bool
	IsPresenter bool

	sink command.Sink

	users       *stream.Value[[]models.User]
	activeRound *stream.Value[*round.Round]

	curRound  *round.Round
	roundFeed *stream.Value[models.RoundSnapshot]
	detach    []func()
}

// New builds a Lobby over its scoped snapshot feed, which must hold the
// initial snapshot. The feed is owned by the composition that constructed the
// lobby and stops the instant a snapshot for a different lobby id arrives.
func New(feed *stream.Value[models.LobbySnapshot], sink command.Sink) *Lobby {
	l := &Lobby{
		sink:        sink,
		activeRound: stream.NewValue[*round.Round](),
	}

	if initial, ok := feed.Latest(); ok {
		l.ID = initial.ID
		l.JoinCode = initial.JoinCode
		l.IsHost = initial.IsHost
		l.IsPresenter = initial.IsPresenter
	}

	users, detachUsers := stream.Map(feed, func(s models.LobbySnapshot) []models.User {
		return s.Users
	})
	l.users = users

	detachRound := feed.Subscribe(l.applySnapshot)

	l.detach = append(l.detach, detachUsers, detachRound)
	return l
}

// applySnapshot supervises the active-round sub-entity, keyed on round
// presence: there is at most one active round per lobby at a time.
func (l *Lobby) applySnapshot(s models.LobbySnapshot) {
	if s.ActiveRound == nil {
		if l.curRound != nil {
			l.retireRound()
			l.activeRound.Emit(nil)
		}
		return
	}

	if l.curRound != nil {
		l.roundFeed.Emit(*s.ActiveRound)
		return
	}

	l.roundFeed = stream.NewValueOf(*s.ActiveRound)
	l.curRound = round.New(l.roundFeed, l.sink)
	l.activeRound.Emit(l.curRound)
}

func (l *Lobby) retireRound() {
	l.roundFeed.Close()
	l.curRound.Close()
	l.curRound = nil
}

// Users is the live lobby roster.
func (l *Lobby) Users() *stream.Value[[]models.User] {
	return l.users
}

// ActiveRound is the live round sub-entity, or nil when no round is running.
func (l *Lobby) ActiveRound() *stream.Value[*round.Round] {
	return l.activeRound
}

// Exit leaves this lobby.
func (l *Lobby) Exit() {
	l.sink.Dispatch(command.ExitLobby{})
}

// StartRound begins a round in this lobby.
func (l *Lobby) StartRound() {
	l.sink.Dispatch(command.StartRound{})
}

// Close retires the lobby and everything beneath it. Called by the owning
// composition when the lobby identity changes.
func (l *Lobby) Close() {
	for _, d := range l.detach {
		d()
	}
	l.detach = nil
	if l.curRound != nil {
		l.retireRound()
	}
	l.users.Close()
	l.activeRound.Close()
}
