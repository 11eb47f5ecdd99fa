package state

import (
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
)

// Event is a server-confirmed fact applied to AppState by the reducer.
type Event interface {
	isEvent()
}

// LobbyUpdated carries a full lobby snapshot, either from a create/join/get
// response or from a roster push message.
type LobbyUpdated struct {
	Lobby models.LobbySnapshot
}

// LobbyClosed signals that the active lobby no longer exists on the server.
type LobbyClosed struct{}

// RoundUpdated carries the latest snapshot of the active round.
type RoundUpdated struct {
	Round models.RoundSnapshot
}

// QuestionUpdated carries the latest metadata for the in-progress question.
type QuestionUpdated struct {
	Metadata models.CurrentQuestionMetadata
}

// RoundEnded signals that the active round has finished.
type RoundEnded struct{}

func (LobbyUpdated) isEvent()    {}
func (LobbyClosed) isEvent()     {}
func (RoundUpdated) isEvent()    {}
func (QuestionUpdated) isEvent() {}
func (RoundEnded) isEvent()      {}
