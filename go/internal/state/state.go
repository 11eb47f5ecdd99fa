package state

import (
	"github.com/rs/zerolog/log"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
)

// AppState is the single process-wide snapshot of server truth. It is owned
// by the session loop and replaced, never mutated in place, on each applied
// event.
type AppState struct {
	UserID string
	// IsPresenter marks a client running as the shared-screen presenter; it
	// is fixed at session construction.
	IsPresenter bool
	ActiveLobby *models.LobbySnapshot
}

// Reduce applies a server-confirmed event to st and returns the next state.
// It is total: events that do not fit the current state leave it unchanged.
// Each case denormalizes IsHost onto the relevant nested snapshot by
// comparing the confirmed user identity against the lobby host.
func Reduce(st AppState, ev Event) AppState {
	switch e := ev.(type) {
	case LobbyUpdated:
		lobby := e.Lobby
		lobby.IsHost = lobby.HostID == st.UserID
		lobby.IsPresenter = lobby.IsPresenter || st.IsPresenter
		if lobby.ActiveRound != nil {
			round := *lobby.ActiveRound
			round.IsHost = lobby.IsHost
			lobby.ActiveRound = &round
		}
		st.ActiveLobby = &lobby
		return st

	case LobbyClosed:
		st.ActiveLobby = nil
		return st

	case RoundUpdated:
		if st.ActiveLobby == nil {
			log.Debug().Msg("round update with no active lobby; dropped")
			return st
		}
		lobby := *st.ActiveLobby
		round := e.Round
		round.IsHost = lobby.HostID == st.UserID
		lobby.ActiveRound = &round
		st.ActiveLobby = &lobby
		return st

	case QuestionUpdated:
		if st.ActiveLobby == nil || st.ActiveLobby.ActiveRound == nil {
			log.Debug().Msg("question update with no active round; dropped")
			return st
		}
		lobby := *st.ActiveLobby
		round := *lobby.ActiveRound
		meta := e.Metadata
		round.CurrentQuestion = &meta
		lobby.ActiveRound = &round
		st.ActiveLobby = &lobby
		return st

	case RoundEnded:
		if st.ActiveLobby == nil {
			return st
		}
		lobby := *st.ActiveLobby
		lobby.ActiveRound = nil
		st.ActiveLobby = &lobby
		return st

	default:
		log.Warn().Msgf("unhandled state event %T", ev)
		return st
	}
}
