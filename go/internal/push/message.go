package push

import (
	"encoding/json"
	"fmt"

	"github.com/dancras/tv-quiz-party-sub000/go/clients/quizapi"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/state"
)

// Message is the tagged envelope delivered on the push channel.
type Message struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

// Push message codes. Each code maps to exactly one state event.
const (
	CodeUserJoined      = "USER_JOINED"
	CodeUserExited      = "USER_EXITED"
	CodeLobbyClosed     = "LOBBY_CLOSED"
	CodeRoundStarted    = "ROUND_STARTED"
	CodeQuestionStarted = "QUESTION_STARTED"
	CodeAnswerReceived  = "ANSWER_RECEIVED"
	CodeRoundEnded      = "ROUND_ENDED"
)

// MapEvent translates a push message into its state event. An unknown code is
// a contract violation with the server and is returned as an error rather
// than skipped.
func MapEvent(msg Message) (state.Event, error) {
	switch msg.Code {
	case CodeUserJoined, CodeUserExited:
		lobby, err := quizapi.DecodeLobby(msg.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", msg.Code, err)
		}
		return state.LobbyUpdated{Lobby: lobby}, nil

	case CodeLobbyClosed:
		return state.LobbyClosed{}, nil

	case CodeRoundStarted, CodeAnswerReceived:
		round, err := quizapi.DecodeRound(msg.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", msg.Code, err)
		}
		return state.RoundUpdated{Round: round}, nil

	case CodeQuestionStarted:
		meta, err := quizapi.DecodeCurrentQuestion(msg.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", msg.Code, err)
		}
		return state.QuestionUpdated{Metadata: meta}, nil

	case CodeRoundEnded:
		return state.RoundEnded{}, nil

	default:
		return nil, fmt.Errorf("unknown push message code %q", msg.Code)
	}
}
