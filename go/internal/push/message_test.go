package push_test

import (
	"encoding/json"
	"testing"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/push"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/state"
)

const lobbyData = `{"id": "lobby-1", "host_id": "user-1", "join_code": "BEEF", "users": [{"id": "user-2", "name": "bob"}]}`

func TestMapEventLobbyCodes(t *testing.T) {
	for _, code := range []string{push.CodeUserJoined, push.CodeUserExited} {
		event, err := push.MapEvent(push.Message{Code: code, Data: json.RawMessage(lobbyData)})
		if err != nil {
			t.Fatalf("%s: %v", code, err)
		}
		updated, ok := event.(state.LobbyUpdated)
		if !ok {
			t.Fatalf("%s: expected LobbyUpdated, got %#v", code, event)
		}
		if updated.Lobby.ID != "lobby-1" || len(updated.Lobby.Users) != 1 {
			t.Fatalf("%s: bad decode %+v", code, updated.Lobby)
		}
	}
}

func TestMapEventLobbyClosed(t *testing.T) {
	event, err := push.MapEvent(push.Message{Code: push.CodeLobbyClosed})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := event.(state.LobbyClosed); !ok {
		t.Fatalf("expected LobbyClosed, got %#v", event)
	}
}

func TestMapEventRoundCodes(t *testing.T) {
	data := `{"questions": [], "leaderboard": {"user-2": {"score": 2}}}`
	for _, code := range []string{push.CodeRoundStarted, push.CodeAnswerReceived} {
		event, err := push.MapEvent(push.Message{Code: code, Data: json.RawMessage(data)})
		if err != nil {
			t.Fatalf("%s: %v", code, err)
		}
		updated, ok := event.(state.RoundUpdated)
		if !ok {
			t.Fatalf("%s: expected RoundUpdated, got %#v", code, event)
		}
		if updated.Round.Leaderboard["user-2"].Score != 2 {
			t.Fatalf("%s: bad decode %+v", code, updated.Round)
		}
	}
}

func TestMapEventQuestionStarted(t *testing.T) {
	data := `{"i": 2, "start_time": 1700000000.5, "has_ended": false}`
	event, err := push.MapEvent(push.Message{Code: push.CodeQuestionStarted, Data: json.RawMessage(data)})
	if err != nil {
		t.Fatal(err)
	}
	updated, ok := event.(state.QuestionUpdated)
	if !ok {
		t.Fatalf("expected QuestionUpdated, got %#v", event)
	}
	if updated.Metadata.Index != 2 || updated.Metadata.StartTime != 1700000000500 {
		t.Fatalf("expected epoch ms conversion, got %+v", updated.Metadata)
	}
}

func TestMapEventRoundEnded(t *testing.T) {
	event, err := push.MapEvent(push.Message{Code: push.CodeRoundEnded})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := event.(state.RoundEnded); !ok {
		t.Fatalf("expected RoundEnded, got %#v", event)
	}
}

func TestMapEventUnknownCodeIsError(t *testing.T) {
	if _, err := push.MapEvent(push.Message{Code: "SERVER_RESTARTED"}); err == nil {
		t.Fatal("expected error for unknown code")
	}
}
