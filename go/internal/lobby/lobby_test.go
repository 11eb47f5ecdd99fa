package lobby_test

import (
	"testing"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/command"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/lobby"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

type sinkRecorder struct {
	commands []command.Command
}

func (s *sinkRecorder) Dispatch(cmd command.Command) {
	s.commands = append(s.commands, cmd)
}

func snapshot(id string, users ...string) models.LobbySnapshot {
	roster := make([]models.User, len(users))
	for i, name := range users {
		roster[i] = models.User{ID: name, Name: name}
	}
	return models.LobbySnapshot{
		ID:       id,
		HostID:   "host",
		JoinCode: "CODE" + id,
		Users:    roster,
	}
}

func withRound(s models.LobbySnapshot, meta *models.CurrentQuestionMetadata) models.LobbySnapshot {
	s.ActiveRound = &models.RoundSnapshot{
		Questions: []models.QuestionStatic{
			{VideoID: "v", StartTime: 10, QuestionDisplayTime: 20, AnswerLockTime: 30, AnswerRevealTime: 40, EndTime: 50},
			{VideoID: "v", StartTime: 10, QuestionDisplayTime: 20, AnswerLockTime: 30, AnswerRevealTime: 40, EndTime: 50},
		},
		CurrentQuestion: meta,
		IsHost:          true,
	}
	return s
}

func TestIdentityFieldsFixedAtConstruction(t *testing.T) {
	snap := snapshot("lobby-1", "alice")
	snap.IsHost = true
	snap.IsPresenter = true
	feed := stream.NewValueOf(snap)
	l := lobby.New(feed, &sinkRecorder{})
	defer l.Close()

	changed := snapshot("lobby-1", "alice", "bob")
	feed.Emit(changed)

	if l.ID != "lobby-1" || l.JoinCode != "CODElobby-1" || !l.IsHost || !l.IsPresenter {
		t.Fatalf("identity fields changed after construction: %+v", l)
	}
	users, _ := l.Users().Latest()
	if len(users) != 2 {
		t.Fatalf("expected roster to update, got %v", users)
	}
}

func TestActiveRoundKeyedOnPresence(t *testing.T) {
	feed := stream.NewValueOf(snapshot("lobby-1", "alice"))
	l := lobby.New(feed, &sinkRecorder{})
	defer l.Close()

	if r, ok := l.ActiveRound().Latest(); ok && r != nil {
		t.Fatalf("expected no round initially, got %+v", r)
	}

	feed.Emit(withRound(snapshot("lobby-1", "alice"), nil))
	first, _ := l.ActiveRound().Latest()
	if first == nil {
		t.Fatal("expected round after round snapshot arrived")
	}

	// Round updates flow into the existing entity.
	feed.Emit(withRound(snapshot("lobby-1", "alice"), &models.CurrentQuestionMetadata{Index: 0, StartTime: 1000}))
	again, _ := l.ActiveRound().Latest()
	if again != first {
		t.Fatal("round update produced a new round instance")
	}
	if q, _ := first.CurrentQuestion().Latest(); q == nil || q.Index != 0 {
		t.Fatalf("round did not observe its question update, got %+v", q)
	}

	// Round gone: entity retired and fenced.
	feed.Emit(snapshot("lobby-1", "alice"))
	if r, _ := l.ActiveRound().Latest(); r != nil {
		t.Fatalf("expected round cleared, got %+v", r)
	}

	feed.Emit(withRound(snapshot("lobby-1", "alice"), &models.CurrentQuestionMetadata{Index: 1, StartTime: 2000}))
	if q, _ := first.CurrentQuestion().Latest(); q != nil && q.Index == 1 {
		t.Fatal("retired round observed data from its successor")
	}
}

func TestLobbyCommands(t *testing.T) {
	sink := &sinkRecorder{}
	feed := stream.NewValueOf(snapshot("lobby-1", "alice"))
	l := lobby.New(feed, sink)
	defer l.Close()

	l.StartRound()
	l.Exit()

	if len(sink.commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(sink.commands))
	}
	if _, ok := sink.commands[0].(command.StartRound); !ok {
		t.Fatalf("expected StartRound, got %#v", sink.commands[0])
	}
	if _, ok := sink.commands[1].(command.ExitLobby); !ok {
		t.Fatalf("expected ExitLobby, got %#v", sink.commands[1])
	}
}
