package lobby_test

import (
	"testing"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/lobby"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

func snapPtr(s models.LobbySnapshot) *models.LobbySnapshot {
	return &s
}

func TestSameIdSnapshotsEmitOneLobby(t *testing.T) {
	src := stream.NewValue[*models.LobbySnapshot]()
	active, detach := lobby.ComposeActive(src, &sinkRecorder{})
	defer detach()

	emissions := 0
	cancel := active.Subscribe(func(*lobby.Lobby) { emissions++ })
	defer cancel()

	src.Emit(snapPtr(snapshot("lobby-1", "alice")))
	src.Emit(snapPtr(snapshot("lobby-1", "alice", "bob")))
	src.Emit(snapPtr(snapshot("lobby-1", "alice", "bob", "carol")))

	if emissions != 1 {
		t.Fatalf("expected 1 emission for one identity, got %d", emissions)
	}

	l, _ := active.Latest()
	users, _ := l.Users().Latest()
	if len(users) != 3 {
		t.Fatalf("lobby did not receive later same-id snapshots, roster %v", users)
	}
}

func TestObserversShareOneInstance(t *testing.T) {
	src := stream.NewValueOf(snapPtr(snapshot("lobby-1", "alice")))
	active, detach := lobby.ComposeActive(src, &sinkRecorder{})
	defer detach()

	var a, b *lobby.Lobby
	cancelA := active.Subscribe(func(l *lobby.Lobby) { a = l })
	cancelB := active.Subscribe(func(l *lobby.Lobby) { b = l })
	defer cancelA()
	defer cancelB()

	if a == nil || a != b {
		t.Fatalf("observers saw different instances: %p %p", a, b)
	}
}

func TestAbsentTransitionsEmit(t *testing.T) {
	src := stream.NewValueOf[*models.LobbySnapshot](nil)
	active, detach := lobby.ComposeActive(src, &sinkRecorder{})
	defer detach()

	var seen []*lobby.Lobby
	cancel := active.Subscribe(func(l *lobby.Lobby) { seen = append(seen, l) })
	defer cancel()

	src.Emit(snapPtr(snapshot("lobby-1", "alice")))
	src.Emit(nil)

	if len(seen) != 3 {
		t.Fatalf("expected 3 emissions (absent, lobby, absent), got %d", len(seen))
	}
	if seen[0] != nil || seen[1] == nil || seen[2] != nil {
		t.Fatalf("unexpected emission sequence: %v", seen)
	}
}

// The adjacent-leakage scenario: a lobby captured mid-sequence must observe
// its own later updates and nothing from its neighbours.
func TestNoAdjacentLeakage(t *testing.T) {
	src := stream.NewValue[*models.LobbySnapshot]()
	active, detach := lobby.ComposeActive(src, &sinkRecorder{})
	defer detach()

	var second *lobby.Lobby
	cancel := active.Subscribe(func(l *lobby.Lobby) {
		if l != nil && l.ID == "lobby-2" {
			second = l
		}
	})
	defer cancel()

	src.Emit(snapPtr(snapshot("lobby-1", "lobby-1-user")))
	src.Emit(snapPtr(snapshot("lobby-2", "")))
	src.Emit(snapPtr(snapshot("lobby-2", "lobby-2-user")))
	src.Emit(snapPtr(snapshot("lobby-3", "lobby-3-user")))

	if second == nil {
		t.Fatal("second lobby never emitted")
	}
	users, _ := second.Users().Latest()
	if len(users) != 1 || users[0].Name != "lobby-2-user" {
		t.Fatalf("expected final roster [lobby-2-user], got %v", users)
	}
}

func TestSupersededLobbyFeedIsFenced(t *testing.T) {
	src := stream.NewValueOf(snapPtr(snapshot("lobby-1", "alice")))
	active, detach := lobby.ComposeActive(src, &sinkRecorder{})
	defer detach()

	first, _ := active.Latest()

	src.Emit(snapPtr(snapshot("lobby-2", "bob")))

	// Updates for the new identity must not reach the old entity, even via
	// the roster derivation.
	src.Emit(snapPtr(snapshot("lobby-2", "bob", "carol")))

	users, _ := first.Users().Latest()
	if len(users) != 1 || users[0].Name != "alice" {
		t.Fatalf("superseded lobby observed foreign roster: %v", users)
	}
}
