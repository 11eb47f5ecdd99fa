package quizapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dancras/tv-quiz-party-sub000/go/clients/quizapi"
)

const lobbyJSON = `{
	"id": "lobby-1",
	"host_id": "user-1",
	"join_code": "BEEF",
	"is_presenter": true,
	"users": [
		{"id": "user-1", "name": "alice"},
		{"id": "user-2", "name": "bob"}
	],
	"round": {
		"questions": [
			{
				"video_id": "dQw4w9WgXcQ",
				"start_time": 10,
				"question_display_time": 20,
				"answer_lock_time": 30,
				"answer_reveal_time": 40,
				"end_time": 50,
				"answer_text_1": "one",
				"answer_text_2": "two",
				"answer_text_3": "three",
				"correct_answer": 1
			}
		],
		"current_question": {"i": 0, "start_time": 1700000000.5, "has_ended": false},
		"leaderboard": {"user-2": {"score": 3}}
	}
}`

func TestCreateLobbyDecodesResponse(t *testing.T) {
	var gotPath, gotUser string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotUser = r.Header.Get("X-User-ID")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(lobbyJSON))
	}))
	defer server.Close()

	client := quizapi.NewClient(server.URL, "user-1")
	lobby, err := client.CreateLobby(context.Background(), "alice")
	if err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}

	if gotPath != "POST /lobbies" {
		t.Fatalf("unexpected request %q", gotPath)
	}
	if gotUser != "user-1" {
		t.Fatalf("missing user header, got %q", gotUser)
	}
	if gotBody["user_name"] != "alice" {
		t.Fatalf("unexpected body %v", gotBody)
	}

	if lobby.ID != "lobby-1" || lobby.JoinCode != "BEEF" || len(lobby.Users) != 2 {
		t.Fatalf("unexpected lobby %+v", lobby)
	}
	if !lobby.IsPresenter {
		t.Fatal("expected presenter flag carried from the wire")
	}
	if lobby.ActiveRound == nil {
		t.Fatal("expected round in snapshot")
	}
	meta := lobby.ActiveRound.CurrentQuestion
	if meta == nil || meta.StartTime != 1700000000500 {
		t.Fatalf("expected start epoch converted to ms, got %+v", meta)
	}
	if lobby.ActiveRound.Leaderboard["user-2"].Score != 3 {
		t.Fatalf("unexpected leaderboard %v", lobby.ActiveRound.Leaderboard)
	}
	if lobby.ActiveRound.Questions[0].AnswerLockTime != 30 {
		t.Fatalf("unexpected question decode %+v", lobby.ActiveRound.Questions[0])
	}
}

func TestJoinAndGetLobbyPaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "lobby-1", "host_id": "user-1", "join_code": "BEEF", "users": []}`))
	}))
	defer server.Close()

	client := quizapi.NewClient(server.URL, "user-2")
	if _, err := client.JoinLobby(context.Background(), "BEEF", "bob"); err != nil {
		t.Fatalf("JoinLobby: %v", err)
	}
	if _, err := client.GetLobby(context.Background(), "BEEF"); err != nil {
		t.Fatalf("GetLobby: %v", err)
	}

	want := []string{"POST /lobbies/BEEF/join", "GET /lobbies/BEEF"}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("expected %q, got %q", p, paths[i])
		}
	}
}

func TestRoundCommandsHitExpectedEndpoints(t *testing.T) {
	var paths []string
	var bodies []map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var decoded map[string]int
		_ = json.Unmarshal(body, &decoded)
		bodies = append(bodies, decoded)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx := context.Background()
	client := quizapi.NewClient(server.URL, "user-1")

	if err := client.StartRound(ctx, "lobby-1"); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := client.StartNextQuestion(ctx, "lobby-1"); err != nil {
		t.Fatalf("StartNextQuestion: %v", err)
	}
	if err := client.AnswerQuestion(ctx, "lobby-1", 2, 1); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	if err := client.LockQuestion(ctx, "lobby-1", 2); err != nil {
		t.Fatalf("LockQuestion: %v", err)
	}
	if err := client.EndQuestion(ctx, "lobby-1", 2); err != nil {
		t.Fatalf("EndQuestion: %v", err)
	}
	if err := client.EndFinalQuestion(ctx, "lobby-1"); err != nil {
		t.Fatalf("EndFinalQuestion: %v", err)
	}

	want := []string{
		"POST /lobbies/lobby-1/round",
		"POST /lobbies/lobby-1/round/next_question",
		"POST /lobbies/lobby-1/round/answer",
		"POST /lobbies/lobby-1/round/lock_answers",
		"POST /lobbies/lobby-1/round/end_question",
		"POST /lobbies/lobby-1/round/end",
	}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("expected %q, got %q", p, paths[i])
		}
	}
	if bodies[2]["question_index"] != 2 || bodies[2]["answer_index"] != 1 {
		t.Fatalf("unexpected answer body %v", bodies[2])
	}
	if bodies[3]["question_index"] != 2 {
		t.Fatalf("unexpected lock body %v", bodies[3])
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "lobby full"}`))
	}))
	defer server.Close()

	client := quizapi.NewClient(server.URL, "user-1")
	_, err := client.JoinLobby(context.Background(), "BEEF", "bob")
	if err == nil {
		t.Fatal("expected error for 409 response")
	}
}

func TestServerTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"now": 1700000000.25}`))
	}))
	defer server.Close()

	client := quizapi.NewClient(server.URL, "user-1")
	got, err := client.ServerTime(context.Background())
	if err != nil {
		t.Fatalf("ServerTime: %v", err)
	}
	if want := time.UnixMilli(1700000000250); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
