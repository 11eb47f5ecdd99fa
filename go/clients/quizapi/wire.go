package quizapi

import (
	"encoding/json"
	"fmt"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
)

// Wire payloads mirror the server's JSON shapes. Timestamps arrive as epoch
// seconds and are converted to epoch milliseconds during decoding; the static
// question timestamps stay in video seconds.

type userPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type questionPayload struct {
	VideoID             string  `json:"video_id"`
	StartTime           float64 `json:"start_time"`
	QuestionDisplayTime float64 `json:"question_display_time"`
	AnswerLockTime      float64 `json:"answer_lock_time"`
	AnswerRevealTime    float64 `json:"answer_reveal_time"`
	EndTime             float64 `json:"end_time"`
	AnswerText1         string  `json:"answer_text_1"`
	AnswerText2         string  `json:"answer_text_2"`
	AnswerText3         string  `json:"answer_text_3"`
	CorrectAnswer       int     `json:"correct_answer"`
}

type currentQuestionPayload struct {
	Index     int     `json:"i"`
	StartTime float64 `json:"start_time"`
	HasEnded  bool    `json:"has_ended"`
}

type leaderboardItemPayload struct {
	Score int `json:"score"`
}

type roundPayload struct {
	Questions       []questionPayload                 `json:"questions"`
	CurrentQuestion *currentQuestionPayload           `json:"current_question"`
	Leaderboard     map[string]leaderboardItemPayload `json:"leaderboard"`
}

type lobbyPayload struct {
	ID          string        `json:"id"`
	HostID      string        `json:"host_id"`
	JoinCode    string        `json:"join_code"`
	Users       []userPayload `json:"users"`
	Round       *roundPayload `json:"round"`
	IsPresenter bool          `json:"is_presenter"`
}

// DecodeLobby translates a raw lobby payload into a typed snapshot. The push
// channel reuses it for lobby-shaped message data.
func DecodeLobby(data []byte) (models.LobbySnapshot, error) {
	var wire lobbyPayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.LobbySnapshot{}, fmt.Errorf("failed to decode lobby payload: %w", err)
	}
	return wire.toSnapshot(), nil
}

// DecodeRound translates a raw round payload into a typed snapshot.
func DecodeRound(data []byte) (models.RoundSnapshot, error) {
	var wire roundPayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.RoundSnapshot{}, fmt.Errorf("failed to decode round payload: %w", err)
	}
	return wire.toSnapshot(), nil
}

// DecodeCurrentQuestion translates a raw current-question payload, converting
// the server start time from epoch seconds to epoch milliseconds.
func DecodeCurrentQuestion(data []byte) (models.CurrentQuestionMetadata, error) {
	var wire currentQuestionPayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.CurrentQuestionMetadata{}, fmt.Errorf("failed to decode current question payload: %w", err)
	}
	return wire.toMetadata(), nil
}

func (p questionPayload) toStatic() models.QuestionStatic {
	return models.QuestionStatic{
		VideoID:             p.VideoID,
		StartTime:           p.StartTime,
		QuestionDisplayTime: p.QuestionDisplayTime,
		AnswerLockTime:      p.AnswerLockTime,
		AnswerRevealTime:    p.AnswerRevealTime,
		EndTime:             p.EndTime,
		AnswerText1:         p.AnswerText1,
		AnswerText2:         p.AnswerText2,
		AnswerText3:         p.AnswerText3,
		CorrectAnswer:       p.CorrectAnswer,
	}
}

func (p currentQuestionPayload) toMetadata() models.CurrentQuestionMetadata {
	return models.CurrentQuestionMetadata{
		Index:     p.Index,
		StartTime: int64(p.StartTime * 1000),
		HasEnded:  p.HasEnded,
	}
}

func (p roundPayload) toSnapshot() models.RoundSnapshot {
	questions := make([]models.QuestionStatic, len(p.Questions))
	for i, q := range p.Questions {
		questions[i] = q.toStatic()
	}

	var current *models.CurrentQuestionMetadata
	if p.CurrentQuestion != nil {
		meta := p.CurrentQuestion.toMetadata()
		current = &meta
	}

	leaderboard := make(map[string]models.LeaderboardItem, len(p.Leaderboard))
	for userID, item := range p.Leaderboard {
		leaderboard[userID] = models.LeaderboardItem{Score: item.Score}
	}

	return models.RoundSnapshot{
		Questions:       questions,
		CurrentQuestion: current,
		Leaderboard:     leaderboard,
	}
}

func (p lobbyPayload) toSnapshot() models.LobbySnapshot {
	users := make([]models.User, len(p.Users))
	for i, u := range p.Users {
		users[i] = models.User{ID: u.ID, Name: u.Name}
	}

	var round *models.RoundSnapshot
	if p.Round != nil {
		snapshot := p.Round.toSnapshot()
		round = &snapshot
	}

	return models.LobbySnapshot{
		ID:          p.ID,
		HostID:      p.HostID,
		JoinCode:    p.JoinCode,
		Users:       users,
		ActiveRound: round,
		IsPresenter: p.IsPresenter,
	}
}
