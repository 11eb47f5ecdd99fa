package models

// User is one member of a lobby roster.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LobbySnapshot is the server's view of a lobby at one instant. Snapshots are
// immutable once decoded; the reducer replaces them rather than mutating.
type LobbySnapshot struct {
	ID          string         `json:"id"`
	HostID      string         `json:"host_id"`
	JoinCode    string         `json:"join_code"`
	Users       []User         `json:"users"`
	ActiveRound *RoundSnapshot `json:"active_round,omitempty"`

	// IsHost is denormalized against the confirmed user identity by the
	// reducer. IsPresenter is set by the server for the presenting connection
	// and forced on for a client running in presenter mode.
	IsHost      bool `json:"is_host"`
	IsPresenter bool `json:"is_presenter"`
}

// LeaderboardItem is one user's standing in the active round.
type LeaderboardItem struct {
	Score int `json:"score"`
}

// RoundSnapshot is the server's view of the active round. There is at most one
// active round per lobby at a time, so it carries no id of its own.
type RoundSnapshot struct {
	Questions       []QuestionStatic           `json:"questions"`
	CurrentQuestion *CurrentQuestionMetadata   `json:"current_question,omitempty"`
	Leaderboard     map[string]LeaderboardItem `json:"leaderboard"`

	IsHost bool `json:"is_host"`
}
