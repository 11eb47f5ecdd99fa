package command

// Command is a tagged value representing a UI-originated intent to change
// server state. Commands carry no local effects; authority lives server-side.
type Command interface {
	isCommand()
}

// Sink accepts commands for asynchronous handling. Entities hold a Sink so
// that command emission never depends on who constructed them.
type Sink interface {
	Dispatch(Command)
}

// CreateLobby asks the server to open a new lobby hosted by this user.
type CreateLobby struct {
	Name string
}

// JoinLobby asks the server to add this user to the lobby behind JoinCode.
type JoinLobby struct {
	JoinCode string
	Name     string
}

// CompleteProfile confirms the user's profile, unblocking any command that
// was deferred pending it.
type CompleteProfile struct {
	Name string
}

// ExitLobby leaves the active lobby.
type ExitLobby struct{}

// StartRound begins a round in the active lobby.
type StartRound struct{}

// StartNextQuestion advances the active round to its next question.
type StartNextQuestion struct{}

// AnswerQuestion submits the user's answer for the in-progress question.
type AnswerQuestion struct {
	QuestionIndex int
	AnswerIndex   int
}

// LockQuestion tells the server the answer window for the question closed.
type LockQuestion struct {
	QuestionIndex int
}

// EndQuestion tells the server the question finished playing out.
type EndQuestion struct {
	QuestionIndex int
}

// EndFinalQuestion tells the server the last question of the round finished,
// ending the round. Always paired with an EndQuestion for the same question.
type EndFinalQuestion struct{}

func (CreateLobby) isCommand()       {}
func (JoinLobby) isCommand()         {}
func (CompleteProfile) isCommand()   {}
func (ExitLobby) isCommand()         {}
func (StartRound) isCommand()        {}
func (StartNextQuestion) isCommand() {}
func (AnswerQuestion) isCommand()    {}
func (LockQuestion) isCommand()      {}
func (EndQuestion) isCommand()       {}
func (EndFinalQuestion) isCommand()  {}
