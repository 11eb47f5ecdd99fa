package command

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/state"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

// API is what the handler needs from the quiz server. The create/join flows
// return the lobby snapshot confirmed by the server; everything else is
// fire-and-forget.
type API interface {
	CreateLobby(ctx context.Context, name string) (*models.LobbySnapshot, error)
	JoinLobby(ctx context.Context, joinCode, name string) (*models.LobbySnapshot, error)
	CompleteProfile(ctx context.Context, name string) error
	ExitLobby(ctx context.Context, lobbyID string) error
	StartRound(ctx context.Context, lobbyID string) error
	StartNextQuestion(ctx context.Context, lobbyID string) error
	AnswerQuestion(ctx context.Context, lobbyID string, questionIndex, answerIndex int) error
	LockQuestion(ctx context.Context, lobbyID string, questionIndex int) error
	EndQuestion(ctx context.Context, lobbyID string, questionIndex int) error
	EndFinalQuestion(ctx context.Context, lobbyID string) error
}

// Handler translates commands into network side effects, guarded against the
// AppState snapshot they were drained with. Guard failures drop the command
// with a diagnostic; they never propagate an error.
type Handler struct {
	api    API
	events func(state.Event)

	creatingLobby *stream.Value[bool]
	joiningLobby  *stream.Value[bool]

	profileReady bool
	pending      Command
}

// NewHandler returns a Handler that reports server-confirmed snapshots
// through events.
func NewHandler(api API, events func(state.Event)) *Handler {
	return &Handler{
		api:           api,
		events:        events,
		creatingLobby: stream.NewValueOf(false),
		joiningLobby:  stream.NewValueOf(false),
	}
}

// CreatingLobby reports whether a create request is in flight, for disabling
// the corresponding UI action.
func (h *Handler) CreatingLobby() *stream.Value[bool] { return h.creatingLobby }

// JoiningLobby reports whether a join request is in flight.
func (h *Handler) JoiningLobby() *stream.Value[bool] { return h.joiningLobby }

// Handle evaluates cmd against st and performs its side effects. A non-nil
// return value is a follow-up command the caller must re-enqueue.
func (h *Handler) Handle(ctx context.Context, st state.AppState, cmd Command) Command {
	switch c := cmd.(type) {
	case CreateLobby:
		if !h.profileReady {
			log.Debug().Msg("create lobby deferred pending profile completion")
			h.deferPending(c)
			return nil
		}
		go During(h.creatingLobby, func() error {
			lobby, err := h.api.CreateLobby(ctx, c.Name)
			if err != nil {
				return err
			}
			h.events(state.LobbyUpdated{Lobby: *lobby})
			return nil
		})

	case JoinLobby:
		if !h.profileReady {
			log.Debug().Str("join_code", c.JoinCode).Msg("join lobby deferred pending profile completion")
			h.deferPending(c)
			return nil
		}
		go During(h.joiningLobby, func() error {
			lobby, err := h.api.JoinLobby(ctx, c.JoinCode, c.Name)
			if err != nil {
				return err
			}
			h.events(state.LobbyUpdated{Lobby: *lobby})
			return nil
		})

	case CompleteProfile:
		h.fireAndForget("complete profile", func() error {
			return h.api.CompleteProfile(ctx, c.Name)
		})
		h.profileReady = true
		if h.pending != nil {
			replay := h.pending
			h.pending = nil
			return replay
		}

	case ExitLobby:
		lobby, ok := guardLobby(st, "exit lobby")
		if !ok {
			return nil
		}
		h.fireAndForget("exit lobby", func() error {
			return h.api.ExitLobby(ctx, lobby.ID)
		})

	case StartRound:
		lobby, ok := guardLobby(st, "start round")
		if !ok {
			return nil
		}
		h.fireAndForget("start round", func() error {
			return h.api.StartRound(ctx, lobby.ID)
		})

	case StartNextQuestion:
		lobby, _, ok := guardRound(st, "start next question")
		if !ok {
			return nil
		}
		h.fireAndForget("start next question", func() error {
			return h.api.StartNextQuestion(ctx, lobby.ID)
		})

	case AnswerQuestion:
		lobby, _, ok := guardQuestion(st, "answer question")
		if !ok {
			return nil
		}
		h.fireAndForget("answer question", func() error {
			return h.api.AnswerQuestion(ctx, lobby.ID, c.QuestionIndex, c.AnswerIndex)
		})

	case LockQuestion:
		lobby, _, ok := guardQuestion(st, "lock question")
		if !ok {
			return nil
		}
		h.fireAndForget("lock question", func() error {
			return h.api.LockQuestion(ctx, lobby.ID, c.QuestionIndex)
		})

	case EndQuestion:
		lobby, _, ok := guardQuestion(st, "end question")
		if !ok {
			return nil
		}
		h.fireAndForget("end question", func() error {
			return h.api.EndQuestion(ctx, lobby.ID, c.QuestionIndex)
		})

	case EndFinalQuestion:
		lobby, _, ok := guardRound(st, "end final question")
		if !ok {
			return nil
		}
		h.fireAndForget("end final question", func() error {
			return h.api.EndFinalQuestion(ctx, lobby.ID)
		})

	default:
		log.Warn().Msgf("unhandled command %T", cmd)
	}
	return nil
}

// deferPending parks cmd until profile completion. The slot holds one
// command; a newer intent replaces an older one.
func (h *Handler) deferPending(cmd Command) {
	if h.pending != nil {
		log.Debug().Msgf("deferred %T replaced by %T", h.pending, cmd)
	}
	h.pending = cmd
}

func (h *Handler) fireAndForget(action string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			// Transport failures are swallowed at this layer; the server's
			// push channel remains the only source of state changes.
			log.Debug().Err(err).Str("action", action).Msg("request failed")
		}
	}()
}

// guardLobby is the first precondition of every lobby-scoped command.
func guardLobby(st state.AppState, action string) (*models.LobbySnapshot, bool) {
	if st.ActiveLobby == nil {
		log.Debug().Str("action", action).Msg("command dropped: no active lobby")
		return nil, false
	}
	return st.ActiveLobby, true
}

func guardRound(st state.AppState, action string) (*models.LobbySnapshot, *models.RoundSnapshot, bool) {
	lobby, ok := guardLobby(st, action)
	if !ok {
		return nil, nil, false
	}
	if lobby.ActiveRound == nil {
		log.Debug().Str("action", action).Msg("command dropped: no active round")
		return nil, nil, false
	}
	return lobby, lobby.ActiveRound, true
}

func guardQuestion(st state.AppState, action string) (*models.LobbySnapshot, *models.CurrentQuestionMetadata, bool) {
	lobby, round, ok := guardRound(st, action)
	if !ok {
		return nil, nil, false
	}
	if round.CurrentQuestion == nil {
		log.Debug().Str("action", action).Msg("command dropped: no current question")
		return nil, nil, false
	}
	return lobby, round.CurrentQuestion, true
}

// During holds flag true for the duration of fn, flipping it back off whether
// fn succeeds or fails. Failures are logged and swallowed.
func During(flag *stream.Value[bool], fn func() error) {
	flag.Emit(true)
	err := fn()
	flag.Emit(false)
	if err != nil {
		log.Debug().Err(err).Msg("request failed during flagged action")
	}
}
