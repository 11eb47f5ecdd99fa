package round

import (
	"github.com/rs/zerolog/log"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/command"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/question"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

// Round wraps the active round of one lobby. The question list and host flag
// are fixed at construction; the current question, leaderboard and host
// advancement eligibility are derived from the round's snapshot feed.
type Round struct {
	Questions []models.QuestionStatic
	IsHost    bool

	sink command.Sink

	current      *stream.Value[*question.CurrentQuestion]
	canStartNext *stream.Value[bool]
	leaderboard  *stream.Value[map[string]models.LeaderboardItem]

	feed          *stream.Value[models.RoundSnapshot]
	cur           *question.CurrentQuestion
	detachCurFeed func()
	detach        []func()
}

// New builds a Round over its scoped snapshot feed. The feed must hold the
// round's initial snapshot; its identity scope (one active round per lobby)
// is enforced by the owning lobby.
func New(feed *stream.Value[models.RoundSnapshot], sink command.Sink) *Round {
	r := &Round{
		sink:    sink,
		feed:    feed,
		current: stream.NewValue[*question.CurrentQuestion](),
	}

	if initial, ok := feed.Latest(); ok {
		r.Questions = initial.Questions
		r.IsHost = initial.IsHost
	}

	leaderboard, detachLeaderboard := stream.Map(feed, func(s models.RoundSnapshot) map[string]models.LeaderboardItem {
		return s.Leaderboard
	})
	r.leaderboard = leaderboard

	isHost := r.IsHost
	canStartNext, detachCanStart := stream.Map(feed, func(s models.RoundSnapshot) bool {
		return eligibleToAdvance(isHost, s)
	})
	r.canStartNext = canStartNext

	detachQuestions := feed.Subscribe(r.applySnapshot)

	r.detach = append(r.detach, detachLeaderboard, detachCanStart, detachQuestions)
	return r
}

// eligibleToAdvance decides whether the host may start the next question:
// before the first question once the round has questions at all, or after a
// finished question that is not the last.
func eligibleToAdvance(isHost bool, s models.RoundSnapshot) bool {
	if !isHost {
		return false
	}
	meta := s.CurrentQuestion
	if meta == nil {
		return len(s.Questions) > 0
	}
	return meta.HasEnded && meta.Index < len(s.Questions)-1
}

// applySnapshot keeps the current-question sub-entity in step with the feed,
// constructing at most one CurrentQuestion per index. Each question reads its
// metadata through an index-fenced scope of the round feed, so same-index
// updates flow into the existing instance and a different index permanently
// silences the old one, whichever subscriber the fence reaches first.
func (r *Round) applySnapshot(s models.RoundSnapshot) {
	meta := s.CurrentQuestion
	if meta == nil {
		if r.cur != nil {
			r.retireQuestion()
			r.current.Emit(nil)
		}
		return
	}

	if r.cur != nil && r.cur.Index == meta.Index {
		// Same identity: the scoped feed carries the update.
		return
	}

	hadCur := r.cur != nil
	if hadCur {
		r.retireQuestion()
	}

	if meta.Index < 0 || meta.Index >= len(r.Questions) {
		log.Warn().Int("question_index", meta.Index).Int("question_count", len(r.Questions)).
			Msg("question metadata outside round's question list; ignored")
		if hadCur {
			r.current.Emit(nil)
		}
		return
	}

	idx := meta.Index
	curFeed, detachCurFeed := stream.ScopeWhile(r.feed,
		func(s models.RoundSnapshot) bool {
			return s.CurrentQuestion != nil && s.CurrentQuestion.Index == idx
		},
		func(s models.RoundSnapshot) models.CurrentQuestionMetadata {
			return *s.CurrentQuestion
		},
	)
	r.detachCurFeed = detachCurFeed
	r.cur = question.New(r.Questions[idx], *meta, len(r.Questions), curFeed, r.sink)
	r.current.Emit(r.cur)
}

func (r *Round) retireQuestion() {
	r.detachCurFeed()
	r.cur.Close()
	r.cur = nil
}

// CurrentQuestion is the live current-question sub-entity, or nil between
// questions. All observers share the same instance per identity window.
func (r *Round) CurrentQuestion() *stream.Value[*question.CurrentQuestion] {
	return r.current
}

// CanStartNextQuestion reports whether this user may advance the round.
func (r *Round) CanStartNextQuestion() *stream.Value[bool] {
	return r.canStartNext
}

// Leaderboard is the live per-user standings for the round.
func (r *Round) Leaderboard() *stream.Value[map[string]models.LeaderboardItem] {
	return r.leaderboard
}

// StartNextQuestion asks the server to advance to the next question.
func (r *Round) StartNextQuestion() {
	r.sink.Dispatch(command.StartNextQuestion{})
}

// Close retires the round and everything beneath it. Called by the owning
// lobby when the round ends or the lobby itself is torn down.
func (r *Round) Close() {
	for _, d := range r.detach {
		d()
	}
	r.detach = nil
	if r.cur != nil {
		r.retireQuestion()
	}
	r.current.Close()
	r.canStartNext.Close()
	r.leaderboard.Close()
}
