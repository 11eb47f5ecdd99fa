package question

import (
	"github.com/dancras/tv-quiz-party-sub000/go/internal/command"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

// CurrentQuestion wraps one active question instance. All identity-defining
// fields are fixed at construction; only the derived streams update. A new
// metadata value with a different index invalidates the instance, which is
// enforced one level up by the owning round.
type CurrentQuestion struct {
	Index   int
	IsFinal bool

	VideoID string
	// TimestampToStartVideo is the server epoch in milliseconds at which
	// playback for this question began.
	TimestampToStartVideo int64
	// Video-second offsets, copied unchanged from the static question data.
	StartTime           float64
	QuestionDisplayTime float64
	AnswerLockTime      float64
	AnswerRevealTime    float64
	EndTime             float64

	Answers       [3]string
	CorrectAnswer int

	sink        command.Sink
	hasEnded    *stream.Value[bool]
	detachEnded func()
}

// New builds a CurrentQuestion from the static content at meta.Index, the
// initial metadata, and the index-scoped metadata feed owned by the round.
// questionCount fixes IsFinal at construction; it is never re-derived.
func New(static models.QuestionStatic, meta models.CurrentQuestionMetadata, questionCount int, feed *stream.Value[models.CurrentQuestionMetadata], sink command.Sink) *CurrentQuestion {
	q := &CurrentQuestion{
		Index:                 meta.Index,
		IsFinal:               meta.Index == questionCount-1,
		VideoID:               static.VideoID,
		TimestampToStartVideo: meta.StartTime,
		StartTime:             static.StartTime,
		QuestionDisplayTime:   static.QuestionDisplayTime,
		AnswerLockTime:        static.AnswerLockTime,
		AnswerRevealTime:      static.AnswerRevealTime,
		EndTime:               static.EndTime,
		Answers:               [3]string{static.AnswerText1, static.AnswerText2, static.AnswerText3},
		CorrectAnswer:         static.CorrectAnswer,
		sink:                  sink,
	}
	q.hasEnded, q.detachEnded = stream.Map(feed, func(m models.CurrentQuestionMetadata) bool {
		return m.HasEnded
	})
	return q
}

// HasEndedOnServer reports whether the server has marked this question ended.
func (q *CurrentQuestion) HasEndedOnServer() *stream.Value[bool] {
	return q.hasEnded
}

// Answer submits answer option i for this question.
func (q *CurrentQuestion) Answer(i int) {
	q.sink.Dispatch(command.AnswerQuestion{QuestionIndex: q.Index, AnswerIndex: i})
}

// Lock reports to the server that the answer window closed.
func (q *CurrentQuestion) Lock() {
	q.sink.Dispatch(command.LockQuestion{QuestionIndex: q.Index})
}

// End reports that the question finished. The final question of a round
// additionally ends the round itself; both commands are emitted.
func (q *CurrentQuestion) End() {
	q.sink.Dispatch(command.EndQuestion{QuestionIndex: q.Index})
	if q.IsFinal {
		q.sink.Dispatch(command.EndFinalQuestion{})
	}
}

// Close releases the question's derived streams. Called by the owning round
// when the question is superseded.
func (q *CurrentQuestion) Close() {
	q.detachEnded()
}
