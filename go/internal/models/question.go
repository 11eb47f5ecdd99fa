package models

// QuestionStatic is the immutable per-question content. All timestamp fields
// are offsets into the question video, in seconds. A question is identified by
// its position in the round's question list.
type QuestionStatic struct {
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

// CurrentQuestionMetadata is the server's mutable view of the in-progress
// question. StartTime is the server epoch in milliseconds at which playback
// for this question began.
type CurrentQuestionMetadata struct {
	Index     int   `json:"i"`
	StartTime int64 `json:"start_time"`
	HasEnded  bool  `json:"has_ended"`
}
