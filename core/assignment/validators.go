package assignment

import (
	"time"

	"github.com/esakris/techiekraft/core"
)

type (
	NewAssignment struct {
		Title                string    `json:"title" validate:"required"`
		Description          string    `json:"description" validate:"required"`
		Instructions         string    `json:"instructions"`
		DueDate              time.Time `json:"due_date" validate:"required"`
		TotalPoints          int       `json:"total_points" validate:"omitempty,min=1"`
		EstimatedTimeMinutes int       `json:"estimated_time_minutes" validate:"omitempty,min=1"`
		AllowedAttempts      int       `json:"allowed_attempts" validate:"omitempty,min=1"`
	}

	UpdateAssignment struct {
		Title                string     `json:"title"`
		Description          string     `json:"description"`
		Instructions         string     `json:"instructions"`
		DueDate              *time.Time `json:"due_date"`
		TotalPoints          *int       `json:"total_points" validate:"omitempty,min=1"`
		EstimatedTimeMinutes *int       `json:"estimated_time_minutes" validate:"omitempty,min=1"`
		AllowedAttempts      *int       `json:"allowed_attempts" validate:"omitempty,min=1"`
		Status               string     `json:"status" validate:"omitempty,oneof=draft published archived"`
	}

	NewAssignmentFile struct {
		Title string `json:"title" validate:"required"`
		File  string `json:"file" validate:"required"`
	}

	// NewStudentAnswer is one quiz response inside a submission payload.
	NewStudentAnswer struct {
		QuestionID       string `json:"question_id" validate:"required"`
		SelectedAnswerID string `json:"selected_answer"`
		TextAnswer       string `json:"text_answer"`
	}

	NewSubmission struct {
		TextResponse  string             `json:"text_response"`
		AttemptNumber int                `json:"attempt_number" validate:"omitempty,min=1"`
		Answers       []NewStudentAnswer `json:"answers" validate:"omitempty,dive"`
	}

	NewSubmissionFile struct {
		Title string `json:"title" validate:"required"`
		File  string `json:"file" validate:"required"`
	}

	GradeSubmission struct {
		Score    *float64 `json:"score" validate:"required,min=0"`
		Feedback string   `json:"feedback"`
		Status   string   `json:"status" validate:"omitempty,oneof=graded returned"`
	}

	GradeAnswer struct {
		IsCorrect    *bool    `json:"is_correct"`
		PointsEarned *float64 `json:"points_earned" validate:"required,min=0"`
	}

	NewQuiz struct {
		TimeLimitMinutes      int  `json:"time_limit_minutes" validate:"omitempty,min=1"`
		RandomizeQuestions    bool `json:"randomize_questions"`
		ShowResultImmediately bool `json:"show_result_immediately"`
		PassingScore          int  `json:"passing_score" validate:"omitempty,min=0,max=100"`
	}

	NewQuestion struct {
		Text         string `json:"text" validate:"required"`
		QuestionType string `json:"question_type" validate:"required,oneof=multiple_choice true_false short_answer essay matching"`
		Points       int    `json:"points" validate:"omitempty,min=1"`
		Order        int    `json:"order" validate:"min=0"`
	}

	NewAnswer struct {
		Text      string `json:"text" validate:"required"`
		IsCorrect bool   `json:"is_correct"`
		Order     int    `json:"order" validate:"min=0"`
	}
)

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	if na.TotalPoints == 0 {
		na.TotalPoints = 100
	}
	if na.EstimatedTimeMinutes == 0 {
		na.EstimatedTimeMinutes = 60
	}
	if na.AllowedAttempts == 0 {
		na.AllowedAttempts = 1
	}
	return core.Validate.Struct(na)
}

func (ua *UpdateAssignment) Validate() error {
	ua.Title = core.CleanString(ua.Title)
	return core.Validate.Struct(ua)
}

func (nf *NewAssignmentFile) Validate() error {
	nf.Title = core.CleanString(nf.Title)
	return core.Validate.Struct(nf)
}

func (ns *NewSubmission) Validate() error {
	if ns.AttemptNumber == 0 {
		ns.AttemptNumber = 1
	}
	return core.Validate.Struct(ns)
}

func (nf *NewSubmissionFile) Validate() error {
	nf.Title = core.CleanString(nf.Title)
	return core.Validate.Struct(nf)
}

func (gs *GradeSubmission) Validate() error {
	if gs.Status == "" {
		gs.Status = SubmissionGraded
	}
	return core.Validate.Struct(gs)
}

func (ga *GradeAnswer) Validate() error {
	return core.Validate.Struct(ga)
}

func (nq *NewQuiz) Validate() error {
	if nq.TimeLimitMinutes == 0 {
		nq.TimeLimitMinutes = 30
	}
	if nq.PassingScore == 0 {
		nq.PassingScore = 60
	}
	return core.Validate.Struct(nq)
}

func (nq *NewQuestion) Validate() error {
	if nq.Points == 0 {
		nq.Points = 1
	}
	return core.Validate.Struct(nq)
}

func (na *NewAnswer) Validate() error {
	return core.Validate.Struct(na)
}
