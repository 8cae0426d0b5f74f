package assignment

import "time"

// Assignment statuses. Transitions are one-directional:
// draft -> published -> archived.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Submission statuses.
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
	SubmissionReturned  = "returned"
	SubmissionLate      = "late"
)

// Question types. Only the first two carry answers with a correctness flag
// and are auto-graded; the rest are graded manually by the teacher.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
	QuestionEssay          = "essay"
	QuestionMatching       = "matching"
)

type Assignment struct {
	ID                   string    `db:"id" json:"id"`
	CourseID             string    `db:"course_id" json:"course_id"`
	Title                string    `db:"title" json:"title"`
	Description          string    `db:"description" json:"description"`
	Instructions         string    `db:"instructions" json:"instructions,omitempty"`
	DueDate              time.Time `db:"due_date" json:"due_date"`
	TotalPoints          int       `db:"total_points" json:"total_points"`
	EstimatedTimeMinutes int       `db:"estimated_time_minutes" json:"estimated_time_minutes"`
	AllowedAttempts      int       `db:"allowed_attempts" json:"allowed_attempts"`
	CreatedByID          string    `db:"created_by" json:"created_by"`
	Status               string    `db:"status" json:"status"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

func (a Assignment) IsDraft() bool     { return a.Status == StatusDraft }
func (a Assignment) IsPublished() bool { return a.Status == StatusPublished }

func (a Assignment) IsPastDue() bool {
	return a.DueDate.Before(time.Now().UTC())
}

// CanTransitionTo reports whether the status change is a legal forward step.
func (a Assignment) CanTransitionTo(status string) bool {
	switch a.Status {
	case StatusDraft:
		return status == StatusPublished
	case StatusPublished:
		return status == StatusArchived
	}
	return false
}

type AssignmentFile struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	Title        string    `db:"title" json:"title"`
	File         string    `db:"file" json:"file"` // storage reference
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Submission is one graded attempt at an assignment. (assignment, student,
// attempt_number) is unique; new attempts are new rows.
type Submission struct {
	ID            string     `db:"id" json:"id"`
	AssignmentID  string     `db:"assignment_id" json:"assignment_id"`
	StudentID     string     `db:"student_id" json:"student_id"`
	SubmittedAt   time.Time  `db:"submitted_at" json:"submitted_at"`
	TextResponse  string     `db:"text_response" json:"text_response,omitempty"`
	Score         *float64   `db:"score" json:"score,omitempty"`
	Feedback      string     `db:"feedback" json:"feedback,omitempty"`
	GradedByID    string     `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt      *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	Status        string     `db:"status" json:"status"`
	AttemptNumber int        `db:"attempt_number" json:"attempt_number"`
}

func (s Submission) IsGraded() bool {
	return s.Status == SubmissionGraded || s.Status == SubmissionReturned
}

// RefreshStatus derives lateness from the assignment due date. It runs on
// every persist, not only on creation; re-running is a no-op once the status
// left "submitted".
func (s *Submission) RefreshStatus(dueDate time.Time) {
	if s.Status == SubmissionSubmitted && s.SubmittedAt.After(dueDate) {
		s.Status = SubmissionLate
	}
}

type SubmissionFile struct {
	ID           string    `db:"id" json:"id"`
	SubmissionID string    `db:"submission_id" json:"submission_id"`
	Title        string    `db:"title" json:"title"`
	File         string    `db:"file" json:"file"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Quiz augments an assignment one-to-one.
type Quiz struct {
	ID                    string `db:"id" json:"id"`
	AssignmentID          string `db:"assignment_id" json:"assignment_id"`
	TimeLimitMinutes      int    `db:"time_limit_minutes" json:"time_limit_minutes"`
	RandomizeQuestions    bool   `db:"randomize_questions" json:"randomize_questions"`
	ShowResultImmediately bool   `db:"show_result_immediately" json:"show_result_immediately"`
	PassingScore          int    `db:"passing_score" json:"passing_score"` // percentage
}

type Question struct {
	ID           string `db:"id" json:"id"`
	QuizID       string `db:"quiz_id" json:"quiz_id"`
	Text         string `db:"text" json:"text"`
	QuestionType string `db:"question_type" json:"question_type"`
	Points       int    `db:"points" json:"points"`
	Order        int    `db:"order" json:"order"`
}

// IsObjective reports whether the question type is auto-gradable.
func (q Question) IsObjective() bool {
	return q.QuestionType == QuestionMultipleChoice || q.QuestionType == QuestionTrueFalse
}

type Answer struct {
	ID         string `db:"id" json:"id"`
	QuestionID string `db:"question_id" json:"question_id"`
	Text       string `db:"text" json:"text"`
	IsCorrect  bool   `db:"is_correct" json:"is_correct"`
	Order      int    `db:"order" json:"order"`
}

// StudentAnswer records a student's response to one question within a
// submission. IsCorrect and PointsEarned are computed (auto-grade for
// objective types, teacher input otherwise), never authoritative input.
type StudentAnswer struct {
	ID               string   `db:"id" json:"id"`
	SubmissionID     string   `db:"submission_id" json:"submission_id"`
	QuestionID       string   `db:"question_id" json:"question_id"`
	SelectedAnswerID string   `db:"selected_answer" json:"selected_answer,omitempty"`
	TextAnswer       string   `db:"text_answer" json:"text_answer,omitempty"`
	IsCorrect        *bool    `db:"is_correct" json:"is_correct,omitempty"`
	PointsEarned     *float64 `db:"points_earned" json:"points_earned,omitempty"`
}

type QuestionWithAnswers struct {
	Question
	Answers []Answer `json:"answers"`
}

type AssignmentFilter struct {
	CourseID string `json:"course_id" query:"course_id"`
	Status   string `json:"status" query:"status"`

	// scoping filters set by the service, not callers
	TeacherID         string `json:"-"`
	EnrolledStudentID string `json:"-"`
}

type SubmissionFilter struct {
	AssignmentID string `json:"assignment_id" query:"assignment_id"`
	StudentID    string `json:"student_id" query:"student_id"`

	StudentIDs []string `json:"-"`
	TeacherID  string   `json:"-"`
}
