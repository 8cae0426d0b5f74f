package lab

import "time"

// Virtual lab types.
const (
	LabScience     = "science"
	LabProgramming = "programming"
	LabLanguage    = "language"
	LabMath        = "math"
	LabSimulation  = "simulation"
	LabOther       = "other"
)

// Lab session statuses.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// Workshop types.
const (
	WorkshopEssay         = "essay"
	WorkshopCreative      = "creative"
	WorkshopTechnical     = "technical"
	WorkshopResearch      = "research"
	WorkshopPeerReview    = "peer_review"
	WorkshopCollaborative = "collaborative"
)

// Writing submission statuses, forward-only:
// draft -> submitted -> in_review -> reviewed -> graded.
const (
	WritingDraft     = "draft"
	WritingSubmitted = "submitted"
	WritingInReview  = "in_review"
	WritingReviewed  = "reviewed"
	WritingGraded    = "graded"
)

type VirtualLab struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	LabType          string    `db:"lab_type" json:"lab_type"`
	CourseID         string    `db:"course_id" json:"course_id,omitempty"`
	SubjectID        string    `db:"subject_id" json:"subject_id"`
	URL              string    `db:"url" json:"url"`
	EmbedCode        string    `db:"embed_code" json:"embed_code,omitempty"`
	Thumbnail        string    `db:"thumbnail" json:"thumbnail,omitempty"`
	Instructions     string    `db:"instructions" json:"instructions,omitempty"`
	RequiresApproval bool      `db:"requires_approval" json:"requires_approval"`
	IsPublic         bool      `db:"is_public" json:"is_public"`
	CreatedByID      string    `db:"created_by" json:"created_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Session struct {
	ID              string     `db:"id" json:"id"`
	VirtualLabID    string     `db:"virtual_lab_id" json:"virtual_lab_id"`
	StudentID       string     `db:"student_id" json:"student_id"`
	StartTime       time.Time  `db:"start_time" json:"start_time"`
	EndTime         *time.Time `db:"end_time" json:"end_time,omitempty"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Status          string     `db:"status" json:"status"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
}

// RefreshDuration recomputes the session length from its timestamps. Like
// submission lateness this runs on every persist, not only when the session
// ends.
func (s *Session) RefreshDuration() {
	if s.EndTime != nil {
		s.DurationMinutes = int(s.EndTime.Sub(s.StartTime).Minutes())
	}
}

type Result struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content,omitempty"`
	File      string    `db:"file" json:"file,omitempty"`
	Score     *float64  `db:"score" json:"score,omitempty"`
	Feedback  string    `db:"feedback" json:"feedback,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Workshop struct {
	ID                 string     `db:"id" json:"id"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	WorkshopType       string     `db:"workshop_type" json:"workshop_type"`
	CourseID           string     `db:"course_id" json:"course_id,omitempty"`
	Instructions       string     `db:"instructions" json:"instructions"`
	DocumentTemplate   string     `db:"document_template" json:"document_template,omitempty"`
	DueDate            *time.Time `db:"due_date" json:"due_date,omitempty"`
	WordCountMin       int        `db:"word_count_min" json:"word_count_min"`
	WordCountMax       int        `db:"word_count_max" json:"word_count_max"`
	RequiresPeerReview bool       `db:"requires_peer_review" json:"requires_peer_review"`
	CreatedByID        string     `db:"created_by" json:"created_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type WritingSubmission struct {
	ID         string    `db:"id" json:"id"`
	WorkshopID string    `db:"workshop_id" json:"workshop_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	WordCount  int       `db:"word_count" json:"word_count"`
	Status     string    `db:"status" json:"status"`
	Grade      *float64  `db:"grade" json:"grade,omitempty"`
	Feedback   string    `db:"feedback" json:"feedback,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

var writingOrder = map[string]int{
	WritingDraft:     0,
	WritingSubmitted: 1,
	WritingInReview:  2,
	WritingReviewed:  3,
	WritingGraded:    4,
}

// CanTransitionTo reports whether status is a forward step from the current
// one.
func (ws WritingSubmission) CanTransitionTo(status string) bool {
	to, ok := writingOrder[status]
	if !ok {
		return false
	}
	return to > writingOrder[ws.Status]
}

// PeerReview is unique per (submission, reviewer); a student never reviews
// their own piece.
type PeerReview struct {
	ID           string    `db:"id" json:"id"`
	SubmissionID string    `db:"submission_id" json:"submission_id"`
	ReviewerID   string    `db:"reviewer_id" json:"reviewer_id"`
	Content      string    `db:"content" json:"content"`
	Rating       int       `db:"rating" json:"rating"` // 1..5
	CompletedAt  time.Time `db:"completed_at" json:"completed_at"`
}

// Language tool types.
const (
	LanguageTranslation   = "translation"
	LanguageDictionary    = "dictionary"
	LanguageGrammar       = "grammar"
	LanguageVocabulary    = "vocabulary"
	LanguagePronunciation = "pronunciation"
	LanguageConjugation   = "conjugation"
)

// Math tool types.
const (
	MathCalculator  = "calculator"
	MathGrapher     = "grapher"
	MathSolver      = "solver"
	MathGeometry    = "geometry"
	MathStatistics  = "statistics"
	MathProbability = "probability"
)

type LanguageTool struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Description        string    `db:"description" json:"description"`
	ToolType           string    `db:"tool_type" json:"tool_type"`
	URL                string    `db:"url" json:"url"`
	APIKeyRequired     bool      `db:"api_key_required" json:"api_key_required"`
	EmbedCode          string    `db:"embed_code" json:"embed_code,omitempty"`
	SupportedLanguages string    `db:"supported_languages" json:"supported_languages"`
	IconClass          string    `db:"icon_class" json:"icon_class,omitempty"`
	IsPremium          bool      `db:"is_premium" json:"is_premium"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type MathTool struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	ToolType        string    `db:"tool_type" json:"tool_type"`
	URL             string    `db:"url" json:"url"`
	APIKeyRequired  bool      `db:"api_key_required" json:"api_key_required"`
	EmbedCode       string    `db:"embed_code" json:"embed_code,omitempty"`
	ComplexityLevel string    `db:"complexity_level" json:"complexity_level"`
	IconClass       string    `db:"icon_class" json:"icon_class,omitempty"`
	IsPremium       bool      `db:"is_premium" json:"is_premium"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Schedule event types.
const (
	EventClass    = "class"
	EventExam     = "exam"
	EventDeadline = "deadline"
	EventMeeting  = "meeting"
	EventSchool   = "event"
	EventHoliday  = "holiday"
)

type ScheduleEvent struct {
	ID                string    `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description,omitempty"`
	EventType         string    `db:"event_type" json:"event_type"`
	CourseID          string    `db:"course_id" json:"course_id,omitempty"`
	StartTime         time.Time `db:"start_time" json:"start_time"`
	EndTime           time.Time `db:"end_time" json:"end_time"`
	DurationMinutes   int       `db:"duration_minutes" json:"duration_minutes"`
	Location          string    `db:"location" json:"location,omitempty"`
	IsRecurring       bool      `db:"is_recurring" json:"is_recurring"`
	RecurrencePattern string    `db:"recurrence_pattern" json:"recurrence_pattern,omitempty"`
	CreatedByID       string    `db:"created_by" json:"created_by"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// RefreshDuration recomputes the event length from its timestamps on every
// persist, like lab session durations.
func (e *ScheduleEvent) RefreshDuration() {
	e.DurationMinutes = int(e.EndTime.Sub(e.StartTime).Minutes())
}

type LabFilter struct {
	SubjectID string `json:"subject_id" query:"subject_id"`
	CourseID  string `json:"course_id" query:"course_id"`
	LabType   string `json:"lab_type" query:"lab_type"`
}

type EventFilter struct {
	CourseID  string     `json:"course_id" query:"course_id"`
	EventType string     `json:"event_type" query:"event_type"`
	From      *time.Time `json:"from" query:"from"`
	Until     *time.Time `json:"until" query:"until"`
}
