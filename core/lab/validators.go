package lab

import (
	"strings"
	"time"

	"github.com/esakris/techiekraft/core"
)

type (
	NewVirtualLab struct {
		Name             string `json:"name" validate:"required"`
		Description      string `json:"description" validate:"required"`
		LabType          string `json:"lab_type" validate:"required,oneof=science programming language math simulation other"`
		CourseID         string `json:"course_id"`
		SubjectID        string `json:"subject_id" validate:"required"`
		URL              string `json:"url" validate:"required,url"`
		EmbedCode        string `json:"embed_code"`
		Thumbnail        string `json:"thumbnail"`
		Instructions     string `json:"instructions"`
		RequiresApproval bool   `json:"requires_approval"`
		IsPublic         *bool  `json:"is_public"`
	}

	EndSession struct {
		Status string `json:"status" validate:"omitempty,oneof=completed abandoned"`
		Notes  string `json:"notes"`
	}

	NewResult struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content"`
		File    string `json:"file"`
	}

	GradeResult struct {
		Score    *float64 `json:"score" validate:"required,min=0"`
		Feedback string   `json:"feedback"`
	}

	NewWorkshop struct {
		Title              string     `json:"title" validate:"required"`
		Description        string     `json:"description" validate:"required"`
		WorkshopType       string     `json:"workshop_type" validate:"required,oneof=essay creative technical research peer_review collaborative"`
		CourseID           string     `json:"course_id"`
		Instructions       string     `json:"instructions" validate:"required"`
		DocumentTemplate   string     `json:"document_template"`
		DueDate            *time.Time `json:"due_date"`
		WordCountMin       int        `json:"word_count_min" validate:"min=0"`
		WordCountMax       int        `json:"word_count_max" validate:"min=0"`
		RequiresPeerReview bool       `json:"requires_peer_review"`
	}

	NewWritingSubmission struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content" validate:"required"`
	}

	UpdateWritingSubmission struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Status  string `json:"status" validate:"omitempty,oneof=draft submitted in_review reviewed graded"`
	}

	GradeWriting struct {
		Grade    *float64 `json:"grade" validate:"required,min=0"`
		Feedback string   `json:"feedback"`
	}

	NewPeerReview struct {
		Content string `json:"content" validate:"required"`
		Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	}

	NewLanguageTool struct {
		Name               string `json:"name" validate:"required"`
		Description        string `json:"description" validate:"required"`
		ToolType           string `json:"tool_type" validate:"required,oneof=translation dictionary grammar vocabulary pronunciation conjugation"`
		URL                string `json:"url" validate:"required,url"`
		APIKeyRequired     bool   `json:"api_key_required"`
		EmbedCode          string `json:"embed_code"`
		SupportedLanguages string `json:"supported_languages" validate:"required"`
		IconClass          string `json:"icon_class"`
		IsPremium          bool   `json:"is_premium"`
	}

	NewMathTool struct {
		Name            string `json:"name" validate:"required"`
		Description     string `json:"description" validate:"required"`
		ToolType        string `json:"tool_type" validate:"required,oneof=calculator grapher solver geometry statistics probability"`
		URL             string `json:"url" validate:"required,url"`
		APIKeyRequired  bool   `json:"api_key_required"`
		EmbedCode       string `json:"embed_code"`
		ComplexityLevel string `json:"complexity_level"`
		IconClass       string `json:"icon_class"`
		IsPremium       bool   `json:"is_premium"`
	}

	NewScheduleEvent struct {
		Title             string     `json:"title" validate:"required"`
		Description       string     `json:"description"`
		EventType         string     `json:"event_type" validate:"required,oneof=class exam deadline meeting event holiday"`
		CourseID          string     `json:"course_id"`
		StartTime         *time.Time `json:"start_time" validate:"required"`
		EndTime           *time.Time `json:"end_time" validate:"required"`
		Location          string     `json:"location"`
		IsRecurring       bool       `json:"is_recurring"`
		RecurrencePattern string     `json:"recurrence_pattern"`
	}

	UpdateScheduleEvent struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
		Location    string     `json:"location"`
	}
)

func (nl *NewVirtualLab) Validate() error {
	nl.Name = core.CleanString(nl.Name)
	return core.Validate.Struct(nl)
}

func (es *EndSession) Validate() error {
	if es.Status == "" {
		es.Status = SessionCompleted
	}
	return core.Validate.Struct(es)
}

func (nr *NewResult) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	return core.Validate.Struct(nr)
}

func (gr *GradeResult) Validate() error {
	return core.Validate.Struct(gr)
}

func (nw *NewWorkshop) Validate() error {
	nw.Title = core.CleanString(nw.Title)
	return core.Validate.Struct(nw)
}

// CountWords approximates the word count of a writing submission body.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

func (ns *NewWritingSubmission) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	return core.Validate.Struct(ns)
}

func (us *UpdateWritingSubmission) Validate() error {
	us.Title = core.CleanString(us.Title)
	return core.Validate.Struct(us)
}

func (gw *GradeWriting) Validate() error {
	return core.Validate.Struct(gw)
}

func (nt *NewLanguageTool) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}

func (nt *NewMathTool) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	if nt.ComplexityLevel == "" {
		nt.ComplexityLevel = "All levels"
	}
	return core.Validate.Struct(nt)
}

func (ne *NewScheduleEvent) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	if err := core.Validate.Struct(ne); err != nil {
		return err
	}
	if !ne.EndTime.After(*ne.StartTime) {
		return core.NewValidationError(nil,
			core.FieldError{Field: "end_time", Error: "end time must be after the start time"})
	}
	return nil
}

func (ue *UpdateScheduleEvent) Validate() error {
	ue.Title = core.CleanString(ue.Title)
	return core.Validate.Struct(ue)
}

func (nr *NewPeerReview) Validate() error {
	return core.Validate.Struct(nr)
}
