package course

import (
	"time"

	"github.com/esakris/techiekraft/core"
)

type (
	NewSubject struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Category    string `json:"category" validate:"required"`
		IconClass   string `json:"icon_class"`
	}

	NewCourse struct {
		Name        string     `json:"name" validate:"required"`
		Code        string     `json:"code" validate:"required,alphanum_"`
		Description string     `json:"description" validate:"required"`
		SubjectID   string     `json:"subject_id" validate:"required"`
		TeacherID   string     `json:"teacher_id" validate:"required"`
		Image       string     `json:"image"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Level       string     `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
		CreditHours int        `json:"credit_hours" validate:"omitempty,min=0"`
	}

	UpdateCourse struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		SubjectID   string     `json:"subject_id"`
		Image       string     `json:"image"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		IsActive    *bool      `json:"is_active"`
		Level       string     `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
		CreditHours *int       `json:"credit_hours" validate:"omitempty,min=0"`
	}

	NewModule struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Order       int    `json:"order" validate:"min=0"`
	}

	NewLesson struct {
		Title           string `json:"title" validate:"required"`
		Content         string `json:"content" validate:"required"`
		Order           int    `json:"order" validate:"min=0"`
		VideoURL        string `json:"video_url" validate:"omitempty,url"`
		DurationMinutes int    `json:"duration_minutes" validate:"min=0"`
	}

	NewLearningTool struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Category    string `json:"category" validate:"required"`
		URL         string `json:"url" validate:"required,url"`
		IconClass   string `json:"icon_class" validate:"required"`
	}

	NewCourseResource struct {
		Title        string `json:"title" validate:"required"`
		Description  string `json:"description"`
		File         string `json:"file"`
		URL          string `json:"url" validate:"omitempty,url"`
		ResourceType string `json:"resource_type"`
		IsRequired   bool   `json:"is_required"`
	}

	NewEnrollment struct {
		StudentID string `json:"student_id"`
		CourseID  string `json:"course_id" validate:"required"`
	}

	// EnrollmentPatch is a partial update. Fields lists the JSON keys present
	// in the payload; per-role allow-lists reject the whole patch on the
	// first disallowed key.
	EnrollmentPatch struct {
		Progress       *int       `json:"progress" validate:"omitempty,min=0,max=100"`
		Grade          *string    `json:"grade"`
		IsActive       *bool      `json:"is_active"`
		CompletionDate *time.Time `json:"completion_date"`

		Fields []string `json:"-"`
	}
)

func (ns *NewSubject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Category = core.CleanString(ns.Category)
	return core.Validate.Struct(ns)
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code, true)
	if nc.Level == "" {
		nc.Level = LevelBeginner
	}
	if nc.CreditHours == 0 {
		nc.CreditHours = 3
	}
	return core.Validate.Struct(nc)
}

func (uc *UpdateCourse) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

func (nm *NewModule) Validate() error {
	nm.Title = core.CleanString(nm.Title)
	return core.Validate.Struct(nm)
}

func (nl *NewLesson) Validate() error {
	nl.Title = core.CleanString(nl.Title)
	return core.Validate.Struct(nl)
}

func (nt *NewLearningTool) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Category = core.CleanString(nt.Category)
	return core.Validate.Struct(nt)
}

func (nr *NewCourseResource) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	if nr.ResourceType == "" {
		nr.ResourceType = "Document"
	}
	return core.Validate.Struct(nr)
}

func (ne *NewEnrollment) Validate() error {
	return core.Validate.Struct(ne)
}

func (ep *EnrollmentPatch) Validate() error {
	return core.Validate.Struct(ep)
}
