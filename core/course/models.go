package course

import "time"

// Course levels
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

type Subject struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	IconClass   string    `db:"icon_class" json:"icon_class,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Course struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Code        string     `db:"code" json:"code"` // unique
	Description string     `db:"description" json:"description"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	TeacherID   string     `db:"teacher_id" json:"teacher_id"` // exactly one owning teacher
	Image       string     `db:"image" json:"image,omitempty"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	Level       string     `db:"level" json:"level"`
	CreditHours int        `db:"credit_hours" json:"credit_hours"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type Module struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	Order       int       `db:"order" json:"order"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Lesson struct {
	ID              string    `db:"id" json:"id"`
	ModuleID        string    `db:"module_id" json:"module_id"`
	Title           string    `db:"title" json:"title"`
	Content         string    `db:"content" json:"content"`
	Order           int       `db:"order" json:"order"`
	VideoURL        string    `db:"video_url" json:"video_url,omitempty"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type LearningTool struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	URL         string    `db:"url" json:"url"`
	IconClass   string    `db:"icon_class" json:"icon_class"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseResource records metadata about an additional course resource; the
// binary itself lives in external file storage.
type CourseResource struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description,omitempty"`
	File         string    `db:"file" json:"file,omitempty"` // storage reference
	URL          string    `db:"url" json:"url,omitempty"`
	ResourceType string    `db:"resource_type" json:"resource_type"` // Document, Video, Link, ...
	IsRequired   bool      `db:"is_required" json:"is_required"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Enrollment binds a student to a course. "Deleting" an enrollment flips
// IsActive to false; re-enrolling flips it back on the same row.
type Enrollment struct {
	ID             string     `db:"id" json:"id"`
	StudentID      string     `db:"student_id" json:"student_id"`
	CourseID       string     `db:"course_id" json:"course_id"`
	EnrolledAt     time.Time  `db:"enrollment_date" json:"enrollment_date"`
	Progress       int        `db:"progress" json:"progress"` // percentage, 0..100
	LastAccessed   time.Time  `db:"last_accessed" json:"last_accessed"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CompletionDate *time.Time `db:"completion_date" json:"completion_date,omitempty"`
	Grade          string     `db:"grade" json:"grade,omitempty"`
	Version        int        `db:"version" json:"version"` // optimistic concurrency token
}

type CourseFilter struct {
	SubjectID string `json:"subject_id" query:"subject_id"`
	TeacherID string `json:"teacher_id" query:"teacher_id"`
	Search    string `json:"search" query:"search"`
	IsActive  *bool  `json:"is_active" query:"is_active"`
	Level     string `json:"level" query:"level"`
}

type EnrollmentFilter struct {
	CourseID   string
	StudentID  string
	StudentIDs []string
	TeacherID  string // owning teacher of the enrolled course
}
