package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esakris/techiekraft/core/course"
)

type enrollmentRow struct {
	ID             string    `db:"id"`
	StudentID      string    `db:"student_id"`
	CourseID       string    `db:"course_id"`
	EnrolledAt     null.Time `db:"enrollment_date"`
	Progress       int       `db:"progress"`
	LastAccessed   null.Time `db:"last_accessed"`
	IsActive       bool      `db:"is_active"`
	CompletionDate null.Time `db:"completion_date"`
	Grade          string    `db:"grade"`
	Version        int       `db:"version"`
}

func rowFromEnrollment(enr course.Enrollment) enrollmentRow {
	return enrollmentRow{
		ID:             enr.ID,
		StudentID:      enr.StudentID,
		CourseID:       enr.CourseID,
		EnrolledAt:     null.TimeFrom(enr.EnrolledAt),
		Progress:       enr.Progress,
		LastAccessed:   null.TimeFrom(enr.LastAccessed),
		IsActive:       enr.IsActive,
		CompletionDate: null.TimeFromPtr(enr.CompletionDate),
		Grade:          enr.Grade,
		Version:        enr.Version,
	}
}

func (row enrollmentRow) toEnrollment() course.Enrollment {
	return course.Enrollment{
		ID:             row.ID,
		StudentID:      row.StudentID,
		CourseID:       row.CourseID,
		EnrolledAt:     row.EnrolledAt.Time,
		Progress:       row.Progress,
		LastAccessed:   row.LastAccessed.Time,
		IsActive:       row.IsActive,
		CompletionDate: row.CompletionDate.Ptr(),
		Grade:          row.Grade,
		Version:        row.Version,
	}
}

func enrollmentsFromRows(rows []enrollmentRow) []course.Enrollment {
	enrs := make([]course.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrs = append(enrs, row.toEnrollment())
	}
	return enrs
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ course.EnrollmentRepository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) CreateEnrollment(enr course.Enrollment) (course.Enrollment, error) {
	enr.ID = uuid.New().String()
	enr.Version = 1
	row := rowFromEnrollment(enr)
	q := `INSERT INTO enrollment (id, student_id, course_id, enrollment_date, progress, last_accessed,
is_active, completion_date, grade, version)
VALUES (:id, :student_id, :course_id, :enrollment_date, :progress, :last_accessed,
:is_active, :completion_date, :grade, :version)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo enrollmentRepository) QueryEnrollments(filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CourseID != "" {
		conds = append(conds, "e.course_id = "+arg(filter.CourseID))
	}
	if filter.StudentID != "" {
		conds = append(conds, "e.student_id = "+arg(filter.StudentID))
	}
	if len(filter.StudentIDs) > 0 {
		conds = append(conds, "e.student_id = ANY("+arg(pq.Array(filter.StudentIDs))+")")
	}
	if filter.TeacherID != "" {
		conds = append(conds, "c.teacher_id = "+arg(filter.TeacherID))
	}

	q := `SELECT e.* FROM enrollment e JOIN course c ON c.id = e.course_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY e.enrollment_date DESC"

	var rows []enrollmentRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrollmentsFromRows(rows), nil
}

func (repo enrollmentRepository) GetEnrollmentByID(id string) (course.Enrollment, error) {
	var row enrollmentRow
	if err := repo.db.Get(&row, `SELECT * FROM enrollment WHERE id = $1`, id); err != nil {
		return course.Enrollment{}, trapNoRowsErr(err, course.ErrEnrollmentNotFound, "getting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo enrollmentRepository) GetEnrollment(studentID, courseID string) (course.Enrollment, error) {
	var row enrollmentRow
	q := `SELECT * FROM enrollment WHERE student_id = $1 AND course_id = $2`
	if err := repo.db.Get(&row, q, studentID, courseID); err != nil {
		return course.Enrollment{}, trapNoRowsErr(err, course.ErrEnrollmentNotFound, "getting enrollment")
	}
	return row.toEnrollment(), nil
}

// UpdateEnrollment applies enr only when the stored version still matches
// enr.Version; a mismatch (or a vanished row) yields ErrStaleEnrollment.
func (repo enrollmentRepository) UpdateEnrollment(enr course.Enrollment) (course.Enrollment, error) {
	row := rowFromEnrollment(enr)
	q := `UPDATE enrollment SET enrollment_date = :enrollment_date, progress = :progress,
last_accessed = :last_accessed, is_active = :is_active, completion_date = :completion_date,
grade = :grade, version = version + 1 WHERE id = :id AND version = :version`
	res, err := repo.db.NamedExec(q, row)
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "updating enrollment")
	} else if n == 0 {
		return course.Enrollment{}, course.ErrStaleEnrollment
	}
	enr.Version++
	return enr, nil
}

func (repo enrollmentRepository) IsActivelyEnrolled(studentID, courseID string) (bool, error) {
	var enrolled bool
	q := `SELECT EXISTS (SELECT 1 FROM enrollment WHERE student_id = $1 AND course_id = $2 AND is_active)`
	if err := repo.db.Get(&enrolled, q, studentID, courseID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}
