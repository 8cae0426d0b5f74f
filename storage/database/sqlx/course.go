package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esakris/techiekraft/core/course"
)

type courseRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	Description string    `db:"description"`
	SubjectID   string    `db:"subject_id"`
	TeacherID   string    `db:"teacher_id"`
	Image       string    `db:"image"`
	StartDate   null.Time `db:"start_date"`
	EndDate     null.Time `db:"end_date"`
	IsActive    bool      `db:"is_active"`
	Level       string    `db:"level"`
	CreditHours int       `db:"credit_hours"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func rowFromCourse(crs course.Course) courseRow {
	return courseRow{
		ID:          crs.ID,
		Name:        crs.Name,
		Code:        crs.Code,
		Description: crs.Description,
		SubjectID:   crs.SubjectID,
		TeacherID:   crs.TeacherID,
		Image:       crs.Image,
		StartDate:   null.TimeFromPtr(crs.StartDate),
		EndDate:     null.TimeFromPtr(crs.EndDate),
		IsActive:    crs.IsActive,
		Level:       crs.Level,
		CreditHours: crs.CreditHours,
		CreatedAt:   crs.CreatedAt,
		UpdatedAt:   crs.UpdatedAt,
	}
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:          row.ID,
		Name:        row.Name,
		Code:        row.Code,
		Description: row.Description,
		SubjectID:   row.SubjectID,
		TeacherID:   row.TeacherID,
		Image:       row.Image,
		StartDate:   row.StartDate.Ptr(),
		EndDate:     row.EndDate.Ptr(),
		IsActive:    row.IsActive,
		Level:       row.Level,
		CreditHours: row.CreditHours,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// subjects

func (repo courseRepository) CreateSubject(sub course.Subject) (course.Subject, error) {
	sub.ID = uuid.New().String()
	q := `INSERT INTO subject (id, name, description, category, icon_class, created_at, updated_at)
VALUES (:id, :name, :description, :category, :icon_class, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, sub); err != nil {
		return course.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo courseRepository) QuerySubjects() ([]course.Subject, error) {
	subs := make([]course.Subject, 0)
	if err := repo.db.Select(&subs, `SELECT * FROM subject ORDER BY category, name`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subs, nil
}

func (repo courseRepository) GetSubjectByID(id string) (course.Subject, error) {
	var sub course.Subject
	if err := repo.db.Get(&sub, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		return course.Subject{}, trapNoRowsErr(err, course.ErrSubjectNotFound, "getting subject")
	}
	return sub, nil
}

func (repo courseRepository) UpdateSubject(sub course.Subject) (course.Subject, error) {
	q := `UPDATE subject SET name = :name, description = :description, category = :category,
icon_class = :icon_class, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, sub); err != nil {
		return course.Subject{}, errors.Wrap(err, "updating subject")
	}
	return sub, nil
}

func (repo courseRepository) DeleteSubject(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM subject WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}

// courses

func (repo courseRepository) CheckCodeUniqueness(code string, excludedCourses ...course.Course) error {
	q := `SELECT EXISTS (SELECT 1 FROM course WHERE code = $1`
	args := []interface{}{code}
	if len(excludedCourses) > 0 {
		q += " AND id <> $2"
		args = append(args, excludedCourses[0].ID)
	}
	q += ")"

	var exists bool
	if err := repo.db.Get(&exists, q, args...); err != nil {
		return errors.Wrap(err, "checking course uniqueness")
	}
	if exists {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := rowFromCourse(crs)
	q := `INSERT INTO course (id, name, code, description, subject_id, teacher_id, image, start_date, end_date,
is_active, level, credit_hours, created_at, updated_at)
VALUES (:id, :name, :code, :description, :subject_id, :teacher_id, :image, :start_date, :end_date,
:is_active, :level, :credit_hours, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) QueryCourses(filter course.CourseFilter) ([]course.Course, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SubjectID != "" {
		conds = append(conds, "subject_id = "+arg(filter.SubjectID))
	}
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = "+arg(filter.TeacherID))
	}
	if filter.Level != "" {
		conds = append(conds, "level = "+arg(filter.Level))
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR code ILIKE %s OR description ILIKE %s)", p, p, p))
	}

	q := `SELECT * FROM course`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []courseRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.Get(&row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrCourseNotFound, "getting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	row := rowFromCourse(crs)
	q := `UPDATE course SET name = :name, description = :description, subject_id = :subject_id, image = :image,
start_date = :start_date, end_date = :end_date, is_active = :is_active, level = :level,
credit_hours = :credit_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) DeleteCourse(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

// modules & lessons

func (repo courseRepository) CreateModule(mod course.Module) (course.Module, error) {
	mod.ID = uuid.New().String()
	q := `INSERT INTO module (id, course_id, title, description, "order", is_active, created_at, updated_at)
VALUES (:id, :course_id, :title, :description, :order, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, mod); err != nil {
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo courseRepository) QueryModulesByCourse(courseID string) ([]course.Module, error) {
	mods := make([]course.Module, 0)
	if err := repo.db.Select(&mods, `SELECT * FROM module WHERE course_id = $1 ORDER BY "order"`, courseID); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	return mods, nil
}

func (repo courseRepository) GetModuleByID(id string) (course.Module, error) {
	var mod course.Module
	if err := repo.db.Get(&mod, `SELECT * FROM module WHERE id = $1`, id); err != nil {
		return course.Module{}, trapNoRowsErr(err, course.ErrModuleNotFound, "getting module")
	}
	return mod, nil
}

func (repo courseRepository) UpdateModule(mod course.Module) (course.Module, error) {
	q := `UPDATE module SET title = :title, description = :description, "order" = :order,
is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, mod); err != nil {
		return course.Module{}, errors.Wrap(err, "updating module")
	}
	return mod, nil
}

func (repo courseRepository) DeleteModule(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM module WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return nil
}

func (repo courseRepository) CreateLesson(les course.Lesson) (course.Lesson, error) {
	les.ID = uuid.New().String()
	q := `INSERT INTO lesson (id, module_id, title, content, "order", video_url, duration_minutes, is_active, created_at, updated_at)
VALUES (:id, :module_id, :title, :content, :order, :video_url, :duration_minutes, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, les); err != nil {
		return course.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return les, nil
}

func (repo courseRepository) QueryLessonsByModule(moduleID string) ([]course.Lesson, error) {
	lessons := make([]course.Lesson, 0)
	if err := repo.db.Select(&lessons, `SELECT * FROM lesson WHERE module_id = $1 ORDER BY "order"`, moduleID); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return lessons, nil
}

func (repo courseRepository) GetLessonByID(id string) (course.Lesson, error) {
	var les course.Lesson
	if err := repo.db.Get(&les, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrLessonNotFound, "getting lesson")
	}
	return les, nil
}

func (repo courseRepository) UpdateLesson(les course.Lesson) (course.Lesson, error) {
	q := `UPDATE lesson SET title = :title, content = :content, "order" = :order, video_url = :video_url,
duration_minutes = :duration_minutes, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, les); err != nil {
		return course.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	return les, nil
}

func (repo courseRepository) DeleteLesson(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM lesson WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}

// learning tools

func (repo courseRepository) CreateLearningTool(tool course.LearningTool) (course.LearningTool, error) {
	tool.ID = uuid.New().String()
	q := `INSERT INTO learning_tool (id, name, description, category, url, icon_class, is_active, created_at, updated_at)
VALUES (:id, :name, :description, :category, :url, :icon_class, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, tool); err != nil {
		return course.LearningTool{}, errors.Wrap(err, "inserting learning tool")
	}
	return tool, nil
}

func (repo courseRepository) QueryLearningTools(category string) ([]course.LearningTool, error) {
	tools := make([]course.LearningTool, 0)
	q := `SELECT * FROM learning_tool WHERE is_active`
	args := make([]interface{}, 0, 1)
	if category != "" {
		q += " AND category = $1"
		args = append(args, category)
	}
	q += " ORDER BY name"
	if err := repo.db.Select(&tools, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying learning tools")
	}
	return tools, nil
}

func (repo courseRepository) GetLearningToolByID(id string) (course.LearningTool, error) {
	var tool course.LearningTool
	if err := repo.db.Get(&tool, `SELECT * FROM learning_tool WHERE id = $1`, id); err != nil {
		return course.LearningTool{}, trapNoRowsErr(err, course.ErrToolNotFound, "getting learning tool")
	}
	return tool, nil
}

func (repo courseRepository) UpdateLearningTool(tool course.LearningTool) (course.LearningTool, error) {
	q := `UPDATE learning_tool SET name = :name, description = :description, category = :category, url = :url,
icon_class = :icon_class, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, tool); err != nil {
		return course.LearningTool{}, errors.Wrap(err, "updating learning tool")
	}
	return tool, nil
}

// resources

func (repo courseRepository) CreateResource(res course.CourseResource) (course.CourseResource, error) {
	res.ID = uuid.New().String()
	q := `INSERT INTO course_resource (id, course_id, title, description, file, url, resource_type, is_required, created_at, updated_at)
VALUES (:id, :course_id, :title, :description, :file, :url, :resource_type, :is_required, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, res); err != nil {
		return course.CourseResource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo courseRepository) QueryResourcesByCourse(courseID string) ([]course.CourseResource, error) {
	res := make([]course.CourseResource, 0)
	if err := repo.db.Select(&res, `SELECT * FROM course_resource WHERE course_id = $1 ORDER BY created_at`, courseID); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return res, nil
}

func (repo courseRepository) GetResourceByID(id string) (course.CourseResource, error) {
	var res course.CourseResource
	if err := repo.db.Get(&res, `SELECT * FROM course_resource WHERE id = $1`, id); err != nil {
		return course.CourseResource{}, trapNoRowsErr(err, course.ErrResourceNotFound, "getting resource")
	}
	return res, nil
}

func (repo courseRepository) DeleteResource(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM course_resource WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return nil
}
