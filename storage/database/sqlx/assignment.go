package sqlxrepos

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esakris/techiekraft/core/assignment"
)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == "23505"
}

type submissionRow struct {
	ID            string       `db:"id"`
	AssignmentID  string       `db:"assignment_id"`
	StudentID     string       `db:"student_id"`
	SubmittedAt   time.Time    `db:"submitted_at"`
	TextResponse  string       `db:"text_response"`
	Score         null.Float64 `db:"score"`
	Feedback      string       `db:"feedback"`
	GradedByID    null.String  `db:"graded_by"`
	GradedAt      null.Time    `db:"graded_at"`
	Status        string       `db:"status"`
	AttemptNumber int          `db:"attempt_number"`
}

func rowFromSubmission(sub assignment.Submission) submissionRow {
	return submissionRow{
		ID:            sub.ID,
		AssignmentID:  sub.AssignmentID,
		StudentID:     sub.StudentID,
		SubmittedAt:   sub.SubmittedAt,
		TextResponse:  sub.TextResponse,
		Score:         null.Float64FromPtr(sub.Score),
		Feedback:      sub.Feedback,
		GradedByID:    null.NewString(sub.GradedByID, sub.GradedByID != ""),
		GradedAt:      null.TimeFromPtr(sub.GradedAt),
		Status:        sub.Status,
		AttemptNumber: sub.AttemptNumber,
	}
}

func (row submissionRow) toSubmission() assignment.Submission {
	return assignment.Submission{
		ID:            row.ID,
		AssignmentID:  row.AssignmentID,
		StudentID:     row.StudentID,
		SubmittedAt:   row.SubmittedAt,
		TextResponse:  row.TextResponse,
		Score:         row.Score.Ptr(),
		Feedback:      row.Feedback,
		GradedByID:    row.GradedByID.String,
		GradedAt:      row.GradedAt.Ptr(),
		Status:        row.Status,
		AttemptNumber: row.AttemptNumber,
	}
}

type studentAnswerRow struct {
	ID               string       `db:"id"`
	SubmissionID     string       `db:"submission_id"`
	QuestionID       string       `db:"question_id"`
	SelectedAnswerID null.String  `db:"selected_answer"`
	TextAnswer       string       `db:"text_answer"`
	IsCorrect        null.Bool    `db:"is_correct"`
	PointsEarned     null.Float64 `db:"points_earned"`
}

func rowFromStudentAnswer(sa assignment.StudentAnswer) studentAnswerRow {
	return studentAnswerRow{
		ID:               sa.ID,
		SubmissionID:     sa.SubmissionID,
		QuestionID:       sa.QuestionID,
		SelectedAnswerID: null.NewString(sa.SelectedAnswerID, sa.SelectedAnswerID != ""),
		TextAnswer:       sa.TextAnswer,
		IsCorrect:        null.BoolFromPtr(sa.IsCorrect),
		PointsEarned:     null.Float64FromPtr(sa.PointsEarned),
	}
}

func (row studentAnswerRow) toStudentAnswer() assignment.StudentAnswer {
	return assignment.StudentAnswer{
		ID:               row.ID,
		SubmissionID:     row.SubmissionID,
		QuestionID:       row.QuestionID,
		SelectedAnswerID: row.SelectedAnswerID.String,
		TextAnswer:       row.TextAnswer,
		IsCorrect:        row.IsCorrect.Ptr(),
		PointsEarned:     row.PointsEarned.Ptr(),
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

// assignments

func (repo assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	q := `INSERT INTO assignment (id, course_id, title, description, instructions, due_date, total_points,
estimated_time_minutes, allowed_attempts, created_by, status, created_at, updated_at)
VALUES (:id, :course_id, :title, :description, :instructions, :due_date, :total_points,
:estimated_time_minutes, :allowed_attempts, :created_by, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, a); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) QueryAssignments(filter assignment.AssignmentFilter) ([]assignment.Assignment, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CourseID != "" {
		conds = append(conds, "a.course_id = "+arg(filter.CourseID))
	}
	if filter.Status != "" {
		conds = append(conds, "a.status = "+arg(filter.Status))
	}
	if filter.TeacherID != "" {
		conds = append(conds, "c.teacher_id = "+arg(filter.TeacherID))
	}
	if filter.EnrolledStudentID != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM enrollment e
WHERE e.course_id = a.course_id AND e.student_id = `+arg(filter.EnrolledStudentID)+" AND e.is_active)")
	}

	q := `SELECT a.* FROM assignment a JOIN course c ON c.id = a.course_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY a.due_date"

	assignments := make([]assignment.Assignment, 0)
	if err := repo.db.Select(&assignments, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return assignments, nil
}

func (repo assignmentRepository) GetAssignmentByID(id string) (assignment.Assignment, error) {
	var a assignment.Assignment
	if err := repo.db.Get(&a, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrAssignmentNotFound, "getting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	q := `UPDATE assignment SET title = :title, description = :description, instructions = :instructions,
due_date = :due_date, total_points = :total_points, estimated_time_minutes = :estimated_time_minutes,
allowed_attempts = :allowed_attempts, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, a); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return a, nil
}

func (repo assignmentRepository) DeleteAssignment(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM assignment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}

func (repo assignmentRepository) CreateAssignmentFile(f assignment.AssignmentFile) (assignment.AssignmentFile, error) {
	f.ID = uuid.New().String()
	q := `INSERT INTO assignment_file (id, assignment_id, title, file, created_at)
VALUES (:id, :assignment_id, :title, :file, :created_at)`
	if _, err := repo.db.NamedExec(q, f); err != nil {
		return assignment.AssignmentFile{}, errors.Wrap(err, "inserting assignment file")
	}
	return f, nil
}

func (repo assignmentRepository) QueryAssignmentFiles(assignmentID string) ([]assignment.AssignmentFile, error) {
	files := make([]assignment.AssignmentFile, 0)
	q := `SELECT * FROM assignment_file WHERE assignment_id = $1 ORDER BY created_at`
	if err := repo.db.Select(&files, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying assignment files")
	}
	return files, nil
}

// submissions

func (repo assignmentRepository) CreateSubmission(s assignment.Submission) (assignment.Submission, error) {
	s.ID = uuid.New().String()
	row := rowFromSubmission(s)
	q := `INSERT INTO submission (id, assignment_id, student_id, submitted_at, text_response, score,
feedback, graded_by, graded_at, status, attempt_number)
VALUES (:id, :assignment_id, :student_id, :submitted_at, :text_response, :score,
:feedback, :graded_by, :graded_at, :status, :attempt_number)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		if isUniqueViolation(err) {
			return assignment.Submission{}, assignment.ErrDuplicateAttempt
		}
		return assignment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return row.toSubmission(), nil
}

func (repo assignmentRepository) QuerySubmissions(filter assignment.SubmissionFilter) ([]assignment.Submission, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssignmentID != "" {
		conds = append(conds, "s.assignment_id = "+arg(filter.AssignmentID))
	}
	if filter.StudentID != "" {
		conds = append(conds, "s.student_id = "+arg(filter.StudentID))
	}
	if len(filter.StudentIDs) > 0 {
		conds = append(conds, "s.student_id = ANY("+arg(pq.Array(filter.StudentIDs))+")")
	}
	if filter.TeacherID != "" {
		conds = append(conds, "c.teacher_id = "+arg(filter.TeacherID))
	}

	q := `SELECT s.* FROM submission s
JOIN assignment a ON a.id = s.assignment_id
JOIN course c ON c.id = a.course_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY s.submitted_at DESC"

	var rows []submissionRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]assignment.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubmission())
	}
	return subs, nil
}

func (repo assignmentRepository) GetSubmissionByID(id string) (assignment.Submission, error) {
	var row submissionRow
	if err := repo.db.Get(&row, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		return assignment.Submission{}, trapNoRowsErr(err, assignment.ErrSubmissionNotFound, "getting submission")
	}
	return row.toSubmission(), nil
}

func (repo assignmentRepository) UpdateSubmission(s assignment.Submission) (assignment.Submission, error) {
	row := rowFromSubmission(s)
	q := `UPDATE submission SET text_response = :text_response, score = :score, feedback = :feedback,
graded_by = :graded_by, graded_at = :graded_at, status = :status WHERE id = :id`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	return row.toSubmission(), nil
}

func (repo assignmentRepository) CreateSubmissionFile(f assignment.SubmissionFile) (assignment.SubmissionFile, error) {
	f.ID = uuid.New().String()
	q := `INSERT INTO submission_file (id, submission_id, title, file, created_at)
VALUES (:id, :submission_id, :title, :file, :created_at)`
	if _, err := repo.db.NamedExec(q, f); err != nil {
		return assignment.SubmissionFile{}, errors.Wrap(err, "inserting submission file")
	}
	return f, nil
}

func (repo assignmentRepository) QuerySubmissionFiles(submissionID string) ([]assignment.SubmissionFile, error) {
	files := make([]assignment.SubmissionFile, 0)
	q := `SELECT * FROM submission_file WHERE submission_id = $1 ORDER BY created_at`
	if err := repo.db.Select(&files, q, submissionID); err != nil {
		return nil, errors.Wrap(err, "querying submission files")
	}
	return files, nil
}

// quiz tree

func (repo assignmentRepository) CreateQuiz(qz assignment.Quiz) (assignment.Quiz, error) {
	qz.ID = uuid.New().String()
	q := `INSERT INTO quiz (id, assignment_id, time_limit_minutes, randomize_questions, show_result_immediately, passing_score)
VALUES (:id, :assignment_id, :time_limit_minutes, :randomize_questions, :show_result_immediately, :passing_score)`
	if _, err := repo.db.NamedExec(q, qz); err != nil {
		return assignment.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return qz, nil
}

func (repo assignmentRepository) GetQuizByID(id string) (assignment.Quiz, error) {
	var qz assignment.Quiz
	if err := repo.db.Get(&qz, `SELECT * FROM quiz WHERE id = $1`, id); err != nil {
		return assignment.Quiz{}, trapNoRowsErr(err, assignment.ErrQuizNotFound, "getting quiz")
	}
	return qz, nil
}

func (repo assignmentRepository) GetQuizByAssignment(assignmentID string) (assignment.Quiz, error) {
	var qz assignment.Quiz
	if err := repo.db.Get(&qz, `SELECT * FROM quiz WHERE assignment_id = $1`, assignmentID); err != nil {
		return assignment.Quiz{}, trapNoRowsErr(err, assignment.ErrQuizNotFound, "getting quiz")
	}
	return qz, nil
}

func (repo assignmentRepository) UpdateQuiz(qz assignment.Quiz) (assignment.Quiz, error) {
	q := `UPDATE quiz SET time_limit_minutes = :time_limit_minutes, randomize_questions = :randomize_questions,
show_result_immediately = :show_result_immediately, passing_score = :passing_score WHERE id = :id`
	if _, err := repo.db.NamedExec(q, qz); err != nil {
		return assignment.Quiz{}, errors.Wrap(err, "updating quiz")
	}
	return qz, nil
}

func (repo assignmentRepository) CreateQuestion(qn assignment.Question) (assignment.Question, error) {
	qn.ID = uuid.New().String()
	q := `INSERT INTO question (id, quiz_id, text, question_type, points, "order")
VALUES (:id, :quiz_id, :text, :question_type, :points, :order)`
	if _, err := repo.db.NamedExec(q, qn); err != nil {
		return assignment.Question{}, errors.Wrap(err, "inserting question")
	}
	return qn, nil
}

func (repo assignmentRepository) QueryQuestions(quizID string) ([]assignment.Question, error) {
	questions := make([]assignment.Question, 0)
	q := `SELECT * FROM question WHERE quiz_id = $1 ORDER BY "order"`
	if err := repo.db.Select(&questions, q, quizID); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	return questions, nil
}

func (repo assignmentRepository) GetQuestionByID(id string) (assignment.Question, error) {
	var qn assignment.Question
	if err := repo.db.Get(&qn, `SELECT * FROM question WHERE id = $1`, id); err != nil {
		return assignment.Question{}, trapNoRowsErr(err, assignment.ErrQuestionNotFound, "getting question")
	}
	return qn, nil
}

func (repo assignmentRepository) CreateAnswer(a assignment.Answer) (assignment.Answer, error) {
	a.ID = uuid.New().String()
	q := `INSERT INTO answer (id, question_id, text, is_correct, "order")
VALUES (:id, :question_id, :text, :is_correct, :order)`
	if _, err := repo.db.NamedExec(q, a); err != nil {
		return assignment.Answer{}, errors.Wrap(err, "inserting answer")
	}
	return a, nil
}

func (repo assignmentRepository) QueryAnswers(questionID string) ([]assignment.Answer, error) {
	answers := make([]assignment.Answer, 0)
	q := `SELECT * FROM answer WHERE question_id = $1 ORDER BY "order"`
	if err := repo.db.Select(&answers, q, questionID); err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	return answers, nil
}

func (repo assignmentRepository) GetAnswerByID(id string) (assignment.Answer, error) {
	var a assignment.Answer
	if err := repo.db.Get(&a, `SELECT * FROM answer WHERE id = $1`, id); err != nil {
		return assignment.Answer{}, trapNoRowsErr(err, assignment.ErrAnswerNotFound, "getting answer")
	}
	return a, nil
}

func (repo assignmentRepository) CreateStudentAnswer(sa assignment.StudentAnswer) (assignment.StudentAnswer, error) {
	sa.ID = uuid.New().String()
	row := rowFromStudentAnswer(sa)
	q := `INSERT INTO student_answer (id, submission_id, question_id, selected_answer, text_answer, is_correct, points_earned)
VALUES (:id, :submission_id, :question_id, :selected_answer, :text_answer, :is_correct, :points_earned)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return assignment.StudentAnswer{}, errors.Wrap(err, "inserting student answer")
	}
	return row.toStudentAnswer(), nil
}

func (repo assignmentRepository) QueryStudentAnswers(submissionID string) ([]assignment.StudentAnswer, error) {
	var rows []studentAnswerRow
	q := `SELECT * FROM student_answer WHERE submission_id = $1`
	if err := repo.db.Select(&rows, q, submissionID); err != nil {
		return nil, errors.Wrap(err, "querying student answers")
	}
	answers := make([]assignment.StudentAnswer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, row.toStudentAnswer())
	}
	return answers, nil
}

func (repo assignmentRepository) GetStudentAnswerByID(id string) (assignment.StudentAnswer, error) {
	var row studentAnswerRow
	if err := repo.db.Get(&row, `SELECT * FROM student_answer WHERE id = $1`, id); err != nil {
		return assignment.StudentAnswer{}, trapNoRowsErr(err, assignment.ErrAnswerNotFound, "getting student answer")
	}
	return row.toStudentAnswer(), nil
}

func (repo assignmentRepository) UpdateStudentAnswer(sa assignment.StudentAnswer) (assignment.StudentAnswer, error) {
	row := rowFromStudentAnswer(sa)
	q := `UPDATE student_answer SET is_correct = :is_correct, points_earned = :points_earned WHERE id = :id`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return assignment.StudentAnswer{}, errors.Wrap(err, "updating student answer")
	}
	return row.toStudentAnswer(), nil
}
