package sqlxrepos

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esakris/techiekraft/core/lab"
)

type virtualLabRow struct {
	ID               string      `db:"id"`
	Name             string      `db:"name"`
	Description      string      `db:"description"`
	LabType          string      `db:"lab_type"`
	CourseID         null.String `db:"course_id"`
	SubjectID        string      `db:"subject_id"`
	URL              string      `db:"url"`
	EmbedCode        string      `db:"embed_code"`
	Thumbnail        string      `db:"thumbnail"`
	Instructions     string      `db:"instructions"`
	RequiresApproval bool        `db:"requires_approval"`
	IsPublic         bool        `db:"is_public"`
	CreatedByID      string      `db:"created_by"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func rowFromLab(l lab.VirtualLab) virtualLabRow {
	return virtualLabRow{
		ID:               l.ID,
		Name:             l.Name,
		Description:      l.Description,
		LabType:          l.LabType,
		CourseID:         null.NewString(l.CourseID, l.CourseID != ""),
		SubjectID:        l.SubjectID,
		URL:              l.URL,
		EmbedCode:        l.EmbedCode,
		Thumbnail:        l.Thumbnail,
		Instructions:     l.Instructions,
		RequiresApproval: l.RequiresApproval,
		IsPublic:         l.IsPublic,
		CreatedByID:      l.CreatedByID,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func (row virtualLabRow) toLab() lab.VirtualLab {
	return lab.VirtualLab{
		ID:               row.ID,
		Name:             row.Name,
		Description:      row.Description,
		LabType:          row.LabType,
		CourseID:         row.CourseID.String,
		SubjectID:        row.SubjectID,
		URL:              row.URL,
		EmbedCode:        row.EmbedCode,
		Thumbnail:        row.Thumbnail,
		Instructions:     row.Instructions,
		RequiresApproval: row.RequiresApproval,
		IsPublic:         row.IsPublic,
		CreatedByID:      row.CreatedByID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

type workshopRow struct {
	ID                 string      `db:"id"`
	Title              string      `db:"title"`
	Description        string      `db:"description"`
	WorkshopType       string      `db:"workshop_type"`
	CourseID           null.String `db:"course_id"`
	Instructions       string      `db:"instructions"`
	DocumentTemplate   string      `db:"document_template"`
	DueDate            null.Time   `db:"due_date"`
	WordCountMin       int         `db:"word_count_min"`
	WordCountMax       int         `db:"word_count_max"`
	RequiresPeerReview bool        `db:"requires_peer_review"`
	CreatedByID        string      `db:"created_by"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func rowFromWorkshop(w lab.Workshop) workshopRow {
	return workshopRow{
		ID:                 w.ID,
		Title:              w.Title,
		Description:        w.Description,
		WorkshopType:       w.WorkshopType,
		CourseID:           null.NewString(w.CourseID, w.CourseID != ""),
		Instructions:       w.Instructions,
		DocumentTemplate:   w.DocumentTemplate,
		DueDate:            null.TimeFromPtr(w.DueDate),
		WordCountMin:       w.WordCountMin,
		WordCountMax:       w.WordCountMax,
		RequiresPeerReview: w.RequiresPeerReview,
		CreatedByID:        w.CreatedByID,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

func (row workshopRow) toWorkshop() lab.Workshop {
	return lab.Workshop{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description,
		WorkshopType:       row.WorkshopType,
		CourseID:           row.CourseID.String,
		Instructions:       row.Instructions,
		DocumentTemplate:   row.DocumentTemplate,
		DueDate:            row.DueDate.Ptr(),
		WordCountMin:       row.WordCountMin,
		WordCountMax:       row.WordCountMax,
		RequiresPeerReview: row.RequiresPeerReview,
		CreatedByID:        row.CreatedByID,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

type labRepository struct {
	db *sqlx.DB
}

var _ lab.Repository = (*labRepository)(nil) // interface compliance check

func NewLabRepository(db *sqlx.DB) *labRepository {
	return &labRepository{db: db}
}

// virtual labs

func (repo labRepository) CreateLab(l lab.VirtualLab) (lab.VirtualLab, error) {
	l.ID = uuid.New().String()
	row := rowFromLab(l)
	q := `INSERT INTO virtual_lab (id, name, description, lab_type, course_id, subject_id, url, embed_code,
thumbnail, instructions, requires_approval, is_public, created_by, created_at, updated_at)
VALUES (:id, :name, :description, :lab_type, :course_id, :subject_id, :url, :embed_code,
:thumbnail, :instructions, :requires_approval, :is_public, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return lab.VirtualLab{}, errors.Wrap(err, "inserting virtual lab")
	}
	return row.toLab(), nil
}

func (repo labRepository) QueryLabs(filter lab.LabFilter) ([]lab.VirtualLab, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SubjectID != "" {
		conds = append(conds, "subject_id = "+arg(filter.SubjectID))
	}
	if filter.CourseID != "" {
		conds = append(conds, "course_id = "+arg(filter.CourseID))
	}
	if filter.LabType != "" {
		conds = append(conds, "lab_type = "+arg(filter.LabType))
	}

	q := `SELECT * FROM virtual_lab`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name"

	var rows []virtualLabRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying virtual labs")
	}
	labs := make([]lab.VirtualLab, 0, len(rows))
	for _, row := range rows {
		labs = append(labs, row.toLab())
	}
	return labs, nil
}

func (repo labRepository) GetLabByID(id string) (lab.VirtualLab, error) {
	var row virtualLabRow
	if err := repo.db.Get(&row, `SELECT * FROM virtual_lab WHERE id = $1`, id); err != nil {
		return lab.VirtualLab{}, trapNoRowsErr(err, lab.ErrLabNotFound, "getting virtual lab")
	}
	return row.toLab(), nil
}

func (repo labRepository) UpdateLab(l lab.VirtualLab) (lab.VirtualLab, error) {
	row := rowFromLab(l)
	q := `UPDATE virtual_lab SET name = :name, description = :description, lab_type = :lab_type,
course_id = :course_id, subject_id = :subject_id, url = :url, embed_code = :embed_code,
thumbnail = :thumbnail, instructions = :instructions, requires_approval = :requires_approval,
is_public = :is_public, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return lab.VirtualLab{}, errors.Wrap(err, "updating virtual lab")
	}
	return row.toLab(), nil
}

func (repo labRepository) DeleteLab(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM virtual_lab WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting virtual lab")
	}
	return nil
}

// sessions

func (repo labRepository) CreateSession(s lab.Session) (lab.Session, error) {
	s.ID = uuid.New().String()
	q := `INSERT INTO lab_session (id, virtual_lab_id, student_id, start_time, end_time, duration_minutes, status, notes)
VALUES (:id, :virtual_lab_id, :student_id, :start_time, :end_time, :duration_minutes, :status, :notes)`
	if _, err := repo.db.NamedExec(q, s); err != nil {
		return lab.Session{}, errors.Wrap(err, "inserting lab session")
	}
	return s, nil
}

func (repo labRepository) QuerySessionsByStudent(studentID string) ([]lab.Session, error) {
	sessions := make([]lab.Session, 0)
	q := `SELECT * FROM lab_session WHERE student_id = $1 ORDER BY start_time DESC`
	if err := repo.db.Select(&sessions, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying lab sessions")
	}
	return sessions, nil
}

func (repo labRepository) QuerySessionsByLab(labID string) ([]lab.Session, error) {
	sessions := make([]lab.Session, 0)
	q := `SELECT * FROM lab_session WHERE virtual_lab_id = $1 ORDER BY start_time DESC`
	if err := repo.db.Select(&sessions, q, labID); err != nil {
		return nil, errors.Wrap(err, "querying lab sessions")
	}
	return sessions, nil
}

func (repo labRepository) GetSessionByID(id string) (lab.Session, error) {
	var s lab.Session
	if err := repo.db.Get(&s, `SELECT * FROM lab_session WHERE id = $1`, id); err != nil {
		return lab.Session{}, trapNoRowsErr(err, lab.ErrSessionNotFound, "getting lab session")
	}
	return s, nil
}

func (repo labRepository) UpdateSession(s lab.Session) (lab.Session, error) {
	q := `UPDATE lab_session SET end_time = :end_time, duration_minutes = :duration_minutes,
status = :status, notes = :notes WHERE id = :id`
	if _, err := repo.db.NamedExec(q, s); err != nil {
		return lab.Session{}, errors.Wrap(err, "updating lab session")
	}
	return s, nil
}

// results

func (repo labRepository) CreateResult(r lab.Result) (lab.Result, error) {
	r.ID = uuid.New().String()
	q := `INSERT INTO lab_result (id, session_id, title, content, file, score, feedback, created_at)
VALUES (:id, :session_id, :title, :content, :file, :score, :feedback, :created_at)`
	if _, err := repo.db.NamedExec(q, r); err != nil {
		return lab.Result{}, errors.Wrap(err, "inserting lab result")
	}
	return r, nil
}

func (repo labRepository) QueryResultsBySession(sessionID string) ([]lab.Result, error) {
	results := make([]lab.Result, 0)
	q := `SELECT * FROM lab_result WHERE session_id = $1 ORDER BY created_at`
	if err := repo.db.Select(&results, q, sessionID); err != nil {
		return nil, errors.Wrap(err, "querying lab results")
	}
	return results, nil
}

func (repo labRepository) GetResultByID(id string) (lab.Result, error) {
	var r lab.Result
	if err := repo.db.Get(&r, `SELECT * FROM lab_result WHERE id = $1`, id); err != nil {
		return lab.Result{}, trapNoRowsErr(err, lab.ErrResultNotFound, "getting lab result")
	}
	return r, nil
}

func (repo labRepository) UpdateResult(r lab.Result) (lab.Result, error) {
	q := `UPDATE lab_result SET title = :title, content = :content, file = :file,
score = :score, feedback = :feedback WHERE id = :id`
	if _, err := repo.db.NamedExec(q, r); err != nil {
		return lab.Result{}, errors.Wrap(err, "updating lab result")
	}
	return r, nil
}

// writing workshops

func (repo labRepository) CreateWorkshop(w lab.Workshop) (lab.Workshop, error) {
	w.ID = uuid.New().String()
	row := rowFromWorkshop(w)
	q := `INSERT INTO writing_workshop (id, title, description, workshop_type, course_id, instructions,
document_template, due_date, word_count_min, word_count_max, requires_peer_review, created_by,
created_at, updated_at)
VALUES (:id, :title, :description, :workshop_type, :course_id, :instructions,
:document_template, :due_date, :word_count_min, :word_count_max, :requires_peer_review, :created_by,
:created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return lab.Workshop{}, errors.Wrap(err, "inserting writing workshop")
	}
	return row.toWorkshop(), nil
}

func (repo labRepository) QueryWorkshops(courseID string) ([]lab.Workshop, error) {
	q := `SELECT * FROM writing_workshop`
	var args []interface{}
	if courseID != "" {
		q += " WHERE course_id = $1"
		args = append(args, courseID)
	}
	q += " ORDER BY created_at DESC"

	var rows []workshopRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying writing workshops")
	}
	workshops := make([]lab.Workshop, 0, len(rows))
	for _, row := range rows {
		workshops = append(workshops, row.toWorkshop())
	}
	return workshops, nil
}

func (repo labRepository) GetWorkshopByID(id string) (lab.Workshop, error) {
	var row workshopRow
	if err := repo.db.Get(&row, `SELECT * FROM writing_workshop WHERE id = $1`, id); err != nil {
		return lab.Workshop{}, trapNoRowsErr(err, lab.ErrWorkshopNotFound, "getting writing workshop")
	}
	return row.toWorkshop(), nil
}

func (repo labRepository) UpdateWorkshop(w lab.Workshop) (lab.Workshop, error) {
	row := rowFromWorkshop(w)
	q := `UPDATE writing_workshop SET title = :title, description = :description, workshop_type = :workshop_type,
course_id = :course_id, instructions = :instructions, document_template = :document_template,
due_date = :due_date, word_count_min = :word_count_min, word_count_max = :word_count_max,
requires_peer_review = :requires_peer_review, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return lab.Workshop{}, errors.Wrap(err, "updating writing workshop")
	}
	return row.toWorkshop(), nil
}

func (repo labRepository) DeleteWorkshop(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM writing_workshop WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting writing workshop")
	}
	return nil
}

// writing submissions

func (repo labRepository) CreateWritingSubmission(ws lab.WritingSubmission) (lab.WritingSubmission, error) {
	ws.ID = uuid.New().String()
	q := `INSERT INTO writing_submission (id, workshop_id, student_id, title, content, word_count, status,
grade, feedback, created_at, updated_at)
VALUES (:id, :workshop_id, :student_id, :title, :content, :word_count, :status,
:grade, :feedback, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, ws); err != nil {
		return lab.WritingSubmission{}, errors.Wrap(err, "inserting writing submission")
	}
	return ws, nil
}

func (repo labRepository) QueryWritingSubmissions(workshopID string) ([]lab.WritingSubmission, error) {
	subs := make([]lab.WritingSubmission, 0)
	q := `SELECT * FROM writing_submission WHERE workshop_id = $1 ORDER BY created_at`
	if err := repo.db.Select(&subs, q, workshopID); err != nil {
		return nil, errors.Wrap(err, "querying writing submissions")
	}
	return subs, nil
}

func (repo labRepository) QueryWritingSubmissionsByStudent(studentID string) ([]lab.WritingSubmission, error) {
	subs := make([]lab.WritingSubmission, 0)
	q := `SELECT * FROM writing_submission WHERE student_id = $1 ORDER BY created_at DESC`
	if err := repo.db.Select(&subs, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying writing submissions")
	}
	return subs, nil
}

func (repo labRepository) GetWritingSubmissionByID(id string) (lab.WritingSubmission, error) {
	var ws lab.WritingSubmission
	if err := repo.db.Get(&ws, `SELECT * FROM writing_submission WHERE id = $1`, id); err != nil {
		return lab.WritingSubmission{}, trapNoRowsErr(err, lab.ErrSubmissionNotFound, "getting writing submission")
	}
	return ws, nil
}

func (repo labRepository) UpdateWritingSubmission(ws lab.WritingSubmission) (lab.WritingSubmission, error) {
	q := `UPDATE writing_submission SET title = :title, content = :content, word_count = :word_count,
status = :status, grade = :grade, feedback = :feedback, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, ws); err != nil {
		return lab.WritingSubmission{}, errors.Wrap(err, "updating writing submission")
	}
	return ws, nil
}

// peer reviews

func (repo labRepository) CreatePeerReview(pr lab.PeerReview) (lab.PeerReview, error) {
	pr.ID = uuid.New().String()
	q := `INSERT INTO peer_review (id, submission_id, reviewer_id, content, rating, completed_at)
VALUES (:id, :submission_id, :reviewer_id, :content, :rating, :completed_at)`
	if _, err := repo.db.NamedExec(q, pr); err != nil {
		if isUniqueViolation(err) {
			return lab.PeerReview{}, lab.ErrAlreadyReviewed
		}
		return lab.PeerReview{}, errors.Wrap(err, "inserting peer review")
	}
	return pr, nil
}

func (repo labRepository) QueryPeerReviews(submissionID string) ([]lab.PeerReview, error) {
	reviews := make([]lab.PeerReview, 0)
	q := `SELECT * FROM peer_review WHERE submission_id = $1 ORDER BY completed_at`
	if err := repo.db.Select(&reviews, q, submissionID); err != nil {
		return nil, errors.Wrap(err, "querying peer reviews")
	}
	return reviews, nil
}

// learning tools

func (repo labRepository) CreateLanguageTool(t lab.LanguageTool) (lab.LanguageTool, error) {
	t.ID = uuid.New().String()
	q := `INSERT INTO language_tool (id, name, description, tool_type, url, api_key_required, embed_code,
supported_languages, icon_class, is_premium, is_active, created_at, updated_at)
VALUES (:id, :name, :description, :tool_type, :url, :api_key_required, :embed_code,
:supported_languages, :icon_class, :is_premium, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return lab.LanguageTool{}, errors.Wrap(err, "inserting language tool")
	}
	return t, nil
}

func (repo labRepository) QueryLanguageTools() ([]lab.LanguageTool, error) {
	tools := make([]lab.LanguageTool, 0)
	q := `SELECT * FROM language_tool WHERE is_active ORDER BY name`
	if err := repo.db.Select(&tools, q); err != nil {
		return nil, errors.Wrap(err, "querying language tools")
	}
	return tools, nil
}

func (repo labRepository) GetLanguageToolByID(id string) (lab.LanguageTool, error) {
	var t lab.LanguageTool
	if err := repo.db.Get(&t, `SELECT * FROM language_tool WHERE id = $1`, id); err != nil {
		return lab.LanguageTool{}, trapNoRowsErr(err, lab.ErrToolNotFound, "getting language tool")
	}
	return t, nil
}

func (repo labRepository) UpdateLanguageTool(t lab.LanguageTool) (lab.LanguageTool, error) {
	q := `UPDATE language_tool SET name = :name, description = :description, tool_type = :tool_type,
url = :url, api_key_required = :api_key_required, embed_code = :embed_code,
supported_languages = :supported_languages, icon_class = :icon_class, is_premium = :is_premium,
is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return lab.LanguageTool{}, errors.Wrap(err, "updating language tool")
	}
	return t, nil
}

func (repo labRepository) CreateMathTool(t lab.MathTool) (lab.MathTool, error) {
	t.ID = uuid.New().String()
	q := `INSERT INTO math_tool (id, name, description, tool_type, url, api_key_required, embed_code,
complexity_level, icon_class, is_premium, is_active, created_at, updated_at)
VALUES (:id, :name, :description, :tool_type, :url, :api_key_required, :embed_code,
:complexity_level, :icon_class, :is_premium, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return lab.MathTool{}, errors.Wrap(err, "inserting math tool")
	}
	return t, nil
}

func (repo labRepository) QueryMathTools() ([]lab.MathTool, error) {
	tools := make([]lab.MathTool, 0)
	q := `SELECT * FROM math_tool WHERE is_active ORDER BY name`
	if err := repo.db.Select(&tools, q); err != nil {
		return nil, errors.Wrap(err, "querying math tools")
	}
	return tools, nil
}

func (repo labRepository) GetMathToolByID(id string) (lab.MathTool, error) {
	var t lab.MathTool
	if err := repo.db.Get(&t, `SELECT * FROM math_tool WHERE id = $1`, id); err != nil {
		return lab.MathTool{}, trapNoRowsErr(err, lab.ErrToolNotFound, "getting math tool")
	}
	return t, nil
}

func (repo labRepository) UpdateMathTool(t lab.MathTool) (lab.MathTool, error) {
	q := `UPDATE math_tool SET name = :name, description = :description, tool_type = :tool_type,
url = :url, api_key_required = :api_key_required, embed_code = :embed_code,
complexity_level = :complexity_level, icon_class = :icon_class, is_premium = :is_premium,
is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return lab.MathTool{}, errors.Wrap(err, "updating math tool")
	}
	return t, nil
}

// schedule

func (repo labRepository) CreateEvent(e lab.ScheduleEvent) (lab.ScheduleEvent, error) {
	e.ID = uuid.New().String()
	q := `INSERT INTO schedule_event (id, title, description, event_type, course_id, start_time, end_time,
duration_minutes, location, is_recurring, recurrence_pattern, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :event_type, :course_id, :start_time, :end_time,
:duration_minutes, :location, :is_recurring, :recurrence_pattern, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, e); err != nil {
		return lab.ScheduleEvent{}, errors.Wrap(err, "inserting schedule event")
	}
	return e, nil
}

func (repo labRepository) QueryEvents(filter lab.EventFilter) ([]lab.ScheduleEvent, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CourseID != "" {
		conds = append(conds, "course_id = "+arg(filter.CourseID))
	}
	if filter.EventType != "" {
		conds = append(conds, "event_type = "+arg(filter.EventType))
	}
	if filter.From != nil {
		conds = append(conds, "end_time >= "+arg(*filter.From))
	}
	if filter.Until != nil {
		conds = append(conds, "start_time <= "+arg(*filter.Until))
	}

	q := `SELECT * FROM schedule_event`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY start_time"

	events := make([]lab.ScheduleEvent, 0)
	if err := repo.db.Select(&events, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying schedule events")
	}
	return events, nil
}

func (repo labRepository) GetEventByID(id string) (lab.ScheduleEvent, error) {
	var e lab.ScheduleEvent
	if err := repo.db.Get(&e, `SELECT * FROM schedule_event WHERE id = $1`, id); err != nil {
		return lab.ScheduleEvent{}, trapNoRowsErr(err, lab.ErrEventNotFound, "getting schedule event")
	}
	return e, nil
}

func (repo labRepository) UpdateEvent(e lab.ScheduleEvent) (lab.ScheduleEvent, error) {
	q := `UPDATE schedule_event SET title = :title, description = :description, event_type = :event_type,
start_time = :start_time, end_time = :end_time, duration_minutes = :duration_minutes,
location = :location, is_recurring = :is_recurring, recurrence_pattern = :recurrence_pattern,
updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, e); err != nil {
		return lab.ScheduleEvent{}, errors.Wrap(err, "updating schedule event")
	}
	return e, nil
}

func (repo labRepository) DeleteEvent(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM schedule_event WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting schedule event")
	}
	return nil
}
