package lab

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/user"
)

var (
	ErrLabNotFound        = errors.New("virtual lab not found")
	ErrSessionNotFound    = errors.New("lab session not found")
	ErrResultNotFound     = errors.New("lab result not found")
	ErrWorkshopNotFound   = errors.New("writing workshop not found")
	ErrSubmissionNotFound = errors.New("writing submission not found")
	ErrReviewNotFound     = errors.New("peer review not found")
	ErrToolNotFound       = errors.New("learning tool not found")
	ErrEventNotFound      = errors.New("schedule event not found")

	// ErrAlreadyReviewed reports a (submission, reviewer) uniqueness
	// violation.
	ErrAlreadyReviewed = errors.New("you have already reviewed this submission")
)

type (
	Repository interface {
		CreateLab(l VirtualLab) (VirtualLab, error)
		QueryLabs(filter LabFilter) ([]VirtualLab, error)
		GetLabByID(id string) (VirtualLab, error)
		UpdateLab(l VirtualLab) (VirtualLab, error)
		DeleteLab(id string) error

		CreateSession(s Session) (Session, error)
		QuerySessionsByStudent(studentID string) ([]Session, error)
		QuerySessionsByLab(labID string) ([]Session, error)
		GetSessionByID(id string) (Session, error)
		UpdateSession(s Session) (Session, error)

		CreateResult(r Result) (Result, error)
		QueryResultsBySession(sessionID string) ([]Result, error)
		GetResultByID(id string) (Result, error)
		UpdateResult(r Result) (Result, error)

		CreateWorkshop(w Workshop) (Workshop, error)
		QueryWorkshops(courseID string) ([]Workshop, error)
		GetWorkshopByID(id string) (Workshop, error)
		UpdateWorkshop(w Workshop) (Workshop, error)
		DeleteWorkshop(id string) error

		CreateWritingSubmission(ws WritingSubmission) (WritingSubmission, error)
		QueryWritingSubmissions(workshopID string) ([]WritingSubmission, error)
		QueryWritingSubmissionsByStudent(studentID string) ([]WritingSubmission, error)
		GetWritingSubmissionByID(id string) (WritingSubmission, error)
		UpdateWritingSubmission(ws WritingSubmission) (WritingSubmission, error)

		CreatePeerReview(pr PeerReview) (PeerReview, error)
		QueryPeerReviews(submissionID string) ([]PeerReview, error)

		CreateLanguageTool(t LanguageTool) (LanguageTool, error)
		QueryLanguageTools() ([]LanguageTool, error)
		GetLanguageToolByID(id string) (LanguageTool, error)
		UpdateLanguageTool(t LanguageTool) (LanguageTool, error)

		CreateMathTool(t MathTool) (MathTool, error)
		QueryMathTools() ([]MathTool, error)
		GetMathToolByID(id string) (MathTool, error)
		UpdateMathTool(t MathTool) (MathTool, error)

		CreateEvent(e ScheduleEvent) (ScheduleEvent, error)
		QueryEvents(filter EventFilter) ([]ScheduleEvent, error)
		GetEventByID(id string) (ScheduleEvent, error)
		UpdateEvent(e ScheduleEvent) (ScheduleEvent, error)
		DeleteEvent(id string) error
	}

	Service interface {
		Labs(filter LabFilter) ([]VirtualLab, error)
		GetLab(id string) (VirtualLab, error)
		CreateLab(actor user.User, nl NewVirtualLab) (VirtualLab, error)
		DeleteLab(actor user.User, id string) error

		// StartSession opens an in-progress session for the acting student.
		StartSession(actor user.User, labID string) (Session, error)
		EndSession(actor user.User, sessionID string, es EndSession) (Session, error)
		Sessions(actor user.User, labID string) ([]Session, error)
		MySessions(actor user.User) ([]Session, error)
		AddResult(actor user.User, sessionID string, nr NewResult) (Result, error)
		Results(actor user.User, sessionID string) ([]Result, error)
		GradeResult(actor user.User, resultID string, gr GradeResult) (Result, error)

		Workshops(courseID string) ([]Workshop, error)
		GetWorkshop(id string) (Workshop, error)
		CreateWorkshop(actor user.User, nw NewWorkshop) (Workshop, error)
		DeleteWorkshop(actor user.User, id string) error
		SubmitWriting(actor user.User, workshopID string, ns NewWritingSubmission) (WritingSubmission, error)
		UpdateWriting(actor user.User, id string, us UpdateWritingSubmission) (WritingSubmission, error)
		WritingSubmissions(actor user.User, workshopID string) ([]WritingSubmission, error)
		GradeWriting(actor user.User, id string, gw GradeWriting) (WritingSubmission, error)
		Review(actor user.User, submissionID string, nr NewPeerReview) (PeerReview, error)
		Reviews(actor user.User, submissionID string) ([]PeerReview, error)

		LanguageTools() ([]LanguageTool, error)
		CreateLanguageTool(actor user.User, nt NewLanguageTool) (LanguageTool, error)
		DeactivateLanguageTool(actor user.User, id string) error
		MathTools() ([]MathTool, error)
		CreateMathTool(actor user.User, nt NewMathTool) (MathTool, error)
		DeactivateMathTool(actor user.User, id string) error

		ScheduleEvents(filter EventFilter) ([]ScheduleEvent, error)
		CreateEvent(actor user.User, ne NewScheduleEvent) (ScheduleEvent, error)
		UpdateEvent(actor user.User, id string, ue UpdateScheduleEvent) (ScheduleEvent, error)
		DeleteEvent(actor user.User, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Labs(filter LabFilter) ([]VirtualLab, error) {
	return svc.repo.QueryLabs(filter)
}

func (svc *service) GetLab(id string) (VirtualLab, error) {
	return svc.repo.GetLabByID(id)
}

func (svc *service) CreateLab(actor user.User, nl NewVirtualLab) (VirtualLab, error) {
	if !actor.IsTeacher() && !actor.IsStaff() {
		return VirtualLab{}, core.NewPermissionDeniedError("only teachers can create virtual labs")
	}
	isPublic := true
	if nl.IsPublic != nil {
		isPublic = *nl.IsPublic
	}
	now := time.Now().UTC()
	return svc.repo.CreateLab(VirtualLab{
		Name:             nl.Name,
		Description:      nl.Description,
		LabType:          nl.LabType,
		CourseID:         nl.CourseID,
		SubjectID:        nl.SubjectID,
		URL:              nl.URL,
		EmbedCode:        nl.EmbedCode,
		Thumbnail:        nl.Thumbnail,
		Instructions:     nl.Instructions,
		RequiresApproval: nl.RequiresApproval,
		IsPublic:         isPublic,
		CreatedByID:      actor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

func (svc *service) DeleteLab(actor user.User, id string) error {
	l, err := svc.repo.GetLabByID(id)
	if err != nil {
		return err
	}
	if !actor.IsStaff() && l.CreatedByID != actor.ID {
		return core.NewPermissionDeniedError("you can only delete your own labs")
	}
	return svc.repo.DeleteLab(id)
}

func (svc *service) StartSession(actor user.User, labID string) (Session, error) {
	if !actor.IsStudent() {
		return Session{}, core.NewPermissionDeniedError("only students can start lab sessions")
	}
	if _, err := svc.repo.GetLabByID(labID); err != nil {
		return Session{}, err
	}
	return svc.repo.CreateSession(Session{
		VirtualLabID: labID,
		StudentID:    actor.ID,
		StartTime:    time.Now().UTC(),
		Status:       SessionInProgress,
	})
}

func (svc *service) EndSession(actor user.User, sessionID string, es EndSession) (Session, error) {
	s, err := svc.repo.GetSessionByID(sessionID)
	if err != nil {
		return Session{}, err
	}
	if s.StudentID != actor.ID && !actor.IsStaff() {
		return Session{}, core.NewPermissionDeniedError("you can only end your own lab sessions")
	}
	if s.EndTime != nil {
		return Session{}, core.NewConflictError("this session has already ended")
	}

	now := time.Now().UTC()
	s.EndTime = &now
	s.Status = es.Status
	if es.Notes != "" {
		s.Notes = es.Notes
	}
	s.RefreshDuration()
	return svc.repo.UpdateSession(s)
}

func (svc *service) Sessions(actor user.User, labID string) ([]Session, error) {
	l, err := svc.repo.GetLabByID(labID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && l.CreatedByID != actor.ID {
		return nil, core.NewPermissionDeniedError("you can only view sessions for your own labs")
	}
	return svc.repo.QuerySessionsByLab(labID)
}

func (svc *service) MySessions(actor user.User) ([]Session, error) {
	return svc.repo.QuerySessionsByStudent(actor.ID)
}

func (svc *service) AddResult(actor user.User, sessionID string, nr NewResult) (Result, error) {
	s, err := svc.repo.GetSessionByID(sessionID)
	if err != nil {
		return Result{}, err
	}
	if s.StudentID != actor.ID {
		return Result{}, core.NewPermissionDeniedError("you can only add results to your own lab sessions")
	}
	return svc.repo.CreateResult(Result{
		SessionID: sessionID,
		Title:     nr.Title,
		Content:   nr.Content,
		File:      nr.File,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) Results(actor user.User, sessionID string) ([]Result, error) {
	s, err := svc.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if s.StudentID != actor.ID && !actor.IsTeacher() && !actor.IsStaff() {
		return nil, core.NewPermissionDeniedError("you don't have permission to view these results")
	}
	return svc.repo.QueryResultsBySession(sessionID)
}

func (svc *service) GradeResult(actor user.User, resultID string, gr GradeResult) (Result, error) {
	if !actor.IsTeacher() && !actor.IsStaff() {
		return Result{}, core.NewPermissionDeniedError("only teachers can grade lab results")
	}
	r, err := svc.repo.GetResultByID(resultID)
	if err != nil {
		return Result{}, err
	}
	r.Score = gr.Score
	r.Feedback = gr.Feedback
	return svc.repo.UpdateResult(r)
}

// writing workshops

func (svc *service) Workshops(courseID string) ([]Workshop, error) {
	return svc.repo.QueryWorkshops(courseID)
}

func (svc *service) GetWorkshop(id string) (Workshop, error) {
	return svc.repo.GetWorkshopByID(id)
}

func (svc *service) CreateWorkshop(actor user.User, nw NewWorkshop) (Workshop, error) {
	if !actor.IsTeacher() && !actor.IsStaff() {
		return Workshop{}, core.NewPermissionDeniedError("only teachers can create writing workshops")
	}
	now := time.Now().UTC()
	return svc.repo.CreateWorkshop(Workshop{
		Title:              nw.Title,
		Description:        nw.Description,
		WorkshopType:       nw.WorkshopType,
		CourseID:           nw.CourseID,
		Instructions:       nw.Instructions,
		DocumentTemplate:   nw.DocumentTemplate,
		DueDate:            nw.DueDate,
		WordCountMin:       nw.WordCountMin,
		WordCountMax:       nw.WordCountMax,
		RequiresPeerReview: nw.RequiresPeerReview,
		CreatedByID:        actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

func (svc *service) DeleteWorkshop(actor user.User, id string) error {
	w, err := svc.repo.GetWorkshopByID(id)
	if err != nil {
		return err
	}
	if !actor.IsStaff() && w.CreatedByID != actor.ID {
		return core.NewPermissionDeniedError("you can only delete your own workshops")
	}
	return svc.repo.DeleteWorkshop(id)
}

func (svc *service) checkWordCount(w Workshop, count int) error {
	if w.WordCountMin > 0 && count < w.WordCountMin {
		err := fmt.Errorf("submission must be at least %d words", w.WordCountMin)
		return core.NewValidationError(err, core.FieldError{Field: "content", Error: err.Error()})
	}
	if w.WordCountMax > 0 && count > w.WordCountMax {
		err := fmt.Errorf("submission must be at most %d words", w.WordCountMax)
		return core.NewValidationError(err, core.FieldError{Field: "content", Error: err.Error()})
	}
	return nil
}

func (svc *service) SubmitWriting(actor user.User, workshopID string, ns NewWritingSubmission) (WritingSubmission, error) {
	if !actor.IsStudent() {
		return WritingSubmission{}, core.NewPermissionDeniedError("only students can submit to writing workshops")
	}
	w, err := svc.repo.GetWorkshopByID(workshopID)
	if err != nil {
		return WritingSubmission{}, err
	}

	count := CountWords(ns.Content)
	if err := svc.checkWordCount(w, count); err != nil {
		return WritingSubmission{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateWritingSubmission(WritingSubmission{
		WorkshopID: workshopID,
		StudentID:  actor.ID,
		Title:      ns.Title,
		Content:    ns.Content,
		WordCount:  count,
		Status:     WritingDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *service) UpdateWriting(actor user.User, id string, us UpdateWritingSubmission) (WritingSubmission, error) {
	ws, err := svc.repo.GetWritingSubmissionByID(id)
	if err != nil {
		return WritingSubmission{}, err
	}
	if ws.StudentID != actor.ID && !actor.IsStaff() {
		return WritingSubmission{}, core.NewPermissionDeniedError("you can only update your own submissions")
	}
	if ws.Status != WritingDraft && !actor.IsStaff() && (us.Title != "" || us.Content != "") {
		return WritingSubmission{}, core.NewConflictError("content can no longer be changed once submitted")
	}

	if us.Title != "" {
		ws.Title = us.Title
	}
	if us.Content != "" {
		w, err := svc.repo.GetWorkshopByID(ws.WorkshopID)
		if err != nil {
			return WritingSubmission{}, err
		}
		count := CountWords(us.Content)
		if err := svc.checkWordCount(w, count); err != nil {
			return WritingSubmission{}, err
		}
		ws.Content = us.Content
		ws.WordCount = count
	}
	if us.Status != "" && us.Status != ws.Status {
		if !ws.CanTransitionTo(us.Status) {
			err := fmt.Errorf("cannot change status from %s to %s", ws.Status, us.Status)
			return WritingSubmission{}, core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
		}
		ws.Status = us.Status
	}
	ws.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateWritingSubmission(ws)
}

func (svc *service) WritingSubmissions(actor user.User, workshopID string) ([]WritingSubmission, error) {
	w, err := svc.repo.GetWorkshopByID(workshopID)
	if err != nil {
		return nil, err
	}
	if actor.IsStaff() || w.CreatedByID == actor.ID {
		return svc.repo.QueryWritingSubmissions(workshopID)
	}
	// students see their own work in the workshop
	all, err := svc.repo.QueryWritingSubmissions(workshopID)
	if err != nil {
		return nil, err
	}
	own := make([]WritingSubmission, 0)
	for _, ws := range all {
		if ws.StudentID == actor.ID {
			own = append(own, ws)
		}
	}
	return own, nil
}

func (svc *service) GradeWriting(actor user.User, id string, gw GradeWriting) (WritingSubmission, error) {
	ws, err := svc.repo.GetWritingSubmissionByID(id)
	if err != nil {
		return WritingSubmission{}, err
	}
	w, err := svc.repo.GetWorkshopByID(ws.WorkshopID)
	if err != nil {
		return WritingSubmission{}, err
	}
	if !actor.IsStaff() && w.CreatedByID != actor.ID {
		return WritingSubmission{}, core.NewPermissionDeniedError("you can only grade submissions for your own workshops")
	}

	ws.Grade = gw.Grade
	ws.Feedback = gw.Feedback
	ws.Status = WritingGraded
	ws.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateWritingSubmission(ws)
}

func (svc *service) Review(actor user.User, submissionID string, nr NewPeerReview) (PeerReview, error) {
	ws, err := svc.repo.GetWritingSubmissionByID(submissionID)
	if err != nil {
		return PeerReview{}, err
	}
	if ws.StudentID == actor.ID {
		return PeerReview{}, core.NewValidationError(
			errors.New("you cannot review your own submission"),
			core.FieldError{Field: "submission_id", Error: "you cannot review your own submission"},
		)
	}

	pr, err := svc.repo.CreatePeerReview(PeerReview{
		SubmissionID: submissionID,
		ReviewerID:   actor.ID,
		Content:      nr.Content,
		Rating:       nr.Rating,
		CompletedAt:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyReviewed {
			return PeerReview{}, core.NewConflictError(ErrAlreadyReviewed.Error())
		}
		return PeerReview{}, err
	}

	if ws.Status == WritingSubmitted || ws.Status == WritingInReview {
		ws.Status = WritingReviewed
		ws.UpdatedAt = pr.CompletedAt
		if _, err := svc.repo.UpdateWritingSubmission(ws); err != nil {
			return PeerReview{}, errors.Wrap(err, "updating submission status")
		}
	}
	return pr, nil
}

func (svc *service) Reviews(actor user.User, submissionID string) ([]PeerReview, error) {
	ws, err := svc.repo.GetWritingSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}
	if ws.StudentID != actor.ID && !actor.IsTeacher() && !actor.IsStaff() {
		return nil, core.NewPermissionDeniedError("you don't have permission to view these reviews")
	}
	return svc.repo.QueryPeerReviews(submissionID)
}

// learning tools

func (svc *service) LanguageTools() ([]LanguageTool, error) {
	return svc.repo.QueryLanguageTools()
}

func (svc *service) CreateLanguageTool(actor user.User, nt NewLanguageTool) (LanguageTool, error) {
	if !actor.IsStaff() {
		return LanguageTool{}, core.NewPermissionDeniedError("only staff can manage language tools")
	}
	now := time.Now().UTC()
	return svc.repo.CreateLanguageTool(LanguageTool{
		Name:               nt.Name,
		Description:        nt.Description,
		ToolType:           nt.ToolType,
		URL:                nt.URL,
		APIKeyRequired:     nt.APIKeyRequired,
		EmbedCode:          nt.EmbedCode,
		SupportedLanguages: nt.SupportedLanguages,
		IconClass:          nt.IconClass,
		IsPremium:          nt.IsPremium,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

func (svc *service) DeactivateLanguageTool(actor user.User, id string) error {
	if !actor.IsStaff() {
		return core.NewPermissionDeniedError("only staff can manage language tools")
	}
	t, err := svc.repo.GetLanguageToolByID(id)
	if err != nil {
		return err
	}
	t.IsActive = false
	t.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateLanguageTool(t)
	return err
}

func (svc *service) MathTools() ([]MathTool, error) {
	return svc.repo.QueryMathTools()
}

func (svc *service) CreateMathTool(actor user.User, nt NewMathTool) (MathTool, error) {
	if !actor.IsStaff() {
		return MathTool{}, core.NewPermissionDeniedError("only staff can manage math tools")
	}
	now := time.Now().UTC()
	return svc.repo.CreateMathTool(MathTool{
		Name:            nt.Name,
		Description:     nt.Description,
		ToolType:        nt.ToolType,
		URL:             nt.URL,
		APIKeyRequired:  nt.APIKeyRequired,
		EmbedCode:       nt.EmbedCode,
		ComplexityLevel: nt.ComplexityLevel,
		IconClass:       nt.IconClass,
		IsPremium:       nt.IsPremium,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (svc *service) DeactivateMathTool(actor user.User, id string) error {
	if !actor.IsStaff() {
		return core.NewPermissionDeniedError("only staff can manage math tools")
	}
	t, err := svc.repo.GetMathToolByID(id)
	if err != nil {
		return err
	}
	t.IsActive = false
	t.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateMathTool(t)
	return err
}

// schedule

func (svc *service) ScheduleEvents(filter EventFilter) ([]ScheduleEvent, error) {
	return svc.repo.QueryEvents(filter)
}

func (svc *service) CreateEvent(actor user.User, ne NewScheduleEvent) (ScheduleEvent, error) {
	if !actor.IsTeacher() && !actor.IsStaff() {
		return ScheduleEvent{}, core.NewPermissionDeniedError("only teachers can schedule events")
	}
	now := time.Now().UTC()
	e := ScheduleEvent{
		Title:             ne.Title,
		Description:       ne.Description,
		EventType:         ne.EventType,
		CourseID:          ne.CourseID,
		StartTime:         ne.StartTime.UTC(),
		EndTime:           ne.EndTime.UTC(),
		Location:          ne.Location,
		IsRecurring:       ne.IsRecurring,
		RecurrencePattern: ne.RecurrencePattern,
		CreatedByID:       actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	e.RefreshDuration()
	return svc.repo.CreateEvent(e)
}

func (svc *service) UpdateEvent(actor user.User, id string, ue UpdateScheduleEvent) (ScheduleEvent, error) {
	e, err := svc.repo.GetEventByID(id)
	if err != nil {
		return ScheduleEvent{}, err
	}
	if !actor.IsStaff() && e.CreatedByID != actor.ID {
		return ScheduleEvent{}, core.NewPermissionDeniedError("you can only update your own events")
	}

	if ue.Title != "" {
		e.Title = ue.Title
	}
	if ue.Description != "" {
		e.Description = ue.Description
	}
	if ue.StartTime != nil {
		e.StartTime = ue.StartTime.UTC()
	}
	if ue.EndTime != nil {
		e.EndTime = ue.EndTime.UTC()
	}
	if !e.EndTime.After(e.StartTime) {
		return ScheduleEvent{}, core.NewValidationError(nil,
			core.FieldError{Field: "end_time", Error: "end time must be after the start time"})
	}
	if ue.Location != "" {
		e.Location = ue.Location
	}
	e.UpdatedAt = time.Now().UTC()
	e.RefreshDuration()
	return svc.repo.UpdateEvent(e)
}

func (svc *service) DeleteEvent(actor user.User, id string) error {
	e, err := svc.repo.GetEventByID(id)
	if err != nil {
		return err
	}
	if !actor.IsStaff() && e.CreatedByID != actor.ID {
		return core.NewPermissionDeniedError("you can only delete your own events")
	}
	return svc.repo.DeleteEvent(id)
}
