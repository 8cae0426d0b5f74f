package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/lab"
)

type labRepository struct {
	db *labTable
}

var _ lab.Repository = (*labRepository)(nil) // interface compliance check

func NewLabRepository(db *DB) *labRepository {
	return &labRepository{db: db.lab}
}

// virtual labs

func (repo *labRepository) CreateLab(l lab.VirtualLab) (lab.VirtualLab, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l.ID = uuid.New().String()
	repo.db.labs[l.ID] = &l
	return l, nil
}

func (repo *labRepository) QueryLabs(filter lab.LabFilter) ([]lab.VirtualLab, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	labs := make([]lab.VirtualLab, 0)
	for _, l := range repo.db.labs {
		if filter.SubjectID != "" && l.SubjectID != filter.SubjectID {
			continue
		}
		if filter.CourseID != "" && l.CourseID != filter.CourseID {
			continue
		}
		if filter.LabType != "" && l.LabType != filter.LabType {
			continue
		}
		labs = append(labs, *l)
	}
	sort.Slice(labs, func(i, j int) bool { return labs[i].Name < labs[j].Name })
	return labs, nil
}

func (repo *labRepository) GetLabByID(id string) (lab.VirtualLab, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.labs[id]; ok {
		return *l, nil
	}
	return lab.VirtualLab{}, lab.ErrLabNotFound
}

func (repo *labRepository) UpdateLab(l lab.VirtualLab) (lab.VirtualLab, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.labs[l.ID]; !ok {
		return lab.VirtualLab{}, lab.ErrLabNotFound
	}
	repo.db.labs[l.ID] = &l
	return l, nil
}

func (repo *labRepository) DeleteLab(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.labs, id)
	for sessID, sess := range repo.db.sessions {
		if sess.VirtualLabID != id {
			continue
		}
		for resID, res := range repo.db.results {
			if res.SessionID == sessID {
				delete(repo.db.results, resID)
			}
		}
		delete(repo.db.sessions, sessID)
	}
	return nil
}

// sessions

func (repo *labRepository) CreateSession(s lab.Session) (lab.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = uuid.New().String()
	repo.db.sessions[s.ID] = &s
	return s, nil
}

func (repo *labRepository) QuerySessionsByStudent(studentID string) ([]lab.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]lab.Session, 0)
	for _, s := range repo.db.sessions {
		if s.StudentID == studentID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime.After(sessions[j].StartTime) })
	return sessions, nil
}

func (repo *labRepository) QuerySessionsByLab(labID string) ([]lab.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]lab.Session, 0)
	for _, s := range repo.db.sessions {
		if s.VirtualLabID == labID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime.After(sessions[j].StartTime) })
	return sessions, nil
}

func (repo *labRepository) GetSessionByID(id string) (lab.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return lab.Session{}, lab.ErrSessionNotFound
}

func (repo *labRepository) UpdateSession(s lab.Session) (lab.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[s.ID]; !ok {
		return lab.Session{}, lab.ErrSessionNotFound
	}
	repo.db.sessions[s.ID] = &s
	return s, nil
}

// results

func (repo *labRepository) CreateResult(r lab.Result) (lab.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = uuid.New().String()
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *labRepository) QueryResultsBySession(sessionID string) ([]lab.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	results := make([]lab.Result, 0)
	for _, r := range repo.db.results {
		if r.SessionID == sessionID {
			results = append(results, *r)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
	return results, nil
}

func (repo *labRepository) GetResultByID(id string) (lab.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.results[id]; ok {
		return *r, nil
	}
	return lab.Result{}, lab.ErrResultNotFound
}

func (repo *labRepository) UpdateResult(r lab.Result) (lab.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.results[r.ID]; !ok {
		return lab.Result{}, lab.ErrResultNotFound
	}
	repo.db.results[r.ID] = &r
	return r, nil
}

// writing workshops

func (repo *labRepository) CreateWorkshop(w lab.Workshop) (lab.Workshop, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	w.ID = uuid.New().String()
	repo.db.workshops[w.ID] = &w
	return w, nil
}

func (repo *labRepository) QueryWorkshops(courseID string) ([]lab.Workshop, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	workshops := make([]lab.Workshop, 0)
	for _, w := range repo.db.workshops {
		if courseID != "" && w.CourseID != courseID {
			continue
		}
		workshops = append(workshops, *w)
	}
	sort.Slice(workshops, func(i, j int) bool { return workshops[i].CreatedAt.After(workshops[j].CreatedAt) })
	return workshops, nil
}

func (repo *labRepository) GetWorkshopByID(id string) (lab.Workshop, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if w, ok := repo.db.workshops[id]; ok {
		return *w, nil
	}
	return lab.Workshop{}, lab.ErrWorkshopNotFound
}

func (repo *labRepository) UpdateWorkshop(w lab.Workshop) (lab.Workshop, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.workshops[w.ID]; !ok {
		return lab.Workshop{}, lab.ErrWorkshopNotFound
	}
	repo.db.workshops[w.ID] = &w
	return w, nil
}

func (repo *labRepository) DeleteWorkshop(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.workshops, id)
	for wsID, ws := range repo.db.writings {
		if ws.WorkshopID != id {
			continue
		}
		for prID, pr := range repo.db.peerReviews {
			if pr.SubmissionID == wsID {
				delete(repo.db.peerReviews, prID)
			}
		}
		delete(repo.db.writings, wsID)
	}
	return nil
}

// writing submissions

func (repo *labRepository) CreateWritingSubmission(ws lab.WritingSubmission) (lab.WritingSubmission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ws.ID = uuid.New().String()
	repo.db.writings[ws.ID] = &ws
	return ws, nil
}

func (repo *labRepository) QueryWritingSubmissions(workshopID string) ([]lab.WritingSubmission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]lab.WritingSubmission, 0)
	for _, ws := range repo.db.writings {
		if ws.WorkshopID == workshopID {
			subs = append(subs, *ws)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.Before(subs[j].CreatedAt) })
	return subs, nil
}

func (repo *labRepository) QueryWritingSubmissionsByStudent(studentID string) ([]lab.WritingSubmission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]lab.WritingSubmission, 0)
	for _, ws := range repo.db.writings {
		if ws.StudentID == studentID {
			subs = append(subs, *ws)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })
	return subs, nil
}

func (repo *labRepository) GetWritingSubmissionByID(id string) (lab.WritingSubmission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ws, ok := repo.db.writings[id]; ok {
		return *ws, nil
	}
	return lab.WritingSubmission{}, lab.ErrSubmissionNotFound
}

func (repo *labRepository) UpdateWritingSubmission(ws lab.WritingSubmission) (lab.WritingSubmission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.writings[ws.ID]; !ok {
		return lab.WritingSubmission{}, lab.ErrSubmissionNotFound
	}
	repo.db.writings[ws.ID] = &ws
	return ws, nil
}

// peer reviews

func (repo *labRepository) CreatePeerReview(pr lab.PeerReview) (lab.PeerReview, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.peerReviews {
		if r.SubmissionID == pr.SubmissionID && r.ReviewerID == pr.ReviewerID {
			return lab.PeerReview{}, lab.ErrAlreadyReviewed
		}
	}
	pr.ID = uuid.New().String()
	repo.db.peerReviews[pr.ID] = &pr
	return pr, nil
}

func (repo *labRepository) QueryPeerReviews(submissionID string) ([]lab.PeerReview, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reviews := make([]lab.PeerReview, 0)
	for _, pr := range repo.db.peerReviews {
		if pr.SubmissionID == submissionID {
			reviews = append(reviews, *pr)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CompletedAt.Before(reviews[j].CompletedAt) })
	return reviews, nil
}

// learning tools

func (repo *labRepository) CreateLanguageTool(t lab.LanguageTool) (lab.LanguageTool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.languageTools[t.ID] = &t
	return t, nil
}

func (repo *labRepository) QueryLanguageTools() ([]lab.LanguageTool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tools := make([]lab.LanguageTool, 0)
	for _, t := range repo.db.languageTools {
		if t.IsActive {
			tools = append(tools, *t)
		}
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

func (repo *labRepository) GetLanguageToolByID(id string) (lab.LanguageTool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.languageTools[id]; ok {
		return *t, nil
	}
	return lab.LanguageTool{}, lab.ErrToolNotFound
}

func (repo *labRepository) UpdateLanguageTool(t lab.LanguageTool) (lab.LanguageTool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.languageTools[t.ID]; !ok {
		return lab.LanguageTool{}, lab.ErrToolNotFound
	}
	repo.db.languageTools[t.ID] = &t
	return t, nil
}

func (repo *labRepository) CreateMathTool(t lab.MathTool) (lab.MathTool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.mathTools[t.ID] = &t
	return t, nil
}

func (repo *labRepository) QueryMathTools() ([]lab.MathTool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tools := make([]lab.MathTool, 0)
	for _, t := range repo.db.mathTools {
		if t.IsActive {
			tools = append(tools, *t)
		}
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

func (repo *labRepository) GetMathToolByID(id string) (lab.MathTool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.mathTools[id]; ok {
		return *t, nil
	}
	return lab.MathTool{}, lab.ErrToolNotFound
}

func (repo *labRepository) UpdateMathTool(t lab.MathTool) (lab.MathTool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.mathTools[t.ID]; !ok {
		return lab.MathTool{}, lab.ErrToolNotFound
	}
	repo.db.mathTools[t.ID] = &t
	return t, nil
}

// schedule

func (repo *labRepository) CreateEvent(e lab.ScheduleEvent) (lab.ScheduleEvent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.New().String()
	repo.db.events[e.ID] = &e
	return e, nil
}

func (repo *labRepository) QueryEvents(filter lab.EventFilter) ([]lab.ScheduleEvent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]lab.ScheduleEvent, 0)
	for _, e := range repo.db.events {
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.From != nil && e.EndTime.Before(*filter.From) {
			continue
		}
		if filter.Until != nil && e.StartTime.After(*filter.Until) {
			continue
		}
		events = append(events, *e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events, nil
}

func (repo *labRepository) GetEventByID(id string) (lab.ScheduleEvent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.events[id]; ok {
		return *e, nil
	}
	return lab.ScheduleEvent{}, lab.ErrEventNotFound
}

func (repo *labRepository) UpdateEvent(e lab.ScheduleEvent) (lab.ScheduleEvent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.events[e.ID]; !ok {
		return lab.ScheduleEvent{}, lab.ErrEventNotFound
	}
	repo.db.events[e.ID] = &e
	return e, nil
}

func (repo *labRepository) DeleteEvent(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.events, id)
	return nil
}
