package lab_test

import (
	"testing"
	"time"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/lab"
	"github.com/esakris/techiekraft/core/user"
	inmemdb "github.com/esakris/techiekraft/storage/database/inmem"
)

var (
	teacher  = user.User{ID: "teacher-1", Email: "prof@test.cd", Role: user.RoleTeacher, IsActive: true}
	teacher2 = user.User{ID: "teacher-2", Email: "other.prof@test.cd", Role: user.RoleTeacher, IsActive: true}
	student  = user.User{ID: "student-1", Email: "kid@test.cd", Role: user.RoleStudent, IsActive: true}
	student2 = user.User{ID: "student-2", Email: "pal@test.cd", Role: user.RoleStudent, IsActive: true}
	admin    = user.User{ID: "admin-1", Email: "boss@test.cd", Role: user.RoleAdmin, IsActive: true}
)

type labFixture struct {
	repo lab.Repository
	svc  lab.Service
}

func newLabFixture(t *testing.T) *labFixture {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	repo := inmemdb.NewLabRepository(db)
	return &labFixture{repo: repo, svc: lab.NewService(repo)}
}

func (f *labFixture) createLab(t *testing.T) lab.VirtualLab {
	t.Helper()
	l, err := f.svc.CreateLab(teacher, lab.NewVirtualLab{
		Name:        "Titration bench",
		Description: "Acid-base titration",
		LabType:     lab.LabScience,
		SubjectID:   "subj-1",
		URL:         "https://labs.test.cd/titration",
	})
	if err != nil {
		t.Fatalf("CreateLab(): %v", err)
	}
	return l
}

func (f *labFixture) createWorkshop(t *testing.T, min, max int) lab.Workshop {
	t.Helper()
	w, err := f.svc.CreateWorkshop(teacher, lab.NewWorkshop{
		Title:        "Persuasive essay",
		Description:  "Argue a position",
		WorkshopType: lab.WorkshopEssay,
		Instructions: "Pick a topic and defend it.",
		WordCountMin: min,
		WordCountMax: max,
	})
	if err != nil {
		t.Fatalf("CreateWorkshop(): %v", err)
	}
	return w
}

func TestService_CreateLab(t *testing.T) {
	f := newLabFixture(t)

	l := f.createLab(t)
	if !l.IsPublic {
		t.Error("IsPublic should default to true")
	}
	if l.CreatedByID != teacher.ID {
		t.Errorf("CreatedByID = %q, want %q", l.CreatedByID, teacher.ID)
	}

	if _, err := f.svc.CreateLab(student, lab.NewVirtualLab{
		Name:        "Forbidden",
		Description: "students cannot author labs",
		LabType:     lab.LabScience,
		SubjectID:   "subj-1",
		URL:         "https://labs.test.cd/x",
	}); !core.IsPermissionDenied(err) {
		t.Errorf("CreateLab(student) error = %v, want permission denied", err)
	}
}

func TestService_Sessions(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		f := newLabFixture(t)
		l := f.createLab(t)

		s, err := f.svc.StartSession(student, l.ID)
		if err != nil {
			t.Fatalf("StartSession(): %v", err)
		}
		if s.Status != lab.SessionInProgress {
			t.Errorf("Status = %q, want %q", s.Status, lab.SessionInProgress)
		}
		if s.EndTime != nil {
			t.Error("EndTime set on a fresh session")
		}

		if _, err = f.svc.StartSession(teacher, l.ID); !core.IsPermissionDenied(err) {
			t.Errorf("StartSession(teacher) error = %v, want permission denied", err)
		}
	})

	t.Run("end recomputes duration", func(t *testing.T) {
		f := newLabFixture(t)
		l := f.createLab(t)

		s, err := f.svc.StartSession(student, l.ID)
		if err != nil {
			t.Fatalf("StartSession(): %v", err)
		}
		// backdate the start so the computed duration is meaningful
		s.StartTime = time.Now().UTC().Add(-45 * time.Minute)
		if s, err = f.repo.UpdateSession(s); err != nil {
			t.Fatalf("UpdateSession(): %v", err)
		}

		ended, err := f.svc.EndSession(student, s.ID, lab.EndSession{Status: lab.SessionCompleted, Notes: "done"})
		if err != nil {
			t.Fatalf("EndSession(): %v", err)
		}
		if ended.EndTime == nil {
			t.Fatal("EndTime not set")
		}
		if ended.DurationMinutes < 44 || ended.DurationMinutes > 46 {
			t.Errorf("DurationMinutes = %d, want ~45", ended.DurationMinutes)
		}
		if ended.Status != lab.SessionCompleted {
			t.Errorf("Status = %q, want %q", ended.Status, lab.SessionCompleted)
		}
		if ended.Notes != "done" {
			t.Errorf("Notes = %q, want %q", ended.Notes, "done")
		}
	})

	t.Run("end twice", func(t *testing.T) {
		f := newLabFixture(t)
		l := f.createLab(t)

		s, err := f.svc.StartSession(student, l.ID)
		if err != nil {
			t.Fatalf("StartSession(): %v", err)
		}
		if _, err = f.svc.EndSession(student, s.ID, lab.EndSession{Status: lab.SessionCompleted}); err != nil {
			t.Fatalf("EndSession(): %v", err)
		}
		if _, err = f.svc.EndSession(student, s.ID, lab.EndSession{Status: lab.SessionAbandoned}); !core.IsConflict(err) {
			t.Errorf("EndSession(again) error = %v, want conflict", err)
		}
	})

	t.Run("only the owner ends it", func(t *testing.T) {
		f := newLabFixture(t)
		l := f.createLab(t)

		s, err := f.svc.StartSession(student, l.ID)
		if err != nil {
			t.Fatalf("StartSession(): %v", err)
		}
		if _, err = f.svc.EndSession(student2, s.ID, lab.EndSession{Status: lab.SessionCompleted}); !core.IsPermissionDenied(err) {
			t.Errorf("EndSession(other student) error = %v, want permission denied", err)
		}
		// staff can close a stuck session
		if _, err = f.svc.EndSession(admin, s.ID, lab.EndSession{Status: lab.SessionAbandoned}); err != nil {
			t.Errorf("EndSession(admin): %v", err)
		}
	})

	t.Run("lab sessions visible to the author only", func(t *testing.T) {
		f := newLabFixture(t)
		l := f.createLab(t)

		if _, err := f.svc.StartSession(student, l.ID); err != nil {
			t.Fatalf("StartSession(): %v", err)
		}
		got, err := f.svc.Sessions(teacher, l.ID)
		if err != nil {
			t.Fatalf("Sessions(author): %v", err)
		}
		if len(got) != 1 {
			t.Errorf("Sessions() = %d, want 1", len(got))
		}
		if _, err = f.svc.Sessions(teacher2, l.ID); !core.IsPermissionDenied(err) {
			t.Errorf("Sessions(other teacher) error = %v, want permission denied", err)
		}
	})
}

func TestService_Results(t *testing.T) {
	f := newLabFixture(t)
	l := f.createLab(t)

	s, err := f.svc.StartSession(student, l.ID)
	if err != nil {
		t.Fatalf("StartSession(): %v", err)
	}

	if _, err = f.svc.AddResult(student2, s.ID, lab.NewResult{Title: "hijack"}); !core.IsPermissionDenied(err) {
		t.Errorf("AddResult(other student) error = %v, want permission denied", err)
	}

	r, err := f.svc.AddResult(student, s.ID, lab.NewResult{Title: "Readings", Content: "pH 7.2"})
	if err != nil {
		t.Fatalf("AddResult(): %v", err)
	}

	if _, err = f.svc.GradeResult(student, r.ID, lab.GradeResult{Score: floatPtr(8)}); !core.IsPermissionDenied(err) {
		t.Errorf("GradeResult(student) error = %v, want permission denied", err)
	}
	graded, err := f.svc.GradeResult(teacher, r.ID, lab.GradeResult{Score: floatPtr(8), Feedback: "good"})
	if err != nil {
		t.Fatalf("GradeResult(): %v", err)
	}
	if graded.Score == nil || *graded.Score != 8 {
		t.Errorf("Score = %v, want 8", graded.Score)
	}

	got, err := f.svc.Results(student, s.ID)
	if err != nil {
		t.Fatalf("Results(): %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Results() = %d, want 1", len(got))
	}
}

func TestService_SubmitWriting(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"within bounds", "one two three four five", false},
		{"too short", "one two", true},
		{"too long", "a b c d e f g h i j k", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLabFixture(t)
			w := f.createWorkshop(t, 3, 10)

			ws, err := f.svc.SubmitWriting(student, w.ID, lab.NewWritingSubmission{Title: "My essay", Content: tt.content})
			if tt.wantErr {
				if _, ok := err.(*core.ValidationError); !ok {
					t.Fatalf("SubmitWriting() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SubmitWriting(): %v", err)
			}
			if ws.Status != lab.WritingDraft {
				t.Errorf("Status = %q, want %q", ws.Status, lab.WritingDraft)
			}
			if ws.WordCount != lab.CountWords(tt.content) {
				t.Errorf("WordCount = %d, want %d", ws.WordCount, lab.CountWords(tt.content))
			}
		})
	}

	t.Run("teachers cannot submit", func(t *testing.T) {
		f := newLabFixture(t)
		w := f.createWorkshop(t, 0, 0)

		_, err := f.svc.SubmitWriting(teacher, w.ID, lab.NewWritingSubmission{Title: "x", Content: "y"})
		if !core.IsPermissionDenied(err) {
			t.Errorf("SubmitWriting(teacher) error = %v, want permission denied", err)
		}
	})
}

func TestService_UpdateWriting(t *testing.T) {
	f := newLabFixture(t)
	w := f.createWorkshop(t, 0, 0)

	ws, err := f.svc.SubmitWriting(student, w.ID, lab.NewWritingSubmission{Title: "Draft", Content: "first go"})
	if err != nil {
		t.Fatalf("SubmitWriting(): %v", err)
	}

	// drafts are editable
	ws, err = f.svc.UpdateWriting(student, ws.ID, lab.UpdateWritingSubmission{Content: "second go at it"})
	if err != nil {
		t.Fatalf("UpdateWriting(draft): %v", err)
	}
	if ws.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", ws.WordCount)
	}

	ws, err = f.svc.UpdateWriting(student, ws.ID, lab.UpdateWritingSubmission{Status: lab.WritingSubmitted})
	if err != nil {
		t.Fatalf("UpdateWriting(submit): %v", err)
	}

	// no backward transition, no edits after submission
	if _, err = f.svc.UpdateWriting(student, ws.ID, lab.UpdateWritingSubmission{Status: lab.WritingDraft}); err == nil {
		t.Error("UpdateWriting(submitted->draft) should fail")
	}
	if _, err = f.svc.UpdateWriting(student, ws.ID, lab.UpdateWritingSubmission{Content: "sneaky edit"}); !core.IsConflict(err) {
		t.Errorf("UpdateWriting(content after submit) error = %v, want conflict", err)
	}
	if _, err = f.svc.UpdateWriting(student2, ws.ID, lab.UpdateWritingSubmission{Title: "mine now"}); !core.IsPermissionDenied(err) {
		t.Errorf("UpdateWriting(other student) error = %v, want permission denied", err)
	}
}

func TestService_PeerReview(t *testing.T) {
	submit := func(t *testing.T, f *labFixture) lab.WritingSubmission {
		t.Helper()
		w := f.createWorkshop(t, 0, 0)
		ws, err := f.svc.SubmitWriting(student, w.ID, lab.NewWritingSubmission{Title: "Essay", Content: "my argument"})
		if err != nil {
			t.Fatalf("SubmitWriting(): %v", err)
		}
		ws, err = f.svc.UpdateWriting(student, ws.ID, lab.UpdateWritingSubmission{Status: lab.WritingSubmitted})
		if err != nil {
			t.Fatalf("UpdateWriting(submit): %v", err)
		}
		return ws
	}

	t.Run("review moves the submission along", func(t *testing.T) {
		f := newLabFixture(t)
		ws := submit(t, f)

		pr, err := f.svc.Review(student2, ws.ID, lab.NewPeerReview{Content: "solid", Rating: 4})
		if err != nil {
			t.Fatalf("Review(): %v", err)
		}
		if pr.ReviewerID != student2.ID {
			t.Errorf("ReviewerID = %q, want %q", pr.ReviewerID, student2.ID)
		}
		got, err := f.repo.GetWritingSubmissionByID(ws.ID)
		if err != nil {
			t.Fatalf("GetWritingSubmissionByID(): %v", err)
		}
		if got.Status != lab.WritingReviewed {
			t.Errorf("Status = %q, want %q", got.Status, lab.WritingReviewed)
		}
	})

	t.Run("no self review", func(t *testing.T) {
		f := newLabFixture(t)
		ws := submit(t, f)

		_, err := f.svc.Review(student, ws.ID, lab.NewPeerReview{Content: "flawless", Rating: 5})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Review(own submission) error = %v, want validation error", err)
		}
	})

	t.Run("one review per reviewer", func(t *testing.T) {
		f := newLabFixture(t)
		ws := submit(t, f)

		if _, err := f.svc.Review(student2, ws.ID, lab.NewPeerReview{Content: "solid", Rating: 4}); err != nil {
			t.Fatalf("Review(first): %v", err)
		}
		_, err := f.svc.Review(student2, ws.ID, lab.NewPeerReview{Content: "changed my mind", Rating: 2})
		if !core.IsConflict(err) {
			t.Errorf("Review(again) error = %v, want conflict", err)
		}
	})
}

func TestService_GradeWriting(t *testing.T) {
	f := newLabFixture(t)
	w := f.createWorkshop(t, 0, 0)

	ws, err := f.svc.SubmitWriting(student, w.ID, lab.NewWritingSubmission{Title: "Essay", Content: "my argument"})
	if err != nil {
		t.Fatalf("SubmitWriting(): %v", err)
	}

	if _, err = f.svc.GradeWriting(teacher2, ws.ID, lab.GradeWriting{Grade: floatPtr(90)}); !core.IsPermissionDenied(err) {
		t.Errorf("GradeWriting(other teacher) error = %v, want permission denied", err)
	}

	graded, err := f.svc.GradeWriting(teacher, ws.ID, lab.GradeWriting{Grade: floatPtr(90), Feedback: "well argued"})
	if err != nil {
		t.Fatalf("GradeWriting(): %v", err)
	}
	if graded.Status != lab.WritingGraded {
		t.Errorf("Status = %q, want %q", graded.Status, lab.WritingGraded)
	}
	if graded.Grade == nil || *graded.Grade != 90 {
		t.Errorf("Grade = %v, want 90", graded.Grade)
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestService_LanguageTools(t *testing.T) {
	f := newLabFixture(t)

	nt := lab.NewLanguageTool{
		Name:               "WordRef",
		Description:        "Bilingual dictionary",
		ToolType:           lab.LanguageDictionary,
		URL:                "https://tools.test.cd/wordref",
		SupportedLanguages: "fr,en,sw",
	}

	for _, actor := range []user.User{student, teacher} {
		if _, err := f.svc.CreateLanguageTool(actor, nt); !core.IsPermissionDenied(err) {
			t.Errorf("CreateLanguageTool(%s) error = %v, want permission denied", actor.Role, err)
		}
	}

	created, err := f.svc.CreateLanguageTool(admin, nt)
	if err != nil {
		t.Fatalf("CreateLanguageTool(): %v", err)
	}
	if !created.IsActive {
		t.Error("new tools should be active")
	}

	tools, err := f.svc.LanguageTools()
	if err != nil {
		t.Fatalf("LanguageTools(): %v", err)
	}
	if len(tools) != 1 {
		t.Fatalf("LanguageTools() = %d, want 1", len(tools))
	}

	t.Run("deactivated tools drop off the list", func(t *testing.T) {
		if err := f.svc.DeactivateLanguageTool(teacher, created.ID); !core.IsPermissionDenied(err) {
			t.Errorf("DeactivateLanguageTool(teacher) error = %v, want permission denied", err)
		}
		if err := f.svc.DeactivateLanguageTool(admin, created.ID); err != nil {
			t.Fatalf("DeactivateLanguageTool(): %v", err)
		}
		tools, err := f.svc.LanguageTools()
		if err != nil {
			t.Fatalf("LanguageTools(): %v", err)
		}
		if len(tools) != 0 {
			t.Errorf("LanguageTools() = %d, want 0", len(tools))
		}
	})
}

func TestService_MathTools(t *testing.T) {
	f := newLabFixture(t)

	nt := lab.NewMathTool{
		Name:        "GraphIt",
		Description: "Function grapher",
		ToolType:    lab.MathGrapher,
		URL:         "https://tools.test.cd/graphit",
	}

	if _, err := f.svc.CreateMathTool(teacher, nt); !core.IsPermissionDenied(err) {
		t.Errorf("CreateMathTool(teacher) error = %v, want permission denied", err)
	}

	created, err := f.svc.CreateMathTool(admin, nt)
	if err != nil {
		t.Fatalf("CreateMathTool(): %v", err)
	}

	if err := f.svc.DeactivateMathTool(admin, created.ID); err != nil {
		t.Fatalf("DeactivateMathTool(): %v", err)
	}
	tools, err := f.svc.MathTools()
	if err != nil {
		t.Fatalf("MathTools(): %v", err)
	}
	if len(tools) != 0 {
		t.Errorf("MathTools() = %d, want 0", len(tools))
	}
}

func TestService_ScheduleEvents(t *testing.T) {
	f := newLabFixture(t)

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	ne := lab.NewScheduleEvent{
		Title:     "Midterm review",
		EventType: lab.EventClass,
		CourseID:  "course-1",
		StartTime: &start,
		EndTime:   &end,
		Location:  "Room 12",
	}

	if _, err := f.svc.CreateEvent(student, ne); !core.IsPermissionDenied(err) {
		t.Errorf("CreateEvent(student) error = %v, want permission denied", err)
	}

	e, err := f.svc.CreateEvent(teacher, ne)
	if err != nil {
		t.Fatalf("CreateEvent(): %v", err)
	}
	if e.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %d, want 90", e.DurationMinutes)
	}
	if e.CreatedByID != teacher.ID {
		t.Errorf("CreatedByID = %q, want %q", e.CreatedByID, teacher.ID)
	}

	t.Run("only the creator or staff may update", func(t *testing.T) {
		if _, err := f.svc.UpdateEvent(teacher2, e.ID, lab.UpdateScheduleEvent{Title: "hijack"}); !core.IsPermissionDenied(err) {
			t.Errorf("UpdateEvent(other teacher) error = %v, want permission denied", err)
		}
		later := end.Add(30 * time.Minute)
		got, err := f.svc.UpdateEvent(teacher, e.ID, lab.UpdateScheduleEvent{EndTime: &later})
		if err != nil {
			t.Fatalf("UpdateEvent(): %v", err)
		}
		if got.DurationMinutes != 120 {
			t.Errorf("DurationMinutes = %d, want 120", got.DurationMinutes)
		}
	})

	t.Run("end must stay after start", func(t *testing.T) {
		before := start.Add(-time.Hour)
		_, err := f.svc.UpdateEvent(teacher, e.ID, lab.UpdateScheduleEvent{EndTime: &before})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("UpdateEvent(end before start) error = %v, want ValidationError", err)
		}
	})

	t.Run("filtered by course and window", func(t *testing.T) {
		otherStart := start.AddDate(0, 1, 0)
		otherEnd := otherStart.Add(time.Hour)
		if _, err := f.svc.CreateEvent(teacher, lab.NewScheduleEvent{
			Title:     "Finals",
			EventType: lab.EventExam,
			CourseID:  "course-2",
			StartTime: &otherStart,
			EndTime:   &otherEnd,
		}); err != nil {
			t.Fatalf("CreateEvent(): %v", err)
		}

		got, err := f.svc.ScheduleEvents(lab.EventFilter{CourseID: "course-1"})
		if err != nil {
			t.Fatalf("ScheduleEvents(): %v", err)
		}
		if len(got) != 1 || got[0].ID != e.ID {
			t.Errorf("ScheduleEvents(course-1) = %d events", len(got))
		}

		until := start.AddDate(0, 0, 7)
		got, err = f.svc.ScheduleEvents(lab.EventFilter{Until: &until})
		if err != nil {
			t.Fatalf("ScheduleEvents(): %v", err)
		}
		if len(got) != 1 {
			t.Errorf("ScheduleEvents(until one week out) = %d events, want 1", len(got))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := f.svc.DeleteEvent(teacher2, e.ID); !core.IsPermissionDenied(err) {
			t.Errorf("DeleteEvent(other teacher) error = %v, want permission denied", err)
		}
		if err := f.svc.DeleteEvent(teacher, e.ID); err != nil {
			t.Fatalf("DeleteEvent(): %v", err)
		}
		got, err := f.svc.ScheduleEvents(lab.EventFilter{CourseID: "course-1"})
		if err != nil {
			t.Fatalf("ScheduleEvents(): %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ScheduleEvents() = %d events after delete, want 0", len(got))
		}
	})
}
