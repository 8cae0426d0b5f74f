package assignment_test

import (
	"testing"
	"time"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/assignment"
	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/policy"
	"github.com/esakris/techiekraft/core/user"
	inmemdb "github.com/esakris/techiekraft/storage/database/inmem"
)

// courseDirectory bridges the course repositories into the directory lookups
// the assignment service depends on.
type courseDirectory struct {
	courses     course.Repository
	enrollments course.EnrollmentRepository
}

func (d courseDirectory) GetCourseInfo(id string) (assignment.CourseInfo, error) {
	crs, err := d.courses.GetCourseByID(id)
	if err != nil {
		return assignment.CourseInfo{}, err
	}
	return assignment.CourseInfo{ID: crs.ID, TeacherID: crs.TeacherID, IsActive: crs.IsActive}, nil
}

func (d courseDirectory) IsActivelyEnrolled(studentID, courseID string) (bool, error) {
	return d.enrollments.IsActivelyEnrolled(studentID, courseID)
}

type assignmentFixture struct {
	repo  assignment.Repository
	users user.Repository
	svc   assignment.Service

	teacher  user.User
	teacher2 user.User
	student  user.User
	outsider user.User
	admin    user.User
	crs      course.Course
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	enrRepo := inmemdb.NewEnrollmentRepository(db)
	repo := inmemdb.NewAssignmentRepository(db)

	f := &assignmentFixture{
		repo:  repo,
		users: usrRepo,
		svc: assignment.NewService(repo, courseDirectory{crsRepo, enrRepo}, usrRepo,
			policy.NewEngine(usrRepo)),
	}

	f.teacher = f.createUser(t, "prof@test.cd", user.RoleTeacher)
	f.teacher2 = f.createUser(t, "other.prof@test.cd", user.RoleTeacher)
	f.student = f.createUser(t, "kid@test.cd", user.RoleStudent)
	f.outsider = f.createUser(t, "stranger@test.cd", user.RoleStudent)
	f.admin = f.createUser(t, "boss@test.cd", user.RoleAdmin)

	f.crs, err = crsRepo.CreateCourse(course.Course{
		Name:      "Chemistry",
		Code:      "CHEM1",
		TeacherID: f.teacher.ID,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	_, err = enrRepo.CreateEnrollment(course.Enrollment{
		StudentID:  f.student.ID,
		CourseID:   f.crs.ID,
		EnrolledAt: time.Now().UTC(),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment(): %v", err)
	}
	return f
}

func (f *assignmentFixture) createUser(t *testing.T, email, role string) user.User {
	t.Helper()
	usr, err := f.users.CreateUser(user.User{Email: email, Role: role, IsActive: true})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return usr
}

func (f *assignmentFixture) createAssignment(t *testing.T, status string, due time.Time) assignment.Assignment {
	t.Helper()
	a, err := f.svc.Create(f.teacher, f.crs.ID, assignment.NewAssignment{
		Title:           "Periodic table",
		Description:     "Name the elements",
		DueDate:         due,
		TotalPoints:     20,
		AllowedAttempts: 2,
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if status != assignment.StatusDraft {
		a, err = f.svc.Update(f.teacher, a.ID, assignment.UpdateAssignment{Status: assignment.StatusPublished})
		if err != nil {
			t.Fatalf("Update(publish): %v", err)
		}
	}
	if status == assignment.StatusArchived {
		a, err = f.svc.Update(f.teacher, a.ID, assignment.UpdateAssignment{Status: assignment.StatusArchived})
		if err != nil {
			t.Fatalf("Update(archive): %v", err)
		}
	}
	return a
}

func TestService_Create(t *testing.T) {
	t.Run("starts as draft", func(t *testing.T) {
		f := newAssignmentFixture(t)

		a := f.createAssignment(t, assignment.StatusDraft, time.Now().UTC().Add(time.Hour))
		if !a.IsDraft() {
			t.Errorf("Status = %q, want %q", a.Status, assignment.StatusDraft)
		}
		if a.CreatedByID != f.teacher.ID {
			t.Errorf("CreatedByID = %q, want %q", a.CreatedByID, f.teacher.ID)
		}
	})
	t.Run("foreign teacher denied", func(t *testing.T) {
		f := newAssignmentFixture(t)

		_, err := f.svc.Create(f.teacher2, f.crs.ID, assignment.NewAssignment{
			Title:       "Hijack",
			Description: "not my course",
			DueDate:     time.Now().UTC().Add(time.Hour),
		})
		if !core.IsPermissionDenied(err) {
			t.Errorf("Create() error = %v, want permission denied", err)
		}
	})
	t.Run("student denied", func(t *testing.T) {
		f := newAssignmentFixture(t)

		_, err := f.svc.Create(f.student, f.crs.ID, assignment.NewAssignment{
			Title:       "Homework for the teacher",
			Description: "nope",
			DueDate:     time.Now().UTC().Add(time.Hour),
		})
		if !core.IsPermissionDenied(err) {
			t.Errorf("Create() error = %v, want permission denied", err)
		}
	})
}

func TestService_Update_statusTransitions(t *testing.T) {
	f := newAssignmentFixture(t)
	a := f.createAssignment(t, assignment.StatusDraft, time.Now().UTC().Add(time.Hour))

	// draft -> archived skips publication
	_, err := f.svc.Update(f.teacher, a.ID, assignment.UpdateAssignment{Status: assignment.StatusArchived})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Fatalf("Update(draft->archived) error = %v, want validation error", err)
	}

	a, err = f.svc.Update(f.teacher, a.ID, assignment.UpdateAssignment{Status: assignment.StatusPublished})
	if err != nil {
		t.Fatalf("Update(draft->published): %v", err)
	}
	if !a.IsPublished() {
		t.Errorf("Status = %q, want %q", a.Status, assignment.StatusPublished)
	}

	// no moving back
	_, err = f.svc.Update(f.teacher, a.ID, assignment.UpdateAssignment{Status: assignment.StatusDraft})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("Update(published->draft) error = %v, want validation error", err)
	}
}

func TestService_List_studentScope(t *testing.T) {
	f := newAssignmentFixture(t)
	f.createAssignment(t, assignment.StatusDraft, time.Now().UTC().Add(time.Hour))
	published := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

	t.Run("enrolled student sees published only", func(t *testing.T) {
		got, err := f.svc.List(f.student, assignment.AssignmentFilter{CourseID: f.crs.ID})
		if err != nil {
			t.Fatalf("List(): %v", err)
		}
		if len(got) != 1 || got[0].ID != published.ID {
			t.Errorf("List() = %d assignments, want only the published one", len(got))
		}
	})
	t.Run("unenrolled student sees none", func(t *testing.T) {
		got, err := f.svc.List(f.outsider, assignment.AssignmentFilter{CourseID: f.crs.ID})
		if err != nil {
			t.Fatalf("List(): %v", err)
		}
		if len(got) != 0 {
			t.Errorf("List() = %d assignments, want 0", len(got))
		}
	})
	t.Run("teacher sees drafts too", func(t *testing.T) {
		got, err := f.svc.List(f.teacher, assignment.AssignmentFilter{CourseID: f.crs.ID})
		if err != nil {
			t.Fatalf("List(): %v", err)
		}
		if len(got) != 2 {
			t.Errorf("List() = %d assignments, want 2", len(got))
		}
	})
}

func TestService_Submit(t *testing.T) {
	t.Run("on time", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

		ns := assignment.NewSubmission{TextResponse: "H, He, Li"}
		if err := ns.Validate(); err != nil {
			t.Fatalf("Validate(): %v", err)
		}
		sub, err := f.svc.Submit(f.student, a.ID, ns)
		if err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		if sub.Status != assignment.SubmissionSubmitted {
			t.Errorf("Status = %q, want %q", sub.Status, assignment.SubmissionSubmitted)
		}
		if sub.AttemptNumber != 1 {
			t.Errorf("AttemptNumber = %d, want 1", sub.AttemptNumber)
		}
	})
	t.Run("past due is marked late", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(-time.Hour))

		sub, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{TextResponse: "better late", AttemptNumber: 1})
		if err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		if sub.Status != assignment.SubmissionLate {
			t.Errorf("Status = %q, want %q", sub.Status, assignment.SubmissionLate)
		}
	})
	t.Run("draft rejects submissions", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusDraft, time.Now().UTC().Add(time.Hour))

		_, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{TextResponse: "too early", AttemptNumber: 1})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Submit() error = %v, want validation error", err)
		}
	})
	t.Run("not enrolled", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

		_, err := f.svc.Submit(f.outsider, a.ID, assignment.NewSubmission{TextResponse: "let me in", AttemptNumber: 1})
		if !core.IsPermissionDenied(err) {
			t.Errorf("Submit() error = %v, want permission denied", err)
		}
	})
	t.Run("duplicate attempt", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

		if _, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{AttemptNumber: 1}); err != nil {
			t.Fatalf("Submit(first): %v", err)
		}
		_, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{AttemptNumber: 1})
		if !core.IsConflict(err) {
			t.Errorf("Submit(again) error = %v, want conflict", err)
		}
	})
	t.Run("attempts cap", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

		_, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{AttemptNumber: 3})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Submit(attempt 3 of 2) error = %v, want validation error", err)
		}
	})
}

func TestService_Submissions_parentScope(t *testing.T) {
	f := newAssignmentFixture(t)
	parent := f.createUser(t, "mom@test.cd", user.RoleParent)
	if err := f.users.AddChild(parent.ID, f.student.ID); err != nil {
		t.Fatalf("AddChild(): %v", err)
	}

	a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))
	if _, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{TextResponse: "H, He, Li", AttemptNumber: 1}); err != nil {
		t.Fatalf("Submit(): %v", err)
	}

	tests := []struct {
		name   string
		actor  user.User
		filter assignment.SubmissionFilter
		want   int
		denied bool
	}{
		{name: "parent unfiltered sees children", actor: parent, want: 1},
		{name: "parent filtering by own child", actor: parent, filter: assignment.SubmissionFilter{StudentID: f.student.ID}, want: 1},
		{name: "parent filtering by someone else's child", actor: parent, filter: assignment.SubmissionFilter{StudentID: f.outsider.ID}, denied: true},
		{name: "student filtering by classmate", actor: f.student, filter: assignment.SubmissionFilter{StudentID: f.outsider.ID}, denied: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, err := f.svc.Submissions(tt.actor, tt.filter)
			if tt.denied {
				if !core.IsPermissionDenied(err) {
					t.Errorf("Submissions() error = %v, want permission denied", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submissions(): %v", err)
			}
			if len(subs) != tt.want {
				t.Errorf("Submissions() returned %d, want %d", len(subs), tt.want)
			}
		})
	}
}

func TestService_Submit_autoGrade(t *testing.T) {
	f := newAssignmentFixture(t)

	a, err := f.svc.Create(f.teacher, f.crs.ID, assignment.NewAssignment{
		Title:           "Elements quiz",
		Description:     "auto-graded",
		DueDate:         time.Now().UTC().Add(time.Hour),
		TotalPoints:     15,
		AllowedAttempts: 3,
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if a, err = f.svc.Update(f.teacher, a.ID, assignment.UpdateAssignment{Status: assignment.StatusPublished}); err != nil {
		t.Fatalf("Update(publish): %v", err)
	}

	quiz, err := f.svc.CreateQuiz(f.teacher, a.ID, assignment.NewQuiz{PassingScore: 50})
	if err != nil {
		t.Fatalf("CreateQuiz(): %v", err)
	}
	mc, err := f.svc.AddQuestion(f.teacher, quiz.ID, assignment.NewQuestion{
		Text:         "Symbol for gold?",
		QuestionType: assignment.QuestionMultipleChoice,
		Points:       5,
	})
	if err != nil {
		t.Fatalf("AddQuestion(mc): %v", err)
	}
	right, err := f.svc.AddAnswer(f.teacher, mc.ID, assignment.NewAnswer{Text: "Au", IsCorrect: true})
	if err != nil {
		t.Fatalf("AddAnswer(right): %v", err)
	}
	wrong, err := f.svc.AddAnswer(f.teacher, mc.ID, assignment.NewAnswer{Text: "Ag"})
	if err != nil {
		t.Fatalf("AddAnswer(wrong): %v", err)
	}
	essay, err := f.svc.AddQuestion(f.teacher, quiz.ID, assignment.NewQuestion{
		Text:         "Why is gold unreactive?",
		QuestionType: assignment.QuestionEssay,
		Points:       10,
	})
	if err != nil {
		t.Fatalf("AddQuestion(essay): %v", err)
	}

	tests := []struct {
		name       string
		answer     assignment.NewStudentAnswer
		wantPoints *float64
		wantRight  *bool
	}{
		{"correct choice earns full points",
			assignment.NewStudentAnswer{QuestionID: mc.ID, SelectedAnswerID: right.ID},
			floatPtr(5), boolPtr(true)},
		{"wrong choice earns zero",
			assignment.NewStudentAnswer{QuestionID: mc.ID, SelectedAnswerID: wrong.ID},
			floatPtr(0), boolPtr(false)},
		{"essay left for the teacher",
			assignment.NewStudentAnswer{QuestionID: essay.ID, TextAnswer: "full d-shell"},
			nil, nil},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{
				AttemptNumber: i + 1,
				Answers:       []assignment.NewStudentAnswer{tt.answer},
			})
			if err != nil {
				t.Fatalf("Submit(): %v", err)
			}
			answers, err := f.svc.Answers(f.teacher, sub.ID)
			if err != nil {
				t.Fatalf("Answers(): %v", err)
			}
			if len(answers) != 1 {
				t.Fatalf("Answers() = %d answers, want 1", len(answers))
			}
			got := answers[0]
			if !floatPtrEq(got.PointsEarned, tt.wantPoints) {
				t.Errorf("PointsEarned = %v, want %v", fmtFloatPtr(got.PointsEarned), fmtFloatPtr(tt.wantPoints))
			}
			if !boolPtrEq(got.IsCorrect, tt.wantRight) {
				t.Errorf("IsCorrect = %v, want %v", fmtBoolPtr(got.IsCorrect), fmtBoolPtr(tt.wantRight))
			}
		})
	}
}

func TestService_Grade(t *testing.T) {
	submit := func(t *testing.T, f *assignmentFixture, a assignment.Assignment) assignment.Submission {
		t.Helper()
		sub, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{TextResponse: "work", AttemptNumber: 1})
		if err != nil {
			t.Fatalf("Submit(): %v", err)
		}
		return sub
	}

	t.Run("teacher grades own course", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))
		sub := submit(t, f, a)

		graded, err := f.svc.Grade(f.teacher, sub.ID, assignment.GradeSubmission{
			Score:    floatPtr(18),
			Feedback: "well done",
			Status:   assignment.SubmissionGraded,
		})
		if err != nil {
			t.Fatalf("Grade(): %v", err)
		}
		if graded.Score == nil || *graded.Score != 18 {
			t.Errorf("Score = %v, want 18", fmtFloatPtr(graded.Score))
		}
		if graded.GradedByID != f.teacher.ID {
			t.Errorf("GradedByID = %q, want %q", graded.GradedByID, f.teacher.ID)
		}
		if graded.GradedAt == nil {
			t.Error("GradedAt not set")
		}
	})
	t.Run("score capped at total points", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))
		sub := submit(t, f, a)

		_, err := f.svc.Grade(f.teacher, sub.ID, assignment.GradeSubmission{
			Score:  floatPtr(21),
			Status: assignment.SubmissionGraded,
		})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Grade(21/20) error = %v, want validation error", err)
		}
	})
	t.Run("regrade keeps the original grader", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))
		sub := submit(t, f, a)

		first, err := f.svc.Grade(f.teacher, sub.ID, assignment.GradeSubmission{
			Score:  floatPtr(10),
			Status: assignment.SubmissionGraded,
		})
		if err != nil {
			t.Fatalf("Grade(first): %v", err)
		}
		second, err := f.svc.Grade(f.admin, sub.ID, assignment.GradeSubmission{
			Score:  floatPtr(12),
			Status: assignment.SubmissionReturned,
		})
		if err != nil {
			t.Fatalf("Grade(second): %v", err)
		}
		if second.GradedByID != f.teacher.ID {
			t.Errorf("GradedByID = %q, want the first grader %q", second.GradedByID, f.teacher.ID)
		}
		if !second.GradedAt.Equal(*first.GradedAt) {
			t.Errorf("GradedAt changed on regrade: %v != %v", second.GradedAt, first.GradedAt)
		}
		if *second.Score != 12 {
			t.Errorf("Score = %v, want 12", *second.Score)
		}
	})
	t.Run("foreign teacher denied", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))
		sub := submit(t, f, a)

		_, err := f.svc.Grade(f.teacher2, sub.ID, assignment.GradeSubmission{
			Score:  floatPtr(5),
			Status: assignment.SubmissionGraded,
		})
		if !core.IsPermissionDenied(err) {
			t.Errorf("Grade() error = %v, want permission denied", err)
		}
	})
	t.Run("student denied", func(t *testing.T) {
		f := newAssignmentFixture(t)
		a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))
		sub := submit(t, f, a)

		_, err := f.svc.Grade(f.student, sub.ID, assignment.GradeSubmission{
			Score:  floatPtr(20),
			Status: assignment.SubmissionGraded,
		})
		if !core.IsPermissionDenied(err) {
			t.Errorf("Grade() error = %v, want permission denied", err)
		}
	})
}

func TestService_Questions_hidesCorrectness(t *testing.T) {
	f := newAssignmentFixture(t)
	a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

	quiz, err := f.svc.CreateQuiz(f.teacher, a.ID, assignment.NewQuiz{})
	if err != nil {
		t.Fatalf("CreateQuiz(): %v", err)
	}
	q, err := f.svc.AddQuestion(f.teacher, quiz.ID, assignment.NewQuestion{
		Text:         "Water is H2O.",
		QuestionType: assignment.QuestionTrueFalse,
		Points:       1,
	})
	if err != nil {
		t.Fatalf("AddQuestion(): %v", err)
	}
	if _, err = f.svc.AddAnswer(f.teacher, q.ID, assignment.NewAnswer{Text: "True", IsCorrect: true}); err != nil {
		t.Fatalf("AddAnswer(): %v", err)
	}
	if _, err = f.svc.AddAnswer(f.teacher, q.ID, assignment.NewAnswer{Text: "False"}); err != nil {
		t.Fatalf("AddAnswer(): %v", err)
	}

	t.Run("student", func(t *testing.T) {
		qs, err := f.svc.Questions(f.student, quiz.ID)
		if err != nil {
			t.Fatalf("Questions(): %v", err)
		}
		for _, qa := range qs {
			for _, ans := range qa.Answers {
				if ans.IsCorrect {
					t.Errorf("answer %q leaks correctness to a student", ans.Text)
				}
			}
		}
	})
	t.Run("teacher", func(t *testing.T) {
		qs, err := f.svc.Questions(f.teacher, quiz.ID)
		if err != nil {
			t.Fatalf("Questions(): %v", err)
		}
		var sawCorrect bool
		for _, qa := range qs {
			for _, ans := range qa.Answers {
				sawCorrect = sawCorrect || ans.IsCorrect
			}
		}
		if !sawCorrect {
			t.Error("correctness flags blanked for the teacher")
		}
	})
}

func TestService_GradeAnswer(t *testing.T) {
	f := newAssignmentFixture(t)
	a := f.createAssignment(t, assignment.StatusPublished, time.Now().UTC().Add(time.Hour))

	quiz, err := f.svc.CreateQuiz(f.teacher, a.ID, assignment.NewQuiz{})
	if err != nil {
		t.Fatalf("CreateQuiz(): %v", err)
	}
	essay, err := f.svc.AddQuestion(f.teacher, quiz.ID, assignment.NewQuestion{
		Text:         "Explain osmosis.",
		QuestionType: assignment.QuestionEssay,
		Points:       10,
	})
	if err != nil {
		t.Fatalf("AddQuestion(): %v", err)
	}
	sub, err := f.svc.Submit(f.student, a.ID, assignment.NewSubmission{
		AttemptNumber: 1,
		Answers:       []assignment.NewStudentAnswer{{QuestionID: essay.ID, TextAnswer: "water moves"}},
	})
	if err != nil {
		t.Fatalf("Submit(): %v", err)
	}
	answers, err := f.svc.Answers(f.teacher, sub.ID)
	if err != nil {
		t.Fatalf("Answers(): %v", err)
	}

	sa, err := f.svc.GradeAnswer(f.teacher, answers[0].ID, assignment.GradeAnswer{PointsEarned: floatPtr(7)})
	if err != nil {
		t.Fatalf("GradeAnswer(): %v", err)
	}
	if sa.PointsEarned == nil || *sa.PointsEarned != 7 {
		t.Errorf("PointsEarned = %v, want 7", fmtFloatPtr(sa.PointsEarned))
	}

	// grading the submission freezes its answers
	if _, err = f.svc.Grade(f.teacher, sub.ID, assignment.GradeSubmission{
		Score:  floatPtr(7),
		Status: assignment.SubmissionGraded,
	}); err != nil {
		t.Fatalf("Grade(): %v", err)
	}
	_, err = f.svc.GradeAnswer(f.teacher, answers[0].ID, assignment.GradeAnswer{PointsEarned: floatPtr(9)})
	if !core.IsConflict(err) {
		t.Errorf("GradeAnswer(after grading) error = %v, want conflict", err)
	}
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtFloatPtr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fmtBoolPtr(v *bool) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
