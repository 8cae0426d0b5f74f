package course_test

import (
	"testing"
	"time"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/policy"
	"github.com/esakris/techiekraft/core/user"
	inmemdb "github.com/esakris/techiekraft/storage/database/inmem"
)

type catalogFixture struct {
	repo    course.Repository
	enrRepo course.EnrollmentRepository
	users   user.Repository
	svc     course.Service

	teacher  user.User
	teacher2 user.User
	student  user.User
	admin    user.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	enrRepo := inmemdb.NewEnrollmentRepository(db)

	f := &catalogFixture{
		repo:    crsRepo,
		enrRepo: enrRepo,
		users:   usrRepo,
		svc:     course.NewService(crsRepo, enrRepo, policy.NewEngine(usrRepo)),
	}
	newUser := func(email, role string) user.User {
		usr, err := usrRepo.CreateUser(user.User{Email: email, Role: role, IsActive: true})
		if err != nil {
			t.Fatalf("CreateUser(%s): %v", email, err)
		}
		return usr
	}
	f.teacher = newUser("prof@test.cd", user.RoleTeacher)
	f.teacher2 = newUser("other.prof@test.cd", user.RoleTeacher)
	f.student = newUser("kid@test.cd", user.RoleStudent)
	f.admin = newUser("boss@test.cd", user.RoleAdmin)
	return f
}

func (f *catalogFixture) createCourse(t *testing.T, code string) course.Course {
	t.Helper()
	crs, err := f.svc.CreateCourse(f.teacher, course.NewCourse{
		Name:        "Algebra I",
		Code:        code,
		Description: "Linear equations and friends",
		SubjectID:   "subj-1",
		TeacherID:   f.teacher.ID,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return crs
}

func TestService_CreateSubject(t *testing.T) {
	f := newCatalogFixture(t)

	if _, err := f.svc.CreateSubject(f.teacher, course.NewSubject{Name: "Mathematics"}); !core.IsPermissionDenied(err) {
		t.Errorf("CreateSubject(teacher) error = %v, want permission denied", err)
	}
	sub, err := f.svc.CreateSubject(f.admin, course.NewSubject{Name: "Mathematics", Category: "STEM"})
	if err != nil {
		t.Fatalf("CreateSubject(admin): %v", err)
	}
	if sub.Name != "Mathematics" {
		t.Errorf("Name = %q", sub.Name)
	}
}

func TestService_CreateCourse(t *testing.T) {
	t.Run("teacher for themselves", func(t *testing.T) {
		f := newCatalogFixture(t)

		crs := f.createCourse(t, "ALG1")
		if !crs.IsActive {
			t.Error("new courses should be active")
		}
	})
	t.Run("teacher for someone else", func(t *testing.T) {
		f := newCatalogFixture(t)

		_, err := f.svc.CreateCourse(f.teacher, course.NewCourse{
			Name:        "Not mine",
			Code:        "NM1",
			Description: "assigned away",
			SubjectID:   "subj-1",
			TeacherID:   f.teacher2.ID,
		})
		if !core.IsPermissionDenied(err) {
			t.Errorf("CreateCourse() error = %v, want permission denied", err)
		}
	})
	t.Run("admin assigns any teacher", func(t *testing.T) {
		f := newCatalogFixture(t)

		crs, err := f.svc.CreateCourse(f.admin, course.NewCourse{
			Name:        "Geometry",
			Code:        "GEO1",
			Description: "Shapes",
			SubjectID:   "subj-1",
			TeacherID:   f.teacher2.ID,
		})
		if err != nil {
			t.Fatalf("CreateCourse(admin): %v", err)
		}
		if crs.TeacherID != f.teacher2.ID {
			t.Errorf("TeacherID = %q, want %q", crs.TeacherID, f.teacher2.ID)
		}
	})
	t.Run("duplicate code", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.createCourse(t, "ALG1")

		_, err := f.svc.CreateCourse(f.teacher, course.NewCourse{
			Name:        "Algebra encore",
			Code:        "ALG1",
			Description: "same code",
			SubjectID:   "subj-1",
			TeacherID:   f.teacher.ID,
		})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("CreateCourse(dup code) error = %v, want validation error", err)
		}
	})
	t.Run("student denied", func(t *testing.T) {
		f := newCatalogFixture(t)

		_, err := f.svc.CreateCourse(f.student, course.NewCourse{
			Name:        "My course",
			Code:        "KID1",
			Description: "nope",
			SubjectID:   "subj-1",
			TeacherID:   f.student.ID,
		})
		if !core.IsPermissionDenied(err) {
			t.Errorf("CreateCourse(student) error = %v, want permission denied", err)
		}
	})
}

func TestService_UpdateCourse(t *testing.T) {
	f := newCatalogFixture(t)
	crs := f.createCourse(t, "ALG1")

	got, err := f.svc.UpdateCourse(f.teacher, crs.ID, course.UpdateCourse{Description: "now with matrices"})
	if err != nil {
		t.Fatalf("UpdateCourse(owner): %v", err)
	}
	if got.Description != "now with matrices" {
		t.Errorf("Description = %q", got.Description)
	}

	if _, err = f.svc.UpdateCourse(f.teacher2, crs.ID, course.UpdateCourse{Description: "hijack"}); !core.IsPermissionDenied(err) {
		t.Errorf("UpdateCourse(other teacher) error = %v, want permission denied", err)
	}
}

func TestService_Modules(t *testing.T) {
	f := newCatalogFixture(t)
	crs := f.createCourse(t, "ALG1")

	if _, err := f.svc.CreateModule(f.teacher2, crs.ID, course.NewModule{Title: "Intro"}); !core.IsPermissionDenied(err) {
		t.Errorf("CreateModule(other teacher) error = %v, want permission denied", err)
	}

	mod, err := f.svc.CreateModule(f.teacher, crs.ID, course.NewModule{Title: "Intro", Order: 1})
	if err != nil {
		t.Fatalf("CreateModule(): %v", err)
	}

	mods, err := f.svc.Modules(crs.ID)
	if err != nil {
		t.Fatalf("Modules(): %v", err)
	}
	if len(mods) != 1 || mods[0].ID != mod.ID {
		t.Errorf("Modules() = %d, want the created one", len(mods))
	}
}

func TestService_GetLesson(t *testing.T) {
	f := newCatalogFixture(t)
	crs := f.createCourse(t, "ALG1")

	mod, err := f.svc.CreateModule(f.teacher, crs.ID, course.NewModule{Title: "Intro"})
	if err != nil {
		t.Fatalf("CreateModule(): %v", err)
	}
	les, err := f.svc.CreateLesson(f.teacher, mod.ID, course.NewLesson{Title: "Variables", Content: "x marks the spot"})
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}

	t.Run("unenrolled student denied", func(t *testing.T) {
		if _, err := f.svc.GetLesson(f.student, les.ID); !core.IsPermissionDenied(err) {
			t.Errorf("GetLesson() error = %v, want permission denied", err)
		}
	})
	t.Run("enrolled student allowed", func(t *testing.T) {
		_, err := f.enrRepo.CreateEnrollment(course.Enrollment{
			StudentID:  f.student.ID,
			CourseID:   crs.ID,
			EnrolledAt: time.Now().UTC(),
			IsActive:   true,
		})
		if err != nil {
			t.Fatalf("CreateEnrollment(): %v", err)
		}
		if _, err := f.svc.GetLesson(f.student, les.ID); err != nil {
			t.Errorf("GetLesson(enrolled): %v", err)
		}
	})
	t.Run("teacher and staff always allowed", func(t *testing.T) {
		if _, err := f.svc.GetLesson(f.teacher, les.ID); err != nil {
			t.Errorf("GetLesson(teacher): %v", err)
		}
		if _, err := f.svc.GetLesson(f.admin, les.ID); err != nil {
			t.Errorf("GetLesson(admin): %v", err)
		}
	})
	t.Run("inactive course hides lessons", func(t *testing.T) {
		isActive := false
		if _, err := f.svc.UpdateCourse(f.admin, crs.ID, course.UpdateCourse{IsActive: &isActive}); err != nil {
			t.Fatalf("UpdateCourse(deactivate): %v", err)
		}
		if _, err := f.svc.GetLesson(f.student, les.ID); !core.IsPermissionDenied(err) {
			t.Errorf("GetLesson(inactive course) error = %v, want permission denied", err)
		}
	})
}
