package course

import (
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/policy"
	"github.com/esakris/techiekraft/core/user"
)

var (
	// errors
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrToolNotFound     = errors.New("learning tool not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrCodeExists       = errors.New("a course with this code already exists")
)

type (
	Repository interface {
		// subjects
		CreateSubject(sub Subject) (Subject, error)
		QuerySubjects() ([]Subject, error)
		GetSubjectByID(id string) (Subject, error)
		UpdateSubject(sub Subject) (Subject, error)
		DeleteSubject(id string) error

		// courses; deleting a course cascades down its content tree
		CheckCodeUniqueness(code string, excludedCourses ...Course) error
		CreateCourse(crs Course) (Course, error)
		QueryCourses(filter CourseFilter) ([]Course, error)
		GetCourseByID(id string) (Course, error)
		UpdateCourse(crs Course) (Course, error)
		DeleteCourse(id string) error

		// modules & lessons
		CreateModule(mod Module) (Module, error)
		QueryModulesByCourse(courseID string) ([]Module, error)
		GetModuleByID(id string) (Module, error)
		UpdateModule(mod Module) (Module, error)
		DeleteModule(id string) error
		CreateLesson(les Lesson) (Lesson, error)
		QueryLessonsByModule(moduleID string) ([]Lesson, error)
		GetLessonByID(id string) (Lesson, error)
		UpdateLesson(les Lesson) (Lesson, error)
		DeleteLesson(id string) error

		// learning tools
		CreateLearningTool(tool LearningTool) (LearningTool, error)
		QueryLearningTools(category string) ([]LearningTool, error)
		GetLearningToolByID(id string) (LearningTool, error)
		UpdateLearningTool(tool LearningTool) (LearningTool, error)

		// resources
		CreateResource(res CourseResource) (CourseResource, error)
		QueryResourcesByCourse(courseID string) ([]CourseResource, error)
		GetResourceByID(id string) (CourseResource, error)
		DeleteResource(id string) error
	}

	Service interface {
		// public catalog
		Subjects() ([]Subject, error)
		GetSubject(id string) (Subject, error)
		Courses(filter CourseFilter) ([]Course, error)
		GetCourse(id string) (Course, error)
		Modules(courseID string) ([]Module, error)
		Lessons(moduleID string) ([]Lesson, error)
		LearningTools(category string) ([]LearningTool, error)
		GetLearningTool(id string) (LearningTool, error)
		Resources(courseID string) ([]CourseResource, error)

		// admin-only
		CreateSubject(actor user.User, ns NewSubject) (Subject, error)
		UpdateSubject(actor user.User, id string, ns NewSubject) (Subject, error)
		DeleteSubject(actor user.User, id string) error
		CreateLearningTool(actor user.User, nt NewLearningTool) (LearningTool, error)
		UpdateLearningTool(actor user.User, id string, nt NewLearningTool) (LearningTool, error)
		DeactivateLearningTool(actor user.User, id string) error

		// teacher / admin
		CreateCourse(actor user.User, nc NewCourse) (Course, error)
		UpdateCourse(actor user.User, id string, uc UpdateCourse) (Course, error)
		DeleteCourse(actor user.User, id string) error
		CreateModule(actor user.User, courseID string, nm NewModule) (Module, error)
		UpdateModule(actor user.User, id string, nm NewModule) (Module, error)
		DeleteModule(actor user.User, id string) error
		CreateLesson(actor user.User, moduleID string, nl NewLesson) (Lesson, error)
		GetLesson(actor user.User, id string) (Lesson, error)
		UpdateLesson(actor user.User, id string, nl NewLesson) (Lesson, error)
		DeleteLesson(actor user.User, id string) error
		CreateResource(actor user.User, courseID string, nr NewCourseResource) (CourseResource, error)
		DeleteResource(actor user.User, id string) error
	}

	service struct {
		repo       Repository
		enrollRepo EnrollmentRepository
		pol        *policy.Engine
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, enrollRepo EnrollmentRepository, pol *policy.Engine) Service {
	return &service{
		repo:       repo,
		enrollRepo: enrollRepo,
		pol:        pol,
	}
}

// public catalog

func (svc *service) Subjects() ([]Subject, error) {
	return svc.repo.QuerySubjects()
}

func (svc *service) GetSubject(id string) (Subject, error) {
	return svc.repo.GetSubjectByID(id)
}

func (svc *service) Courses(filter CourseFilter) ([]Course, error) {
	return svc.repo.QueryCourses(filter)
}

func (svc *service) GetCourse(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *service) Modules(courseID string) ([]Module, error) {
	return svc.repo.QueryModulesByCourse(courseID)
}

func (svc *service) Lessons(moduleID string) ([]Lesson, error) {
	return svc.repo.QueryLessonsByModule(moduleID)
}

func (svc *service) LearningTools(category string) ([]LearningTool, error) {
	return svc.repo.QueryLearningTools(category)
}

func (svc *service) GetLearningTool(id string) (LearningTool, error) {
	return svc.repo.GetLearningToolByID(id)
}

func (svc *service) Resources(courseID string) ([]CourseResource, error) {
	return svc.repo.QueryResourcesByCourse(courseID)
}

// subjects

func (svc *service) CreateSubject(actor user.User, ns NewSubject) (Subject, error) {
	if err := svc.pol.Authorize(actor, policy.ActionCreate, policy.ResourceSubject, policy.Target{}); err != nil {
		return Subject{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateSubject(Subject{
		Name:        ns.Name,
		Description: ns.Description,
		Category:    ns.Category,
		IconClass:   ns.IconClass,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) UpdateSubject(actor user.User, id string, ns NewSubject) (Subject, error) {
	if err := svc.pol.Authorize(actor, policy.ActionUpdate, policy.ResourceSubject, policy.Target{}); err != nil {
		return Subject{}, err
	}
	sub, err := svc.repo.GetSubjectByID(id)
	if err != nil {
		return Subject{}, err
	}
	sub.Name = ns.Name
	sub.Description = ns.Description
	sub.Category = ns.Category
	sub.IconClass = ns.IconClass
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(sub)
}

func (svc *service) DeleteSubject(actor user.User, id string) error {
	if err := svc.pol.Authorize(actor, policy.ActionDelete, policy.ResourceSubject, policy.Target{}); err != nil {
		return err
	}
	return svc.repo.DeleteSubject(id)
}

// courses

func (svc *service) CreateCourse(actor user.User, nc NewCourse) (Course, error) {
	err := svc.pol.Authorize(
		actor, policy.ActionCreate, policy.ResourceCourse,
		policy.Target{CourseTeacherID: nc.TeacherID},
		"you can only create courses for yourself as a teacher",
	)
	if err != nil {
		return Course{}, err
	}
	if err := svc.checkCodeUniqueness(nc.Code); err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateCourse(Course{
		Name:        nc.Name,
		Code:        nc.Code,
		Description: nc.Description,
		SubjectID:   nc.SubjectID,
		TeacherID:   nc.TeacherID,
		Image:       nc.Image,
		StartDate:   nc.StartDate,
		EndDate:     nc.EndDate,
		IsActive:    true,
		Level:       nc.Level,
		CreditHours: nc.CreditHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) checkCodeUniqueness(code string, exclCourses ...Course) error {
	if err := svc.repo.CheckCodeUniqueness(code, exclCourses...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) UpdateCourse(actor user.User, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	err = svc.pol.Authorize(
		actor, policy.ActionUpdate, policy.ResourceCourse,
		policy.Target{CourseTeacherID: crs.TeacherID},
		"you don't have permission to update this course",
	)
	if err != nil {
		return Course{}, err
	}

	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.SubjectID != "" {
		crs.SubjectID = uc.SubjectID
	}
	if uc.Image != "" {
		crs.Image = uc.Image
	}
	if uc.StartDate != nil {
		crs.StartDate = uc.StartDate
	}
	if uc.EndDate != nil {
		crs.EndDate = uc.EndDate
	}
	if uc.IsActive != nil {
		crs.IsActive = *uc.IsActive
	}
	if uc.Level != "" {
		crs.Level = uc.Level
	}
	if uc.CreditHours != nil {
		crs.CreditHours = *uc.CreditHours
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(crs)
}

func (svc *service) DeleteCourse(actor user.User, id string) error {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return err
	}
	err = svc.pol.Authorize(
		actor, policy.ActionDelete, policy.ResourceCourse,
		policy.Target{CourseTeacherID: crs.TeacherID},
		"you don't have permission to delete this course",
	)
	if err != nil {
		return err
	}
	return svc.repo.DeleteCourse(id)
}

// modules & lessons

func (svc *service) authorizeContent(actor user.User, action policy.Action, courseID, msg string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return Course{}, err
	}
	err = svc.pol.Authorize(actor, action, policy.ResourceCourseContent, policy.Target{CourseTeacherID: crs.TeacherID}, msg)
	if err != nil {
		return Course{}, err
	}
	return crs, nil
}

func (svc *service) CreateModule(actor user.User, courseID string, nm NewModule) (Module, error) {
	if _, err := svc.authorizeContent(actor, policy.ActionCreate, courseID, "you don't have permission to add modules to this course"); err != nil {
		return Module{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateModule(Module{
		CourseID:    courseID,
		Title:       nm.Title,
		Description: nm.Description,
		Order:       nm.Order,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) UpdateModule(actor user.User, id string, nm NewModule) (Module, error) {
	mod, err := svc.repo.GetModuleByID(id)
	if err != nil {
		return Module{}, err
	}
	if _, err = svc.authorizeContent(actor, policy.ActionUpdate, mod.CourseID, "you don't have permission to update this module"); err != nil {
		return Module{}, err
	}
	mod.Title = nm.Title
	mod.Description = nm.Description
	mod.Order = nm.Order
	mod.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateModule(mod)
}

func (svc *service) DeleteModule(actor user.User, id string) error {
	mod, err := svc.repo.GetModuleByID(id)
	if err != nil {
		return err
	}
	if _, err = svc.authorizeContent(actor, policy.ActionDelete, mod.CourseID, "you don't have permission to delete this module"); err != nil {
		return err
	}
	return svc.repo.DeleteModule(id)
}

func (svc *service) CreateLesson(actor user.User, moduleID string, nl NewLesson) (Lesson, error) {
	mod, err := svc.repo.GetModuleByID(moduleID)
	if err != nil {
		return Lesson{}, err
	}
	if _, err = svc.authorizeContent(actor, policy.ActionCreate, mod.CourseID, "you don't have permission to add lessons to this module"); err != nil {
		return Lesson{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateLesson(Lesson{
		ModuleID:        moduleID,
		Title:           nl.Title,
		Content:         nl.Content,
		Order:           nl.Order,
		VideoURL:        nl.VideoURL,
		DurationMinutes: nl.DurationMinutes,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// GetLesson applies the lesson visibility rule: staff and the owning teacher
// always see it; students only when the course is active and they hold an
// active enrollment in it.
func (svc *service) GetLesson(actor user.User, id string) (Lesson, error) {
	les, err := svc.repo.GetLessonByID(id)
	if err != nil {
		return Lesson{}, err
	}
	mod, err := svc.repo.GetModuleByID(les.ModuleID)
	if err != nil {
		return Lesson{}, err
	}
	crs, err := svc.repo.GetCourseByID(mod.CourseID)
	if err != nil {
		return Lesson{}, err
	}

	denied := core.NewPermissionDeniedError("you don't have permission to view this lesson")
	if !crs.IsActive {
		return Lesson{}, denied
	}
	if actor.IsStaff() || crs.TeacherID == actor.ID {
		return les, nil
	}
	enrolled, err := svc.enrollRepo.IsActivelyEnrolled(actor.ID, crs.ID)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return Lesson{}, denied
	}
	return les, nil
}

func (svc *service) UpdateLesson(actor user.User, id string, nl NewLesson) (Lesson, error) {
	les, err := svc.repo.GetLessonByID(id)
	if err != nil {
		return Lesson{}, err
	}
	mod, err := svc.repo.GetModuleByID(les.ModuleID)
	if err != nil {
		return Lesson{}, err
	}
	if _, err = svc.authorizeContent(actor, policy.ActionUpdate, mod.CourseID, "you don't have permission to update this lesson"); err != nil {
		return Lesson{}, err
	}
	les.Title = nl.Title
	les.Content = nl.Content
	les.Order = nl.Order
	les.VideoURL = nl.VideoURL
	les.DurationMinutes = nl.DurationMinutes
	les.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(les)
}

func (svc *service) DeleteLesson(actor user.User, id string) error {
	les, err := svc.repo.GetLessonByID(id)
	if err != nil {
		return err
	}
	mod, err := svc.repo.GetModuleByID(les.ModuleID)
	if err != nil {
		return err
	}
	if _, err = svc.authorizeContent(actor, policy.ActionDelete, mod.CourseID, "you don't have permission to delete this lesson"); err != nil {
		return err
	}
	return svc.repo.DeleteLesson(id)
}

// learning tools

func (svc *service) CreateLearningTool(actor user.User, nt NewLearningTool) (LearningTool, error) {
	if err := svc.pol.Authorize(actor, policy.ActionCreate, policy.ResourceLearningTool, policy.Target{}); err != nil {
		return LearningTool{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateLearningTool(LearningTool{
		Name:        nt.Name,
		Description: nt.Description,
		Category:    nt.Category,
		URL:         nt.URL,
		IconClass:   nt.IconClass,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) UpdateLearningTool(actor user.User, id string, nt NewLearningTool) (LearningTool, error) {
	if err := svc.pol.Authorize(actor, policy.ActionUpdate, policy.ResourceLearningTool, policy.Target{}); err != nil {
		return LearningTool{}, err
	}
	tool, err := svc.repo.GetLearningToolByID(id)
	if err != nil {
		return LearningTool{}, err
	}
	tool.Name = nt.Name
	tool.Description = nt.Description
	tool.Category = nt.Category
	tool.URL = nt.URL
	tool.IconClass = nt.IconClass
	tool.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLearningTool(tool)
}

func (svc *service) DeactivateLearningTool(actor user.User, id string) error {
	if err := svc.pol.Authorize(actor, policy.ActionDelete, policy.ResourceLearningTool, policy.Target{}); err != nil {
		return err
	}
	tool, err := svc.repo.GetLearningToolByID(id)
	if err != nil {
		return err
	}
	tool.IsActive = false
	tool.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateLearningTool(tool)
	return err
}

// resources

func (svc *service) CreateResource(actor user.User, courseID string, nr NewCourseResource) (CourseResource, error) {
	if _, err := svc.authorizeContent(actor, policy.ActionCreate, courseID, "you don't have permission to add resources to this course"); err != nil {
		return CourseResource{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateResource(CourseResource{
		CourseID:     courseID,
		Title:        nr.Title,
		Description:  nr.Description,
		File:         nr.File,
		URL:          nr.URL,
		ResourceType: nr.ResourceType,
		IsRequired:   nr.IsRequired,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *service) DeleteResource(actor user.User, id string) error {
	res, err := svc.repo.GetResourceByID(id)
	if err != nil {
		return err
	}
	if _, err = svc.authorizeContent(actor, policy.ActionDelete, res.CourseID, "you don't have permission to delete this resource"); err != nil {
		return err
	}
	return svc.repo.DeleteResource(id)
}
