package course

import (
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/policy"
	"github.com/esakris/techiekraft/core/user"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	// ErrStaleEnrollment reports a version mismatch on a version-checked
	// update. The caller reloads and retries.
	ErrStaleEnrollment = errors.New("enrollment was modified concurrently, please retry")
)

type (
	EnrollmentRepository interface {
		CreateEnrollment(enr Enrollment) (Enrollment, error)
		QueryEnrollments(filter EnrollmentFilter) ([]Enrollment, error)
		GetEnrollmentByID(id string) (Enrollment, error)
		// GetEnrollment returns the enrollment row for (studentID, courseID)
		// whether active or not.
		GetEnrollment(studentID, courseID string) (Enrollment, error)
		// UpdateEnrollment persists enr only if the stored version still
		// matches enr.Version, then bumps it; ErrStaleEnrollment otherwise.
		UpdateEnrollment(enr Enrollment) (Enrollment, error)
		IsActivelyEnrolled(studentID, courseID string) (bool, error)
	}

	// StudentDirectory is the slice of the user store enrollment needs.
	StudentDirectory interface {
		GetChildren(parentID string) ([]user.User, error)
		IsChildOf(parentID, childID string) (bool, error)
	}

	EnrollmentService interface {
		List(actor user.User, filter EnrollmentFilter) ([]Enrollment, error)
		Get(actor user.User, id string) (Enrollment, error)
		// Enroll creates an active enrollment, reactivating a previously
		// deactivated row when one exists. created reports whether a new row
		// was made.
		Enroll(actor user.User, ne NewEnrollment) (enr Enrollment, created bool, err error)
		Patch(actor user.User, id string, patch EnrollmentPatch) (Enrollment, error)
		Unenroll(actor user.User, id string) error
	}

	enrollmentService struct {
		repo     EnrollmentRepository
		courses  Repository
		students StudentDirectory
		pol      *policy.Engine
	}
)

var _ EnrollmentService = (*enrollmentService)(nil)

func NewEnrollmentService(repo EnrollmentRepository, courses Repository, students StudentDirectory, pol *policy.Engine) EnrollmentService {
	return &enrollmentService{
		repo:     repo,
		courses:  courses,
		students: students,
		pol:      pol,
	}
}

func (svc *enrollmentService) List(actor user.User, filter EnrollmentFilter) ([]Enrollment, error) {
	switch policy.ListScope(actor, policy.ResourceEnrollment) {
	case policy.ScopeAll:
		// staff list anything

	case policy.ScopeOwnCourses:
		if filter.CourseID != "" {
			crs, err := svc.courses.GetCourseByID(filter.CourseID)
			if err != nil {
				return nil, err
			}
			if crs.TeacherID != actor.ID {
				return nil, core.NewPermissionDeniedError("you can only view enrollments for your own courses")
			}
		} else {
			filter.TeacherID = actor.ID
		}

	case policy.ScopeOwn:
		if filter.StudentID != "" && filter.StudentID != actor.ID {
			return nil, core.NewPermissionDeniedError("you can only view your own enrollments")
		}
		filter.StudentID = actor.ID

	case policy.ScopeChildren:
		if filter.StudentID != "" {
			isChild, err := svc.students.IsChildOf(actor.ID, filter.StudentID)
			if err != nil {
				return nil, errors.Wrap(err, "resolving parent relation")
			}
			if !isChild {
				return nil, core.NewPermissionDeniedError("you can only view enrollments for your children")
			}
		} else {
			children, err := svc.students.GetChildren(actor.ID)
			if err != nil {
				return nil, errors.Wrap(err, "looking up children")
			}
			if len(children) == 0 {
				return []Enrollment{}, nil
			}
			ids := make([]string, 0, len(children))
			for _, child := range children {
				ids = append(ids, child.ID)
			}
			filter.StudentIDs = ids
		}

	default:
		return []Enrollment{}, nil
	}

	return svc.repo.QueryEnrollments(filter)
}

func (svc *enrollmentService) Get(actor user.User, id string) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollmentByID(id)
	if err != nil {
		return Enrollment{}, err
	}
	crs, err := svc.courses.GetCourseByID(enr.CourseID)
	if err != nil {
		return Enrollment{}, err
	}
	err = svc.pol.Authorize(actor, policy.ActionRead, policy.ResourceEnrollment, policy.Target{
		CourseTeacherID: crs.TeacherID,
		StudentID:       enr.StudentID,
	})
	if err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

func (svc *enrollmentService) Enroll(actor user.User, ne NewEnrollment) (Enrollment, bool, error) {
	studentID, err := svc.resolveStudent(actor, ne)
	if err != nil {
		return Enrollment{}, false, err
	}

	crs, err := svc.courses.GetCourseByID(ne.CourseID)
	if err != nil {
		return Enrollment{}, false, err
	}
	if !crs.IsActive {
		return Enrollment{}, false, core.NewValidationError(
			errors.New("this course is not currently active"),
			core.FieldError{Field: "course_id", Error: "this course is not currently active"},
		)
	}

	now := time.Now().UTC()

	existing, err := svc.repo.GetEnrollment(studentID, crs.ID)
	switch errors.Cause(err) {
	case nil:
		if existing.IsActive {
			return Enrollment{}, false, core.NewConflictError("student is already enrolled in this course")
		}
		// reactivate the same row, keeping the original enrollment date
		existing.IsActive = true
		existing.LastAccessed = now
		enr, err := svc.repo.UpdateEnrollment(existing)
		if err != nil {
			return Enrollment{}, false, svc.trapStaleErr(err)
		}
		return enr, false, nil

	case ErrEnrollmentNotFound:
		enr, err := svc.repo.CreateEnrollment(Enrollment{
			StudentID:    studentID,
			CourseID:     crs.ID,
			EnrolledAt:   now,
			LastAccessed: now,
			IsActive:     true,
		})
		if err != nil {
			return Enrollment{}, false, err
		}
		return enr, true, nil

	default:
		return Enrollment{}, false, errors.Wrap(err, "looking up enrollment")
	}
}

// resolveStudent decides whose enrollment is being created and enforces the
// per-role binding rules.
func (svc *enrollmentService) resolveStudent(actor user.User, ne NewEnrollment) (string, error) {
	switch {
	case actor.IsStudent():
		if ne.StudentID != "" && ne.StudentID != actor.ID {
			return "", core.NewPermissionDeniedError("you can only enroll yourself")
		}
		return actor.ID, nil

	case actor.IsParent():
		if ne.StudentID == "" {
			return "", errMissingStudentID()
		}
		isChild, err := svc.students.IsChildOf(actor.ID, ne.StudentID)
		if err != nil {
			return "", errors.Wrap(err, "resolving parent relation")
		}
		if !isChild {
			return "", core.NewPermissionDeniedError("you can only enroll your children")
		}
		return ne.StudentID, nil

	case actor.IsTeacher() || actor.IsStaff():
		if ne.StudentID == "" {
			return "", errMissingStudentID()
		}
		return ne.StudentID, nil
	}
	return "", core.NewPermissionDeniedError("you don't have permission to create this enrollment")
}

func errMissingStudentID() error {
	return core.NewValidationError(
		errors.New("student_id is required"),
		core.FieldError{Field: "student_id", Error: "student_id is required"},
	)
}

func (svc *enrollmentService) Patch(actor user.User, id string, patch EnrollmentPatch) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollmentByID(id)
	if err != nil {
		return Enrollment{}, err
	}
	crs, err := svc.courses.GetCourseByID(enr.CourseID)
	if err != nil {
		return Enrollment{}, err
	}

	msg := "you don't have permission to update this enrollment"
	switch {
	case actor.IsStudent():
		msg = "you can only update your own enrollments"
	case actor.IsTeacher() && !actor.IsStaff():
		msg = "you can only update enrollments for your own courses"
	}
	err = svc.pol.Authorize(actor, policy.ActionUpdate, policy.ResourceEnrollment, policy.Target{
		CourseTeacherID: crs.TeacherID,
		StudentID:       enr.StudentID,
	}, msg)
	if err != nil {
		return Enrollment{}, err
	}
	if err := policy.CheckEnrollmentPatch(actor, patch.Fields); err != nil {
		return Enrollment{}, err
	}

	if patch.Progress != nil {
		enr.Progress = *patch.Progress
		enr.LastAccessed = time.Now().UTC()
	}
	if patch.Grade != nil {
		enr.Grade = *patch.Grade
	}
	if patch.IsActive != nil {
		enr.IsActive = *patch.IsActive
	}
	if patch.CompletionDate != nil {
		enr.CompletionDate = patch.CompletionDate
	}

	enr, err = svc.repo.UpdateEnrollment(enr)
	if err != nil {
		return Enrollment{}, svc.trapStaleErr(err)
	}
	return enr, nil
}

// Unenroll deactivates the enrollment; the row stays for reactivation.
func (svc *enrollmentService) Unenroll(actor user.User, id string) error {
	enr, err := svc.repo.GetEnrollmentByID(id)
	if err != nil {
		return err
	}
	crs, err := svc.courses.GetCourseByID(enr.CourseID)
	if err != nil {
		return err
	}
	err = svc.pol.Authorize(actor, policy.ActionDelete, policy.ResourceEnrollment, policy.Target{
		CourseTeacherID: crs.TeacherID,
		StudentID:       enr.StudentID,
	}, "you don't have permission to delete this enrollment")
	if err != nil {
		return err
	}
	if !enr.IsActive {
		return nil
	}
	enr.IsActive = false
	if _, err = svc.repo.UpdateEnrollment(enr); err != nil {
		return svc.trapStaleErr(err)
	}
	return nil
}

func (svc *enrollmentService) trapStaleErr(err error) error {
	if errors.Cause(err) == ErrStaleEnrollment {
		return core.NewConflictError(ErrStaleEnrollment.Error())
	}
	return err
}
