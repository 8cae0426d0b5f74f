package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/course"
)

type enrollmentRepository struct {
	db      *enrollmentTable
	courses *courseTable
}

var _ course.EnrollmentRepository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment, courses: db.course}
}

func (repo *enrollmentRepository) CreateEnrollment(enr course.Enrollment) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr.ID = uuid.New().String()
	enr.Version = 1
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var studentSet map[string]bool
	if len(filter.StudentIDs) > 0 {
		studentSet = make(map[string]bool, len(filter.StudentIDs))
		for _, id := range filter.StudentIDs {
			studentSet[id] = true
		}
	}

	enrs := make([]course.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if filter.CourseID != "" && enr.CourseID != filter.CourseID {
			continue
		}
		if filter.StudentID != "" && enr.StudentID != filter.StudentID {
			continue
		}
		if studentSet != nil && !studentSet[enr.StudentID] {
			continue
		}
		if filter.TeacherID != "" && !repo.taughtBy(enr.CourseID, filter.TeacherID) {
			continue
		}
		enrs = append(enrs, *enr)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })
	return enrs, nil
}

func (repo *enrollmentRepository) taughtBy(courseID, teacherID string) bool {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	crs, ok := repo.courses.courses[courseID]
	return ok && crs.TeacherID == teacherID
}

func (repo *enrollmentRepository) GetEnrollmentByID(id string) (course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		return *enr, nil
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *enrollmentRepository) GetEnrollment(studentID, courseID string) (course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(enr course.Enrollment) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origEnr, ok := repo.db.enrollments[enr.ID]
	if !ok || origEnr.Version != enr.Version {
		return course.Enrollment{}, course.ErrStaleEnrollment
	}
	enr.Version++
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) IsActivelyEnrolled(studentID, courseID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID && enr.IsActive {
			return true, nil
		}
	}
	return false, nil
}
