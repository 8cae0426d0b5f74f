package inmemdb

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db.course}
}

// subjects

func (repo *courseRepository) CreateSubject(sub course.Subject) (course.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = uuid.New().String()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *courseRepository) QuerySubjects() ([]course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]course.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

func (repo *courseRepository) GetSubjectByID(id string) (course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return course.Subject{}, course.ErrSubjectNotFound
}

func (repo *courseRepository) UpdateSubject(sub course.Subject) (course.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *courseRepository) DeleteSubject(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.subjects, id)
	return nil
}

// courses

func (repo *courseRepository) CheckCodeUniqueness(code string, excludedCourses ...course.Course) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedCourses))
	for _, crs := range excludedCourses {
		excluded[crs.ID] = true
	}
	for _, crs := range repo.db.courses {
		if crs.Code == code && !excluded[crs.ID] {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(filter course.CourseFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.db.courses {
		if filter.SubjectID != "" && crs.SubjectID != filter.SubjectID {
			continue
		}
		if filter.TeacherID != "" && crs.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Level != "" && crs.Level != filter.Level {
			continue
		}
		if filter.IsActive != nil && crs.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(crs.Name), s) &&
				!strings.Contains(strings.ToLower(crs.Code), s) &&
				!strings.Contains(strings.ToLower(crs.Description), s) {
				continue
			}
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.courses, id)
	for modID, mod := range repo.db.modules {
		if mod.CourseID != id {
			continue
		}
		for lesID, les := range repo.db.lessons {
			if les.ModuleID == modID {
				delete(repo.db.lessons, lesID)
			}
		}
		delete(repo.db.modules, modID)
	}
	for resID, res := range repo.db.resources {
		if res.CourseID == id {
			delete(repo.db.resources, resID)
		}
	}
	return nil
}

// modules & lessons

func (repo *courseRepository) CreateModule(mod course.Module) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mod.ID = uuid.New().String()
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *courseRepository) QueryModulesByCourse(courseID string) ([]course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]course.Module, 0)
	for _, mod := range repo.db.modules {
		if mod.CourseID == courseID {
			mods = append(mods, *mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	return mods, nil
}

func (repo *courseRepository) GetModuleByID(id string) (course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.modules[id]; ok {
		return *mod, nil
	}
	return course.Module{}, course.ErrModuleNotFound
}

func (repo *courseRepository) UpdateModule(mod course.Module) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[mod.ID]; !ok {
		return course.Module{}, course.ErrModuleNotFound
	}
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *courseRepository) DeleteModule(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.modules, id)
	for lesID, les := range repo.db.lessons {
		if les.ModuleID == id {
			delete(repo.db.lessons, lesID)
		}
	}
	return nil
}

func (repo *courseRepository) CreateLesson(les course.Lesson) (course.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	les.ID = uuid.New().String()
	repo.db.lessons[les.ID] = &les
	return les, nil
}

func (repo *courseRepository) QueryLessonsByModule(moduleID string) ([]course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := make([]course.Lesson, 0)
	for _, les := range repo.db.lessons {
		if les.ModuleID == moduleID {
			lessons = append(lessons, *les)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return lessons, nil
}

func (repo *courseRepository) GetLessonByID(id string) (course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if les, ok := repo.db.lessons[id]; ok {
		return *les, nil
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) UpdateLesson(les course.Lesson) (course.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.lessons[les.ID]; !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	repo.db.lessons[les.ID] = &les
	return les, nil
}

func (repo *courseRepository) DeleteLesson(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.lessons, id)
	return nil
}

// learning tools

func (repo *courseRepository) CreateLearningTool(tool course.LearningTool) (course.LearningTool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tool.ID = uuid.New().String()
	repo.db.tools[tool.ID] = &tool
	return tool, nil
}

func (repo *courseRepository) QueryLearningTools(category string) ([]course.LearningTool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tools := make([]course.LearningTool, 0)
	for _, tool := range repo.db.tools {
		if !tool.IsActive {
			continue
		}
		if category != "" && tool.Category != category {
			continue
		}
		tools = append(tools, *tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

func (repo *courseRepository) GetLearningToolByID(id string) (course.LearningTool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tool, ok := repo.db.tools[id]; ok {
		return *tool, nil
	}
	return course.LearningTool{}, course.ErrToolNotFound
}

func (repo *courseRepository) UpdateLearningTool(tool course.LearningTool) (course.LearningTool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tools[tool.ID]; !ok {
		return course.LearningTool{}, course.ErrToolNotFound
	}
	repo.db.tools[tool.ID] = &tool
	return tool, nil
}

// resources

func (repo *courseRepository) CreateResource(res course.CourseResource) (course.CourseResource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	res.ID = uuid.New().String()
	repo.db.resources[res.ID] = &res
	return res, nil
}

func (repo *courseRepository) QueryResourcesByCourse(courseID string) ([]course.CourseResource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	resources := make([]course.CourseResource, 0)
	for _, res := range repo.db.resources {
		if res.CourseID == courseID {
			resources = append(resources, *res)
		}
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].CreatedAt.Before(resources[j].CreatedAt) })
	return resources, nil
}

func (repo *courseRepository) GetResourceByID(id string) (course.CourseResource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.resources[id]; ok {
		return *res, nil
	}
	return course.CourseResource{}, course.ErrResourceNotFound
}

func (repo *courseRepository) DeleteResource(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.resources, id)
	return nil
}
