package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/assignment"
)

type assignmentRepository struct {
	db          *assignmentTable
	courses     *courseTable
	enrollments *enrollmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.assignment, courses: db.course, enrollments: db.enrollment}
}

// assignments

func (repo *assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(filter assignment.AssignmentFilter) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]assignment.Assignment, 0)
	for _, a := range repo.db.assignments {
		if filter.CourseID != "" && a.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.TeacherID != "" && !repo.taughtBy(a.CourseID, filter.TeacherID) {
			continue
		}
		if filter.EnrolledStudentID != "" && !repo.activelyEnrolled(filter.EnrolledStudentID, a.CourseID) {
			continue
		}
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].DueDate.Before(assignments[j].DueDate) })
	return assignments, nil
}

func (repo *assignmentRepository) taughtBy(courseID, teacherID string) bool {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	crs, ok := repo.courses.courses[courseID]
	return ok && crs.TeacherID == teacherID
}

func (repo *assignmentRepository) activelyEnrolled(studentID, courseID string) bool {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	for _, enr := range repo.enrollments.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID && enr.IsActive {
			return true
		}
	}
	return false
}

func (repo *assignmentRepository) GetAssignmentByID(id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrAssignmentNotFound
}

func (repo *assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrAssignmentNotFound
	}
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.assignments, id)
	for fileID, f := range repo.db.assignmentFiles {
		if f.AssignmentID == id {
			delete(repo.db.assignmentFiles, fileID)
		}
	}
	for subID, sub := range repo.db.submissions {
		if sub.AssignmentID == id {
			repo.deleteSubmissionTree(subID)
		}
	}
	for quizID, qz := range repo.db.quizzes {
		if qz.AssignmentID == id {
			repo.deleteQuizTree(quizID)
		}
	}
	return nil
}

func (repo *assignmentRepository) deleteSubmissionTree(id string) {
	delete(repo.db.submissions, id)
	for fileID, f := range repo.db.submissionFiles {
		if f.SubmissionID == id {
			delete(repo.db.submissionFiles, fileID)
		}
	}
	for saID, sa := range repo.db.studentAnswers {
		if sa.SubmissionID == id {
			delete(repo.db.studentAnswers, saID)
		}
	}
}

func (repo *assignmentRepository) deleteQuizTree(id string) {
	delete(repo.db.quizzes, id)
	for qnID, qn := range repo.db.questions {
		if qn.QuizID != id {
			continue
		}
		for ansID, ans := range repo.db.answers {
			if ans.QuestionID == qnID {
				delete(repo.db.answers, ansID)
			}
		}
		delete(repo.db.questions, qnID)
	}
}

func (repo *assignmentRepository) CreateAssignmentFile(f assignment.AssignmentFile) (assignment.AssignmentFile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = uuid.New().String()
	repo.db.assignmentFiles[f.ID] = &f
	return f, nil
}

func (repo *assignmentRepository) QueryAssignmentFiles(assignmentID string) ([]assignment.AssignmentFile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	files := make([]assignment.AssignmentFile, 0)
	for _, f := range repo.db.assignmentFiles {
		if f.AssignmentID == assignmentID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.Before(files[j].CreatedAt) })
	return files, nil
}

// submissions

func (repo *assignmentRepository) CreateSubmission(s assignment.Submission) (assignment.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == s.AssignmentID && sub.StudentID == s.StudentID && sub.AttemptNumber == s.AttemptNumber {
			return assignment.Submission{}, assignment.ErrDuplicateAttempt
		}
	}
	s.ID = uuid.New().String()
	repo.db.submissions[s.ID] = &s
	return s, nil
}

func (repo *assignmentRepository) QuerySubmissions(filter assignment.SubmissionFilter) ([]assignment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var studentSet map[string]bool
	if len(filter.StudentIDs) > 0 {
		studentSet = make(map[string]bool, len(filter.StudentIDs))
		for _, id := range filter.StudentIDs {
			studentSet[id] = true
		}
	}

	subs := make([]assignment.Submission, 0)
	for _, s := range repo.db.submissions {
		if filter.AssignmentID != "" && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		if studentSet != nil && !studentSet[s.StudentID] {
			continue
		}
		if filter.TeacherID != "" {
			a, ok := repo.db.assignments[s.AssignmentID]
			if !ok || !repo.taughtBy(a.CourseID, filter.TeacherID) {
				continue
			}
		}
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *assignmentRepository) GetSubmissionByID(id string) (assignment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.submissions[id]; ok {
		return *s, nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) UpdateSubmission(s assignment.Submission) (assignment.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.submissions[s.ID]; !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	repo.db.submissions[s.ID] = &s
	return s, nil
}

func (repo *assignmentRepository) CreateSubmissionFile(f assignment.SubmissionFile) (assignment.SubmissionFile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = uuid.New().String()
	repo.db.submissionFiles[f.ID] = &f
	return f, nil
}

func (repo *assignmentRepository) QuerySubmissionFiles(submissionID string) ([]assignment.SubmissionFile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	files := make([]assignment.SubmissionFile, 0)
	for _, f := range repo.db.submissionFiles {
		if f.SubmissionID == submissionID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.Before(files[j].CreatedAt) })
	return files, nil
}

// quiz tree

func (repo *assignmentRepository) CreateQuiz(qz assignment.Quiz) (assignment.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	qz.ID = uuid.New().String()
	repo.db.quizzes[qz.ID] = &qz
	return qz, nil
}

func (repo *assignmentRepository) GetQuizByID(id string) (assignment.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return *qz, nil
	}
	return assignment.Quiz{}, assignment.ErrQuizNotFound
}

func (repo *assignmentRepository) GetQuizByAssignment(assignmentID string) (assignment.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, qz := range repo.db.quizzes {
		if qz.AssignmentID == assignmentID {
			return *qz, nil
		}
	}
	return assignment.Quiz{}, assignment.ErrQuizNotFound
}

func (repo *assignmentRepository) UpdateQuiz(qz assignment.Quiz) (assignment.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.quizzes[qz.ID]; !ok {
		return assignment.Quiz{}, assignment.ErrQuizNotFound
	}
	repo.db.quizzes[qz.ID] = &qz
	return qz, nil
}

func (repo *assignmentRepository) CreateQuestion(qn assignment.Question) (assignment.Question, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	qn.ID = uuid.New().String()
	repo.db.questions[qn.ID] = &qn
	return qn, nil
}

func (repo *assignmentRepository) QueryQuestions(quizID string) ([]assignment.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	questions := make([]assignment.Question, 0)
	for _, qn := range repo.db.questions {
		if qn.QuizID == quizID {
			questions = append(questions, *qn)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}

func (repo *assignmentRepository) GetQuestionByID(id string) (assignment.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qn, ok := repo.db.questions[id]; ok {
		return *qn, nil
	}
	return assignment.Question{}, assignment.ErrQuestionNotFound
}

func (repo *assignmentRepository) CreateAnswer(a assignment.Answer) (assignment.Answer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.answers[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryAnswers(questionID string) ([]assignment.Answer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	answers := make([]assignment.Answer, 0)
	for _, a := range repo.db.answers {
		if a.QuestionID == questionID {
			answers = append(answers, *a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].Order < answers[j].Order })
	return answers, nil
}

func (repo *assignmentRepository) GetAnswerByID(id string) (assignment.Answer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.answers[id]; ok {
		return *a, nil
	}
	return assignment.Answer{}, assignment.ErrAnswerNotFound
}

func (repo *assignmentRepository) CreateStudentAnswer(sa assignment.StudentAnswer) (assignment.StudentAnswer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sa.ID = uuid.New().String()
	repo.db.studentAnswers[sa.ID] = &sa
	return sa, nil
}

func (repo *assignmentRepository) QueryStudentAnswers(submissionID string) ([]assignment.StudentAnswer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	answers := make([]assignment.StudentAnswer, 0)
	for _, sa := range repo.db.studentAnswers {
		if sa.SubmissionID == submissionID {
			answers = append(answers, *sa)
		}
	}
	return answers, nil
}

func (repo *assignmentRepository) GetStudentAnswerByID(id string) (assignment.StudentAnswer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sa, ok := repo.db.studentAnswers[id]; ok {
		return *sa, nil
	}
	return assignment.StudentAnswer{}, assignment.ErrAnswerNotFound
}

func (repo *assignmentRepository) UpdateStudentAnswer(sa assignment.StudentAnswer) (assignment.StudentAnswer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.studentAnswers[sa.ID]; !ok {
		return assignment.StudentAnswer{}, assignment.ErrAnswerNotFound
	}
	repo.db.studentAnswers[sa.ID] = &sa
	return sa, nil
}
