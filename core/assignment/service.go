package assignment

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/policy"
	"github.com/esakris/techiekraft/core/user"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAnswerNotFound     = errors.New("answer not found")

	// ErrDuplicateAttempt reports a (assignment, student, attempt_number)
	// uniqueness violation on submission creation.
	ErrDuplicateAttempt = errors.New("a submission with this attempt number already exists")
)

type (
	// CourseInfo is the slice of course state grading decisions need.
	CourseInfo struct {
		ID        string
		TeacherID string
		IsActive  bool
	}

	// CourseDirectory resolves course ownership and enrollment without
	// binding this package to the catalog store.
	CourseDirectory interface {
		GetCourseInfo(id string) (CourseInfo, error)
		IsActivelyEnrolled(studentID, courseID string) (bool, error)
	}

	// StudentDirectory resolves the parent/child relation for list scoping.
	StudentDirectory interface {
		GetChildren(parentID string) ([]user.User, error)
		IsChildOf(parentID, childID string) (bool, error)
	}

	Repository interface {
		// assignments; deleting cascades files, quiz tree and submissions
		CreateAssignment(a Assignment) (Assignment, error)
		QueryAssignments(filter AssignmentFilter) ([]Assignment, error)
		GetAssignmentByID(id string) (Assignment, error)
		UpdateAssignment(a Assignment) (Assignment, error)
		DeleteAssignment(id string) error
		CreateAssignmentFile(f AssignmentFile) (AssignmentFile, error)
		QueryAssignmentFiles(assignmentID string) ([]AssignmentFile, error)

		// submissions
		CreateSubmission(s Submission) (Submission, error)
		QuerySubmissions(filter SubmissionFilter) ([]Submission, error)
		GetSubmissionByID(id string) (Submission, error)
		UpdateSubmission(s Submission) (Submission, error)
		CreateSubmissionFile(f SubmissionFile) (SubmissionFile, error)
		QuerySubmissionFiles(submissionID string) ([]SubmissionFile, error)

		// quiz tree
		CreateQuiz(q Quiz) (Quiz, error)
		GetQuizByID(id string) (Quiz, error)
		GetQuizByAssignment(assignmentID string) (Quiz, error)
		UpdateQuiz(q Quiz) (Quiz, error)
		CreateQuestion(q Question) (Question, error)
		QueryQuestions(quizID string) ([]Question, error)
		GetQuestionByID(id string) (Question, error)
		CreateAnswer(a Answer) (Answer, error)
		QueryAnswers(questionID string) ([]Answer, error)
		GetAnswerByID(id string) (Answer, error)
		CreateStudentAnswer(sa StudentAnswer) (StudentAnswer, error)
		QueryStudentAnswers(submissionID string) ([]StudentAnswer, error)
		GetStudentAnswerByID(id string) (StudentAnswer, error)
		UpdateStudentAnswer(sa StudentAnswer) (StudentAnswer, error)
	}

	Service interface {
		// assignments
		List(actor user.User, filter AssignmentFilter) ([]Assignment, error)
		Get(actor user.User, id string) (Assignment, error)
		Create(actor user.User, courseID string, na NewAssignment) (Assignment, error)
		Update(actor user.User, id string, ua UpdateAssignment) (Assignment, error)
		Delete(actor user.User, id string) error
		AddFile(actor user.User, assignmentID string, nf NewAssignmentFile) (AssignmentFile, error)
		Files(actor user.User, assignmentID string) ([]AssignmentFile, error)

		// submissions
		Submissions(actor user.User, filter SubmissionFilter) ([]Submission, error)
		GetSubmission(actor user.User, id string) (Submission, error)
		Submit(actor user.User, assignmentID string, ns NewSubmission) (Submission, error)
		AddSubmissionFile(actor user.User, submissionID string, nf NewSubmissionFile) (SubmissionFile, error)
		Grade(actor user.User, submissionID string, g GradeSubmission) (Submission, error)

		// quiz
		CreateQuiz(actor user.User, assignmentID string, nq NewQuiz) (Quiz, error)
		GetQuiz(actor user.User, assignmentID string) (Quiz, error)
		AddQuestion(actor user.User, quizID string, nq NewQuestion) (Question, error)
		AddAnswer(actor user.User, questionID string, na NewAnswer) (Answer, error)
		Questions(actor user.User, quizID string) ([]QuestionWithAnswers, error)
		Answers(actor user.User, submissionID string) ([]StudentAnswer, error)
		GradeAnswer(actor user.User, answerID string, ga GradeAnswer) (StudentAnswer, error)
	}

	service struct {
		repo     Repository
		courses  CourseDirectory
		students StudentDirectory
		pol      *policy.Engine
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courses CourseDirectory, students StudentDirectory, pol *policy.Engine) Service {
	return &service{
		repo:     repo,
		courses:  courses,
		students: students,
		pol:      pol,
	}
}

// assignments

func (svc *service) List(actor user.User, filter AssignmentFilter) ([]Assignment, error) {
	switch policy.ListScope(actor, policy.ResourceAssignment) {
	case policy.ScopeAll:

	case policy.ScopeOwnCourses:
		if filter.CourseID != "" {
			crs, err := svc.courses.GetCourseInfo(filter.CourseID)
			if err != nil {
				return nil, err
			}
			if crs.TeacherID != actor.ID {
				return nil, core.NewPermissionDeniedError("you can only view assignments for your own courses")
			}
		} else {
			filter.TeacherID = actor.ID
		}

	case policy.ScopeOwn:
		// students see published assignments in actively enrolled courses
		filter.Status = StatusPublished
		if filter.CourseID != "" {
			enrolled, err := svc.courses.IsActivelyEnrolled(actor.ID, filter.CourseID)
			if err != nil {
				return nil, errors.Wrap(err, "checking enrollment")
			}
			if !enrolled {
				return []Assignment{}, nil
			}
		} else {
			filter.EnrolledStudentID = actor.ID
		}

	default:
		return []Assignment{}, nil
	}

	return svc.repo.QueryAssignments(filter)
}

func (svc *service) Get(actor user.User, id string) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(id)
	if err != nil {
		return Assignment{}, err
	}
	if err = svc.authorizeRead(actor, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (svc *service) authorizeRead(actor user.User, a Assignment) error {
	crs, err := svc.courses.GetCourseInfo(a.CourseID)
	if err != nil {
		return err
	}
	tgt := policy.Target{
		CourseTeacherID: crs.TeacherID,
		Published:       a.IsPublished(),
	}
	if actor.IsStudent() {
		enrolled, err := svc.courses.IsActivelyEnrolled(actor.ID, a.CourseID)
		if err != nil {
			return errors.Wrap(err, "checking enrollment")
		}
		tgt.ActivelyEnrolled = enrolled
	}
	return svc.pol.Authorize(actor, policy.ActionRead, policy.ResourceAssignment, tgt,
		"you don't have permission to view this assignment")
}

// authorizeAuthor admits the course owner (or staff) for authoring actions on
// the assignment tree.
func (svc *service) authorizeAuthor(actor user.User, action policy.Action, courseID, msg string) error {
	crs, err := svc.courses.GetCourseInfo(courseID)
	if err != nil {
		return err
	}
	return svc.pol.Authorize(actor, action, policy.ResourceAssignment, policy.Target{CourseTeacherID: crs.TeacherID}, msg)
}

func (svc *service) Create(actor user.User, courseID string, na NewAssignment) (Assignment, error) {
	err := svc.authorizeAuthor(actor, policy.ActionCreate, courseID, "you can only create assignments for your own courses")
	if err != nil {
		return Assignment{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateAssignment(Assignment{
		CourseID:             courseID,
		Title:                na.Title,
		Description:          na.Description,
		Instructions:         na.Instructions,
		DueDate:              na.DueDate,
		TotalPoints:          na.TotalPoints,
		EstimatedTimeMinutes: na.EstimatedTimeMinutes,
		AllowedAttempts:      na.AllowedAttempts,
		CreatedByID:          actor.ID,
		Status:               StatusDraft,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
}

func (svc *service) Update(actor user.User, id string, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(id)
	if err != nil {
		return Assignment{}, err
	}
	err = svc.authorizeAuthor(actor, policy.ActionUpdate, a.CourseID, "you don't have permission to update this assignment")
	if err != nil {
		return Assignment{}, err
	}

	if ua.Status != "" && ua.Status != a.Status {
		if !a.CanTransitionTo(ua.Status) {
			err := fmt.Errorf("cannot change status from %s to %s", a.Status, ua.Status)
			return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
		}
		a.Status = ua.Status
	}
	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.Instructions != "" {
		a.Instructions = ua.Instructions
	}
	if ua.DueDate != nil {
		a.DueDate = *ua.DueDate
	}
	if ua.TotalPoints != nil {
		a.TotalPoints = *ua.TotalPoints
	}
	if ua.EstimatedTimeMinutes != nil {
		a.EstimatedTimeMinutes = *ua.EstimatedTimeMinutes
	}
	if ua.AllowedAttempts != nil {
		a.AllowedAttempts = *ua.AllowedAttempts
	}
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(a)
}

func (svc *service) Delete(actor user.User, id string) error {
	a, err := svc.repo.GetAssignmentByID(id)
	if err != nil {
		return err
	}
	err = svc.authorizeAuthor(actor, policy.ActionDelete, a.CourseID, "you don't have permission to delete this assignment")
	if err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(id)
}

func (svc *service) AddFile(actor user.User, assignmentID string, nf NewAssignmentFile) (AssignmentFile, error) {
	a, err := svc.repo.GetAssignmentByID(assignmentID)
	if err != nil {
		return AssignmentFile{}, err
	}
	err = svc.authorizeAuthor(actor, policy.ActionUpdate, a.CourseID, "you don't have permission to update this assignment")
	if err != nil {
		return AssignmentFile{}, err
	}
	return svc.repo.CreateAssignmentFile(AssignmentFile{
		AssignmentID: assignmentID,
		Title:        nf.Title,
		File:         nf.File,
		CreatedAt:    time.Now().UTC(),
	})
}

func (svc *service) Files(actor user.User, assignmentID string) ([]AssignmentFile, error) {
	a, err := svc.repo.GetAssignmentByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if err = svc.authorizeRead(actor, a); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentFiles(assignmentID)
}

// submissions

func (svc *service) Submissions(actor user.User, filter SubmissionFilter) ([]Submission, error) {
	switch policy.ListScope(actor, policy.ResourceSubmission) {
	case policy.ScopeAll:

	case policy.ScopeOwnCourses:
		if filter.AssignmentID != "" {
			a, err := svc.repo.GetAssignmentByID(filter.AssignmentID)
			if err != nil {
				return nil, err
			}
			crs, err := svc.courses.GetCourseInfo(a.CourseID)
			if err != nil {
				return nil, err
			}
			if crs.TeacherID != actor.ID {
				return nil, core.NewPermissionDeniedError("you can only view submissions for your own courses")
			}
		} else {
			filter.TeacherID = actor.ID
		}

	case policy.ScopeOwn:
		if filter.StudentID != "" && filter.StudentID != actor.ID {
			return nil, core.NewPermissionDeniedError("you can only view your own submissions")
		}
		filter.StudentID = actor.ID

	case policy.ScopeChildren:
		if filter.StudentID != "" {
			isChild, err := svc.students.IsChildOf(actor.ID, filter.StudentID)
			if err != nil {
				return nil, errors.Wrap(err, "resolving parent relation")
			}
			if !isChild {
				return nil, core.NewPermissionDeniedError("you can only view submissions for your children")
			}
		} else {
			children, err := svc.students.GetChildren(actor.ID)
			if err != nil {
				return nil, errors.Wrap(err, "looking up children")
			}
			if len(children) == 0 {
				return []Submission{}, nil
			}
			ids := make([]string, 0, len(children))
			for _, child := range children {
				ids = append(ids, child.ID)
			}
			filter.StudentIDs = ids
		}

	default:
		return []Submission{}, nil
	}

	return svc.repo.QuerySubmissions(filter)
}

func (svc *service) GetSubmission(actor user.User, id string) (Submission, error) {
	s, err := svc.repo.GetSubmissionByID(id)
	if err != nil {
		return Submission{}, err
	}
	if err = svc.authorizeSubmission(actor, policy.ActionRead, s, "you don't have permission to view this submission"); err != nil {
		return Submission{}, err
	}
	return s, nil
}

func (svc *service) authorizeSubmission(actor user.User, action policy.Action, s Submission, msg string) error {
	a, err := svc.repo.GetAssignmentByID(s.AssignmentID)
	if err != nil {
		return err
	}
	crs, err := svc.courses.GetCourseInfo(a.CourseID)
	if err != nil {
		return err
	}
	return svc.pol.Authorize(actor, action, policy.ResourceSubmission, policy.Target{
		CourseTeacherID: crs.TeacherID,
		StudentID:       s.StudentID,
	}, msg)
}

// Submit records a new attempt at the assignment. Quiz answers included in
// the payload are stored alongside; objective questions are auto-graded.
func (svc *service) Submit(actor user.User, assignmentID string, ns NewSubmission) (Submission, error) {
	a, err := svc.repo.GetAssignmentByID(assignmentID)
	if err != nil {
		return Submission{}, err
	}

	studentID := actor.ID
	if err := svc.pol.Authorize(actor, policy.ActionCreate, policy.ResourceSubmission, policy.Target{StudentID: studentID}); err != nil {
		return Submission{}, err
	}
	if !a.IsPublished() {
		return Submission{}, core.NewValidationError(
			errors.New("this assignment is not accepting submissions"),
			core.FieldError{Field: "assignment_id", Error: "this assignment is not accepting submissions"},
		)
	}
	if !actor.IsStaff() {
		enrolled, err := svc.courses.IsActivelyEnrolled(studentID, a.CourseID)
		if err != nil {
			return Submission{}, errors.Wrap(err, "checking enrollment")
		}
		if !enrolled {
			return Submission{}, core.NewPermissionDeniedError("you must be enrolled in this course to submit")
		}
	}
	if ns.AttemptNumber > a.AllowedAttempts {
		err := fmt.Errorf("this assignment allows at most %d attempts", a.AllowedAttempts)
		return Submission{}, core.NewValidationError(err, core.FieldError{Field: "attempt_number", Error: err.Error()})
	}

	sub := Submission{
		AssignmentID:  assignmentID,
		StudentID:     studentID,
		SubmittedAt:   time.Now().UTC(),
		TextResponse:  ns.TextResponse,
		Status:        SubmissionSubmitted,
		AttemptNumber: ns.AttemptNumber,
	}
	sub.RefreshStatus(a.DueDate)

	sub, err = svc.repo.CreateSubmission(sub)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateAttempt {
			return Submission{}, core.NewConflictError(ErrDuplicateAttempt.Error())
		}
		return Submission{}, err
	}

	for _, ans := range ns.Answers {
		if _, err := svc.recordAnswer(sub.ID, ans); err != nil {
			return Submission{}, err
		}
	}
	return sub, nil
}

// recordAnswer stores one quiz response, auto-grading objective question
// types: a selected answer flagged correct earns the full question points,
// anything else earns zero. Free-text types stay ungraded for the teacher.
func (svc *service) recordAnswer(submissionID string, ans NewStudentAnswer) (StudentAnswer, error) {
	q, err := svc.repo.GetQuestionByID(ans.QuestionID)
	if err != nil {
		return StudentAnswer{}, err
	}

	sa := StudentAnswer{
		SubmissionID:     submissionID,
		QuestionID:       q.ID,
		SelectedAnswerID: ans.SelectedAnswerID,
		TextAnswer:       ans.TextAnswer,
	}
	if q.IsObjective() && ans.SelectedAnswerID != "" {
		selected, err := svc.repo.GetAnswerByID(ans.SelectedAnswerID)
		if err != nil {
			return StudentAnswer{}, err
		}
		isCorrect := selected.IsCorrect
		points := 0.0
		if isCorrect {
			points = float64(q.Points)
		}
		sa.IsCorrect = &isCorrect
		sa.PointsEarned = &points
	}
	return svc.repo.CreateStudentAnswer(sa)
}

func (svc *service) AddSubmissionFile(actor user.User, submissionID string, nf NewSubmissionFile) (SubmissionFile, error) {
	s, err := svc.repo.GetSubmissionByID(submissionID)
	if err != nil {
		return SubmissionFile{}, err
	}
	if !actor.IsStaff() && s.StudentID != actor.ID {
		return SubmissionFile{}, core.NewPermissionDeniedError("you can only attach files to your own submissions")
	}
	if s.IsGraded() {
		return SubmissionFile{}, core.NewConflictError("this submission has already been graded")
	}
	return svc.repo.CreateSubmissionFile(SubmissionFile{
		SubmissionID: submissionID,
		Title:        nf.Title,
		File:         nf.File,
		CreatedAt:    time.Now().UTC(),
	})
}

// Grade scores a submission. graded_by and graded_at are set on the first
// grading only; later regrades keep the original grader on record.
func (svc *service) Grade(actor user.User, submissionID string, g GradeSubmission) (Submission, error) {
	s, err := svc.repo.GetSubmissionByID(submissionID)
	if err != nil {
		return Submission{}, err
	}
	if err = svc.authorizeSubmission(actor, policy.ActionGrade, s, "you can only grade submissions for your own courses"); err != nil {
		return Submission{}, err
	}

	a, err := svc.repo.GetAssignmentByID(s.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if *g.Score > float64(a.TotalPoints) {
		err := fmt.Errorf("score cannot exceed the assignment total of %d points", a.TotalPoints)
		return Submission{}, core.NewValidationError(err, core.FieldError{Field: "score", Error: err.Error()})
	}

	s.Score = g.Score
	s.Feedback = g.Feedback
	s.Status = g.Status
	if s.GradedAt == nil {
		now := time.Now().UTC()
		s.GradedByID = actor.ID
		s.GradedAt = &now
	}
	s.RefreshStatus(a.DueDate)
	return svc.repo.UpdateSubmission(s)
}

// quiz

func (svc *service) CreateQuiz(actor user.User, assignmentID string, nq NewQuiz) (Quiz, error) {
	a, err := svc.repo.GetAssignmentByID(assignmentID)
	if err != nil {
		return Quiz{}, err
	}
	err = svc.authorizeAuthor(actor, policy.ActionUpdate, a.CourseID, "you can only author quizzes for your own courses")
	if err != nil {
		return Quiz{}, err
	}
	return svc.repo.CreateQuiz(Quiz{
		AssignmentID:          assignmentID,
		TimeLimitMinutes:      nq.TimeLimitMinutes,
		RandomizeQuestions:    nq.RandomizeQuestions,
		ShowResultImmediately: nq.ShowResultImmediately,
		PassingScore:          nq.PassingScore,
	})
}

func (svc *service) GetQuiz(actor user.User, assignmentID string) (Quiz, error) {
	a, err := svc.repo.GetAssignmentByID(assignmentID)
	if err != nil {
		return Quiz{}, err
	}
	if err = svc.authorizeRead(actor, a); err != nil {
		return Quiz{}, err
	}
	return svc.repo.GetQuizByAssignment(assignmentID)
}

func (svc *service) quizCourse(quizID string) (Quiz, Assignment, error) {
	q, err := svc.repo.GetQuizByID(quizID)
	if err != nil {
		return Quiz{}, Assignment{}, err
	}
	a, err := svc.repo.GetAssignmentByID(q.AssignmentID)
	if err != nil {
		return Quiz{}, Assignment{}, err
	}
	return q, a, nil
}

func (svc *service) AddQuestion(actor user.User, quizID string, nq NewQuestion) (Question, error) {
	q, a, err := svc.quizCourse(quizID)
	if err != nil {
		return Question{}, err
	}
	err = svc.authorizeAuthor(actor, policy.ActionUpdate, a.CourseID, "you can only author quizzes for your own courses")
	if err != nil {
		return Question{}, err
	}
	return svc.repo.CreateQuestion(Question{
		QuizID:       q.ID,
		Text:         nq.Text,
		QuestionType: nq.QuestionType,
		Points:       nq.Points,
		Order:        nq.Order,
	})
}

func (svc *service) AddAnswer(actor user.User, questionID string, na NewAnswer) (Answer, error) {
	q, err := svc.repo.GetQuestionByID(questionID)
	if err != nil {
		return Answer{}, err
	}
	_, a, err := svc.quizCourse(q.QuizID)
	if err != nil {
		return Answer{}, err
	}
	err = svc.authorizeAuthor(actor, policy.ActionUpdate, a.CourseID, "you can only author quizzes for your own courses")
	if err != nil {
		return Answer{}, err
	}
	return svc.repo.CreateAnswer(Answer{
		QuestionID: questionID,
		Text:       na.Text,
		IsCorrect:  na.IsCorrect,
		Order:      na.Order,
	})
}

// Questions returns the quiz's question tree. Correctness flags are blanked
// for students so the quiz can be served for taking.
func (svc *service) Questions(actor user.User, quizID string) ([]QuestionWithAnswers, error) {
	_, a, err := svc.quizCourse(quizID)
	if err != nil {
		return nil, err
	}
	if err = svc.authorizeRead(actor, a); err != nil {
		return nil, err
	}

	questions, err := svc.repo.QueryQuestions(quizID)
	if err != nil {
		return nil, err
	}
	hideCorrect := actor.IsStudent() || actor.IsParent()

	res := make([]QuestionWithAnswers, 0, len(questions))
	for _, q := range questions {
		answers, err := svc.repo.QueryAnswers(q.ID)
		if err != nil {
			return nil, err
		}
		if hideCorrect {
			for i := range answers {
				answers[i].IsCorrect = false
			}
		}
		res = append(res, QuestionWithAnswers{Question: q, Answers: answers})
	}
	return res, nil
}

func (svc *service) Answers(actor user.User, submissionID string) ([]StudentAnswer, error) {
	s, err := svc.repo.GetSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}
	if err = svc.authorizeSubmission(actor, policy.ActionRead, s, "you don't have permission to view this submission"); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentAnswers(submissionID)
}

// GradeAnswer records manual points for a free-text answer. Answers freeze
// once their submission is graded.
func (svc *service) GradeAnswer(actor user.User, answerID string, ga GradeAnswer) (StudentAnswer, error) {
	sa, err := svc.repo.GetStudentAnswerByID(answerID)
	if err != nil {
		return StudentAnswer{}, err
	}
	s, err := svc.repo.GetSubmissionByID(sa.SubmissionID)
	if err != nil {
		return StudentAnswer{}, err
	}
	if err = svc.authorizeSubmission(actor, policy.ActionGrade, s, "you can only grade submissions for your own courses"); err != nil {
		return StudentAnswer{}, err
	}
	if s.IsGraded() {
		return StudentAnswer{}, core.NewConflictError("answers cannot be changed once the submission is graded")
	}

	sa.PointsEarned = ga.PointsEarned
	sa.IsCorrect = ga.IsCorrect
	return svc.repo.UpdateStudentAnswer(sa)
}
