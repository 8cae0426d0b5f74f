package inmemdb

import (
	"sync"

	"github.com/esakris/techiekraft/core/assignment"
	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/forum"
	"github.com/esakris/techiekraft/core/lab"
	"github.com/esakris/techiekraft/core/messaging"
	"github.com/esakris/techiekraft/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		enrollment *enrollmentTable
		assignment *assignmentTable
		forum      *forumTable
		messaging  *messagingTable
		lab        *labTable
	}

	userTable struct {
		sync.RWMutex
		users map[string]*user.User
		// children maps a parent ID to the set of their child IDs.
		children map[string]map[string]bool
	}

	courseTable struct {
		sync.RWMutex
		subjects  map[string]*course.Subject
		courses   map[string]*course.Course
		modules   map[string]*course.Module
		lessons   map[string]*course.Lesson
		tools     map[string]*course.LearningTool
		resources map[string]*course.CourseResource
	}

	enrollmentTable struct {
		sync.RWMutex
		enrollments map[string]*course.Enrollment
	}

	assignmentTable struct {
		sync.RWMutex
		assignments     map[string]*assignment.Assignment
		assignmentFiles map[string]*assignment.AssignmentFile
		submissions     map[string]*assignment.Submission
		submissionFiles map[string]*assignment.SubmissionFile
		quizzes         map[string]*assignment.Quiz
		questions       map[string]*assignment.Question
		answers         map[string]*assignment.Answer
		studentAnswers  map[string]*assignment.StudentAnswer
	}

	forumTable struct {
		sync.RWMutex
		categories    map[string]*forum.Category
		topics        map[string]*forum.Topic
		posts         map[string]*forum.Post
		attachments   map[string]*forum.Attachment
		subscriptions map[string]*forum.Subscription
		reactions     map[string]*forum.Reaction
		polls         map[string]*forum.Poll
		pollChoices   map[string]*forum.PollChoice
		pollVotes     map[string]*forum.PollVote
	}

	messagingTable struct {
		sync.RWMutex
		messages      map[string]*messaging.Message
		conversations map[string]*messaging.Conversation
		groupMessages map[string]*messaging.GroupMessage
		attachments   map[string]*messaging.Attachment
		notifications map[string]*messaging.Notification
	}

	labTable struct {
		sync.RWMutex
		labs        map[string]*lab.VirtualLab
		sessions    map[string]*lab.Session
		results     map[string]*lab.Result
		workshops   map[string]*lab.Workshop
		writings    map[string]*lab.WritingSubmission
		peerReviews map[string]*lab.PeerReview

		languageTools map[string]*lab.LanguageTool
		mathTools     map[string]*lab.MathTool
		events        map[string]*lab.ScheduleEvent
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{
			users:    make(map[string]*user.User),
			children: make(map[string]map[string]bool),
		},
		course: &courseTable{
			subjects:  make(map[string]*course.Subject),
			courses:   make(map[string]*course.Course),
			modules:   make(map[string]*course.Module),
			lessons:   make(map[string]*course.Lesson),
			tools:     make(map[string]*course.LearningTool),
			resources: make(map[string]*course.CourseResource),
		},
		enrollment: &enrollmentTable{
			enrollments: make(map[string]*course.Enrollment),
		},
		assignment: &assignmentTable{
			assignments:     make(map[string]*assignment.Assignment),
			assignmentFiles: make(map[string]*assignment.AssignmentFile),
			submissions:     make(map[string]*assignment.Submission),
			submissionFiles: make(map[string]*assignment.SubmissionFile),
			quizzes:         make(map[string]*assignment.Quiz),
			questions:       make(map[string]*assignment.Question),
			answers:         make(map[string]*assignment.Answer),
			studentAnswers:  make(map[string]*assignment.StudentAnswer),
		},
		forum: &forumTable{
			categories:    make(map[string]*forum.Category),
			topics:        make(map[string]*forum.Topic),
			posts:         make(map[string]*forum.Post),
			attachments:   make(map[string]*forum.Attachment),
			subscriptions: make(map[string]*forum.Subscription),
			reactions:     make(map[string]*forum.Reaction),
			polls:         make(map[string]*forum.Poll),
			pollChoices:   make(map[string]*forum.PollChoice),
			pollVotes:     make(map[string]*forum.PollVote),
		},
		messaging: &messagingTable{
			messages:      make(map[string]*messaging.Message),
			conversations: make(map[string]*messaging.Conversation),
			groupMessages: make(map[string]*messaging.GroupMessage),
			attachments:   make(map[string]*messaging.Attachment),
			notifications: make(map[string]*messaging.Notification),
		},
		lab: &labTable{
			labs:        make(map[string]*lab.VirtualLab),
			sessions:    make(map[string]*lab.Session),
			results:     make(map[string]*lab.Result),
			workshops:   make(map[string]*lab.Workshop),
			writings:    make(map[string]*lab.WritingSubmission),
			peerReviews: make(map[string]*lab.PeerReview),

			languageTools: make(map[string]*lab.LanguageTool),
			mathTools:     make(map[string]*lab.MathTool),
			events:        make(map[string]*lab.ScheduleEvent),
		},
	}
	return db, nil
}
