package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/assignment"
	"github.com/esakris/techiekraft/core/user"
)

type assignmentApi struct {
	svc     assignment.Service
	userSvc user.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc assignment.Service, userSvc user.Service) {
	api := assignmentApi{svc: svc, userSvc: userSvc}

	g.POST("/courses/:id/assignments", api.create, jwt)

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.list)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.GET("/:id/files", api.files)
	ag.POST("/:id/files", api.addFile)
	ag.POST("/:id/submissions", api.submit)
	ag.POST("/:id/quiz", api.createQuiz)
	ag.GET("/:id/quiz", api.retrieveQuiz)

	sg := g.Group("/submissions", jwt)
	sg.GET("", api.submissions)
	sg.GET("/:id", api.retrieveSubmission)
	sg.POST("/:id/files", api.addSubmissionFile)
	sg.POST("/:id/grade", api.grade)
	sg.GET("/:id/answers", api.answers)

	qg := g.Group("/quizzes", jwt)
	qg.POST("/:id/questions", api.addQuestion)
	qg.GET("/:id/questions", api.questions)

	g.POST("/questions/:id/answers", api.addAnswer, jwt)
	g.POST("/answers/:id/grade", api.gradeAnswer, jwt)
}

// assignments

func (api *assignmentApi) list(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(assignment.AssignmentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}

	assignments, err := api.svc.List(actor, *filter)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	asg, err := api.svc.Get(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asg, err := api.svc.Create(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asg, err := api.svc.Update(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Delete(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) files(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	files, err := api.svc.Files(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying assignment files")
	}
	if files == nil {
		files = []assignment.AssignmentFile{}
	}
	return ctx.JSON(http.StatusOK, files)
}

func (api *assignmentApi) addFile(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewAssignmentFile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignmentFile")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	file, err := api.svc.AddFile(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding assignment file")
	}
	return ctx.JSON(http.StatusCreated, file)
}

// submissions

func (api *assignmentApi) submissions(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(assignment.SubmissionFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Submission{})
	}

	submissions, err := api.svc.Submissions(actor, *filter)
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	if submissions == nil {
		submissions = []assignment.Submission{}
	}
	return ctx.JSON(http.StatusOK, submissions)
}

func (api *assignmentApi) retrieveSubmission(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sub, err := api.svc.GetSubmission(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Submit(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) addSubmissionFile(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewSubmissionFile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmissionFile")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	file, err := api.svc.AddSubmissionFile(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding submission file")
	}
	return ctx.JSON(http.StatusCreated, file)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Grade(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

// quiz

func (api *assignmentApi) createQuiz(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	quiz, err := api.svc.CreateQuiz(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, quiz)
}

func (api *assignmentApi) retrieveQuiz(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	quiz, err := api.svc.GetQuiz(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding quiz")
	}
	return ctx.JSON(http.StatusOK, quiz)
}

func (api *assignmentApi) addQuestion(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	question, err := api.svc.AddQuestion(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, question)
}

func (api *assignmentApi) questions(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	questions, err := api.svc.Questions(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []assignment.QuestionWithAnswers{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *assignmentApi) addAnswer(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	answer, err := api.svc.AddAnswer(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding answer")
	}
	return ctx.JSON(http.StatusCreated, answer)
}

func (api *assignmentApi) answers(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	answers, err := api.svc.Answers(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying answers")
	}
	if answers == nil {
		answers = []assignment.StudentAnswer{}
	}
	return ctx.JSON(http.StatusOK, answers)
}

func (api *assignmentApi) gradeAnswer(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.GradeAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeAnswer")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	answer, err := api.svc.GradeAnswer(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading answer")
	}
	return ctx.JSON(http.StatusOK, answer)
}
