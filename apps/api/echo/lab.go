package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/lab"
	"github.com/esakris/techiekraft/core/user"
)

type labApi struct {
	svc     lab.Service
	userSvc user.Service
}

func registerLabAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc lab.Service, userSvc user.Service) {
	api := labApi{svc: svc, userSvc: userSvc}

	lg := g.Group("/labs", jwt)
	lg.GET("", api.labs)
	lg.POST("", api.createLab)
	lg.GET("/:id", api.retrieveLab)
	lg.DELETE("/:id", api.destroyLab)
	lg.POST("/:id/sessions", api.startSession)
	lg.GET("/:id/sessions", api.sessions)

	sg := g.Group("/lab-sessions", jwt)
	sg.GET("", api.mySessions)
	sg.POST("/:id/end", api.endSession)
	sg.GET("/:id/results", api.results)
	sg.POST("/:id/results", api.addResult)

	g.POST("/lab-results/:id/grade", api.gradeResult, jwt)

	wg := g.Group("/workshops", jwt)
	wg.GET("", api.workshops)
	wg.POST("", api.createWorkshop)
	wg.GET("/:id", api.retrieveWorkshop)
	wg.DELETE("/:id", api.destroyWorkshop)
	wg.GET("/:id/submissions", api.writingSubmissions)
	wg.POST("/:id/submissions", api.submitWriting)

	wsg := g.Group("/writing-submissions", jwt)
	wsg.PUT("/:id", api.updateWriting)
	wsg.POST("/:id/grade", api.gradeWriting)
	wsg.GET("/:id/reviews", api.reviews)
	wsg.POST("/:id/reviews", api.review)

	ltg := g.Group("/language-tools", jwt)
	ltg.GET("", api.languageTools)
	ltg.POST("", api.createLanguageTool, staffMiddleware())
	ltg.DELETE("/:id", api.deactivateLanguageTool, staffMiddleware())

	mtg := g.Group("/math-tools", jwt)
	mtg.GET("", api.mathTools)
	mtg.POST("", api.createMathTool, staffMiddleware())
	mtg.DELETE("/:id", api.deactivateMathTool, staffMiddleware())

	eg := g.Group("/schedule", jwt)
	eg.GET("", api.events)
	eg.POST("", api.createEvent)
	eg.PUT("/:id", api.updateEvent)
	eg.DELETE("/:id", api.destroyEvent)
}

// virtual labs

func (api *labApi) labs(ctx echo.Context) error {
	filter := new(lab.LabFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []lab.VirtualLab{})
	}

	labs, err := api.svc.Labs(*filter)
	if err != nil {
		return errors.Wrap(err, "querying labs")
	}
	if labs == nil {
		labs = []lab.VirtualLab{}
	}
	return ctx.JSON(http.StatusOK, labs)
}

func (api *labApi) retrieveLab(ctx echo.Context) error {
	vl, err := api.svc.GetLab(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding lab")
	}
	return ctx.JSON(http.StatusOK, vl)
}

func (api *labApi) createLab(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewVirtualLab
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVirtualLab")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	vl, err := api.svc.CreateLab(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating lab")
	}
	return ctx.JSON(http.StatusCreated, vl)
}

func (api *labApi) destroyLab(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteLab(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting lab")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// sessions

func (api *labApi) startSession(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sess, err := api.svc.StartSession(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *labApi) endSession(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.EndSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EndSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sess, err := api.svc.EndSession(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "ending session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *labApi) sessions(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sessions, err := api.svc.Sessions(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []lab.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *labApi) mySessions(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sessions, err := api.svc.MySessions(actor)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []lab.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *labApi) addResult(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.AddResult(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *labApi) results(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	results, err := api.svc.Results(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []lab.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *labApi) gradeResult(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.GradeResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeResult")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.GradeResult(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading result")
	}
	return ctx.JSON(http.StatusOK, res)
}

// writing workshops

func (api *labApi) workshops(ctx echo.Context) error {
	workshops, err := api.svc.Workshops(ctx.QueryParam("course_id"))
	if err != nil {
		return errors.Wrap(err, "querying workshops")
	}
	if workshops == nil {
		workshops = []lab.Workshop{}
	}
	return ctx.JSON(http.StatusOK, workshops)
}

func (api *labApi) retrieveWorkshop(ctx echo.Context) error {
	ws, err := api.svc.GetWorkshop(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding workshop")
	}
	return ctx.JSON(http.StatusOK, ws)
}

func (api *labApi) createWorkshop(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewWorkshop
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkshop")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ws, err := api.svc.CreateWorkshop(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating workshop")
	}
	return ctx.JSON(http.StatusCreated, ws)
}

func (api *labApi) destroyWorkshop(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteWorkshop(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting workshop")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *labApi) submitWriting(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewWritingSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWritingSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.SubmitWriting(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting writing")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *labApi) updateWriting(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.UpdateWritingSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWritingSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.UpdateWriting(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating writing submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *labApi) writingSubmissions(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	subs, err := api.svc.WritingSubmissions(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying writing submissions")
	}
	if subs == nil {
		subs = []lab.WritingSubmission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *labApi) gradeWriting(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.GradeWriting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeWriting")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.GradeWriting(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading writing submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *labApi) review(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewPeerReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPeerReview")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rev, err := api.svc.Review(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding peer review")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

func (api *labApi) reviews(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reviews, err := api.svc.Reviews(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying peer reviews")
	}
	if reviews == nil {
		reviews = []lab.PeerReview{}
	}
	return ctx.JSON(http.StatusOK, reviews)
}

// study tools

func (api *labApi) languageTools(ctx echo.Context) error {
	tools, err := api.svc.LanguageTools()
	if err != nil {
		return errors.Wrap(err, "querying language tools")
	}
	if tools == nil {
		tools = []lab.LanguageTool{}
	}
	return ctx.JSON(http.StatusOK, tools)
}

func (api *labApi) createLanguageTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewLanguageTool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLanguageTool")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.CreateLanguageTool(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating language tool")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *labApi) deactivateLanguageTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeactivateLanguageTool(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deactivating language tool")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *labApi) mathTools(ctx echo.Context) error {
	tools, err := api.svc.MathTools()
	if err != nil {
		return errors.Wrap(err, "querying math tools")
	}
	if tools == nil {
		tools = []lab.MathTool{}
	}
	return ctx.JSON(http.StatusOK, tools)
}

func (api *labApi) createMathTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewMathTool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMathTool")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.CreateMathTool(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating math tool")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *labApi) deactivateMathTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeactivateMathTool(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deactivating math tool")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// schedule

func (api *labApi) events(ctx echo.Context) error {
	filter := new(lab.EventFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []lab.ScheduleEvent{})
	}

	events, err := api.svc.ScheduleEvents(*filter)
	if err != nil {
		return errors.Wrap(err, "querying schedule events")
	}
	if events == nil {
		events = []lab.ScheduleEvent{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *labApi) createEvent(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.NewScheduleEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScheduleEvent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	e, err := api.svc.CreateEvent(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating schedule event")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *labApi) updateEvent(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lab.UpdateScheduleEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateScheduleEvent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	e, err := api.svc.UpdateEvent(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating schedule event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *labApi) destroyEvent(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteEvent(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting schedule event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
