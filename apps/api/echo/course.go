package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/user"
)

type courseApi struct {
	svc     course.Service
	userSvc user.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, userSvc user.Service) {
	api := courseApi{svc: svc, userSvc: userSvc}

	// public catalog
	g.GET("/subjects", api.subjects)
	g.GET("/subjects/:id", api.retrieveSubject)
	g.GET("/courses", api.courses)
	g.GET("/courses/:id", api.retrieveCourse)
	g.GET("/courses/:id/modules", api.modules)
	g.GET("/courses/:id/resources", api.resources)
	g.GET("/modules/:id/lessons", api.lessons)

	// admin-only catalog management
	sg := g.Group("/subjects", jwt, staffMiddleware())
	sg.POST("", api.createSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)

	// tool reads require a login; management stays staff-only
	tg := g.Group("/tools", jwt)
	tg.GET("", api.tools)
	tg.GET("/:id", api.retrieveTool)
	tg.POST("", api.createTool, staffMiddleware())
	tg.PUT("/:id", api.updateTool, staffMiddleware())
	tg.DELETE("/:id", api.deactivateTool, staffMiddleware())

	// teacher / admin course management; ownership enforced in the service
	cg := g.Group("/courses", jwt)
	cg.POST("", api.createCourse)
	cg.PUT("/:id", api.updateCourse)
	cg.DELETE("/:id", api.destroyCourse)
	cg.POST("/:id/modules", api.createModule)
	cg.POST("/:id/resources", api.createResource)

	mg := g.Group("/modules", jwt)
	mg.PUT("/:id", api.updateModule)
	mg.DELETE("/:id", api.destroyModule)
	mg.POST("/:id/lessons", api.createLesson)

	lg := g.Group("/lessons", jwt)
	lg.GET("/:id", api.retrieveLesson)
	lg.PUT("/:id", api.updateLesson)
	lg.DELETE("/:id", api.destroyLesson)

	rg := g.Group("/resources", jwt)
	rg.DELETE("/:id", api.destroyResource)
}

// public catalog

func (api *courseApi) subjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects()
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []course.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *courseApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *courseApi) courses(ctx echo.Context) error {
	filter := new(course.CourseFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}

	courses, err := api.svc.Courses(*filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieveCourse(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) modules(ctx echo.Context) error {
	modules, err := api.svc.Modules(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if modules == nil {
		modules = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *courseApi) lessons(ctx echo.Context) error {
	lessons, err := api.svc.Lessons(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []course.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *courseApi) resources(ctx echo.Context) error {
	resources, err := api.svc.Resources(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []course.CourseResource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *courseApi) tools(ctx echo.Context) error {
	tools, err := api.svc.LearningTools(ctx.QueryParam("category"))
	if err != nil {
		return errors.Wrap(err, "querying learning tools")
	}
	if tools == nil {
		tools = []course.LearningTool{}
	}
	return ctx.JSON(http.StatusOK, tools)
}

func (api *courseApi) retrieveTool(ctx echo.Context) error {
	tool, err := api.svc.GetLearningTool(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding learning tool")
	}
	return ctx.JSON(http.StatusOK, tool)
}

// subjects (admin)

func (api *courseApi) createSubject(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *courseApi) updateSubject(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *courseApi) destroySubject(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteSubject(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// learning tools (admin)

func (api *courseApi) createTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewLearningTool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLearningTool")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tool, err := api.svc.CreateLearningTool(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating learning tool")
	}
	return ctx.JSON(http.StatusCreated, tool)
}

func (api *courseApi) updateTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewLearningTool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLearningTool")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tool, err := api.svc.UpdateLearningTool(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating learning tool")
	}
	return ctx.JSON(http.StatusOK, tool)
}

func (api *courseApi) deactivateTool(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeactivateLearningTool(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deactivating learning tool")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// courses

func (api *courseApi) createCourse(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) updateCourse(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.UpdateCourse(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroyCourse(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteCourse(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// modules & lessons

func (api *courseApi) createModule(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *courseApi) updateModule(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mod, err := api.svc.UpdateModule(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *courseApi) destroyModule(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteModule(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createLesson(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	les, err := api.svc.CreateLesson(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, les)
}

func (api *courseApi) retrieveLesson(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	les, err := api.svc.GetLesson(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding lesson")
	}
	return ctx.JSON(http.StatusOK, les)
}

func (api *courseApi) updateLesson(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	les, err := api.svc.UpdateLesson(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, les)
}

func (api *courseApi) destroyLesson(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteLesson(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// resources

func (api *courseApi) createResource(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewCourseResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseResource")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.CreateResource(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *courseApi) destroyResource(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteResource(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}
