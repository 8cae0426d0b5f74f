package echoapi

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/user"
)

type enrollmentApi struct {
	svc     course.EnrollmentService
	userSvc user.Service
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.EnrollmentService, userSvc user.Service) {
	api := enrollmentApi{svc: svc, userSvc: userSvc}

	eg := g.Group("/enrollments", jwt)
	eg.GET("", api.list)
	eg.POST("", api.enroll)
	eg.GET("/:id", api.retrieve)
	eg.PATCH("/:id", api.patch)
	eg.DELETE("/:id", api.unenroll)
}

func (api *enrollmentApi) list(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := course.EnrollmentFilter{
		CourseID:  ctx.QueryParam("course_id"),
		StudentID: ctx.QueryParam("student_id"),
	}
	enrollments, err := api.svc.List(actor, filter)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	if enrollments == nil {
		enrollments = []course.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	enr, created, err := api.svc.Enroll(actor, data)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	if created {
		return ctx.JSON(http.StatusCreated, enr)
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enr, err := api.svc.Get(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) patch(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// the per-role allow-list needs the exact set of keys present in the
	// payload, so the body is read once and decoded twice
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	var data course.EnrollmentPatch
	if err := json.Unmarshal(body, &data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	for key := range raw {
		data.Fields = append(data.Fields, key)
	}
	if err := data.Validate(); err != nil {
		return err
	}

	enr, err := api.svc.Patch(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "patching enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) unenroll(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Unenroll(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unenrolling")
	}
	return ctx.NoContent(http.StatusNoContent)
}
