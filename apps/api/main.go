package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/esakris/techiekraft/apps/api/echo"
	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/assignment"
	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/forum"
	"github.com/esakris/techiekraft/core/lab"
	"github.com/esakris/techiekraft/core/messaging"
	"github.com/esakris/techiekraft/core/policy"
	"github.com/esakris/techiekraft/core/user"
	emailsvc "github.com/esakris/techiekraft/services/email"
	logsvc "github.com/esakris/techiekraft/services/logger"
	"github.com/esakris/techiekraft/storage/database"
	sqlxrepos "github.com/esakris/techiekraft/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, core.Conf)

	if err := run(logger); err != nil {
		logger.Fatal("api: startup failed", err)
	}
}

func run(logger core.Logger) error {
	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	dbx := sqlx.NewDb(db, core.Conf.Database.Engine)

	// set up repositories
	userRepo := sqlxrepos.NewUserRepository(dbx)
	courseRepo := sqlxrepos.NewCourseRepository(dbx)
	enrollRepo := sqlxrepos.NewEnrollmentRepository(dbx)
	assignRepo := sqlxrepos.NewAssignmentRepository(dbx)
	forumRepo := sqlxrepos.NewForumRepository(dbx)
	msgRepo := sqlxrepos.NewMessagingRepository(dbx)
	labRepo := sqlxrepos.NewLabRepository(dbx)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	pol := policy.NewEngine(userRepo)
	courseDir := courseDirectory{courses: courseRepo, enrollments: enrollRepo}

	opts := &echoapi.Options{
		Address:       ":" + core.Conf.Server.Port,
		Logger:        logger,
		UserSvc:       user.NewService(userRepo, mailSvc, logger),
		CourseSvc:     course.NewService(courseRepo, enrollRepo, pol),
		EnrollmentSvc: course.NewEnrollmentService(enrollRepo, courseRepo, userRepo, pol),
		AssignmentSvc: assignment.NewService(assignRepo, courseDir, userRepo, pol),
		ForumSvc:      forum.NewService(forumRepo),
		MessagingSvc:  messaging.NewService(msgRepo, userRepo),
		LabSvc:        lab.NewService(labRepo),
	}

	// start API server
	app := echoapi.NewServer(opts)
	go app.Start()
	logger.Info("api: listening on " + opts.Address)

	select {
	case err := <-app.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-app.ShutdownSignal():
		logger.Info("api: shutdown started", sig)
		defer logger.Info("api: shutdown complete", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Shutdown(ctx); err != nil {
			app.Close()
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}

// courseDirectory exposes the slice of the catalog store that grading
// decisions need.
type courseDirectory struct {
	courses     course.Repository
	enrollments course.EnrollmentRepository
}

func (d courseDirectory) GetCourseInfo(id string) (assignment.CourseInfo, error) {
	crs, err := d.courses.GetCourseByID(id)
	if err != nil {
		return assignment.CourseInfo{}, err
	}
	return assignment.CourseInfo{ID: crs.ID, TeacherID: crs.TeacherID, IsActive: crs.IsActive}, nil
}

func (d courseDirectory) IsActivelyEnrolled(studentID, courseID string) (bool, error) {
	return d.enrollments.IsActivelyEnrolled(studentID, courseID)
}
