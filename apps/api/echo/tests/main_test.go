package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	. "github.com/esakris/techiekraft/apps/api/echo"
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
	inmemdb "github.com/esakris/techiekraft/storage/database/inmem"
)

var (
	app     Server
	usrRepo user.Repository
	crsRepo course.Repository
	enrRepo course.EnrollmentRepository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// courseDirectory bridges the course repositories into the assignment
// service's lookups.
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

func TestMain(m *testing.M) {
	core.Conf.Debug = false // exercise the production error responses

	db, err := inmemdb.Open()
	if err != nil {
		log.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	enrRepo = inmemdb.NewEnrollmentRepository(db)
	assignRepo := inmemdb.NewAssignmentRepository(db)
	forumRepo := inmemdb.NewForumRepository(db)
	msgRepo := inmemdb.NewMessagingRepository(db)
	labRepo := inmemdb.NewLabRepository(db)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock()
	pol := policy.NewEngine(usrRepo)

	app = NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        user.NewServiceMock(usrRepo, mailSvc, logger),
		CourseSvc:      course.NewService(crsRepo, enrRepo, pol),
		EnrollmentSvc:  course.NewEnrollmentService(enrRepo, crsRepo, usrRepo, pol),
		AssignmentSvc:  assignment.NewService(assignRepo, courseDirectory{crsRepo, enrRepo}, usrRepo, pol),
		ForumSvc:       forum.NewService(forumRepo),
		MessagingSvc:   messaging.NewService(msgRepo, usrRepo),
		LabSvc:         lab.NewService(labRepo),
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createUser(t *testing.T, email, role, pwd string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
