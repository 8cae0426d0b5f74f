package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/esakris/techiekraft/core/course"
	"github.com/esakris/techiekraft/core/user"
)

func createCourse(t *testing.T, code string, teacherID string) course.Course {
	t.Helper()
	now := time.Now().UTC()
	crs, err := crsRepo.CreateCourse(course.Course{
		Name:      "Course " + code,
		Code:      code,
		TeacherID: teacherID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse(%s): %v", code, err)
	}
	return crs
}

func Test_enrollmentApi_enroll(t *testing.T) {
	teacher := createUser(t, "enr.prof@test.cd", user.RoleTeacher, "T3stPassw0rd!", true)
	student := createUser(t, "enr.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	crs := createCourse(t, "ENR1", teacher.ID)

	token := getToken(t, student)
	body := marchallObj(t, course.NewEnrollment{CourseID: crs.ID})

	// first enrollment creates
	req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var enr course.Enrollment
	if err := json.Unmarshal(rec.Body.Bytes(), &enr); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if enr.Version != 1 {
		t.Errorf("Version = %d, want 1", enr.Version)
	}

	// enrolling again while active conflicts
	req, rec = newAuthRequest(http.MethodPost, "/v1/enrollments", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}

	// unenroll (teacher), then re-enroll reactivates the same row with 200
	req, rec = newAuthRequest(http.MethodDelete, "/v1/enrollments/"+enr.ID, getToken(t, teacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/enrollments", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
	}
	var again course.Enrollment
	if err := json.Unmarshal(rec.Body.Bytes(), &again); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if again.ID != enr.ID {
		t.Errorf("reactivation created a new row: %q != %q", again.ID, enr.ID)
	}
}

func Test_enrollmentApi_patch(t *testing.T) {
	teacher := createUser(t, "patch.prof@test.cd", user.RoleTeacher, "T3stPassw0rd!", true)
	student := createUser(t, "patch.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	crs := createCourse(t, "PATCH1", teacher.ID)

	enr, err := enrRepo.CreateEnrollment(course.Enrollment{
		StudentID:  student.ID,
		CourseID:   crs.ID,
		EnrolledAt: time.Now().UTC(),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment(): %v", err)
	}

	path := "/v1/enrollments/" + enr.ID

	t.Run("student updates progress", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, student), []byte(`{"progress": 40}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got course.Enrollment
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if got.Progress != 40 {
			t.Errorf("Progress = %d, want 40", got.Progress)
		}
	})

	t.Run("student cannot sneak in a grade", func(t *testing.T) {
		// the whole payload is rejected, progress included
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, student), []byte(`{"progress": 80, "grade": "A"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusForbidden, rec.Body.String())
		}
		got, err := enrRepo.GetEnrollmentByID(enr.ID)
		if err != nil {
			t.Fatalf("GetEnrollmentByID(): %v", err)
		}
		if got.Progress == 80 || got.Grade == "A" {
			t.Error("rejected payload leaked into the enrollment")
		}
	})

	t.Run("teacher sets the grade", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, teacher), []byte(`{"grade": "B+"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got course.Enrollment
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if got.Grade != "B+" {
			t.Errorf("Grade = %q, want B+", got.Grade)
		}
	})

	t.Run("student cannot unenroll", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusForbidden, rec.Body.String())
		}
	})
}
