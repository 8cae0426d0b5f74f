package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/esakris/techiekraft/apps/api/echo"
	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/user"
)

func Test_userApi_login(t *testing.T) {
	student := createUser(t, "login.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	naughty := createUser(t, "login.ndog@test.cd", user.RoleStudent, "T3stPassw0rd!", false)

	login := func(email, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "required fields", body: marchallObj(t, echoapi.LoginRequest{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", body: login("who@test.cd", "x"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: login(student.Email, "nope"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: login(naughty.Email, "T3stPassw0rd!"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "success", body: login(student.Email, "T3stPassw0rd!"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	payload := func(email, role string) []byte {
		return marchallObj(t, user.RegisterUser{
			Email:           email,
			FirstName:       "New",
			LastName:        "Comer",
			Role:            role,
			Password:        "T3stPassw0rd!",
			PasswordConfirm: "T3stPassw0rd!",
		})
	}

	tests := []httpTest{
		{name: "student welcome", body: payload("reg.kid@test.cd", user.RoleStudent), wantCode: http.StatusCreated},
		{name: "parent welcome", body: payload("reg.mom@test.cd", user.RoleParent), wantCode: http.StatusCreated},
		{
			name: "admin role rejected", body: payload("reg.sneak@test.cd", user.RoleAdmin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "this role cannot be self-assigned"}),
		},
		{
			name: "admin_teacher role rejected", body: payload("reg.sneak2@test.cd", user.RoleAdminTeacher), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "this role cannot be self-assigned"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if !usr.IsActive {
					t.Error("registered user should be active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	student := createUser(t, "refresh.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	naughty := createUser(t, "refresh.ndog@test.cd", user.RoleStudent, "T3stPassw0rd!", false)

	// a token whose original issue date fell out of the refresh window
	now := time.Now()
	staleClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   student.ID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(),
		Email:        student.Email,
		Role:         student.Role,
	}
	staleToken, err := echoapi.GenerateToken(staleClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "refresh period expired", token: staleToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	student := createUser(t, "reset.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	successData := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		// same response whether the account exists or not
		{name: "unknown email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.cd"}), wantCode: http.StatusOK, wantData: successData},
		{name: "known email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: student.Email}), wantCode: http.StatusOK, wantData: successData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_adminGate(t *testing.T) {
	student := createUser(t, "gate.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	teacher := createUser(t, "gate.prof@test.cd", user.RoleTeacher, "T3stPassw0rd!", true)
	admin := createUser(t, "gate.boss@test.cd", user.RoleAdmin, "T3stPassw0rd!", true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "student denied", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "teacher denied", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "admin allowed", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_teachers(t *testing.T) {
	teacher := createUser(t, "catalog.prof@test.cd", user.RoleTeacher, "T3stPassw0rd!", true)

	// the teacher catalog is a public read, no token needed
	req, rec := newRequest(http.MethodGet, "/v1/users/teachers")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
	}
	var teachers []user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &teachers); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	found := false
	for _, usr := range teachers {
		if usr.ID == teacher.ID {
			found = true
			break
		}
	}
	if !found {
		t.Error("created teacher missing from the catalog")
	}
}

func Test_userApi_students(t *testing.T) {
	student := createUser(t, "roster.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)
	teacher := createUser(t, "roster.prof@test.cd", user.RoleTeacher, "T3stPassw0rd!", true)
	parent := createUser(t, "roster.mom@test.cd", user.RoleParent, "T3stPassw0rd!", true)
	if err := usrRepo.AddChild(parent.ID, student.ID); err != nil {
		t.Fatalf("AddChild(): %v", err)
	}

	list := func(t *testing.T, token string, wantCode int) []user.User {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/students", token)
		app.ServeHTTP(rec, req)
		if rec.Code != wantCode {
			t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, wantCode, rec.Body.String())
		}
		if wantCode != http.StatusOK {
			return nil
		}
		var students []user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		return students
	}

	t.Run("teacher sees every student", func(t *testing.T) {
		students := list(t, getToken(t, teacher), http.StatusOK)
		found := false
		for _, usr := range students {
			if usr.ID == student.ID {
				found = true
				break
			}
		}
		if !found {
			t.Error("student missing from the roster")
		}
	})

	t.Run("parent sees own children only", func(t *testing.T) {
		students := list(t, getToken(t, parent), http.StatusOK)
		if len(students) != 1 || students[0].ID != student.ID {
			t.Errorf("students = %d entries, want only the linked child", len(students))
		}
	})

	t.Run("student denied", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/students", getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "you don't have permission to view the student list"}),
		}, rec)
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/students")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})
}

func Test_userApi_profile(t *testing.T) {
	student := createUser(t, "me.kid@test.cd", user.RoleStudent, "T3stPassw0rd!", true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, student))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var usr user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if usr.ID != student.ID {
		t.Errorf("profile ID = %q, want %q", usr.ID, student.ID)
	}
}
