package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleStudent      = "student"
	RoleTeacher      = "teacher"
	RoleAdminTeacher = "admin_teacher"
	RoleParent       = "parent"
	RoleAdmin        = "admin"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleAdminTeacher, RoleParent, RoleAdmin}

	// TeachingRoles may author content and grade.
	TeachingRoles = []string{RoleTeacher, RoleAdminTeacher}

	// StaffRoles are unrestricted across all resources.
	StaffRoles = []string{RoleAdmin, RoleAdminTeacher}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         string     `json:"role"`
	ProfileImage string     `json:"profile_image,omitempty"` // storage reference
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Bio          string     `json:"bio,omitempty"`

	// teacher fields
	SubjectSpecialization string `json:"subject_specialization,omitempty"`
	YearsOfExperience     int    `json:"years_of_experience,omitempty"`

	// student fields
	GradeLevel string `json:"grade_level,omitempty"`

	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsTeacher is true for admin teachers as well.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdminTeacher
}

func (u User) IsAdminTeacher() bool {
	return u.Role == RoleAdminTeacher
}

func (u User) IsParent() bool {
	return u.Role == RoleParent
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaff reports whether the user is unrestricted across all resources.
func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleAdminTeacher
}

type QueryFilter struct {
	Search      string     `json:"search" query:"search"`
	Role        string     `json:"role" query:"role"`
	IsActive    *bool      `json:"is_active" query:"is_active"`
	CreatedFrom time.Time  `json:"created_from" query:"created_from"`
	CreatedTo   time.Time  `json:"created_to" query:"created_to"`
}

func (f *QueryFilter) Clean() {
	f.Search = strings.TrimSpace(f.Search)
	f.Role = strings.TrimSpace(f.Role)
}

func (f QueryFilter) IsEmpty() bool {
	return f.Search == "" && f.Role == "" && f.IsActive == nil && f.CreatedFrom.IsZero() && f.CreatedTo.IsZero()
}
