package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/esakris/techiekraft/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)

	core.Validate.RegisterStructValidation(registerStructValidation, RegisterUser{})
	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.Validate.RegisterStructValidation(changePasswordStructValidation, ChangePassword{})
	core.Validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

type (
	RegisterUser struct {
		Email           string `json:"email" validate:"required,email"`
		FirstName       string `json:"first_name" validate:"required"`
		LastName        string `json:"last_name" validate:"required"`
		Role            string `json:"role" validate:"required,role"`
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
		GradeLevel      string `json:"grade_level"`
		PhoneNumber     string `json:"phone_number"`
	}

	NewUser struct {
		Email     string `json:"email" validate:"required,email"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Role      string `json:"role" validate:"required,role"`
		Password  string `json:"password" validate:"required"`
	}

	UpdateUser struct {
		Email     string `json:"email" validate:"omitempty,email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role" validate:"omitempty,role"`
		Password  string `json:"password"`
		IsActive  *bool  `json:"is_active"`
	}

	ProfileUpdate struct {
		FirstName             string     `json:"first_name"`
		LastName              string     `json:"last_name"`
		ProfileImage          string     `json:"profile_image"`
		DateOfBirth           *time.Time `json:"date_of_birth"`
		PhoneNumber           string     `json:"phone_number"`
		Bio                   string     `json:"bio"`
		SubjectSpecialization string     `json:"subject_specialization"`
		YearsOfExperience     *int       `json:"years_of_experience"`
		GradeLevel            string     `json:"grade_level"`
	}

	ChangePassword struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}

	ResetUserPassword struct {
		UID      string `json:"uid" validate:"required"`
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
)

func (ru *RegisterUser) Validate() error {
	ru.Email = core.CleanString(ru.Email, true)
	ru.FirstName = core.CleanString(ru.FirstName)
	ru.LastName = core.CleanString(ru.LastName)
	return core.Validate.Struct(ru)
}

func (nu *NewUser) Validate() error {
	nu.Email = core.CleanString(nu.Email, true)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	return core.Validate.Struct(nu)
}

func (uu *UpdateUser) Validate() error {
	uu.Email = core.CleanString(uu.Email, true)
	return core.Validate.Struct(uu)
}

func (pu *ProfileUpdate) Validate() error {
	return core.Validate.Struct(pu)
}

func (cp *ChangePassword) Validate() error {
	return core.Validate.Struct(cp)
}

func (rp *ResetUserPassword) Validate() error {
	return core.Validate.Struct(rp)
}

// Custom Validators

// roleValidation checks that the provided role is in AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	return IsValidRole(fl.Field().String())
}

func registerStructValidation(sl validator.StructLevel) {
	ru := sl.Current().Interface().(RegisterUser)
	validatePassword(ru.Password, ru.FirstName+" "+ru.LastName, ru.Email, sl)
}

func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	validatePassword(nu.Password, nu.FirstName+" "+nu.LastName, nu.Email, sl)
}

func changePasswordStructValidation(sl validator.StructLevel) {
	cp := sl.Current().Interface().(ChangePassword)
	validatePassword(cp.NewPassword, "", "", sl)
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	rp := sl.Current().Interface().(ResetUserPassword)
	validatePassword(rp.Password, "", "", sl)
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	// - minLen: 8
	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		// - no whitespace
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
	}
}
