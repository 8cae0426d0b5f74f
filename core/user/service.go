package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.FirstName,
		// User.LastName or User.Email.
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(user User, isActive *bool) (User, error)
		DeleteUsersByID(ids ...string) error

		// parent/child relation rows; unique (parentID, childID) pair
		AddChild(parentID, childID string) error
		GetChildren(parentID string) ([]User, error)
		IsChildOf(parentID, childID string) (bool, error)
	}

	Service interface {
		Register(ru RegisterUser) (User, error)
		Create(nu NewUser) (User, error)
		QueryAll() ([]User, error)
		Filter(filter QueryFilter) ([]User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		Update(id string, uu UpdateUser) (User, error)
		UpdateProfile(usr User, pu ProfileUpdate) (User, error)
		ChangePassword(usr User, cp ChangePassword) (User, error)
		SetLastLogin(usr User) (User, error)
		Teachers() ([]User, error)
		Students() ([]User, error)
		Children(parent User) ([]User, error)
		AddChild(parent User, childID string) error
		IsChildOf(parentID, childID string) (bool, error)
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) error
		Delete(ids ...string) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a self-service account. The role is fixed by the caller at
// creation time and is not mutable through the profile API.
func (svc *service) Register(ru RegisterUser) (User, error) {
	if ru.Password != ru.PasswordConfirm {
		return User{}, core.NewConflictError("password confirmation does not match")
	}
	if err := svc.checkUniqueness(ru.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Email:       core.CleanString(ru.Email, true),
		FirstName:   core.CleanString(ru.FirstName),
		LastName:    core.CleanString(ru.LastName),
		Role:        ru.Role,
		GradeLevel:  ru.GradeLevel,
		PhoneNumber: ru.PhoneNumber,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := usr.SetPassword(ru.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(usr)
}

// Create is the admin path: any role, no password confirmation.
func (svc *service) Create(nu NewUser) (User, error) {
	if err := svc.checkUniqueness(nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Email:     core.CleanString(nu.Email, true),
		FirstName: core.CleanString(nu.FirstName),
		LastName:  core.CleanString(nu.LastName),
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(usr)
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *service) Filter(filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(filter)
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true))
}

func (svc *service) Update(id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if uu.Email != "" && uu.Email != usr.Email {
		if err := svc.checkUniqueness(uu.Email, usr); err != nil {
			return User{}, err
		}
		usr.Email = core.CleanString(uu.Email, true)
	}
	if uu.FirstName != "" {
		usr.FirstName = core.CleanString(uu.FirstName)
	}
	if uu.LastName != "" {
		usr.LastName = core.CleanString(uu.LastName)
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr, uu.IsActive)
}

// UpdateProfile applies self-service profile changes. Email and role are
// read-only here; they only change through the admin path.
func (svc *service) UpdateProfile(usr User, pu ProfileUpdate) (User, error) {
	if pu.FirstName != "" {
		usr.FirstName = core.CleanString(pu.FirstName)
	}
	if pu.LastName != "" {
		usr.LastName = core.CleanString(pu.LastName)
	}
	if pu.ProfileImage != "" {
		usr.ProfileImage = pu.ProfileImage
	}
	if pu.DateOfBirth != nil {
		usr.DateOfBirth = pu.DateOfBirth
	}
	if pu.PhoneNumber != "" {
		usr.PhoneNumber = pu.PhoneNumber
	}
	if pu.Bio != "" {
		usr.Bio = pu.Bio
	}
	if pu.SubjectSpecialization != "" {
		usr.SubjectSpecialization = pu.SubjectSpecialization
	}
	if pu.YearsOfExperience != nil {
		usr.YearsOfExperience = *pu.YearsOfExperience
	}
	if pu.GradeLevel != "" {
		usr.GradeLevel = pu.GradeLevel
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *service) ChangePassword(usr User, cp ChangePassword) (User, error) {
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "old_password", Error: "wrong password"})
	}
	if err := usr.SetPassword(cp.NewPassword); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *service) Teachers() ([]User, error) {
	teachers := make([]User, 0)
	for _, role := range TeachingRoles {
		users, err := svc.repo.FilterUsers(QueryFilter{Role: role})
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, users...)
	}
	return teachers, nil
}

func (svc *service) Students() ([]User, error) {
	return svc.repo.FilterUsers(QueryFilter{Role: RoleStudent})
}

func (svc *service) Children(parent User) ([]User, error) {
	return svc.repo.GetChildren(parent.ID)
}

func (svc *service) AddChild(parent User, childID string) error {
	if parent.ID == childID {
		return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: "a user cannot be their own child"})
	}
	child, err := svc.repo.GetUserByID(childID)
	if err != nil {
		return err
	}
	if !child.IsStudent() {
		return core.NewValidationError(nil, core.FieldError{Field: "child_id", Error: "only students can be linked as children"})
	}
	return svc.repo.AddChild(parent.ID, childID)
}

func (svc *service) IsChildOf(parentID, childID string) (bool, error) {
	return svc.repo.IsChildOf(parentID, childID)
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr)
	if err != nil {
		svc.logger.Error("generating password reset token", err, usr)
		return
	}
	url := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", core.Conf.FrontendBaseURL, EncodeUID(usr), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject: "Password Reset",
		BodyStr: "You're receiving this email because you requested a password reset " +
			"for your user account.\n\nPlease go to the following page and choose a new password:\n" + url,
	})
}

func (svc *service) ResetPassword(rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "uid", Error: "invalid uid"})
	}
	usr, err := svc.repo.GetUserByID(uid)
	if err != nil {
		return err
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(usr, nil)
	return err
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteUsersByID(ids...)
}
