package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esakris/techiekraft/core/user"
)

type userRow struct {
	ID                    string    `db:"id"`
	Email                 string    `db:"email"`
	FirstName             string    `db:"first_name"`
	LastName              string    `db:"last_name"`
	Role                  string    `db:"role"`
	ProfileImage          string    `db:"profile_image"`
	DateOfBirth           null.Time `db:"date_of_birth"`
	PhoneNumber           string    `db:"phone_number"`
	Bio                   string    `db:"bio"`
	SubjectSpecialization string    `db:"subject_specialization"`
	YearsOfExperience     int       `db:"years_of_experience"`
	GradeLevel            string    `db:"grade_level"`
	IsActive              bool      `db:"is_active"`
	PasswordHash          []byte    `db:"password_hash"`
	CreatedAt             null.Time `db:"created_at"`
	UpdatedAt             null.Time `db:"updated_at"`
	LastLogin             null.Time `db:"last_login"`
}

func rowFromUser(usr user.User) userRow {
	return userRow{
		ID:                    usr.ID,
		Email:                 usr.Email,
		FirstName:             usr.FirstName,
		LastName:              usr.LastName,
		Role:                  usr.Role,
		ProfileImage:          usr.ProfileImage,
		DateOfBirth:           null.TimeFromPtr(usr.DateOfBirth),
		PhoneNumber:           usr.PhoneNumber,
		Bio:                   usr.Bio,
		SubjectSpecialization: usr.SubjectSpecialization,
		YearsOfExperience:     usr.YearsOfExperience,
		GradeLevel:            usr.GradeLevel,
		IsActive:              usr.IsActive,
		PasswordHash:          usr.PasswordHash,
		CreatedAt:             null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:             null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:             null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:                    row.ID,
		Email:                 row.Email,
		FirstName:             row.FirstName,
		LastName:              row.LastName,
		Role:                  row.Role,
		ProfileImage:          row.ProfileImage,
		DateOfBirth:           row.DateOfBirth.Ptr(),
		PhoneNumber:           row.PhoneNumber,
		Bio:                   row.Bio,
		SubjectSpecialization: row.SubjectSpecialization,
		YearsOfExperience:     row.YearsOfExperience,
		GradeLevel:            row.GradeLevel,
		IsActive:              row.IsActive,
		PasswordHash:          row.PasswordHash,
		CreatedAt:             row.CreatedAt.Time,
		UpdatedAt:             row.UpdatedAt.Time,
		LastLogin:             row.LastLogin.Time,
	}
}

func usersFromRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += " AND NOT (id = ANY($2))"
		args = append(args, pq.Array(ids))
	}
	q += ")"

	var exists bool
	if err := repo.db.Get(&exists, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

const userCols = `id, email, first_name, last_name, role, profile_image, date_of_birth, phone_number, bio,
subject_specialization, years_of_experience, grade_level, is_active, password_hash, created_at, updated_at, last_login`

func (repo userRepository) CreateUser(usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := rowFromUser(usr)
	q := `INSERT INTO "user" (` + userCols + `) VALUES (
:id, :email, :first_name, :last_name, :role, :profile_image, :date_of_birth, :phone_number, :bio,
:subject_specialization, :years_of_experience, :grade_level, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.toUser(), nil
}

func (repo userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT `+userCols+` FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return usersFromRows(rows), nil
}

func (repo userRepository) GetUserByID(id string) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT `+userCols+` FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByEmail(email string) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT `+userCols+` FROM "user" WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(first_name ILIKE %s OR last_name ILIKE %s OR email ILIKE %s)", p, p, p))
	}
	if filter.Role != "" {
		conds = append(conds, "role = "+arg(filter.Role))
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo))
	}

	q := `SELECT ` + userCols + ` FROM "user"`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []userRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return usersFromRows(rows), nil
}

func (repo userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}
	row := rowFromUser(usr)
	q := `UPDATE "user" SET
email = :email, first_name = :first_name, last_name = :last_name, role = :role, profile_image = :profile_image,
date_of_birth = :date_of_birth, phone_number = :phone_number, bio = :bio,
subject_specialization = :subject_specialization, years_of_experience = :years_of_experience,
grade_level = :grade_level, is_active = :is_active, password_hash = :password_hash,
updated_at = :updated_at, last_login = :last_login
WHERE id = :id`
	res, err := repo.db.NamedExec(q, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return row.toUser(), nil
}

func (repo userRepository) DeleteUsersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo userRepository) AddChild(parentID, childID string) error {
	q := `INSERT INTO user_child (parent_id, child_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := repo.db.Exec(q, parentID, childID); err != nil {
		return errors.Wrap(err, "adding child")
	}
	return nil
}

func (repo userRepository) GetChildren(parentID string) ([]user.User, error) {
	q := `SELECT ` + userCols + ` FROM "user"
WHERE id IN (SELECT child_id FROM user_child WHERE parent_id = $1) ORDER BY created_at`
	var rows []userRow
	if err := repo.db.Select(&rows, q, parentID); err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	return usersFromRows(rows), nil
}

func (repo userRepository) IsChildOf(parentID, childID string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM user_child WHERE parent_id = $1 AND child_id = $2)`
	if err := repo.db.Get(&exists, q, parentID, childID); err != nil {
		return false, errors.Wrap(err, "checking parent relation")
	}
	return exists, nil
}
