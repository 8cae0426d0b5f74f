package inmemdb

import (
	"strings"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}
	for _, usr := range repo.query() {
		if strings.EqualFold(usr.Email, email) && !excluded[usr.ID] {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.query() {
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(usr.FirstName), s) &&
				!strings.Contains(strings.ToLower(usr.LastName), s) &&
				!strings.Contains(strings.ToLower(usr.Email), s) {
				continue
			}
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		origUsr.IsActive = *isActive
	}
	origUsr.Email = usr.Email
	origUsr.FirstName = usr.FirstName
	origUsr.LastName = usr.LastName
	origUsr.Role = usr.Role
	origUsr.ProfileImage = usr.ProfileImage
	origUsr.DateOfBirth = usr.DateOfBirth
	origUsr.PhoneNumber = usr.PhoneNumber
	origUsr.Bio = usr.Bio
	origUsr.SubjectSpecialization = usr.SubjectSpecialization
	origUsr.YearsOfExperience = usr.YearsOfExperience
	origUsr.GradeLevel = usr.GradeLevel
	origUsr.UpdatedAt = usr.UpdatedAt
	origUsr.LastLogin = usr.LastLogin

	repo.db.users[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.users, id)
		delete(repo.db.children, id)
		for _, kids := range repo.db.children {
			delete(kids, id)
		}
	}
	return nil
}

func (repo *userRepository) AddChild(parentID, childID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	kids, ok := repo.db.children[parentID]
	if !ok {
		kids = make(map[string]bool)
		repo.db.children[parentID] = kids
	}
	kids[childID] = true
	return nil
}

func (repo *userRepository) GetChildren(parentID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	children := make([]user.User, 0)
	for childID := range repo.db.children[parentID] {
		if usr, ok := repo.db.users[childID]; ok {
			children = append(children, *usr)
		}
	}
	return children, nil
}

func (repo *userRepository) IsChildOf(parentID, childID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.children[parentID][childID], nil
}
