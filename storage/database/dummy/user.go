package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}

	for _, usr := range repo.query() {
		if _, skip := excluded[usr.ID]; skip {
			continue
		}
		if usr.Username == username && username != "" {
			return user.ErrUsernameExists
		}
		if usr.Email == email && email != "" {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.table[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.query() {
		switch {
		case filter.Username != "" && usr.Username == filter.Username:
			return usr, nil
		case filter.Email != "" && usr.Email == filter.Email:
			return usr, nil
		case filter.UsernameOrEmail != "" &&
			(usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail):
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()

	if filter != nil {
		if filter.Search != "" {
			var filtered []user.User
			keyword := strings.ToLower(filter.Search)
			for _, u := range users {
				if strings.Contains(strings.ToLower(u.Username), keyword) ||
					strings.Contains(strings.ToLower(u.Email), keyword) ||
					strings.Contains(strings.ToLower(u.Name), keyword) {
					filtered = append(filtered, u)
				}
			}
			users = filtered
		}
		if users != nil && len(filter.Roles) > 0 {
			var filtered []user.User
			for _, u := range users {
				for _, r := range filter.Roles {
					if u.RoleStartsWith(r) {
						filtered = append(filtered, u)
						break
					}
				}
			}
			users = filtered
		}
		if users != nil && filter.IsActive != nil {
			var filtered []user.User
			for _, u := range users {
				if u.IsActive != nil && *u.IsActive == *filter.IsActive {
					filtered = append(filtered, u)
				}
			}
			users = filtered
		}
		if users != nil && !filter.CreatedFrom.IsZero() {
			var filtered []user.User
			timeUTC := filter.CreatedFrom.UTC()
			for _, u := range users {
				if !u.CreatedAt.Before(timeUTC) {
					filtered = append(filtered, u)
				}
			}
			users = filtered
		}
		if users != nil && !filter.CreatedTo.IsZero() {
			var filtered []user.User
			timeUTC := filter.CreatedTo.UTC()
			for _, u := range users {
				if !u.CreatedAt.After(timeUTC) {
					filtered = append(filtered, u)
				}
			}
			users = filtered
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// UpdateUser only saves set fields: zero-valued fields keep their stored values.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.Name != "" {
		origUsr.Name = usr.Name
	}
	if usr.Username != "" {
		origUsr.Username = usr.Username
	}
	if usr.Email != "" {
		origUsr.Email = usr.Email
	}
	if usr.IsActive != nil {
		origUsr.IsActive = usr.IsActive
	}
	if usr.Roles != nil {
		origUsr.Roles = usr.Roles
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if !usr.LastLogin.IsZero() {
		origUsr.LastLogin = usr.LastLogin
	}
	if !usr.UpdatedAt.IsZero() {
		origUsr.UpdatedAt = usr.UpdatedAt
	}
	return *origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
