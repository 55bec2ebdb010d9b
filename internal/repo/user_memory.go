package repo

import (
	"cmp"
	"context"
	"slices"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type InMemoryUserRepository struct {
	store *InMemoryStore
}

func (s memoryState) checkUnique(u models.User) error {
	for _, existing := range s.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	return nil
}

func (r *InMemoryUserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	defer lock(r.store, false)()
	st := &r.store.state

	u.ID = 0
	if err := st.checkUnique(u); err != nil {
		return models.User{}, err
	}
	u.ID = st.nextUserID
	st.nextUserID++
	st.users = append(st.users, u)
	return u, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	defer lock(r.store, false)()

	for _, u := range r.store.state.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	defer lock(r.store, false)()

	for _, u := range r.store.state.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	defer lock(r.store, false)()

	users := slices.Clone(r.store.state.users)
	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	return users, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, u models.User) (models.User, error) {
	defer lock(r.store, false)()
	st := &r.store.state

	for i, existing := range st.users {
		if existing.ID != u.ID {
			continue
		}
		if err := st.checkUnique(u); err != nil {
			return models.User{}, err
		}
		u.CreatedAt = existing.CreatedAt
		st.users[i] = u
		return u, nil
	}
	return models.User{}, ErrUserNotFound
}

// Delete removes the user and their items; change logs keep their rows with
// the acting user cleared.
func (r *InMemoryUserRepository) Delete(ctx context.Context, id int64) error {
	defer lock(r.store, false)()
	st := &r.store.state

	idx := slices.IndexFunc(st.users, func(u models.User) bool { return u.ID == id })
	if idx < 0 {
		return ErrUserNotFound
	}
	st.users = slices.Delete(st.users, idx, idx+1)
	st.items = slices.DeleteFunc(st.items, func(it models.Item) bool { return it.OwnerID == id })
	for i := range st.logs {
		if st.logs[i].ChangedBy != nil && *st.logs[i].ChangedBy == id {
			st.logs[i].ChangedBy = nil
		}
	}
	return nil
}
