// Package memory keeps users in process memory. It backs tests and the
// "memory" database driver.
package memory

import (
	"context"
	"sync"

	"github.com/archetype/archetype/internal/core/criteria"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/storage/query"
)

type UserRepository struct {
	mu       sync.RWMutex
	users    []users.User
	compiler *query.Compiler
}

func NewUserRepository(compiler *query.Compiler) *UserRepository {
	if compiler == nil {
		compiler = query.NewCompiler(nil)
	}
	return &UserRepository{compiler: compiler}
}

func (r *UserRepository) Find(ctx context.Context, id users.UserID) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email users.EmailAddress) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// Save inserts user or replaces the stored user with the same id. Taking an
// email that belongs to another user fails with users.ErrUserExists.
func (r *UserRepository) Save(ctx context.Context, user *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := -1
	for i, u := range r.users {
		if u.Email == user.Email && u.ID != user.ID {
			return users.ErrUserExists
		}
		if u.ID == user.ID {
			at = i
		}
	}

	if at >= 0 {
		r.users[at] = *user
		return nil
	}
	r.users = append(r.users, *user)
	return nil
}

// Matching evaluates c against a snapshot of the stored users, in insertion
// order unless c orders them.
func (r *UserRepository) Matching(ctx context.Context, c *criteria.Criteria) ([]*users.User, error) {
	r.mu.RLock()
	snapshot := make([]users.User, len(r.users))
	copy(snapshot, r.users)
	r.mu.RUnlock()

	q, err := query.SearchByCriteria[users.User](r.compiler, query.FromSlice(snapshot), c)
	if err != nil {
		return nil, err
	}

	found, err := q.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*users.User, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
