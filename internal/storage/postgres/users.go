package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/archetype/archetype/internal/core/criteria"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/storage/query"
)

const uniqueViolation = "23505"

var userTable = &Table[users.User]{
	Name:    "users",
	Columns: []string{"id", "email", "full_name", "password_hash", "status", "created_at"},
	Fields: map[string]string{
		"ID.Value":       "id",
		"Email.Value":    "email",
		"FullName.Value": "full_name",
		"Status":         "status",
		"CreatedAt":      "created_at",
	},
	Scan: scanUser,
}

type UserRepository struct {
	db       *Client
	compiler *query.Compiler
}

func NewUserRepository(db *Client, compiler *query.Compiler) *UserRepository {
	if compiler == nil {
		compiler = query.NewCompiler(nil)
	}
	return &UserRepository{db: db, compiler: compiler}
}

func (r *UserRepository) Find(ctx context.Context, id users.UserID) (*users.User, error) {
	stmt := `
		SELECT id, email, full_name, password_hash, status, created_at
		FROM users
		WHERE id = $1`

	return r.scanOne(r.db.DB.QueryRowContext(ctx, stmt, id.Value()))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email users.EmailAddress) (*users.User, error) {
	stmt := `
		SELECT id, email, full_name, password_hash, status, created_at
		FROM users
		WHERE email = $1`

	return r.scanOne(r.db.DB.QueryRowContext(ctx, stmt, email.Value()))
}

func (r *UserRepository) Save(ctx context.Context, user *users.User) error {
	stmt := `
		INSERT INTO users (id, email, full_name, password_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			password_hash = EXCLUDED.password_hash,
			status = EXCLUDED.status`

	_, err := r.db.DB.ExecContext(ctx, stmt,
		user.ID.Value(), user.Email.Value(), user.FullName.Value(),
		user.PasswordHash.Value(), string(user.Status), user.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return users.ErrUserExists
	}
	return err
}

func (r *UserRepository) Matching(ctx context.Context, c *criteria.Criteria) ([]*users.User, error) {
	q, err := query.SearchByCriteria[users.User](r.compiler, NewSelect(r.db.DB, userTable), c)
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

func (r *UserRepository) scanOne(row *sql.Row) (*users.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUser(s Scanner) (users.User, error) {
	var (
		id                            uuid.UUID
		email, fullName, hash, status string
		u                             users.User
	)
	if err := s.Scan(&id, &email, &fullName, &hash, &status, &u.CreatedAt); err != nil {
		return users.User{}, err
	}

	var err error
	if u.Email, err = users.NewEmailAddress(email); err != nil {
		return users.User{}, err
	}
	if u.FullName, err = users.NewFullName(fullName); err != nil {
		return users.User{}, err
	}
	if u.Status, err = users.ParseStatus(status); err != nil {
		return users.User{}, err
	}
	u.ID = users.UserIDFrom(id)
	u.PasswordHash = users.PasswordHashFrom(hash)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
