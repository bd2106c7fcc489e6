package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/database"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// emailConstraint is the unique index on users.email.
const emailConstraint = "users_email_key"

const userColumns = `id, email, password_hash, full_name, role, status, last_login, created_at, updated_at`

// UserRepository implements repository.UserRepository on PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FullName,
		string(u.Role),
		string(u.Status),
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, emailConstraint) {
			return apperrors.EmailTaken()
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, "GetUserByID", query, id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, "GetUserByEmail", query, email)
}

// List returns a page of users ordered newest first.
func (r *UserRepository) List(ctx context.Context, offset, limit int) (users []domain.User, total int, err error) {
	countQuery := `SELECT COUNT(*) FROM users`
	listQuery := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "ListUsers", listQuery)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.Query(ctx, listQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users = make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, total, nil
}

// UpdateProfile applies the non-nil fields of update in one statement.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (u *domain.User, err error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	ctx, end := database.TraceQuery(ctx, "UpdateUserProfile", query)
	defer func() { end(err) }()

	u, err = scanUser(r.db.QueryRow(ctx, query, id, nullable(update.FullName), nullable(update.Email)))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrNotFound
		case database.IsUniqueViolation(err, emailConstraint):
			return nil, apperrors.EmailTaken()
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return u, nil
}

// UpdateStatus is a compare-and-swap on status. When no row matches, a
// follow-up read distinguishes a missing user from a lost race.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.Status) (u *domain.User, err error) {
	query := `
		UPDATE users
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + userColumns

	traced, end := database.TraceQuery(ctx, "UpdateUserStatus", query)
	u, err = scanUser(r.db.QueryRow(traced, query, id, string(expected), string(next)))
	end(err)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update user status: %w", err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, repository.ErrStatusMismatch
}

// UpdatePasswordHash replaces the stored hash in a single statement.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) (err error) {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateUserPassword", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RecordLogin stamps last_login. updated_at is left alone.
func (r *UserRepository) RecordLogin(ctx context.Context, id string, at time.Time) (err error) {
	query := `UPDATE users SET last_login = $2 WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "RecordUserLogin", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, operation, query string, arg any) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() { end(err) }()

	u, err = scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u      domain.User
		role   string
		status string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&role,
		&status,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Status = domain.Status(status)
	if !u.Role.Valid() || !u.Status.Valid() {
		return nil, fmt.Errorf("user %s has invalid role %q or status %q", u.ID, role, status)
	}
	return &u, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
