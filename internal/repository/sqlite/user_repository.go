package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	bio TEXT NOT NULL DEFAULT '',
	date_of_birth DATETIME NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	is_email_verified INTEGER NOT NULL DEFAULT 0,
	login_count INTEGER NOT NULL DEFAULT 0,
	last_login DATETIME NULL,
	reset_token_hash TEXT NOT NULL DEFAULT '',
	reset_expires_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

const userColumns = `id, name, email, password_hash, role, bio, date_of_birth, is_active,
is_email_verified, login_count, last_login, reset_token_hash, reset_expires_at,
created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, role, bio, date_of_birth, is_active,
	is_email_verified, login_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Bio,
		user.DateOfBirth,
		user.IsActive,
		user.IsEmailVerified,
		user.LoginCount,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("user already exists: %w", err)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]domain.User, int64, error) {
	where := []string{"1=1"}
	var args []any

	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "(name LIKE ? OR email LIKE ?)")
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, string(filter.Role))
	}

	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `
SELECT ` + userColumns + `
FROM users
WHERE ` + clause + `
ORDER BY created_at DESC
LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, updates domain.ProfileUpdate) (*domain.User, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if updates.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *updates.Name)
	}
	if updates.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *updates.Bio)
	}
	if updates.DateOfBirth != nil {
		sets = append(sets, "date_of_birth = ?")
		args = append(args, *updates.DateOfBirth)
	}

	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE users SET login_count = login_count + 1, last_login = ?, updated_at = ?
WHERE id = ?`,
		at.UTC(), at.UTC(), id,
	); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE users SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ?
WHERE id = ?`,
		tokenHash, expiresAt.UTC(), time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE reset_token_hash = ? AND reset_token_hash != '' AND reset_expires_at > ?`,
		tokenHash, now.UTC(),
	)
	return scanUser(row)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE users SET password_hash = ?, reset_token_hash = '', reset_expires_at = NULL, updated_at = ?
WHERE id = ?`,
		passwordHash, time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Bio,
		&user.DateOfBirth,
		&user.IsActive,
		&user.IsEmailVerified,
		&user.LoginCount,
		&user.LastLogin,
		&user.ResetTokenHash,
		&user.ResetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}
