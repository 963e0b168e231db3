package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/internal/errs"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (role, username, nickname, password, email, salt)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.Pool.QueryRow(ctx, query,
		user.Role, user.Username, user.Nickname,
		user.PasswordHash, user.Email, user.Salt,
	).Scan(&user.ID)
	if err != nil {
		// The unique index on username is the authoritative uniqueness guard.
		if isUniqueViolation(err) {
			return errs.ErrUsernameTaken
		}
		return storageErr("insert user", err)
	}
	return nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, role, username, nickname, password, email, salt
		FROM users WHERE username = $1`

	var u domain.User
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Role, &u.Username, &u.Nickname,
		&u.PasswordHash, &u.Email, &u.Salt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select user", err)
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, current string, user *domain.User) error {
	query := `
		UPDATE users SET username = $1, email = $2, role = $3, nickname = $4
		WHERE username = $5`

	tag, err := r.db.Pool.Exec(ctx, query,
		user.Username, user.Email, user.Role, user.Nickname, current,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrUsernameTaken
		}
		return storageErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, username, passwordHash, salt string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password = $1, salt = $2 WHERE username = $3`,
		passwordHash, salt, username,
	)
	if err != nil {
		return storageErr("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, username string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return storageErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
