package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/domain"
)

const tableUsers = "users"

// UserRepository reads User rows. Users are created by admin tooling
// out of band, so there is no Create method here.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername returns pgx.ErrNoRows, unwrapped, when no such user
// exists; the auth handler maps that to apierr.NotAuthorized rather than
// leaking whether a username exists.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	sqlStr, args, err := sq.Select("id", "username", "password_salt", "password_hash", "created_at", "updated_at").
		From(tableUsers).
		Where(sq.Eq{"username": username}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("storage: build user query: %w", err)
	}

	var u domain.User
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&u.ID, &u.Username, &u.PasswordSalt, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// GetByID looks up a user by id, for change-password flows that already
// hold a verified JWT subject.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	sqlStr, args, err := sq.Select("id", "username", "password_salt", "password_hash", "created_at", "updated_at").
		From(tableUsers).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("storage: build user query: %w", err)
	}

	var u domain.User
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&u.ID, &u.Username, &u.PasswordSalt, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdatePassword replaces the stored salt/hash. Returns pgx.ErrNoRows if
// the user id no longer exists.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, salt, hash []byte) error {
	sqlStr, args, err := sq.Update(tableUsers).
		Set("password_salt", salt).
		Set("password_hash", hash).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build password update: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("storage: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
