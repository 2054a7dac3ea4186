package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/domain"
)

const tableAPIKeys = "api_keys"

// APIKeyRepository manages API-key credentials scoped to their owning user.
type APIKeyRepository struct {
	db DBTX
}

func NewAPIKeyRepository(db DBTX) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key domain.APIKey) error {
	sqlStr, args, err := sq.Insert(tableAPIKeys).
		Columns("id", "description", "secret_salt", "secret_hash", "user_id").
		Values(key.ID, key.Description, key.SecretSalt, key.SecretHash, key.UserID).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build api key insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("storage: insert api key: %w", err)
	}
	return nil
}

// GetByID returns pgx.ErrNoRows when no row matches (id, userID) — a
// mismatch there looks identical to "not found" per the cross-user
// isolation invariant.
func (r *APIKeyRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (domain.APIKey, error) {
	sqlStr, args, err := sq.Select("id", "description", "secret_salt", "secret_hash", "user_id", "created_at", "updated_at").
		From(tableAPIKeys).
		Where(sq.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("storage: build api key query: %w", err)
	}

	var k domain.APIKey
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&k.ID, &k.Description, &k.SecretSalt, &k.SecretHash, &k.UserID, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		return domain.APIKey{}, err
	}
	return k, nil
}

// GetByIDUnscoped looks up an api key by id alone, for the authentication
// path where the owning user is not yet known. Callers must verify the
// secret against the returned hash before trusting key.UserID.
func (r *APIKeyRepository) GetByIDUnscoped(ctx context.Context, id uuid.UUID) (domain.APIKey, error) {
	sqlStr, args, err := sq.Select("id", "description", "secret_salt", "secret_hash", "user_id", "created_at", "updated_at").
		From(tableAPIKeys).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("storage: build api key query: %w", err)
	}

	var k domain.APIKey
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&k.ID, &k.Description, &k.SecretSalt, &k.SecretHash, &k.UserID, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		return domain.APIKey{}, err
	}
	return k, nil
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit uint64) ([]domain.APIKey, int64, error) {
	sqlStr, args, err := sq.Select("id", "description", "secret_salt", "secret_hash", "user_id", "created_at", "updated_at", "COUNT(1) OVER () AS total_count").
		From(tableAPIKeys).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(limit).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("storage: build api key listing: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: list api keys: %w", err)
	}
	defer rows.Close()

	var (
		items []domain.APIKey
		total int64
	)
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID, &k.Description, &k.SecretSalt, &k.SecretHash, &k.UserID, &k.CreatedAt, &k.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("storage: scan api key row: %w", err)
		}
		items = append(items, k)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage: list api keys: %w", err)
	}
	return items, total, nil
}

// DeleteByID reports pgx.ErrNoRows when no row matched (id, userID).
func (r *APIKeyRepository) DeleteByID(ctx context.Context, id, userID uuid.UUID) error {
	sqlStr, args, err := sq.Delete(tableAPIKeys).
		Where(sq.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build api key delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("storage: delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
