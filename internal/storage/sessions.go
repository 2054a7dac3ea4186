package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
)

const tableSessions = "sessions"

// uniqueViolation is the Postgres SQLSTATE for a unique-constraint
// failure, as raised on a session PK collision.
const uniqueViolation = "23505"

// SessionRepository manages Session rows.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session, translating a primary-key collision into a
// ValidationError rather than letting the raw constraint violation
// bubble up as a 500.
func (r *SessionRepository) Create(ctx context.Context, s domain.Session) error {
	sqlStr, args, err := sq.Insert(tableSessions).
		Columns("id", "description", "baggage", "user_id").
		Values(s.ID, s.Description, s.Baggage, s.UserID).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("storage: build session insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apierr.WrapValidation(err, fmt.Sprintf("session %s already exists", s.ID))
		}
		return fmt.Errorf("storage: insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (domain.Session, error) {
	sqlStr, args, err := sq.Select("id", "description", "baggage", "user_id", "created_at", "updated_at").
		From(tableSessions).
		Where(sq.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return domain.Session{}, fmt.Errorf("storage: build session query: %w", err)
	}

	var s domain.Session
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&s.ID, &s.Description, &s.Baggage, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit uint64) ([]domain.Session, int64, error) {
	sqlStr, args, err := sq.Select("id", "description", "baggage", "user_id", "created_at", "updated_at", "COUNT(1) OVER () AS total_count").
		From(tableSessions).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(limit).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("storage: build session listing: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: list sessions: %w", err)
	}
	defer rows.Close()

	var (
		items []domain.Session
		total int64
	)
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.Description, &s.Baggage, &s.UserID, &s.CreatedAt, &s.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("storage: scan session row: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage: list sessions: %w", err)
	}
	return items, total, nil
}
