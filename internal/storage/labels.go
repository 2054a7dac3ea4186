package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/brightlane/qaharbor/internal/domain"
)

const tableLabels = "labels"

// LabelRepository manages key/value tags attached to a session.
//
// Labels are inserted as a separate statement after the owning session
// commits, not inside the same transaction: a session can legally exist
// with zero labels (a partial ingest that dies between the two inserts
// just yields an untagged session, not a corrupt one), so there is
// nothing to roll back by coupling them.
type LabelRepository struct {
	db DBTX
}

func NewLabelRepository(db DBTX) *LabelRepository {
	return &LabelRepository{db: db}
}

// CreateMany inserts all labels for a session in one round trip. Callers
// pass an empty slice when a session has no tags; CreateMany is then a
// no-op.
func (r *LabelRepository) CreateMany(ctx context.Context, labels []domain.Label) error {
	if len(labels) == 0 {
		return nil
	}

	b := sq.Insert(tableLabels).Columns("key", "value", "session_id", "user_id")
	for _, l := range labels {
		b = b.Values(l.Key, l.Value, l.SessionID, l.UserID)
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("storage: build label insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("storage: insert labels: %w", err)
	}
	return nil
}

// ListBySession returns a session's labels scoped to its owning user,
// oldest first.
func (r *LabelRepository) ListBySession(ctx context.Context, sessionID, userID uuid.UUID, offset, limit uint64) ([]domain.Label, int64, error) {
	sqlStr, args, err := sq.Select("labels.id", "labels.key", "labels.value", "labels.session_id", "labels.user_id", "labels.created_at", "COUNT(1) OVER () AS total_count").
		From(tableLabels).
		Where(sq.Eq{"labels.session_id": sessionID, "labels.user_id": userID}).
		OrderBy("labels.created_at ASC").
		Offset(offset).
		Limit(limit).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("storage: build label listing: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: list labels: %w", err)
	}
	defer rows.Close()

	var (
		items []domain.Label
		total int64
	)
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Key, &l.Value, &l.SessionID, &l.UserID, &l.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("storage: scan label row: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage: list labels: %w", err)
	}
	return items, total, nil
}
