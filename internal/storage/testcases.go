package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brightlane/qaharbor/internal/apierr"
	"github.com/brightlane/qaharbor/internal/domain"
)

const tableTestcases = "testcases"

// foreignKeyViolation is the Postgres SQLSTATE for a foreign-key
// constraint failure, as raised when a testcase references an unknown
// session_id.
const foreignKeyViolation = "23503"

// TestcaseRepository writes Testcase rows. Reads go through sqlgen-compiled
// queries run directly against the pool (see internal/executor), since
// listing needs the query DSL's dynamic predicates and group-by joins that
// a fixed repository method can't express.
type TestcaseRepository struct {
	db DBTX
}

func NewTestcaseRepository(db DBTX) *TestcaseRepository {
	return &TestcaseRepository{db: db}
}

// InsertMany writes an entire ingest batch in one round trip. Callers are
// expected to have already verified the owning session exists; the
// foreign-key violation translation below is a second line of defense,
// not the primary check.
func (r *TestcaseRepository) InsertMany(ctx context.Context, testcases []domain.Testcase) error {
	if len(testcases) == 0 {
		return nil
	}

	b := sq.Insert(tableTestcases).
		Columns("id", "status", "name", "classname", "file", "testsuite", "output", "baggage", "session_id", "user_id")
	for _, tc := range testcases {
		b = b.Values(tc.ID, int(tc.Status), tc.Name, tc.Classname, tc.File, tc.Testsuite, tc.Output, tc.Baggage, tc.SessionID, tc.UserID)
	}

	sqlStr, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("storage: build testcase insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return apierr.WrapValidation(err, "unknown session id")
		}
		return fmt.Errorf("storage: insert testcases: %w", err)
	}
	return nil
}
