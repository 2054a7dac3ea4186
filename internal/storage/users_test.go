package storage_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/storage"
)

func TestUserRepository_UpdatePassword_NoRowsMatchedReturnsErrNoRows(t *testing.T) {
	db := &fakeDBTX{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := storage.NewUserRepository(db)

	err := repo.UpdatePassword(context.Background(), uuid.New(), []byte("salt"), []byte("hash"))

	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_UpdatePassword_Success(t *testing.T) {
	db := &fakeDBTX{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := storage.NewUserRepository(db)

	err := repo.UpdatePassword(context.Background(), uuid.New(), []byte("salt"), []byte("hash"))

	require.NoError(t, err)
	assert.Contains(t, db.lastSQL, "UPDATE users")
}

// GetByUsername and GetByID scan through pgx.Row, which fakeDBTX does not
// implement beyond returning nil; exercising those paths needs a live
// Postgres connection rather than a hand-rolled fake.
