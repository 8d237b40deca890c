package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/respcheck/internal/testutil"
)

func TestRecordRun_AssignsID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, createTestRun("response", testutil.Epoch))
	require.NoError(t, err)
	assert.Equal(t, "run-0001", id)

	id, err = s.RecordRun(ctx, createTestRun("response", testutil.Epoch.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, "run-0002", id)
}

func TestRecordRun_KeepsGivenID(t *testing.T) {
	s := createTestStore(t)
	rec := createTestRun("response", testutil.Epoch)
	rec.ID = "explicit"

	id, err := s.RecordRun(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "explicit", id)
}

func TestRecordRun_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestRun("response", testutil.Epoch)
	rec.ID = "dup"

	_, err := s.RecordRun(ctx, rec)
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, rec)
	require.Error(t, err)

	var cases int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM case_results WHERE run_id = 'dup'").Scan(&cases))
	assert.Equal(t, 2, cases)
}

func TestRecordRun_CountsCases(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, createTestRun("response", testutil.Epoch))
	require.NoError(t, err)

	rec, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CaseCount)
	assert.Equal(t, 1, rec.Passed)
	assert.False(t, rec.Pass)
}

func TestRecordRun_UUIDv7ByDefault(t *testing.T) {
	s, err := Open(t.TempDir() + "/uuid.db")
	require.NoError(t, err)
	defer s.Close()

	id, err := s.RecordRun(context.Background(), createTestRun("response", testutil.Epoch))
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, byte('7'), id[14], "UUID version nibble")
}
