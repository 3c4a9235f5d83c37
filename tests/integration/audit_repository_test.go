package integration

import (
	"context"
	"testing"

	"github.com/darisadam/cardbrand/internal/domain/audit"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_CreateAndList(t *testing.T) {
	setupTestDB(t)
	repo := repository.NewAuditRepository(testDB)
	ctx := context.Background()

	clientID := uuid.New()
	first := &audit.AuditLog{
		ClientID:   &clientID,
		Merchant:   "acme",
		Action:     audit.ActionBinRangeCreate,
		Resource:   "bin_range",
		Status:     audit.StatusSuccess,
		StatusCode: 201,
		Metadata:   map[string]interface{}{"request_id": "req-1"},
	}
	second := &audit.AuditLog{
		Action:     audit.ActionBinRangeDelete,
		Resource:   "bin_range:" + uuid.New().String(),
		Status:     audit.StatusFailure,
		StatusCode: 404,
	}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, uuid.Nil, first.EventID)
	assert.False(t, first.Timestamp.IsZero())

	logs, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, second.EventID, logs[0].EventID)
	assert.Nil(t, logs[0].ClientID)
	assert.Nil(t, logs[0].Metadata)

	assert.Equal(t, first.EventID, logs[1].EventID)
	require.NotNil(t, logs[1].ClientID)
	assert.Equal(t, clientID, *logs[1].ClientID)
	assert.Equal(t, "req-1", logs[1].Metadata["request_id"])

	logs, err = repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, first.EventID, logs[0].EventID)
}
