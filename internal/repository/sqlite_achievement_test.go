package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solotrader/tradecraft/internal/achievements"
	"github.com/solotrader/tradecraft/internal/testutil"
)

func TestAchievementRepo_AppendAndList(t *testing.T) {
	repo := NewSQLiteAchievementRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, achievements.Achievement{
		ID: "quest_master_structure", Title: "Quest Master: Structure Marking", UnlockedAt: first,
	}))
	require.NoError(t, repo.Append(ctx, achievements.Achievement{
		ID: "test_master", Title: "Test Master", UnlockedAt: first.Add(time.Hour),
	}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "quest_master_structure", list[0].ID)
	assert.Equal(t, "test_master", list[1].ID)
	assert.True(t, list[0].UnlockedAt.Equal(first))
}

func TestAchievementRepo_DuplicateIgnored(t *testing.T) {
	repo := NewSQLiteAchievementRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, achievements.Achievement{ID: "test_master", Title: "Test Master", UnlockedAt: first}))
	require.NoError(t, repo.Append(ctx, achievements.Achievement{ID: "test_master", Title: "Changed", UnlockedAt: first.Add(time.Hour)}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Test Master", list[0].Title)
}
