package cmd

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"vidaview/database"
	unitRepo "vidaview/database/repository/unit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "worker", "migrate", "sweep"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	migrate, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("units"))
}

func TestSeedUnits(t *testing.T) {
	db, err := database.OpenSQL("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	repo := unitRepo.NewGormUnitRepo(db)
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	input := `[
		{"id": "unit-1", "ownerId": "owner-1", "unitNumber": "A-101", "monthlyRate": "5000000", "depositAmount": "5000000", "minimumStayMonths": 3},
		{"id": "unit-2", "ownerId": "owner-1", "unitNumber": "A-102", "monthlyRate": "4500000"}
	]`
	count, err := seedUnits(ctx, repo, strings.NewReader(input), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	u, err := repo.GetByID(ctx, "unit-2")
	require.NoError(t, err)
	assert.Equal(t, 1, u.MinimumStayMonths)
	assert.True(t, decimal.NewFromInt(4500000).Equal(u.MonthlyRate))

	// seeding again updates in place
	count, err = seedUnits(ctx, repo, strings.NewReader(`[{"id": "unit-2", "monthlyRate": "4750000", "minimumStayMonths": 6}]`), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	u, err = repo.GetByID(ctx, "unit-2")
	require.NoError(t, err)
	assert.Equal(t, 6, u.MinimumStayMonths)
	assert.True(t, decimal.NewFromInt(4750000).Equal(u.MonthlyRate))

	_, err = seedUnits(ctx, repo, strings.NewReader(`[{"unitNumber": "B-1"}]`), now)
	assert.Error(t, err)
}
