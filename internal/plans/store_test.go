package plans

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/noot-app/mealplan-scaler/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, os.WriteFile(path, samplePlans, 0644))
	return path
}

func TestSamplePlans(t *testing.T) {
	plans, err := SamplePlans()
	require.NoError(t, err)
	require.Len(t, plans, 2)

	cut := plans[0]
	assert.Equal(t, "cut-2000", cut.ID)

	monday, ok := cut.Day(types.Monday)
	require.True(t, ok)
	assert.Equal(t, types.Monday, monday.Weekday)
	require.Len(t, monday.Meals, 4)
	assert.Equal(t, types.SlotBreakfast, monday.Meals[0].Slot)
	assert.Equal(t, types.SlotEveningSnack, monday.Meals[3].Slot)
	require.True(t, monday.Targets.HasCalories())
	assert.Equal(t, 2000.0, *monday.Targets.Calories)

	egg := monday.Meals[0].Ingredients[0]
	assert.Equal(t, types.UnitCode("per_piece"), egg.Unit)
	assert.Equal(t, 50.0, egg.UnitWeightG)

	// synonyms in the second plan
	bulk, ok := plans[1].Day(types.Monday)
	require.True(t, ok)
	assert.Equal(t, 3000.0, *bulk.Targets.Calories)
	assert.Equal(t, 180.0, *bulk.Targets.Protein)
	assert.Nil(t, bulk.Targets.Fat)
	assert.Equal(t, 389.0, bulk.Meals[0].Ingredients[0].CaloriesPer100g)
}

func TestMockStore(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore(testLogger())

	summaries, err := store.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "bulk-3000", summaries[0].ID)
	assert.Equal(t, "cut-2000", summaries[1].ID)
	assert.Equal(t, []types.Weekday{types.Monday, types.Tuesday}, summaries[1].Days)

	day, err := store.GetDay(ctx, "cut-2000", types.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, types.Tuesday, day.Weekday)

	_, err = store.GetPlan(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = store.GetDay(ctx, "cut-2000", types.Sunday)
	assert.ErrorIs(t, err, ErrDayNotFound)

	assert.NoError(t, store.HealthCheck(ctx))

	boom := errors.New("boom")
	store.SetError(boom)
	assert.ErrorIs(t, store.HealthCheck(ctx), boom)
	_, err = store.ListPlans(ctx)
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, store.Close())
}

func TestMockStore_DayIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore(testLogger())

	day, err := store.GetDay(ctx, "cut-2000", types.Monday)
	require.NoError(t, err)
	day.Meals[0].Ingredients[1].Amount = 999

	again, err := store.GetDay(ctx, "cut-2000", types.Monday)
	require.NoError(t, err)
	assert.Equal(t, 80.0, again.Meals[0].Ingredients[1].Amount)
}

func TestNewStore(t *testing.T) {
	t.Run("mock from env", func(t *testing.T) {
		t.Setenv("PLAN_STORE_MOCK", "true")
		store, err := NewStore("/nonexistent/plans.json", testLogger())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MockStore{}, store)
	})

	t.Run("duckdb by default", func(t *testing.T) {
		t.Setenv("PLAN_STORE_MOCK", "")
		store, err := NewStore("/nonexistent/plans.json", testLogger())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &DuckDBStore{}, store)
	})
}

func TestDuckDBStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewDuckDBStore(writeCatalog(t), testLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.HealthCheck(ctx))

	summaries, err := store.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "bulk-3000", summaries[0].ID)
	assert.Equal(t, "Spiermassa 3000", summaries[0].Name)
	assert.Equal(t, "bulken", summaries[0].Goal)
	assert.Equal(t, []types.Weekday{types.Monday}, summaries[0].Days)

	plan, err := store.GetPlan(ctx, "cut-2000")
	require.NoError(t, err)
	assert.Equal(t, "Droogtrainen 2000", plan.Name)
	assert.Len(t, plan.Week, 2)

	day, err := store.GetDay(ctx, "cut-2000", types.Tuesday)
	require.NoError(t, err)
	require.Len(t, day.Meals, 3)
	dinner, ok := day.Meal(types.SlotDinner)
	require.True(t, ok)
	require.NotNil(t, dinner.Nutrition)
	assert.Equal(t, 650.0, dinner.Nutrition.Calories)

	_, err = store.GetPlan(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = store.GetDay(ctx, "bulk-3000", types.Friday)
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestDuckDBStore_HealthCheck_WithMissingFile(t *testing.T) {
	store, err := NewDuckDBStore("/nonexistent/plans.json", testLogger())
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.HealthCheck(context.Background()), "Should fail with nonexistent file")
}
