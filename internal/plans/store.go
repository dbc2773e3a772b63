// Package plans reads authored meal plans from the plan catalog
package plans

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/noot-app/mealplan-scaler/internal/types"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrDayNotFound  = errors.New("day not found in plan")
)

// Store defines read access to the plan catalog
type Store interface {
	GetPlan(ctx context.Context, id string) (*types.Plan, error)
	GetDay(ctx context.Context, id string, weekday types.Weekday) (types.Day, error)
	ListPlans(ctx context.Context) ([]types.PlanSummary, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// NewStore creates the catalog store for plansPath.
// Uses the in-memory sample catalog if PLAN_STORE_MOCK is set to true.
func NewStore(plansPath string, logger *slog.Logger) (Store, error) {
	if os.Getenv("PLAN_STORE_MOCK") == "true" {
		return NewMockStore(logger), nil
	}
	return NewDuckDBStore(plansPath, logger)
}
