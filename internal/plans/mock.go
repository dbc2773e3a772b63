package plans

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/noot-app/mealplan-scaler/internal/types"
)

//go:embed sample_plans.json
var samplePlans []byte

// SamplePlans returns the bundled sample catalog
func SamplePlans() ([]types.Plan, error) {
	var plans []types.Plan
	if err := json.Unmarshal(samplePlans, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode sample plans: %w", err)
	}
	return plans, nil
}

// MockStore is an in-memory store for testing
type MockStore struct {
	plans map[string]types.Plan
	err   error
	log   *slog.Logger
}

var _ Store = (*MockStore)(nil)

// NewMockStore creates a mock store preloaded with the sample catalog
func NewMockStore(logger *slog.Logger) *MockStore {
	plans, err := SamplePlans()
	if err != nil {
		// the sample is compiled in, so this only breaks when the file itself is broken
		panic(err)
	}
	return NewMockStoreWithPlans(logger, plans...)
}

// NewMockStoreWithPlans creates a mock store holding exactly the given plans
func NewMockStoreWithPlans(logger *slog.Logger, plans ...types.Plan) *MockStore {
	m := &MockStore{plans: make(map[string]types.Plan, len(plans)), log: logger}
	for _, p := range plans {
		m.plans[p.ID] = p
	}
	return m
}

// SetError makes every subsequent call fail with err
func (m *MockStore) SetError(err error) {
	m.err = err
}

// GetPlan returns the plan with the given id
func (m *MockStore) GetPlan(ctx context.Context, id string) (*types.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return &p, nil
}

// GetDay returns a copy of one weekday of a plan
func (m *MockStore) GetDay(ctx context.Context, id string, weekday types.Weekday) (types.Day, error) {
	plan, err := m.GetPlan(ctx, id)
	if err != nil {
		return types.Day{}, err
	}
	return dayOf(plan, weekday)
}

// ListPlans returns the summaries ordered by id
func (m *MockStore) ListPlans(ctx context.Context) ([]types.PlanSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	summaries := make([]types.PlanSummary, 0, len(m.plans))
	for _, p := range m.plans {
		summaries = append(summaries, p.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// HealthCheck reports the configured error, if any
func (m *MockStore) HealthCheck(ctx context.Context) error {
	if m.err != nil {
		m.log.Debug("Mock health check failing", "error", m.err)
	}
	return m.err
}

// Close does nothing
func (m *MockStore) Close() error {
	return nil
}
