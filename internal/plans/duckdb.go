package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/noot-app/mealplan-scaler/internal/types"
)

// The catalog is a JSON array of plans. The week column stays raw JSON so the slot-keyed
// day objects are decoded by the plan types.
const catalogSource = `read_json(?, format = 'array', columns = {id: 'VARCHAR', name: 'VARCHAR', goal: 'VARCHAR', week: 'JSON'})`

// DuckDBStore queries the plan catalog file with DuckDB
type DuckDBStore struct {
	db        *sql.DB
	plansPath string
	log       *slog.Logger
}

var _ Store = (*DuckDBStore)(nil)

// NewDuckDBStore opens an in-memory DuckDB instance that reads plansPath on every query,
// so a refreshed catalog is picked up without a restart
func NewDuckDBStore(plansPath string, logger *slog.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	return &DuckDBStore{
		db:        db,
		plansPath: plansPath,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

// GetPlan returns the plan with the given id
func (s *DuckDBStore) GetPlan(ctx context.Context, id string) (*types.Plan, error) {
	start := time.Now()
	s.log.Debug("GetPlan starting", "plan_id", id)

	query := `SELECT id, name, goal, CAST(week AS VARCHAR) FROM ` + catalogSource + ` WHERE id = ? LIMIT 1`

	rows, err := s.db.QueryContext(ctx, query, s.plansPath, id)
	if err != nil {
		s.log.Error("DuckDB plan query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("plan query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}
		s.log.Debug("No plan found", "plan_id", id, "duration", time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}

	plan, err := scanPlan(rows)
	if err != nil {
		s.log.Error("Plan scan failed", "error", err, "plan_id", id)
		return nil, err
	}

	s.log.Info("GetPlan completed", "plan_id", id, "days", len(plan.Week), "duration", time.Since(start))
	return plan, nil
}

// GetDay returns a copy of one weekday of a plan
func (s *DuckDBStore) GetDay(ctx context.Context, id string, weekday types.Weekday) (types.Day, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return types.Day{}, err
	}
	return dayOf(plan, weekday)
}

// ListPlans returns a summary of every plan in the catalog, ordered by id
func (s *DuckDBStore) ListPlans(ctx context.Context) ([]types.PlanSummary, error) {
	start := time.Now()

	query := `SELECT id, name, goal, CAST(week AS VARCHAR) FROM ` + catalogSource + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, s.plansPath)
	if err != nil {
		s.log.Error("DuckDB list query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	var summaries []types.PlanSummary
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			s.log.Error("Row scan failed", "error", err)
			continue
		}
		summaries = append(summaries, plan.Summary())
	}
	if err := rows.Err(); err != nil {
		s.log.Error("Rows iteration failed", "error", err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	s.log.Info("ListPlans completed", "count", len(summaries), "duration", time.Since(start))
	return summaries, nil
}

// HealthCheck verifies that the catalog file can be read
func (s *DuckDBStore) HealthCheck(ctx context.Context) error {
	start := time.Now()

	var count int64
	query := `SELECT COUNT(*) FROM ` + catalogSource
	if err := s.db.QueryRowContext(ctx, query, s.plansPath).Scan(&count); err != nil {
		s.log.Error("Catalog health check failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("catalog health check failed: %w", err)
	}

	s.log.Debug("Catalog health check successful", "plans", count, "duration", time.Since(start))
	return nil
}

func scanPlan(rows *sql.Rows) (*types.Plan, error) {
	var id, name, goal, week sql.NullString
	if err := rows.Scan(&id, &name, &goal, &week); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	plan := &types.Plan{ID: id.String, Name: name.String, Goal: goal.String}
	if week.Valid && week.String != "" {
		if err := json.Unmarshal([]byte(week.String), &plan.Week); err != nil {
			return nil, fmt.Errorf("plan %s has an invalid week: %w", plan.ID, err)
		}
	}
	if plan.Week == nil {
		plan.Week = make(map[types.Weekday]types.Day)
	}
	return plan, nil
}

func dayOf(plan *types.Plan, weekday types.Weekday) (types.Day, error) {
	day, ok := plan.Day(weekday)
	if !ok {
		return types.Day{}, fmt.Errorf("%w: %s %s", ErrDayNotFound, plan.ID, weekday)
	}
	return day, nil
}
