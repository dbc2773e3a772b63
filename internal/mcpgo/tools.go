package mcpgo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/noot-app/mealplan-scaler/internal/plans"
	"github.com/noot-app/mealplan-scaler/internal/scaling"
	"github.com/noot-app/mealplan-scaler/internal/types"
)

// ListPlansResponse is the structured result of list_plans
type ListPlansResponse struct {
	RequestID string              `json:"request_id"`
	Plans     []types.PlanSummary `json:"plans"`
	Count     int                 `json:"count"`
}

// ScaledMeal is one meal of a scaled day with its recomputed totals
type ScaledMeal struct {
	Slot        types.MealSlot     `json:"slot"`
	Ingredients []types.Ingredient `json:"ingredients"`
	Totals      types.Macros       `json:"totals"`
}

// ScaleDayResponse is the structured result of scale_day_for_body_weight
type ScaleDayResponse struct {
	RequestID    string             `json:"request_id"`
	PlanID       string             `json:"plan_id"`
	Weekday      types.Weekday      `json:"weekday"`
	BodyWeightKg float64            `json:"body_weight_kg"`
	Factor       float64            `json:"factor"`
	Targets      types.Macros       `json:"targets"`
	Totals       types.Macros       `json:"totals"`
	LinearTotals types.Macros       `json:"linear_totals"`
	Meals        []ScaledMeal       `json:"meals"`
	Correction   scaling.Correction `json:"correction"`
}

func newScaleDayResponse(requestID, planID string, r scaling.Result) ScaleDayResponse {
	meals := make([]ScaledMeal, 0, len(r.Day.Meals))
	for i, meal := range r.Day.Meals {
		meals = append(meals, ScaledMeal{
			Slot:        meal.Slot,
			Ingredients: meal.Ingredients,
			Totals:      r.Meals[i].Totals,
		})
	}
	return ScaleDayResponse{
		RequestID:    requestID,
		PlanID:       planID,
		Weekday:      r.Weekday,
		BodyWeightKg: r.BodyWeightKg,
		Factor:       r.Factor,
		Targets:      r.Targets,
		Totals:       r.Totals,
		LinearTotals: r.LinearTotals,
		Meals:        meals,
		Correction:   r.Correction,
	}
}

// WeightTableRow is one body weight of a weight table
type WeightTableRow struct {
	BodyWeightKg float64            `json:"body_weight_kg"`
	Factor       float64            `json:"factor"`
	Targets      types.Macros       `json:"targets"`
	Totals       types.Macros       `json:"totals"`
	Correction   scaling.Correction `json:"correction"`
}

// WeightTableResponse is the structured result of scale_weight_table
type WeightTableResponse struct {
	RequestID string           `json:"request_id"`
	PlanID    string           `json:"plan_id"`
	Weekday   types.Weekday    `json:"weekday"`
	Rows      []WeightTableRow `json:"rows"`
}

func (s *Server) addTools() {
	listTool := mcp.NewTool("list_plans",
		mcp.WithDescription("List the meal plans in the catalog with their goal and the weekdays they define."),
		mcp.WithOutputSchema[ListPlansResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(listTool, s.handleListPlans)

	scaleTool := mcp.NewTool("scale_day_for_body_weight",
		mcp.WithDescription("Scale one day of a meal plan to a body weight. Returns the adjusted ingredient amounts, per-meal and day macro totals, the calorie targets and the surplus/deficit correction that was applied."),
		mcp.WithString("plan_id",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Plan identifier as returned by list_plans"),
		),
		mcp.WithString("day",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Weekday of the plan, Dutch (maandag) or English (monday)"),
		),
		mcp.WithNumber("body_weight_kg",
			mcp.Required(),
			mcp.Description("Body weight in kilograms. Weights outside the supported range are clamped."),
		),
		mcp.WithOutputSchema[ScaleDayResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(scaleTool, s.handleScaleDay)

	tableTool := mcp.NewTool("scale_weight_table",
		mcp.WithDescription("Scale one day of a meal plan for a range of body weights and return the day totals per weight."),
		mcp.WithString("plan_id",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Plan identifier as returned by list_plans"),
		),
		mcp.WithString("day",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Weekday of the plan, Dutch (maandag) or English (monday)"),
		),
		mcp.WithNumber("min_weight_kg",
			mcp.Description("Lowest body weight (default: 70)"),
			mcp.DefaultNumber(scaling.DefaultTableMinKg),
		),
		mcp.WithNumber("max_weight_kg",
			mcp.Description("Highest body weight (default: 130)"),
			mcp.DefaultNumber(scaling.DefaultTableMaxKg),
		),
		mcp.WithNumber("step_kg",
			mcp.Description("Step between weights (default: 5)"),
			mcp.DefaultNumber(scaling.DefaultTableStepKg),
			mcp.Min(0.5),
		),
		mcp.WithOutputSchema[WeightTableResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(tableTool, s.handleWeightTable)
}

func (s *Server) handleListPlans(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID, "tool", "list_plans")

	summaries, err := s.store.ListPlans(ctx)
	if err != nil {
		log.Error("List plans failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Listing plans failed: %v", err)), nil
	}

	response := ListPlansResponse{RequestID: requestID, Plans: summaries, Count: len(summaries)}
	log.Debug("Listed plans", "count", response.Count)
	return structured(response)
}

func (s *Server) handleScaleDay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID, "tool", "scale_day_for_body_weight")
	log.Debug("Tool call", "arguments", request.GetArguments())

	planID, weekday, errResult := planAndDay(request)
	if errResult != nil {
		return errResult, nil
	}

	weight, err := request.RequireFloat("body_weight_kg")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'body_weight_kg': %v", err)), nil
	}

	day, errResult := s.lookupDay(ctx, planID, weekday)
	if errResult != nil {
		return errResult, nil
	}

	result := s.engine.Scale(day, types.ScalingContext{BodyWeightKg: weight, Day: weekday})

	log.Info("Scaled day",
		"plan_id", planID,
		"weekday", weekday,
		"body_weight_kg", weight,
		"factor", result.Factor,
		"correction", result.Correction.Kind,
		"duration", time.Since(start))

	return structured(newScaleDayResponse(requestID, planID, result))
}

func (s *Server) handleWeightTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID, "tool", "scale_weight_table")
	log.Debug("Tool call", "arguments", request.GetArguments())

	planID, weekday, errResult := planAndDay(request)
	if errResult != nil {
		return errResult, nil
	}

	minKg := request.GetFloat("min_weight_kg", scaling.DefaultTableMinKg)
	maxKg := request.GetFloat("max_weight_kg", scaling.DefaultTableMaxKg)
	stepKg := request.GetFloat("step_kg", scaling.DefaultTableStepKg)

	weights, err := scaling.WeightRange(minKg, maxKg, stepKg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid weight range: %v", err)), nil
	}

	day, errResult := s.lookupDay(ctx, planID, weekday)
	if errResult != nil {
		return errResult, nil
	}

	results, err := s.engine.Table(ctx, day, weekday, weights)
	if err != nil {
		log.Error("Weight table failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Weight table failed: %v", err)), nil
	}

	rows := make([]WeightTableRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, WeightTableRow{
			BodyWeightKg: r.BodyWeightKg,
			Factor:       r.Factor,
			Targets:      r.Targets,
			Totals:       r.Totals,
			Correction:   r.Correction,
		})
	}

	log.Info("Computed weight table",
		"plan_id", planID,
		"weekday", weekday,
		"rows", len(rows),
		"duration", time.Since(start))

	return structured(WeightTableResponse{RequestID: requestID, PlanID: planID, Weekday: weekday, Rows: rows})
}

// planAndDay reads the plan_id and day arguments shared by the scaling tools
func planAndDay(request mcp.CallToolRequest) (string, types.Weekday, *mcp.CallToolResult) {
	planID, err := request.RequireString("plan_id")
	if err != nil {
		return "", "", mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'plan_id': %v", err))
	}
	if planID == "" {
		return "", "", mcp.NewToolResultError("Parameter 'plan_id' must be at least 1 character long")
	}

	dayArg, err := request.RequireString("day")
	if err != nil {
		return "", "", mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'day': %v", err))
	}
	weekday, err := types.ParseWeekday(dayArg)
	if err != nil {
		return "", "", mcp.NewToolResultError(fmt.Sprintf("Invalid parameter 'day': %v", err))
	}

	return planID, weekday, nil
}

func (s *Server) lookupDay(ctx context.Context, planID string, weekday types.Weekday) (types.Day, *mcp.CallToolResult) {
	day, err := s.store.GetDay(ctx, planID, weekday)
	switch {
	case err == nil:
		return day, nil
	case errors.Is(err, plans.ErrPlanNotFound):
		return types.Day{}, mcp.NewToolResultError(fmt.Sprintf("Plan %q not found", planID))
	case errors.Is(err, plans.ErrDayNotFound):
		return types.Day{}, mcp.NewToolResultError(fmt.Sprintf("Plan %q has no %s", planID, weekday))
	default:
		s.log.Error("Plan lookup failed", "plan_id", planID, "weekday", weekday, "error", err)
		return types.Day{}, mcp.NewToolResultError(fmt.Sprintf("Plan lookup failed: %v", err))
	}
}

func structured(response any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultStructured(response, string(responseJSON)), nil
}
