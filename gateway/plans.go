package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/schemas"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DietPlan generates a daily plan (one element) or a weekly plan (seven).
// A response that does not parse yields nil without an error.
func (g *Gateway) DietPlan(ctx context.Context, profile *models.Profile, period models.Period) ([]models.DietPlan, error) {
	if profile == nil {
		return nil, invalidInput("profile is required")
	}
	var shape any
	switch period {
	case models.PeriodDaily:
		shape = models.DietPlan{}
	case models.PeriodWeekly:
		shape = []models.DietPlan{}
	default:
		return nil, invalidInput("diet period %q", period)
	}

	text, err := g.structured(ctx, "diet_plan", dietPrompt(profile, period), shape, period)
	if err != nil || text == "" {
		return nil, err
	}

	if period == models.PeriodDaily {
		var plan models.DietPlan
		if err := json.Unmarshal([]byte(text), &plan); err != nil {
			g.logger.Warn("Error parsing diet plan", zap.String("period", string(period)), zap.Error(err))
			return nil, nil
		}
		return []models.DietPlan{plan}, nil
	}

	var plans []models.DietPlan
	if err := json.Unmarshal([]byte(text), &plans); err != nil {
		g.logger.Warn("Error parsing diet plan", zap.String("period", string(period)), zap.Error(err))
		return nil, nil
	}
	return plans, nil
}

// WorkoutPlan generates a routine for period. A response that does not parse
// yields nil without an error.
func (g *Gateway) WorkoutPlan(ctx context.Context, profile *models.Profile, period models.Period) (*models.WorkoutRoutine, error) {
	if profile == nil {
		return nil, invalidInput("profile is required")
	}
	switch period {
	case models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly:
	default:
		return nil, invalidInput("workout period %q", period)
	}

	text, err := g.structured(ctx, "workout_plan", workoutPrompt(profile, period), models.WorkoutRoutine{}, period)
	if err != nil || text == "" {
		return nil, err
	}

	var routine models.WorkoutRoutine
	if err := json.Unmarshal([]byte(text), &routine); err != nil {
		g.logger.Warn("Error parsing workout", zap.String("period", string(period)), zap.Error(err))
		return nil, nil
	}
	if routine.Period == "" {
		routine.Period = period
	}
	return &routine, nil
}

// structured runs a schema-constrained generation and returns the raw JSON
// text, or "" when the model returned nothing.
func (g *Gateway) structured(ctx context.Context, op, prompt string, shape any, period models.Period) (string, error) {
	schema, err := schemas.For(shape)
	if err != nil {
		return "", &GenerationError{Op: op, Err: err}
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	var text string
	err = g.call(ctx, op, "", g.models.Fast, map[string]any{"period": string(period)}, func(b Backend) error {
		resp, err := b.GenerateContent(ctx, g.models.Fast, genai.Text(prompt), config)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(responseText(resp))
		return nil
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		g.logger.Warn("Empty structured response", zap.String("op", op), zap.String("period", string(period)))
	}
	return text, nil
}
